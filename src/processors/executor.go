package processors

import (
	"github.com/username/mejoravivienda/backend/src/models"
)

const fallbackPageSize = 50

// Executor runs the filter → sort → paginate pipeline for one dataset. The
// result is a pure function of (records, query); repeated calls with the same
// inputs produce identical views.
type Executor struct {
	dataset   models.Dataset
	predicate *Predicate
}

func NewExecutor(dataset models.Dataset) *Executor {
	return &Executor{
		dataset:   dataset,
		predicate: NewPredicate(dataset),
	}
}

// Execute filters the collection with the query's predicates, sorts the
// matches, and slices out the requested page. Out-of-range pages are clamped
// into [1, totalPages]; an empty match is a valid view with one empty page.
// The Summary field is left for the Aggregator.
func (e *Executor) Execute(records []models.Record, q models.Query) models.View {
	filtered := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if e.predicate.Matches(rec, q) {
			filtered = append(filtered, rec)
		}
	}

	sortKey := q.SortKey
	if sortKey == "" {
		sortKey = e.dataset.DefaultSortKey
	}
	NewCollator(e.dataset).Sort(filtered, sortKey, q.SortDir)

	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = fallbackPageSize
	}

	totalCount := len(filtered)
	totalPages := (totalCount + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	safePage := q.Page
	if safePage < 1 {
		safePage = 1
	}
	if safePage > totalPages {
		safePage = totalPages
	}

	start := (safePage - 1) * pageSize
	end := start + pageSize
	if start > totalCount {
		start = totalCount
	}
	if end > totalCount {
		end = totalCount
	}

	return models.View{
		Filtered:   filtered,
		Rows:       filtered[start:end],
		Page:       safePage,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
