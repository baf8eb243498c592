package models

import "time"

// SortDir is the direction of the active sort.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Query is the immutable value object driving one view: free-text search,
// per-field filters, the only-negative toggle, an inclusive date range, sort
// key/direction and pagination. Mutations go through the With* methods, which
// return a new Query; any change other than the page number resets the page
// back to 1.
type Query struct {
	Search       string            `json:"search"`
	Filters      map[string]string `json:"filters,omitempty"` // field -> needle; empty needles are dropped
	OnlyNegative bool              `json:"only_negative"`
	From         time.Time         `json:"from"` // zero value = no lower bound
	To           time.Time         `json:"to"`   // zero value = no upper bound
	SortKey      string            `json:"sort_key"`
	SortDir      SortDir           `json:"sort_dir"`
	Page         int               `json:"page"` // 1-based; clamped by the executor
	PageSize     int               `json:"page_size"`
}

// NewQuery returns a match-all query with the given default sort and page size.
func NewQuery(sortKey string, sortDir SortDir, pageSize int) Query {
	return Query{
		SortKey:  sortKey,
		SortDir:  sortDir,
		Page:     1,
		PageSize: pageSize,
	}
}

func (q Query) cloneFilters() map[string]string {
	if len(q.Filters) == 0 {
		return nil
	}
	out := make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		out[k] = v
	}
	return out
}

// WithSearch sets the free-text needle and resets the page.
func (q Query) WithSearch(needle string) Query {
	q.Filters = q.cloneFilters()
	q.Search = needle
	q.Page = 1
	return q
}

// WithFilter sets one per-field needle and resets the page. An empty needle
// removes the constraint.
func (q Query) WithFilter(field, needle string) Query {
	filters := q.cloneFilters()
	if needle == "" {
		delete(filters, field)
	} else {
		if filters == nil {
			filters = make(map[string]string, 1)
		}
		filters[field] = needle
	}
	q.Filters = filters
	q.Page = 1
	return q
}

// WithOnlyNegative toggles the outflow-only predicate and resets the page.
func (q Query) WithOnlyNegative(on bool) Query {
	q.Filters = q.cloneFilters()
	q.OnlyNegative = on
	q.Page = 1
	return q
}

// WithDateRange sets the inclusive [from, to] bounds and resets the page.
// A zero time leaves that bound open.
func (q Query) WithDateRange(from, to time.Time) Query {
	q.Filters = q.cloneFilters()
	q.From = from
	q.To = to
	q.Page = 1
	return q
}

// WithSort sets the sort key and direction and resets the page.
func (q Query) WithSort(key string, dir SortDir) Query {
	q.Filters = q.cloneFilters()
	q.SortKey = key
	q.SortDir = dir
	q.Page = 1
	return q
}

// WithPageSize sets the page size and resets the page.
func (q Query) WithPageSize(size int) Query {
	q.Filters = q.cloneFilters()
	q.PageSize = size
	q.Page = 1
	return q
}

// WithPage moves to the requested page. This is the only setter that keeps
// the rest of the query untouched without resetting pagination.
func (q Query) WithPage(page int) Query {
	q.Filters = q.cloneFilters()
	q.Page = page
	return q
}
