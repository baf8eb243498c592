package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/username/mejoravivienda/backend/src/datasource"
	"github.com/username/mejoravivienda/backend/src/logger"
	"github.com/username/mejoravivienda/backend/src/models"
	"github.com/username/mejoravivienda/backend/src/services"
	"github.com/username/mejoravivienda/backend/src/utils"
)

const dateParamLayout = "2006-01-02"

// ViewHandler serves the tabular views: dataset listing, filtered pages,
// CSV export and manual refresh.
type ViewHandler struct {
	viewService *services.ViewService
}

func NewViewHandler(viewService *services.ViewService) *ViewHandler {
	return &ViewHandler{viewService: viewService}
}

// datasetInfo is the listing entry for one registered dataset.
type datasetInfo struct {
	Name  string           `json:"name"`
	Label string           `json:"label"`
	State datasource.State `json:"state"`
}

// viewResponse is the payload of GET /api/datasets/{name}/view.
type viewResponse struct {
	Dataset    string           `json:"dataset"`
	Query      models.Query     `json:"query"`
	Rows       []models.Record  `json:"rows"`
	Page       int              `json:"page"`
	TotalCount int              `json:"total_count"`
	TotalPages int              `json:"total_pages"`
	Summary    models.Summary   `json:"summary"`
	State      datasource.State `json:"state"`
	Error      string           `json:"error,omitempty"`
	FetchedAt  time.Time        `json:"fetched_at,omitempty"`
}

// viewQueryParams carries the raw query-string values for validation before
// they are folded into a models.Query.
type viewQueryParams struct {
	From     string
	To       string
	SortDir  string
	PageSize string
}

func (p viewQueryParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.From, validation.Date(dateParamLayout)),
		validation.Field(&p.To, validation.Date(dateParamLayout)),
		validation.Field(&p.SortDir, validation.In("asc", "desc")),
		validation.Field(&p.PageSize, validation.In("25", "50", "100", "200")),
	)
}

// HandleListDatasets returns the registered datasets and their load state.
func (h *ViewHandler) HandleListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets := h.viewService.Datasets()
	out := make([]datasetInfo, 0, len(datasets))
	for _, ds := range datasets {
		snap, _ := h.viewService.Snapshot(ds.Name)
		out = append(out, datasetInfo{Name: ds.Name, Label: ds.Label, State: snap.State})
	}
	utils.SendJSONResponse(w, out, http.StatusOK)
}

// HandleGetView computes one filtered/sorted/paged view with its summary.
func (h *ViewHandler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ds, ok := h.viewService.Dataset(name)
	if !ok {
		utils.SendJSONError(w, fmt.Sprintf("unknown dataset %q", name), http.StatusNotFound)
		return
	}

	q, err := h.parseQuery(r, ds)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	view, snap, err := h.viewService.GetView(name, q)
	if err != nil {
		logger.FromContext(r.Context()).Error("View computation failed", "dataset", name, "error", err)
		utils.SendJSONError(w, "failed to compute view", http.StatusInternalServerError)
		return
	}

	resp := viewResponse{
		Dataset:    name,
		Query:      q,
		Rows:       view.Rows,
		Page:       view.Page,
		TotalCount: view.TotalCount,
		TotalPages: view.TotalPages,
		Summary:    view.Summary,
		State:      snap.State,
		FetchedAt:  snap.FetchedAt,
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	utils.SendJSONResponse(w, resp, http.StatusOK)
}

// HandleExportCSV streams the filtered (unpaged) result as a CSV attachment.
func (h *ViewHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ds, ok := h.viewService.Dataset(name)
	if !ok {
		utils.SendJSONError(w, fmt.Sprintf("unknown dataset %q", name), http.StatusNotFound)
		return
	}

	q, err := h.parseQuery(r, ds)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	filename, err := h.viewService.ExportCSV(&buf, name, q)
	if err != nil {
		logger.FromContext(r.Context()).Error("CSV export failed", "dataset", name, "error", err)
		utils.SendJSONError(w, "failed to export CSV", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.FromContext(r.Context()).Error("Failed to write CSV response", "dataset", name, "error", err)
	}
}

// HandleRefresh re-fetches a dataset's rows from its source. The previous
// collection is fully replaced; there is no merge and no automatic retry.
func (h *ViewHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := h.viewService.Dataset(name); !ok {
		utils.SendJSONError(w, fmt.Sprintf("unknown dataset %q", name), http.StatusNotFound)
		return
	}

	if err := h.viewService.Refresh(r.Context(), name); err != nil {
		// Upstream failure is forwarded raw; retrying is the user's call.
		utils.SendJSONError(w, err.Error(), http.StatusBadGateway)
		return
	}

	snap, _ := h.viewService.Snapshot(name)
	utils.SendJSONResponse(w, datasetInfo{Name: name, State: snap.State}, http.StatusOK)
}

// parseQuery folds the request's query string into a Query value, starting
// from the dataset's defaults. Page numbers are clamped later by the
// executor, never rejected here.
func (h *ViewHandler) parseQuery(r *http.Request, ds models.Dataset) (models.Query, error) {
	values := r.URL.Query()

	params := viewQueryParams{
		From:     values.Get("from"),
		To:       values.Get("to"),
		SortDir:  values.Get("sortDir"),
		PageSize: values.Get("pageSize"),
	}
	if err := params.Validate(); err != nil {
		return models.Query{}, fmt.Errorf("invalid query parameters: %w", err)
	}

	q := h.viewService.DefaultQuery(ds)

	if search := values.Get("search"); search != "" {
		q = q.WithSearch(search)
	}
	for field := range ds.Filters {
		if needle := values.Get(field); needle != "" {
			q = q.WithFilter(field, needle)
		}
	}
	if values.Get("onlyNegative") == "true" {
		q = q.WithOnlyNegative(true)
	}

	if params.From != "" || params.To != "" {
		var from, to time.Time
		if params.From != "" {
			from, _ = time.ParseInLocation(dateParamLayout, params.From, time.UTC)
		}
		if params.To != "" {
			to, _ = time.ParseInLocation(dateParamLayout, params.To, time.UTC)
		}
		q = q.WithDateRange(from, to)
	}

	if sortKey := values.Get("sortKey"); sortKey != "" {
		if !ds.SortableField(sortKey) {
			return models.Query{}, fmt.Errorf("invalid query parameters: sortKey %q is not sortable for dataset %q", sortKey, ds.Name)
		}
		dir := ds.DefaultSortDir
		if params.SortDir != "" {
			dir = models.SortDir(params.SortDir)
		}
		q = q.WithSort(sortKey, dir)
	} else if params.SortDir != "" {
		q = q.WithSort(q.SortKey, models.SortDir(params.SortDir))
	}

	if params.PageSize != "" {
		size, _ := strconv.Atoi(params.PageSize)
		q = q.WithPageSize(size)
	}

	if pageStr := values.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil {
			q = q.WithPage(page)
		}
	}

	return q, nil
}
