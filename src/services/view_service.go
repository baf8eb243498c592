package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/mejoravivienda/backend/src/config"
	"github.com/username/mejoravivienda/backend/src/datasource"
	"github.com/username/mejoravivienda/backend/src/exporters"
	"github.com/username/mejoravivienda/backend/src/logger"
	"github.com/username/mejoravivienda/backend/src/models"
	"github.com/username/mejoravivienda/backend/src/processors"
)

// Cache lifetimes for memoized per-snapshot work.
const (
	DefaultCacheExpiration = 5 * time.Minute
	CacheCleanupInterval   = 10 * time.Minute
)

// ErrUnknownDataset is returned for dataset names outside the registry.
var ErrUnknownDataset = fmt.Errorf("unknown dataset")

// ViewService binds a data source and a dataset schema to the view engine.
// The engine itself is pure; the service's only state is the normalization
// memo, keyed by snapshot ID, which is a performance shortcut and never
// required for correctness.
type ViewService struct {
	datasets map[string]models.Dataset
	sources  map[string]datasource.Source
	memo     *cache.Cache
}

func NewViewService(datasets map[string]models.Dataset, sources map[string]datasource.Source, memo *cache.Cache) *ViewService {
	if memo == nil {
		memo = cache.New(DefaultCacheExpiration, CacheCleanupInterval)
	}
	return &ViewService{
		datasets: datasets,
		sources:  sources,
		memo:     memo,
	}
}

// Datasets lists the registered dataset schemas in stable name order.
func (s *ViewService) Datasets() []models.Dataset {
	out := make([]models.Dataset, 0, len(s.datasets))
	for _, name := range config.DatasetNames(s.datasets) {
		out = append(out, s.datasets[name])
	}
	return out
}

// Dataset looks up one schema by registry name.
func (s *ViewService) Dataset(name string) (models.Dataset, bool) {
	ds, ok := s.datasets[name]
	return ds, ok
}

// DefaultQuery builds the match-all query a page starts from.
func (s *ViewService) DefaultQuery(ds models.Dataset) models.Query {
	pageSize := config.Cfg.DefaultPageSize
	if pageSize < 1 {
		pageSize = 50
	}
	return models.NewQuery(ds.DefaultSortKey, ds.DefaultSortDir, pageSize)
}

// Snapshot exposes the current load state of a dataset's source.
func (s *ViewService) Snapshot(name string) (datasource.Snapshot, error) {
	src, ok := s.sources[name]
	if !ok {
		return datasource.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}
	return src.Snapshot(), nil
}

// Refresh re-fetches a dataset's rows, fully replacing the collection. The
// normalization memo for older snapshots ages out of the cache on its own.
func (s *ViewService) Refresh(ctx context.Context, name string) error {
	src, ok := s.sources[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}
	return src.Refresh(ctx)
}

// GetView runs the full pipeline for one dataset and query: normalized
// records (memoized per snapshot) -> filter/sort/paginate -> aggregate.
// While no rows have been loaded the view is computed over an empty
// collection; the snapshot state tells the caller why.
func (s *ViewService) GetView(name string, q models.Query) (models.View, datasource.Snapshot, error) {
	ds, ok := s.datasets[name]
	if !ok {
		return models.View{}, datasource.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}
	snap, err := s.Snapshot(name)
	if err != nil {
		return models.View{}, datasource.Snapshot{}, err
	}

	records := s.normalized(ds, snap)
	view := processors.NewExecutor(ds).Execute(records, q)
	view.Summary = processors.NewAggregator(ds).Summarize(view.Filtered)
	return view, snap, nil
}

// ExportCSV writes the filtered (unpaged) sequence for a query as CSV in the
// dataset's configured column order and returns the attachment filename.
func (s *ViewService) ExportCSV(w io.Writer, name string, q models.Query) (string, error) {
	ds, ok := s.datasets[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}
	view, _, err := s.GetView(name, q)
	if err != nil {
		return "", err
	}
	if err := exporters.EncodeCSV(w, view.Filtered, ds.ExportFields); err != nil {
		return "", err
	}
	return exporters.Filename(ds.Label, time.Now().UTC()), nil
}

// normalized returns the snapshot's records, normalizing at most once per
// snapshot ID.
func (s *ViewService) normalized(ds models.Dataset, snap datasource.Snapshot) []models.Record {
	if len(snap.Rows) == 0 {
		return nil
	}
	key := "records:" + ds.Name + ":" + snap.ID
	if cached, ok := s.memo.Get(key); ok {
		return cached.([]models.Record)
	}
	records := processors.NewNormalizer(ds).Normalize(snap.Rows)
	s.memo.Set(key, records, cache.DefaultExpiration)
	logger.L.Debug("Normalized snapshot", "dataset", ds.Name, "snapshot", snap.ID, "rows", len(records))
	return records
}
