package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/username/mejoravivienda/backend/src/logger"
	"github.com/username/mejoravivienda/backend/src/models"
)

// RowStoreSource fetches the rows of one table from the remote row store
// (a PostgREST-style HTTP API). It owns no interpretation of the data: rows
// come back as untyped field->value mappings for the normalizer.
type RowStoreSource struct {
	baseURL    string
	apiKey     string
	table      string
	httpClient *http.Client

	mu   sync.RWMutex
	snap Snapshot
}

func NewRowStoreSource(baseURL, apiKey, table string, timeout time.Duration) *RowStoreSource {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	return &RowStoreSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		table:   table,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		snap: Snapshot{State: StateIdle},
	}
}

// Snapshot returns the current load state without blocking.
func (s *RowStoreSource) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Refresh fetches the table and replaces the snapshot wholesale. On failure
// the previous rows are kept and the snapshot is marked failed with the
// opaque error; there is no automatic retry.
func (s *RowStoreSource) Refresh(ctx context.Context) error {
	s.setState(StateLoading)

	rows, err := s.fetch(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		logger.L.Error("Row store fetch failed", "table", s.table, "error", err)
		s.snap.State = StateFailed
		s.snap.Err = err
		return err
	}

	s.snap = Snapshot{
		ID:        uuid.New().String(),
		Rows:      rows,
		State:     StateReady,
		FetchedAt: time.Now().UTC(),
	}
	logger.L.Info("Row store fetch succeeded", "table", s.table, "rows", len(rows))
	return nil
}

func (s *RowStoreSource) setState(state State) {
	s.mu.Lock()
	s.snap.State = state
	s.mu.Unlock()
}

func (s *RowStoreSource) fetch(ctx context.Context) ([]models.RawRow, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?select=%s", s.baseURL, url.PathEscape(s.table), url.QueryEscape("*"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building row store request for %s: %w", s.table, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", s.table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("row store returned status %d for %s: %s", resp.StatusCode, s.table, string(body))
	}

	var raw []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding rows for %s: %w", s.table, err)
	}

	return StringifyRows(raw), nil
}

// StringifyRows converts decoded JSON rows into RawRows. JSON null values
// are dropped so that they read back as absent fields, which is the state
// the normalizer distinguishes from an explicit empty string.
func StringifyRows(raw []map[string]any) []models.RawRow {
	rows := make([]models.RawRow, 0, len(raw))
	for _, obj := range raw {
		row := make(models.RawRow, len(obj))
		for field, value := range obj {
			switch v := value.(type) {
			case nil:
				// absent
			case string:
				row[field] = v
			case float64:
				row[field] = strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				row[field] = strconv.FormatBool(v)
			default:
				encoded, err := json.Marshal(v)
				if err == nil {
					row[field] = string(encoded)
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}
