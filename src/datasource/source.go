package datasource

import (
	"context"
	"time"

	"github.com/username/mejoravivienda/backend/src/models"
)

// State is the fetch lifecycle of a source: idle -> loading -> ready|failed.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Snapshot is one immutable load result. A refresh produces a wholly new
// snapshot (new ID, new row slice); rows are never patched in place, so
// consumers can key memoized work on the snapshot ID.
type Snapshot struct {
	ID        string          // changes on every successful load
	Rows      []models.RawRow // nil until the first successful load
	State     State
	Err       error // set when State is StateFailed; opaque to consumers
	FetchedAt time.Time
}

// Source supplies the raw rows of one dataset. Snapshot never blocks;
// Refresh performs the (possibly remote) fetch and swaps the snapshot
// atomically on success. A failed refresh keeps the last good rows and
// surfaces the failure through the snapshot state.
type Source interface {
	Snapshot() Snapshot
	Refresh(ctx context.Context) error
}
