package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestFixtureSource_LoadsOnStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caja_consorcio.json")
	writeFixture(t, path, `[
		{"registro_id": "1", "fecha": "2024-03-01", "valor_num": 25000000, "tipo_gasto": null},
		{"registro_id": "2", "fecha": "2024-03-05", "valor_num": -7500000}
	]`)

	s, err := NewFixtureSource(path)
	require.NoError(t, err)
	defer s.Close()

	snap := s.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, "25000000", snap.Rows[0]["valor_num"])
	_, present := snap.Rows[0]["tipo_gasto"]
	assert.False(t, present)
}

func TestFixtureSource_MissingFileStartsFailed(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFixtureSource(filepath.Join(dir, "no_existe.json"))
	require.NoError(t, err)
	defer s.Close()

	snap := s.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Error(t, snap.Err)
	assert.Nil(t, snap.Rows)
}

func TestFixtureSource_ManualRefreshRecovers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "giros.json")
	s, err := NewFixtureSource(path)
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, StateFailed, s.Snapshot().State)

	writeFixture(t, path, `[{"id": "G-001"}]`)
	require.NoError(t, s.Refresh(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Len(t, snap.Rows, 1)
}

func TestFixtureSource_BadJSONKeepsLastGoodRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caja.json")
	writeFixture(t, path, `[{"registro_id": "1"}]`)

	s, err := NewFixtureSource(path)
	require.NoError(t, err)
	defer s.Close()
	goodID := s.Snapshot().ID

	writeFixture(t, path, `{esto no es json`)
	require.Error(t, s.Refresh(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, goodID, snap.ID)
	assert.Len(t, snap.Rows, 1)
}

func TestFixtureSource_ReloadsOnFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caja.json")
	writeFixture(t, path, `[{"registro_id": "1"}]`)

	s, err := NewFixtureSource(path)
	require.NoError(t, err)
	defer s.Close()
	firstID := s.Snapshot().ID

	writeFixture(t, path, `[{"registro_id": "1"}, {"registro_id": "2"}]`)

	// The watcher reload is asynchronous.
	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.ID != firstID && len(snap.Rows) == 2
	}, 3*time.Second, 20*time.Millisecond)
}
