package runlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "runlog.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_GetAbsentDomain(t *testing.T) {
	store := newTestStore(t)

	run, err := store.Get("never-seen.example")
	require.NoError(t, err)
	assert.Nil(t, run, "absence is nil, nil so the caller falls back to the default start date")
}

func TestStore_PutAndGet(t *testing.T) {
	store := newTestStore(t)

	lastRun := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, store.Put(DomainRun{
		Domain:      "example.com",
		LastChecked: "20240301",
		LastRun:     lastRun,
		EntryCount:  42,
	}))

	run, err := store.Get("example.com")
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Equal(t, "example.com", run.Domain)
	assert.Equal(t, "20240301", run.LastChecked)
	assert.Equal(t, 42, run.EntryCount)
	assert.True(t, run.LastRun.Equal(lastRun))
}

func TestStore_PutUpserts(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(DomainRun{
		Domain:      "example.com",
		LastChecked: "20240101",
		LastRun:     time.Now().UTC(),
		EntryCount:  5,
	}))
	require.NoError(t, store.Put(DomainRun{
		Domain:      "example.com",
		LastChecked: "20240601",
		LastRun:     time.Now().UTC(),
		EntryCount:  9,
	}))

	run, err := store.Get("example.com")
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Equal(t, "20240601", run.LastChecked)
	assert.Equal(t, 9, run.EntryCount)
}
