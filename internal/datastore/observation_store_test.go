package datastore

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/adstrace/internal/config"
	"github.com/aleister1102/adstrace/internal/models"
)

func newTestStore(t *testing.T) *ObservationStore {
	t.Helper()
	cfg := &config.StorageConfig{
		ParquetBasePath: t.TempDir(),
		Enabled:         true,
	}
	store, err := NewObservationStore(cfg, zerolog.Nop())
	require.NoError(t, err)
	return store
}

func testRecords(domain string) []models.ObservationRecord {
	fetched := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return []models.ObservationRecord{
		{
			Domain:      domain,
			Timestamp:   "20230101120000",
			OriginalURL: "http://" + domain + "/ads.txt",
			StatusCode:  200,
			Digest:      "AAA",
			Length:      120,
			Suspect:     false,
			Content:     []byte("google.com, pub-1, DIRECT\n"),
			FetchedAt:   fetched,
		},
		{
			Domain:      domain,
			Timestamp:   "20230601120000",
			OriginalURL: "http://" + domain + "/ads.txt",
			StatusCode:  404,
			Digest:      "BBB",
			Suspect:     true,
			FetchedAt:   fetched,
		},
	}
}

func TestObservationStore_StoreAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.StoreRecords(ctx, "example.com", testRecords("example.com")))

	loaded, err := store.LoadRecords(ctx, "example.com")
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "20230101120000", loaded[0].Timestamp)
	assert.Equal(t, int64(120), loaded[0].Length)
	assert.Equal(t, []byte("google.com, pub-1, DIRECT\n"), loaded[0].Content)
	assert.True(t, loaded[1].Suspect)
}

func TestObservationStore_SecondRunKeepsEarlierRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.StoreRecords(ctx, "example.com", testRecords("example.com")))

	later := []models.ObservationRecord{
		{
			Domain:      "example.com",
			Timestamp:   "20240101120000",
			OriginalURL: "http://example.com/ads.txt",
			StatusCode:  200,
			Digest:      "CCC",
			Length:      140,
			Content:     []byte("google.com, pub-2, DIRECT\n"),
			FetchedAt:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, store.StoreRecords(ctx, "example.com", later))

	loaded, err := store.LoadRecords(ctx, "example.com")
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	assert.Equal(t, "20230101120000", loaded[0].Timestamp)
	assert.Equal(t, "20230601120000", loaded[1].Timestamp)
	assert.Equal(t, "20240101120000", loaded[2].Timestamp)
	assert.Equal(t, []byte("google.com, pub-2, DIRECT\n"), loaded[2].Content)
}

func TestObservationStore_LoadMissingDomain(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.LoadRecords(context.Background(), "never-stored.example")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestObservationStore_DisabledIsNoop(t *testing.T) {
	cfg := &config.StorageConfig{Enabled: false}
	store, err := NewObservationStore(cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.NoError(t, store.StoreRecords(context.Background(), "example.com", testRecords("example.com")))
}

func TestNewObservationStore_RequiresBasePath(t *testing.T) {
	_, err := NewObservationStore(&config.StorageConfig{Enabled: true}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSanitizeDomain(t *testing.T) {
	assert.Equal(t, "example.com", sanitizeDomain("example.com"))
	assert.Equal(t, "example.com_sub", sanitizeDomain("example.com/sub"))
	assert.Equal(t, "_.example.com", sanitizeDomain("*.example.com"))
}
