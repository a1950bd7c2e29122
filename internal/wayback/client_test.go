package wayback

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/adstrace/internal/config"
	"github.com/aleister1102/adstrace/internal/httpclient"
	"github.com/aleister1102/adstrace/internal/models"
)

func newTestClient(t *testing.T, cdxURL, replayURL string) *Client {
	t.Helper()

	httpCfg := config.NewDefaultHTTPClientConfig()
	httpCfg.Retry.MaxRetries = 0
	httpClient, err := httpclient.NewHTTPClient(httpCfg, zerolog.Nop())
	require.NoError(t, err)

	archiveCfg := config.NewDefaultArchiveConfig()
	archiveCfg.CDXAPIURL = cdxURL
	archiveCfg.ReplayURL = replayURL
	archiveCfg.ReductionCap = 5

	return NewClient(archiveCfg, httpClient, NopSleeper{}, zerolog.Nop())
}

func cdxResponse(rows [][]string) []byte {
	payload := append([][]string{{"timestamp", "original", "statuscode", "digest", "length"}}, rows...)
	data, _ := json.Marshal(payload)
	return data
}

func TestClient_ListObservations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "example.com/ads.txt", r.URL.Query().Get("url"))
		assert.Equal(t, "json", r.URL.Query().Get("output"))
		assert.Equal(t, "20200101", r.URL.Query().Get("from"))
		assert.Equal(t, "20231231", r.URL.Query().Get("to"))

		_, _ = w.Write(cdxResponse([][]string{
			{"20230201120000", "http://example.com/ads.txt", "200", "BBB", "150"},
			{"20230101120000", "http://example.com/ads.txt", "200", "AAA", "120"},
			{"20230101120000", "http://example.com/ads.txt", "200", "AAA", "120"},
		}))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	index, err := client.ListObservations(context.Background(), "example.com", "20200101", "20231231")
	require.NoError(t, err)

	require.Len(t, index.Observations, 2)
	assert.Equal(t, "20230101120000", index.Observations[0].Timestamp)
	assert.Equal(t, "20230201120000", index.Observations[1].Timestamp)
	require.NotNil(t, index.Observations[0].Length)
	assert.Equal(t, int64(120), *index.Observations[0].Length)

	assert.Equal(t, 2, index.RawCount)
	assert.Equal(t, map[int]int{2020: 0, 2021: 0, 2022: 0, 2023: 2}, index.PerYearCounts)
	assert.Equal(t, 31, index.LongestGapDays)
	assert.False(t, index.UsedWildcardMode)
}

func TestClient_ListObservations_WildcardFallback(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pattern := r.URL.Query().Get("url")
		queries = append(queries, pattern)

		if pattern == "example.com/ads.txt" {
			_, _ = w.Write([]byte("[]"))
			return
		}
		_, _ = w.Write(cdxResponse([][]string{
			{"20230101120000", "http://www.example.com/ads.txt", "200", "AAA", "99"},
		}))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	index, err := client.ListObservations(context.Background(), "example.com", "", "")
	require.NoError(t, err)

	require.Equal(t, []string{"example.com/ads.txt", "example.com/*ads.txt"}, queries)
	require.Len(t, index.Observations, 1)
	assert.True(t, index.UsedWildcardMode)
}

func TestClient_ListObservations_DailyReductionAboveCap(t *testing.T) {
	rows := make([][]string, 0, 8)
	// Eight observations across two days, cap is five.
	for _, ts := range []string{
		"20230101080000", "20230101100000", "20230101120000", "20230101140000",
		"20230102080000", "20230102100000", "20230102120000", "20230102140000",
	} {
		rows = append(rows, []string{ts, "http://example.com/ads.txt", "200", "D" + ts, "10"})
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(cdxResponse(rows))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	index, err := client.ListObservations(context.Background(), "example.com", "", "")
	require.NoError(t, err)

	assert.Equal(t, 8, index.RawCount)
	require.Len(t, index.Observations, 2)
	assert.Equal(t, "20230101140000", index.Observations[0].Timestamp)
	assert.Equal(t, "20230102140000", index.Observations[1].Timestamp)
}

func TestClient_ListObservations_DegradedIndexIsEmptyNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	httpCfg := config.NewDefaultHTTPClientConfig()
	httpCfg.Retry.MaxRetries = 0
	httpClient, err := httpclient.NewHTTPClient(httpCfg, zerolog.Nop())
	require.NoError(t, err)

	archiveCfg := config.NewDefaultArchiveConfig()
	archiveCfg.CDXAPIURL = server.URL
	archiveCfg.ReplayURL = server.URL

	var logBuf bytes.Buffer
	client := NewClient(archiveCfg, httpClient, NopSleeper{}, zerolog.New(&logBuf))

	index, err := client.ListObservations(context.Background(), "example.com", "", "")
	require.NoError(t, err)

	assert.Empty(t, index.Observations)
	assert.Equal(t, 0, index.RawCount)

	// The rejection is logged with status and endpoint, not propagated.
	assert.Contains(t, logBuf.String(), "HTTP 502 error for")
	assert.Contains(t, logBuf.String(), server.URL)
}

func TestClient_FetchSnapshot(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/20230101120000/http://example.com/ads.txt", r.URL.Path)
		_, _ = w.Write([]byte("google.com, pub-1, DIRECT\n"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	resp, err := client.FetchSnapshot(context.Background(), models.Observation{
		Timestamp:   "20230101120000",
		OriginalURL: "http://example.com/ads.txt",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "google.com, pub-1, DIRECT\n", string(resp.Body))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
