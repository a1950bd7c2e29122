package httpclient

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/adstrace/internal/common"
)

func newTestRetryHandler(maxRetries int, baseDelay time.Duration) *RetryHandler {
	return NewRetryHandler(RetryHandlerConfig{
		MaxRetries:       maxRetries,
		BaseDelay:        baseDelay,
		MaxDelay:         10 * baseDelay,
		EnableJitter:     false,
		RetryStatusCodes: []int{429, 500, 502, 503, 504},
	}, zerolog.Nop())
}

func TestRetryHandler_IsRetryableStatus(t *testing.T) {
	rh := newTestRetryHandler(3, time.Millisecond)

	for _, code := range []int{429, 500, 502, 503, 504} {
		assert.True(t, rh.IsRetryableStatus(code), "status %d should be retryable", code)
	}
	for _, code := range []int{200, 301, 403, 404, 501} {
		assert.False(t, rh.IsRetryableStatus(code), "status %d should not be retryable", code)
	}
}

func TestRetryHandler_CalculateDelay(t *testing.T) {
	rh := NewRetryHandler(RetryHandlerConfig{
		MaxRetries:   5,
		BaseDelay:    time.Second,
		MaxDelay:     5 * time.Second,
		EnableJitter: false,
	}, zerolog.Nop())

	assert.Equal(t, time.Second, rh.CalculateDelay(0))
	assert.Equal(t, 2*time.Second, rh.CalculateDelay(1))
	assert.Equal(t, 4*time.Second, rh.CalculateDelay(2))
	// Capped at MaxDelay from here on.
	assert.Equal(t, 5*time.Second, rh.CalculateDelay(3))
	assert.Equal(t, 5*time.Second, rh.CalculateDelay(10))
}

func TestRetryHandler_RetryAfterDelay(t *testing.T) {
	rh := newTestRetryHandler(3, time.Millisecond)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rh.now = func() time.Time { return now }

	t.Run("numeric seconds", func(t *testing.T) {
		delay, ok := rh.RetryAfterDelay("30")
		require.True(t, ok)
		assert.Equal(t, 30*time.Second, delay)
	})

	t.Run("http date in the future", func(t *testing.T) {
		delay, ok := rh.RetryAfterDelay(now.Add(90 * time.Second).Format(http.TimeFormat))
		require.True(t, ok)
		assert.Equal(t, 90*time.Second, delay)
	})

	t.Run("http date in the past is unusable", func(t *testing.T) {
		_, ok := rh.RetryAfterDelay(now.Add(-time.Minute).Format(http.TimeFormat))
		assert.False(t, ok)
	})

	t.Run("negative seconds", func(t *testing.T) {
		_, ok := rh.RetryAfterDelay("-5")
		assert.False(t, ok)
	})

	t.Run("garbage", func(t *testing.T) {
		_, ok := rh.RetryAfterDelay("soon")
		assert.False(t, ok)
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := rh.RetryAfterDelay("")
		assert.False(t, ok)
	})
}

func TestRetryHandler_DoWithRetry_RetryableThenSuccess(t *testing.T) {
	rh := newTestRetryHandler(3, time.Millisecond)

	var calls int32
	doFunc := func(req *HTTPRequest) (*HTTPResponse, error) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			return &HTTPResponse{StatusCode: http.StatusServiceUnavailable}, nil
		}
		return &HTTPResponse{StatusCode: http.StatusOK, Body: []byte("ok")}, nil
	}

	resp, err := rh.DoWithRetry(context.Background(), doFunc, &HTTPRequest{URL: "http://example.test"})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetryHandler_DoWithRetry_ExhaustedRetriesReturnsLastResponse(t *testing.T) {
	rh := newTestRetryHandler(2, time.Millisecond)

	var calls int32
	doFunc := func(req *HTTPRequest) (*HTTPResponse, error) {
		atomic.AddInt32(&calls, 1)
		return &HTTPResponse{StatusCode: http.StatusTooManyRequests}, nil
	}

	resp, err := rh.DoWithRetry(context.Background(), doFunc, &HTTPRequest{URL: "http://example.test"})
	require.NoError(t, err, "exhausted retryable status must yield the response, not an error")
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "initial attempt plus two retries")
}

func TestRetryHandler_DoWithRetry_NetworkFailureAfterRetries(t *testing.T) {
	rh := newTestRetryHandler(2, time.Millisecond)

	var calls int32
	doFunc := func(req *HTTPRequest) (*HTTPResponse, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("connection refused")
	}

	resp, err := rh.DoWithRetry(context.Background(), doFunc, &HTTPRequest{URL: "http://example.test"})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	var netErr *common.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "http://example.test", netErr.URL)
	assert.EqualError(t, netErr.Unwrap(), "connection refused")
}

func TestRetryHandler_DoWithRetry_NonRetryableStatusImmediate(t *testing.T) {
	rh := newTestRetryHandler(3, time.Second)

	var calls int32
	doFunc := func(req *HTTPRequest) (*HTTPResponse, error) {
		atomic.AddInt32(&calls, 1)
		return &HTTPResponse{StatusCode: http.StatusNotFound}, nil
	}

	start := time.Now()
	resp, err := rh.DoWithRetry(context.Background(), doFunc, &HTTPRequest{URL: "http://example.test"})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Less(t, time.Since(start), time.Second, "definitive status must come back without delay")
}

func TestRetryHandler_DoWithRetry_RetryAfterOverridesBackoff(t *testing.T) {
	// Base delay far larger than the test budget; the Retry-After value of 0
	// seconds must win over the computed backoff.
	rh := newTestRetryHandler(1, 10*time.Second)

	var calls int32
	doFunc := func(req *HTTPRequest) (*HTTPResponse, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return &HTTPResponse{
				StatusCode: http.StatusTooManyRequests,
				Headers:    map[string]string{"Retry-After": "0"},
			}, nil
		}
		return &HTTPResponse{StatusCode: http.StatusOK}, nil
	}

	start := time.Now()
	resp, err := rh.DoWithRetry(context.Background(), doFunc, &HTTPRequest{URL: "http://example.test"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRetryHandler_DoWithRetry_ContextCancellation(t *testing.T) {
	rh := newTestRetryHandler(5, time.Minute)

	doFunc := func(req *HTTPRequest) (*HTTPResponse, error) {
		return &HTTPResponse{StatusCode: http.StatusServiceUnavailable}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	resp, err := rh.DoWithRetry(ctx, doFunc, &HTTPRequest{URL: "http://example.test"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, resp)
}
