package httpclient

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/adstrace/internal/common"
)

// RetryHandler handles HTTP request retries with exponential backoff.
// A Retry-After header on a retryable response takes precedence over the
// computed backoff.
type RetryHandler struct {
	maxRetries       int
	baseDelay        time.Duration
	maxDelay         time.Duration
	enableJitter     bool
	retryStatusCodes map[int]bool
	logger           zerolog.Logger
	now              func() time.Time
}

// RetryHandlerConfig configuration for retry handler
type RetryHandlerConfig struct {
	MaxRetries       int
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	EnableJitter     bool
	RetryStatusCodes []int
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(config RetryHandlerConfig, logger zerolog.Logger) *RetryHandler {
	statusCodeMap := make(map[int]bool)
	for _, code := range config.RetryStatusCodes {
		statusCodeMap[code] = true
	}

	return &RetryHandler{
		maxRetries:       config.MaxRetries,
		baseDelay:        config.BaseDelay,
		maxDelay:         config.MaxDelay,
		enableJitter:     config.EnableJitter,
		retryStatusCodes: statusCodeMap,
		logger:           logger.With().Str("component", "RetryHandler").Logger(),
		now:              time.Now,
	}
}

// IsRetryableStatus reports whether the status code is in the retry set.
func (rh *RetryHandler) IsRetryableStatus(statusCode int) bool {
	return rh.retryStatusCodes[statusCode]
}

// CalculateDelay calculates the delay for the next retry attempt using exponential backoff
func (rh *RetryHandler) CalculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return rh.baseDelay
	}

	delay := rh.baseDelay * time.Duration(math.Pow(2, float64(attempt)))

	if delay > rh.maxDelay {
		delay = rh.maxDelay
	}

	if rh.enableJitter {
		tenth := int(delay.Milliseconds() / 10)
		if tenth > 0 {
			delay += time.Duration(rand.Intn(tenth)) * time.Millisecond
		}
	}

	return delay
}

// RetryAfterDelay extracts the server-instructed delay from a Retry-After
// value, which may be numeric seconds or an HTTP date. The second return is
// false when the value is absent or unusable (including dates in the past).
func (rh *RetryHandler) RetryAfterDelay(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(value); err == nil {
		wait := t.Sub(rh.now())
		if wait > 0 {
			return wait, true
		}
	}
	return 0, false
}

// waitForRetry sleeps for the given delay, honoring context cancellation.
func (rh *RetryHandler) waitForRetry(ctx context.Context, delay time.Duration, attempt int, reason string, url string) error {
	rh.logger.Debug().
		Str("url", url).
		Str("reason", reason).
		Int("attempt", attempt+1).
		Int("max_retries", rh.maxRetries).
		Dur("delay", delay).
		Msg("Transient failure, waiting before retry")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// DoWithRetry executes an HTTP request with retry logic. Network errors and
// retryable statuses are retried with backoff until the attempt budget is
// spent. On exhausted retries the last response (if any) is returned with a
// nil error so the caller can distinguish "could not reach" from "reached but
// rejected"; only context cancellation and final network failures surface as
// errors.
func (rh *RetryHandler) DoWithRetry(ctx context.Context, doFunc func(*HTTPRequest) (*HTTPResponse, error), req *HTTPRequest) (*HTTPResponse, error) {
	var lastResp *HTTPResponse
	var lastErr error

	for attempt := 0; attempt <= rh.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := doFunc(req)
		if err != nil {
			lastErr = err
			lastResp = nil

			if attempt < rh.maxRetries {
				if werr := rh.waitForRetry(ctx, rh.CalculateDelay(attempt), attempt, "network error", req.URL); werr != nil {
					return nil, werr
				}
				continue
			}
			break
		}

		lastResp = resp
		lastErr = nil

		if rh.retryStatusCodes[resp.StatusCode] {
			if attempt < rh.maxRetries {
				delay, ok := rh.RetryAfterDelay(resp.Headers["Retry-After"])
				if !ok {
					delay = rh.CalculateDelay(attempt)
				}
				if werr := rh.waitForRetry(ctx, delay, attempt, "retryable status", req.URL); werr != nil {
					return nil, werr
				}
				continue
			}
			rh.logger.Warn().
				Str("url", req.URL).
				Int("status_code", resp.StatusCode).
				Msg("Retry budget exhausted, returning last response")
			break
		}

		// Definitive status, retryable or not: hand it back immediately.
		break
	}

	if lastErr != nil {
		return nil, common.NewNetworkError(req.URL, "all retry attempts failed", lastErr)
	}

	return lastResp, nil
}
