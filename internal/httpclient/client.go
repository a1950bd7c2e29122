package httpclient

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/aleister1102/adstrace/internal/config"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// HTTPClient wraps net/http.Client with retry handling. It is the sole I/O
// primitive for the archive index and content endpoints.
type HTTPClient struct {
	client       *http.Client
	config       config.HTTPClientConfig
	logger       zerolog.Logger
	retryHandler *RetryHandler
}

// NewHTTPClient creates a new HTTP client with the given configuration.
func NewHTTPClient(cfg config.HTTPClientConfig, logger zerolog.Logger) (*HTTPClient, error) {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	if cfg.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   time.Duration(cfg.TimeoutSecs) * time.Second,
	}

	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	retryHandler := NewRetryHandler(RetryHandlerConfig{
		MaxRetries:       cfg.Retry.MaxRetries,
		BaseDelay:        time.Duration(cfg.Retry.BaseDelaySecs) * time.Second,
		MaxDelay:         time.Duration(cfg.Retry.MaxDelaySecs) * time.Second,
		EnableJitter:     cfg.Retry.EnableJitter,
		RetryStatusCodes: cfg.Retry.RetryStatusCodes,
	}, logger)

	logger.Debug().
		Int("timeout_secs", cfg.TimeoutSecs).
		Bool("follow_redirects", cfg.FollowRedirects).
		Bool("http2_enabled", cfg.EnableHTTP2).
		Int("max_retries", cfg.Retry.MaxRetries).
		Msg("HTTP client created")

	return &HTTPClient{
		client:       client,
		config:       cfg,
		logger:       logger.With().Str("component", "HTTPClient").Logger(),
		retryHandler: retryHandler,
	}, nil
}

// Fetch issues a GET with retry handling. It never panics and never returns a
// partially-read response: the result is either nil with an error (could not
// reach the service after the full retry budget), or a complete response whose
// status the caller interprets. Non-retryable statuses are returned on the
// first attempt without delay.
func (c *HTTPClient) Fetch(ctx context.Context, rawURL string, req *HTTPRequest) (*HTTPResponse, error) {
	if req == nil {
		req = &HTTPRequest{}
	}
	req.URL = rawURL
	req.Method = http.MethodGet
	req.Context = ctx

	return c.retryHandler.DoWithRetry(ctx, c.do, req)
}

// do performs a single HTTP request.
func (c *HTTPClient) do(req *HTTPRequest) (*HTTPResponse, error) {
	httpReq, err := http.NewRequest(req.Method, req.URL, nil)
	if err != nil {
		return nil, WrapError(err, "failed to create HTTP request")
	}

	if req.Context != nil {
		httpReq = httpReq.WithContext(req.Context)
	}

	if len(req.Params) > 0 {
		httpReq.URL.RawQuery = req.Params.Encode()
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "*/*")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, WrapError(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, WrapError(err, "failed to read response body")
	}

	httpResp := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    make(map[string]string),
		Body:       buf.Bytes(),
		FinalURL:   resp.Request.URL.String(),
	}

	for key, values := range resp.Header {
		if len(values) > 0 {
			httpResp.Headers[key] = values[0]
		}
	}

	return httpResp, nil
}
