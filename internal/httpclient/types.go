package httpclient

import (
	"context"
	"net/url"
)

// HTTPRequest describes one outbound request to an archive endpoint.
type HTTPRequest struct {
	URL     string
	Method  string
	Params  url.Values
	Headers map[string]string
	Context context.Context
}

// HTTPResponse is the collected response of one request.
type HTTPResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	FinalURL   string
}

// IsSuccess reports whether the response carries a 2xx status.
func (r *HTTPResponse) IsSuccess() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}
