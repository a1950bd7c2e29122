package config

// HTTPClientConfig defines configuration for the resilient fetch layer
type HTTPClientConfig struct {
	// Request timeout in seconds
	TimeoutSecs int `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"omitempty,min=1,max=3600"`
	// User agent sent on every outbound request
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	// Follow redirects on replay fetches
	FollowRedirects bool `json:"follow_redirects" yaml:"follow_redirects"`
	// Enable HTTP/2 on the transport
	EnableHTTP2 bool `json:"enable_http2" yaml:"enable_http2"`
	// Retry behavior for transient failures
	Retry RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// RetryConfig defines configuration for HTTP request retries
type RetryConfig struct {
	// Maximum number of retry attempts for transient failures
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty" validate:"omitempty,min=0,max=10"`
	// Base delay in seconds for exponential backoff
	BaseDelaySecs int `json:"base_delay_secs,omitempty" yaml:"base_delay_secs,omitempty" validate:"omitempty,min=1,max=300"`
	// Maximum delay in seconds for exponential backoff
	MaxDelaySecs int `json:"max_delay_secs,omitempty" yaml:"max_delay_secs,omitempty" validate:"omitempty,min=1,max=3600"`
	// Enable jitter to randomize delays slightly
	EnableJitter bool `json:"enable_jitter" yaml:"enable_jitter"`
	// HTTP status codes that should trigger retries
	RetryStatusCodes []int `json:"retry_status_codes,omitempty" yaml:"retry_status_codes,omitempty"`
}

// NewDefaultHTTPClientConfig creates default HTTP client configuration
func NewDefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		TimeoutSecs:     DefaultHTTPTimeoutSecs,
		UserAgent:       DefaultArchiveUserAgent,
		FollowRedirects: true,
		EnableHTTP2:     true,
		Retry:           NewDefaultRetryConfig(),
	}
}

// NewDefaultRetryConfig creates default retry configuration
func NewDefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:       DefaultMaxRetries,
		BaseDelaySecs:    DefaultBaseDelaySecs,
		MaxDelaySecs:     DefaultMaxDelaySecs,
		EnableJitter:     true,
		RetryStatusCodes: []int{429, 500, 502, 503, 504},
	}
}
