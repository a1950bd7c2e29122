package config

// ArchiveConfig defines configuration for the archive index and replay endpoints
type ArchiveConfig struct {
	// Base URL of the CDX discovery endpoint
	CDXAPIURL string `json:"cdx_api_url,omitempty" yaml:"cdx_api_url,omitempty" validate:"omitempty,url"`
	// Base URL of the snapshot replay endpoint
	ReplayURL string `json:"replay_url,omitempty" yaml:"replay_url,omitempty" validate:"omitempty,url"`
	// Maximum number of index rows requested per query
	QueryLimit int `json:"query_limit,omitempty" yaml:"query_limit,omitempty" validate:"omitempty,min=1"`
	// Above this many observations the index is reduced to one per calendar day
	ReductionCap int `json:"reduction_cap,omitempty" yaml:"reduction_cap,omitempty" validate:"omitempty,min=1"`
	// Status codes accepted from the discovery endpoint
	StatusFilters []string `json:"status_filters,omitempty" yaml:"status_filters,omitempty"`
}

// NewDefaultArchiveConfig creates default archive configuration
func NewDefaultArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		CDXAPIURL:     DefaultArchiveCDXAPIURL,
		ReplayURL:     DefaultArchiveReplayURL,
		QueryLimit:    DefaultArchiveQueryLimit,
		ReductionCap:  DefaultArchiveReductionCap,
		StatusFilters: []string{"200", "301", "302"},
	}
}
