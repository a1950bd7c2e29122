package models

import (
	"time"
)

// CDXTimestampLayout is the timestamp format used by the archive index.
const CDXTimestampLayout = "20060102150405"

// Observation is one historical capture of a domain's declarations file as
// recorded by the archive index. Immutable once retrieved; ordered ascending
// by Timestamp.
type Observation struct {
	// Timestamp is the capture time in YYYYMMDDHHMMSS form, sortable as a string.
	Timestamp string
	// OriginalURL is the URL the capture was taken from.
	OriginalURL string
	// StatusCode is the archived response status, as reported by the index.
	StatusCode string
	// Digest is an opaque fixed-length content fingerprint used for dedup.
	Digest string
	// Length is the archived payload size in bytes; nil when the index omits it.
	Length *int64
}

// Key identifies an observation for caching and dedup purposes.
type Key struct {
	Timestamp string
	Digest    string
}

// Key returns the cache/dedup identity of the observation.
func (o Observation) Key() Key {
	return Key{Timestamp: o.Timestamp, Digest: o.Digest}
}

// Day returns the calendar-day prefix (YYYYMMDD) of the timestamp.
func (o Observation) Day() string {
	if len(o.Timestamp) < 8 {
		return o.Timestamp
	}
	return o.Timestamp[:8]
}

// Year returns the calendar-year prefix (YYYY) of the timestamp.
func (o Observation) Year() string {
	if len(o.Timestamp) < 4 {
		return o.Timestamp
	}
	return o.Timestamp[:4]
}

// Time parses the observation timestamp. Returns the zero time on malformed input.
func (o Observation) Time() time.Time {
	t, err := time.Parse(CDXTimestampLayout, o.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// DateString formats the observation timestamp as YYYY-MM-DD for reporting.
func (o Observation) DateString() string {
	t := o.Time()
	if t.IsZero() {
		return o.Timestamp
	}
	return t.Format("2006-01-02")
}
