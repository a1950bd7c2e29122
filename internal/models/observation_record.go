package models

import "time"

// ObservationRecord is the Parquet persistence shape for one fetched
// observation. Raw content is stored compressed for later cross-referencing.
type ObservationRecord struct {
	Domain      string    `parquet:"domain,zstd"`
	Timestamp   string    `parquet:"timestamp,zstd"`
	OriginalURL string    `parquet:"original_url,zstd"`
	StatusCode  int       `parquet:"status_code"`
	Digest      string    `parquet:"digest,zstd"`
	Length      int64     `parquet:"length,optional"`
	Suspect     bool      `parquet:"suspect"`
	Content     []byte    `parquet:"content,zstd,optional"`
	FetchedAt   time.Time `parquet:"fetched_at"`
}
