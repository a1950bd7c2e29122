package datastore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/adstrace/internal/common"
	"github.com/aleister1102/adstrace/internal/config"
	"github.com/aleister1102/adstrace/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// ObservationStore persists fetched observation records to Parquet files, one
// file per domain, for later cross-referencing outside a run.
type ObservationStore struct {
	config *config.StorageConfig
	logger zerolog.Logger
}

// NewObservationStore creates a new ObservationStore.
func NewObservationStore(cfg *config.StorageConfig, logger zerolog.Logger) (*ObservationStore, error) {
	if cfg.Enabled && cfg.ParquetBasePath == "" {
		return nil, common.NewValidationError("parquet_base_path", cfg.ParquetBasePath, "ParquetBasePath is not configured for observations")
	}
	return &ObservationStore{
		config: cfg,
		logger: logger.With().Str("component", "ObservationStore").Logger(),
	}, nil
}

// StoreRecords persists a slice of ObservationRecord to the domain's Parquet
// file, after the records already stored there by earlier runs. A Parquet
// stream cannot be appended to in place, so the existing records are read
// back and the whole file is rewritten.
func (s *ObservationStore) StoreRecords(ctx context.Context, domain string, records []models.ObservationRecord) error {
	if !s.config.Enabled || len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	filePath, err := s.prepareOutputFile(domain)
	if err != nil {
		return err
	}

	existing, err := s.readParquetFile(ctx, filePath)
	if err != nil {
		return err
	}

	if err := s.writeToParquetFile(filePath, append(existing, records...)); err != nil {
		return err
	}

	s.logger.Info().Str("file_path", filePath).Int("records_written", len(records)).Int("records_total", len(existing)+len(records)).Msg("Wrote observation records to Parquet file")
	return nil
}

func (s *ObservationStore) prepareOutputFile(domain string) (string, error) {
	observationsDir := filepath.Join(s.config.ParquetBasePath, "observations")
	if err := os.MkdirAll(observationsDir, 0755); err != nil {
		return "", common.WrapError(err, "failed to create observations Parquet directory: "+observationsDir)
	}
	fileName := sanitizeDomain(domain) + ".parquet"
	return filepath.Join(observationsDir, fileName), nil
}

func (s *ObservationStore) writeToParquetFile(filePath string, records []models.ObservationRecord) error {
	file, err := os.OpenFile(filePath, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return common.WrapError(err, "failed to open/create observations parquet file: "+filePath)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[models.ObservationRecord](file, parquet.Compression(&parquet.Zstd))

	if _, err := writer.Write(records); err != nil {
		_ = writer.Close()
		return common.WrapError(err, "failed to write observation records to parquet file")
	}

	return writer.Close()
}

// LoadRecords reads all persisted observation records for a domain. A missing
// file yields an empty list.
func (s *ObservationStore) LoadRecords(ctx context.Context, domain string) ([]models.ObservationRecord, error) {
	filePath, err := s.prepareOutputFile(domain)
	if err != nil {
		return nil, err
	}
	return s.readParquetFile(ctx, filePath)
}

func (s *ObservationStore) readParquetFile(ctx context.Context, filePath string) ([]models.ObservationRecord, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return []models.ObservationRecord{}, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, common.WrapError(err, "failed to open observations parquet file for reading: "+filePath)
	}
	defer file.Close()

	reader := parquet.NewGenericReader[models.ObservationRecord](file)
	defer reader.Close()

	records := make([]models.ObservationRecord, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch := make([]models.ObservationRecord, 100)
		n, err := reader.Read(batch)
		if n > 0 {
			records = append(records, batch[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, common.WrapError(err, "failed to read observation records from parquet file")
		}
	}

	return records, nil
}

// sanitizeDomain makes a domain safe for use as a file name.
func sanitizeDomain(domain string) string {
	replacer := strings.NewReplacer("/", "_", ":", "_", "*", "_")
	return replacer.Replace(domain)
}
