package config

// StorageConfig defines configuration for observation record storage
type StorageConfig struct {
	// Base path for Parquet observation archives
	ParquetBasePath string `json:"parquet_base_path,omitempty" yaml:"parquet_base_path,omitempty"`
	// When false the observation archive is not written
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		ParquetBasePath: DefaultStorageParquetBasePath,
		Enabled:         true,
	}
}

// RunlogConfig defines configuration for the per-domain progress log
type RunlogConfig struct {
	// Path to the SQLite database holding per-domain run state
	SQLiteDBPath string `json:"sqlite_db_path,omitempty" yaml:"sqlite_db_path,omitempty"`
}

// NewDefaultRunlogConfig creates default runlog configuration
func NewDefaultRunlogConfig() RunlogConfig {
	return RunlogConfig{
		SQLiteDBPath: DefaultRunlogSQLitePath,
	}
}
