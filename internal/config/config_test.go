package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/adstrace/internal/common"
)

func TestNewDefaultGlobalConfig(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultArchiveCDXAPIURL, cfg.ArchiveConfig.CDXAPIURL)
	assert.Equal(t, DefaultSnapshotsPerYear, cfg.AnalysisConfig.SnapshotsPerYear)
	assert.Equal(t, []int{429, 500, 502, 503, 504}, cfg.HTTPClientConfig.Retry.RetryStatusCodes)
	assert.Equal(t, DefaultStartDate, cfg.RunnerConfig.DefaultStartDate)
	assert.Equal(t, "pubmatic", cfg.AnalysisConfig.FocusProvider)

	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadGlobalConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
archive_config:
  query_limit: 500
analysis_config:
  snapshots_per_year: 4
  focus_provider: google
runner_config:
  default_start_date: "20180101"
log_config:
  log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadGlobalConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.ArchiveConfig.QueryLimit)
	assert.Equal(t, 4, cfg.AnalysisConfig.SnapshotsPerYear)
	assert.Equal(t, "google", cfg.AnalysisConfig.FocusProvider)
	assert.Equal(t, "20180101", cfg.RunnerConfig.DefaultStartDate)
	assert.Equal(t, "debug", cfg.LogConfig.LogLevel)

	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultArchiveCDXAPIURL, cfg.ArchiveConfig.CDXAPIURL)
	assert.Equal(t, DefaultMaxRetries, cfg.HTTPClientConfig.Retry.MaxRetries)
}

func TestLoadGlobalConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"analysis_config": {"exclusivity_high_count": 5}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadGlobalConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.AnalysisConfig.ExclusivityHighCount)
}

func TestLoadGlobalConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadGlobalConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultArchiveReductionCap, cfg.ArchiveConfig.ReductionCap)
}

func TestLoadGlobalConfig_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("archive_config: [1, 2"), 0644))

	_, err := LoadGlobalConfig(path)
	assert.Error(t, err)
}

func TestValidateConfig_RejectsBadValues(t *testing.T) {
	t.Run("bad log level", func(t *testing.T) {
		cfg := NewDefaultGlobalConfig()
		cfg.LogConfig.LogLevel = "verbose"
		assert.ErrorIs(t, ValidateConfig(cfg), common.ErrInvalidConfiguration)
	})

	t.Run("sleep bounds inverted", func(t *testing.T) {
		cfg := NewDefaultGlobalConfig()
		cfg.RunnerConfig.SleepMinMillis = 500
		cfg.RunnerConfig.SleepMaxMillis = 100
		assert.ErrorIs(t, ValidateConfig(cfg), common.ErrInvalidConfiguration)
	})

	t.Run("retry delays inverted", func(t *testing.T) {
		cfg := NewDefaultGlobalConfig()
		cfg.HTTPClientConfig.Retry.BaseDelaySecs = 120
		cfg.HTTPClientConfig.Retry.MaxDelaySecs = 10
		assert.ErrorIs(t, ValidateConfig(cfg), common.ErrInvalidConfiguration)
	})

	t.Run("too many retries", func(t *testing.T) {
		cfg := NewDefaultGlobalConfig()
		cfg.HTTPClientConfig.Retry.MaxRetries = 99
		assert.ErrorIs(t, ValidateConfig(cfg), common.ErrInvalidConfiguration)
	})
}

func TestGetConfigPath_ExplicitFlagWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "my-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	assert.Equal(t, path, GetConfigPath(path))
}

func TestGetConfigPath_EnvFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	t.Setenv("ADSTRACE_CONFIG_PATH", path)

	assert.Equal(t, path, GetConfigPath(""))
}
