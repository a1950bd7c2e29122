package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/adstrace/internal/common"
	"gopkg.in/yaml.v3"
)

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	ArchiveConfig         ArchiveConfig         `json:"archive_config,omitempty" yaml:"archive_config,omitempty"`
	AnalysisConfig        AnalysisConfig        `json:"analysis_config,omitempty" yaml:"analysis_config,omitempty"`
	HTTPClientConfig      HTTPClientConfig      `json:"http_client_config,omitempty" yaml:"http_client_config,omitempty"`
	CatalogPath           string                `json:"catalog_path,omitempty" yaml:"catalog_path,omitempty"`
	LogConfig             LogConfig             `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	ReporterConfig        ReporterConfig        `json:"reporter_config,omitempty" yaml:"reporter_config,omitempty"`
	ResourceLimiterConfig ResourceLimiterConfig `json:"resource_limiter_config,omitempty" yaml:"resource_limiter_config,omitempty"`
	RunlogConfig          RunlogConfig          `json:"runlog_config,omitempty" yaml:"runlog_config,omitempty"`
	RunnerConfig          RunnerConfig          `json:"runner_config,omitempty" yaml:"runner_config,omitempty"`
	StorageConfig         StorageConfig         `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		ArchiveConfig:         NewDefaultArchiveConfig(),
		AnalysisConfig:        NewDefaultAnalysisConfig(),
		HTTPClientConfig:      NewDefaultHTTPClientConfig(),
		LogConfig:             NewDefaultLogConfig(),
		ReporterConfig:        NewDefaultReporterConfig(),
		ResourceLimiterConfig: NewDefaultResourceLimiterConfig(),
		RunlogConfig:          NewDefaultRunlogConfig(),
		RunnerConfig:          NewDefaultRunnerConfig(),
		StorageConfig:         NewDefaultStorageConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// YAML is preferred if the file extension is .yaml or .yml; otherwise the
// content is parsed as JSON. An empty resolved path yields pure defaults.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, common.WrapErrorf(err, "failed to read config file '%s'", filePath)
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}

	return cfg, nil
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
