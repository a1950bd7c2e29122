package config

// ReporterConfig defines configuration for report generation
type ReporterConfig struct {
	// Directory the report artifact is written to
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	// File name of the report artifact
	OutputFile string `json:"output_file,omitempty" yaml:"output_file,omitempty"`
	// Optional template path overriding the embedded template
	TemplatePath string `json:"template_path,omitempty" yaml:"template_path,omitempty"`
}

// NewDefaultReporterConfig creates default reporter configuration
func NewDefaultReporterConfig() ReporterConfig {
	return ReporterConfig{
		OutputDir:  DefaultReporterOutputDir,
		OutputFile: DefaultReporterOutputFile,
	}
}
