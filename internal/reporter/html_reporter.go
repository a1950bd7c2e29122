package reporter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/adstrace/internal/config"
	"github.com/aleister1102/adstrace/internal/models"
)

//go:embed templates/report.html.tmpl
var defaultTemplate embed.FS

const (
	defaultHtmlReportTemplateName = "report.html.tmpl"
	reportTitle                   = "adstrace Supply Path Report"
	filePermissions               = 0644
)

// HtmlReporter renders a run's domain results into a single HTML artifact.
type HtmlReporter struct {
	cfg      *config.ReporterConfig
	logger   zerolog.Logger
	template *template.Template
}

// NewHtmlReporter creates a new HtmlReporter.
func NewHtmlReporter(cfg *config.ReporterConfig, appLogger zerolog.Logger) (*HtmlReporter, error) {
	moduleLogger := appLogger.With().Str("component", "HtmlReporter").Logger()

	reporter := &HtmlReporter{
		cfg:    cfg,
		logger: moduleLogger,
	}

	if err := reporter.initializeOutputDirectory(); err != nil {
		return nil, err
	}

	if err := reporter.setupTemplate(); err != nil {
		return nil, err
	}

	moduleLogger.Info().Msg("HtmlReporter initialized successfully.")
	return reporter, nil
}

// initializeOutputDirectory ensures output directory exists
func (r *HtmlReporter) initializeOutputDirectory() error {
	if r.cfg.OutputDir == "" {
		r.cfg.OutputDir = config.DefaultReporterOutputDir
		r.logger.Info().Str("default_dir", r.cfg.OutputDir).Msg("OutputDir not specified, using default.")
	}

	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create report output directory '%s': %w", r.cfg.OutputDir, err)
	}
	return nil
}

// setupTemplate initializes the HTML template
func (r *HtmlReporter) setupTemplate() error {
	if r.cfg.TemplatePath != "" {
		return r.loadCustomTemplate()
	}
	return r.loadEmbeddedTemplate()
}

// loadCustomTemplate loads template from file path
func (r *HtmlReporter) loadCustomTemplate() error {
	r.logger.Info().Str("template_path", r.cfg.TemplatePath).Msg("Loading custom report template from file.")

	tmpl, err := template.New(filepath.Base(r.cfg.TemplatePath)).ParseFiles(r.cfg.TemplatePath)
	if err != nil {
		return fmt.Errorf("failed to parse custom report template '%s': %w", r.cfg.TemplatePath, err)
	}

	r.template = tmpl
	return nil
}

// loadEmbeddedTemplate loads the default embedded template
func (r *HtmlReporter) loadEmbeddedTemplate() error {
	templateContent, err := defaultTemplate.ReadFile("templates/" + defaultHtmlReportTemplateName)
	if err != nil {
		return fmt.Errorf("failed to load embedded default report template: %w", err)
	}

	cleanedContent := strings.ReplaceAll(string(templateContent), "\r\n", "\n")
	tmpl, err := template.New(defaultHtmlReportTemplateName).Parse(cleanedContent)
	if err != nil {
		return fmt.Errorf("failed to parse embedded report template: %w", err)
	}

	r.template = tmpl
	return nil
}

// GenerateReport renders all domain results into one HTML file and returns the
// written path. A nil/empty result set still produces a report so a run always
// leaves an artifact.
func (r *HtmlReporter) GenerateReport(results []models.DomainResult, focusProvider string, outputPath string) (string, error) {
	pageData := BuildPageData(results, focusProvider)
	pageData.ReportTitle = reportTitle
	pageData.GeneratedAt = time.Now().Format("2006-01-02 15:04:05")

	resolvedPath := r.buildOutputPath(outputPath)
	if err := r.executeAndWriteReport(pageData, resolvedPath); err != nil {
		return "", err
	}

	r.logger.Info().Str("path", resolvedPath).Int("domains", len(results)).Msg("HTML report generated")
	return resolvedPath, nil
}

// buildOutputPath constructs the output file path
func (r *HtmlReporter) buildOutputPath(outputPath string) string {
	if outputPath == "" {
		outputPath = r.cfg.OutputFile
	}
	if outputPath == "" {
		outputPath = config.DefaultReporterOutputFile
	}
	if !strings.HasSuffix(outputPath, ".html") {
		outputPath += ".html"
	}

	if filepath.IsAbs(outputPath) || strings.Contains(outputPath, string(filepath.Separator)) {
		return outputPath
	}
	return filepath.Join(r.cfg.OutputDir, outputPath)
}

// executeAndWriteReport executes template and writes to file
func (r *HtmlReporter) executeAndWriteReport(pageData ReportPageData, outputPath string) error {
	var htmlBuffer bytes.Buffer
	if err := r.template.Execute(&htmlBuffer, pageData); err != nil {
		r.logger.Error().Err(err).Str("output", outputPath).Msg("Failed to execute template")
		return fmt.Errorf("template execution failed: %w", err)
	}

	if err := os.WriteFile(outputPath, htmlBuffer.Bytes(), filePermissions); err != nil {
		r.logger.Error().Err(err).Str("output", outputPath).Msg("Failed to write report file")
		return fmt.Errorf("failed to write report to %s: %w", outputPath, err)
	}

	return nil
}
