package runner

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/adstrace/internal/common"
	"github.com/aleister1102/adstrace/internal/config"
	"github.com/aleister1102/adstrace/internal/models"
	"github.com/aleister1102/adstrace/internal/runlog"
	"github.com/aleister1102/adstrace/internal/rslimiter"
)

// DomainAnalyzer is the per-domain analysis surface the runner drives.
type DomainAnalyzer interface {
	AnalyzeDomain(ctx context.Context, domain, fromTS, toTS string) (*models.DomainResult, error)
}

// RunStore persists per-domain run state between invocations.
type RunStore interface {
	Get(domain string) (*runlog.DomainRun, error)
	Put(run runlog.DomainRun) error
}

// ReportWriter renders the collected results into an artifact.
type ReportWriter interface {
	GenerateReport(results []models.DomainResult, focusProvider string, outputPath string) (string, error)
}

// BatchRunner iterates a domain list, analyzing each domain from where the
// previous run left off. A failing domain never aborts the batch.
type BatchRunner struct {
	cfg      *config.GlobalConfig
	analyzer DomainAnalyzer
	runStore RunStore
	reporter ReportWriter
	limiter  *rslimiter.ResourceLimiter
	logger   zerolog.Logger
}

// NewBatchRunner creates a batch runner over already-wired collaborators.
func NewBatchRunner(
	cfg *config.GlobalConfig,
	analyzer DomainAnalyzer,
	runStore RunStore,
	reporter ReportWriter,
	limiter *rslimiter.ResourceLimiter,
	logger zerolog.Logger,
) *BatchRunner {
	return &BatchRunner{
		cfg:      cfg,
		analyzer: analyzer,
		runStore: runStore,
		reporter: reporter,
		limiter:  limiter,
		logger:   logger.With().Str("component", "BatchRunner").Logger(),
	}
}

// Run analyzes every domain in the list file and writes the report to
// outputPath. It returns the written report path.
func (r *BatchRunner) Run(ctx context.Context, domainsFile, outputPath string) (string, error) {
	domains, err := common.NewLineReader(r.logger).ReadLines(domainsFile)
	if err != nil {
		return "", common.WrapErrorf(err, "failed to read domain list '%s'", domainsFile)
	}
	if len(domains) == 0 {
		return "", common.WrapErrorf(common.ErrInvalidInput, "domain list '%s' contains no domains", domainsFile)
	}

	r.logger.Info().Int("domain_count", len(domains)).Str("domains_file", domainsFile).Msg("Batch run started")

	results := make([]models.DomainResult, 0, len(domains))
	for _, domain := range domains {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if r.limiter != nil {
			if err := r.limiter.WaitIfOverloaded(ctx); err != nil {
				return "", err
			}
		}

		result, err := r.analyzeDomain(ctx, domain)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			r.logger.Error().Err(err).Str("domain", domain).Msg("Domain analysis failed, continuing with next domain")
			continue
		}

		results = append(results, *result)
		r.recordRunState(domain, result)
	}

	reportPath, err := r.reporter.GenerateReport(results, r.cfg.AnalysisConfig.FocusProvider, outputPath)
	if err != nil {
		return "", common.WrapError(err, "failed to generate report")
	}

	r.logger.Info().
		Int("analyzed", len(results)).
		Int("requested", len(domains)).
		Str("report_path", reportPath).
		Msg("Batch run completed")
	return reportPath, nil
}

// analyzeDomain resolves the domain's analysis window and runs the analyzer.
// Panics from a single domain are converted to errors so the batch survives.
func (r *BatchRunner) analyzeDomain(ctx context.Context, domain string) (result *models.DomainResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = common.NewError("panic during analysis of '%s': %v", domain, rec)
		}
	}()

	fromTS := r.resolveStartTimestamp(domain)
	toTS := r.resolveEndTimestamp()

	r.logger.Info().
		Str("domain", domain).
		Str("from", fromTS).
		Str("to", toTS).
		Msg("Analyzing domain")

	return r.analyzer.AnalyzeDomain(ctx, domain, fromTS, toTS)
}

// resolveStartTimestamp picks up from the last completed run when one exists.
func (r *BatchRunner) resolveStartTimestamp(domain string) string {
	if r.runStore != nil {
		run, err := r.runStore.Get(domain)
		if err != nil {
			r.logger.Warn().Err(err).Str("domain", domain).Msg("Failed to load run state, starting from default date")
		} else if run != nil && run.LastChecked != "" {
			return run.LastChecked
		}
	}
	if r.cfg.RunnerConfig.DefaultStartDate != "" {
		return r.cfg.RunnerConfig.DefaultStartDate
	}
	return config.DefaultStartDate
}

func (r *BatchRunner) resolveEndTimestamp() string {
	if r.cfg.RunnerConfig.EndDate != "" {
		return r.cfg.RunnerConfig.EndDate
	}
	return time.Now().Format("20060102")
}

// recordRunState persists the domain's completed window so the next run
// resumes after it. Persistence failures are logged, never fatal.
func (r *BatchRunner) recordRunState(domain string, result *models.DomainResult) {
	if r.runStore == nil {
		return
	}

	run := runlog.DomainRun{
		Domain:      domain,
		LastChecked: result.To,
		LastRun:     time.Now(),
		EntryCount:  result.SnapshotsCount,
	}
	if err := r.runStore.Put(run); err != nil {
		r.logger.Warn().Err(err).Str("domain", domain).Msg("Failed to persist run state")
	}
}
