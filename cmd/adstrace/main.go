package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/adstrace/internal/analyzer"
	"github.com/aleister1102/adstrace/internal/catalog"
	"github.com/aleister1102/adstrace/internal/config"
	"github.com/aleister1102/adstrace/internal/datastore"
	"github.com/aleister1102/adstrace/internal/httpclient"
	"github.com/aleister1102/adstrace/internal/logger"
	"github.com/aleister1102/adstrace/internal/reporter"
	"github.com/aleister1102/adstrace/internal/runlog"
	"github.com/aleister1102/adstrace/internal/runner"
	"github.com/aleister1102/adstrace/internal/rslimiter"
	"github.com/aleister1102/adstrace/internal/wayback"
)

func main() {
	fmt.Println("adstrace starting...")

	flags := ParseFlags()

	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not load global config using path '%s': %v", flags.GlobalConfigFile, err)
	}
	applyFlagOverrides(gCfg, flags)

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not initialize logger: %v", err)
	}
	zLogger.Info().Msg("Logger initialized successfully.")

	if gCfg.ReporterConfig.OutputDir != "" {
		if err := os.MkdirAll(gCfg.ReporterConfig.OutputDir, 0755); err != nil {
			zLogger.Fatal().Err(err).Str("directory", gCfg.ReporterConfig.OutputDir).Msg("Could not create report output directory before validation")
		}
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Fatal().Err(err).Msg("Configuration validation failed")
	}
	zLogger.Info().Msg("Configuration validated successfully.")

	cat, err := loadCatalog(gCfg)
	if err != nil {
		zLogger.Fatal().Err(err).Str("catalog_path", gCfg.CatalogPath).Msg("Failed to load provider catalog")
	}
	zLogger.Info().Int("providers", cat.Size()).Msg("Provider catalog loaded.")

	httpClient, err := httpclient.NewHTTPClient(gCfg.HTTPClientConfig, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to initialize HTTP client")
	}

	sleeper := wayback.NewRandomSleeper(gCfg.RunnerConfig.SleepMinMillis, gCfg.RunnerConfig.SleepMaxMillis)
	archiveClient := wayback.NewClient(gCfg.ArchiveConfig, httpClient, sleeper, zLogger)

	domainAnalyzer := analyzer.NewDomainAnalyzer(archiveClient, cat, gCfg.AnalysisConfig, zLogger)

	if gCfg.StorageConfig.Enabled {
		observationStore, err := datastore.NewObservationStore(&gCfg.StorageConfig, zLogger)
		if err != nil {
			zLogger.Fatal().Err(err).Msg("Failed to initialize observation store")
		}
		domainAnalyzer.SetObservationRecorder(observationStore)
	}

	runStore, err := runlog.NewStore(gCfg.RunlogConfig.SQLiteDBPath, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Str("db_path", gCfg.RunlogConfig.SQLiteDBPath).Msg("Failed to initialize run-state database")
	}
	defer runStore.Close()

	htmlReporter, err := reporter.NewHtmlReporter(&gCfg.ReporterConfig, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to initialize HTML reporter")
	}

	limiter := rslimiter.NewResourceLimiter(gCfg.ResourceLimiterConfig, zLogger)

	batchRunner := runner.NewBatchRunner(gCfg, domainAnalyzer, runStore, htmlReporter, limiter, zLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reportPath, err := batchRunner.Run(ctx, flags.DomainsFile, flags.OutputPath)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Batch run failed")
	}

	zLogger.Info().Str("report_path", reportPath).Msg("adstrace finished.")
	fmt.Printf("Report written to %s\n", reportPath)
}

// applyFlagOverrides lets command line flags take precedence over the config file.
func applyFlagOverrides(gCfg *config.GlobalConfig, flags AppFlags) {
	if flags.ProgressDBPath != "" {
		gCfg.RunlogConfig.SQLiteDBPath = flags.ProgressDBPath
	}
	if flags.StartDate != "" {
		gCfg.RunnerConfig.DefaultStartDate = flags.StartDate
	}
	if flags.EndDate != "" {
		gCfg.RunnerConfig.EndDate = flags.EndDate
	}
	if flags.SleepMinMillis >= 0 {
		gCfg.RunnerConfig.SleepMinMillis = flags.SleepMinMillis
	}
	if flags.SleepMaxMillis >= 0 {
		gCfg.RunnerConfig.SleepMaxMillis = flags.SleepMaxMillis
	}
}

// loadCatalog loads the provider catalog from the configured file, falling
// back to the built-in defaults when no path is configured.
func loadCatalog(gCfg *config.GlobalConfig) (*catalog.Catalog, error) {
	if gCfg.CatalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFromFile(gCfg.CatalogPath)
}
