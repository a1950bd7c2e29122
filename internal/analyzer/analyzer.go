package analyzer

import (
	"context"
	"time"

	"github.com/aleister1102/adstrace/internal/catalog"
	"github.com/aleister1102/adstrace/internal/config"
	"github.com/aleister1102/adstrace/internal/differ"
	"github.com/aleister1102/adstrace/internal/models"
	"github.com/aleister1102/adstrace/internal/wayback"
	"github.com/rs/zerolog"
)

// ArchiveSource is the archive access surface the analyzer depends on.
type ArchiveSource interface {
	SnapshotFetcher
	ListObservations(ctx context.Context, domain, fromTS, toTS string) (*wayback.Index, error)
}

// ObservationRecorder receives every extracted observation of a completed
// domain analysis, for persistence outside the analyzer.
type ObservationRecorder interface {
	StoreRecords(ctx context.Context, domain string, records []models.ObservationRecord) error
}

// DomainAnalyzer reconstructs the provider relationship timeline of one
// domain from its archived declarations-file observations.
type DomainAnalyzer struct {
	archive     ArchiveSource
	cat         *catalog.Catalog
	cfg         config.AnalysisConfig
	localizer   *Localizer
	exclusivity *ExclusivityDetector
	differ      *differ.DiffProcessor
	recorder    ObservationRecorder
	logger      zerolog.Logger
}

// NewDomainAnalyzer creates a domain analyzer.
func NewDomainAnalyzer(archive ArchiveSource, cat *catalog.Catalog, cfg config.AnalysisConfig, logger zerolog.Logger) *DomainAnalyzer {
	return &DomainAnalyzer{
		archive:     archive,
		cat:         cat,
		cfg:         cfg,
		localizer:   NewLocalizer(cfg, logger),
		exclusivity: NewExclusivityDetector(cfg, logger),
		differ:      differ.NewDiffProcessor(),
		logger:      logger.With().Str("component", "DomainAnalyzer").Logger(),
	}
}

// SetObservationRecorder sets the optional persistence hook for extracted
// observations. Recorder failures are logged, never fatal to an analysis.
func (a *DomainAnalyzer) SetObservationRecorder(recorder ObservationRecorder) {
	a.recorder = recorder
}

// AnalyzeDomain runs the full per-domain pipeline: index build, sampling,
// signature population through a fresh per-domain cache, change-point
// localization, exclusivity scan, and result assembly. The returned result is
// complete even when the archive has nothing for the domain. Only context
// cancellation is surfaced as an error.
func (a *DomainAnalyzer) AnalyzeDomain(ctx context.Context, domain, fromTS, toTS string) (*models.DomainResult, error) {
	result := &models.DomainResult{
		Domain:        domain,
		From:          fromTS,
		To:            toTS,
		PerYearCounts: map[int]int{},
	}

	index, err := a.archive.ListObservations(ctx, domain, fromTS, toTS)
	if err != nil {
		return nil, err
	}

	result.SnapshotsCount = index.RawCount
	result.PerYearCounts = index.PerYearCounts
	result.LongestGapDays = index.LongestGapDays
	result.UsedWildcardMode = index.UsedWildcardMode

	reduced := index.Observations
	if len(reduced) == 0 {
		a.logger.Info().Str("domain", domain).Msg("No observations in archive index")
		a.finishSummary(result)
		return result, nil
	}

	cache := NewSignatureCache(reduced, a.archive, a.cat, a.cfg, a.logger)
	sampled := wayback.SampleIndices(reduced, a.cfg.SnapshotsPerYear)

	a.logger.Debug().
		Str("domain", domain).
		Int("raw_count", index.RawCount).
		Int("reduced_count", len(reduced)).
		Int("sampled_count", len(sampled)).
		Msg("Index built")

	if err := a.localizeChanges(ctx, domain, cache, sampled, result); err != nil {
		return nil, err
	}

	// The exclusivity scan and the rollups need every observation's
	// signature, so the cache ends up fully populated here regardless of how
	// much the localizer touched.
	for idx := 0; idx < cache.Len(); idx++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cache.Get(ctx, idx)
	}

	a.recordObservations(ctx, domain, cache)

	exclusivityEvents := a.exclusivity.Detect(ctx, domain, cache)
	result.Events = append(result.Events, exclusivityEvents...)

	a.collectRollups(ctx, domain, cache, result)
	a.collectManagersAndAnomalies(ctx, cache, result)

	result.FocusScore = a.focusScore(ctx, cache, a.cat, result.Events)

	a.buildHumanSummary(result)
	a.finishSummary(result)

	return result, nil
}

// recordObservations hands every extracted observation to the configured
// recorder. Requires a fully populated cache.
func (a *DomainAnalyzer) recordObservations(ctx context.Context, domain string, cache *SignatureCache) {
	if a.recorder == nil {
		return
	}

	now := time.Now()
	records := make([]models.ObservationRecord, 0, cache.Len())
	for idx := 0; idx < cache.Len(); idx++ {
		entry := cache.Get(ctx, idx)
		record := models.ObservationRecord{
			Domain:      domain,
			Timestamp:   entry.Observation.Timestamp,
			OriginalURL: entry.Observation.OriginalURL,
			StatusCode:  entry.StatusCode,
			Digest:      entry.Observation.Digest,
			Suspect:     entry.Suspect,
			Content:     []byte(entry.Raw),
			FetchedAt:   now,
		}
		if entry.Observation.Length != nil {
			record.Length = *entry.Observation.Length
		}
		records = append(records, record)
	}

	if err := a.recorder.StoreRecords(ctx, domain, records); err != nil {
		a.logger.Warn().Err(err).Str("domain", domain).Msg("Failed to persist observation records")
	}
}

// localizeChanges compares adjacent sampled positions and bisects every pair
// whose signatures differ down to the archive's resolution limit.
func (a *DomainAnalyzer) localizeChanges(ctx context.Context, domain string, cache *SignatureCache, sampled []int, result *models.DomainResult) error {
	for i := 0; i+1 < len(sampled); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		left, right := sampled[i], sampled[i+1]
		sigLeft := cache.Signature(ctx, left)
		sigRight := cache.Signature(ctx, right)
		if models.SignaturesEqual(sigLeft, sigRight, a.cfg.CompareParticipantIDs) {
			continue
		}

		lo, hi, ok := a.localizer.Bisect(ctx, cache, left, right)
		if !ok {
			continue
		}

		loEntry := cache.Get(ctx, lo)
		hiEntry := cache.Get(ctx, hi)

		events := a.localizer.EventsForBracket(domain, loEntry, hiEntry)
		if len(events) == 0 {
			continue
		}
		result.Events = append(result.Events, events...)

		diffStats := a.differ.CompareLines(loEntry.Raw, hiEntry.Raw)
		result.SnapshotPairs = append(result.SnapshotPairs, models.SnapshotPairRecord{
			Domain:       domain,
			PosLo:        lo,
			PosHi:        hi,
			TimestampLo:  loEntry.Observation.Timestamp,
			TimestampHi:  hiEntry.Observation.Timestamp,
			DigestLo:     loEntry.Observation.Digest,
			DigestHi:     hiEntry.Observation.Digest,
			LengthLo:     loEntry.Observation.Length,
			LengthHi:     hiEntry.Observation.Length,
			SuspectLo:    loEntry.Suspect,
			SuspectHi:    hiEntry.Suspect,
			LinesAdded:   diffStats.LinesAdded,
			LinesDeleted: diffStats.LinesDeleted,
		})
	}
	return nil
}
