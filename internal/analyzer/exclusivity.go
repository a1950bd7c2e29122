package analyzer

import (
	"context"

	"github.com/aleister1102/adstrace/internal/config"
	"github.com/aleister1102/adstrace/internal/models"
	"github.com/rs/zerolog"
)

// ExclusivityDetector scans the full reduced sequence for a provider that
// goes from shared-with-many to sole occupant and stays there.
type ExclusivityDetector struct {
	cfg    config.AnalysisConfig
	logger zerolog.Logger
}

// NewExclusivityDetector creates an exclusivity detector.
func NewExclusivityDetector(cfg config.AnalysisConfig, logger zerolog.Logger) *ExclusivityDetector {
	return &ExclusivityDetector{
		cfg:    cfg,
		logger: logger.With().Str("component", "ExclusivityDetector").Logger(),
	}
}

// Detect walks the provider-count sequence of the full reduced list. A
// candidate opens on a transition from a high count (>= the configured
// threshold) directly to exactly one, with that survivor present on the
// destination side. The candidate persists while subsequent observations stay
// single-provider with the same survivor; it becomes an event only once the
// minimum elapsed span or the minimum consecutive run length is met. A break
// before either minimum discards the candidate silently.
func (d *ExclusivityDetector) Detect(ctx context.Context, domain string, cache *SignatureCache) []models.Event {
	n := cache.Len()
	if n < 2 {
		return nil
	}

	var events []models.Event
	for i := 1; i < n; i++ {
		prevSig := cache.Signature(ctx, i-1)
		curSig := cache.Signature(ctx, i)

		if prevSig.ProviderCount() < d.cfg.ExclusivityHighCount || curSig.ProviderCount() != 1 {
			continue
		}
		survivors := curSig.PresentProviders()
		if len(survivors) != 1 {
			continue
		}
		survivor := survivors[0]

		runEnd := i
		consecutive := 1
		for j := i + 1; j < n; j++ {
			nextSig := cache.Signature(ctx, j)
			if nextSig.ProviderCount() != 1 || !nextSig.Has(survivor) {
				break
			}
			runEnd = j
			consecutive++
		}

		startObs := cache.Observation(i)
		endObs := cache.Observation(runEnd)
		spanDays := int(endObs.Time().Sub(startObs.Time()).Hours() / 24)

		if consecutive < d.cfg.ExclusivityMinRun && spanDays < d.cfg.ExclusivityMinDays {
			continue
		}

		d.logger.Debug().
			Str("domain", domain).
			Str("provider", survivor).
			Int("consecutive", consecutive).
			Int("span_days", spanDays).
			Msg("Persisted exclusivity window detected")

		events = append(events, models.Event{
			Domain:         domain,
			Provider:       survivor,
			Type:           models.EventPotentialExclusivity,
			WindowFrom:     startObs.DateString(),
			WindowTo:       endObs.DateString(),
			ConsecutiveRun: consecutive,
		})

		// Resume after the persisted run so one window yields one event.
		i = runEnd
	}

	return events
}
