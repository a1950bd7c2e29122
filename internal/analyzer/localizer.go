package analyzer

import (
	"context"
	"sort"

	"github.com/aleister1102/adstrace/internal/config"
	"github.com/aleister1102/adstrace/internal/models"
	"github.com/rs/zerolog"
)

// Localizer narrows change windows between sampled observations down to
// adjacent positions of the full reduced index via bisection. That adjacent
// pair is the archive's true resolution limit for the change; it is never a
// sampled-interval artifact.
type Localizer struct {
	cfg    config.AnalysisConfig
	logger zerolog.Logger
}

// NewLocalizer creates a localizer.
func NewLocalizer(cfg config.AnalysisConfig, logger zerolog.Logger) *Localizer {
	return &Localizer{
		cfg:    cfg,
		logger: logger.With().Str("component", "Localizer").Logger(),
	}
}

// Bisect narrows (left, right) to the tightest bracket whose end signatures
// differ. Returns ok=false when the endpoint signatures already compare equal
// (nothing to localize). Unknown midpoints are probed at mid±1, mid±2 inside
// the open interval; when no usable probe exists the search stops early and
// the widest bracket found so far is returned. The iteration bound guards
// against pathological non-convergence from persistent unknown signatures.
func (l *Localizer) Bisect(ctx context.Context, cache *SignatureCache, left, right int) (lo, hi int, ok bool) {
	if left >= right {
		return 0, 0, false
	}

	sigLo := cache.Signature(ctx, left)
	sigRight := cache.Signature(ctx, right)
	if models.SignaturesEqual(sigLo, sigRight, l.cfg.CompareParticipantIDs) {
		return 0, 0, false
	}

	lo, hi = left, right
	for iteration := 0; hi-lo > 1 && iteration < l.cfg.BisectionMaxIterations; iteration++ {
		mid := (lo + hi) / 2
		sigMid := cache.Signature(ctx, mid)

		if sigMid == nil {
			mid, sigMid = l.probeAround(ctx, cache, mid, lo, hi)
			if sigMid == nil {
				l.logger.Debug().
					Int("lo", lo).
					Int("hi", hi).
					Msg("No usable signature near midpoint, reporting widest bracket")
				break
			}
		}

		if models.SignaturesEqual(sigLo, sigMid, l.cfg.CompareParticipantIDs) {
			lo = mid
			sigLo = sigMid
		} else {
			hi = mid
		}
	}

	return lo, hi, true
}

// probeAround looks for a usable signature at mid±1, mid±2 within the open
// interval (lo, hi).
func (l *Localizer) probeAround(ctx context.Context, cache *SignatureCache, mid, lo, hi int) (int, *models.Signature) {
	for _, delta := range []int{-1, 1, -2, 2} {
		probe := mid + delta
		if probe <= lo || probe >= hi {
			continue
		}
		if sig := cache.Signature(ctx, probe); sig != nil {
			return probe, sig
		}
	}
	return mid, nil
}

// EventsForBracket emits one event per provider whose presence or ID sets
// differ between the bracket's two sides. Multiple providers changing inside
// the same bracket each produce their own event sharing the window.
func (l *Localizer) EventsForBracket(domain string, loEntry, hiEntry *CacheEntry) []models.Event {
	sigLo := loEntry.Signature
	sigHi := hiEntry.Signature
	if sigLo == nil || sigHi == nil {
		return nil
	}

	windowFrom := loEntry.Observation.DateString()
	windowTo := hiEntry.Observation.DateString()

	var events []models.Event
	for _, providerID := range sortedProviderUnion(sigLo, sigHi) {
		loHas := sigLo.Has(providerID)
		hiHas := sigHi.Has(providerID)

		var eventType models.EventType
		switch {
		case !loHas && hiHas:
			eventType = models.EventAdded
		case loHas && !hiHas:
			eventType = models.EventRemoved
		case loHas && hiHas && l.cfg.CompareParticipantIDs && providerIDsDiffer(sigLo.Providers[providerID], sigHi.Providers[providerID]):
			eventType = models.EventChanged
		default:
			continue
		}

		events = append(events, models.Event{
			Domain:     domain,
			Provider:   providerID,
			Type:       eventType,
			WindowFrom: windowFrom,
			WindowTo:   windowTo,
			SigLo:      sigLo,
			SigHi:      sigHi,
		})
	}
	return events
}

func providerIDsDiffer(a, b models.ProviderSignature) bool {
	return len(a.DirectIDs) != len(b.DirectIDs) || len(a.ResellerIDs) != len(b.ResellerIDs)
}

func sortedProviderUnion(a, b *models.Signature) []string {
	seen := make(map[string]struct{}, len(a.Providers))
	var out []string
	for id := range a.Providers {
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for id := range b.Providers {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
