package analyzer

import (
	"context"
	"math"

	"github.com/aleister1102/adstrace/internal/adstxt"
	"github.com/aleister1102/adstrace/internal/catalog"
	"github.com/aleister1102/adstrace/internal/models"
)

// FocusScore computes a 0-100 heuristic score expressing how entrenched the
// configured focus provider is for the domain: presence persistence across
// observations, breadth of unique DIRECT participant IDs, technology-token
// hits in raw content, and persisted exclusivity windows all contribute.
// The weights are fixed; only the provider under scrutiny is configurable.
func (a *DomainAnalyzer) focusScore(ctx context.Context, cache *SignatureCache, cat *catalog.Catalog, events []models.Event) float64 {
	focus := a.cfg.FocusProvider
	if focus == "" {
		return 0
	}

	presence := 0
	techHits := 0
	directIDs := make(map[string]struct{})

	for idx := 0; idx < cache.Len(); idx++ {
		entry := cache.Get(ctx, idx)
		if sig := entry.Signature; sig != nil && sig.Has(focus) {
			presence++
			for _, id := range sig.Providers[focus].DirectIDs {
				directIDs[id] = struct{}{}
			}
		}
		if entry.Raw != "" {
			for _, hit := range adstxt.ScanContentTokens(entry.Raw, cat) {
				if hit == focus {
					techHits++
					break
				}
			}
		}
	}

	exclusivityWindows := 0
	for _, ev := range events {
		if ev.Type == models.EventPotentialExclusivity && ev.Provider == focus {
			exclusivityWindows++
		}
	}

	score := 0.0
	if presence > 0 {
		score += math.Min(25.0, 5.0*math.Log1p(float64(presence)))
	}
	if len(directIDs) > 0 {
		score += math.Min(25.0, 6.0*math.Log1p(float64(len(directIDs))))
	}
	if techHits > 0 {
		score += math.Min(15.0, 4.0*math.Log1p(float64(techHits)))
	}
	if exclusivityWindows > 0 {
		score += math.Min(10.0, 5.0*float64(exclusivityWindows))
	}

	return math.Max(0, math.Min(100, score))
}
