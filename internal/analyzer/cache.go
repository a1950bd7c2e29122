package analyzer

import (
	"context"
	"sort"
	"strings"

	"github.com/aleister1102/adstrace/internal/adstxt"
	"github.com/aleister1102/adstrace/internal/catalog"
	"github.com/aleister1102/adstrace/internal/config"
	"github.com/aleister1102/adstrace/internal/httpclient"
	"github.com/aleister1102/adstrace/internal/models"
	"github.com/rs/zerolog"
)

// SnapshotFetcher retrieves the raw content of one observation.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, obs models.Observation) (*httpclient.HTTPResponse, error)
}

// CacheEntry is the memoized extraction result for one observation. Signature
// is nil (unknown) when the fetch failed, the status was non-success, the
// content could not be parsed, or the body turned out to be an HTML page.
type CacheEntry struct {
	Observation models.Observation
	Signature   *models.Signature
	Entries     []models.DeclarationEntry
	Suspect     bool
	Raw         string
	StatusCode  int
}

// SignatureCache is the read-through signature cache for one domain's
// analysis, keyed by observation identity. Its lifetime is strictly bounded to
// one AnalyzeDomain call; every component of the analysis shares the same
// instance so no observation is fetched twice.
type SignatureCache struct {
	reduced      []models.Observation
	fetcher      SnapshotFetcher
	cat          *catalog.Catalog
	cfg          config.AnalysisConfig
	medianLength int64
	entries      map[models.Key]*CacheEntry
	logger       zerolog.Logger
}

// NewSignatureCache builds a cache over the full reduced observation list.
func NewSignatureCache(reduced []models.Observation, fetcher SnapshotFetcher, cat *catalog.Catalog, cfg config.AnalysisConfig, logger zerolog.Logger) *SignatureCache {
	return &SignatureCache{
		reduced:      reduced,
		fetcher:      fetcher,
		cat:          cat,
		cfg:          cfg,
		medianLength: medianLength(reduced),
		entries:      make(map[models.Key]*CacheEntry, len(reduced)),
		logger:       logger.With().Str("component", "SignatureCache").Logger(),
	}
}

// Len returns the number of observations backing the cache.
func (sc *SignatureCache) Len() int {
	return len(sc.reduced)
}

// Observation returns the observation at position idx of the reduced list.
func (sc *SignatureCache) Observation(idx int) models.Observation {
	return sc.reduced[idx]
}

// Get returns the extraction result for position idx, fetching and parsing on
// first access. It never returns nil and never propagates fetch or parse
// failures: those degrade to an unknown-signature entry.
func (sc *SignatureCache) Get(ctx context.Context, idx int) *CacheEntry {
	obs := sc.reduced[idx]
	key := obs.Key()
	if entry, ok := sc.entries[key]; ok {
		return entry
	}

	entry := sc.extract(ctx, obs)
	sc.entries[key] = entry
	return entry
}

// Signature is a convenience accessor for the localizer.
func (sc *SignatureCache) Signature(ctx context.Context, idx int) *models.Signature {
	return sc.Get(ctx, idx).Signature
}

func (sc *SignatureCache) extract(ctx context.Context, obs models.Observation) *CacheEntry {
	entry := &CacheEntry{
		Observation: obs,
		Suspect:     true,
	}

	resp, err := sc.fetcher.FetchSnapshot(ctx, obs)
	if err != nil || resp == nil {
		return entry
	}
	entry.StatusCode = resp.StatusCode

	if !resp.IsSuccess() || len(resp.Body) == 0 {
		return entry
	}

	raw := string(resp.Body)
	entry.Raw = raw

	if adstxt.IsLikelyHTML(raw) {
		sc.logger.Debug().
			Str("timestamp", obs.Timestamp).
			Msg("Observation body is an HTML page, treating signature as unknown")
		return entry
	}

	entry.Entries = adstxt.ParseDeclarations(raw)
	entry.Signature = adstxt.BuildSignature(entry.Entries, sc.cat)

	entry.Suspect = false
	if !strings.HasSuffix(raw, "\n") {
		// A missing trailing newline is a weak hint of a cut-off transfer.
		entry.Suspect = true
	}
	if sc.lengthSuspicious(obs) {
		entry.Suspect = true
	}

	return entry
}

// lengthSuspicious applies the truncation heuristics: below the absolute byte
// floor, or below the configured fraction of the domain's median observation
// length over the full reduced list.
func (sc *SignatureCache) lengthSuspicious(obs models.Observation) bool {
	if obs.Length == nil {
		return false
	}
	length := *obs.Length
	if length < int64(sc.cfg.TruncationMinBytes) {
		return true
	}
	if sc.medianLength > 0 && float64(length) < sc.cfg.TruncationRelativeRatio*float64(sc.medianLength) {
		return true
	}
	return false
}

// medianLength computes the median of the known positive observation lengths.
// Returns 0 when no observation reports a usable length.
func medianLength(observations []models.Observation) int64 {
	var lengths []int64
	for _, obs := range observations {
		if obs.Length != nil && *obs.Length > 0 {
			lengths = append(lengths, *obs.Length)
		}
	}
	if len(lengths) == 0 {
		return 0
	}
	sort.Slice(lengths, func(i, j int) bool { return lengths[i] < lengths[j] })
	n := len(lengths)
	if n%2 == 1 {
		return lengths[n/2]
	}
	return (lengths[n/2-1] + lengths[n/2]) / 2
}
