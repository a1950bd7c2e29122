package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aleister1102/adstrace/internal/adstxt"
	"github.com/aleister1102/adstrace/internal/models"
)

// collectRollups flattens discovered participant IDs into per-observation rows
// and per-provider rollups.
func (a *DomainAnalyzer) collectRollups(ctx context.Context, domain string, cache *SignatureCache, result *models.DomainResult) {
	type agg struct {
		direct   map[string]struct{}
		reseller map[string]struct{}
		lastSeen string
	}

	aggregates := make(map[string]*agg, a.cat.Size())
	for _, providerID := range a.cat.ProviderIDs() {
		aggregates[providerID] = &agg{
			direct:   make(map[string]struct{}),
			reseller: make(map[string]struct{}),
		}
	}

	for idx := 0; idx < cache.Len(); idx++ {
		entry := cache.Get(ctx, idx)
		sig := entry.Signature
		if sig == nil {
			continue
		}
		ts := entry.Observation.Timestamp
		for _, providerID := range a.cat.ProviderIDs() {
			ps := sig.Providers[providerID]
			for _, id := range ps.DirectIDs {
				aggregates[providerID].direct[id] = struct{}{}
				aggregates[providerID].lastSeen = ts
				result.ParticipantRows = append(result.ParticipantRows, models.ParticipantRow{
					Domain:        domain,
					SnapshotTS:    ts,
					Provider:      providerID,
					Role:          models.RoleDirect,
					ParticipantID: id,
				})
			}
			for _, id := range ps.ResellerIDs {
				aggregates[providerID].reseller[id] = struct{}{}
				aggregates[providerID].lastSeen = ts
				result.ParticipantRows = append(result.ParticipantRows, models.ParticipantRow{
					Domain:        domain,
					SnapshotTS:    ts,
					Provider:      providerID,
					Role:          models.RoleReseller,
					ParticipantID: id,
				})
			}
		}
	}

	for _, providerID := range a.cat.ProviderIDs() {
		ag := aggregates[providerID]
		directIDs := setToSorted(ag.direct)
		resellerIDs := setToSorted(ag.reseller)
		result.ProviderRollups = append(result.ProviderRollups, models.ProviderRollup{
			Domain:          domain,
			Provider:        providerID,
			TotalUniqueIDs:  len(directIDs) + len(resellerIDs),
			DirectIDCount:   len(directIDs),
			ResellerIDCount: len(resellerIDs),
			DirectIDs:       directIDs,
			ResellerIDs:     resellerIDs,
			LastSeenTS:      ag.lastSeen,
		})
	}
}

// collectManagersAndAnomalies scans raw content for manager tokens and
// records anomaly-flagged observation timestamps.
func (a *DomainAnalyzer) collectManagersAndAnomalies(ctx context.Context, cache *SignatureCache, result *models.DomainResult) {
	managerSet := make(map[string]struct{})
	for idx := 0; idx < cache.Len(); idx++ {
		entry := cache.Get(ctx, idx)
		if entry.Suspect {
			result.SuspectTimestamps = append(result.SuspectTimestamps, entry.Observation.Timestamp)
		}
		for _, token := range adstxt.ScanManagerTokens(entry.Raw) {
			managerSet[token] = struct{}{}
		}
	}
	result.Managers = setToSorted(managerSet)
}

// buildHumanSummary produces one narrative sentence per event.
func (a *DomainAnalyzer) buildHumanSummary(result *models.DomainResult) {
	for _, ev := range result.Events {
		provider := strings.ToUpper(ev.Provider)
		var sentence string
		switch ev.Type {
		case models.EventAdded:
			sentence = fmt.Sprintf("%s was ADDED as a provider for %s between %s and %s.", provider, ev.Domain, ev.WindowFrom, ev.WindowTo)
		case models.EventRemoved:
			sentence = fmt.Sprintf("%s was REMOVED as a provider for %s between %s and %s.", provider, ev.Domain, ev.WindowFrom, ev.WindowTo)
		case models.EventChanged:
			sentence = fmt.Sprintf("%s changed its participant-ID set for %s between %s and %s.", provider, ev.Domain, ev.WindowFrom, ev.WindowTo)
		case models.EventPotentialExclusivity:
			sentence = fmt.Sprintf("POTENTIAL EXCLUSIVITY: %s remained the sole provider for %s between %s and %s (consecutive=%d).",
				provider, ev.Domain, ev.WindowFrom, ev.WindowTo, ev.ConsecutiveRun)
		}
		if sentence != "" {
			result.HumanSummary = append(result.HumanSummary, sentence)
		}
	}
}

// finishSummary adds the default sentence when nothing was detected.
func (a *DomainAnalyzer) finishSummary(result *models.DomainResult) {
	if len(result.HumanSummary) == 0 {
		result.HumanSummary = append(result.HumanSummary,
			fmt.Sprintf("No changes detected for %s in period %s .. %s (based on the analyzed samples).", result.Domain, result.From, result.To))
	}
}

func setToSorted(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
