package adstxt

import (
	"sort"
	"strings"

	"github.com/aleister1102/adstrace/internal/catalog"
	"github.com/aleister1102/adstrace/internal/models"
)

// BuildSignature derives the per-provider signature of one observation from
// its parsed declaration entries. Every catalog provider gets an entry in the
// result, present or not, so signatures from the same catalog are always
// comparable key-for-key.
func BuildSignature(entries []models.DeclarationEntry, cat *catalog.Catalog) *models.Signature {
	type idSets struct {
		direct   map[string]struct{}
		reseller map[string]struct{}
	}

	sets := make(map[string]*idSets, cat.Size())
	for _, id := range cat.ProviderIDs() {
		sets[id] = &idSets{
			direct:   make(map[string]struct{}),
			reseller: make(map[string]struct{}),
		}
	}

	for _, entry := range entries {
		matched := cat.Match(entry.IssuerDomain)
		if len(matched) == 0 {
			continue
		}
		participant := normalizeParticipantID(entry.ParticipantID)
		for _, providerID := range matched {
			if entry.Role == models.RoleDirect {
				sets[providerID].direct[participant] = struct{}{}
			} else {
				sets[providerID].reseller[participant] = struct{}{}
			}
		}
	}

	sig := &models.Signature{
		Providers:  make(map[string]models.ProviderSignature, cat.Size()),
		TotalLines: len(entries),
	}
	for id, s := range sets {
		ps := models.ProviderSignature{
			DirectIDs:   sortedKeys(s.direct),
			ResellerIDs: sortedKeys(s.reseller),
		}
		ps.Present = len(ps.DirectIDs)+len(ps.ResellerIDs) > 0
		sig.Providers[id] = ps
	}
	return sig
}

// normalizeParticipantID strips path-style suffixes some publishers append to
// participant IDs.
func normalizeParticipantID(id string) string {
	if idx := strings.Index(id, "/"); idx >= 0 {
		id = id[:idx]
	}
	return strings.TrimSpace(id)
}

func sortedKeys(set map[string]struct{}) []string {
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
