package models

// RelationshipRole is the declared relationship between a domain and a provider.
type RelationshipRole string

const (
	RoleDirect   RelationshipRole = "DIRECT"
	RoleReseller RelationshipRole = "RESELLER"
)

// DeclarationEntry is one parsed line of a declarations file.
type DeclarationEntry struct {
	IssuerDomain  string
	ParticipantID string
	Role          RelationshipRole
}

// ProviderSignature summarizes one catalog provider within a single observation.
// ID slices are sorted and deduplicated.
type ProviderSignature struct {
	Present     bool
	DirectIDs   []string
	ResellerIDs []string
}

// Signature is the derived per-provider summary of one observation. A nil
// *Signature means unknown (fetch failed or non-success status); unknown never
// equals any other signature, including another unknown.
type Signature struct {
	Providers  map[string]ProviderSignature
	TotalLines int
}

// ProviderCount returns the number of catalog providers present.
func (s *Signature) ProviderCount() int {
	if s == nil {
		return 0
	}
	count := 0
	for _, ps := range s.Providers {
		if ps.Present {
			count++
		}
	}
	return count
}

// PresentProviders returns the IDs of the providers present, unordered.
func (s *Signature) PresentProviders() []string {
	if s == nil {
		return nil
	}
	var out []string
	for id, ps := range s.Providers {
		if ps.Present {
			out = append(out, id)
		}
	}
	return out
}

// Has reports whether the given provider is present in the signature.
func (s *Signature) Has(providerID string) bool {
	if s == nil {
		return false
	}
	return s.Providers[providerID].Present
}

// SignaturesEqual compares two signatures structurally. Unknown (nil) compares
// unequal to everything. When compareIDs is set, per-role participant-ID set
// sizes must match in addition to presence.
func SignaturesEqual(a, b *Signature, compareIDs bool) bool {
	if a == nil || b == nil {
		return false
	}
	for _, providerID := range unionProviders(a, b) {
		pa := a.Providers[providerID]
		pb := b.Providers[providerID]
		if pa.Present != pb.Present {
			return false
		}
		if compareIDs {
			if len(pa.DirectIDs) != len(pb.DirectIDs) {
				return false
			}
			if len(pa.ResellerIDs) != len(pb.ResellerIDs) {
				return false
			}
		}
	}
	return true
}

func unionProviders(a, b *Signature) []string {
	seen := make(map[string]struct{}, len(a.Providers)+len(b.Providers))
	var out []string
	for id := range a.Providers {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for id := range b.Providers {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
