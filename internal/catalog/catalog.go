package catalog

import (
	"os"
	"sort"
	"strings"

	"github.com/aleister1102/adstrace/internal/common"
	"gopkg.in/yaml.v3"
)

// Provider is one intermediary provider definition. DomainTokens match the
// issuer-domain field of declaration entries; ContentTokens match raw page
// content when scanning for technology fingerprints.
type Provider struct {
	ID            string   `yaml:"id"`
	DomainTokens  []string `yaml:"domain_tokens"`
	ContentTokens []string `yaml:"content_tokens,omitempty"`
}

// Catalog is the fixed set of providers an analysis run matches against.
// Treated as configuration data: loaded once, read-only afterwards.
type Catalog struct {
	providers []Provider
	byID      map[string]Provider
}

// ManagerTokens are hostnames and markers of known declarations-file managers,
// scanned for in raw observation content.
var ManagerTokens = []string{
	"sellers.json", "adstxt.events", "adstxt.guide", "ads.txt.manager",
	"adstxtapi", "adstxt",
}

// Default returns the built-in provider catalog.
func Default() *Catalog {
	c, _ := New([]Provider{
		{
			ID:            "google",
			DomainTokens:  []string{"google.com", "doubleclick.net", "googlesyndication.com"},
			ContentTokens: []string{"gpt.js", "doubleclick.net", "googlesyndication.com", "adservice.google"},
		},
		{
			ID:            "magnite",
			DomainTokens:  []string{"rubiconproject.com", "magnite.com", "telaria.com", "spotx.tv", "spotxchange.com"},
			ContentTokens: []string{"magnite.js", "rubiconproject", "telaria", "spotx"},
		},
		{
			ID:            "pubmatic",
			DomainTokens:  []string{"pubmatic.com"},
			ContentTokens: []string{"openwrap", "hb.pubmatic", "ow.js", "pubmatic.com", "ads.pubmatic.com"},
		},
		{
			ID:            "index",
			DomainTokens:  []string{"indexexchange.com", "casalemedia.com"},
			ContentTokens: []string{"indexww.com", "cygnus", "casalemedia"},
		},
		{
			ID:            "openx",
			DomainTokens:  []string{"openx.com"},
			ContentTokens: []string{"openx.net", "ox-delivery", "openx.com"},
		},
		{
			ID:            "xandr",
			DomainTokens:  []string{"appnexus.com", "xandr.com"},
			ContentTokens: []string{"adnxs.com", "ast.js", "xandr", "ib.adnxs.com"},
		},
		{
			ID:            "triplelift",
			DomainTokens:  []string{"triplelift.com"},
			ContentTokens: []string{"3lift.com", "triplelift.net"},
		},
		{
			ID:            "sharethrough",
			DomainTokens:  []string{"sharethrough.com"},
			ContentTokens: []string{"sharethrough.js", "native.sharethrough.com"},
		},
		{
			ID:            "sovrn",
			DomainTokens:  []string{"sovrn.com", "lijit.com"},
			ContentTokens: []string{"sovrn.com", "lijit.com", "ap.lijit.com"},
		},
		{
			ID:            "adform",
			DomainTokens:  []string{"adform.com"},
			ContentTokens: []string{"adform.net", "adform.js", "track.adform.net"},
		},
	})
	return c
}

// New builds a catalog from provider definitions, normalizing tokens to lower case.
func New(providers []Provider) (*Catalog, error) {
	if len(providers) == 0 {
		return nil, common.NewError("catalog requires at least one provider")
	}

	byID := make(map[string]Provider, len(providers))
	normalized := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p.ID == "" {
			return nil, common.NewError("catalog provider with empty id")
		}
		if len(p.DomainTokens) == 0 {
			return nil, common.NewError("catalog provider '%s' has no domain tokens", p.ID)
		}
		np := Provider{
			ID:            strings.ToLower(p.ID),
			DomainTokens:  lowerAll(p.DomainTokens),
			ContentTokens: lowerAll(p.ContentTokens),
		}
		if _, dup := byID[np.ID]; dup {
			return nil, common.NewError("duplicate catalog provider '%s'", np.ID)
		}
		byID[np.ID] = np
		normalized = append(normalized, np)
	}

	sort.Slice(normalized, func(i, j int) bool { return normalized[i].ID < normalized[j].ID })

	return &Catalog{providers: normalized, byID: byID}, nil
}

// LoadFromFile reads a YAML provider catalog, replacing the built-in one.
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapErrorf(err, "failed to read catalog file '%s'", path)
	}

	var doc struct {
		Providers []Provider `yaml:"providers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, common.WrapErrorf(err, "failed to parse catalog file '%s'", path)
	}

	return New(doc.Providers)
}

// Providers returns the providers ordered by ID.
func (c *Catalog) Providers() []Provider {
	return c.providers
}

// ProviderIDs returns the provider IDs ordered ascending.
func (c *Catalog) ProviderIDs() []string {
	ids := make([]string, len(c.providers))
	for i, p := range c.providers {
		ids[i] = p.ID
	}
	return ids
}

// Match returns the IDs of providers whose domain tokens occur in the given
// issuer domain. The issuer is lowercased before matching.
func (c *Catalog) Match(issuerDomain string) []string {
	issuer := strings.ToLower(issuerDomain)
	var matched []string
	for _, p := range c.providers {
		for _, token := range p.DomainTokens {
			if strings.Contains(issuer, token) {
				matched = append(matched, p.ID)
				break
			}
		}
	}
	return matched
}

// Size returns the number of providers in the catalog.
func (c *Catalog) Size() int {
	return len(c.providers)
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
