package adstxt

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/adstrace/internal/catalog"
)

// IsLikelyHTML reports whether the content is an HTML document rather than a
// plain declarations file. Archives occasionally record an error or block page
// under a 200 status; such observations must not contribute an empty-but-valid
// signature.
func IsLikelyHTML(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return false
	}

	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "<!doctype") && !strings.HasPrefix(lower, "<html") && !strings.Contains(lower, "<body") {
		return false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return false
	}
	return doc.Find("html, body, head").Length() > 0
}

// ScanManagerTokens returns the known declarations-manager tokens occurring in
// the raw content, sorted. Longer tokens shadow their substrings so a hit on
// "adstxt.guide" does not also report the bare "adstxt" marker.
func ScanManagerTokens(content string) []string {
	if content == "" {
		return nil
	}
	lower := strings.ToLower(content)

	found := make(map[string]struct{})
	for _, token := range catalog.ManagerTokens {
		if strings.Contains(lower, token) {
			found[token] = struct{}{}
		}
	}

	for token := range found {
		for other := range found {
			if token != other && strings.Contains(other, token) {
				delete(found, token)
				break
			}
		}
	}

	if len(found) == 0 {
		return nil
	}
	out := make([]string, 0, len(found))
	for token := range found {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// ScanContentTokens returns the catalog providers whose content tokens occur
// in the raw content. Used for technology fingerprinting of archived pages.
func ScanContentTokens(content string, cat *catalog.Catalog) []string {
	if content == "" {
		return nil
	}
	lower := strings.ToLower(content)

	var matched []string
	for _, p := range cat.Providers() {
		for _, token := range p.ContentTokens {
			if strings.Contains(lower, token) {
				matched = append(matched, p.ID)
				break
			}
		}
	}
	return matched
}
