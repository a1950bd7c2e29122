package adstxt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aleister1102/adstrace/internal/catalog"
)

func TestIsLikelyHTML(t *testing.T) {
	assert.True(t, IsLikelyHTML("<!DOCTYPE html><html><body>Not Found</body></html>"))
	assert.True(t, IsLikelyHTML("<html><head><title>blocked</title></head></html>"))
	assert.True(t, IsLikelyHTML("  \n<HTML><BODY>404</BODY></HTML>"))

	assert.False(t, IsLikelyHTML("google.com, pub-1, DIRECT\n"))
	assert.False(t, IsLikelyHTML(""))
	// A declarations file mentioning html in a comment is still a text file.
	assert.False(t, IsLikelyHTML("# see https://example.com/page.html\ngoogle.com, pub-1, DIRECT\n"))
}

func TestScanManagerTokens(t *testing.T) {
	content := "# managed by https://adstxt.guide\n# sellers.json at /sellers.json\ngoogle.com, pub-1, DIRECT\n"

	tokens := ScanManagerTokens(content)

	// The bare "adstxt" marker is shadowed by the longer "adstxt.guide" hit.
	assert.Equal(t, []string{"adstxt.guide", "sellers.json"}, tokens)
}

func TestScanManagerTokens_NoHits(t *testing.T) {
	assert.Nil(t, ScanManagerTokens("google.com, pub-1, DIRECT\n"))
	assert.Nil(t, ScanManagerTokens(""))
}

func TestScanContentTokens(t *testing.T) {
	cat := catalog.Default()
	content := "<script src=\"https://ads.pubmatic.com/ow.js\"></script><script src=\"gpt.js\"></script>"

	matched := ScanContentTokens(content, cat)

	assert.Contains(t, matched, "pubmatic")
	assert.Contains(t, matched, "google")
	assert.NotContains(t, matched, "sovrn")
}
