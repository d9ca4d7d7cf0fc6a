package metadata

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestScrape_AllFields(t *testing.T) {
	doc := parse(t, `<html lang="de-DE"><head>
<title> Release notes </title>
<meta name="author" content="Jo Smith">
<meta name="description" content="What changed.">
<meta property="og:description" content="ignored">
<meta property="article:published_time" content="2024-03-01T10:00:00+02:00">
</head><body><time datetime="1999-01-01">old</time></body></html>`)

	meta := Scrape(doc)

	assert.Equal(t, "Release notes", meta.Title)
	assert.Equal(t, "Jo Smith", meta.Author)
	assert.Equal(t, "What changed.", meta.Description)
	assert.Equal(t, "2024-03-01T08:00:00Z", meta.PublishedDate)
	assert.Equal(t, "de-DE", meta.Language)
}

func TestScrape_Fallbacks(t *testing.T) {
	doc := parse(t, `<html><head>
<meta property="og:description" content="From open graph">
</head><body><article><time datetime="2023-07-04">July 4</time></article></body></html>`)

	meta := Scrape(doc)

	assert.Empty(t, meta.Title)
	assert.Empty(t, meta.Author)
	assert.Equal(t, "From open graph", meta.Description)
	assert.Equal(t, "2023-07-04T00:00:00Z", meta.PublishedDate)
	assert.Empty(t, meta.Language)
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  ", ""},
		{"2024-01-02", "2024-01-02T00:00:00Z"},
		{"2024-01-02T03:04:05Z", "2024-01-02T03:04:05Z"},
		{"sometime last spring", "sometime last spring"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDate(tt.in), "input %q", tt.in)
	}
}

func TestDetectLanguage(t *testing.T) {
	assert.Empty(t, DetectLanguage("   "))
	assert.Equal(t, "en", DetectLanguage("The quick brown fox jumps over the lazy dog while the children watch from the garden."))
	assert.Equal(t, "de", DetectLanguage("Der schnelle braune Fuchs springt über den faulen Hund, während die Kinder im Garten zuschauen."))
}
