// Package metadata scrapes page-level metadata from the DOM.
package metadata

import (
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/pemistahl/lingua-go"

	"github.com/gaurav-prasanna/pagechunk/core"
)

// Scrape reads title, author, description, published date and language
// from a parsed page. Missing values are left empty.
func Scrape(doc *goquery.Document) core.PageMeta {
	meta := core.PageMeta{
		Title:       strings.TrimSpace(doc.Find("head title").First().Text()),
		Author:      metaContent(doc, `meta[name="author"]`),
		Description: metaContent(doc, `meta[name="description"]`),
		Language:    strings.TrimSpace(doc.Find("html").AttrOr("lang", "")),
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if meta.Description == "" {
		meta.Description = metaContent(doc, `meta[property="og:description"]`)
	}

	published := metaContent(doc, `meta[property="article:published_time"]`)
	if published == "" {
		published = strings.TrimSpace(doc.Find("time[datetime]").First().AttrOr("datetime", ""))
	}
	meta.PublishedDate = NormalizeDate(published)

	return meta
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

// NormalizeDate rewrites a parseable date as RFC 3339 in UTC. Unparseable
// values are returned trimmed but otherwise unchanged.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return raw
	}
	return t.UTC().Format(time.RFC3339)
}

// detectable is the language set used for statistical detection.
var detectable = []lingua.Language{
	lingua.English, lingua.German, lingua.French, lingua.Spanish,
	lingua.Italian, lingua.Portuguese, lingua.Dutch, lingua.Polish,
	lingua.Swedish, lingua.Turkish, lingua.Russian, lingua.Ukrainian,
	lingua.Arabic, lingua.Chinese, lingua.Japanese, lingua.Korean,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectLanguage guesses the ISO 639-1 code of text, or returns "" when the
// text is empty or the guess is not reliable.
func DetectLanguage(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectable...).
			WithMinimumRelativeDistance(0.1).
			Build()
	})

	lang, ok := detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
