// Package normalize implements the Normalizer interface.
// It strips non-content elements from article HTML and converts the rest
// into Markdown, the representation that is stored and chunked.
package normalize

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// alwaysRemoved never contributes page text.
var alwaysRemoved = []string{"script", "style", "iframe", "noscript"}

// navigationSelectors are removed when navigation removal is enabled.
var navigationSelectors = []string{"nav", "header", "footer"}

// MarkdownNormalizer converts HTML to Markdown using html-to-markdown.
type MarkdownNormalizer struct {
	removeNavigation bool
}

// New creates a MarkdownNormalizer. When removeNavigation is set, nav, header
// and footer elements are dropped before conversion.
func New(removeNavigation bool) *MarkdownNormalizer {
	return &MarkdownNormalizer{removeNavigation: removeNavigation}
}

// Normalize converts an HTML fragment into Markdown.
func (n *MarkdownNormalizer) Normalize(html string) (string, error) {
	cleaned, err := n.Clean(html)
	if err != nil {
		return "", err
	}

	markdown, err := htmltomarkdown.ConvertString(cleaned)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

// Clean removes the configured elements and returns the remaining HTML.
func (n *MarkdownNormalizer) Clean(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	selectors := alwaysRemoved
	if n.removeNavigation {
		selectors = append(append([]string{}, alwaysRemoved...), navigationSelectors...)
	}
	doc.Find(strings.Join(selectors, ", ")).Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return doc.Html()
	}
	return body.Html()
}
