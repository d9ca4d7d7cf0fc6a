// Package extract implements the Extractor interface.
// It isolates the readable article from a full HTML page with go-readability
// and reports pages without meaningful content as core.ErrNoArticle.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"

	"github.com/gaurav-prasanna/pagechunk/core"
)

// ReadabilityExtractor finds the main article content of a page.
type ReadabilityExtractor struct {
	// MinTextLength is the minimum trimmed text length for a usable article.
	MinTextLength int
}

// New creates a ReadabilityExtractor that accepts any non-empty article.
func New() *ReadabilityExtractor {
	return &ReadabilityExtractor{MinTextLength: 1}
}

// Extract parses raw HTML and returns the article, or core.ErrNoArticle when
// readability cannot find content.
func (e *ReadabilityExtractor) Extract(html string, pageURL string) (*core.Article, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page URL: %w", err)
	}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrNoArticle, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" || len([]rune(text)) < e.MinTextLength || strings.TrimSpace(article.Content) == "" {
		return nil, core.ErrNoArticle
	}

	return &core.Article{
		Title:         strings.TrimSpace(article.Title),
		Byline:        strings.TrimSpace(article.Byline),
		Content:       article.Content,
		TextContent:   article.TextContent,
		PublishedTime: article.PublishedTime,
	}, nil
}
