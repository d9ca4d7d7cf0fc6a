// Package assemble builds the per-page output record.
//
// Assemble is pure: it combines the extracted article, the converted markdown,
// scraped metadata and a caller-supplied crawl timestamp into a PageRecord and
// runs the chunker over the selected representation.
package assemble

import (
	"fmt"
	"strings"
	"time"

	"github.com/gaurav-prasanna/pagechunk/core"
	"github.com/gaurav-prasanna/pagechunk/core/chunk"
	"github.com/gaurav-prasanna/pagechunk/core/metadata"
)

// Input is everything known about one successfully fetched page.
type Input struct {
	URL       string
	Article   *core.Article
	Markdown  string
	Meta      core.PageMeta
	CrawledAt time.Time
}

// Options control which representation is stored and how it is chunked.
type Options struct {
	OutputFormat    string
	ChunkSize       int // <= 0 disables chunking
	ChunkOverlap    int
	IncludeMetadata bool
}

// Assemble builds the record for one page. A nil article means extraction
// found nothing and yields core.ErrNoArticle.
func Assemble(in Input, opts Options) (*core.PageRecord, error) {
	if in.Article == nil {
		return nil, core.ErrNoArticle
	}

	text := CollapseWhitespace(in.Article.TextContent)

	rec := &core.PageRecord{
		URL:   in.URL,
		Title: firstNonEmpty(in.Article.Title, in.Meta.Title),
	}

	var body string
	switch opts.OutputFormat {
	case core.FormatText:
		rec.Content = text
		body = text
	case core.FormatMarkdown, core.FormatJSON:
		rec.Markdown = in.Markdown
		body = in.Markdown
	default:
		return nil, fmt.Errorf("unknown output format %q", opts.OutputFormat)
	}

	if opts.IncludeMetadata {
		rec.Metadata = buildMetadata(in, text)
	}

	if opts.ChunkSize > 0 {
		rec.Chunks = chunk.Chunk(body, opts.ChunkSize, opts.ChunkOverlap)
	}

	return rec, nil
}

func buildMetadata(in Input, text string) *core.RecordMetadata {
	published := in.Meta.PublishedDate
	if published == "" && in.Article.PublishedTime != nil {
		published = in.Article.PublishedTime.UTC().Format(time.RFC3339)
	}

	lang := in.Meta.Language
	if lang == "" {
		lang = metadata.DetectLanguage(text)
	}

	return &core.RecordMetadata{
		Author:        firstNonEmpty(in.Meta.Author, in.Article.Byline),
		PublishedDate: published,
		Description:   in.Meta.Description,
		Language:      lang,
		WordCount:     WordCount(text),
		CrawledAt:     in.CrawledAt.UTC().Format(time.RFC3339),
	}
}

// CollapseWhitespace replaces every whitespace run with a single space and
// trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WordCount counts whitespace-delimited tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
