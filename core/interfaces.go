// Package core defines the page record model and the pipeline interfaces for PageChunk.
// Each stage of the pipeline is a clean, testable interface.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Sentinel errors shared across pipeline stages.
var (
	// ErrNoArticle means the extractor found no meaningful article content.
	// The page is skipped; it is never fatal to a crawl.
	ErrNoArticle = errors.New("no article content extracted")

	// ErrUnexpectedStatus is returned by fetchers for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrContentTooLarge is returned by fetchers when a body exceeds the size limit.
	ErrContentTooLarge = errors.New("content too large")
)

// Output formats recognized by the assembler.
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatJSON     = "json"
)

// ValidFormat reports whether f is a recognized output format.
func ValidFormat(f string) bool {
	switch f {
	case FormatMarkdown, FormatText, FormatJSON:
		return true
	}
	return false
}

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL         string // resolved URL after redirects
	StatusCode  int
	ContentType string
	HTML        string
}

// Article is the main readable content isolated from a page.
type Article struct {
	Title         string
	Byline        string
	Content       string // article HTML
	TextContent   string // article plain text
	PublishedTime *time.Time
}

// PageMeta holds metadata scraped from the page DOM.
type PageMeta struct {
	Title         string
	Author        string
	Description   string
	PublishedDate string
	Language      string
}

// ChunkMetadata describes a single chunk.
type ChunkMetadata struct {
	CharCount int `json:"charCount"`
}

// Chunk is one bounded, ordered slice of a page's text.
type Chunk struct {
	Text     string        `json:"text"`
	Index    int           `json:"index"`
	Metadata ChunkMetadata `json:"metadata"`
}

// RecordMetadata is the optional metadata block of a PageRecord.
type RecordMetadata struct {
	Author        string `json:"author,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
	Description   string `json:"description,omitempty"`
	Language      string `json:"language,omitempty"`
	WordCount     int    `json:"wordCount"`
	CrawledAt     string `json:"crawledAt"` // RFC 3339
}

// PageRecord is the complete per-page output unit.
//
// A nil Chunks slice means chunking was disabled and the key is left out of
// the JSON; a non-nil empty slice serializes as "chunks": [].
type PageRecord struct {
	URL      string          `json:"url"`
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Markdown string          `json:"markdown,omitempty"`
	Metadata *RecordMetadata `json:"metadata,omitempty"`
	Chunks   []Chunk         `json:"chunks,omitempty"`
}

// MarshalJSON keeps an enabled-but-empty chunk list visible as [].
func (r PageRecord) MarshalJSON() ([]byte, error) {
	type record PageRecord
	out := struct {
		record
		Chunks *[]Chunk `json:"chunks,omitempty"`
	}{record: record(r)}
	if r.Chunks != nil {
		out.Chunks = &r.Chunks
	}
	return json.Marshal(out)
}

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor isolates the main article from raw HTML.
// It returns ErrNoArticle when nothing meaningful was found.
type Extractor interface {
	Extract(html string, pageURL string) (*Article, error)
}

// Normalizer converts article HTML into Markdown.
type Normalizer interface {
	Normalize(html string) (string, error)
}

// Renderer converts a PageRecord into a final file format.
type Renderer interface {
	Render(rec *PageRecord) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}

// Sink receives assembled records. Sinks are append-only.
type Sink interface {
	Push(ctx context.Context, rec *PageRecord) error
	Close() error
}
