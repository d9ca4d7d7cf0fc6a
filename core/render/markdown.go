package render

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/pagechunk/core"
)

// frontMatter is the YAML header written above the page body.
type frontMatter struct {
	URL           string `yaml:"url"`
	Title         string `yaml:"title,omitempty"`
	Author        string `yaml:"author,omitempty"`
	PublishedDate string `yaml:"publishedDate,omitempty"`
	Description   string `yaml:"description,omitempty"`
	Language      string `yaml:"language,omitempty"`
	WordCount     int    `yaml:"wordCount,omitempty"`
	CrawledAt     string `yaml:"crawledAt,omitempty"`
	Chunks        int    `yaml:"chunks,omitempty"`
}

// MarkdownRenderer writes the page markdown under a YAML front matter block.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render returns front matter followed by the record body.
func (r *MarkdownRenderer) Render(rec *core.PageRecord) ([]byte, error) {
	fm := frontMatter{URL: rec.URL, Title: rec.Title, Chunks: len(rec.Chunks)}
	if m := rec.Metadata; m != nil {
		fm.Author = m.Author
		fm.PublishedDate = m.PublishedDate
		fm.Description = m.Description
		fm.Language = m.Language
		fm.WordCount = m.WordCount
		fm.CrawledAt = m.CrawledAt
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("marshaling front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(body(rec))
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
