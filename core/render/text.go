package render

import (
	"strings"

	"github.com/gaurav-prasanna/pagechunk/core"
)

// TextRenderer writes the title, source URL and plain-text body.
type TextRenderer struct{}

// NewTextRenderer creates a TextRenderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Render returns the record as plain text. Markdown bodies are stripped of
// formatting.
func (r *TextRenderer) Render(rec *core.PageRecord) ([]byte, error) {
	var b strings.Builder
	if rec.Title != "" {
		b.WriteString(rec.Title)
		b.WriteString("\n\n")
	}
	b.WriteString("Source: ")
	b.WriteString(rec.URL)
	b.WriteString("\n\n")

	text := rec.Content
	if text == "" {
		text = stripMarkdown(rec.Markdown)
	}
	b.WriteString(text)
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// Extension returns the file extension for text output.
func (r *TextRenderer) Extension() string {
	return ".txt"
}
