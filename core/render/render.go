// Package render turns a PageRecord into a standalone document for the
// files and pdf sinks.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/pagechunk/core"
)

// FormatPDF selects the PDF renderer. It is a file format only, never a
// record representation.
const FormatPDF = "pdf"

// ForFormat returns the file renderer for an output format or FormatPDF.
func ForFormat(format string) (core.Renderer, error) {
	switch format {
	case FormatPDF:
		return NewPDFRenderer(), nil
	case core.FormatMarkdown:
		return NewMarkdownRenderer(), nil
	case core.FormatText:
		return NewTextRenderer(), nil
	case core.FormatJSON:
		return NewJSONRenderer(), nil
	default:
		return nil, fmt.Errorf("no renderer for output format %q", format)
	}
}

var (
	headingRegex    = regexp.MustCompile(`(?m)^(#{1,6})\s+(.*)$`)
	emphasisRegex   = regexp.MustCompile(`\*{1,3}([^*]+)\*{1,3}`)
	linkRegex       = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]+\)`)
	inlineCodeRegex = regexp.MustCompile("`([^`]+)`")
	blankLinesRegex = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes common Markdown formatting to produce plain text.
func stripMarkdown(md string) string {
	text := headingRegex.ReplaceAllString(md, "$2")
	text = emphasisRegex.ReplaceAllString(text, "$1")
	text = linkRegex.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "```", "")
	text = inlineCodeRegex.ReplaceAllString(text, "$1")
	text = blankLinesRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// body returns the populated representation of a record.
func body(rec *core.PageRecord) string {
	if rec.Markdown != "" {
		return rec.Markdown
	}
	return rec.Content
}
