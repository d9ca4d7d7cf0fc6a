package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/pagechunk/core"
)

var (
	numberedItemRegex = regexp.MustCompile(`^\d+\.\s`)
	italicRegex       = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*(?:\s|$)`)
)

var headingSizes = map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 10}

// PDFRenderer lays out a record as an A4 document: title, source line,
// metadata summary, then the body with basic Markdown styling.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// pdfDoc wraps a gofpdf document with a cp1252 translator for core fonts.
type pdfDoc struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (d *pdfDoc) write(lineHeight float64, text string, fill bool) {
	d.pdf.MultiCell(0, lineHeight, d.tr(text), "", "L", fill)
}

// Render converts the record into PDF bytes.
func (r *PDFRenderer) Render(rec *core.PageRecord) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(rec.Title, true)
	pdf.AddPage()

	d := &pdfDoc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	if rec.Title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		d.write(8, rec.Title, false)
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	d.write(5, "Source: "+rec.URL, false)
	if m := rec.Metadata; m != nil {
		for _, line := range metadataLines(m) {
			d.write(5, line, false)
		}
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	d.markdown(body(rec))

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("building PDF: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

func metadataLines(m *core.RecordMetadata) []string {
	var lines []string
	if m.Author != "" {
		lines = append(lines, "Author: "+m.Author)
	}
	if m.PublishedDate != "" {
		lines = append(lines, "Published: "+m.PublishedDate)
	}
	if m.Language != "" {
		lines = append(lines, "Language: "+m.Language)
	}
	lines = append(lines, fmt.Sprintf("Words: %d", m.WordCount))
	if m.CrawledAt != "" {
		lines = append(lines, "Crawled: "+m.CrawledAt)
	}
	return lines
}

// markdown renders the body line by line: headings, code fences, bullet and
// numbered lists, and paragraphs.
func (d *pdfDoc) markdown(md string) {
	pdf := d.pdf
	inCode := false

	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inCode = !inCode
			pdf.Ln(2)
			continue
		}

		switch {
		case inCode:
			pdf.SetFont("Courier", "", 9)
			pdf.SetFillColor(245, 245, 245)
			d.write(4.5, line, true)

		case trimmed == "":
			pdf.Ln(3)

		case strings.HasPrefix(trimmed, "#"):
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			d.heading(strings.TrimSpace(trimmed[level:]), level)

		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			pdf.SetFont("Helvetica", "", 10)
			d.write(5, "• "+cleanInline(trimmed[2:]), false)

		case numberedItemRegex.MatchString(trimmed):
			pdf.SetFont("Helvetica", "", 10)
			d.write(5, cleanInline(trimmed), false)

		default:
			pdf.SetFont("Helvetica", "", 10)
			d.write(5, cleanInline(line), false)
		}
	}
}

func (d *pdfDoc) heading(text string, level int) {
	size, ok := headingSizes[level]
	if !ok {
		size = 10
	}
	d.pdf.Ln(4)
	d.pdf.SetFont("Helvetica", "B", size)
	d.write(size*0.6, cleanInline(text), false)
	d.pdf.Ln(2)
}

// cleanInline strips inline Markdown formatting.
func cleanInline(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = italicRegex.ReplaceAllString(text, " $1 ")
	text = inlineCodeRegex.ReplaceAllString(text, "$1")
	text = linkRegex.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
