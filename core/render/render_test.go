package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/pagechunk/core"
)

func sampleRecord() *core.PageRecord {
	return &core.PageRecord{
		URL:      "https://example.com/docs/intro",
		Title:    "Intro",
		Markdown: "# Intro\n\nSome **bold** text and a [link](https://example.com).\n\n- item one\n1. first\n\n```\ncode line\n```",
		Metadata: &core.RecordMetadata{
			Author:    "Ana",
			Language:  "en",
			WordCount: 9,
			CrawledAt: "2025-01-01T00:00:00Z",
		},
		Chunks: []core.Chunk{{Text: "Some text.", Index: 0, Metadata: core.ChunkMetadata{CharCount: 10}}},
	}
}

func TestForFormat(t *testing.T) {
	for format, ext := range map[string]string{
		core.FormatMarkdown: ".md",
		core.FormatText:     ".txt",
		core.FormatJSON:     ".json",
		FormatPDF:           ".pdf",
	} {
		r, err := ForFormat(format)
		require.NoError(t, err, format)
		assert.Equal(t, ext, r.Extension())
	}

	_, err := ForFormat("docx")
	assert.Error(t, err)
}

func TestMarkdownRenderer_FrontMatter(t *testing.T) {
	out, err := NewMarkdownRenderer().Render(sampleRecord())
	require.NoError(t, err)

	parts := strings.SplitN(string(out), "---\n", 3)
	require.Len(t, parts, 3)

	var fm frontMatter
	require.NoError(t, yaml.Unmarshal([]byte(parts[1]), &fm))
	assert.Equal(t, "https://example.com/docs/intro", fm.URL)
	assert.Equal(t, "Ana", fm.Author)
	assert.Equal(t, 1, fm.Chunks)
	assert.True(t, strings.HasPrefix(parts[2], "\n# Intro"))
}

func TestTextRenderer_StripsMarkdown(t *testing.T) {
	out, err := NewTextRenderer().Render(sampleRecord())
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "Intro\n\nSource: https://example.com/docs/intro\n\n"))
	assert.Contains(t, s, "Some bold text and a link.")
	assert.NotContains(t, s, "**")
}

func TestTextRenderer_PrefersContent(t *testing.T) {
	rec := &core.PageRecord{URL: "https://example.com", Content: "plain body"}
	out, err := NewTextRenderer().Render(rec)
	require.NoError(t, err)
	assert.Equal(t, "Source: https://example.com\n\nplain body\n", string(out))
}

func TestJSONRenderer_CanonicalShape(t *testing.T) {
	out, err := NewJSONRenderer().Render(sampleRecord())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "https://example.com/docs/intro", m["url"])
	assert.Contains(t, m, "content")
	assert.Contains(t, m, "chunks")
	assert.Equal(t, float64(9), m["metadata"].(map[string]any)["wordCount"])
}

func TestPDFRenderer(t *testing.T) {
	rec := sampleRecord()
	rec.Title = "Café notes"

	out, err := NewPDFRenderer().Render(rec)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, ".pdf", NewPDFRenderer().Extension())
}

func TestCleanInline(t *testing.T) {
	assert.Equal(t, "bold and code and text", cleanInline("**bold** and `code` and [text](http://x)"))
}

func TestStripMarkdown(t *testing.T) {
	assert.Equal(t, "Title\n\nbody", stripMarkdown("## Title\n\n\n\n*body*"))
}
