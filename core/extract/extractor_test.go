package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/pagechunk/core"
)

const articleHTML = `<!DOCTYPE html>
<html lang="en">
<head><title>Field Notes</title></head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article>
<h1>Field Notes</h1>
<p>Chunking web pages for retrieval starts with finding the main article. Navigation, footers and
advertising blocks add noise that hurts embedding quality, so they are dropped before conversion.</p>
<p>Each remaining paragraph is converted to markdown and then split on sentence boundaries. Overlap
between neighbouring chunks keeps enough context for a search system to rank passages well.</p>
<p>The same page always produces the same chunks, which makes re-indexing runs comparable over time
and lets downstream systems detect real content changes instead of chunking noise.</p>
</article>
<footer>Copyright</footer>
</body>
</html>`

func TestExtract_Article(t *testing.T) {
	article, err := New().Extract(articleHTML, "https://example.com/notes")
	require.NoError(t, err)
	require.NotNil(t, article)

	assert.Contains(t, article.TextContent, "sentence boundaries")
	assert.Contains(t, article.Content, "<p>")
	assert.NotContains(t, article.TextContent, "Copyright")
}

func TestExtract_EmptyPageIsMiss(t *testing.T) {
	_, err := New().Extract(`<html><head><title>x</title></head><body></body></html>`, "https://example.com/")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNoArticle)
}

func TestExtract_MinTextLength(t *testing.T) {
	e := &ReadabilityExtractor{MinTextLength: 100000}
	_, err := e.Extract(articleHTML, "https://example.com/notes")
	assert.ErrorIs(t, err, core.ErrNoArticle)
}

func TestExtract_BadURL(t *testing.T) {
	_, err := New().Extract(articleHTML, "://bad")
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), core.ErrNoArticle.Error()))
}
