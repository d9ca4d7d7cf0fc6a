package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fragment = `<div>
<nav><a href="/">Home</a></nav>
<header>Site banner</header>
<h2>Results</h2>
<p>The <strong>first</strong> finding.</p>
<script>var tracking = true;</script>
<style>p { color: red; }</style>
<noscript>Enable JavaScript</noscript>
<iframe src="https://ads.example.com"></iframe>
<ul><li>one</li><li>two</li></ul>
<footer>Footer links</footer>
</div>`

func TestNormalize_RemovesNavigation(t *testing.T) {
	md, err := New(true).Normalize(fragment)
	require.NoError(t, err)

	assert.Contains(t, md, "## Results")
	assert.Contains(t, md, "**first**")
	assert.Contains(t, md, "- one")

	for _, unwanted := range []string{"Home", "Site banner", "tracking", "color: red", "Enable JavaScript", "Footer links"} {
		assert.NotContains(t, md, unwanted)
	}
}

func TestNormalize_KeepsNavigationWhenDisabled(t *testing.T) {
	md, err := New(false).Normalize(fragment)
	require.NoError(t, err)

	assert.Contains(t, md, "Site banner")
	assert.Contains(t, md, "Footer links")
	assert.NotContains(t, md, "tracking")
}

func TestNormalize_Empty(t *testing.T) {
	md, err := New(true).Normalize("")
	require.NoError(t, err)
	assert.Empty(t, md)
}

func TestClean_DoesNotMutateDefaults(t *testing.T) {
	_, err := New(true).Clean(fragment)
	require.NoError(t, err)
	assert.Equal(t, []string{"script", "style", "iframe", "noscript"}, alwaysRemoved)
}
