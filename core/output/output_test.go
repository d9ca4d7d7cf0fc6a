package output

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/pagechunk/core"
	"github.com/gaurav-prasanna/pagechunk/core/render"
)

func record(url string) *core.PageRecord {
	return &core.PageRecord{URL: url, Title: "T", Markdown: "Body.", Chunks: []core.Chunk{}}
}

func TestFileSink_MirrorLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSink(dir, render.NewMarkdownRenderer(), LayoutMirror)
	require.NoError(t, err)

	var written []string
	s.OnWrite = func(p string) { written = append(written, p) }

	require.NoError(t, s.Push(context.Background(), record("https://site.com/docs/intro/")))
	require.NoError(t, s.Push(context.Background(), record("https://site.com/")))

	want := []string{
		filepath.Join(dir, "site_com", "docs", "intro.md"),
		filepath.Join(dir, "site_com", "index.md"),
	}
	assert.Equal(t, want, written)
	for _, p := range want {
		assert.FileExists(t, p)
	}
	require.NoError(t, s.Close())
}

func TestFileSink_PathFor(t *testing.T) {
	s := &FileSink{dir: "out", renderer: render.NewJSONRenderer(), layout: LayoutMirror}

	p, err := s.PathFor("https://site.com/a/../b?page=2")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "site_com", "a", "b_page_2.json"), p)

	s.layout = LayoutFlat
	p, err = s.PathFor("https://example.com/docs/intro")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "example_com_docs_intro.json"), p)
}

func TestFilenameFromURL(t *testing.T) {
	assert.Equal(t, "example_com", filenameFromURL("https://example.com/"))
	assert.Equal(t, "example_com_a_b_html", filenameFromURL("https://example.com/a/b.html"))
}

func TestJSONLSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONLSink(&buf)

	require.NoError(t, s.Push(context.Background(), record("https://a.test/1")))
	require.NoError(t, s.Push(context.Background(), record("https://a.test/2")))
	require.NoError(t, s.Close())

	sc := bufio.NewScanner(&buf)
	var urls []string
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		urls = append(urls, m["url"].(string))
		assert.Equal(t, []any{}, m["chunks"])
	}
	assert.Equal(t, []string{"https://a.test/1", "https://a.test/2"}, urls)
}

func TestOpenDataset_Appends(t *testing.T) {
	dir := t.TempDir()

	for i := 0; i < 2; i++ {
		s, err := OpenDataset(dir)
		require.NoError(t, err)
		require.NoError(t, s.Push(context.Background(), record("https://a.test/")))
		require.NoError(t, s.Close())
	}

	data, err := os.ReadFile(filepath.Join(dir, DatasetFile))
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))
}

type fakeSink struct {
	pushed []string
	err    error
	closed bool
}

func (f *fakeSink) Push(_ context.Context, rec *core.PageRecord) error {
	f.pushed = append(f.pushed, rec.URL)
	return f.err
}

func (f *fakeSink) Close() error {
	f.closed = true
	return f.err
}

func TestMulti_JoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	good, bad := &fakeSink{}, &fakeSink{err: boom}
	m := Multi{bad, good}

	err := m.Push(context.Background(), record("https://a.test/"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"https://a.test/"}, good.pushed)

	assert.ErrorIs(t, m.Close(), boom)
	assert.True(t, good.closed)
	assert.NoError(t, Multi{}.Push(context.Background(), record("x")))
}

type fakeConn struct {
	subject string
	msgs    [][]byte
	flushed bool
	closed  bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.subject = subject
	c.msgs = append(c.msgs, data)
	return nil
}

func (c *fakeConn) Flush() error { c.flushed = true; return nil }
func (c *fakeConn) Close()       { c.closed = true }

func TestNATSSink(t *testing.T) {
	conn := &fakeConn{}
	s := &NATSSink{conn: conn, subject: "pagechunk.pages"}

	require.NoError(t, s.Push(context.Background(), record("https://a.test/")))
	require.NoError(t, s.Close())

	assert.Equal(t, "pagechunk.pages", conn.subject)
	require.Len(t, conn.msgs, 1)
	assert.Contains(t, string(conn.msgs[0]), `"url":"https://a.test/"`)
	assert.True(t, conn.flushed)
	assert.True(t, conn.closed)
}

func TestNATSSink_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &NATSSink{conn: &fakeConn{}, subject: "x"}
	assert.ErrorIs(t, s.Push(ctx, record("https://a.test/")), context.Canceled)
}
