package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/pagechunk/core"
)

func openMemory(t *testing.T, runID string) *Store {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, ":memory:", runID)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_GeneratesRunID(t *testing.T) {
	s := openMemory(t, "")
	assert.Len(t, s.RunID(), 36)

	var started string
	require.NoError(t, s.db.QueryRow(`SELECT started_at FROM runs WHERE id = ?`, s.RunID()).Scan(&started))
	assert.NotEmpty(t, started)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "", "")
	assert.Error(t, err)
}

func TestPush_StoresPageAndChunks(t *testing.T) {
	s := openMemory(t, "run-1")
	ctx := context.Background()

	rec := &core.PageRecord{
		URL:      "https://example.com/a",
		Title:    "A",
		Markdown: "One. Two.",
		Metadata: &core.RecordMetadata{Language: "en", WordCount: 2, CrawledAt: "2025-01-01T00:00:00Z"},
		Chunks: []core.Chunk{
			{Text: "One.", Index: 0, Metadata: core.ChunkMetadata{CharCount: 4}},
			{Text: "Two.", Index: 1, Metadata: core.ChunkMetadata{CharCount: 4}},
		},
	}
	require.NoError(t, s.Push(ctx, rec))
	require.NoError(t, s.Push(ctx, &core.PageRecord{URL: "https://example.com/b"}))

	var (
		runID, title, meta string
		chunked            bool
	)
	require.NoError(t, s.db.QueryRow(
		`SELECT run_id, title, metadata, chunked FROM pages WHERE url = ?`, rec.URL,
	).Scan(&runID, &title, &meta, &chunked))
	assert.Equal(t, "run-1", runID)
	assert.Equal(t, "A", title)
	assert.True(t, chunked)

	var got core.RecordMetadata
	require.NoError(t, json.Unmarshal([]byte(meta), &got))
	assert.Equal(t, *rec.Metadata, got)

	rows, err := s.db.Query(`SELECT c.chunk_index, c.text, c.char_count FROM chunks c
		JOIN pages p ON p.id = c.page_id WHERE p.url = ? ORDER BY c.chunk_index`, rec.URL)
	require.NoError(t, err)
	defer rows.Close()

	var chunks []core.Chunk
	for rows.Next() {
		var c core.Chunk
		require.NoError(t, rows.Scan(&c.Index, &c.Text, &c.Metadata.CharCount))
		chunks = append(chunks, c)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, rec.Chunks, chunks)

	var nullMeta *string
	require.NoError(t, s.db.QueryRow(`SELECT metadata FROM pages WHERE url = ?`, "https://example.com/b").Scan(&nullMeta))
	assert.Nil(t, nullMeta)
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: dialects[DriverPostgres]}
	assert.Equal(t, "VALUES ($1, $2, $3)", pg.rebind("VALUES (?, ?, ?)"))

	lite := &Store{dialect: dialects[DriverSQLite]}
	assert.Equal(t, "VALUES (?, ?)", lite.rebind("VALUES (?, ?)"))
}
