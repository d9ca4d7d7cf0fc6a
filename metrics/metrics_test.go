package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/pagechunk/core"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Fetched()
	m.Fetched()
	m.Skipped()
	m.Failed(StageFetch)
	m.Failed(StageSink)
	m.Failed(StageSink)
	m.Processed(&core.PageRecord{Chunks: []core.Chunk{
		{Metadata: core.ChunkMetadata{CharCount: 10}},
		{Metadata: core.ChunkMetadata{CharCount: 900}},
	}})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesFetched))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesProcessed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChunksEmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesFailed.WithLabelValues(StageFetch)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesFailed.WithLabelValues(StageSink)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ChunkChars))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Fetched()
		m.Skipped()
		m.Failed(StageProcess)
		m.Processed(&core.PageRecord{})
		m.ObserveChunks(nil)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Fetched()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pagechunk_pages_fetched_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
