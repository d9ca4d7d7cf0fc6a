package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/pagechunk/config"
	"github.com/gaurav-prasanna/pagechunk/core"
	"github.com/gaurav-prasanna/pagechunk/logging"
	"github.com/gaurav-prasanna/pagechunk/metrics"
)

type stubFetcher struct {
	err error
}

func (f stubFetcher) Fetch(_ context.Context, url string) (*core.FetchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &core.FetchResult{URL: url, StatusCode: 200, HTML: "<html></html>"}, nil
}

type stubProcessor struct {
	err error
}

func (p stubProcessor) Process(_ context.Context, res *core.FetchResult) (*core.PageRecord, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &core.PageRecord{URL: res.URL, Title: "Stub", Markdown: "Body.", Chunks: []core.Chunk{}}, nil
}

func newTestServer(f core.Fetcher, p stubProcessor) *Server {
	cfg := config.Defaults()
	return NewServer(f, p, metrics.New(), logging.Discard(), &cfg)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(stubFetcher{}, stubProcessor{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChunk(t *testing.T) {
	s := newTestServer(stubFetcher{}, stubProcessor{})
	body := `{"text":"Sentence one is short. Sentence two is also short. Sentence three pushes the limit over.","chunkSize":40,"chunkOverlap":10}`

	rec := do(t, s, http.MethodPost, "/v1/chunk", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chunkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Chunks, 3)
	assert.Equal(t, "is short. Sentence two is also short.", resp.Chunks[1].Text)
	assert.Equal(t, 2, resp.Chunks[2].Index)
}

func TestChunk_EmptyTextReturnsEmptyList(t *testing.T) {
	rec := do(t, newTestServer(stubFetcher{}, stubProcessor{}), http.MethodPost, "/v1/chunk", `{"text":"","chunkSize":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"chunks":[]}`, rec.Body.String())
}

func TestChunk_BadRequests(t *testing.T) {
	s := newTestServer(stubFetcher{}, stubProcessor{})
	for _, body := range []string{
		`not json`,
		`{"text":"x","chunkSize":0}`,
		`{"text":"x","chunkSize":10,"chunkOverlap":-1}`,
		`{"text":"x","chunkSize":10,"unknown":true}`,
	} {
		rec := do(t, s, http.MethodPost, "/v1/chunk", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), `"error"`)
	}
}

func TestPage(t *testing.T) {
	s := newTestServer(stubFetcher{}, stubProcessor{})

	rec := do(t, s, http.MethodPost, "/v1/page", `{"url":"https://example.com/post"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://example.com/post","title":"Stub","content":"","markdown":"Body.","chunks":[]}`, rec.Body.String())
}

func TestPage_Errors(t *testing.T) {
	tests := []struct {
		name string
		f    stubFetcher
		p    stubProcessor
		body string
		code int
	}{
		{"invalid url", stubFetcher{}, stubProcessor{}, `{"url":"example.com"}`, http.StatusBadRequest},
		{"fetch failure", stubFetcher{err: core.ErrUnexpectedStatus}, stubProcessor{}, `{"url":"https://example.com"}`, http.StatusBadGateway},
		{"extraction miss", stubFetcher{}, stubProcessor{err: core.ErrNoArticle}, `{"url":"https://example.com"}`, http.StatusUnprocessableEntity},
		{"processing error", stubFetcher{}, stubProcessor{err: assert.AnError}, `{"url":"https://example.com"}`, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(tt.f, tt.p), http.MethodPost, "/v1/page", tt.body)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(stubFetcher{}, stubProcessor{})
	do(t, s, http.MethodPost, "/v1/page", `{"url":"https://example.com/post"}`)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pagechunk_pages_processed_total 1")
}
