package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gaurav-prasanna/pagechunk/config"
	"github.com/gaurav-prasanna/pagechunk/core"
	"github.com/gaurav-prasanna/pagechunk/core/chunk"
	"github.com/gaurav-prasanna/pagechunk/metrics"
)

type chunkRequest struct {
	Text         string `json:"text"`
	ChunkSize    int    `json:"chunkSize"`
	ChunkOverlap int    `json:"chunkOverlap"`
}

type chunkResponse struct {
	Chunks []core.Chunk `json:"chunks"`
}

type pageRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	var req chunkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.ChunkSize <= 0 {
		jsonError(w, "chunkSize must be positive", http.StatusBadRequest)
		return
	}
	if req.ChunkOverlap < 0 {
		jsonError(w, "chunkOverlap must not be negative", http.StatusBadRequest)
		return
	}

	chunks := chunk.Chunk(req.Text, req.ChunkSize, req.ChunkOverlap)
	s.metrics.ObserveChunks(chunks)
	writeJSON(w, http.StatusOK, chunkResponse{Chunks: chunks})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := config.ValidateURL(req.URL); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger := s.log.WithField("url", req.URL)

	res, err := s.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		s.metrics.Failed(metrics.StageFetch)
		logger.WithError(err).Error("fetch failed")
		jsonError(w, "fetch failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	s.metrics.Fetched()

	rec, err := s.processor.Process(r.Context(), res)
	switch {
	case errors.Is(err, core.ErrNoArticle):
		s.metrics.Skipped()
		logger.Warn("no article content")
		jsonError(w, "no article content found", http.StatusUnprocessableEntity)
		return
	case err != nil:
		s.metrics.Failed(metrics.StageProcess)
		logger.WithError(err).Error("processing failed")
		jsonError(w, "processing failed", http.StatusInternalServerError)
		return
	}

	s.metrics.Processed(rec)
	writeJSON(w, http.StatusOK, rec)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
