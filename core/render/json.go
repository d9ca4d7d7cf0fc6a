package render

import (
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/pagechunk/core"
)

// JSONRenderer writes the record in its canonical JSON shape.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render returns the indented record JSON.
func (r *JSONRenderer) Render(rec *core.PageRecord) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}
