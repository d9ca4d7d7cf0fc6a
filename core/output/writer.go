// Package output implements the record sinks that write to local files,
// writers and message buses.
package output

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/pagechunk/core"
)

// Layout selects how a FileSink names its files.
type Layout int

const (
	// LayoutMirror mirrors the URL path: https://site.com/docs/intro → site_com/docs/intro.md
	LayoutMirror Layout = iota
	// LayoutFlat flattens the URL into one name: example_com_docs_intro.md
	LayoutFlat
)

// FileSink renders each record and writes it to its own file.
type FileSink struct {
	dir      string
	renderer core.Renderer
	layout   Layout

	// OnWrite, when set, is called with the path of every written file.
	OnWrite func(path string)
}

// NewFileSink creates a FileSink rooted at dir.
// If dir is empty, it defaults to the current working directory.
func NewFileSink(dir string, renderer core.Renderer, layout Layout) (*FileSink, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &FileSink{dir: dir, renderer: renderer, layout: layout}, nil
}

// Push renders rec and writes it to disk.
func (s *FileSink) Push(_ context.Context, rec *core.PageRecord) error {
	data, err := s.renderer.Render(rec)
	if err != nil {
		return fmt.Errorf("render %s: %w", rec.URL, err)
	}

	path, err := s.PathFor(rec.URL)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}

	if s.OnWrite != nil {
		s.OnWrite(path)
	}
	return nil
}

// Close is a no-op; every Push writes a complete file.
func (s *FileSink) Close() error { return nil }

// PathFor returns the file path a record for rawURL is written to.
func (s *FileSink) PathFor(rawURL string) (string, error) {
	ext := s.renderer.Extension()
	if s.layout == LayoutFlat {
		return filepath.Join(s.dir, filenameFromURL(rawURL)+ext), nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}

	urlPath := strings.Trim(parsed.Path, "/")
	if urlPath == "" {
		urlPath = "index"
	}

	segments := []string{s.dir, sanitize(parsed.Host)}
	for _, seg := range strings.Split(urlPath, "/") {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		segments = append(segments, sanitizeSegment(seg))
	}
	if parsed.RawQuery != "" {
		last := len(segments) - 1
		segments[last] += "_" + sanitize(parsed.RawQuery)
	}
	return filepath.Join(segments...) + ext, nil
}

// filenameFromURL converts a URL into a flat filename.
// Example: https://example.com/docs/intro → example_com_docs_intro
func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return sanitize(rawURL)
	}

	parts := []string{sanitize(parsed.Host)}
	path := strings.Trim(parsed.Path, "/")
	if path != "" {
		for _, seg := range strings.Split(path, "/") {
			parts = append(parts, sanitize(seg))
		}
	}
	return strings.Join(parts, "_")
}

// sanitize replaces non-alphanumeric characters with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// sanitizeSegment is sanitize that also keeps '-' and '.' inside a path segment.
func sanitizeSegment(s string) string {
	return strings.Map(func(ch rune) rune {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '.':
			return ch
		}
		return '_'
	}, s)
}
