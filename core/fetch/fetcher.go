// Package fetch implements the Fetcher interface.
// It performs HTTP GET requests with sensible defaults for web scraping.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/pagechunk/core"
)

// Defaults applied when an Options field is zero.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultUserAgent      = "PageChunk/1.0 (+https://github.com/gaurav-prasanna/pagechunk)"
	DefaultMaxContentSize = 10 << 20
)

// Options tune an HTTPFetcher. Zero values fall back to the defaults.
type Options struct {
	Timeout        time.Duration
	UserAgent      string
	MaxContentSize int64
}

// HTTPFetcher fetches web pages via HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxSize   int64
}

// New creates an HTTPFetcher.
func New(opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxContentSize <= 0 {
		opts.MaxContentSize = DefaultMaxContentSize
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		maxSize:   opts.MaxContentSize,
	}
}

// Fetch retrieves the HTML content of the given URL. The returned URL is the
// final one after redirects.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w %d for %s", core.ErrUnexpectedStatus, resp.StatusCode, url)
	}

	if resp.ContentLength > f.maxSize {
		return nil, fmt.Errorf("%w: %s declares %d bytes", core.ErrContentTooLarge, url, resp.ContentLength)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(body)) > f.maxSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", core.ErrContentTooLarge, url, f.maxSize)
	}

	resolved := url
	if resp.Request != nil && resp.Request.URL != nil {
		resolved = resp.Request.URL.String()
	}

	return &core.FetchResult{
		URL:         resolved,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		HTML:        string(body),
	}, nil
}
