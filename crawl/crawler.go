package crawl

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/gaurav-prasanna/pagechunk/core"
	"github.com/gaurav-prasanna/pagechunk/logging"
	"github.com/gaurav-prasanna/pagechunk/metrics"
)

// PageProcessor turns a fetched page into zero or one record.
type PageProcessor interface {
	Process(ctx context.Context, res *core.FetchResult) (*core.PageRecord, error)
}

// Options bound the crawl.
type Options struct {
	MaxPages    int // fetch attempts; 0 means unlimited
	MaxDepth    int
	Concurrency int
	FollowLinks bool
	UseSitemap  bool
}

// Stats summarizes a finished crawl.
type Stats struct {
	Fetched   int `json:"fetched"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	Chunks    int `json:"chunks"`
}

// Crawler runs the BFS frontier level by level. Pages within a level are
// fetched and processed concurrently, then handled in frontier order.
type Crawler struct {
	fetcher   core.Fetcher
	processor PageProcessor
	sink      core.Sink
	rules     *Rules
	opts      Options

	log     log.FieldLogger
	metrics *metrics.Metrics
}

// New creates a Crawler.
func New(fetcher core.Fetcher, processor PageProcessor, sink core.Sink, rules *Rules, opts Options) *Crawler {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Crawler{
		fetcher:   fetcher,
		processor: processor,
		sink:      sink,
		rules:     rules,
		opts:      opts,
		log:       logging.Discard(),
	}
}

// WithLogger sets the logger.
func (c *Crawler) WithLogger(l log.FieldLogger) *Crawler {
	c.log = l
	return c
}

// WithMetrics sets the metrics recorder.
func (c *Crawler) WithMetrics(m *metrics.Metrics) *Crawler {
	c.metrics = m
	return c
}

// pageResult is the outcome of one worker job.
type pageResult struct {
	entry    Entry
	fetched  *core.FetchResult
	record   *core.PageRecord
	links    []string
	fetchErr error
	procErr  error
}

// Run crawls from startURLs until the frontier is empty, MaxPages is reached
// or ctx is cancelled. Per-page failures are logged and counted; only
// cancellation is returned as an error.
func (c *Crawler) Run(ctx context.Context, startURLs []string) (Stats, error) {
	var stats Stats
	queue := NewQueue()

	for _, u := range startURLs {
		queue.Add(NormalizeURL(u), 0)
	}
	if c.opts.UseSitemap {
		c.seedFromSitemaps(ctx, queue, startURLs)
	}

	attempts := 0
	for queue.HasNext() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		limit := 0
		if c.opts.MaxPages > 0 {
			limit = c.opts.MaxPages - attempts
			if limit <= 0 {
				c.log.WithFields(log.Fields{
					"max_pages": c.opts.MaxPages,
					"pending":   queue.Pending(),
				}).Info("page limit reached")
				break
			}
		}

		level := queue.NextLevel(limit)
		attempts += len(level)
		c.log.WithFields(log.Fields{
			"depth": level[0].Depth,
			"pages": len(level),
		}).Debug("crawling level")

		for _, r := range c.runLevel(ctx, level) {
			c.handle(ctx, r, queue, &stats)
		}
	}

	c.log.WithField("visited", queue.Visited()).Debug("crawl frontier closed")
	return stats, ctx.Err()
}

func (c *Crawler) seedFromSitemaps(ctx context.Context, queue *Queue, startURLs []string) {
	for _, start := range startURLs {
		urls, err := DiscoverSitemap(ctx, c.fetcher, start)
		if err != nil {
			c.log.WithError(err).WithField("url", start).Warn("sitemap unavailable")
			continue
		}
		added := 0
		for _, u := range urls {
			if c.rules.Allow(u) && queue.Add(u, 0) {
				added++
			}
		}
		c.log.WithFields(log.Fields{"url": start, "added": added}).Info("seeded from sitemap")
	}
}

// runLevel fetches and processes one level with a bounded worker pool and
// returns the results in frontier order.
func (c *Crawler) runLevel(ctx context.Context, level []Entry) []pageResult {
	results := make([]pageResult, len(level))
	jobs := make(chan int, len(level))

	var wg sync.WaitGroup
	workers := min(c.opts.Concurrency, len(level))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = c.visit(ctx, level[i])
			}
		}()
	}

	for i := range level {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// visit fetches one page, extracts its links and runs the processor.
func (c *Crawler) visit(ctx context.Context, e Entry) pageResult {
	r := pageResult{entry: e}

	res, err := c.fetcher.Fetch(ctx, e.URL)
	if err != nil {
		r.fetchErr = err
		return r
	}
	r.fetched = res

	if c.opts.FollowLinks && e.Depth < c.opts.MaxDepth {
		links, err := ExtractLinks(res.HTML, res.URL)
		if err != nil {
			c.log.WithError(err).WithField("url", res.URL).Debug("link extraction failed")
		}
		r.links = links
	}

	r.record, r.procErr = c.processor.Process(ctx, res)
	return r
}

// handle records the outcome of one page, pushes its record and enqueues its
// links. It runs on the crawl goroutine only.
func (c *Crawler) handle(ctx context.Context, r pageResult, queue *Queue, stats *Stats) {
	logger := c.log.WithFields(log.Fields{"url": r.entry.URL, "depth": r.entry.Depth})

	if r.fetchErr != nil {
		stats.Failed++
		c.metrics.Failed(metrics.StageFetch)
		logger.WithError(r.fetchErr).Error("fetch failed")
		return
	}
	stats.Fetched++
	c.metrics.Fetched()

	if r.fetched.URL != "" {
		queue.MarkSeen(NormalizeURL(r.fetched.URL))
	}
	c.enqueue(r, queue)

	switch {
	case errors.Is(r.procErr, core.ErrNoArticle):
		stats.Skipped++
		c.metrics.Skipped()
		logger.Warn("no article content, skipping page")
		return
	case r.procErr != nil:
		stats.Failed++
		c.metrics.Failed(metrics.StageProcess)
		logger.WithError(r.procErr).Error("processing failed")
		return
	}

	if err := c.sink.Push(ctx, r.record); err != nil {
		stats.Failed++
		c.metrics.Failed(metrics.StageSink)
		logger.WithError(err).Error("sink push failed")
		return
	}

	stats.Processed++
	stats.Chunks += len(r.record.Chunks)
	c.metrics.Processed(r.record)
	logger.WithField("chunks", len(r.record.Chunks)).Info("page processed")
}

func (c *Crawler) enqueue(r pageResult, queue *Queue) {
	next := r.entry.Depth + 1
	if !c.opts.FollowLinks || next > c.opts.MaxDepth {
		return
	}
	for _, link := range r.links {
		if c.rules.Allow(link) {
			queue.Add(NormalizeURL(link), next)
		}
	}
}
