package assemble

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/pagechunk/core"
	"github.com/gaurav-prasanna/pagechunk/core/metadata"
)

// Processor turns one fetch result into zero or one record. It keeps no
// state between pages and is safe for concurrent use.
type Processor struct {
	extractor  core.Extractor
	normalizer core.Normalizer
	opts       Options
	now        func() time.Time
}

// NewProcessor wires the extraction and conversion stages to the assembler.
func NewProcessor(extractor core.Extractor, normalizer core.Normalizer, opts Options) *Processor {
	return &Processor{
		extractor:  extractor,
		normalizer: normalizer,
		opts:       opts,
		now:        time.Now,
	}
}

// WithClock replaces the crawl timestamp source.
func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.now = now
	return p
}

// Process scrapes metadata, extracts the article, converts it and assembles
// the record. Extraction misses are reported as core.ErrNoArticle.
func (p *Processor) Process(ctx context.Context, res *core.FetchResult) (*core.PageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.HTML))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	meta := metadata.Scrape(doc)

	article, err := p.extractor.Extract(res.HTML, res.URL)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	var markdown string
	if p.opts.OutputFormat != core.FormatText {
		markdown, err = p.normalizer.Normalize(article.Content)
		if err != nil {
			return nil, fmt.Errorf("normalize: %w", err)
		}
	}

	return Assemble(Input{
		URL:       res.URL,
		Article:   article,
		Markdown:  markdown,
		Meta:      meta,
		CrawledAt: p.now(),
	}, p.opts)
}
