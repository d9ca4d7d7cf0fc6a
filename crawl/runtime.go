package crawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/gaurav-prasanna/pagechunk/config"
	"github.com/gaurav-prasanna/pagechunk/core"
	"github.com/gaurav-prasanna/pagechunk/core/assemble"
	"github.com/gaurav-prasanna/pagechunk/core/extract"
	"github.com/gaurav-prasanna/pagechunk/core/fetch"
	"github.com/gaurav-prasanna/pagechunk/core/normalize"
	"github.com/gaurav-prasanna/pagechunk/core/output"
	"github.com/gaurav-prasanna/pagechunk/core/render"
	"github.com/gaurav-prasanna/pagechunk/metrics"
	"github.com/gaurav-prasanna/pagechunk/storage"
)

// Runtime owns everything a crawl run opens: sinks, the metrics endpoint and
// the crawler wired to them. Close releases all of it.
type Runtime struct {
	RunID   string
	Crawler *Crawler
	Metrics *metrics.Metrics

	cfg        *config.Config
	log        log.FieldLogger
	sinks      output.Multi
	metricsSrv *http.Server
}

// Open sets up a run from cfg. stdout receives the stdout sink and progress
// lines for written files. On error everything opened so far is closed.
func Open(ctx context.Context, cfg *config.Config, logger log.FieldLogger, stdout io.Writer) (rt *Runtime, err error) {
	runID := uuid.NewString()
	rt = &Runtime{
		RunID:   runID,
		Metrics: metrics.New(),
		cfg:     cfg,
		log:     logger.WithField("run_id", runID),
	}

	defer func() {
		if err != nil {
			_ = rt.Close()
			rt = nil
		}
	}()

	rules, err := NewRules(cfg.StartURLs, cfg.SameSite, cfg.URLPatterns)
	if err != nil {
		return rt, err
	}

	if err := rt.openSinks(ctx, stdout); err != nil {
		return rt, err
	}

	if cfg.MetricsAddr != "" {
		rt.serveMetrics(cfg.MetricsAddr)
	}

	rt.Crawler = New(NewFetcher(cfg), NewProcessor(cfg), rt.sinks, rules, Options{
		MaxPages:    cfg.MaxPages,
		MaxDepth:    cfg.MaxDepth,
		Concurrency: cfg.Concurrency,
		FollowLinks: cfg.FollowLinks,
		UseSitemap:  cfg.UseSitemap,
	}).WithLogger(rt.log).WithMetrics(rt.Metrics)

	return rt, nil
}

// Run crawls the configured start URLs.
func (rt *Runtime) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	rt.log.WithFields(log.Fields{
		"start_urls": rt.cfg.StartURLs,
		"sinks":      rt.cfg.Sinks,
	}).Info("crawl started")

	stats, err := rt.Crawler.Run(ctx, rt.cfg.StartURLs)

	rt.log.WithFields(log.Fields{
		"fetched":   stats.Fetched,
		"processed": stats.Processed,
		"skipped":   stats.Skipped,
		"failed":    stats.Failed,
		"chunks":    stats.Chunks,
		"duration":  time.Since(start).Round(time.Millisecond).String(),
	}).Info("crawl finished")
	return stats, err
}

// Close shuts down the metrics endpoint and closes every sink.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.metricsSrv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stopping metrics server: %w", err))
		}
	}
	if err := rt.sinks.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (rt *Runtime) openSinks(ctx context.Context, stdout io.Writer) error {
	cfg := rt.cfg
	progress := func(path string) { fmt.Fprintf(stdout, "✓ Written: %s\n", path) }
	if cfg.HasSink(config.SinkStdout) {
		progress = nil
	}

	for _, name := range cfg.Sinks {
		var (
			sink core.Sink
			err  error
		)
		switch name {
		case config.SinkDataset:
			sink, err = output.OpenDataset(cfg.OutputDir)
		case config.SinkStdout:
			sink = output.NewJSONLSink(stdout)
		case config.SinkFiles:
			sink, err = openFileSink(filepath.Join(cfg.OutputDir, "pages"), cfg.OutputFormat, progress)
		case config.SinkPDF:
			sink, err = openFileSink(filepath.Join(cfg.OutputDir, "pdf"), render.FormatPDF, progress)
		case config.SinkSQLite:
			path := cfg.SQLitePath
			if path == "" {
				path = filepath.Join(cfg.OutputDir, "pagechunk.db")
			}
			sink, err = storage.Open(ctx, storage.DriverSQLite, path, rt.RunID)
		case config.SinkPostgres:
			sink, err = storage.Open(ctx, storage.DriverPostgres, cfg.PostgresDSN, rt.RunID)
		case config.SinkNATS:
			sink, err = output.DialNATS(cfg.NATSURL, cfg.NATSSubject)
		default:
			err = fmt.Errorf("unknown sink %q", name)
		}
		if err != nil {
			return fmt.Errorf("opening %s sink: %w", name, err)
		}
		rt.sinks = append(rt.sinks, sink)
		rt.log.WithField("sink", name).Debug("sink opened")
	}
	return nil
}

func openFileSink(dir, format string, onWrite func(string)) (core.Sink, error) {
	renderer, err := render.ForFormat(format)
	if err != nil {
		return nil, err
	}

	s, err := output.NewFileSink(dir, renderer, output.LayoutMirror)
	if err != nil {
		return nil, err
	}
	s.OnWrite = onWrite
	return s, nil
}

func (rt *Runtime) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.Metrics.Handler())
	rt.metricsSrv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		rt.log.WithField("addr", addr).Info("serving metrics")
		if err := rt.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.log.WithError(err).Error("metrics server stopped")
		}
	}()
}

// NewFetcher builds the HTTP fetcher described by cfg.
func NewFetcher(cfg *config.Config) *fetch.HTTPFetcher {
	return fetch.New(fetch.Options{
		Timeout:        cfg.FetchTimeout,
		UserAgent:      cfg.UserAgent,
		MaxContentSize: cfg.MaxContentSize,
	})
}

// NewProcessor builds the page processor described by cfg.
func NewProcessor(cfg *config.Config) *assemble.Processor {
	return assemble.NewProcessor(extract.New(), normalize.New(cfg.RemoveNavigation), assemble.Options{
		OutputFormat:    cfg.OutputFormat,
		ChunkSize:       cfg.ChunkSize,
		ChunkOverlap:    cfg.ChunkOverlap,
		IncludeMetadata: cfg.IncludeMetadata,
	})
}
