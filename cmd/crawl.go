package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/pagechunk/config"
	"github.com/gaurav-prasanna/pagechunk/crawl"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [url...]",
	Short: "Crawl from start URLs and emit one chunked record per page",
	Long: `Crawl walks a site breadth-first from the start URLs, extracts each page's
article, converts it, chunks it and pushes the record to every configured sink.
Start URLs given as arguments replace startUrls from the config file.

Examples:
  pagechunk crawl https://example.com/docs
  pagechunk crawl https://example.com --max-depth 1 --sink files --sink sqlite
  pagechunk crawl https://example.com --output-format text --chunk-size 500
  pagechunk crawl --config pagechunk.yaml --metrics-addr :9090`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	d := config.Defaults()
	fs := crawlCmd.Flags()
	fs.Int("max-pages", d.MaxPages, "Maximum fetch attempts (0 for unlimited)")
	fs.Int("max-depth", d.MaxDepth, "Maximum link depth from a start URL")
	fs.Bool("follow-links", d.FollowLinks, "Follow same-host links")
	fs.StringSlice("url-pattern", nil, "Glob a discovered URL must match (repeatable)")
	fs.Bool("same-site", d.SameSite, "Follow links across subdomains of the registrable domain")
	fs.Bool("use-sitemap", d.UseSitemap, "Seed the frontier from /sitemap.xml")
	fs.Int("concurrency", d.Concurrency, "Pages fetched in parallel")
	fs.StringSlice("sink", d.Sinks, "Record destination: dataset, files, pdf, sqlite, postgres, nats, stdout (repeatable)")
	fs.String("output-dir", d.OutputDir, "Directory for dataset, files and pdf output")
	fs.String("sqlite-path", d.SQLitePath, "SQLite database file (default <output-dir>/pagechunk.db)")
	fs.String("postgres-dsn", d.PostgresDSN, "PostgreSQL connection string")
	fs.String("nats-url", d.NATSURL, "NATS server URL")
	fs.String("nats-subject", d.NATSSubject, "NATS subject for records")
	fs.String("metrics-addr", d.MetricsAddr, "Serve Prometheus metrics on this address during the crawl")
	addProcessingFlags(fs)
	addFetchFlags(fs)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		for _, u := range args {
			if err := config.ValidateURL(u); err != nil {
				return err
			}
		}
		cfg.StartURLs = args
	}
	if len(cfg.StartURLs) == 0 {
		return errors.New("at least one start URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := crawl.Open(ctx, cfg, logger, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("starting crawl: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.WithError(err).Error("closing sinks")
		}
	}()

	stats, err := rt.Run(ctx)
	if !cfg.HasSink(config.SinkStdout) {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d processed, %d skipped, %d failed, %d chunks\n",
			stats.Processed, stats.Skipped, stats.Failed, stats.Chunks)
	}
	if errors.Is(err, context.Canceled) {
		logger.Warn("crawl interrupted")
		return nil
	}
	return err
}
