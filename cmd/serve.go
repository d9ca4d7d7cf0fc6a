package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/pagechunk/api"
	"github.com/gaurav-prasanna/pagechunk/config"
	"github.com/gaurav-prasanna/pagechunk/crawl"
	"github.com/gaurav-prasanna/pagechunk/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chunking API over HTTP",
	Long: `Serve exposes POST /v1/chunk and POST /v1/page, plus /health and /metrics.
Request defaults come from the loaded configuration.

Examples:
  pagechunk serve --listen :8080
  PAGECHUNK_CHUNKSIZE=500 pagechunk serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	fs := serveCmd.Flags()
	fs.String("listen", config.Defaults().ListenAddr, "Address to listen on")
	addProcessingFlags(fs)
	addFetchFlags(fs)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	srv := api.NewServer(crawl.NewFetcher(cfg), crawl.NewProcessor(cfg), metrics.New(), logger, cfg)
	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.FetchTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("shutdown failed")
		}
	}()

	logger.WithField("addr", cfg.ListenAddr).Info("starting pagechunk server")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
