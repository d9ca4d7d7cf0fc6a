// Package cmd implements the CLI commands for PageChunk using Cobra.
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gaurav-prasanna/pagechunk/config"
	"github.com/gaurav-prasanna/pagechunk/logging"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "pagechunk",
	Short: "PageChunk turns web pages into overlapping, embedding-ready chunks",
	Long: `PageChunk crawls web pages, isolates each page's article content, converts it
to Markdown or plain text, and emits one record per page with an ordered,
overlapping chunk sequence ready for embedding and retrieval.

Usage:
  pagechunk crawl <url>... [flags]
  pagechunk page <url> [flags]
  pagechunk chunk [file] [flags]
  pagechunk serve [flags]
  pagechunk config init [path]`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text or json)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":         "logLevel",
	"log-format":        "logFormat",
	"max-pages":         "maxPages",
	"max-depth":         "maxDepth",
	"output-format":     "outputFormat",
	"chunk-size":        "chunkSize",
	"chunk-overlap":     "chunkOverlap",
	"include-metadata":  "includeMetadata",
	"remove-navigation": "removeNavigation",
	"follow-links":      "followLinks",
	"url-pattern":       "urlPatterns",
	"same-site":         "sameSite",
	"use-sitemap":       "useSitemap",
	"concurrency":       "concurrency",
	"timeout":           "fetchTimeout",
	"max-content-size":  "maxContentSize",
	"user-agent":        "userAgent",
	"sink":              "sinks",
	"output-dir":        "outputDir",
	"sqlite-path":       "sqlitePath",
	"postgres-dsn":      "postgresDSN",
	"nats-url":          "natsURL",
	"nats-subject":      "natsSubject",
	"metrics-addr":      "metricsAddr",
	"listen":            "listenAddr",
}

// loadConfig layers defaults, the config file, environment and the flags
// defined on cmd, then validates the result and builds the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	v := viper.New()

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(key, f)
	})
	if bindErr != nil {
		return nil, nil, fmt.Errorf("binding flags: %w", bindErr)
	}

	cfg, err := config.Load(v, flagConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration:\n%w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func addProcessingFlags(fs *pflag.FlagSet) {
	d := config.Defaults()
	fs.String("output-format", d.OutputFormat, "Stored representation: markdown, text or json")
	fs.Int("chunk-size", d.ChunkSize, "Target characters per chunk (0 disables chunking)")
	fs.Int("chunk-overlap", d.ChunkOverlap, "Overlap budget in characters")
	fs.Bool("include-metadata", d.IncludeMetadata, "Attach page metadata to each record")
	fs.Bool("remove-navigation", d.RemoveNavigation, "Drop nav, header and footer before conversion")
}

func addFetchFlags(fs *pflag.FlagSet) {
	d := config.Defaults()
	fs.Duration("timeout", d.FetchTimeout, "Per-request timeout")
	fs.Int64("max-content-size", d.MaxContentSize, "Largest accepted response body in bytes")
	fs.String("user-agent", d.UserAgent, "User-Agent header")
}
