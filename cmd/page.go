package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/pagechunk/config"
	"github.com/gaurav-prasanna/pagechunk/core"
	"github.com/gaurav-prasanna/pagechunk/core/output"
	"github.com/gaurav-prasanna/pagechunk/core/render"
	"github.com/gaurav-prasanna/pagechunk/crawl"
)

var (
	flagPageOut string
	flagPagePDF bool
)

var pageCmd = &cobra.Command{
	Use:   "page <url>",
	Short: "Process a single URL without crawling",
	Long: `Page fetches one URL, extracts its article and prints the chunked record
as JSON. With --out the record is rendered to a file instead.

Examples:
  pagechunk page https://example.com/post
  pagechunk page https://example.com/post --output-format text --chunk-size 0
  pagechunk page https://example.com/post --out ./out --pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runPage,
}

func init() {
	rootCmd.AddCommand(pageCmd)

	fs := pageCmd.Flags()
	fs.StringVar(&flagPageOut, "out", "", "Write the rendered record into this directory instead of printing it")
	fs.BoolVar(&flagPagePDF, "pdf", false, "Render a PDF (requires --out)")
	addProcessingFlags(fs)
	addFetchFlags(fs)
}

func runPage(cmd *cobra.Command, args []string) error {
	rawURL := args[0]
	if err := config.ValidateURL(rawURL); err != nil {
		return err
	}
	if flagPagePDF && flagPageOut == "" {
		return errors.New("--pdf requires --out")
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	res, err := crawl.NewFetcher(cfg).Fetch(ctx, rawURL)
	if err != nil {
		return err
	}

	rec, err := crawl.NewProcessor(cfg).Process(ctx, res)
	if errors.Is(err, core.ErrNoArticle) {
		return fmt.Errorf("no article content found at %s", rawURL)
	}
	if err != nil {
		return err
	}
	logger.WithField("chunks", len(rec.Chunks)).Debug("page processed")

	if flagPageOut == "" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	format := cfg.OutputFormat
	if flagPagePDF {
		format = render.FormatPDF
	}
	renderer, err := render.ForFormat(format)
	if err != nil {
		return err
	}

	sink, err := output.NewFileSink(flagPageOut, renderer, output.LayoutFlat)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	sink.OnWrite = func(path string) { fmt.Fprintf(cmd.OutOrStdout(), "✓ Written: %s\n", path) }
	return sink.Push(ctx, rec)
}
