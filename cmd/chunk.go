package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/pagechunk/config"
	"github.com/gaurav-prasanna/pagechunk/core/chunk"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [file]",
	Short: "Chunk plain text from a file or stdin",
	Long: `Chunk splits text into overlapping, sentence-aligned chunks and prints them
as a JSON array. Without a file argument the text is read from stdin.

Examples:
  pagechunk chunk article.txt
  cat article.md | pagechunk chunk --chunk-size 500 --chunk-overlap 100`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)

	d := config.Defaults()
	chunkCmd.Flags().Int("chunk-size", d.ChunkSize, "Target characters per chunk")
	chunkCmd.Flags().Int("chunk-overlap", d.ChunkOverlap, "Overlap budget in characters")
}

func runChunk(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.ChunkSize <= 0 {
		return fmt.Errorf("chunk-size must be positive (got %d)", cfg.ChunkSize)
	}

	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	text, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	chunks := chunk.New(cfg.ChunkSize, cfg.ChunkOverlap).Chunk(string(text))
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(chunks)
}
