package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/copilot/internal/knowledge"
)

func init() {
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <manual-file>",
	Short: "Build the manual index from an owner's manual export",
	Long:  "Reads a manual export (HTML or plain text), splits it into overlapping chunks, and replaces the manual index with the embedded chunks.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		text, err := knowledge.ReadManualFile(args[0])
		if err != nil {
			return err
		}
		chunks := knowledge.ChunkText(text, cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
		if len(chunks) == 0 {
			return fmt.Errorf("manual file %s produced no chunks", args[0])
		}

		store, err := openKnowledge(cfg)
		if err != nil {
			return fmt.Errorf("open knowledge store: %w", err)
		}
		if err := store.ResetManual(); err != nil {
			return err
		}
		if err := store.AddManualChunks(context.Background(), chunks); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Indexed %d chunks from %s.\n", store.ManualSize(), args[0])
		return nil
	},
}
