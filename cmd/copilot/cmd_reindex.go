package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reindexCmd)
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the event index from the service record",
	Long:  "Drops the event index and re-embeds every history entry from the service record. Use this when the index has drifted from the record, e.g. after an indexing failure.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		ctx := context.Background()
		rec, err := openRecordStore(cfg).Snapshot(ctx)
		if err != nil {
			return err
		}

		store, err := openKnowledge(cfg)
		if err != nil {
			return fmt.Errorf("open knowledge store: %w", err)
		}
		if err := store.RebuildEvents(ctx, rec); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Reindexed %d events.\n", store.EventsSize())
		return nil
	},
}
