package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/copilot/internal/record"
)

var logMileage int

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.AddCommand(recordShowCmd, recordLogCmd, recordUndoCmd)
	recordLogCmd.Flags().IntVar(&logMileage, "mileage", 0, "odometer reading in km (default: configured fallback)")
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Inspect and edit the service record",
}

var recordShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the service report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		rec, err := openRecordStore(cfg).Snapshot(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, record.RenderReport(cfg.Vehicle.Name, rec))
		return nil
	},
}

var recordLogCmd = &cobra.Command{
	Use:   "log <work>",
	Short: "Log a maintenance event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		mileage := logMileage
		if mileage <= 0 {
			mileage = cfg.Vehicle.FallbackMileage
		}

		ctx := context.Background()
		ev, err := openRecordStore(cfg).AppendEvent(ctx, args[0], mileage)
		if err != nil {
			return err
		}

		// Index best-effort: the record write above is the authoritative one.
		if store, kerr := openKnowledge(cfg); kerr != nil {
			slog.Warn("event logged but not indexed", "error", kerr)
		} else if kerr := store.AddEvent(ctx, ev.ID, ev.Document()); kerr != nil {
			slog.Warn("event logged but not indexed", "event_id", string(ev.ID), "error", kerr)
		}

		fmt.Fprintf(os.Stdout, "Logged: %s at %d km on %s.\n", ev.Work, ev.Mileage, ev.Date.Format("2006-01-02"))
		return nil
	},
}

var recordUndoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Remove the most recently logged event",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		ctx := context.Background()
		ev, err := openRecordStore(cfg).PopLastEvent(ctx)
		if err != nil {
			return err
		}
		if ev == nil {
			fmt.Fprintln(os.Stdout, "Nothing to remove: the service history is empty.")
			return nil
		}

		if store, kerr := openKnowledge(cfg); kerr != nil {
			slog.Warn("event removed but index document remains", "error", kerr)
		} else if kerr := store.RemoveEvent(ctx, ev.ID); kerr != nil {
			slog.Warn("event removed but index document remains", "event_id", string(ev.ID), "error", kerr)
		}

		fmt.Fprintf(os.Stdout, "Removed the last event: %s (%d km, %s).\n",
			ev.Work, ev.Mileage, ev.Date.Format("2006-01-02"))
		return nil
	},
}
