package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/copilot/internal/config"
	"github.com/user/copilot/internal/knowledge"
	"github.com/user/copilot/internal/record"
	"github.com/user/copilot/internal/types"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "copilot",
	Short: "Conversational co-pilot for your car",
	Long:  "copilot is a self-hosted assistant that answers questions about your car, keeps its service record, and sends a daily driver briefing over Telegram.",
}

func init() {
	defaultPath := filepath.Join(os.Getenv("HOME"), ".copilot", "config.json")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultPath, "path to config file")
}

func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// seedOilChange builds the initial oil baseline from config. A bad seed date
// falls back to the zero time rather than refusing to start.
func seedOilChange(cfg *config.Config) types.OilChange {
	date, err := time.Parse("2006-01-02", cfg.Vehicle.SeedDate)
	if err != nil {
		slog.Warn("invalid seed date, using zero time", "seed_date", cfg.Vehicle.SeedDate, "error", err)
	}
	return types.OilChange{Mileage: cfg.Vehicle.SeedMileage, Date: date}
}

func openRecordStore(cfg *config.Config) *record.Store {
	return record.NewStore(filepath.Join(cfg.DataDir, "service_record.json"), seedOilChange(cfg))
}

func openKnowledge(cfg *config.Config) (*knowledge.Store, error) {
	embed := knowledge.NewEmbeddingFunc(cfg.Embedding.BaseURL, cfg.LLM.APIKey, cfg.Embedding.Model)
	return knowledge.Open(cfg.DataDir, embed)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
