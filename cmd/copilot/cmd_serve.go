package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/copilot/internal/agent"
	"github.com/user/copilot/internal/agent/skills"
	"github.com/user/copilot/internal/delivery"
	"github.com/user/copilot/internal/gateway"
	"github.com/user/copilot/internal/grounding"
	"github.com/user/copilot/internal/scheduler"
	"github.com/user/copilot/internal/state"
	"github.com/user/copilot/internal/telegram"
	"github.com/user/copilot/internal/webhook"
	"github.com/user/copilot/pkg/llm"
	"github.com/user/copilot/pkg/llm/openai"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the copilot daemon",
	RunE:  runServe,
}

func writePIDFile(dataDir string) (string, error) {
	pidPath := filepath.Join(dataDir, "copilot.pid")
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	pidPath, err := writePIDFile(cfg.DataDir)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	// Stores
	recordStore := openRecordStore(cfg)
	knowledgeStore, err := openKnowledge(cfg)
	if err != nil {
		return fmt.Errorf("open knowledge store: %w", err)
	}
	history := state.NewHistoryStore(cfg.HistoryLimit)
	subscribers := state.NewSubscriberStore(filepath.Join(cfg.DataDir, "subscribers.json"))

	// LLM provider
	provider := openai.New(&llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})

	// Context builder
	builder, err := grounding.New(knowledgeStore, cfg.LLM.Model, grounding.Options{
		ManualResults:   cfg.Retrieval.ManualResults,
		EventResults:    cfg.Retrieval.EventResults,
		ExcerptTokens:   cfg.Retrieval.ExcerptTokens,
		FallbackMileage: cfg.Vehicle.FallbackMileage,
		OilIntervalKM:   cfg.Vehicle.OilIntervalKM,
	})
	if err != nil {
		return fmt.Errorf("create context builder: %w", err)
	}

	// Skill catalogue
	weatherSkill := skills.NewWeather(cfg.Weather.City, cfg.Weather.Endpoints)
	briefingSkill := skills.NewBriefing(weatherSkill, recordStore, cfg.Briefing.City,
		cfg.Vehicle.FallbackMileage, cfg.Vehicle.OilIntervalKM)

	registry := agent.NewRegistry()
	catalogue := []agent.Skill{
		weatherSkill,
		skills.NewPartInfo(),
		skills.NewPartNumbers(),
		skills.NewLogEvent(recordStore, knowledgeStore, cfg.Vehicle.FallbackMileage),
		skills.NewUndoEvent(recordStore, knowledgeStore),
		skills.NewConfirmOilChange(recordStore, cfg.Vehicle.FallbackMileage, cfg.Vehicle.OilIntervalKM),
		skills.NewReport(recordStore, cfg.Vehicle.Name),
		briefingSkill,
		skills.NewSOS(),
	}
	for _, s := range catalogue {
		if err := registry.Register(s); err != nil {
			return fmt.Errorf("register skill: %w", err)
		}
	}

	// Conversation loop
	loop := agent.NewLoop(provider, registry, builder, history, recordStore, cfg.Vehicle.Name)

	// Gateway
	gw := gateway.New(int64(cfg.MaxConcurrent))
	gw.Queue.SetProcessor(func(run *gateway.Run) error {
		response, err := loop.HandleTurn(run.Ctx, run.UserID, run.Message.Text)
		if err != nil {
			return err
		}
		if run.OnComplete != nil {
			run.OnComplete(response)
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw.Start(ctx)
	defer gw.Stop()

	slog.Info("copilot started",
		"data_dir", cfg.DataDir,
		"log_level", cfg.LogLevel,
		"max_concurrent", cfg.MaxConcurrent,
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.Model,
		"manual_chunks", knowledgeStore.ManualSize(),
		"event_docs", knowledgeStore.EventsSize(),
		"pid_file", pidPath,
	)

	// Delivery registry
	deliveryReg := delivery.NewRegistry()

	// Telegram adapter
	if cfg.Telegram.Token != "" {
		adapter, err := telegram.New(cfg.Telegram.Token, gw, subscribers, recordStore,
			cfg.Vehicle.Name, cfg.Vehicle.FallbackMileage, cfg.Vehicle.OilIntervalKM)
		if err != nil {
			return fmt.Errorf("create telegram adapter: %w", err)
		}
		go adapter.Start(ctx)
		slog.Info("telegram adapter started")

		deliveryReg.Register("telegram:", adapter.SendTo)
	} else {
		slog.Warn("telegram adapter disabled (no token)")
	}

	// Scheduler
	sched := scheduler.New(cfg.Briefing.Schedule, briefingSkill, subscribers, deliveryReg)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()
	slog.Info("scheduler started", "schedule", cfg.Briefing.Schedule)

	// Admin HTTP server
	if cfg.HTTP.Enabled {
		adminSrv := webhook.NewServer(recordStore, sched.FireNow)
		httpServer := &http.Server{
			Addr:    cfg.HTTP.Listen,
			Handler: adminSrv,
		}
		go func() {
			slog.Info("admin server started", "listen", cfg.HTTP.Listen)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("admin server error", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			httpServer.Close()
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigChan
		if sig == syscall.SIGHUP {
			slog.Info("received SIGHUP, restarting")
			execPath, err := os.Executable()
			if err != nil {
				slog.Error("failed to get executable path", "error", err)
				continue
			}
			os.Remove(pidPath)
			if err := syscall.Exec(execPath, os.Args, os.Environ()); err != nil {
				slog.Error("failed to re-exec", "error", err)
				if _, writeErr := writePIDFile(cfg.DataDir); writeErr != nil {
					slog.Error("failed to re-write PID file", "error", writeErr)
				}
				continue
			}
		}
		// SIGINT or SIGTERM
		slog.Info("shutting down", "signal", sig)
		return nil
	}
}
