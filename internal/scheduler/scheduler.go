// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/user/copilot/internal/delivery"
	"github.com/user/copilot/internal/state"
	"github.com/user/copilot/internal/types"
)

// BriefingSource generates the daily briefing text for one firing.
type BriefingSource interface {
	Generate(ctx context.Context) string
}

// Scheduler fires the daily briefing on a cron schedule and fans it out to
// every subscriber.
type Scheduler struct {
	schedule    string
	source      BriefingSource
	subscribers *state.SubscriberStore
	deliver     *delivery.Registry
	cron        *cron.Cron
}

// cronParser accepts both standard 5-field cron expressions and 6-field
// expressions with an optional seconds field.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// New creates a Scheduler that fires on schedule, generating a briefing per
// subscriber and delivering it through the registry.
func New(schedule string, source BriefingSource, subscribers *state.SubscriberStore, deliver *delivery.Registry) *Scheduler {
	return &Scheduler{
		schedule:    schedule,
		source:      source,
		subscribers: subscribers,
		deliver:     deliver,
		cron:        cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the briefing cron entry and starts the ticker.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		slog.Info("cron firing daily briefing", "schedule", s.schedule)
		s.FireNow(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid briefing schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	slog.Info("scheduled daily briefing", "schedule", s.schedule)
	return nil
}

// FireNow generates and delivers a briefing to every subscriber immediately.
// Each recipient is generated and delivered independently: one failure is
// logged and skipped, never aborting the fan-out.
func (s *Scheduler) FireNow(ctx context.Context) {
	subs, err := s.subscribers.List()
	if err != nil {
		slog.Error("briefing skipped, cannot list subscribers", "error", err)
		return
	}
	if len(subs) == 0 {
		slog.Info("briefing fired with no subscribers")
		return
	}

	for _, recipient := range subs {
		s.fireOne(ctx, recipient)
	}
}

func (s *Scheduler) fireOne(ctx context.Context, recipient types.RecipientID) {
	text := s.source.Generate(ctx)
	if text == "" {
		slog.Warn("empty briefing, nothing delivered", "recipient", string(recipient))
		return
	}
	if err := s.deliver.Deliver(recipient, text); err != nil {
		slog.Error("briefing delivery failed", "recipient", string(recipient), "error", err)
		return
	}
	slog.Info("briefing delivered", "recipient", string(recipient))
}

// Stop stops the cron ticker.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
