// Package worker provides the scheduled-trigger wiring and the
// operational HTTP server (health probes and metrics).
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler fires the daily digest trigger on a cron schedule in a
// configured timezone.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
}

// NewScheduler creates a Scheduler for the given cron expression and
// IANA timezone. An unknown timezone falls back to UTC with a warning
// so a bad deploy does not stop the bot.
func NewScheduler(schedule, timezone string) *Scheduler {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		slog.Warn("unknown timezone, scheduling in UTC",
			slog.String("timezone", timezone),
			slog.Any("error", err))
		location = time.UTC
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		schedule: schedule,
	}
}

// Start registers the trigger and starts the cron loop. The job gets a
// context derived from ctx so shutdown cancels an in-flight run.
func (s *Scheduler) Start(ctx context.Context, job func(context.Context)) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { job(ctx) }); err != nil {
		return fmt.Errorf("register cron schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	slog.Info("scheduler started", slog.String("schedule", s.schedule))
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	slog.Info("scheduler stopped")
}
