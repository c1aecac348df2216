// Package scheduler drives cron-based quiet hours: monitoring pauses on one
// schedule and resumes on another, without touching the persisted config.
package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/rbright/nudge/internal/config"
)

// Scheduler owns the cron runner for quiet-hours transitions.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates an idle scheduler.
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{cron: cron.New(), logger: logger}
}

// Configure registers the pause/resume jobs. Invalid cron expressions are a
// configuration error reported to the caller; nothing is registered when the
// schedule is disabled.
func (s *Scheduler) Configure(cfg config.ScheduleConfig, pause, resume func()) error {
	if !cfg.Enabled {
		return nil
	}

	if _, err := s.cron.AddFunc(cfg.PauseSpec, func() {
		s.log("quiet hours: pausing monitoring")
		pause()
	}); err != nil {
		return fmt.Errorf("schedule pause spec %q: %w", cfg.PauseSpec, err)
	}

	if _, err := s.cron.AddFunc(cfg.ResumeSpec, func() {
		s.log("quiet hours: resuming monitoring")
		resume()
	}); err != nil {
		return fmt.Errorf("schedule resume spec %q: %w", cfg.ResumeSpec, err)
	}

	return nil
}

// Start begins the cron ticker.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron ticker.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) log(message string) {
	if s.logger != nil {
		s.logger.Info(message)
	}
}
