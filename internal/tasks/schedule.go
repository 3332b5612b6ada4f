package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sheetstats/internal/shared"
	"github.com/robfig/cron/v3"
)

// cronLogger adapts a [log.Logger] to [cron.Logger].
type cronLogger struct {
	logger *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.logger.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.logger.Error(msg, append(keysAndValues, "error", err)...)
}

// Scheduler periodically starts a job on every target of a [Manager], one target after another.
type Scheduler struct {
	cron    *cron.Cron
	manager *Manager
	logger  *log.Logger
}

// NewScheduler parses spec (standard five-field cron syntax) and binds it to manager.
//
// Ticks that fire while a previous tick is still working through its targets are skipped.
func NewScheduler(spec string, manager *Manager, logger *log.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		manager: manager,
		logger:  logger,
	}

	if _, err := s.cron.AddFunc(spec, s.Tick); err != nil {
		return nil, fmt.Errorf("%w: invalid schedule %q: %v", shared.ErrInvalidConfig, spec, err)
	}

	return s, nil
}

// Tick runs one job per target in order.
//
// It gives up when a job started elsewhere is already in flight.
func (s *Scheduler) Tick() {
	for _, target := range s.manager.Targets() {
		if _, err := s.manager.Start(target); err != nil {
			if errors.Is(err, shared.ErrJobRunning) {
				s.logger.Info("scheduled run skipped, job in flight", "target", target)
				return
			}
			s.logger.Error("scheduled run rejected", "target", target, "error", err)
			continue
		}
		if err := s.manager.Wait(); err != nil {
			s.logger.Warn("scheduled run failed", "target", target, "error", err)
		}
	}
}

// Run starts the scheduler and blocks until ctx is done, then waits for a running tick to return.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info("scheduler started", "entries", len(s.cron.Entries()))

	<-ctx.Done()
	<-s.cron.Stop().Done()

	s.logger.Info("scheduler stopped")
	return nil
}
