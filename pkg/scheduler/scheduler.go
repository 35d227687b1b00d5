package scheduler

import (
	"context"
	"time"

	"github.com/x1thexxx-lgtm/goserials/pkg/config"
	"github.com/x1thexxx-lgtm/goserials/pkg/logging"
)

// TaskRunner defines the work to repeat, one full collection per call.
type TaskRunner interface {
	Run(ctx context.Context) error
}

// Scheduler reruns the collection on a fixed tick in watch mode.
type Scheduler struct {
	cfg    config.SchedulerConfig
	runner TaskRunner
	log    *logging.Logger
}

// New creates scheduler.
func New(cfg config.SchedulerConfig, runner TaskRunner, log *logging.Logger) *Scheduler {
	return &Scheduler{cfg: cfg, runner: runner, log: log}
}

// Start runs the task immediately, then on every tick until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	interval, err := time.ParseDuration(s.cfg.Tick)
	if err != nil {
		return err
	}
	if err := s.runner.Run(ctx); err != nil {
		s.log.Errorf("collection run failed: %v", err)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.runner.Run(ctx); err != nil {
				s.log.Errorf("collection run failed: %v", err)
			}
		}
	}
}
