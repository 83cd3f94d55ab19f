package scheduler

import (
	"context"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/logging"
	"medbot/internal/core/services"
	sendduereminders "medbot/internal/core/services/send_due_reminders"
	"time"
)

type TickService = services.Service[sendduereminders.Input, sendduereminders.Result]

// Scheduler runs a tick right away and then once per interval until ctx is canceled.
// A tick that outlasts the interval delays the next one; ticks never overlap.
type Scheduler struct {
	log      logging.Logger
	tick     TickService
	interval time.Duration
}

func New(log logging.Logger, tick TickService, interval time.Duration) *Scheduler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if tick == nil {
		panic(e.NewNilArgumentError("tick"))
	}
	if interval <= 0 {
		panic(e.NewInvalidStateErrorf("scheduler interval must be positive, got %s", interval))
	}
	return &Scheduler{log: log, tick: tick, interval: interval}
}

func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info(ctx, "Starting reminder scheduler.", logging.Entry("interval", s.interval.String()))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runTick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info(context.Background(), "Stopping reminder scheduler.")
			return
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	result, err := s.tick.Run(ctx, sendduereminders.Input{})
	if err != nil {
		s.log.Error(ctx, "Tick returned an error.", logging.Entry("err", err))
		return
	}
	if result.Failed > 0 {
		s.log.Warning(
			ctx,
			"Some reminders failed this tick and will be retried.",
			logging.Entry("tickID", result.TickID),
			logging.Entry("failed", result.Failed),
		)
	}
}
