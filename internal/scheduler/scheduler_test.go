package scheduler

import (
	"context"
	"errors"
	"medbot/internal/core/domain/logging"
	sendduereminders "medbot/internal/core/services/send_due_reminders"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubTick struct {
	lock    sync.Mutex
	calls   int
	running int
	overlap bool
	err     error
	delay   time.Duration
}

func (s *stubTick) Run(ctx context.Context, input sendduereminders.Input) (sendduereminders.Result, error) {
	s.lock.Lock()
	s.calls++
	s.running++
	if s.running > 1 {
		s.overlap = true
	}
	s.lock.Unlock()

	time.Sleep(s.delay)

	s.lock.Lock()
	s.running--
	s.lock.Unlock()
	return sendduereminders.Result{Failed: 1}, s.err
}

func (s *stubTick) Calls() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.calls
}

func runFor(s *Scheduler, d time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	s.Run(ctx)
}

func TestTicksImmediatelyAndPeriodically(t *testing.T) {
	// Setup ---
	tick := &stubTick{}
	log := logging.NewFakeLogger()

	// Exercise ---
	runFor(New(log, tick, 20*time.Millisecond), 110*time.Millisecond)

	// Verify ---
	assert := require.New(t)
	assert.GreaterOrEqual(tick.Calls(), 3)
	assert.NotEmpty(log.ByLevel(logging.WARNING))
}

func TestFirstTickDoesNotWaitForInterval(t *testing.T) {
	// Setup ---
	tick := &stubTick{}

	// Exercise ---
	runFor(New(logging.NewFakeLogger(), tick, time.Hour), 30*time.Millisecond)

	// Verify ---
	require.Equal(t, 1, tick.Calls())
}

func TestTickErrorIsLoggedAndLoopContinues(t *testing.T) {
	// Setup ---
	tick := &stubTick{err: errors.New("store is down")}
	log := logging.NewFakeLogger()

	// Exercise ---
	runFor(New(log, tick, 10*time.Millisecond), 60*time.Millisecond)

	// Verify ---
	assert := require.New(t)
	assert.GreaterOrEqual(tick.Calls(), 2)
	assert.GreaterOrEqual(len(log.ByLevel(logging.ERROR)), 2)
}

func TestSlowTicksNeverOverlap(t *testing.T) {
	// Setup ---
	tick := &stubTick{delay: 25 * time.Millisecond}

	// Exercise ---
	runFor(New(logging.NewFakeLogger(), tick, 5*time.Millisecond), 100*time.Millisecond)

	// Verify ---
	assert := require.New(t)
	assert.GreaterOrEqual(tick.Calls(), 2)
	assert.False(tick.overlap)
}
