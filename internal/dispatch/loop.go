// internal/dispatch/loop.go
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

var (
	ErrStopped = errors.New("dispatch: loop stopped")
	ErrRunning = errors.New("dispatch: loop already running")
)

// DefaultDepth is the job queue depth used when none is configured.
const DefaultDepth = 64

type job struct {
	fn   func()
	done chan struct{} // nil for posted jobs
}

// Loop runs submitted jobs one at a time, in submission order, each to
// completion before the next starts. It is the only goroutine allowed to
// touch the device.
type Loop struct {
	jobs    chan job
	stopped chan struct{}
	running atomic.Bool
	logger  *slog.Logger
}

func New(depth int, logger *slog.Logger) *Loop {
	if depth <= 0 {
		depth = DefaultDepth
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		jobs:    make(chan job, depth),
		stopped: make(chan struct{}),
		logger:  logger.With(slog.String("component", "dispatch")),
	}
}

// Run blocks serving jobs until ctx is cancelled. A Loop runs once.
// Jobs still queued at cancellation are dropped.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer close(l.stopped)

	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-l.jobs:
			l.run(j)
		}
	}
}

// Do queues fn and waits until it has run.
// Once queued, fn runs to completion even if ctx is cancelled meanwhile.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	j := job{fn: fn, done: make(chan struct{})}
	if err := l.enqueue(ctx, j); err != nil {
		return err
	}

	select {
	case <-j.done:
		return nil
	case <-l.stopped:
		select {
		case <-j.done:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Post queues fn without waiting for it.
func (l *Loop) Post(ctx context.Context, fn func()) error {
	return l.enqueue(ctx, job{fn: fn})
}

func (l *Loop) enqueue(ctx context.Context, j job) error {
	select {
	case <-l.stopped:
		return ErrStopped
	default:
	}

	select {
	case l.jobs <- j:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("job panicked", slog.String("panic", fmt.Sprint(r)))
		}
		if j.done != nil {
			close(j.done)
		}
	}()
	j.fn()
}
