// Package runner drives the clock: bootstrap, the 1 ms tick and scheduled resyncs.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/acolita/slot-clock/internal/clock"
	"github.com/acolita/slot-clock/internal/display"
	"github.com/acolita/slot-clock/internal/ports"
	"github.com/acolita/slot-clock/internal/timesync"
)

// TickInterval is the minimum wall time between two advances.
const TickInterval = time.Millisecond

// DefaultResyncInterval is how often the clock is resynchronized.
const DefaultResyncInterval = time.Hour

// Mode selects what a scheduled resync does.
type Mode string

// Resync modes.
const (
	// ModeSilent re-anchors the clock without animation.
	ModeSilent Mode = "silent"
	// ModeAnimated plays the full shuffle and reveal.
	ModeAnimated Mode = "animated"
)

// Resyncer performs resyncs. *reveal.Animator implements it.
type Resyncer interface {
	Resync(ctx context.Context, c *clock.Clock) error
	Silent(ctx context.Context, c *clock.Clock) (time.Time, error)
}

// Config wires a Loop.
type Config struct {
	Server         string
	OffsetHours    int
	Interval       time.Duration
	Mode           Mode
	AnimateOnStart bool

	Acquirer *timesync.Acquirer
	Resyncer Resyncer
	Panel    *display.Panel
	Wall     ports.Clock
	Logger   *slog.Logger

	// Fatal is called once with the error that stopped the loop.
	// Defaults to exiting the process with status 1.
	Fatal func(error)
}

// Loop owns the clock for the life of the process. It runs on a single
// goroutine; nothing in it is safe for concurrent use.
type Loop struct {
	cfg    Config
	logger *slog.Logger
	fatal  func(error)

	clock      *clock.Clock
	lastTick   time.Time
	lastResync time.Time
	failed     bool
}

// New creates a Loop. The clock does not exist until Start succeeds.
func New(cfg Config) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultResyncInterval
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeSilent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fatal := cfg.Fatal
	if fatal == nil {
		fatal = func(error) { os.Exit(1) }
	}
	return &Loop{cfg: cfg, logger: logger, fatal: fatal}
}

// Clock returns the running clock, or nil before a successful Start.
func (l *Loop) Clock() *clock.Clock {
	return l.clock
}

// Start builds the clock from a first fetch and, if configured, plays the
// startup animation. Any error other than cancellation of ctx is fatal.
func (l *Loop) Start(ctx context.Context) error {
	sample, err := l.cfg.Acquirer.Acquire(ctx, l.cfg.Server)
	if err != nil {
		return l.fail(fmt.Errorf("bootstrap: %w", err))
	}

	c, err := clock.New(sample.Stamp, l.cfg.OffsetHours, l.cfg.Panel)
	if err != nil {
		return l.fail(fmt.Errorf("bootstrap: %w", err))
	}
	l.clock = c

	if l.cfg.AnimateOnStart {
		if err := l.cfg.Resyncer.Resync(ctx, c); err != nil {
			return l.fail(fmt.Errorf("startup resync: %w", err))
		}
	} else if err := c.Advance(l.cfg.Wall.Since(sample.Began)); err != nil {
		return l.fail(err)
	}

	now := l.cfg.Wall.Now()
	l.lastTick = now
	l.lastResync = now

	l.logger.Info("clock started",
		slog.String("server", l.cfg.Server),
		slog.Int("utc_offset_hours", l.cfg.OffsetHours),
		slog.Time("now", c.Now()),
	)
	return nil
}

// Step performs at most one tick. It returns false without doing anything
// if less than TickInterval has passed since the previous tick. A due
// resync runs before the tick's advance. Any error is fatal.
func (l *Loop) Step(ctx context.Context) (bool, error) {
	now := l.cfg.Wall.Now()
	if now.Sub(l.lastTick) < TickInterval {
		return false, nil
	}

	if now.Sub(l.lastResync) >= l.cfg.Interval {
		if err := l.resync(ctx); err != nil {
			return false, l.fail(err)
		}
		if l.cfg.Mode == ModeAnimated {
			// The animation already advanced and published the clock.
			return true, nil
		}
		now = l.cfg.Wall.Now()
	}

	if err := l.clock.Advance(now.Sub(l.lastTick)); err != nil {
		return false, l.fail(err)
	}
	l.lastTick = now
	return true, nil
}

// Run starts the clock and ticks until ctx is cancelled.
//
// Between ticks it spins, yielding the processor, instead of sleeping: a
// timer wakeup would add scheduler jitter to every millisecond tick. This
// keeps one core busy, which is the intended trade on a dedicated device.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.Start(ctx); err != nil {
		return l.stopped(err)
	}

	done := ctx.Done()
	for {
		select {
		case <-done:
			l.logger.Info("clock stopped")
			return nil
		default:
		}

		ticked, err := l.Step(ctx)
		if err != nil {
			return l.stopped(err)
		}
		if !ticked {
			runtime.Gosched()
		}
	}
}

func (l *Loop) resync(ctx context.Context) error {
	switch l.cfg.Mode {
	case ModeAnimated:
		if err := l.cfg.Resyncer.Resync(ctx, l.clock); err != nil {
			return fmt.Errorf("scheduled resync: %w", err)
		}
		now := l.cfg.Wall.Now()
		l.lastTick = now
		l.lastResync = now
	default:
		began, err := l.cfg.Resyncer.Silent(ctx, l.clock)
		if err != nil {
			return fmt.Errorf("scheduled resync: %w", err)
		}
		// The next advance covers the time since the fetch began.
		l.lastTick = began
		l.lastResync = l.cfg.Wall.Now()
	}
	return nil
}

// stopped turns a cancellation into a clean return.
func (l *Loop) stopped(err error) error {
	if errors.Is(err, context.Canceled) {
		l.logger.Info("clock stopped", slog.String("reason", err.Error()))
		return nil
	}
	return err
}

// fail reports err through the fatal hook once. Cancellation is not a
// failure and skips the hook.
func (l *Loop) fail(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if !l.failed {
		l.failed = true
		l.logger.Error("clock stopped on fatal error", slog.String("error", err.Error()))
		l.fatal(err)
	}
	return err
}
