// Package reveal resynchronizes the clock behind a slot-machine animation.
//
// A resync first spins every field with random digits (the shuffle phase),
// then locks the true digits in one character at a time, left to right,
// field by field (the reveal phase). Randomness here is cosmetic.
package reveal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/acolita/slot-clock/internal/clock"
	"github.com/acolita/slot-clock/internal/digits"
	"github.com/acolita/slot-clock/internal/display"
	"github.com/acolita/slot-clock/internal/ports"
	"github.com/acolita/slot-clock/internal/timesync"
	"github.com/acolita/slot-clock/internal/xorshift"
)

// ShuffleFrames are the waits after each shuffle frame, slowing down.
var ShuffleFrames = [...]time.Duration{
	100 * time.Millisecond,
	90 * time.Millisecond,
	80 * time.Millisecond,
	70 * time.Millisecond,
	70 * time.Millisecond,
	60 * time.Millisecond,
	60 * time.Millisecond,
	50 * time.Millisecond,
	50 * time.Millisecond,
	40 * time.Millisecond,
	40 * time.Millisecond,
	30 * time.Millisecond,
	30 * time.Millisecond,
	20 * time.Millisecond,
	20 * time.Millisecond,
}

// RevealStep is the wait after each character is locked.
const RevealStep = 50 * time.Millisecond

// Noise ranges per field, upper bound exclusive. They start at 1 and stop
// short of each field's maximum.
var noiseBounds = [...]struct{ lo, hi uint32 }{
	display.Year:        {1, 9999},
	display.Month:       {1, 12},
	display.Day:         {1, 30},
	display.Hour:        {1, 24},
	display.Minute:      {1, 60},
	display.Second:      {1, 60},
	display.Millisecond: {1, 999},
}

// Config wires an Animator.
type Config struct {
	Server   string
	Acquirer *timesync.Acquirer
	Wall     ports.Clock
	Random   *xorshift.Source
	Panel    *display.Panel
	Logger   *slog.Logger
}

// Animator runs resyncs against one server and panel.
// It is not safe for concurrent use.
type Animator struct {
	server string
	acq    *timesync.Acquirer
	wall   ports.Clock
	rng    *xorshift.Source
	panel  *display.Panel
	logger *slog.Logger
}

// New creates an Animator.
func New(cfg Config) *Animator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Animator{
		server: cfg.Server,
		acq:    cfg.Acquirer,
		wall:   cfg.Wall,
		rng:    cfg.Random,
		panel:  cfg.Panel,
		logger: logger,
	}
}

// Resync fetches the time, plays the shuffle and reveal phases, then
// re-anchors c and advances it by the time spent since the fetch began.
// Once the fetch succeeds the animation always runs to completion.
func (a *Animator) Resync(ctx context.Context, c *clock.Clock) error {
	log := a.logger.With(slog.String("run_id", uuid.NewString()))

	sample, err := a.acq.Acquire(ctx, a.server)
	if err != nil {
		return err
	}

	target, err := c.In(sample.Stamp)
	if err != nil {
		return fmt.Errorf("resync: %w", err)
	}
	var truth display.Buffer
	if err := truth.PutTime(target); err != nil {
		return fmt.Errorf("resync: %w", err)
	}
	log.Debug("resync fetched time",
		slog.String("stamp", sample.Stamp.String()),
		slog.Time("target", target),
	)

	if err := a.shuffle(); err != nil {
		return err
	}
	if err := a.reveal(&truth); err != nil {
		return err
	}

	drift := target.Sub(c.Now())
	if err := c.Reanchor(sample.Stamp); err != nil {
		return err
	}
	elapsed := a.wall.Since(sample.Began)
	if err := c.Advance(elapsed); err != nil {
		return err
	}

	log.Info("clock resynchronized",
		slog.String("mode", "animated"),
		slog.Duration("correction", drift),
		slog.Duration("elapsed", elapsed),
	)
	return nil
}

// Silent fetches the time and re-anchors c without touching the display.
// It returns the local time at which the fetch began; the caller's next
// Advance should cover the time elapsed since then.
func (a *Animator) Silent(ctx context.Context, c *clock.Clock) (time.Time, error) {
	sample, err := a.acq.Acquire(ctx, a.server)
	if err != nil {
		return time.Time{}, err
	}

	before := c.Now()
	if err := c.Reanchor(sample.Stamp); err != nil {
		return time.Time{}, err
	}

	a.logger.Info("clock resynchronized",
		slog.String("mode", "silent"),
		slog.Duration("correction", c.Now().Sub(before)),
	)
	return sample.Began, nil
}

func (a *Animator) shuffle() error {
	buf := a.panel.Buffer()
	for _, wait := range ShuffleFrames {
		for _, f := range display.Fields {
			a.noise(buf, f)
		}
		if err := a.panel.Publish(); err != nil {
			return err
		}
		a.wall.Sleep(wait)
	}
	return nil
}

func (a *Animator) reveal(truth *display.Buffer) error {
	buf := a.panel.Buffer()
	for _, f := range display.Fields {
		for i := f.Start(); i < f.End(); i++ {
			// Everything from the current field on keeps spinning.
			for _, rest := range display.Fields[f:] {
				a.noise(buf, rest)
			}
			copy(buf[f.Start():i+1], truth[f.Start():i+1])

			if err := a.panel.Publish(); err != nil {
				return err
			}
			a.wall.Sleep(RevealStep)
		}
	}
	return nil
}

func (a *Animator) noise(buf *display.Buffer, f display.Field) {
	b := noiseBounds[f]
	digits.Encode(a.rng.Range(b.lo, uint64(b.hi)), buf.Slice(f))
}
