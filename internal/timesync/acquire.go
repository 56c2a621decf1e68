// Package timesync fetches network time with bounded, fixed-backoff retry.
package timesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/acolita/slot-clock/internal/ntptime"
	"github.com/acolita/slot-clock/internal/ports"
)

// Retry defaults.
const (
	DefaultAttempts = 4
	DefaultBackoff  = 5 * time.Second
)

// ErrAcquisitionFailed matches every *AcquisitionError.
var ErrAcquisitionFailed = errors.New("time acquisition failed")

// AcquisitionError reports that every attempt to reach the server failed.
type AcquisitionError struct {
	Server   string
	Attempts int
	Err      error // last attempt's error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("time acquisition from %s failed after %d attempts: %v", e.Server, e.Attempts, e.Err)
}

// Unwrap returns the last attempt's error.
func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrAcquisitionFailed.
func (e *AcquisitionError) Is(target error) bool {
	return target == ErrAcquisitionFailed
}

// Sample is a successful fetch.
type Sample struct {
	Stamp ntptime.Timestamp
	// Began is the local time at which the successful request was sent.
	Began time.Time
}

// Acquirer queries a TimeSource, retrying transient failures.
type Acquirer struct {
	source   ports.TimeSource
	clock    ports.Clock
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

// Option configures an Acquirer.
type Option func(*Acquirer)

// WithAttempts sets the total number of attempts (minimum 1).
func WithAttempts(n int) Option {
	return func(a *Acquirer) {
		if n > 0 {
			a.attempts = n
		}
	}
}

// WithBackoff sets the wait between attempts.
func WithBackoff(d time.Duration) Option {
	return func(a *Acquirer) { a.backoff = d }
}

// WithLogger sets the logger for retry warnings.
func WithLogger(l *slog.Logger) Option {
	return func(a *Acquirer) { a.logger = l }
}

// NewAcquirer creates an Acquirer with DefaultAttempts and DefaultBackoff.
func NewAcquirer(source ports.TimeSource, clock ports.Clock, opts ...Option) *Acquirer {
	a := &Acquirer{
		source:   source,
		clock:    clock,
		attempts: DefaultAttempts,
		backoff:  DefaultBackoff,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Acquire requests the time from server. A failed attempt is followed by a
// fixed backoff; after the last attempt an *AcquisitionError is returned.
// If ctx is done after a failed attempt, Acquire stops at once and returns
// an error wrapping ctx.Err(). Acquire never terminates the process itself.
func (a *Acquirer) Acquire(ctx context.Context, server string) (Sample, error) {
	var lastErr error
	for attempt := 1; attempt <= a.attempts; attempt++ {
		began := a.clock.Now()
		stamp, err := a.source.Request(ctx, server)
		if err == nil {
			return Sample{Stamp: stamp, Began: began}, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return Sample{}, fmt.Errorf("time acquisition from %s: %w", server, ctxErr)
		}

		a.logger.Warn("time request failed",
			slog.String("server", server),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", a.attempts),
			slog.String("error", err.Error()),
		)

		if attempt < a.attempts {
			a.clock.Sleep(a.backoff)
		}
	}

	return Sample{}, &AcquisitionError{Server: server, Attempts: a.attempts, Err: lastErr}
}
