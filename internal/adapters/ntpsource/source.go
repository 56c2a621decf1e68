// Package ntpsource provides a real implementation of the TimeSource port using beevik/ntp.
package ntpsource

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/ntp"

	"github.com/acolita/slot-clock/internal/ntptime"
	"github.com/acolita/slot-clock/internal/ports"
)

// DefaultTimeout bounds a single query.
const DefaultTimeout = 5 * time.Second

type queryFunc func(address string, opt ntp.QueryOptions) (*ntp.Response, error)

// Source implements ports.TimeSource with an SNTP query.
type Source struct {
	timeout time.Duration
	query   queryFunc
}

// New returns a Source whose queries time out after timeout
// (DefaultTimeout if zero).
func New(timeout time.Duration) *Source {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Source{timeout: timeout, query: ntp.QueryWithOptions}
}

// Request queries server ("host" or "host:port") once and returns its
// transmit timestamp. Responses that fail validation (kiss-of-death,
// unsynchronized server, bad stratum) are errors.
func (s *Source) Request(ctx context.Context, server string) (ntptime.Timestamp, error) {
	if err := ctx.Err(); err != nil {
		return ntptime.Timestamp{}, err
	}

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	resp, err := s.query(server, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return ntptime.Timestamp{}, fmt.Errorf("ntp query %s: %w", server, err)
	}
	if err := resp.Validate(); err != nil {
		return ntptime.Timestamp{}, fmt.Errorf("ntp response from %s: %w", server, err)
	}

	ts, err := ntptime.FromTime(resp.Time)
	if err != nil {
		return ntptime.Timestamp{}, fmt.Errorf("ntp response from %s: %w", server, err)
	}
	return ts, nil
}

// Ensure Source implements ports.TimeSource.
var _ ports.TimeSource = (*Source)(nil)
