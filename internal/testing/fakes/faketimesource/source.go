// Package faketimesource provides a scripted TimeSource for testing.
package faketimesource

import (
	"context"
	"errors"
	"sync"

	"github.com/acolita/slot-clock/internal/ntptime"
	"github.com/acolita/slot-clock/internal/ports"
)

// ErrExhausted is returned once the scripted responses run out.
var ErrExhausted = errors.New("faketimesource: no more responses")

// Response is one scripted answer.
type Response struct {
	Stamp ntptime.Timestamp
	Err   error
}

// Source replays scripted responses in order.
type Source struct {
	mu        sync.Mutex
	responses []Response
	servers   []string

	// OnRequest, when set, runs at the start of every request.
	// Tests use it to move a fake clock while the "network" is busy.
	OnRequest func()
}

// New creates a source that returns responses in order.
func New(responses ...Response) *Source {
	return &Source{responses: responses}
}

// Ok is shorthand for a successful response.
func Ok(ts ntptime.Timestamp) Response {
	return Response{Stamp: ts}
}

// Fail is shorthand for a failed response.
func Fail(err error) Response {
	return Response{Err: err}
}

// Push appends more scripted responses.
func (s *Source) Push(responses ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, responses...)
}

// Request returns the next scripted response.
func (s *Source) Request(ctx context.Context, server string) (ntptime.Timestamp, error) {
	if s.OnRequest != nil {
		s.OnRequest()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.servers = append(s.servers, server)
	if err := ctx.Err(); err != nil {
		return ntptime.Timestamp{}, err
	}
	if len(s.responses) == 0 {
		return ntptime.Timestamp{}, ErrExhausted
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return r.Stamp, r.Err
}

// Calls returns the number of requests made.
func (s *Source) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.servers)
}

// Servers returns the server address of every request, in order.
func (s *Source) Servers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.servers))
	copy(out, s.servers)
	return out
}

// Ensure Source implements ports.TimeSource.
var _ ports.TimeSource = (*Source)(nil)
