package ports

import (
	"context"

	"github.com/acolita/slot-clock/internal/ntptime"
)

// TimeSource abstracts a network time server.
type TimeSource interface {
	// Request performs a single time query against server ("host:port")
	// and returns the server's transmit timestamp.
	Request(ctx context.Context, server string) (ntptime.Timestamp, error)
}
