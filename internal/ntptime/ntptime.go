// Package ntptime models NTP timestamps and converts them to Unix time.
package ntptime

import (
	"errors"
	"fmt"
	"time"
)

// EpochDelta is the number of seconds between the NTP epoch (1900-01-01)
// and the Unix epoch (1970-01-01).
const EpochDelta = 2208988800

// ErrBeforeUnixEpoch is returned for timestamps earlier than 1970-01-01.
// A well-formed server never sends one.
var ErrBeforeUnixEpoch = errors.New("ntp timestamp before unix epoch")

// Timestamp is an NTP timestamp: seconds since 1900-01-01 and a
// 32-bit binary fraction of a second.
type Timestamp struct {
	Seconds  uint32
	Fraction uint32
}

// UnixNanos returns the timestamp as nanoseconds since the Unix epoch.
// The fraction is truncated to whole microseconds first, matching NTP
// short-format decoding. The result always fits in an int64.
func (ts Timestamp) UnixNanos() (int64, error) {
	if ts.Seconds < EpochDelta {
		return 0, fmt.Errorf("%w: seconds=%d", ErrBeforeUnixEpoch, ts.Seconds)
	}
	secs := uint64(ts.Seconds - EpochDelta)
	micros := uint64(ts.Fraction) * 1_000_000 >> 32
	return int64((secs*1_000_000 + micros) * 1000), nil
}

// Time returns the timestamp as a UTC time.Time.
func (ts Timestamp) Time() (time.Time, error) {
	nanos, err := ts.UnixNanos()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, nanos).UTC(), nil
}

// FromTime converts t to an NTP timestamp in era 0.
// The fraction is rounded up so that UnixNanos gives back the same
// microsecond.
func FromTime(t time.Time) (Timestamp, error) {
	secs := t.Unix() + EpochDelta
	if secs < 0 || secs > 1<<32-1 {
		return Timestamp{}, fmt.Errorf("time %s outside ntp era 0", t.UTC().Format(time.RFC3339))
	}
	frac := (uint64(t.Nanosecond())<<32 + 999_999_999) / 1_000_000_000
	return Timestamp{Seconds: uint32(secs), Fraction: uint32(frac)}, nil
}

// String formats the timestamp as seconds.fraction in hex, as NTP tools print it.
func (ts Timestamp) String() string {
	return fmt.Sprintf("%08x.%08x", ts.Seconds, ts.Fraction)
}
