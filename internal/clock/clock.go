// Package clock keeps the displayed wall-clock time.
//
// A Clock is created from one network timestamp and then moved forward by
// elapsed local time on every tick. Only Reanchor may move it backwards.
package clock

import (
	"fmt"
	"time"

	"github.com/acolita/slot-clock/internal/display"
	"github.com/acolita/slot-clock/internal/ntptime"
)

// Clock owns the current instant and the fixed UTC offset it is shown in.
// It is not safe for concurrent use.
type Clock struct {
	zone    *time.Location
	instant time.Time
	panel   *display.Panel
}

// Zone returns the fixed location for a whole-hour UTC offset.
func Zone(offsetHours int) *time.Location {
	name := fmt.Sprintf("UTC%+03d", offsetHours)
	if offsetHours == 0 {
		name = "UTC"
	}
	return time.FixedZone(name, offsetHours*60*60)
}

// New creates a clock at ts, shown offsetHours from UTC on panel.
func New(ts ntptime.Timestamp, offsetHours int, panel *display.Panel) (*Clock, error) {
	c := &Clock{zone: Zone(offsetHours), panel: panel}
	if err := c.Reanchor(ts); err != nil {
		return nil, err
	}
	return c, nil
}

// Now returns the clock's current instant.
func (c *Clock) Now() time.Time {
	return c.instant
}

// Location returns the fixed zone the clock is shown in.
func (c *Clock) Location() *time.Location {
	return c.zone
}

// In converts ts to a time in the clock's zone without changing the clock.
func (c *Clock) In(ts ntptime.Timestamp) (time.Time, error) {
	t, err := ts.Time()
	if err != nil {
		return time.Time{}, err
	}
	return t.In(c.zone), nil
}

// Reanchor replaces the current instant with ts. The display is not
// updated until the next Advance.
func (c *Clock) Reanchor(ts ntptime.Timestamp) error {
	t, err := c.In(ts)
	if err != nil {
		return fmt.Errorf("reanchor: %w", err)
	}
	c.instant = t
	return nil
}

// Advance moves the clock forward by elapsed, writes every field to the
// panel and publishes it. Negative durations leave the instant unchanged.
// It does not allocate unless it fails.
func (c *Clock) Advance(elapsed time.Duration) error {
	if elapsed > 0 {
		c.instant = c.instant.Add(elapsed)
	}
	if err := c.panel.Buffer().PutTime(c.instant); err != nil {
		return err
	}
	return c.panel.Publish()
}
