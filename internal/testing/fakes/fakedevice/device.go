// Package fakedevice provides a recording Device for testing.
package fakedevice

import (
	"sync"

	"github.com/acolita/slot-clock/internal/ports"
)

// Device records every published frame.
type Device struct {
	mu     sync.Mutex
	frames []string

	// Err, when set, is returned by Publish after the frame is recorded.
	Err error
}

// New returns an empty recording device.
func New() *Device {
	return &Device{}
}

// Publish records a copy of frame.
func (d *Device) Publish(frame []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames = append(d.frames, string(frame))
	return d.Err
}

// Frames returns every published frame, oldest first.
func (d *Device) Frames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.frames))
	copy(out, d.frames)
	return out
}

// Count returns the number of Publish calls.
func (d *Device) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.frames)
}

// Last returns the most recent frame, or "" if none.
func (d *Device) Last() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.frames) == 0 {
		return ""
	}
	return d.frames[len(d.frames)-1]
}

// Reset forgets recorded frames.
func (d *Device) Reset() {
	d.mu.Lock()
	d.frames = nil
	d.mu.Unlock()
}

// Ensure Device implements ports.Device.
var _ ports.Device = (*Device)(nil)
