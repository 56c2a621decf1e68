// Package stdoutdevice shows the clock as a single self-overwriting terminal line.
package stdoutdevice

import (
	"bufio"
	"fmt"
	"io"

	"github.com/acolita/slot-clock/internal/ports"
)

// Device writes each frame as "\r" followed by the digits and flushes.
type Device struct {
	w *bufio.Writer
}

// New returns a Device writing to w.
func New(w io.Writer) *Device {
	return &Device{w: bufio.NewWriterSize(w, 32)}
}

// Publish writes and flushes one frame.
func (d *Device) Publish(frame []byte) error {
	d.w.WriteByte('\r')
	d.w.Write(frame)
	if err := d.w.Flush(); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close ends the line so the shell prompt starts on a fresh one.
func (d *Device) Close() error {
	d.w.WriteByte('\n')
	return d.w.Flush()
}

// Ensure Device implements ports.Device.
var _ ports.Device = (*Device)(nil)
