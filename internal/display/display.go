// Package display defines the 17-digit clock frame and binds it to a device.
package display

import (
	"errors"
	"fmt"
	"time"

	"github.com/acolita/slot-clock/internal/digits"
	"github.com/acolita/slot-clock/internal/ports"
)

// Size is the length of a frame in bytes.
const Size = 17

// ErrFieldOverflow is returned when a value has more digits than its field.
var ErrFieldOverflow = errors.New("value does not fit display field")

// Field identifies one of the seven fixed regions of a frame.
type Field int

// Fields in display order.
const (
	Year Field = iota
	Month
	Day
	Hour
	Minute
	Second
	Millisecond
)

// Fields lists every field in display order.
var Fields = [...]Field{Year, Month, Day, Hour, Minute, Second, Millisecond}

var layout = [...]struct {
	name       string
	start, end int
}{
	Year:        {"year", 0, 4},
	Month:       {"month", 4, 6},
	Day:         {"day", 6, 8},
	Hour:        {"hour", 8, 10},
	Minute:      {"minute", 10, 12},
	Second:      {"second", 12, 14},
	Millisecond: {"millisecond", 14, 17},
}

// Start returns the offset of the field's first byte.
func (f Field) Start() int { return layout[f].start }

// End returns the offset just past the field's last byte.
func (f Field) End() int { return layout[f].end }

// Width returns the number of digits in the field.
func (f Field) Width() int { return layout[f].end - layout[f].start }

func (f Field) String() string {
	if f < 0 || int(f) >= len(layout) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return layout[f].name
}

// Buffer is one frame: year(4) month(2) day(2) hour(2) minute(2) second(2)
// millisecond(3), all ASCII digits.
type Buffer [Size]byte

// Slice returns the bytes of field f.
func (b *Buffer) Slice(f Field) []byte {
	return b[f.Start():f.End()]
}

// Put encodes v into field f. Values wider than the field are rejected
// and leave the buffer untouched.
func (b *Buffer) Put(f Field, v int) error {
	if !digits.Fits(v, f.Width()) {
		return fmt.Errorf("%w: %s=%d", ErrFieldOverflow, f, v)
	}
	digits.Encode(v, b.Slice(f))
	return nil
}

// PutTime encodes all seven fields of t, in t's own location.
func (b *Buffer) PutTime(t time.Time) error {
	year, month, day := t.Date()
	hour, minute, second := t.Clock()
	values := [...]int{
		Year:        year,
		Month:       int(month),
		Day:         day,
		Hour:        hour,
		Minute:      minute,
		Second:      second,
		Millisecond: t.Nanosecond() / int(time.Millisecond),
	}
	for _, f := range Fields {
		if err := b.Put(f, values[f]); err != nil {
			return err
		}
	}
	return nil
}

func (b *Buffer) String() string {
	return string(b[:])
}

// Panel owns the frame shown on a device.
type Panel struct {
	buf Buffer
	dev ports.Device
}

// NewPanel returns a panel for dev with every digit set to '0'.
func NewPanel(dev ports.Device) *Panel {
	p := &Panel{dev: dev}
	for i := range p.buf {
		p.buf[i] = '0'
	}
	return p
}

// Buffer returns the frame that the next Publish will show.
func (p *Panel) Buffer() *Buffer {
	return &p.buf
}

// Publish sends the current frame to the device.
func (p *Panel) Publish() error {
	if err := p.dev.Publish(p.buf[:]); err != nil {
		return fmt.Errorf("publish frame: %w", err)
	}
	return nil
}
