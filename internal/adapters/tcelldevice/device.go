// Package tcelldevice shows the clock full-screen in a terminal using tcell.
package tcelldevice

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/acolita/slot-clock/internal/ports"
)

// separators[i] is drawn after byte i of a frame, giving
// "2024-01-02 05:04:05.006".
var separators = map[int]rune{3: '-', 5: '-', 7: ' ', 9: ':', 11: ':', 13: '.'}

// Width is the number of cells a rendered frame occupies.
const Width = 17 + 6

// Device renders frames centered on a tcell screen.
type Device struct {
	screen tcell.Screen
	style  tcell.Style
	onQuit func()
	done   chan struct{}
}

// New initializes the terminal. onQuit is called (from another goroutine)
// when the user presses q, Esc or Ctrl-C.
func New(onQuit func()) (*Device, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return newWithScreen(screen, onQuit), nil
}

func newWithScreen(screen tcell.Screen, onQuit func()) *Device {
	screen.HideCursor()
	screen.Clear()
	d := &Device{
		screen: screen,
		style:  tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true),
		onQuit: onQuit,
		done:   make(chan struct{}),
	}
	go d.pollEvents()
	return d
}

// Publish draws frame and shows it before returning.
func (d *Device) Publish(frame []byte) error {
	if len(frame) != 17 {
		return fmt.Errorf("frame has %d bytes, want 17", len(frame))
	}

	w, h := d.screen.Size()
	x := (w - Width) / 2
	if x < 0 {
		x = 0
	}
	y := h / 2

	d.screen.Clear()
	for i, b := range frame {
		d.screen.SetContent(x, y, rune(b), nil, d.style)
		x++
		if sep, ok := separators[i]; ok {
			d.screen.SetContent(x, y, sep, nil, tcell.StyleDefault)
			x++
		}
	}
	d.screen.Show()
	return nil
}

// Close restores the terminal.
func (d *Device) Close() error {
	d.screen.Fini()
	<-d.done
	return nil
}

func (d *Device) pollEvents() {
	defer close(d.done)
	for {
		ev := d.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				if d.onQuit != nil {
					d.onQuit()
				}
			}
		case *tcell.EventResize:
			d.screen.Sync()
		}
	}
}

// Ensure Device implements ports.Device.
var _ ports.Device = (*Device)(nil)
