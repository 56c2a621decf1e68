// Package fakeentropy provides a predictable Entropy implementation for testing.
package fakeentropy

import (
	"errors"
	"sync"

	"github.com/acolita/slot-clock/internal/ports"
)

// Entropy is a fake entropy source that replays a fixed sequence of words.
type Entropy struct {
	mu     sync.Mutex
	words  []uint32
	offset int

	// Err, when set, is returned by every Draw32 call.
	Err error
}

// New creates a fake entropy source that cycles through words.
func New(words ...uint32) *Entropy {
	return &Entropy{words: words}
}

// Draw32 returns the next word in the sequence.
func (e *Entropy) Draw32() (uint32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Err != nil {
		return 0, e.Err
	}
	if len(e.words) == 0 {
		return 0, errors.New("fakeentropy: no words configured")
	}
	w := e.words[e.offset%len(e.words)]
	e.offset++
	return w, nil
}

// Draws returns how many words have been handed out.
func (e *Entropy) Draws() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.offset
}

// Ensure Entropy implements ports.Entropy.
var _ ports.Entropy = (*Entropy)(nil)
