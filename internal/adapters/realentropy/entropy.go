// Package realentropy provides a real implementation of the Entropy port using crypto/rand.
package realentropy

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/acolita/slot-clock/internal/ports"
)

// Entropy implements ports.Entropy with the operating system's random source.
type Entropy struct{}

// New returns a new real Entropy.
func New() *Entropy {
	return &Entropy{}
}

// Draw32 returns one random word.
func (e *Entropy) Draw32() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read entropy: %w", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// Ensure Entropy implements ports.Entropy.
var _ ports.Entropy = (*Entropy)(nil)
