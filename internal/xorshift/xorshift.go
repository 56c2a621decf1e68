// Package xorshift implements a 32-bit xorshift generator for cosmetic randomness.
//
// It is not suitable for anything security sensitive.
package xorshift

import (
	"errors"
	"fmt"

	"github.com/acolita/slot-clock/internal/ports"
)

// ErrZeroSeed is returned when a seed of zero is supplied. Zero is a fixed
// point of the transform and would stall the generator.
var ErrZeroSeed = errors.New("xorshift: zero seed")

// Source is a xorshift32 generator. Its state is never zero.
type Source struct {
	state uint32
}

// New returns a Source seeded with seed.
func New(seed uint32) (*Source, error) {
	if seed == 0 {
		return nil, ErrZeroSeed
	}
	return &Source{state: seed}, nil
}

// Seed draws one word from e and uses it as the seed.
// A zero draw is an error; there is no re-draw.
func Seed(e ports.Entropy) (*Source, error) {
	seed, err := e.Draw32()
	if err != nil {
		return nil, fmt.Errorf("draw seed: %w", err)
	}
	return New(seed)
}

// Next advances the state and returns it.
// The sequence has period 2^32-1 and visits every non-zero word.
func (s *Source) Next() uint32 {
	x := s.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	s.state = x
	return x
}

// MaxRange is the largest upper bound Range accepts.
const MaxRange = 1 << 32

// Range returns a value in [lo, hi). hi may be MaxRange, so the whole
// 32-bit space is reachable. The reduction is a plain modulo, so small
// ranges carry a slight bias. It panics if lo >= hi or hi > MaxRange.
func (s *Source) Range(lo uint32, hi uint64) uint32 {
	if uint64(lo) >= hi || hi > MaxRange {
		panic(fmt.Sprintf("xorshift: bad range [%d, %d)", lo, hi))
	}
	return uint32(uint64(lo) + uint64(s.Next())%(hi-uint64(lo)))
}
