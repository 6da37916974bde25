// Package random provides seeding helpers for math/rand sources.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"
)

// NewSeed generates a high-entropy seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewSource returns a math/rand generator. A zero seed draws a fresh one from
// crypto/rand, falling back to the clock when that fails.
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			s = time.Now().UnixNano()
		}
		seed = s
	}
	return rand.New(rand.NewSource(seed))
}
