// Package random provides the injectable random source used for question
// sampling and shuffling.
//
// Production code seeds a Locked source from crypto/rand; tests pass a fixed
// seed so draws and orderings are reproducible.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// Source is the subset of *rand.Rand the exam domain needs.
type Source interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Locked wraps a *rand.Rand so it can be shared between sessions.
type Locked struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a goroutine-safe source seeded with seed.
func New(seed int64) *Locked {
	return &Locked{rng: rand.New(rand.NewSource(seed))}
}

// NewFromConfig seeds from crypto/rand when seed is 0, otherwise uses seed.
// The chosen seed is returned so callers can log it for reproducibility.
func NewFromConfig(seed int64) (*Locked, int64, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, 0, err
		}
		seed = s
	}
	return New(seed), seed, nil
}

// NewSeed generates a seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

func (l *Locked) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Intn(n)
}

func (l *Locked) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rng.Shuffle(n, swap)
}
