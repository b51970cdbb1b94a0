package random

import (
	"sync"
	"testing"
)

func TestNewIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 20; i++ {
		if x, y := a.Intn(1000), b.Intn(1000); x != y {
			t.Fatalf("draw %d: expected %d == %d", i, x, y)
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	src := New(7)
	items := []int{0, 1, 2, 3, 4, 5, 6, 7}
	src.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	seen := make(map[int]bool, len(items))
	for _, v := range items {
		if seen[v] {
			t.Fatalf("duplicate value %d after shuffle", v)
		}
		seen[v] = true
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 distinct values, got %d", len(seen))
	}
}

func TestNewFromConfigKeepsExplicitSeed(t *testing.T) {
	_, seed, err := NewFromConfig(99)
	if err != nil {
		t.Fatalf("new from config: %v", err)
	}
	if seed != 99 {
		t.Fatalf("expected seed 99, got %d", seed)
	}
}

func TestNewFromConfigGeneratesSeed(t *testing.T) {
	src, _, err := NewFromConfig(0)
	if err != nil {
		t.Fatalf("new from config: %v", err)
	}
	if src == nil {
		t.Fatal("expected source")
	}
}

func TestLockedConcurrentUse(t *testing.T) {
	src := New(1)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = src.Intn(10)
			}
		}()
	}
	wg.Wait()
}
