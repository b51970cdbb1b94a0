// Package timer implements the one-shot exam countdown.
//
// A Timer moves Idle -> Running -> Stopped exactly once. Both Stop and the
// expiry callback compete for the Running -> Stopped transition with a
// compare-and-swap, so the timeout handler runs only if it wins; a Stop that
// returns true guarantees the handler never runs.
package timer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	stateIdle int32 = iota
	stateRunning
	stateStopped
)

// Timer counts down a fixed duration and invokes a handler on expiry.
type Timer struct {
	duration  time.Duration
	onTimeout func()
	now       func() time.Time

	state atomic.Int32

	mu        sync.Mutex
	startedAt time.Time
	pending   *time.Timer
}

// New creates an idle timer. onTimeout runs on its own goroutine.
func New(duration time.Duration, onTimeout func()) *Timer {
	return &Timer{
		duration:  duration,
		onTimeout: onTimeout,
		now:       time.Now,
	}
}

// Start begins the countdown. Only the first call has any effect.
func (t *Timer) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.CompareAndSwap(stateIdle, stateRunning) {
		return false
	}
	t.startedAt = t.now()
	t.pending = time.AfterFunc(t.duration, t.expire)
	return true
}

// Stop cancels the countdown. It reports whether this call performed the
// transition; false means the timer was idle, already stopped, or expired.
func (t *Timer) Stop() bool {
	if !t.state.CompareAndSwap(stateRunning, stateStopped) {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		t.pending.Stop()
	}
	return true
}

func (t *Timer) expire() {
	if !t.state.CompareAndSwap(stateRunning, stateStopped) {
		return
	}
	if t.onTimeout != nil {
		t.onTimeout()
	}
}

// Running reports whether the countdown is active.
func (t *Timer) Running() bool {
	return t.state.Load() == stateRunning
}

// Duration returns the configured countdown length.
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// StartedAt returns when Start succeeded, or the zero time.
func (t *Timer) StartedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startedAt
}

// Remaining returns the time left, or 0 when the timer is not running.
func (t *Timer) Remaining() time.Duration {
	if !t.Running() {
		return 0
	}
	remaining := t.duration - t.now().Sub(t.StartedAt())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FormatRemaining renders d as MM:SS, truncating sub-second precision.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
