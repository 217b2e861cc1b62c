// Package schedule abstracts delayed execution so time-driven behavior
// (debounced zoom handling, staggered highlight cascades) stays testable
// without real clocks.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Cancel stops a pending callback. Canceling an already-fired or
// already-canceled callback is a no-op.
type Cancel func()

// Scheduler runs a callback after a delay.
type Scheduler interface {
	// After schedules fn to run once after d. The returned Cancel stops it
	// if it has not fired yet.
	After(d time.Duration, fn func()) Cancel
}

// ===== Real Clock =====

type realScheduler struct{}

// New returns a Scheduler backed by the wall clock.
func New() Scheduler {
	return realScheduler{}
}

func (realScheduler) After(d time.Duration, fn func()) Cancel {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ===== Manual Clock =====

// Manual is a Scheduler driven by explicit Advance calls. Tests use it to
// step through debounce windows and cascade delays deterministically.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	nextID  int
	pending map[int]manualEntry
}

type manualEntry struct {
	due time.Duration
	fn  func()
}

// NewManual returns a Manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{pending: make(map[int]manualEntry)}
}

func (m *Manual) After(d time.Duration, fn func()) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.pending[id] = manualEntry{due: m.now + d, fn: fn}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.pending, id)
	}
}

// Advance moves the clock forward and fires all callbacks that come due,
// in due-time order. Callbacks run outside the lock so they may schedule
// further work.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	deadline := m.now
	m.mu.Unlock()

	for {
		fn := m.popDue(deadline)
		if fn == nil {
			return
		}
		fn()
	}
}

// Pending reports how many callbacks are scheduled but not yet fired.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func (m *Manual) popDue(deadline time.Duration) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, 0, len(m.pending))
	for id, e := range m.pending {
		if e.due <= deadline {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := m.pending[ids[i]], m.pending[ids[j]]
		if a.due != b.due {
			return a.due < b.due
		}
		return ids[i] < ids[j]
	})
	id := ids[0]
	fn := m.pending[id].fn
	delete(m.pending, id)
	return fn
}
