package schedule

import (
	"testing"
	"time"
)

func TestManualFiresInDueOrder(t *testing.T) {
	m := NewManual()
	var got []string
	m.After(30*time.Millisecond, func() { got = append(got, "late") })
	m.After(10*time.Millisecond, func() { got = append(got, "early") })

	m.Advance(5 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("fired before due: %v", got)
	}
	m.Advance(50 * time.Millisecond)
	if len(got) != 2 || got[0] != "early" || got[1] != "late" {
		t.Errorf("fire order = %v, want [early late]", got)
	}
}

func TestManualCancel(t *testing.T) {
	m := NewManual()
	fired := false
	cancel := m.After(10*time.Millisecond, func() { fired = true })
	cancel()
	cancel() // repeat cancel is a no-op

	m.Advance(time.Second)
	if fired {
		t.Error("canceled callback fired")
	}
	if got := m.Pending(); got != 0 {
		t.Errorf("Pending() = %d, want 0", got)
	}
}

func TestManualCallbackCanReschedule(t *testing.T) {
	m := NewManual()
	var steps int
	var step func()
	step = func() {
		steps++
		if steps < 3 {
			m.After(10*time.Millisecond, step)
		}
	}
	m.After(10*time.Millisecond, step)

	m.Advance(100 * time.Millisecond)
	if steps != 3 {
		t.Errorf("steps = %d, want 3", steps)
	}
}

func TestRealSchedulerFires(t *testing.T) {
	fired := make(chan struct{})
	New().After(time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}
}
