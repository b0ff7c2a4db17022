package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestManualAfterFuncFiresInOrder(t *testing.T) {
	m := NewManual(epoch)
	var order []int
	m.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	m.AfterFunc(time.Second, func() { order = append(order, 1) })
	stopped := m.AfterFunc(2*time.Second, func() { order = append(order, 2) })

	if !stopped.Stop() {
		t.Fatal("Stop on pending timer should report true")
	}
	m.Advance(2 * time.Second)
	if len(order) != 1 || order[0] != 1 {
		t.Fatalf("after 2s fired %v", order)
	}
	m.Advance(time.Second)
	if len(order) != 2 || order[1] != 3 {
		t.Fatalf("after 3s fired %v", order)
	}
	if m.Pending() != 0 {
		t.Fatalf("pending = %d", m.Pending())
	}
	if !m.Now().Equal(epoch.Add(3 * time.Second)) {
		t.Fatalf("now = %v", m.Now())
	}
}

func TestManualTimerSeesDeadlineAsNow(t *testing.T) {
	m := NewManual(epoch)
	var seen time.Time
	m.AfterFunc(time.Second, func() { seen = m.Now() })
	m.Advance(time.Minute)
	if !seen.Equal(epoch.Add(time.Second)) {
		t.Fatalf("callback saw %v", seen)
	}
}

func TestIntervalRunsAndStops(t *testing.T) {
	m := NewManual(epoch)
	var n atomic.Int64
	iv := NewInterval(m, time.Second, func() { n.Add(1) })

	iv.Start()
	if !iv.Running() {
		t.Fatal("expected running")
	}
	m.Advance(time.Second)
	waitFor(t, func() bool { return n.Load() == 1 })

	iv.Stop()
	if iv.Running() {
		t.Fatal("expected stopped")
	}
	m.Advance(5 * time.Second)
	time.Sleep(10 * time.Millisecond)
	if got := n.Load(); got != 1 {
		t.Fatalf("ticks after stop = %d", got)
	}
	if m.ActiveTickers() != 0 {
		t.Fatalf("ticker leaked: %d active", m.ActiveTickers())
	}
}

func TestIntervalRestartDoesNotLeak(t *testing.T) {
	m := NewManual(epoch)
	iv := NewInterval(m, time.Second, func() {})
	iv.Start()
	iv.Start()
	iv.Start()
	waitFor(t, func() bool { return m.ActiveTickers() == 1 })
	iv.Stop()
	waitFor(t, func() bool { return m.ActiveTickers() == 0 })
}
