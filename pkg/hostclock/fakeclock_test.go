package hostclock

import "testing"

func TestFakeClockMicrotasksDrainInOrder(t *testing.T) {
	c := NewFakeClock()
	var order []int
	c.ScheduleMicrotask(func() { order = append(order, 1) })
	c.ScheduleMicrotask(func() { order = append(order, 2) })
	c.DrainMicrotasks()

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("expected [1 2], got %v", order)
	}
}

func TestFakeClockTimeoutFiresOnAdvance(t *testing.T) {
	c := NewFakeClock()
	fired := false
	c.ScheduleTimeout(10, func() { fired = true })

	c.Advance(5)
	if fired {
		t.Error("timeout fired too early")
	}
	c.Advance(5)
	if !fired {
		t.Error("expected timeout to fire at due time")
	}
}

func TestFakeClockCancelTimeout(t *testing.T) {
	c := NewFakeClock()
	fired := false
	h := c.ScheduleTimeout(10, func() { fired = true })
	c.CancelTimeout(h)
	c.Advance(20)
	if fired {
		t.Error("canceled timeout must not fire")
	}
}

func TestFakeClockFrameRunsScheduledCallbacks(t *testing.T) {
	c := NewFakeClock()
	var ran []int
	c.ScheduleFrame(func() { ran = append(ran, 1) })
	c.ScheduleFrame(func() { ran = append(ran, 2) })
	c.RunFrame()

	if len(ran) != 2 {
		t.Fatalf("expected 2 frame callbacks to run, got %d", len(ran))
	}
}
