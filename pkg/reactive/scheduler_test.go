package reactive

import "testing"

// TestBatchEqualityShortCircuit is scenario S4: batch(() => { x(1); x(0) })
// with m = x*2 and a render-effect sink(m()) must run the effect exactly
// once, observing 0.
func TestBatchEqualityShortCircuit(t *testing.T) {
	sched := NewScheduler()
	x := MakeObservable(sched, 0)
	m := MakeMemo(sched, func(int) int { return x.Read() * 2 }, 0)

	var sunk int
	runs := 0
	MakeRenderEffect(sched, func(int) int {
		runs++
		sunk = m.Read()
		return 0
	}, 0)

	if runs != 1 {
		t.Fatalf("expected 1 initial effect run, got %d", runs)
	}

	sched.Batch(func() {
		x.Write(1)
		x.Write(0)
	})

	if runs != 1 {
		t.Errorf("expected render-effect to run exactly once (P2/S4), got %d runs", runs)
	}
	if sunk != 0 {
		t.Errorf("expected sink to observe 0, got %d", sunk)
	}
}

// TestSequencingChangesBeforeUpdatesBeforeEffects is P5.
func TestSequencingChangesBeforeUpdatesBeforeEffects(t *testing.T) {
	sched := NewScheduler()
	x := MakeObservable(sched, 0)

	var order []string
	MakeMemo(sched, func(int) int {
		order = append(order, "update")
		return x.Read() + 1
	}, 1)
	MakeRenderEffect(sched, func(int) int {
		order = append(order, "effect")
		_ = x.Read()
		return 0
	}, 0)

	order = nil
	x.Write(5)

	if len(order) != 2 || order[0] != "update" || order[1] != "effect" {
		t.Errorf("expected [update effect], got %v", order)
	}
}

func TestRunQueuesIdempotentOnEmptyQueues(t *testing.T) {
	sched := NewScheduler()
	sched.RunQueues()
	sched.RunQueues()
}

func TestEffectOrderingRenderBeforeAfter(t *testing.T) {
	sched := NewScheduler()
	x := MakeObservable(sched, 0)

	var order []string
	MakeAfterEffect(sched, func(int) int {
		order = append(order, "after")
		_ = x.Read()
		return 0
	}, 0)
	MakeRenderEffect(sched, func(int) int {
		order = append(order, "render")
		_ = x.Read()
		return 0
	}, 0)
	_ = x

	order = nil
	x.Write(1)
	MakeObserver(sched, func() { _ = x.Read() })
	x.Write(2)

	if len(order) < 2 {
		t.Fatalf("expected at least 2 effect runs, got %v", order)
	}
	if order[0] != "render" || order[1] != "after" {
		t.Errorf("expected render before after, got %v", order)
	}
}

func TestCircularDependencyPanics(t *testing.T) {
	sched := NewScheduler()
	x := MakeObservable(sched, 0)
	var m *Observer[int]
	first := true

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on circular read")
		}
		if err, ok := r.(*Error); !ok || err.Category != CategoryCircular {
			t.Errorf("expected a CategoryCircular *Error, got %#v", r)
		}
	}()

	m = MakeMemo(sched, func(prev int) int {
		v := x.Read()
		if !first {
			return m.Read() // self-read while Running
		}
		first = false
		return v
	}, 0)

	x.Write(1) // triggers the re-run that self-reads
}
