package reactive

import "testing"

// TestDisposalTearsDownObserver is P3: a disposed observer's queues/subs
// no longer reference it and it never recomputes again.
func TestDisposalTearsDownObserver(t *testing.T) {
	sched := NewScheduler()
	x := MakeObservable(sched, 0)

	var owner *Owner
	runs := 0
	Root(sched, func(dispose func()) {
		owner = sched.CurrentOwner()
		MakeObserver(sched, func() {
			runs++
			_ = x.Read()
		})
		_ = dispose
	})

	if runs != 1 {
		t.Fatalf("expected 1 initial run, got %d", runs)
	}

	owner.Dispose(true)
	x.Write(1)

	if runs != 1 {
		t.Errorf("disposed observer must not re-run (P3), got %d runs", runs)
	}
	if !owner.IsDisposed() {
		t.Error("expected owner to report disposed")
	}
}

func TestCleanupRunsOnDisposeAndRerun(t *testing.T) {
	sched := NewScheduler()
	x := MakeObservable(sched, 0)

	var finals []bool
	Root(sched, func(dispose func()) {
		MakeObserver(sched, func() {
			owner := sched.CurrentOwner()
			v := x.Read()
			owner.AddCleanup(func(final bool) {
				finals = append(finals, final)
			})
			_ = v
		})
	})

	x.Write(1) // triggers a soft re-run: cleanup fires with final=false
	if len(finals) != 1 || finals[0] != false {
		t.Fatalf("expected one final=false cleanup after re-run, got %v", finals)
	}
}

func TestContextWalksUpOwnerChain(t *testing.T) {
	sched := NewScheduler()
	key := MakeContextKey()

	var got any
	var ok bool
	Root(sched, func(dispose func()) {
		WithContext(sched, key, "hello")
		Root(sched, func(inner func()) {
			got, ok = ReadContext(sched, key)
			inner()
		})
	})

	if !ok || got != "hello" {
		t.Errorf("expected to read context value from ancestor, got %v, %v", got, ok)
	}
}

// TestDisposingSchedulerRootPanicsWithDisposalOfUnowned covers
// spec.md §7's DisposalOfUnowned: the Scheduler's own root Owner is
// never itself owned, so disposing it directly is a programmer error.
func TestDisposingSchedulerRootPanicsWithDisposalOfUnowned(t *testing.T) {
	sched := NewScheduler()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected Dispose on the scheduler's root owner to panic")
		}
		err, ok := r.(*Error)
		if !ok || err != ErrDisposalOfUnowned {
			t.Fatalf("expected panic value ErrDisposalOfUnowned, got %#v", r)
		}
	}()

	sched.Root.Dispose(true)
}

// TestOrdinaryRootDisposalIsUnaffected confirms the unowned-root guard
// only applies to the scheduler's own root, not to every root-less
// Owner (e.g. one created directly via AppRoot).
func TestOrdinaryRootDisposalIsUnaffected(t *testing.T) {
	sched := NewScheduler()
	var disposeFn func()
	AppRoot(sched, func(dispose func()) { disposeFn = dispose }, nil, nil)
	disposeFn() // must not panic
}

func TestErrorHandlerCatchesComputationPanic(t *testing.T) {
	sched := NewScheduler()
	x := MakeObservable(sched, 0)

	var caught error
	Root(sched, func(dispose func()) {
		InstallErrorHandler(sched, func(err error) { caught = err })
		MakeObserver(sched, func() {
			if x.Read() == 1 {
				panic("boom")
			}
		})
	})

	x.Write(1)
	if caught == nil {
		t.Fatal("expected error handler to catch the panic")
	}
}
