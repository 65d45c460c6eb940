package suspense

import (
	"testing"

	"github.com/weaverun/weave/pkg/reactive"
)

// TestSuspenseSwapsToFallbackThenContent is scenario S6: content calls
// suspend, fallback renders immediately, content renders once the
// boundary's pending count returns to zero.
func TestSuspenseSwapsToFallbackThenContent(t *testing.T) {
	sched := reactive.NewScheduler()

	var resolve func(err error)
	var boundary *Boundary

	s := CreateSuspense(sched, func() string {
		boundary = CurrentBoundary(sched)
		if resolve == nil {
			resolve = boundary.Enter()
			panic(reactive.ErrSuspensionSignal)
		}
		return "content"
	}, func() string {
		return "fallback"
	})

	if got := s.Read(); got != "fallback" {
		t.Fatalf("expected fallback output while suspended, got %q", got)
	}
	if !s.IsSuspended() {
		t.Error("expected boundary to report suspended")
	}

	resolve(nil)
	reactive.Invalidate(sched, s.memo)

	if got := s.Read(); got != "content" {
		t.Errorf("expected content output after resolution, got %q", got)
	}
	if s.IsSuspended() {
		t.Error("expected boundary to no longer be suspended")
	}
}

func TestBoundaryErrorRecordedOnFailedResolve(t *testing.T) {
	sched := reactive.NewScheduler()
	b := newBoundary(sched)

	resolve := b.Enter()
	boom := errBoom{}
	resolve(boom)

	if b.Error() != boom {
		t.Errorf("expected recorded error %v, got %v", boom, b.Error())
	}
	if b.IsSuspended() {
		t.Error("expected pending count to have returned to zero")
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
