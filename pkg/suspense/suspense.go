// Package suspense implements spec.md §4.7: a boundary that swaps a
// content computation for a fallback while asynchronous work it started
// is still pending, tracked by a simple reference count.
package suspense

import "github.com/weaverun/weave/pkg/reactive"

// boundaryKey is the owner-context key CreateSuspense installs so
// nested `suspend` calls can find their enclosing Boundary without a
// value being threaded explicitly through every intermediate call.
var boundaryKey = reactive.MakeContextKey()

// Boundary owns the pending-work counter, the derived isSuspended
// memo, and the last async error, per spec.md §4.7.
type Boundary struct {
	sched        *reactive.Scheduler
	pendingCount *reactive.Source[int]
	isSuspended  *reactive.Observer[bool]
	errSrc       *reactive.Source[error]
}

func newBoundary(sched *reactive.Scheduler) *Boundary {
	b := &Boundary{sched: sched}
	b.pendingCount = reactive.MakeObservable(sched, 0)
	b.errSrc = reactive.MakeObservable[error](sched, nil)
	b.isSuspended = reactive.MakeMemo(sched, func(bool) bool {
		return b.pendingCount.Read() > 0
	}, false)
	return b
}

// IsSuspended reports (and tracks, in a tracking context) whether the
// boundary currently has outstanding pending work.
func (b *Boundary) IsSuspended() bool { return b.isSuspended.Read() }

// Error returns (and tracks) the boundary's last recorded async error,
// or nil.
func (b *Boundary) Error() error { return b.errSrc.Read() }

// Enter registers one unit of pending async work and returns a resolver
// to invoke exactly once when that work completes; a non-nil err is
// recorded on the boundary. Enter alone does not unwind the calling
// computation — pair it with a panic(reactive.ErrSuspensionSignal) (or
// call Suspend, which does both) to actually suspend.
func (b *Boundary) Enter() func(err error) {
	b.pendingCount.WriteFn(func(n int) int { return n + 1 })
	resolved := false
	return func(err error) {
		if resolved {
			return
		}
		resolved = true
		if err != nil {
			b.errSrc.Write(err)
		}
		b.pendingCount.WriteFn(func(n int) int { return n - 1 })
	}
}

// Suspend registers one unit of pending work and immediately panics
// with the SuspensionSignal, per spec.md §4.6's `suspend(promise)`. The
// caller must arrange — typically via pkg/asynx's SuspendedAsynx — for
// the returned resolver to be invoked once the awaited work settles;
// since Suspend never returns normally, callers that need the resolver
// should start the async work (capturing its own resolver from Enter)
// before calling Suspend, or use SuspendedAsynx, which does both in the
// right order.
func (b *Boundary) Suspend() {
	b.Enter()
	panic(reactive.ErrSuspensionSignal)
}

// CurrentBoundary looks up the nearest enclosing Boundary from the
// scheduler's current owner, or nil if none is installed.
func CurrentBoundary(sched *reactive.Scheduler) *Boundary {
	v, ok := reactive.ReadContext(sched, boundaryKey)
	if !ok {
		return nil
	}
	return v.(*Boundary)
}

// CreateSuspense builds a memoized output that renders fallback() while
// the boundary it installs is suspended, and content() otherwise.
// content runs with the boundary installed in its owner context so
// nested suspend() calls (directly, or via pkg/asynx's SuspendedAsynx)
// find it via CurrentBoundary. A SuspensionSignal raised inside content
// is caught here and the memo's previous value is kept — the content
// computation stays merely Stale, not disposed, so it re-runs the next
// time the boundary's pending count returns to zero (spec.md §4.7).
func CreateSuspense[T any](sched *reactive.Scheduler, content func() T, fallback func() T) *Observer[T] {
	b := newBoundary(sched)

	var zero T
	memo := reactive.MakeMemo(sched, func(prev T) T {
		if b.IsSuspended() {
			return fallback()
		}

		result := prev
		suspended := false
		func() {
			defer func() {
				if r := recover(); r != nil {
					if err, ok := r.(*reactive.Error); ok && err == reactive.ErrSuspensionSignal {
						suspended = true
						return
					}
					panic(r)
				}
			}()
			reactive.WithContext(sched, boundaryKey, b)
			result = content()
		}()
		if suspended {
			// content hit a brand-new suspension during this very run:
			// render fallback in the same commit rather than showing a
			// transient stale value (spec.md §4.7, S6: "no mixed output
			// in between").
			return fallback()
		}
		return result
	}, zero)

	return &Observer[T]{memo: memo, boundary: b}
}

// Observer wraps the memo CreateSuspense produces together with its
// Boundary, so callers can inspect suspension state alongside the
// rendered value.
type Observer[T any] struct {
	memo     *reactive.Observer[T]
	boundary *Boundary
}

func (o *Observer[T]) Read() T              { return o.memo.Read() }
func (o *Observer[T]) Peek() T              { return o.memo.Peek() }
func (o *Observer[T]) Boundary() *Boundary  { return o.boundary }
func (o *Observer[T]) IsSuspended() bool    { return o.boundary.IsSuspended() }
