package reactive

// Observer is the generic, typed handle wrapping an observerCore: a
// memo, computed, observer, or effect. It holds the last committed
// value and the equality predicate, the same split as Source[T]/
// observerCore, mirroring the teacher's signalBase/Signal[T] embedding
// (pkg/vango/signal.go) one level further so the Scheduler's queues
// stay non-generic.
type Observer[T any] struct {
	core  *observerCore
	value T
	equal func(a, b T) bool
}

func newObserverCore(sched *Scheduler, kind Kind, effectKind Kind, container *Owner) *observerCore {
	core := &observerCore{
		id:         nextID(),
		kind:       kind,
		effectKind: effectKind,
		sched:      sched,
		container:  container,
		age:        sched.tick,
	}
	core.selfScope = newDetachedOwner(container)
	return core
}

// Read lifts the observer current if necessary (recomputing a Stale or
// resolving Pending computed/memo), subscribes the running listener,
// and returns the last committed value. Reading an observer currently
// Running raises CircularDependency (spec.md §4.3 call()).
func (o *Observer[T]) Read() T {
	if o.core.state&StateRunning != 0 {
		panic(ErrCircularDependency)
	}
	o.core.lift()
	if l := o.core.sched.currentListener; l != nil {
		if o.core.ownSub == nil {
			o.core.ownSub = &Subscription{}
		}
		connect(o.core.ownSub, l)
	}
	return o.value
}

// Peek returns the last committed value without lifting or subscribing.
func (o *Observer[T]) Peek() T { return o.value }

// ID returns the underlying node's unique identifier.
func (o *Observer[T]) ID() uint64 { return o.core.id }

// Kind reports which flavor of Observer this is.
func (o *Observer[T]) Kind() Kind { return o.core.kind }

// Dispose tears this observer down directly, outside of its owner's
// own disposal — used by callers managing a node's lifetime manually
// (e.g. Suspense swapping content/fallback).
func (o *Observer[T]) Dispose() { o.core.dispose(true) }

// Invalidate marks o Stale and immediately drains the scheduler so it
// recomputes, bypassing the normal dependency-change path. Used by
// callers that need to force a re-run from outside the tracked graph
// (e.g. Suspense re-running content once a boundary's pending count
// returns to zero, per spec.md §4.7).
func Invalidate[T any](sched *Scheduler, o *Observer[T]) {
	sched.markStale(o.core)
	sched.RunQueues()
}

func makeNode[T any](sched *Scheduler, kind Kind, fn func(prev T) (next T, unchanged bool), initial T, equals []func(a, b T) bool, runImmediately bool) *Observer[T] {
	container := sched.CurrentOwner()
	o := &Observer[T]{value: initial, equal: defaultEquals[T]}
	if len(equals) > 0 {
		o.equal = equals[0]
	}

	effectKind := KindMemo
	if kind == KindRenderEffect || kind == KindAfterEffect {
		effectKind = kind
	}
	core := newObserverCore(sched, kind, effectKind, container)
	o.core = core

	core.run = func() bool {
		next, explicit := fn(o.value)
		if explicit {
			o.value = next
			return false
		}
		if o.equal(o.value, next) {
			return true
		}
		o.value = next
		return false
	}

	container.own(core)

	if runImmediately {
		// The first run is batched, so a write it makes is committed
		// after it returns instead of re-entering it mid-run.
		sched.Batch(func() { sched.runObserver(core) })
	} else {
		core.state |= StateStale
	}
	return o
}

// MakeMemo creates an eager, memoized computation: it runs immediately
// and re-runs whenever a dependency changes, short-circuiting downstream
// propagation when equals reports the new value unchanged.
func MakeMemo[T any](sched *Scheduler, fn func(prev T) T, initial T, equals ...func(a, b T) bool) *Observer[T] {
	return makeNode(sched, KindMemo, func(prev T) (T, bool) { return fn(prev), false }, initial, equals, true)
}

// MakeComputed creates a lazy memoized computation: it does not run
// until first read, and thereafter behaves like MakeMemo.
func MakeComputed[T any](sched *Scheduler, fn func(prev T) T, initial T, equals ...func(a, b T) bool) *Observer[T] {
	return makeNode(sched, KindComputed, func(prev T) (T, bool) { return fn(prev), false }, initial, equals, false)
}

// MakeObserver creates an eager tracked computation with no meaningful
// return value (fn's result is ignored for equality purposes — it
// always reports "changed" so subscribers never decline on it, since
// Observer nodes exist for their side effects, not their value).
func MakeObserver(sched *Scheduler, fn func()) *Observer[struct{}] {
	return makeNode[struct{}](sched, KindObserver, func(struct{}) (struct{}, bool) {
		fn()
		return struct{}{}, true
	}, struct{}{}, nil, true)
}

// MakeRenderEffect creates an effect-phase computation run in the
// render-effects bucket (before after-effects, FIFO within the bucket).
func MakeRenderEffect[T any](sched *Scheduler, fn func(prev T) T, initial T) *Observer[T] {
	return makeNode(sched, KindRenderEffect, func(prev T) (T, bool) { return fn(prev), true }, initial, nil, true)
}

// MakeAfterEffect creates an effect-phase computation run in the
// after-effects bucket, after every render-effect has run.
func MakeAfterEffect[T any](sched *Scheduler, fn func(prev T) T, initial T) *Observer[T] {
	return makeNode(sched, KindAfterEffect, func(prev T) (T, bool) { return fn(prev), true }, initial, nil, true)
}
