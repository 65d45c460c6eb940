package asynx

import (
	"github.com/weaverun/weave/pkg/reactive"
	"github.com/weaverun/weave/pkg/suspense"
)

// Awaited is the tagged result `awaitAsynx` exposes: Waiting is true
// until the pipeline's final action commits Value (spec.md §4.6).
type Awaited[T any] struct {
	Waiting bool
	Value   T
}

// AwaitAsynx schedules a Task and returns a reactive Source that reads
// {Waiting: true} until the pipeline's last action completes, then
// {Waiting: false, Value: result}, plus a disposer that cancels the
// pipeline if it has not yet settled.
func AwaitAsynx[T any](engine *Engine, kind Kind, delayMs int64, actions []Action[T], initial T) (*reactive.Source[Awaited[T]], func()) {
	out := reactive.MakeObservable(engine.sched, Awaited[T]{Waiting: true})

	finalActions := make([]Action[T], 0, len(actions)+1)
	finalActions = append(finalActions, actions...)
	finalActions = append(finalActions, Step(func(v T) T {
		out.Write(Awaited[T]{Value: v})
		return v
	}))

	task := Asynx(engine, kind, delayMs, finalActions, initial)
	return out, task.Dispose
}

// SuspendedAsynx schedules a Task exactly like AwaitAsynx, but first
// registers one unit of pending work on boundary and immediately raises
// the SuspensionSignal, per spec.md §4.6/§4.7. The boundary's pending
// count is released when the pipeline's last action runs, or when any
// action panics.
func SuspendedAsynx[T any](engine *Engine, boundary *suspense.Boundary, kind Kind, delayMs int64, actions []Action[T], initial T) *reactive.Source[Awaited[T]] {
	resolve := boundary.Enter()
	out := reactive.MakeObservable(engine.sched, Awaited[T]{Waiting: true})

	finalActions := make([]Action[T], 0, len(actions)+1)
	finalActions = append(finalActions, actions...)
	finalActions = append(finalActions, Step(func(v T) T {
		out.Write(Awaited[T]{Value: v})
		resolve(nil)
		return v
	}))

	Asynx(engine, kind, delayMs, finalActions, initial).OnError(func(err error) {
		resolve(err)
	})

	panic(reactive.ErrSuspensionSignal)
}

// AsynxObserver creates a tracked Observer whose side-effecting work
// runs through an 'asap' AsynX pipeline rather than inline in the
// Updates queue: track runs synchronously (so it captures the dependency
// set like any Observer), and its result feeds actions as an
// independently-scheduled, batch-coalesced Task.
func AsynxObserver[V any](engine *Engine, track func() V, actions []Action[V]) *reactive.Observer[struct{}] {
	return reactive.MakeObserver(engine.sched, func() {
		v := track()
		Asynx(engine, Asap, 0, actions, v)
	})
}

// AsynxEffect is AsynxObserver scheduled into the after-effects bucket
// instead of Updates.
func AsynxEffect[V any](engine *Engine, track func() V, actions []Action[V]) *reactive.Observer[struct{}] {
	return reactive.MakeAfterEffect(engine.sched, func(struct{}) struct{} {
		v := track()
		Asynx(engine, Asap, 0, actions, v)
		return struct{}{}
	}, struct{}{})
}

// AsynxRenderEffect is AsynxObserver scheduled into the render-effects
// bucket.
func AsynxRenderEffect[V any](engine *Engine, track func() V, actions []Action[V]) *reactive.Observer[struct{}] {
	return reactive.MakeRenderEffect(engine.sched, func(struct{}) struct{} {
		v := track()
		Asynx(engine, Asap, 0, actions, v)
		return struct{}{}
	}, struct{}{})
}
