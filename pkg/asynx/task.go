package asynx

import "github.com/weaverun/weave/pkg/reactive"

// Kind discriminates the four AsynX source flavors (spec.md §4.6).
type Kind int

const (
	// Asap coalesces into the next microtask-drained scheduler batch.
	Asap Kind = iota
	// Frame coalesces into the host's next animation-frame batch.
	Frame
	// Delay schedules onto the timeline at now + N milliseconds.
	Delay
	// Func is dispatched into the microtask queue exactly like Asap.
	// Asynx takes no producer function, so the first action's input is
	// Asynx's initial argument, as for every other Kind.
	Func
)

// Locker is the subset of reactive.Source[T]'s API an Action needs to
// freeze a source for its duration. Every *reactive.Source[T]
// satisfies this regardless of T.
type Locker interface {
	Lock()
	Unlock()
}

// Action is one step of a Task's pipeline: a pure transform plus the
// sources to lock for its duration (spec.md §4.6: "a tuple (fn, [sources
// to lock])").
type Action[T any] struct {
	Fn    func(T) T
	Locks []Locker
}

// Step builds an Action with no locks.
func Step[T any](fn func(T) T) Action[T] { return Action[T]{Fn: fn} }

// LockedStep builds an Action that holds locks for the duration of fn.
func LockedStep[T any](fn func(T) T, locks ...Locker) Action[T] {
	return Action[T]{Fn: fn, Locks: locks}
}

// Task is one scheduled AsynX pipeline: a sequence of Actions run one at
// a time, each action's output feeding the next action's input.
type Task[T any] struct {
	engine  *Engine
	actions []Action[T]
	cursor  int

	disposed  bool
	onDispose func()

	onError func(error)
}

// Asynx schedules a new Task per spec.md §4.6: source picks how the
// first action is triggered ('asap'/'frame'/delay-ms via kind+delayMs),
// actions is the ordered pipeline, and initial seeds the first action's
// input.
func Asynx[T any](engine *Engine, kind Kind, delayMs int64, actions []Action[T], initial T) *Task[T] {
	t := &Task[T]{engine: engine, actions: actions}

	dispatch := func() { t.runStep(initial) }

	switch kind {
	case Asap, Func:
		engine.dispatchAsap(dispatch)
	case Frame:
		engine.dispatchFrame(dispatch)
	case Delay:
		handle := engine.dispatchDelay(delayMs, dispatch)
		t.onDispose = func() { engine.clock.CancelTimeout(handle) }
	default:
		// An unrecognized Kind is a programmer error at the scheduling
		// call site, not a host failure — raised the same way
		// ErrCircularDependency is: a panic, caught by the nearest owner's
		// recover+HandleError wrapper when Asynx runs inside a tracked
		// computation, and reaching the caller directly otherwise.
		panic(reactive.ErrInvalidAsynxSource)
	}

	return t
}

// OnError installs an error handler invoked (instead of panicking) when
// an action's Fn panics; locks held by the failing action are always
// released first, per spec.md §7 ("AsynX pipeline errors release any
// held locks before routing").
func (t *Task[T]) OnError(fn func(error)) *Task[T] { t.onError = fn; return t }

// Dispose cancels the task: if it has not yet started, its initial
// dispatch is suppressed; if it is mid-pipeline, no further actions run.
func (t *Task[T]) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	if t.onDispose != nil {
		t.onDispose()
	}
}

func (t *Task[T]) runStep(v T) {
	if t.disposed || t.cursor >= len(t.actions) {
		return
	}
	action := t.actions[t.cursor]
	t.cursor++

	for _, l := range action.Locks {
		l.Lock()
	}

	var next T
	var failed bool
	var failure error
	func() {
		defer func() {
			for _, l := range action.Locks {
				l.Unlock()
			}
			if r := recover(); r != nil {
				failed = true
				if err, ok := r.(error); ok {
					failure = err
				} else {
					failure = errUnrecognizedPanic{r}
				}
			}
		}()
		next = action.Fn(v)
	}()

	if failed {
		t.disposed = true
		if t.onError != nil {
			t.onError(failure)
			return
		}
		panic(failure)
	}

	if t.cursor < len(t.actions) {
		t.engine.dispatchAsap(func() { t.runStep(next) })
	}
}

type errUnrecognizedPanic struct{ v any }

func (e errUnrecognizedPanic) Error() string { return "asynx: action panicked with non-error value" }
