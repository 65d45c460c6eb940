// Package asynx implements spec.md §4.6: the asynchronous coordination
// layer that coalesces microtask, animation-frame, and timed work
// scheduled within the same synchronous frame into a single scheduler
// batch (I8, P9).
package asynx

import (
	"github.com/weaverun/weave/pkg/hostclock"
	"github.com/weaverun/weave/pkg/reactive"
)

// Engine is the per-root dispatcher binding one reactive.Scheduler to
// one hostclock.Clock. All AsynX tasks created against the same Engine
// that target the same sink ('asap' or 'frame') in one synchronous
// frame run inside a single host callback and a single
// reactive.Scheduler.Batch (spec.md §4.6 batching guarantee, I8, P9).
type Engine struct {
	sched *reactive.Scheduler
	clock hostclock.Clock

	asapQueue     []func()
	asapScheduled bool

	frameQueue     []func()
	frameScheduled bool
}

// NewEngine binds sched and clock into one Engine.
func NewEngine(sched *reactive.Scheduler, clock hostclock.Clock) *Engine {
	return &Engine{sched: sched, clock: clock}
}

// Scheduler returns the bound reactive.Scheduler.
func (e *Engine) Scheduler() *reactive.Scheduler { return e.sched }

// Clock returns the bound hostclock.Clock.
func (e *Engine) Clock() hostclock.Clock { return e.clock }

func (e *Engine) dispatchAsap(fn func()) {
	e.asapQueue = append(e.asapQueue, fn)
	if e.asapScheduled {
		return
	}
	e.asapScheduled = true
	e.clock.ScheduleMicrotask(func() {
		queue := e.asapQueue
		e.asapQueue = nil
		e.asapScheduled = false
		e.sched.Batch(func() {
			for _, fn := range queue {
				fn()
			}
		})
	})
}

func (e *Engine) dispatchFrame(fn func()) {
	e.frameQueue = append(e.frameQueue, fn)
	if e.frameScheduled {
		return
	}
	e.frameScheduled = true
	e.clock.ScheduleFrame(func() {
		queue := e.frameQueue
		e.frameQueue = nil
		e.frameScheduled = false
		e.sched.Batch(func() {
			for _, fn := range queue {
				fn()
			}
		})
	})
}

func (e *Engine) dispatchDelay(ms int64, fn func()) hostclock.TimeoutHandle {
	return e.clock.ScheduleTimeout(ms, func() {
		e.sched.Batch(fn)
	})
}

// Redispatch marshals fn back onto this Engine's single logical worker
// via the microtask queue — the hook an external async completion (a
// goroutine awaiting real I/O) uses to safely touch the reactive graph,
// since the graph itself is single-threaded cooperative (spec.md §5).
func (e *Engine) Redispatch(fn func()) {
	e.clock.ScheduleMicrotask(func() {
		e.sched.Batch(fn)
	})
}
