// Package hostclock provides the production implementation of the host
// clock contract AsynX depends on (spec.md §6): wall time plus
// microtask/frame/timeout scheduling. It is the one place real-world
// time enters the reactive graph; everything in pkg/reactive and
// pkg/asynx depends only on the Clock interface, so tests can supply a
// deterministic fake.
package hostclock

import (
	"sync/atomic"
	"time"
)

// Clock is the host clock contract: a monotonic wall-clock reading plus
// three scheduling primitives (microtask, animation frame, timeout).
// AsynX's 'asap'/'frame'/number-N scheduling maps directly onto these
// three.
type Clock interface {
	// Now returns a monotonic millisecond timestamp.
	Now() int64

	// ScheduleMicrotask runs fn as soon as possible, after the current
	// synchronous frame, but before the next animation frame.
	ScheduleMicrotask(fn func())

	// ScheduleFrame runs fn on the next animation-frame tick and returns
	// a handle that CancelFrame can use to abort it.
	ScheduleFrame(fn func()) FrameHandle
	CancelFrame(h FrameHandle)

	// ScheduleTimeout runs fn after at least ms milliseconds and returns
	// a handle that CancelTimeout can use to abort it.
	ScheduleTimeout(ms int64, fn func()) TimeoutHandle
	CancelTimeout(h TimeoutHandle)
}

// FrameHandle and TimeoutHandle are opaque cancellation tokens.
type FrameHandle uint64
type TimeoutHandle uint64

// RealClock is the production Clock, grounded on time.AfterFunc (the
// teacher's debounce idiom in pkg/vango/helpers.go) for both timeouts
// and frames: each scheduled frame is a one-shot ~16ms (60Hz) timer,
// since this package has no browser to supply real vsync timing.
//
// The reactive graph (pkg/reactive, pkg/asynx) is deliberately
// single-threaded (spec.md §5) — no mutexes guard Scheduler/Owner/
// Source state. time.AfterFunc and Go's runtime microtask-equivalent
// both fire callbacks on their own goroutines, so RealClock does not
// invoke any scheduled fn directly: every ScheduleMicrotask,
// ScheduleFrame, and ScheduleTimeout callback is instead handed to a
// single worker goroutine (drainWork) through one channel, the same
// "single logical worker" Engine.Redispatch's doc comment describes.
// As long as every touch of a Scheduler bound to a RealClock is routed
// through that Scheduler's Engine (directly, or via Engine.Redispatch
// for work originating on another goroutine), all of it serializes
// onto this one goroutine.
type RealClock struct {
	frameInterval time.Duration

	start time.Time

	work     chan func()
	stopOnce chan struct{}
	stopped  int32

	nextHandle uint64
	frames     map[FrameHandle]*time.Timer
	timeouts   map[TimeoutHandle]*time.Timer
}

// NewRealClock constructs a RealClock with the given frame interval
// (defaulting to ~16ms, i.e. 60Hz, if zero) and starts its worker loop.
func NewRealClock(frameInterval time.Duration) *RealClock {
	if frameInterval <= 0 {
		frameInterval = 16 * time.Millisecond
	}
	c := &RealClock{
		frameInterval: frameInterval,
		start:         time.Now(),
		work:          make(chan func(), 256),
		stopOnce:      make(chan struct{}),
		frames:        make(map[FrameHandle]*time.Timer),
		timeouts:      make(map[TimeoutHandle]*time.Timer),
	}
	go c.drainWork()
	return c
}

func (c *RealClock) drainWork() {
	for {
		select {
		case fn := <-c.work:
			fn()
		case <-c.stopOnce:
			return
		}
	}
}

// enqueue hands fn to the single worker goroutine. Called both
// directly (ScheduleMicrotask) and from timer callbacks (ScheduleFrame,
// ScheduleTimeout), so every callback this Clock ever fires runs on the
// same goroutine. A send after Stop is dropped rather than blocked, so
// a timer racing Stop can't leak its firing goroutine.
func (c *RealClock) enqueue(fn func()) {
	if atomic.LoadInt32(&c.stopped) != 0 {
		return
	}
	select {
	case c.work <- fn:
	case <-c.stopOnce:
	}
}

// Stop shuts down the clock's worker goroutine. Pending frame/timeout
// timers are left to fire or be individually canceled; any that do
// fire after Stop find their callback dropped rather than delivered.
func (c *RealClock) Stop() {
	if !atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		return
	}
	close(c.stopOnce)
}

func (c *RealClock) Now() int64 {
	return time.Since(c.start).Milliseconds()
}

func (c *RealClock) ScheduleMicrotask(fn func()) {
	c.enqueue(fn)
}

func (c *RealClock) ScheduleFrame(fn func()) FrameHandle {
	c.nextHandle++
	h := FrameHandle(c.nextHandle)
	c.frames[h] = time.AfterFunc(c.frameInterval, func() { c.enqueue(fn) })
	return h
}

func (c *RealClock) CancelFrame(h FrameHandle) {
	if t, ok := c.frames[h]; ok {
		t.Stop()
		delete(c.frames, h)
	}
}

func (c *RealClock) ScheduleTimeout(ms int64, fn func()) TimeoutHandle {
	c.nextHandle++
	h := TimeoutHandle(c.nextHandle)
	c.timeouts[h] = time.AfterFunc(time.Duration(ms)*time.Millisecond, func() { c.enqueue(fn) })
	return h
}

func (c *RealClock) CancelTimeout(h TimeoutHandle) {
	if t, ok := c.timeouts[h]; ok {
		t.Stop()
		delete(c.timeouts, h)
	}
}
