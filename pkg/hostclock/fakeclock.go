package hostclock

import "sort"

// FakeClock is a deterministic Clock for tests: time only advances when
// Advance is called, and microtasks/frames/timeouts are queued and
// flushed explicitly rather than running on a background goroutine.
type FakeClock struct {
	now int64

	microtasks []func()

	nextHandle uint64
	frames     map[FrameHandle]func()
	frameOrder []FrameHandle

	timeouts []fakeTimeout
}

type fakeTimeout struct {
	handle TimeoutHandle
	due    int64
	fn     func()
}

// NewFakeClock creates a FakeClock starting at time 0.
func NewFakeClock() *FakeClock {
	return &FakeClock{frames: make(map[FrameHandle]func())}
}

func (c *FakeClock) Now() int64 { return c.now }

func (c *FakeClock) ScheduleMicrotask(fn func()) {
	c.microtasks = append(c.microtasks, fn)
}

// DrainMicrotasks runs every currently queued microtask, including any
// that schedule further microtasks, until the queue is empty.
func (c *FakeClock) DrainMicrotasks() {
	for len(c.microtasks) > 0 {
		next := c.microtasks
		c.microtasks = nil
		for _, fn := range next {
			fn()
		}
	}
}

func (c *FakeClock) ScheduleFrame(fn func()) FrameHandle {
	c.nextHandle++
	h := FrameHandle(c.nextHandle)
	c.frames[h] = fn
	c.frameOrder = append(c.frameOrder, h)
	return h
}

func (c *FakeClock) CancelFrame(h FrameHandle) {
	delete(c.frames, h)
}

// RunFrame runs every frame callback scheduled since the last RunFrame,
// in scheduling order.
func (c *FakeClock) RunFrame() {
	order := c.frameOrder
	c.frameOrder = nil
	for _, h := range order {
		if fn, ok := c.frames[h]; ok {
			delete(c.frames, h)
			fn()
		}
	}
}

func (c *FakeClock) ScheduleTimeout(ms int64, fn func()) TimeoutHandle {
	c.nextHandle++
	h := TimeoutHandle(c.nextHandle)
	c.timeouts = append(c.timeouts, fakeTimeout{handle: h, due: c.now + ms, fn: fn})
	return h
}

func (c *FakeClock) CancelTimeout(h TimeoutHandle) {
	for i, to := range c.timeouts {
		if to.handle == h {
			c.timeouts = append(c.timeouts[:i], c.timeouts[i+1:]...)
			return
		}
	}
}

// Advance moves the clock forward by ms milliseconds, firing any
// timeouts that become due, in due-time order.
func (c *FakeClock) Advance(ms int64) {
	c.now += ms
	sort.SliceStable(c.timeouts, func(i, j int) bool { return c.timeouts[i].due < c.timeouts[j].due })
	var remaining []fakeTimeout
	for _, to := range c.timeouts {
		if to.due <= c.now {
			to.fn()
		} else {
			remaining = append(remaining, to)
		}
	}
	c.timeouts = remaining
}
