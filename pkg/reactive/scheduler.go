package reactive

import "log/slog"

// changeEntry is a Source with a staged value waiting to be committed
// by the Changes queue. Source[T] implements this so the queue itself
// stays non-generic (the teacher's equivalent type-erasure point is
// signalBase; here it is this one-method interface).
type changeEntry interface {
	commit(sched *Scheduler)
	inChanges() bool
	setInChanges(bool)
}

// defaultRunawayCap is the tick-iteration ceiling from spec.md §4.4
// before runQueues raises RunawayClock.
const defaultRunawayCap = 100_000

// Scheduler is the explicit, single-threaded context spec.md §9 asks
// for in place of the teacher's package-level globals / per-goroutine
// TLS: one Scheduler owns one reactive graph (current owner, current
// listener, the four queues, and the tick clock all live here as
// fields, not `var`s).
type Scheduler struct {
	Root *Owner

	currentOwner    *Owner
	currentListener *observerCore

	tick       uint64
	running    bool
	batchDepth int

	changes      []changeEntry
	updates      []*observerCore
	disposes     []disposeEntry
	effectsRender []*observerCore
	effectsAfter  []*observerCore

	// deferred holds snapshotted Effects entries while more eager work
	// runs, per spec.md §4.4 step (e): effects are never interleaved
	// with eager updates mid-tick.
	deferredRender []*observerCore
	deferredAfter  []*observerCore

	// afterFlush holds untracked callbacks from Mount, run once after
	// the next full queue drain.
	afterFlush []func()

	runawayCap int
	Logger     *slog.Logger
}

// disposeEntry is one owned child queued for teardown because its
// parent observer became Stale (dfn). Children held while the parent
// was Pending are disposed directly by updateNode instead.
type disposeEntry struct {
	parent *Owner
	child  Listener
}

// NewScheduler constructs a Scheduler with its own root Owner.
func NewScheduler() *Scheduler {
	s := &Scheduler{runawayCap: defaultRunawayCap, Logger: slog.Default()}
	s.Root = NewOwner(nil)
	s.Root.unownedRoot = true
	return s
}

// CurrentOwner returns the owner new reactive primitives are created
// under.
func (s *Scheduler) CurrentOwner() *Owner {
	if s.currentOwner == nil {
		return s.Root
	}
	return s.currentOwner
}

// IsTracking reports whether a computation is currently running and
// will subscribe to sources it reads.
func (s *Scheduler) IsTracking() bool {
	return s.currentListener != nil
}

// Untrack runs fn with tracking suspended: sources read inside fn will
// not subscribe the ambient listener.
func (s *Scheduler) Untrack(fn func()) {
	prev := s.currentListener
	s.currentListener = nil
	defer func() { s.currentListener = prev }()
	fn()
}

// Mount schedules fn to run once, untracked, after the current
// synchronous frame's queues fully drain — the teacher's onMount
// pattern, grounded on pkg/vango's post-render effect scheduling.
func (s *Scheduler) Mount(fn func()) {
	if !s.running {
		s.afterFlush = append(s.afterFlush, fn)
		s.runQueues()
		return
	}
	s.afterFlush = append(s.afterFlush, fn)
}

// Batch runs fn with eager-queue draining deferred until the outermost
// Batch call returns, so multiple writes inside fn collapse into a
// single runQueues pass (spec.md §4.6 Rationale, scenario S4).
func (s *Scheduler) Batch(fn func()) {
	s.batchDepth++
	defer func() {
		s.batchDepth--
		if s.batchDepth == 0 && !s.running {
			s.runQueues()
		}
	}()
	fn()
}

// enqueueChange appends a changed Source to the Changes queue if it is
// not already present (I2's NOT_PENDING-sentinel idempotence, expressed
// here as the inChanges flag on the entry itself).
func (s *Scheduler) enqueueChange(c changeEntry) {
	if c.inChanges() {
		return
	}
	c.setInChanges(true)
	s.changes = append(s.changes, c)
}

func (s *Scheduler) enqueueUpdate(o *observerCore) {
	s.updates = append(s.updates, o)
}

// removeChange pulls c out of the Changes queue without committing it,
// used by Source.Lock to suspend propagation of an already-staged write
// (spec.md §4.6 action-locking).
func (s *Scheduler) removeChange(c changeEntry) {
	if !c.inChanges() {
		return
	}
	for i, e := range s.changes {
		if e == c {
			s.changes = append(s.changes[:i], s.changes[i+1:]...)
			break
		}
	}
	c.setInChanges(false)
}

func (s *Scheduler) enqueueEffect(o *observerCore) {
	if o.effectKind == KindAfterEffect {
		s.effectsAfter = append(s.effectsAfter, o)
	} else {
		s.effectsRender = append(s.effectsRender, o)
	}
}

// schedule puts o into the Updates queue, or an Effects queue if o is
// an effect kind, per spec.md §4.5 stale()/pending() kernels.
func (s *Scheduler) schedule(o *observerCore) {
	if o.kind.isEffect() {
		s.enqueueEffect(o)
	} else if o.kind != KindComputed {
		s.enqueueUpdate(o)
	}
	// Computed nodes are lazy: they are never queued for an eager
	// update, only marked, and recomputed on next read (call()).
}

// ---------------------------------------------------------------------
// Marking kernels (spec.md §4.5)
// ---------------------------------------------------------------------

func (s *Scheduler) markStale(o *observerCore) {
	if o.state&StateDisposed != 0 {
		return
	}
	if o.state&StateStale != 0 && o.age == s.tick {
		return // already marked this tick, no-op (tick semantics)
	}
	o.state = (o.state &^ StatePending) | StateStale
	o.age = s.tick
	s.schedule(o)
	s.prepareDownstream(o, false)
}

func (s *Scheduler) markPending(o *observerCore) {
	if o.state&StateDisposed != 0 {
		return
	}
	o.state |= StatePending
	o.pendingCount++
	s.schedule(o)
	s.prepareDownstream(o, true)
}

// stalePending is the commit/decline decision for an observer that was
// Pending and has just had one of its pending marks resolved.
// dirty indicates the resolving ancestor's value definitely changed
// (no equality to decline behind); otherwise the ancestor's equality
// check will separately call markStale/clearPending as it resolves.
func (s *Scheduler) stalePending(o *observerCore, dirty bool) {
	if o.state&StatePending != 0 {
		o.state = (o.state &^ StatePending) | StateStale
	}
	if o.age < s.tick {
		o.age = s.tick
	}
	if dirty {
		s.propagateDownstreamDirty(o)
	}
}

// propagateDownstreamDirty is used when an observer without an equality
// predicate resolves: downstream always sees a definite change.
func (s *Scheduler) propagateDownstreamDirty(o *observerCore) {
	forEachSubscriber(o.ownSub, func(downstream *observerCore) {
		s.markStale(downstream)
	})
}

// prepareDownstream marks owned children for disposal (tentatively or
// for real) and propagates the appropriate kernel to every downstream
// subscriber of o.
func (s *Scheduler) prepareDownstream(o *observerCore, pending bool) {
	if pending {
		if o.selfScope != nil && len(o.selfScope.owned) > 0 {
			o.pendingDisposalChildren = append(o.pendingDisposalChildren, o.selfScope.owned...)
		}
	} else {
		s.queueChildrenForDisposal(o)
	}

	// An eager memo is queued to re-run and marks its subscribers from
	// runObserver only when its value changed, so its downstream is left
	// unmarked here.
	if !pending && o.kind == KindMemo {
		return
	}

	forEachSubscriber(o.ownSub, func(downstream *observerCore) {
		if pending {
			s.markPending(downstream)
		} else {
			s.markStale(downstream)
		}
	})
}

func (s *Scheduler) queueChildrenForDisposal(o *observerCore) {
	if o.selfScope == nil {
		return
	}
	owned := o.selfScope.owned
	o.selfScope.owned = nil
	for _, child := range owned {
		s.disposes = append(s.disposes, disposeEntry{parent: o.selfScope, child: child})
	}
}

// ---------------------------------------------------------------------
// update() — spec.md §4.3
// ---------------------------------------------------------------------

func (s *Scheduler) updateNode(o *observerCore) {
	if o.state&StateDisposed != 0 {
		return
	}

	if o.state&StatePending != 0 {
		if o.pendingCount > 0 {
			o.pendingCount--
		}
		if o.pendingCount > 0 {
			return // still waiting on other pending marks
		}
		o.state &^= StatePending
		if o.state&StateStale == 0 {
			// Declined: equality upstream held, this observer's
			// tentative children survive untouched.
			o.pendingDisposalChildren = nil
			return
		}
	}

	if o.state&StateStale == 0 {
		return
	}

	// A real recompute is happening: any children tentatively queued
	// while this observer was merely Pending are now discarded for
	// real, same as the hard-Stale disposal path.
	for _, child := range o.pendingDisposalChildren {
		child.dispose(false)
	}
	o.pendingDisposalChildren = nil

	s.runObserver(o)
}

// runObserver performs the actual recompute: disconnect current
// inputs, run the computation under a fresh self-scope, and — if
// equality says the value did not change — suppress downstream
// marking, per P2.
func (s *Scheduler) runObserver(o *observerCore) {
	if o.state&StateRunning != 0 {
		panic(ErrCircularDependency)
	}

	o.state &^= StateStale
	o.state |= StateRunning

	disconnectAll(o)
	o.selfScope.reset()

	prevListener := s.currentListener
	prevOwner := s.currentOwner
	s.currentListener = o
	s.currentOwner = o.selfScope

	var unchanged bool
	func() {
		defer func() {
			o.state &^= StateRunning
			s.currentListener = prevListener
			s.currentOwner = prevOwner
			if r := recover(); r != nil {
				o.container.HandleError(panicToError(r))
			}
		}()
		unchanged = o.run()
	}()

	if !unchanged {
		forEachSubscriber(o.ownSub, func(downstream *observerCore) {
			s.markStale(downstream)
		})
	}
}

// ---------------------------------------------------------------------
// runQueues — the tick drain (spec.md §4.4)
// ---------------------------------------------------------------------

// RunQueues drains the Changes/Updates/Disposes queues, then the
// Effects phase, repeating as long as effect-phase writes produce more
// eager work, until everything settles (I6) or the runaway cap fires.
func (s *Scheduler) RunQueues() { s.runQueues() }

func (s *Scheduler) hasEagerWork() bool {
	return len(s.changes) > 0 || len(s.updates) > 0 || len(s.disposes) > 0
}

func (s *Scheduler) hasEffectWork() bool {
	return len(s.effectsRender) > 0 || len(s.effectsAfter) > 0 ||
		len(s.deferredRender) > 0 || len(s.deferredAfter) > 0
}

func (s *Scheduler) runQueues() {
	if s.running {
		return
	}
	s.running = true
	defer func() { s.running = false }()

	iterations := 0
	firstRound := true
	for {
		for s.hasEagerWork() {
			iterations++
			if iterations >= s.runawayCap {
				panic(ErrRunawayClock)
			}
			if !firstRound {
				s.tick++
			}
			firstRound = false

			s.drainChanges()
			s.drainUpdates()
			s.drainDisposes()

			if (len(s.effectsRender) > 0 || len(s.effectsAfter) > 0) && s.hasEagerWork() {
				s.deferredRender = append(s.deferredRender, s.effectsRender...)
				s.deferredAfter = append(s.deferredAfter, s.effectsAfter...)
				s.effectsRender = nil
				s.effectsAfter = nil
			}
		}

		if !s.hasEffectWork() {
			break
		}
		s.runEffectsPhase()
		if !s.hasEagerWork() {
			break
		}
		s.tick++
	}

	if len(s.afterFlush) > 0 {
		fns := s.afterFlush
		s.afterFlush = nil
		for _, fn := range fns {
			s.Untrack(fn)
		}
	}
}

func (s *Scheduler) drainChanges() {
	changes := s.changes
	s.changes = nil
	for _, c := range changes {
		c.setInChanges(false)
		c.commit(s)
	}
}

func (s *Scheduler) drainUpdates() {
	updates := s.updates
	s.updates = nil
	for _, o := range updates {
		s.updateNode(o)
	}
}

func (s *Scheduler) drainDisposes() {
	disposes := s.disposes
	s.disposes = nil
	for _, d := range disposes {
		d.child.dispose(false)
	}
}

func (s *Scheduler) runEffectsPhase() {
	renders := append(s.deferredRender, s.effectsRender...)
	afters := append(s.deferredAfter, s.effectsAfter...)
	s.deferredRender, s.deferredAfter = nil, nil
	s.effectsRender, s.effectsAfter = nil, nil

	for _, o := range renders {
		s.runEffectNode(o)
	}
	for _, o := range afters {
		s.runEffectNode(o)
	}
}

func (s *Scheduler) runEffectNode(o *observerCore) {
	if o.state&StateDisposed != 0 {
		return
	}
	if o.state&StateLiftable == 0 {
		return
	}
	s.updateNode(o)
}
