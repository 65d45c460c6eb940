package reactive

// Kind discriminates the flavors of Observer<T> the spec unifies into
// one record: memo/observer/render-effect/after-effect/computed/root.
type Kind uint8

const (
	KindMemo Kind = iota
	KindObserver
	KindRenderEffect
	KindAfterEffect
	KindComputed
	KindRoot
)

func (k Kind) String() string {
	switch k {
	case KindMemo:
		return "Memo"
	case KindObserver:
		return "Observer"
	case KindRenderEffect:
		return "RenderEffect"
	case KindAfterEffect:
		return "AfterEffect"
	case KindComputed:
		return "Computed"
	case KindRoot:
		return "Root"
	default:
		return "Unknown"
	}
}

// isEffect reports whether this kind is scheduled into the Effects
// queues (RenderEffect, AfterEffect) rather than Updates.
func (k Kind) isEffect() bool {
	return k == KindRenderEffect || k == KindAfterEffect
}

// State is the combinable state bitmask from spec.md §3.
type State uint8

const (
	StateActual          State = 0
	StateStale           State = 1 << 0
	StatePending         State = 1 << 1
	StatePendingDisposal State = 1 << 2
	StateRunning         State = 1 << 3
	StateDisposed        State = 1 << 4
)

const (
	StateUpstreamable = StatePending | StatePendingDisposal
	StateLiftable      = StateStale | StatePending | StatePendingDisposal
)

// observerCore holds every type-erased field of Observer<T>: kind,
// state, dependency edges, and owner back-pointer. The typed value and
// computation function live on the generic Observer[T] that embeds
// this, matching the teacher's signalBase/Signal[T] split
// (pkg/vango/signal.go) but pulled one level further so Updates/Changes
// queues can hold a single concrete non-generic type.
type observerCore struct {
	id    uint64
	kind  Kind
	state State
	age   uint64

	sched *Scheduler

	// container is the owner this observer is registered under; used
	// for error routing and context lookups.
	container *Owner
	// selfScope is the scope this observer provides to whatever it
	// creates while running (nested observers, cleanups).
	selfScope *Owner

	primarySrc    srcLink
	additionalSrc []srcLink

	// pendingCount tracks outstanding Pending marks from upstream
	// equality-bearing ancestors that have not yet resolved (see
	// spec.md §4.5 and DESIGN.md's Open Question #1 decision to treat
	// marks as an uncounted-identity, count-only mechanism).
	pendingCount int

	// pendingDisposalChildren holds the owned children captured when
	// this observer was tentatively marked Pending, so they can be
	// discarded (if the observer goes on to actually recompute) or
	// kept untouched (if equality later declines the update).
	pendingDisposalChildren []Listener

	// ownSub is this observer's own Subscription, lazily created the
	// first time another observer reads it as a source (Memo/Computed
	// values can themselves be tracked dependencies).
	ownSub *Subscription

	// run is the type-erased recompute step, set by the generic
	// Observer[T] constructor. It returns whether the new value is
	// considered unchanged from the old one (equality held), which
	// lets stalePending/update suppress downstream propagation (P2).
	run func() (unchanged bool)

	// effectKind distinguishes RenderEffect vs AfterEffect queuing
	// within the Effects phase (render before after, spec.md §4.4).
	effectKind Kind
}

func (o *observerCore) dispose(final bool) {
	if o.state&StateDisposed != 0 {
		return
	}
	o.state |= StateDisposed
	o.selfScope.Dispose(final)
	disconnectAll(o)
	o.run = nil
}

// markPendingDisposal is a no-op for the owner-child adapter: plain
// context scopes have no Stale/Pending state of their own, so they are
// only ever hard-disposed.
func (w ownerAsListener) markPendingDisposal() {}

// lift ensures o's value is current: if Stale or has outstanding
// pendingCount, it must be updated before being read (spec.md §4.3
// call()). It returns nothing; a recompute that changes the value marks
// downstream subscribers itself (runObserver).
func (o *observerCore) lift() {
	if o.state&StateDisposed != 0 {
		return
	}
	if o.state&StateLiftable != 0 {
		o.sched.updateNode(o)
	}
}
