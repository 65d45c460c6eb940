package reactive

// selectorState holds the per-key Subscriptions a selector multiplexes
// onto: a row watching key K only wakes when K enters or leaves the
// selected set, instead of every row re-running on every change to the
// underlying source (spec.md §9 Open Question #2).
type selectorState[T comparable] struct {
	sched     *Scheduler
	equal     func(a, b T) bool
	current   T
	listeners map[T]*Subscription
}

func (sel *selectorState[T]) notify(key T) {
	sub := sel.listeners[key]
	if sub == nil {
		return
	}
	forEachSubscriber(sub, func(o *observerCore) {
		sel.sched.markStale(o)
	})
}

// MakeSelector builds a fine-grained "is this key selected" predicate
// over a source of currently-selected keys. The returned function,
// called with a candidate key while tracking, subscribes only to that
// key's listener set; a change to the source only wakes the previously-
// selected and newly-selected keys' listeners, per the conservative
// policy spec.md §9 calls for when two selectors could race on the same
// source within a tick: both the old and new key are always notified,
// never just one.
func MakeSelector[T comparable](sched *Scheduler, source func() T, equals ...func(a, b T) bool) func(T) bool {
	equal := defaultEquals[T]
	if len(equals) > 0 {
		equal = equals[0]
	}

	sel := &selectorState[T]{sched: sched, equal: equal, listeners: map[T]*Subscription{}}

	MakeMemo(sched, func(prev T) T {
		next := source()
		if !equal(prev, next) {
			sel.notify(prev)
			sel.notify(next)
		}
		sel.current = next
		return next
	}, sel.current)

	return func(key T) bool {
		if l := sched.currentListener; l != nil {
			sub := sel.listeners[key]
			if sub == nil {
				sub = &Subscription{}
				sel.listeners[key] = sub
			}
			connect(sub, l)
		}
		return equal(key, sel.current)
	}
}
