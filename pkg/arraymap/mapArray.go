package arraymap

import "github.com/weaverun/weave/pkg/reactive"

// mapEntry is one constructed element of a mapArray output: its own
// root (for independent disposal/recycling) and a reactive index the
// mapper closed over.
type mapEntry[T any, R any] struct {
	value    T
	mapped   R
	indexSrc *reactive.Source[int]
	dispose  func()
}

// MapPool recycles mapArray entries by their stable value.
type MapPool[T comparable, R any] = Pool[T, *mapEntry[T, R]]

// NewMapPool creates a pool for MakeMapArray, disposing any entry
// evicted past limit (or <= 0 for DefaultPoolLimit).
func NewMapPool[T comparable, R any](limit int) *MapPool[T, R] {
	return NewPool[T, *mapEntry[T, R]](limit, func(_ T, e *mapEntry[T, R]) { e.dispose() })
}

// MapOption configures MakeMapArray.
type MapOption[T comparable, R any] func(*mapConfig[T, R])

type mapConfig[T comparable, R any] struct {
	fallback func() R
	pool     *MapPool[T, R]
}

// WithMapFallback supplies the single element produced while the input
// list is empty.
func WithMapFallback[T comparable, R any](fn func() R) MapOption[T, R] {
	return func(c *mapConfig[T, R]) { c.fallback = fn }
}

// WithMapPool supplies a pool entries are stashed into instead of
// disposed, and recycled from on construction of a matching value.
func WithMapPool[T comparable, R any](pool *MapPool[T, R]) MapOption[T, R] {
	return func(c *mapConfig[T, R]) { c.pool = pool }
}

func resolveMapOptions[T comparable, R any](opts []MapOption[T, R]) mapConfig[T, R] {
	var cfg mapConfig[T, R]
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// MakeMapArray builds a memoized output list from track (a readable
// list signal) keyed by value: mapper runs once per distinct value
// entering the list and is never re-run for a value that stays present
// across an update, even if it moves — only its readable index changes
// (spec.md §4.8, P11, S7).
func MakeMapArray[T comparable, R any](sched *reactive.Scheduler, track func() []T, mapper func(value T, index func() int) R, opts ...MapOption[T, R]) *reactive.Observer[[]R] {
	cfg := resolveMapOptions(opts)

	// container persists across every re-run of the memo below: an
	// Observer's own self-scope is reset (disposing everything it owns)
	// before each re-run, which would tear down every live entry on
	// every update. Entries are rooted here instead, under a plain Owner
	// parented once at setup time, so identity survives reordering.
	container := reactive.NewOwner(reactive.CurrentOwner(sched))

	var items []T
	var entries []*mapEntry[T, R]
	var usingFallback bool
	var fallbackEntry *mapEntry[T, R]

	disposeEntry := func(e *mapEntry[T, R]) {
		if cfg.pool != nil {
			cfg.pool.Stash(e.value, e)
		} else {
			e.dispose()
		}
	}

	construct := func(value T, idx int) *mapEntry[T, R] {
		if recycled, ok := cfg.pool.Take(value); ok {
			recycled.indexSrc.Write(idx)
			return recycled
		}
		e := &mapEntry[T, R]{value: value}
		reactive.RootIn(sched, container, func(dispose func()) {
			e.dispose = dispose
			e.indexSrc = reactive.MakeObservable(sched, idx)
			e.mapped = mapper(value, func() int { return e.indexSrc.Read() })
		})
		return e
	}

	buildOutput := func() []R {
		if usingFallback {
			return []R{fallbackEntry.mapped}
		}
		out := make([]R, len(entries))
		for i, e := range entries {
			out[i] = e.mapped
		}
		return out
	}

	fn := func(prev []R) []R {
		next := track()
		newLen := len(next)

		// Phase 1: trivial shapes.
		if newLen == 0 {
			if len(items) != 0 {
				for _, e := range entries {
					disposeEntry(e)
				}
				items = nil
				entries = nil
			}
			if cfg.fallback != nil && !usingFallback {
				fe := &mapEntry[T, R]{}
				reactive.RootIn(sched, container, func(dispose func()) {
					fe.dispose = dispose
					fe.mapped = cfg.fallback()
				})
				fallbackEntry = fe
				usingFallback = true
			}
			return buildOutput()
		}

		if usingFallback {
			fallbackEntry.dispose()
			fallbackEntry = nil
			usingFallback = false
		}

		if len(items) == 0 {
			entries = make([]*mapEntry[T, R], newLen)
			for j := 0; j < newLen; j++ {
				entries[j] = construct(next[j], j)
			}
			items = append([]T(nil), next...)
			return buildOutput()
		}

		// Phase 2/3: four-edge optimization folded into the general
		// backward/forward scan (prefix skip, suffix skip building temp
		// from the tail inward, then a duplicate-aware middle match).
		oldLen := len(items)
		temp := make([]*mapEntry[T, R], newLen)

		start := 0
		boundedEnd := oldLen
		if newLen < boundedEnd {
			boundedEnd = newLen
		}
		for start < boundedEnd && items[start] == next[start] {
			start++
		}

		oldEnd := oldLen - 1
		newEnd := newLen - 1
		for oldEnd >= start && newEnd >= start && items[oldEnd] == next[newEnd] {
			temp[newEnd] = entries[oldEnd]
			oldEnd--
			newEnd--
		}

		// Backward scan: value -> earliest remaining position, with a
		// duplicate link (newIndicesNext) so repeated values in next are
		// matched one at a time against repeated values in items.
		newIndices := make(map[T]int, newEnd-start+1)
		newIndicesNext := make([]int, newEnd+1)
		for j := newEnd; j >= start; j-- {
			v := next[j]
			if i, ok := newIndices[v]; ok {
				newIndicesNext[j] = i
			} else {
				newIndicesNext[j] = -1
			}
			newIndices[v] = j
		}

		// Forward scan over the unmatched middle of items: move matched
		// entries into temp at their new position, dispose the rest.
		for i := start; i <= oldEnd; i++ {
			v := items[i]
			if j, ok := newIndices[v]; ok {
				temp[j] = entries[i]
				if nxt := newIndicesNext[j]; nxt == -1 {
					delete(newIndices, v)
				} else {
					newIndices[v] = nxt
				}
			} else {
				disposeEntry(entries[i])
			}
		}

		// Phase 4: fill unmatched positions from next, update indices of
		// everything that survived, and publish.
		newEntries := make([]*mapEntry[T, R], newLen)
		copy(newEntries, entries[:start])
		for j := start; j < newLen; j++ {
			if e := temp[j]; e != nil {
				newEntries[j] = e
				e.indexSrc.Write(j)
			} else {
				newEntries[j] = construct(next[j], j)
			}
		}

		entries = newEntries
		items = append([]T(nil), next...)
		return buildOutput()
	}

	return reactive.MakeMemo(sched, fn, nil)
}
