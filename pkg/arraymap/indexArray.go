package arraymap

import "github.com/weaverun/weave/pkg/reactive"

// indexEntry is one constructed element of an indexArray output: its
// own root, plus a reactive value source the mapper closed over. The
// index passed to mapper is the plain int position, not reactive.
type indexEntry[T any, R any] struct {
	valueSrc *reactive.Source[T]
	mapped   R
	dispose  func()
}

// IndexPool recycles indexArray entries by their tail position.
type IndexPool[T any, R any] = Pool[int, *indexEntry[T, R]]

// NewIndexPool creates a pool for MakeIndexArray, disposing any entry
// evicted past limit (or <= 0 for DefaultPoolLimit).
func NewIndexPool[T any, R any](limit int) *IndexPool[T, R] {
	return NewPool[int, *indexEntry[T, R]](limit, func(_ int, e *indexEntry[T, R]) { e.dispose() })
}

// IndexOption configures MakeIndexArray.
type IndexOption[T any, R any] func(*indexConfig[T, R])

type indexConfig[T any, R any] struct {
	fallback func() R
	pool     *IndexPool[T, R]
}

// WithIndexFallback supplies the single element produced while the
// input list is empty.
func WithIndexFallback[T any, R any](fn func() R) IndexOption[T, R] {
	return func(c *indexConfig[T, R]) { c.fallback = fn }
}

// WithIndexPool supplies a pool tail entries are stashed into instead
// of disposed, and recycled from when the tail regrows.
func WithIndexPool[T any, R any](pool *IndexPool[T, R]) IndexOption[T, R] {
	return func(c *indexConfig[T, R]) { c.pool = pool }
}

func resolveIndexOptions[T any, R any](opts []IndexOption[T, R]) indexConfig[T, R] {
	var cfg indexConfig[T, R]
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// MakeIndexArray builds a memoized output list from track keyed by
// position: mapper runs when a position is first reached (and again if
// a shrink disposed that position and the list regrows without a pool
// entry to recycle); while a position persists, only its underlying
// value source is written when the value there changes — the correct choice for positional
// rendering where reordering the whole output per write would be
// wasteful (spec.md §4.8, P12).
func MakeIndexArray[T any, R any](sched *reactive.Scheduler, track func() []T, mapper func(value func() T, index int) R, opts ...IndexOption[T, R]) *reactive.Observer[[]R] {
	cfg := resolveIndexOptions(opts)

	// container persists across every re-run of the memo below, same
	// reasoning as MakeMapArray: an Observer's self-scope is reset
	// (disposing its owned children) before each re-run.
	container := reactive.NewOwner(reactive.CurrentOwner(sched))

	var entries []*indexEntry[T, R]
	var usingFallback bool
	var fallbackEntry *indexEntry[T, R]

	construct := func(value T, idx int) *indexEntry[T, R] {
		if recycled, ok := cfg.pool.Take(idx); ok {
			recycled.valueSrc.Write(value)
			return recycled
		}
		e := &indexEntry[T, R]{}
		reactive.RootIn(sched, container, func(dispose func()) {
			e.dispose = dispose
			e.valueSrc = reactive.MakeObservable(sched, value)
			e.mapped = mapper(func() T { return e.valueSrc.Read() }, idx)
		})
		return e
	}

	disposeTail := func(idx int, e *indexEntry[T, R]) {
		if cfg.pool != nil {
			cfg.pool.Stash(idx, e)
		} else {
			e.dispose()
		}
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

		if newLen == 0 {
			for i, e := range entries {
				disposeTail(i, e)
			}
			entries = nil
			if cfg.fallback != nil && !usingFallback {
				fe := &indexEntry[T, R]{}
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

		oldLen := len(entries)

		minLen := oldLen
		if newLen < minLen {
			minLen = newLen
		}
		for i := 0; i < minLen; i++ {
			entries[i].valueSrc.Write(next[i])
		}

		switch {
		case newLen > oldLen:
			grown := make([]*indexEntry[T, R], newLen)
			copy(grown, entries)
			for i := oldLen; i < newLen; i++ {
				grown[i] = construct(next[i], i)
			}
			entries = grown
		case newLen < oldLen:
			for i := newLen; i < oldLen; i++ {
				disposeTail(i, entries[i])
			}
			entries = entries[:newLen]
		}

		return buildOutput()
	}

	return reactive.MakeMemo(sched, fn, nil)
}
