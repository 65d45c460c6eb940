// Package arraymap implements the two array-mapping operators of
// spec.md §4.8: mapArray (value-keyed) and indexArray (position-keyed).
// Both build a memoized output list from a reactive list input and a
// mapping function, reusing already-constructed entries across updates
// instead of tearing the whole list down and rebuilding it.
package arraymap

// DefaultPoolLimit is the implementation constant used when a pool is
// constructed without an explicit limit (spec.md §6 Configuration).
const DefaultPoolLimit = 500

// Pool stashes entries removed from a mapArray/indexArray output for
// possible reuse by a later value (keyed) or index (indexed) that
// matches, evicting the oldest stashed entry once over limit. A nil
// *Pool is a valid no-op pool: Stash discards, Take always misses.
type Pool[K comparable, V any] struct {
	limit   int
	order   []K
	entries map[K]V
	onEvict func(K, V)
}

// NewPool creates a pool keyed by K, calling onEvict on any entry
// pushed out by the limit (the caller's eviction hook, typically the
// entry's real disposer).
func NewPool[K comparable, V any](limit int, onEvict func(K, V)) *Pool[K, V] {
	if limit <= 0 {
		limit = DefaultPoolLimit
	}
	return &Pool[K, V]{limit: limit, entries: make(map[K]V), onEvict: onEvict}
}

// Stash keeps value addressable by key for later Take, evicting the
// oldest stashed entry if this push exceeds the configured limit.
func (p *Pool[K, V]) Stash(key K, value V) {
	if p == nil {
		return
	}
	if _, exists := p.entries[key]; !exists {
		p.order = append(p.order, key)
	}
	p.entries[key] = value
	for len(p.order) > p.limit {
		oldest := p.order[0]
		p.order = p.order[1:]
		if v, ok := p.entries[oldest]; ok {
			delete(p.entries, oldest)
			if p.onEvict != nil {
				p.onEvict(oldest, v)
			}
		}
	}
}

// Take removes and returns the entry stashed under key, if any.
func (p *Pool[K, V]) Take(key K) (V, bool) {
	var zero V
	if p == nil {
		return zero, false
	}
	v, ok := p.entries[key]
	if !ok {
		return zero, false
	}
	delete(p.entries, key)
	for i, k := range p.order {
		if k == key {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return v, true
}

// Drain evicts every remaining stashed entry through onEvict, for
// tearing a pool down alongside its owning mapArray/indexArray.
func (p *Pool[K, V]) Drain() {
	if p == nil {
		return
	}
	for _, k := range p.order {
		if v, ok := p.entries[k]; ok {
			delete(p.entries, k)
			if p.onEvict != nil {
				p.onEvict(k, v)
			}
		}
	}
	p.order = nil
}
