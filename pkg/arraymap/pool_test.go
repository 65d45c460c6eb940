package arraymap

import "testing"

func TestPoolEvictsOldestOverLimit(t *testing.T) {
	var evicted []string
	p := NewPool[string, int](2, func(k string, v int) { evicted = append(evicted, k) })

	p.Stash("a", 1)
	p.Stash("b", 2)
	p.Stash("c", 3)

	if len(evicted) != 1 || evicted[0] != "a" {
		t.Fatalf("expected \"a\" evicted first, got %v", evicted)
	}
	if _, ok := p.Take("a"); ok {
		t.Error("expected \"a\" to be gone after eviction")
	}
	if v, ok := p.Take("b"); !ok || v != 2 {
		t.Errorf("expected \"b\" still stashed with value 2, got %v %v", v, ok)
	}
}

func TestPoolTakeRemovesEntry(t *testing.T) {
	p := NewPool[string, int](10, nil)
	p.Stash("x", 42)

	v, ok := p.Take("x")
	if !ok || v != 42 {
		t.Fatalf("expected (42, true), got (%v, %v)", v, ok)
	}
	if _, ok := p.Take("x"); ok {
		t.Error("expected a second Take to miss")
	}
}

func TestNilPoolIsNoOp(t *testing.T) {
	var p *Pool[string, int]
	p.Stash("x", 1)
	if _, ok := p.Take("x"); ok {
		t.Error("expected nil pool Take to always miss")
	}
}
