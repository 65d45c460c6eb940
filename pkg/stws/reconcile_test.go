package stws

import "testing"

// testNode is a leaf value identified by reference (its pointer), the
// minimum Node implementation needed to drive Reconcile in tests: a
// shared ledger tracks live order and records each mutating call.
type testNode struct {
	label string
}

func (n *testNode) InsertBefore(child, ref Node)        {}
func (n *testNode) RemoveChild(child Node)              {}
func (n *testNode) ReplaceChild(newChild, oldChild Node) {}
func (n *testNode) NextSibling() Node                   { return nil }

type op struct {
	kind string // "insert", "remove", "replace"
	a, b string
}

// fakeParent is the Node under test: it owns a live ordered child list
// and appends one op per mutating call, so tests can assert both the
// exact operation count (P8) and the resulting order (P7).
type fakeParent struct {
	children []Node
	ops      []op
}

func (p *fakeParent) label(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.(*testNode).label
}

func (p *fakeParent) indexOf(n Node) int {
	for i, c := range p.children {
		if c == n {
			return i
		}
	}
	return -1
}

func (p *fakeParent) InsertBefore(child, ref Node) {
	p.ops = append(p.ops, op{"insert", p.label(child), p.label(ref)})
	if i := p.indexOf(child); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	if ref == nil {
		p.children = append(p.children, child)
		return
	}
	ri := p.indexOf(ref)
	p.children = append(p.children[:ri], append([]Node{child}, p.children[ri:]...)...)
}

func (p *fakeParent) RemoveChild(child Node) {
	p.ops = append(p.ops, op{"remove", p.label(child), ""})
	if i := p.indexOf(child); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
}

func (p *fakeParent) ReplaceChild(newChild, oldChild Node) {
	p.ops = append(p.ops, op{"replace", p.label(newChild), p.label(oldChild)})
	if i := p.indexOf(oldChild); i >= 0 {
		p.children[i] = newChild
	}
}

func (p *fakeParent) NextSibling() Node { return nil }

func nodes(labels ...string) []Node {
	out := make([]Node, len(labels))
	byLabel := map[string]*testNode{}
	for i, l := range labels {
		n, ok := byLabel[l]
		if !ok {
			n = &testNode{label: l}
			byLabel[l] = n
		}
		out[i] = n
	}
	return out
}

func labelsOf(ns []Node) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.(*testNode).label
	}
	return out
}

func assertOrder(t *testing.T, p *fakeParent, current *[]Node, want []string) {
	t.Helper()
	got := labelsOf(p.children)
	if len(got) != len(want) {
		t.Fatalf("parent children = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("parent children = %v, want %v", got, want)
		}
	}
	mirrored := labelsOf(*current)
	if len(mirrored) != len(want) {
		t.Fatalf("current mirror = %v, want %v", mirrored, want)
	}
	for i := range mirrored {
		if mirrored[i] != want[i] {
			t.Fatalf("current mirror = %v, want %v", mirrored, want)
		}
	}
}

// TestReconcileReorderAndReplace is spec.md §8 S1, verbatim: current
// [a,b,c,d,e,f], next [a,c,b,h,f,e]. Exactly 3 DOM mutations: c moves
// ahead of b, d is replaced by h, and f moves ahead of e — in that
// order, since the replace (a same-position unmatched pair) is applied
// before the LIS pass places the out-of-order survivors back to front.
func TestReconcileReorderAndReplace(t *testing.T) {
	prevLabels := []string{"a", "b", "c", "d", "e", "f"}
	nextLabels := []string{"a", "c", "b", "h", "f", "e"}

	byLabel := map[string]*testNode{}
	prev := make([]Node, len(prevLabels))
	for i, l := range prevLabels {
		n := &testNode{label: l}
		byLabel[l] = n
		prev[i] = n
	}
	next := make([]Node, len(nextLabels))
	for i, l := range nextLabels {
		if n, ok := byLabel[l]; ok {
			next[i] = n
		} else {
			next[i] = &testNode{label: l}
		}
	}

	p := &fakeParent{children: append([]Node(nil), prev...)}
	current := append([]Node(nil), prev...)

	Reconcile(p, &current, next)

	assertOrder(t, p, &current, nextLabels)

	want := []op{
		{"replace", "h", "d"},
		{"insert", "f", "e"},
		{"insert", "c", "b"},
	}
	if len(p.ops) != len(want) {
		t.Fatalf("expected exactly %d ops, got %d: %+v", len(want), len(p.ops), p.ops)
	}
	for i, w := range want {
		if p.ops[i] != w {
			t.Fatalf("op[%d] = %+v, want %+v (full: %+v)", i, p.ops[i], w, p.ops)
		}
	}
}

// TestReconcileSuffixInsert is spec.md §8 S2, verbatim: current
// [a,b,c], next [a,b,c,d,e]. Exactly 2 insertBefore calls with
// ref=nil, no moves or replaces.
func TestReconcileSuffixInsert(t *testing.T) {
	prev := nodes("a", "b", "c")
	tail := nodes("d", "e")
	next := append(append([]Node(nil), prev...), tail...)

	p := &fakeParent{children: append([]Node(nil), prev...)}
	current := append([]Node(nil), prev...)

	Reconcile(p, &current, next)

	assertOrder(t, p, &current, []string{"a", "b", "c", "d", "e"})

	want := []op{
		{"insert", "d", "<nil>"},
		{"insert", "e", "<nil>"},
	}
	if len(p.ops) != len(want) {
		t.Fatalf("expected exactly %d ops, got %d: %+v", len(want), len(p.ops), p.ops)
	}
	for i, w := range want {
		if p.ops[i] != w {
			t.Fatalf("op[%d] = %+v, want %+v (full: %+v)", i, p.ops[i], w, p.ops)
		}
	}
}

// TestReconcileReverse is spec.md §8 S3: full reversal of a 4-element
// list is satisfiable with at most 4 operations via two cross-swaps.
func TestReconcileReverse(t *testing.T) {
	prev := nodes("a", "b", "c", "d")
	next := []Node{prev[3], prev[2], prev[1], prev[0]}

	p := &fakeParent{children: append([]Node(nil), prev...)}
	current := append([]Node(nil), prev...)

	Reconcile(p, &current, next)

	assertOrder(t, p, &current, []string{"d", "c", "b", "a"})
	if len(p.ops) > 4 {
		t.Fatalf("expected <= 4 ops, got %d: %+v", len(p.ops), p.ops)
	}
}

func TestReconcilePureAppend(t *testing.T) {
	prev := nodes("a", "b")
	tail := nodes("c", "d")
	next := append(append([]Node(nil), prev...), tail...)

	p := &fakeParent{children: append([]Node(nil), prev...)}
	current := append([]Node(nil), prev...)

	Reconcile(p, &current, next)

	assertOrder(t, p, &current, []string{"a", "b", "c", "d"})
	for _, o := range p.ops {
		if o.kind != "insert" {
			t.Fatalf("expected only inserts for pure append, got %+v", p.ops)
		}
	}
}

func TestReconcilePureRemoveFromMiddle(t *testing.T) {
	prev := nodes("a", "b", "c", "d")
	next := []Node{prev[0], prev[3]}

	p := &fakeParent{children: append([]Node(nil), prev...)}
	current := append([]Node(nil), prev...)

	Reconcile(p, &current, next)

	assertOrder(t, p, &current, []string{"a", "d"})
	for _, o := range p.ops {
		if o.kind != "remove" {
			t.Fatalf("expected only removes, got %+v", p.ops)
		}
	}
	if len(p.ops) != 2 {
		t.Fatalf("expected 2 removes, got %d: %+v", len(p.ops), p.ops)
	}
}

func TestReconcileAllNewReplacesAll(t *testing.T) {
	prev := nodes("a", "b", "c")
	next := nodes("x", "y", "z")

	p := &fakeParent{children: append([]Node(nil), prev...)}
	current := append([]Node(nil), prev...)

	Reconcile(p, &current, next)

	assertOrder(t, p, &current, []string{"x", "y", "z"})
}

func TestReconcileEmptyToPopulated(t *testing.T) {
	var current []Node
	next := nodes("a", "b", "c")

	p := &fakeParent{}
	Reconcile(p, &current, next)

	assertOrder(t, p, &current, []string{"a", "b", "c"})
}

func TestReconcilePopulatedToEmpty(t *testing.T) {
	prev := nodes("a", "b", "c")
	current := append([]Node(nil), prev...)

	p := &fakeParent{children: append([]Node(nil), prev...)}
	Reconcile(p, &current, nil)

	if len(p.children) != 0 {
		t.Fatalf("expected empty parent, got %v", labelsOf(p.children))
	}
	if len(current) != 0 {
		t.Fatalf("expected empty mirror, got %v", labelsOf(current))
	}
}

func TestReconcileNoChange(t *testing.T) {
	prev := nodes("a", "b", "c")
	current := append([]Node(nil), prev...)
	next := append([]Node(nil), prev...)

	p := &fakeParent{children: append([]Node(nil), prev...)}
	Reconcile(p, &current, next)

	if len(p.ops) != 0 {
		t.Fatalf("expected no ops for identical lists, got %+v", p.ops)
	}
	assertOrder(t, p, &current, []string{"a", "b", "c"})
}
