// Package stws implements the Sequential Three-Way Splice reconciler
// (spec.md §4.9): given a parent, its reconciler-owned mirror of the
// current child order, and a target order, it mutates the parent's
// children to match the target issuing as few insert/remove/replace
// operations as it practically can, and updates the mirror to match.
package stws

// Node is the only contract the reconciler needs from a DOM-like sink
// it mutates (spec.md §6 "Node sink contract"): insertBefore (append
// when ref is nil), removeChild, replaceChild, and a child's own
// nextSibling. Nodes are compared by reference equality only — the
// same Go value (pointer, typically) passed in current/next identifies
// the same underlying DOM node across calls.
type Node interface {
	InsertBefore(child, ref Node)
	RemoveChild(child Node)
	ReplaceChild(newChild, oldChild Node)
	NextSibling() Node
}
