package reactive

import "reflect"

// defaultEquals provides type-appropriate equality checking, the same
// fast-path-then-reflect strategy as the teacher's defaultEquals
// (pkg/vango/signal.go), generalized to any T via a single reflect
// comparison rather than a per-primitive-kind switch, since this
// package does not need the numeric convenience methods that drove the
// teacher's exhaustive switch.
func defaultEquals[T any](a, b T) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == bv
	}
	if reflect.TypeOf(av).Comparable() {
		return av == bv
	}
	return reflect.DeepEqual(av, bv)
}

// NeverEqual returns an equality predicate that always reports "not
// equal", disabling the equality short-circuit end-to-end for a
// Source/Memo/Computed, per spec.md §6 Configuration.
func NeverEqual[T any]() func(a, b T) bool {
	return func(T, T) bool { return false }
}
