package reactive

// RestrictTo builds a computation body that only tracks the explicit
// deps reader, ignoring whatever sources fn itself happens to read
// (fn runs untracked). This is the Go shape of the "on" dependency-list
// idiom: pass the returned func to MakeMemo/MakeObserver/MakeRenderEffect
// in place of a body that tracks everything it touches.
//
// If onChanges is true, fn is not invoked on the computation's initial
// run — prev is returned unchanged — and only fires from the first
// actual dependency change onward.
func RestrictTo[D any, T any](sched *Scheduler, deps func() D, fn func(d D, prev T) T, onChanges ...bool) func(prev T) T {
	deferFirst := len(onChanges) > 0 && onChanges[0]
	first := true

	return func(prev T) T {
		d := deps()

		if deferFirst && first {
			first = false
			return prev
		}
		first = false

		var result T
		sched.Untrack(func() {
			result = fn(d, prev)
		})
		return result
	}
}
