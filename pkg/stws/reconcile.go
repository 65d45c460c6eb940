package stws

// Reconcile mutates parent's children so they exactly equal next in
// order, then sets *current to next's contents (spec.md §4.9). current
// is the reconciler-owned mirror of parent's live children from
// position 0; it is read once at the start of the call and treated as
// authoritative for locating insertBefore reference nodes throughout.
//
// Three shared checks (prefix skip, suffix skip, cross-swap) run first
// and settle shapes such as §8 S2 and S3 on their own with zero or
// near-minimal operations; S1's reordered middle is left to the general
// matcher. Whatever middle section remains falls back
// to a classic keyed diff: unmatched same-position pairs on both sides
// collapse into a single replaceChild instead of a remove+insert pair,
// remaining unmatched old nodes are removed, and the rest are placed
// by a longest-increasing-subsequence pass so only nodes actually out
// of order move — never more DOM operations than a classical diff,
// strictly fewer whenever the fast paths above already did the work
// (spec.md invariant J2).
func Reconcile(parent Node, current *[]Node, next []Node) {
	cur := append([]Node(nil), (*current)...)

	start := 0
	currentEnd := len(cur)
	nextEnd := len(next)

	for start < currentEnd && start < nextEnd {
		progressed := false

		for start < currentEnd && start < nextEnd && cur[start] == next[start] {
			start++
			progressed = true
		}
		if start >= currentEnd || start >= nextEnd {
			break
		}

		for currentEnd > start && nextEnd > start && cur[currentEnd-1] == next[nextEnd-1] {
			currentEnd--
			nextEnd--
			progressed = true
		}
		if start >= currentEnd || start >= nextEnd {
			break
		}

		if cur[start] == next[nextEnd-1] && cur[currentEnd-1] == next[start] {
			crossSwap(parent, cur, start, currentEnd)
			cur[start], cur[currentEnd-1] = cur[currentEnd-1], cur[start]
			start++
			currentEnd--
			nextEnd--
			continue
		}

		if !progressed {
			break
		}
	}

	if start < currentEnd && start < nextEnd {
		var outerRef Node
		if currentEnd < len(cur) {
			outerRef = cur[currentEnd]
		}
		reconcileGeneral(parent, cur[start:currentEnd], next[start:nextEnd], outerRef)
	}

	if start == currentEnd {
		var ref Node
		if currentEnd < len(cur) {
			ref = cur[currentEnd]
		}
		for k := start; k < nextEnd; k++ {
			parent.InsertBefore(next[k], ref)
		}
	} else if start == nextEnd {
		for k := start; k < currentEnd; k++ {
			parent.RemoveChild(cur[k])
		}
	}

	*current = append([]Node(nil), next...)
}

// crossSwap handles shared check 3: the node at the front of the
// window matches the node wanted at the back, and vice versa. Moving
// the front node to the end of the window leaves the back node already
// in its target front position when the window is exactly two nodes
// (the move is elided); a longer window needs a second move to bring
// the back node to the front.
func crossSwap(parent Node, cur []Node, start, currentEnd int) {
	a := cur[start]
	b := cur[currentEnd-1]

	var afterWindow Node
	if currentEnd < len(cur) {
		afterWindow = cur[currentEnd]
	}
	parent.InsertBefore(a, afterWindow)

	if currentEnd-start > 2 {
		parent.InsertBefore(b, cur[start+1])
	}
}

// reconcileGeneral handles the remaining middle section once the
// shared checks can no longer make progress. old/new are the
// unresolved sub-slices of cur/next; outerRef is the DOM node that
// immediately follows this whole section once it settles (nil at the
// tail of the list).
func reconcileGeneral(parent Node, old, next []Node, outerRef Node) {
	keyIndex := make(map[Node]int, len(next))
	for i, n := range next {
		keyIndex[n] = i
	}

	// sources[j] is 0 for "nothing in old matches next[j]", else
	// 1+oldIndex — the longest-increasing-subsequence pass below treats
	// 0 as a non-participating sentinel.
	sources := make([]int, len(next))
	matchedOld := make([]bool, len(old))
	for i, n := range old {
		if j, ok := keyIndex[n]; ok {
			sources[j] = i + 1
			matchedOld[i] = true
		}
	}

	// Same-local-index unmatched pairs collapse into a single replace,
	// cheaper than a remove+insert. The new node takes the old node's
	// slot and joins the LIS pass below like any matched node, so it is
	// moved only when that slot is out of order.
	limit := len(old)
	if len(next) < limit {
		limit = len(next)
	}
	for i := 0; i < limit; i++ {
		if !matchedOld[i] && sources[i] == 0 {
			parent.ReplaceChild(next[i], old[i])
			matchedOld[i] = true
			sources[i] = i + 1
		}
	}

	for i, n := range old {
		if !matchedOld[i] {
			parent.RemoveChild(n)
		}
	}

	seq := longestIncreasingSubsequence(sources)
	seqPos := len(seq) - 1

	for i := len(next) - 1; i >= 0; i-- {
		inSeq := seqPos >= 0 && i == seq[seqPos]
		if inSeq {
			seqPos--
		}

		var ref Node
		if i+1 < len(next) {
			ref = next[i+1]
		} else {
			ref = outerRef
		}

		if sources[i] == 0 {
			parent.InsertBefore(next[i], ref)
		} else if !inSeq {
			parent.InsertBefore(next[i], ref)
		}
	}
}
