package reactive

// idCounter hands out unique identifiers for sources, observers, and
// owners. The graph is single-threaded (§5), so this is a plain counter
// rather than the teacher's atomic one — there is no cross-goroutine
// access to race against.
var idCounter uint64

func nextID() uint64 {
	idCounter++
	return idCounter
}
