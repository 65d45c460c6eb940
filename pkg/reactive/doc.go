// Package reactive implements a fine-grained reactive graph: writable
// sources, memoized and lazy observers, an owner tree for scope and
// cleanup, and a multi-queue scheduler that separates data changes,
// eager updates, late-phase effects, and disposals.
//
// The graph is single-threaded and cooperative (see §5 of the design):
// one Scheduler owns one reactive graph. Callers that need isolated
// concurrent graphs (e.g. one per session) construct one Scheduler per
// graph rather than sharing a single scheduler across goroutines.
package reactive
