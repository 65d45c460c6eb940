package telemetry

import "github.com/weaverun/weave/pkg/stws"

// CountingNode decorates a stws.Node, tallying insert/remove/replace
// calls so a caller can feed the result straight into
// Metrics.ObserveReconcile without threading counters through the
// reconciler itself (stws.Reconcile has no knowledge of telemetry).
type CountingNode struct {
	stws.Node
	Counts ReconcileCounts
}

// WrapNode returns a CountingNode delegating to n.
func WrapNode(n stws.Node) *CountingNode {
	return &CountingNode{Node: n}
}

func (c *CountingNode) InsertBefore(child, ref stws.Node) {
	c.Counts.Inserts++
	c.Node.InsertBefore(unwrap(child), unwrap(ref))
}

func (c *CountingNode) RemoveChild(child stws.Node) {
	c.Counts.Removes++
	c.Node.RemoveChild(unwrap(child))
}

func (c *CountingNode) ReplaceChild(newChild, oldChild stws.Node) {
	c.Counts.Replaces++
	c.Node.ReplaceChild(unwrap(newChild), unwrap(oldChild))
}

func unwrap(n stws.Node) stws.Node {
	if n == nil {
		return nil
	}
	if c, ok := n.(*CountingNode); ok {
		return c.Node
	}
	return n
}
