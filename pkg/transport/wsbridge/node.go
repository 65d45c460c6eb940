package wsbridge

import "github.com/weaverun/weave/pkg/stws"

// RemoteNode is a handle to a node living in the client's mirrored
// tree, identified by a server-assigned id. It implements stws.Node by
// translating each call into a frame written to its owning Bridge.
// As stws.Node values, two handles are equal (==) only when they are
// the same *RemoteNode pointer; the handle NextSibling returns is a new
// pointer, so it is not == to an earlier handle with the same id.
type RemoteNode struct {
	id     uint64
	bridge *Bridge
}

var _ stws.Node = (*RemoteNode)(nil)

// ID returns this node's wire id, stable for its lifetime.
func (n *RemoteNode) ID() uint64 { return n.id }

func (n *RemoteNode) InsertBefore(child, ref stws.Node) {
	c := child.(*RemoteNode)
	var refID uint64
	if ref != nil {
		refID = ref.(*RemoteNode).id
	}
	n.bridge.send(Frame{Op: OpInsertBefore, Parent: n.id, Child: c.id, Ref: refID})
	n.bridge.mirrorInsertBefore(n.id, c.id, refID)
}

func (n *RemoteNode) RemoveChild(child stws.Node) {
	c := child.(*RemoteNode)
	n.bridge.send(Frame{Op: OpRemoveChild, Parent: n.id, Child: c.id})
	n.bridge.mirrorRemove(n.id, c.id)
}

func (n *RemoteNode) ReplaceChild(newChild, oldChild stws.Node) {
	nc := newChild.(*RemoteNode)
	oc := oldChild.(*RemoteNode)
	n.bridge.send(Frame{Op: OpReplaceChild, Parent: n.id, Child: nc.id, Old: oc.id})
	n.bridge.mirrorReplace(n.id, nc.id, oc.id)
}

func (n *RemoteNode) NextSibling() stws.Node {
	id := n.bridge.nextSiblingOf(n.id)
	if id == 0 {
		return nil
	}
	return &RemoteNode{id: id, bridge: n.bridge}
}
