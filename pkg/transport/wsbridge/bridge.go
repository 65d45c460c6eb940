package wsbridge

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Bridge owns one WebSocket connection to a thin client and the id
// space its RemoteNodes live in. Grounded on the teacher's
// Session.ReadLoop (pkg/server/websocket.go): one blocking read loop
// per connection, decoding frames and handing each to OnClientFrame, plus a write
// side that serializes outbound frames under a single mutex (gorilla's
// Conn forbids concurrent writers).
type Bridge struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	nextID   uint64
	nodeMu   sync.Mutex
	children map[uint64][]uint64
	parentOf map[uint64]uint64

	// OnClientFrame, if set, is called for every frame read from the
	// client (acks, resync requests). Runs on the ReadLoop goroutine.
	OnClientFrame func(Frame)
	// OnError, if set, is called for a frame that fails to decode (the
	// loop continues), and when ReadLoop exits on a close whose code is
	// not normal, going-away or abnormal. Other read errors end the loop
	// without calling it.
	OnError func(error)
}

// NewBridge wraps an already-upgraded WebSocket connection.
func NewBridge(conn *websocket.Conn) *Bridge {
	return &Bridge{
		conn:     conn,
		children: make(map[uint64][]uint64),
		parentOf: make(map[uint64]uint64),
	}
}

// Root returns the RemoteNode representing the client's mount point
// (id 0, never sent in an OpCreate — the client is expected to already
// have a container element it associates with id 0).
func (b *Bridge) Root() *RemoteNode {
	return &RemoteNode{id: 0, bridge: b}
}

// NewNode allocates a fresh node id, tells the client to materialize it
// (kind is an opaque tag like "div" or "text", payload is
// implementation-defined attribute/content encoding), and returns a
// handle usable as a stws.Node.
func (b *Bridge) NewNode(kind string, payload []byte) *RemoteNode {
	id := atomic.AddUint64(&b.nextID, 1)
	b.send(Frame{Op: OpCreate, Child: id, Kind: kind, Payload: payload})
	return &RemoteNode{id: id, bridge: b}
}

func (b *Bridge) send(f Frame) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return b.conn.WriteMessage(websocket.BinaryMessage, f.Encode())
}

// ReadLoop blocks, decoding frames from the client until the
// connection closes or errors. Intended to run on its own goroutine.
func (b *Bridge) ReadLoop(readTimeout time.Duration) {
	for {
		if readTimeout > 0 {
			b.conn.SetReadDeadline(time.Now().Add(readTimeout))
		}
		_, msg, err := b.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) && b.OnError != nil {
				b.OnError(err)
			}
			return
		}
		frame, err := DecodeFrame(msg)
		if err != nil {
			if b.OnError != nil {
				b.OnError(err)
			}
			continue
		}
		if b.OnClientFrame != nil {
			b.OnClientFrame(frame)
		}
	}
}

// Close closes the underlying connection.
func (b *Bridge) Close() error {
	return b.conn.Close()
}

func (b *Bridge) mirrorInsertBefore(parent, child, ref uint64) {
	b.nodeMu.Lock()
	defer b.nodeMu.Unlock()
	siblings := b.removeFromMirror(parent, child)
	b.parentOf[child] = parent
	if ref == 0 {
		b.children[parent] = append(siblings, child)
		return
	}
	idx := indexOfID(siblings, ref)
	if idx < 0 {
		b.children[parent] = append(siblings, child)
		return
	}
	out := make([]uint64, 0, len(siblings)+1)
	out = append(out, siblings[:idx]...)
	out = append(out, child)
	out = append(out, siblings[idx:]...)
	b.children[parent] = out
}

func (b *Bridge) mirrorRemove(parent, child uint64) {
	b.nodeMu.Lock()
	defer b.nodeMu.Unlock()
	b.children[parent] = b.removeFromMirror(parent, child)
	delete(b.parentOf, child)
}

func (b *Bridge) mirrorReplace(parent, newChild, oldChild uint64) {
	b.nodeMu.Lock()
	defer b.nodeMu.Unlock()
	siblings := b.children[parent]
	for i, id := range siblings {
		if id == oldChild {
			siblings[i] = newChild
			b.parentOf[newChild] = parent
			delete(b.parentOf, oldChild)
			return
		}
	}
}

// removeFromMirror returns parent's children with child removed. Must
// be called with nodeMu held.
func (b *Bridge) removeFromMirror(parent, child uint64) []uint64 {
	siblings := b.children[parent]
	idx := indexOfID(siblings, child)
	if idx < 0 {
		return siblings
	}
	return append(siblings[:idx], siblings[idx+1:]...)
}

func (b *Bridge) nextSiblingOf(child uint64) uint64 {
	b.nodeMu.Lock()
	defer b.nodeMu.Unlock()
	parent, ok := b.parentOf[child]
	if !ok {
		return 0
	}
	siblings := b.children[parent]
	idx := indexOfID(siblings, child)
	if idx < 0 || idx+1 >= len(siblings) {
		return 0
	}
	return siblings[idx+1]
}

func indexOfID(ids []uint64, target uint64) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return -1
}
