package wsbridge

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// newBridgePair stands up a real WebSocket connection between a test
// server and client, grounded on the teacher's ReadLoop/session shape
// (pkg/server/websocket.go), and returns a Bridge driving the server
// side plus a channel receiving every frame the client reads.
func newBridgePair(t *testing.T) (*Bridge, chan Frame, func()) {
	t.Helper()
	var upgrader websocket.Upgrader
	frames := make(chan Frame, 64)
	bridgeCh := make(chan *Bridge, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		b := NewBridge(conn)
		bridgeCh <- b
	}))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	go func() {
		for {
			_, msg, err := clientConn.ReadMessage()
			if err != nil {
				close(frames)
				return
			}
			f, err := DecodeFrame(msg)
			if err != nil {
				continue
			}
			frames <- f
		}
	}()

	b := <-bridgeCh
	return b, frames, func() {
		clientConn.Close()
		b.Close()
		srv.Close()
	}
}

func recvFrame(t *testing.T, frames chan Frame) Frame {
	t.Helper()
	select {
	case f := <-frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return Frame{}
	}
}

func TestBridgeSendsInsertBeforeFrame(t *testing.T) {
	b, frames, cleanup := newBridgePair(t)
	defer cleanup()

	root := b.Root()
	child := b.NewNode("div", nil)

	recvFrame(t, frames) // the OpCreate for child

	root.InsertBefore(child, nil)
	f := recvFrame(t, frames)
	if f.Op != OpInsertBefore || f.Parent != 0 || f.Child != child.ID() || f.Ref != 0 {
		t.Fatalf("unexpected frame: %+v", f)
	}
}

func TestBridgeMirrorTracksNextSibling(t *testing.T) {
	b, frames, cleanup := newBridgePair(t)
	defer cleanup()

	root := b.Root()
	a := b.NewNode("div", nil)
	c := b.NewNode("div", nil)
	recvFrame(t, frames)
	recvFrame(t, frames)

	root.InsertBefore(a, nil)
	root.InsertBefore(c, nil)
	recvFrame(t, frames)
	recvFrame(t, frames)

	if sib := a.NextSibling(); sib == nil || sib.(*RemoteNode).ID() != c.ID() {
		t.Fatalf("expected a's next sibling to be c, got %v", sib)
	}
	if sib := c.NextSibling(); sib != nil {
		t.Fatalf("expected c to have no next sibling, got %v", sib)
	}

	b2 := b.NewNode("div", nil)
	recvFrame(t, frames)
	root.InsertBefore(b2, c)
	recvFrame(t, frames)

	if sib := a.NextSibling(); sib == nil || sib.(*RemoteNode).ID() != b2.ID() {
		t.Fatalf("expected a's next sibling to be b2 after insert, got %v", sib)
	}
}

func TestBridgeMirrorReplaceAndRemove(t *testing.T) {
	b, frames, cleanup := newBridgePair(t)
	defer cleanup()

	root := b.Root()
	a := b.NewNode("div", nil)
	bb := b.NewNode("div", nil)
	recvFrame(t, frames)
	recvFrame(t, frames)

	root.InsertBefore(a, nil)
	root.InsertBefore(bb, nil)
	recvFrame(t, frames)
	recvFrame(t, frames)

	c := b.NewNode("div", nil)
	recvFrame(t, frames)
	root.ReplaceChild(c, a)
	recvFrame(t, frames)

	if sib := c.NextSibling(); sib == nil || sib.(*RemoteNode).ID() != bb.ID() {
		t.Fatalf("expected c's next sibling to be b after replace, got %v", sib)
	}

	root.RemoveChild(c)
	recvFrame(t, frames)
	if parent, ok := b.parentOf[c.ID()]; ok {
		t.Fatalf("expected c to have no parent after removal, got %d", parent)
	}
}
