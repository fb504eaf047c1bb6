package tcp

import (
	"errors"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/vovakirdan/wirehub-server/internal/proto"
)

func pipePeers(t *testing.T) (*Peer, *Peer) {
	t.Helper()
	a, b := net.Pipe()
	pa, pb := NewPeer(a), NewPeer(b)
	t.Cleanup(func() {
		pa.Close()
		pb.Close()
	})
	return pa, pb
}

func TestPeerRoundTrip(t *testing.T) {
	a, b := pipePeers(t)

	go func() {
		a.Write(&proto.Message{MessageID: "m1", Command: proto.CommandEcho, Data: []byte("hi")})
	}()

	m, err := b.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.MessageID != "m1" || string(m.Data) != "hi" {
		t.Fatalf("unexpected message: %+v", m)
	}
}

func TestPeerReadAfterRemoteClose(t *testing.T) {
	a, b := pipePeers(t)
	a.Close()

	if _, err := b.Read(); !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("expected EOF-ish error, got %v", err)
	}
	if b.Usable() {
		t.Fatal("peer still usable after remote close")
	}
}

func TestPeerWriteAfterCloseFails(t *testing.T) {
	a, _ := pipePeers(t)
	a.Close()

	if err := a.Write(&proto.Message{Command: proto.CommandEcho}); err == nil {
		t.Fatal("expected write error on closed peer")
	}
	if a.Usable() {
		t.Fatal("peer reports usable after close")
	}
}

func TestPeerWritesDoNotInterleave(t *testing.T) {
	a, b := pipePeers(t)

	const writers = 8
	const perWriter = 20

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				a.Write(&proto.Message{Command: proto.CommandEcho, Data: []byte("payload")})
			}
		}()
	}

	// Every frame must decode cleanly; interleaved writes would corrupt
	// the length-prefixed stream.
	for i := 0; i < writers*perWriter; i++ {
		m, err := b.Read()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if string(m.Data) != "payload" {
			t.Fatalf("frame %d corrupted: %+v", i, m)
		}
	}
	wg.Wait()
}

func TestPeerAliveOnPipe(t *testing.T) {
	a, _ := pipePeers(t)

	// In-memory pipes have no descriptor to probe; Alive falls back to
	// the closed flag.
	if !a.Alive() {
		t.Fatal("fresh peer reported dead")
	}
	a.Close()
	if a.Alive() {
		t.Fatal("closed peer reported alive")
	}
}

func TestPeerRemoteAddr(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	done := make(chan *Peer, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			done <- nil
			return
		}
		done <- NewPeer(conn)
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	peer := <-done
	if peer == nil {
		t.Fatal("accept failed")
	}
	defer peer.Close()

	if peer.RemoteIP() != "127.0.0.1" || peer.RemotePort() == 0 {
		t.Fatalf("unexpected remote addr %s:%d", peer.RemoteIP(), peer.RemotePort())
	}
}
