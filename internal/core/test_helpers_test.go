package core

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/wirehub-server/internal/transport/tcp"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// tcpPair returns both ends of a connected loopback stream so every
// test client gets a distinct source tuple.
func tcpPair(t *testing.T) (server, client net.Conn) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			accepted <- nil
			return
		}
		accepted <- conn
	}()

	client, err = net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	server = <-accepted
	if server == nil {
		t.Fatal("accept failed")
	}

	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return server, client
}

// newTestClient builds an unregistered client over a real loopback
// connection and hands back the remote end.
func newTestClient(t *testing.T) (*Client, net.Conn) {
	t.Helper()
	server, client := tcpPair(t)
	return NewClient(tcp.NewPeer(server), time.Second), client
}

type recordingNotifier struct {
	deleted []deletedNotice
}

type deletedNotice struct {
	channel     *Channel
	subscribers []*Client
}

func (n *recordingNotifier) ChannelDeleted(ch *Channel, subs []*Client) {
	n.deleted = append(n.deleted, deletedNotice{channel: ch, subscribers: subs})
}
