package tcp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/vovakirdan/wirehub-server/internal/proto"
)

// Peer wraps one accepted stream connection. Reads belong to a single
// owning goroutine; writes may come from many and are serialized so no
// two frames interleave on the wire.
type Peer struct {
	conn net.Conn
	ip   string
	port int

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
}

// NewPeer wraps an accepted connection, plain or TLS.
func NewPeer(conn net.Conn) *Peer {
	p := &Peer{conn: conn}
	if host, portStr, err := net.SplitHostPort(conn.RemoteAddr().String()); err == nil {
		p.ip = host
		p.port, _ = strconv.Atoi(portStr)
	}
	return p
}

// RemoteIP returns the peer's source address.
func (p *Peer) RemoteIP() string { return p.ip }

// RemotePort returns the peer's source port.
func (p *Peer) RemotePort() int { return p.port }

// RemoteAddr returns the peer's source tuple as "ip:port".
func (p *Peer) RemoteAddr() string {
	return net.JoinHostPort(p.ip, strconv.Itoa(p.port))
}

// Read blocks until one complete message is available. It returns io.EOF
// once the peer has closed, and proto.ErrMalformed (stream still usable)
// when a whole body arrived but did not decode.
func (p *Peer) Read() (*proto.Message, error) {
	if p.closed.Load() {
		return nil, net.ErrClosed
	}
	m, err := proto.ReadFrame(p.conn)
	if err == nil {
		return m, nil
	}
	if errors.Is(err, proto.ErrMalformed) {
		return nil, err
	}
	p.markClosed()
	if err == io.EOF {
		return nil, io.EOF
	}
	return nil, fmt.Errorf("read peer %s: %w", p.RemoteAddr(), err)
}

// Write sends one message. Any write error leaves the connection closed:
// a half-written frame would desynchronize the stream for good.
func (p *Peer) Write(m *proto.Message) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if p.closed.Load() {
		return net.ErrClosed
	}
	if err := proto.WriteFrame(p.conn, m); err != nil {
		p.markClosed()
		return fmt.Errorf("write peer %s: %w", p.RemoteAddr(), err)
	}
	return nil
}

// Alive probes whether the peer is still reachable without consuming
// data. Must only be called from the goroutine that owns reads; a
// concurrent blocking Read would make the probe wait on the same
// descriptor.
func (p *Peer) Alive() bool {
	if p.closed.Load() {
		return false
	}
	return probe(p.conn)
}

// Usable reports whether the connection has not been torn down. Safe
// from any goroutine; heartbeat supervisors poll this between writes.
func (p *Peer) Usable() bool {
	return !p.closed.Load()
}

// Close tears the connection down. Idempotent.
func (p *Peer) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		err = p.conn.Close()
	})
	return err
}

func (p *Peer) markClosed() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.conn.Close()
	})
}
