//go:build unix

package tcp

import (
	"crypto/tls"
	"net"
	"syscall"
)

// probe does a non-blocking MSG_PEEK on the raw descriptor: a zero-byte
// read on a readable socket means the peer half-closed. TLS connections
// are probed through the underlying transport so the record layer is
// not disturbed.
func probe(conn net.Conn) bool {
	if tc, ok := conn.(*tls.Conn); ok {
		conn = tc.NetConn()
	}
	sc, ok := conn.(syscall.Conn)
	if !ok {
		// In-memory pipes and test doubles have no descriptor to poll.
		return true
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return false
	}

	alive := true
	readErr := raw.Read(func(fd uintptr) bool {
		var buf [1]byte
		n, _, errno := syscall.Recvfrom(int(fd), buf[:], syscall.MSG_PEEK|syscall.MSG_DONTWAIT)
		switch {
		case n > 0:
			alive = true
		case errno == syscall.EAGAIN || errno == syscall.EWOULDBLOCK:
			alive = true
		default:
			// Orderly shutdown (n == 0) or a hard socket error.
			alive = false
		}
		return true
	})
	if readErr != nil {
		return false
	}
	return alive
}
