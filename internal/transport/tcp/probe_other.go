//go:build !unix

package tcp

import "net"

// probe has no portable non-blocking peek here; liveness falls back to
// read/write error detection.
func probe(_ net.Conn) bool {
	return true
}
