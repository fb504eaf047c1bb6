package tcp

import (
	"crypto/tls"
	"fmt"
	"net"
)

// Listen opens a plain stream listener on addr.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

// ListenTLS opens a TLS-wrapped stream listener on addr. The certificate
// material is accepted as an opaque handle; acquisition is the caller's
// concern.
func ListenTLS(addr string, cert tls.Certificate) (net.Listener, error) {
	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	ln, err := tls.Listen("tcp", addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("listen tls %s: %w", addr, err)
	}
	return ln, nil
}

// LoadCertificate reads a PEM certificate/key pair from disk.
func LoadCertificate(certFile, keyFile string) (tls.Certificate, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("load certificate: %w", err)
	}
	return cert, nil
}
