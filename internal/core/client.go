package core

import (
	"sync"
	"time"

	"github.com/vovakirdan/wirehub-server/internal/proto"
	"github.com/vovakirdan/wirehub-server/internal/transport/tcp"
)

// Client is one connected peer as the registry sees it. Before login it
// is addressable only by its source tuple; login assigns identity. The
// registry owns the canonical record; workers hold borrowed references
// whose validity ends at eviction.
type Client struct {
	mu       sync.RWMutex
	guid     string
	email    string
	loggedIn bool
	peer     *tcp.Peer

	createdUTC time.Time
	updatedUTC time.Time

	pending *Correlator
}

// NewClient wraps a freshly accepted peer.
func NewClient(peer *tcp.Peer, syncTimeout time.Duration) *Client {
	now := time.Now().UTC()
	return &Client{
		peer:       peer,
		createdUTC: now,
		updatedUTC: now,
		pending:    NewCorrelator(syncTimeout),
	}
}

// GUID returns the client's identity, empty before login.
func (c *Client) GUID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.guid
}

// Email returns the identity confirmed at login.
func (c *Client) Email() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.email
}

// LoggedIn reports whether identity has been assigned.
func (c *Client) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loggedIn
}

// Identity returns guid, email and the logged-in flag atomically.
func (c *Client) Identity() (guid, email string, loggedIn bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.guid, c.email, c.loggedIn
}

// SetIdentity records a successful login.
func (c *Client) SetIdentity(guid, email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guid = guid
	c.email = email
	c.loggedIn = true
	c.updatedUTC = time.Now().UTC()
}

// Peer returns the current transport handle.
func (c *Client) Peer() *tcp.Peer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.peer
}

// ReplacePeer swaps the transport handle, returning the previous one.
// Used when a client reconnects through the same source tuple.
func (c *Client) ReplacePeer(p *tcp.Peer) *tcp.Peer {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.peer
	c.peer = p
	c.updatedUTC = time.Now().UTC()
	return old
}

// Addr returns the source tuple of the current transport handle.
func (c *Client) Addr() string {
	return c.Peer().RemoteAddr()
}

// Send writes one message to the client's current transport handle.
func (c *Client) Send(m *proto.Message) error {
	return c.Peer().Write(m)
}

// Pending returns the client's sync-request correlator.
func (c *Client) Pending() *Correlator {
	return c.pending
}

// Info snapshots the client for listings: no credentials, no transport.
func (c *Client) Info() proto.ClientInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return proto.ClientInfo{
		ClientGUID: c.guid,
		Email:      c.email,
		SourceIP:   c.peer.RemoteIP(),
		SourcePort: c.peer.RemotePort(),
		CreatedUTC: c.createdUTC,
		UpdatedUTC: c.updatedUTC,
	}
}
