package core

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/wirehub-server/internal/proto"
	"github.com/vovakirdan/wirehub-server/internal/transport/tcp"
)

// ChannelNotifier receives channel-deleted notifications after the
// registry has released its locks. Dispatch is scheduled work, never
// done inside a critical section.
type ChannelNotifier interface {
	ChannelDeleted(ch *Channel, subscribers []*Client)
}

// Registry is the sole authority over the client and channel
// collections. Each collection has its own lock; no registry method
// calls another registry method while holding a lock, and no method
// holds both locks at once.
type Registry struct {
	log *zerolog.Logger

	clientsMu sync.RWMutex
	clients   []*Client

	channelsMu sync.RWMutex
	channels   []*Channel

	notify ChannelNotifier
}

// NewRegistry builds an empty registry.
func NewRegistry(logger *zerolog.Logger) *Registry {
	return &Registry{log: logger}
}

// SetNotifier installs the channel-deletion notifier. Must be called
// before the first connection is accepted.
func (r *Registry) SetNotifier(n ChannelNotifier) {
	r.notify = n
}

// ---- clients ----

// AddClient inserts c, or, when an unauthenticated record already holds
// the same source tuple, swaps that record's transport handle for c's
// and refreshes its update timestamp. Returns the canonical record the
// caller must serve. This is what lets a client reconnect through the
// same source tuple before login completes.
func (r *Registry) AddClient(c *Client) *Client {
	addr := c.Addr()

	r.clientsMu.Lock()
	defer r.clientsMu.Unlock()

	for _, existing := range r.clients {
		if existing.LoggedIn() || existing == c {
			continue
		}
		if existing.Addr() == addr {
			old := existing.ReplacePeer(c.Peer())
			old.Close()
			r.log.Debug().Str("addr", addr).Msg("replaced transport handle for reconnecting client")
			return existing
		}
	}

	r.clients = append(r.clients, c)
	return c
}

// RemoveClient removes the exact record c. Returns false when c is no
// longer registered (already evicted or superseded).
func (r *Registry) RemoveClient(c *Client) bool {
	r.clientsMu.Lock()
	defer r.clientsMu.Unlock()
	return r.removeClientLocked(c)
}

// RemoveClientIfPeer removes c only while its transport handle is still
// p. Workers use this so a record taken over by a newer connection is
// left alone.
func (r *Registry) RemoveClientIfPeer(c *Client, p *tcp.Peer) bool {
	r.clientsMu.Lock()
	defer r.clientsMu.Unlock()
	if c.Peer() != p {
		return false
	}
	return r.removeClientLocked(c)
}

func (r *Registry) removeClientLocked(c *Client) bool {
	for i, existing := range r.clients {
		if existing == c {
			r.clients = append(r.clients[:i], r.clients[i+1:]...)
			return true
		}
	}
	return false
}

// Login assigns identity to c. When another record already carries the
// same guid (a reconnect from a different source tuple while the old
// connection still exists), that record is dropped from the registry
// and returned so the caller can tear its transport down; the guid now
// maps to c's handle.
func (r *Registry) Login(c *Client, guid, email string) (superseded *Client) {
	r.clientsMu.Lock()
	for _, existing := range r.clients {
		if existing != c && existing.GUID() == guid {
			superseded = existing
			break
		}
	}
	if superseded != nil {
		r.removeClientLocked(superseded)
	}
	r.clientsMu.Unlock()

	c.SetIdentity(guid, email)

	// Channel membership follows the identity, not the dead record.
	if superseded != nil {
		r.channelsMu.Lock()
		for _, ch := range r.channels {
			for i, sub := range ch.subscribers {
				if sub == superseded {
					ch.subscribers[i] = c
				}
			}
		}
		r.channelsMu.Unlock()
	}
	return superseded
}

// GetClientByGUID finds a logged-in client by identity.
func (r *Registry) GetClientByGUID(guid string) (*Client, bool) {
	if guid == "" {
		return nil, false
	}
	r.clientsMu.RLock()
	defer r.clientsMu.RUnlock()
	for _, c := range r.clients {
		if c.GUID() == guid {
			return c, true
		}
	}
	return nil, false
}

// GetAllClients returns a snapshot safe to iterate without locking.
func (r *Registry) GetAllClients() []*Client {
	r.clientsMu.RLock()
	defer r.clientsMu.RUnlock()
	out := make([]*Client, len(r.clients))
	copy(out, r.clients)
	return out
}

// IsClientConnected reports whether a logged-in client holds the guid.
func (r *Registry) IsClientConnected(guid string) bool {
	_, ok := r.GetClientByGUID(guid)
	return ok
}

// ---- channels ----

// AddChannel registers ch with owner as its first subscriber. Fails
// only on a guid collision; name collisions are the caller's pre-check.
func (r *Registry) AddChannel(owner *Client, ch *Channel) bool {
	r.channelsMu.Lock()
	defer r.channelsMu.Unlock()

	for _, existing := range r.channels {
		if existing.GUID == ch.GUID {
			return false
		}
	}
	ch.OwnerGUID = owner.GUID()
	ch.subscribers = []*Client{owner}
	r.channels = append(r.channels, ch)
	return true
}

// RemoveChannel removes the channel and notifies every other subscriber
// that the owner deleted it. The notifier runs after the channels lock
// is released.
func (r *Registry) RemoveChannel(guid string) (*Channel, bool) {
	ch, subs := r.removeChannelInternal(guid)
	if ch == nil {
		return nil, false
	}
	r.dispatchChannelDeleted(ch, subs)
	return ch, true
}

func (r *Registry) removeChannelInternal(guid string) (*Channel, []*Client) {
	r.channelsMu.Lock()
	defer r.channelsMu.Unlock()
	for i, ch := range r.channels {
		if ch.GUID == guid {
			r.channels = append(r.channels[:i], r.channels[i+1:]...)
			return ch, ch.snapshotSubscribers()
		}
	}
	return nil, nil
}

func (r *Registry) dispatchChannelDeleted(ch *Channel, subs []*Client) {
	if r.notify == nil {
		return
	}
	others := subs[:0:0]
	for _, sub := range subs {
		if sub.GUID() != ch.OwnerGUID {
			others = append(others, sub)
		}
	}
	if len(others) > 0 {
		r.notify.ChannelDeleted(ch, others)
	}
}

// AddChannelSubscriber subscribes c. Joining twice is idempotent:
// added is false on the second join.
func (r *Registry) AddChannelSubscriber(guid string, c *Client) (added bool, err error) {
	r.channelsMu.Lock()
	defer r.channelsMu.Unlock()
	ch := r.channelByGUIDLocked(guid)
	if ch == nil {
		return false, ErrChannelNotFound
	}
	return ch.addSubscriber(c), nil
}

// RemoveChannelSubscriber unsubscribes by client guid.
func (r *Registry) RemoveChannelSubscriber(guid, clientGUID string) (removed bool, err error) {
	r.channelsMu.Lock()
	defer r.channelsMu.Unlock()
	ch := r.channelByGUIDLocked(guid)
	if ch == nil {
		return false, ErrChannelNotFound
	}
	return ch.removeSubscriber(clientGUID), nil
}

// IsChannelSubscriber reports membership by client guid.
func (r *Registry) IsChannelSubscriber(guid, clientGUID string) bool {
	r.channelsMu.RLock()
	defer r.channelsMu.RUnlock()
	ch := r.channelByGUIDLocked(guid)
	return ch != nil && ch.hasSubscriber(clientGUID)
}

// GetChannelByGUID finds a channel by identifier.
func (r *Registry) GetChannelByGUID(guid string) (*Channel, bool) {
	r.channelsMu.RLock()
	defer r.channelsMu.RUnlock()
	ch := r.channelByGUIDLocked(guid)
	return ch, ch != nil
}

// GetChannelByName finds a channel by case-insensitive name.
func (r *Registry) GetChannelByName(name string) (*Channel, bool) {
	r.channelsMu.RLock()
	defer r.channelsMu.RUnlock()
	for _, ch := range r.channels {
		if strings.EqualFold(ch.Name, name) {
			return ch, true
		}
	}
	return nil, false
}

// GetAllChannels returns listing snapshots of every channel.
func (r *Registry) GetAllChannels() []proto.ChannelInfo {
	r.channelsMu.RLock()
	defer r.channelsMu.RUnlock()
	out := make([]proto.ChannelInfo, 0, len(r.channels))
	for _, ch := range r.channels {
		out = append(out, ch.Info())
	}
	return out
}

// GetChannelSubscribers snapshots the subscriber list of a channel.
func (r *Registry) GetChannelSubscribers(guid string) ([]*Client, bool) {
	r.channelsMu.RLock()
	defer r.channelsMu.RUnlock()
	ch := r.channelByGUIDLocked(guid)
	if ch == nil {
		return nil, false
	}
	return ch.snapshotSubscribers(), true
}

// RemoveClientChannels removes every channel owned by the client and
// drops the client from every remaining subscriber list. Deletion
// notifications fire after the lock is released.
func (r *Registry) RemoveClientChannels(ownerGUID string) int {
	if ownerGUID == "" {
		return 0
	}

	type deleted struct {
		ch   *Channel
		subs []*Client
	}

	r.channelsMu.Lock()
	var removed []deleted
	kept := r.channels[:0]
	for _, ch := range r.channels {
		if ch.OwnerGUID == ownerGUID {
			removed = append(removed, deleted{ch: ch, subs: ch.snapshotSubscribers()})
			continue
		}
		ch.removeSubscriber(ownerGUID)
		kept = append(kept, ch)
	}
	r.channels = kept
	r.channelsMu.Unlock()

	for _, d := range removed {
		r.dispatchChannelDeleted(d.ch, d.subs)
	}
	return len(removed)
}

// channelByGUIDLocked scans for a channel. Either channels lock held.
func (r *Registry) channelByGUIDLocked(guid string) *Channel {
	if guid == "" {
		return nil
	}
	for _, ch := range r.channels {
		if ch.GUID == guid {
			return ch
		}
	}
	return nil
}
