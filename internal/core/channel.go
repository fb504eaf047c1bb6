package core

import (
	"time"

	"github.com/vovakirdan/wirehub-server/internal/proto"
)

// Channel groups subscriber clients. The owner is always a subscriber;
// when the owner disconnects or deletes, the channel goes with them.
// All mutation happens inside the registry under its channels lock.
type Channel struct {
	GUID      string
	Name      string
	OwnerGUID string
	Private   bool

	CreatedUTC time.Time
	UpdatedUTC time.Time

	subscribers []*Client
}

// NewChannel builds an unregistered channel record.
func NewChannel(guid, name, ownerGUID string, private bool) *Channel {
	now := time.Now().UTC()
	return &Channel{
		GUID:       guid,
		Name:       name,
		OwnerGUID:  ownerGUID,
		Private:    private,
		CreatedUTC: now,
		UpdatedUTC: now,
	}
}

// addSubscriber inserts c unless a subscriber with the same guid is
// already present. Registry channels lock held.
func (ch *Channel) addSubscriber(c *Client) bool {
	guid := c.GUID()
	for _, sub := range ch.subscribers {
		if sub.GUID() == guid {
			return false
		}
	}
	ch.subscribers = append(ch.subscribers, c)
	ch.UpdatedUTC = time.Now().UTC()
	return true
}

// removeSubscriber drops the subscriber with the given guid. Registry
// channels lock held.
func (ch *Channel) removeSubscriber(guid string) bool {
	for i, sub := range ch.subscribers {
		if sub.GUID() == guid {
			ch.subscribers = append(ch.subscribers[:i], ch.subscribers[i+1:]...)
			ch.UpdatedUTC = time.Now().UTC()
			return true
		}
	}
	return false
}

// hasSubscriber reports membership by guid. Registry channels lock held.
func (ch *Channel) hasSubscriber(guid string) bool {
	for _, sub := range ch.subscribers {
		if sub.GUID() == guid {
			return true
		}
	}
	return false
}

// snapshotSubscribers copies the subscriber list so callers can iterate
// without the lock. Registry channels lock held.
func (ch *Channel) snapshotSubscribers() []*Client {
	out := make([]*Client, len(ch.subscribers))
	copy(out, ch.subscribers)
	return out
}

// Info snapshots the channel for listings.
func (ch *Channel) Info() proto.ChannelInfo {
	return proto.ChannelInfo{
		ChannelGUID: ch.GUID,
		ChannelName: ch.Name,
		OwnerGUID:   ch.OwnerGUID,
		Private:     ch.Private,
		Subscribers: len(ch.subscribers),
		CreatedUTC:  ch.CreatedUTC,
		UpdatedUTC:  ch.UpdatedUTC,
	}
}
