package core

import (
	"sync"
	"time"

	"github.com/vovakirdan/wirehub-server/internal/proto"
)

// Correlator tracks outstanding sync requests for one client: a map
// from message id to a pending slot. A slot is created on send, filled
// when the matching response arrives, and removed when the waiter
// consumes it or the sweep reaps it after the configured timeout.
type Correlator struct {
	mu      sync.Mutex
	timeout time.Duration
	slots   map[string]*syncSlot
}

type syncSlot struct {
	issued time.Time
	ch     chan *proto.Message
	closed bool
}

// NewCorrelator builds a correlator whose sweep horizon is timeout.
func NewCorrelator(timeout time.Duration) *Correlator {
	return &Correlator{
		timeout: timeout,
		slots:   make(map[string]*syncSlot),
	}
}

// Register records an outstanding request. Returns false if the id is
// already pending.
func (c *Correlator) Register(id string) bool {
	if id == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.slots[id]; exists {
		return false
	}
	c.slots[id] = &syncSlot{
		issued: time.Now(),
		ch:     make(chan *proto.Message, 1),
	}
	return true
}

// Deliver stores a response under its message id. Returns false when no
// request was registered; the caller then routes the message as async.
func (c *Correlator) Deliver(m *proto.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.slots[m.MessageID]
	if !ok || slot.closed {
		return false
	}
	select {
	case slot.ch <- m:
	default:
		// Duplicate response for an already-filled slot; drop it.
	}
	return true
}

// Await blocks until Deliver fires for id or the deadline elapses. The
// slot is removed on return. Matching is by message id only.
func (c *Correlator) Await(id string, timeout time.Duration) (*proto.Message, bool) {
	c.mu.Lock()
	slot, ok := c.slots[id]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	defer c.remove(id)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case m := <-slot.ch:
		if m == nil {
			// Slot cancelled under us.
			return nil, false
		}
		return m, true
	case <-timer.C:
		return nil, false
	}
}

// Sweep removes every registration whose issue time is past the
// timeout horizon, along with any response that never got consumed.
// Returns the number of reaped slots.
func (c *Correlator) Sweep() int {
	cutoff := time.Now().Add(-c.timeout)

	c.mu.Lock()
	defer c.mu.Unlock()
	reaped := 0
	for id, slot := range c.slots {
		if slot.issued.Before(cutoff) {
			c.closeSlot(slot)
			delete(c.slots, id)
			reaped++
		}
	}
	return reaped
}

// CancelAll unblocks every waiter and clears the map. Called on
// eviction of the owning client.
func (c *Correlator) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, slot := range c.slots {
		c.closeSlot(slot)
		delete(c.slots, id)
	}
}

// PendingCount reports the number of outstanding registrations.
func (c *Correlator) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

func (c *Correlator) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot, ok := c.slots[id]; ok {
		c.closeSlot(slot)
		delete(c.slots, id)
	}
}

// closeSlot closes the slot channel exactly once. Correlator lock held.
func (c *Correlator) closeSlot(s *syncSlot) {
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
