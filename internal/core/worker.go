package core

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/wirehub-server/internal/proto"
	"github.com/vovakirdan/wirehub-server/internal/transport/tcp"
)

// worker is the per-connection read loop: it reads frames, enforces the
// login gate, and hands decoded messages to the processor. The worker
// is bound to the peer it was spawned with; if a newer connection takes
// the client record over, this worker only tears down its own peer.
type worker struct {
	client *Client
	peer   *tcp.Peer
	reg    *Registry
	proc   *Processor
	events *Publisher
	hooks  Hooks
	log    *zerolog.Logger

	cancel    context.CancelFunc
	evictOnce sync.Once
}

func (w *worker) run(ctx context.Context) {
	defer w.evict("connection closed")

	for {
		if ctx.Err() != nil {
			return
		}
		if !w.peer.Alive() {
			return
		}

		m, err := w.peer.Read()
		if err != nil {
			if errors.Is(err, proto.ErrMalformed) {
				w.log.Warn().Err(err).Str("addr", w.peer.RemoteAddr()).Msg("dropping undecodable frame")
				continue
			}
			return
		}

		w.hooks.OnMessageReceived(m)

		if !w.gate(m) {
			continue
		}
		w.proc.Process(w.client, m)
	}
}

// gate enforces login before anything but the login command itself. A
// sender guid the registry does not know is treated the same as no
// login at all.
func (w *worker) gate(m *proto.Message) bool {
	if m.Is(proto.CommandLogin) {
		return true
	}
	sender := m.SenderGUID
	if sender == "" {
		w.deny(m)
		return false
	}
	if sender != proto.ServerGUID && !w.reg.IsClientConnected(sender) {
		w.deny(m)
		return false
	}
	return true
}

func (w *worker) deny(m *proto.Message) {
	out := errorReply(m, ErrCodeLoginRequired, "login required")
	if err := w.peer.Write(out); err != nil {
		w.log.Debug().Err(err).Str("addr", w.peer.RemoteAddr()).Msg("login-required reply failed")
	}
}

// evict tears the connection down: registry removal, owned-channel
// cleanup, server-leave notification, transport release. Idempotent;
// entered from the read loop, from heartbeat failures, and from server
// shutdown.
func (w *worker) evict(reason string) {
	w.evictOnce.Do(func() {
		w.peer.Close()

		removed := w.reg.RemoveClientIfPeer(w.client, w.peer)
		if removed {
			w.client.Pending().CancelAll()

			guid, _, loggedIn := w.client.Identity()
			if loggedIn {
				w.reg.RemoveClientChannels(guid)
				w.events.ServerLeave(guid)
			}

			w.log.Info().
				Str("addr", w.peer.RemoteAddr()).
				Str("guid", guid).
				Str("reason", reason).
				Msg("client evicted")
			w.hooks.OnClientDisconnected(w.client)
		}

		if w.cancel != nil {
			w.cancel()
		}
	})
}
