package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/wirehub-server/internal/proto"
	"github.com/vovakirdan/wirehub-server/internal/transport/tcp"
	"github.com/vovakirdan/wirehub-server/internal/utils"
)

// heartbeatSupervisor periodically writes heartbeat requests to one
// connection and evicts the peer after maxFailures consecutive write
// failures, or at the first tick after the connection has been closed.
// Clients consume heartbeats silently; liveness is inferred from write
// success and the connection's closed flag.
type heartbeatSupervisor struct {
	client      *Client
	peer        *tcp.Peer
	interval    time.Duration
	maxFailures int
	log         *zerolog.Logger
	evict       func(reason string)
}

func (h *heartbeatSupervisor) run(ctx context.Context) {
	if h.interval <= 0 {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !h.peer.Usable() {
			h.evict("peer connection gone")
			return
		}

		hb := &proto.Message{
			MessageID:     utils.NewID(),
			SenderGUID:    proto.ServerGUID,
			RecipientGUID: h.client.GUID(),
			Command:       proto.CommandHeartbeatRequest,
			CreatedUTC:    time.Now().UTC(),
			Success:       true,
		}

		if err := h.peer.Write(hb); err != nil {
			failures++
			h.log.Debug().Err(err).
				Int("failures", failures).
				Str("addr", h.peer.RemoteAddr()).
				Msg("heartbeat write failed")
			if failures >= h.maxFailures {
				h.evict("heartbeat failures exceeded")
				return
			}
			continue
		}
		failures = 0
	}
}
