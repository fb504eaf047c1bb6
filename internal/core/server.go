package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/wirehub-server/internal/auth"
	"github.com/vovakirdan/wirehub-server/internal/config"
	wirelog "github.com/vovakirdan/wirehub-server/internal/log"
	"github.com/vovakirdan/wirehub-server/internal/proto"
	"github.com/vovakirdan/wirehub-server/internal/transport/tcp"
	"github.com/vovakirdan/wirehub-server/internal/utils"
)

// Server accepts connections and mediates directed messages, channel
// fan-out and administrative requests between them. It never dials out.
type Server struct {
	cfg   config.Config
	log   *zerolog.Logger
	hooks Hooks

	reg    *Registry
	events *Publisher
	proc   *Processor

	workers sync.WaitGroup
}

// NewServer wires the registry, publisher and processor together.
// hooks may be nil.
func NewServer(cfg config.Config, logger *zerolog.Logger, authSvc *auth.Service, hooks Hooks) *Server {
	if hooks == nil {
		hooks = NopHooks{}
	}
	logger = wirelog.Forward(logger, hooks.OnLogMessage)

	reg := NewRegistry(logger)
	events := NewPublisher(reg, logger, cfg.SendServerJoinNotifications, cfg.SendChannelNotifications)
	reg.SetNotifier(events)
	proc := NewProcessor(reg, events, authSvc, hooks, logger, cfg.SendAcknowledgements)

	return &Server{
		cfg:    cfg,
		log:    logger,
		hooks:  hooks,
		reg:    reg,
		events: events,
		proc:   proc,
	}
}

// Registry exposes the client/channel state, mainly for embedders and
// tests.
func (s *Server) Registry() *Registry {
	return s.reg
}

// Serve runs the accept loop on ln until ctx is cancelled or the
// listener fails. On return every connection has been torn down and
// OnServerStopped has fired.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Msg("broker listening")

	go s.sweepLoop(ctx)

	acceptErr := make(chan error, 1)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				acceptErr <- err
				return
			}
			s.handleConn(ctx, conn)
		}
	}()

	var err error
	select {
	case err = <-acceptErr:
		// Accept-loop failure stops the server.
	case <-ctx.Done():
		ln.Close()
		err = <-acceptErr
	}

	s.shutdown()

	if err == nil || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return fmt.Errorf("accept: %w", err)
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	peer := tcp.NewPeer(conn)
	client := NewClient(peer, s.cfg.SyncTimeout)

	// AddClient may fold this connection into an existing
	// unauthenticated record for the same source tuple.
	canonical := s.reg.AddClient(client)

	s.log.Debug().Str("addr", peer.RemoteAddr()).Msg("connection accepted")
	s.hooks.OnClientConnected(canonical)

	cctx, cancel := context.WithCancel(ctx)
	w := &worker{
		client: canonical,
		peer:   peer,
		reg:    s.reg,
		proc:   s.proc,
		events: s.events,
		hooks:  s.hooks,
		log:    s.log,
		cancel: cancel,
	}
	hb := &heartbeatSupervisor{
		client:      canonical,
		peer:        peer,
		interval:    s.cfg.HeartbeatInterval,
		maxFailures: s.cfg.MaxHeartbeatFailures,
		log:         s.log,
		evict:       w.evict,
	}

	s.workers.Add(2)
	go func() { defer s.workers.Done(); w.run(cctx) }()
	go func() { defer s.workers.Done(); hb.run(cctx) }()
}

// shutdown closes every live connection and waits for workers, bounded
// by the configured shutdown timeout.
func (s *Server) shutdown() {
	for _, c := range s.reg.GetAllClients() {
		c.Peer().Close()
	}

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.cfg.ShutdownTimeout):
		s.log.Warn().Msg("shutdown timeout waiting for connection workers")
	}

	s.log.Info().Msg("broker stopped")
	s.hooks.OnServerStopped()
}

// sweepLoop reaps expired sync-request slots across all clients.
func (s *Server) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		for _, c := range s.reg.GetAllClients() {
			if n := c.Pending().Sweep(); n > 0 {
				s.log.Debug().Int("reaped", n).Str("guid", c.GUID()).Msg("swept expired sync requests")
			}
		}
	}
}

// Send delivers a server-origin payload to a connected client.
func (s *Server) Send(clientGUID string, data []byte) error {
	client, ok := s.reg.GetClientByGUID(clientGUID)
	if !ok {
		return ErrClientNotFound
	}
	return client.Send(&proto.Message{
		MessageID:     utils.NewID(),
		SenderGUID:    proto.ServerGUID,
		RecipientGUID: clientGUID,
		CreatedUTC:    time.Now().UTC(),
		Success:       true,
		Data:          data,
	})
}

// SendSync delivers a server-origin sync request and blocks up to
// timeout (the configured sync timeout when zero) for the matching
// response.
func (s *Server) SendSync(clientGUID string, data []byte, timeout time.Duration) (*proto.Message, error) {
	client, ok := s.reg.GetClientByGUID(clientGUID)
	if !ok {
		return nil, ErrClientNotFound
	}
	if timeout <= 0 {
		timeout = s.cfg.SyncTimeout
	}

	id := utils.NewID()
	if !client.Pending().Register(id) {
		return nil, fmt.Errorf("register sync request %s: duplicate id", id)
	}

	err := client.Send(&proto.Message{
		MessageID:     id,
		SenderGUID:    proto.ServerGUID,
		RecipientGUID: clientGUID,
		CreatedUTC:    time.Now().UTC(),
		SyncRequest:   true,
		Success:       true,
		Data:          data,
	})
	if err != nil {
		// The orphaned registration falls to the sweep.
		return nil, err
	}

	resp, ok := client.Pending().Await(id, timeout)
	if !ok {
		return nil, ErrSyncTimeout
	}
	return resp, nil
}
