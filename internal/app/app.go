package app

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/wirehub-server/internal/auth"
	"github.com/vovakirdan/wirehub-server/internal/config"
	"github.com/vovakirdan/wirehub-server/internal/core"
	"github.com/vovakirdan/wirehub-server/internal/store"
	"github.com/vovakirdan/wirehub-server/internal/store/sqlite"
	"github.com/vovakirdan/wirehub-server/internal/transport/tcp"
)

// App wires the credential store, auth service and broker core.
type App struct {
	cfg    config.Config
	server *core.Server
	store  store.UserStore
	log    *zerolog.Logger
}

// New constructs the application with provided configuration.
// hooks may be nil; the embedder supplies one to observe broker events.
func New(cfg config.Config, logger *zerolog.Logger, hooks core.Hooks) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	var userStore store.UserStore
	if cfg.DatabasePath != "" {
		st, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		userStore = st
		logger.Info().Str("db_path", cfg.DatabasePath).Msg("credential store initialized")
	} else {
		logger.Info().Msg("no credential store configured, running open-access login")
	}

	authService := auth.NewService(userStore)
	server := core.NewServer(cfg, logger, authService, hooks)

	return &App{
		cfg:    cfg,
		server: server,
		store:  userStore,
		log:    logger,
	}, nil
}

// Server exposes the broker core for embedders.
func (a *App) Server() *core.Server {
	return a.server
}

// Run opens the listener and serves until context cancellation or a
// fatal accept error.
func (a *App) Run(ctx context.Context) error {
	ln, err := a.listen()
	if err != nil {
		a.cleanup()
		return err
	}

	err = a.server.Serve(ctx, ln)
	a.cleanup()
	return err
}

func (a *App) listen() (net.Listener, error) {
	if a.cfg.TLSCertFile == "" {
		return tcp.Listen(a.cfg.Addr)
	}
	cert, err := tcp.LoadCertificate(a.cfg.TLSCertFile, a.cfg.TLSKeyFile)
	if err != nil {
		return nil, err
	}
	a.log.Info().Str("cert", a.cfg.TLSCertFile).Msg("TLS enabled")
	return tcp.ListenTLS(a.cfg.Addr, cert)
}

// cleanup closes the credential store and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
