package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/vovakirdan/wirehub-server/internal/app"
	"github.com/vovakirdan/wirehub-server/internal/config"
	"github.com/vovakirdan/wirehub-server/internal/log"
)

func main() {
	var (
		configPath string
		addr       string
		logLevel   string
	)
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&addr, "addr", "", "listen address (overrides config)")
	flag.StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	flag.Parse()

	bootLogger := log.New("info")

	cfg, path, err := config.Load(bootLogger, configPath)
	if err != nil {
		bootLogger.Fatal().Err(err).Str("path", path).Msg("load config")
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger := log.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("init application")
	}

	logger.Info().Str("addr", cfg.Addr).Str("config", path).Msg("starting wirehub broker")
	if err := application.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("broker exited with error")
	}
	logger.Info().Msg("broker stopped")
}
