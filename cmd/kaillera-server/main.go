package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kaillera-go/relay/internal/config"
	"github.com/kaillera-go/relay/internal/lobby"
	"github.com/kaillera-go/relay/internal/logger"
	"github.com/kaillera-go/relay/internal/metrics"
	"github.com/kaillera-go/relay/internal/session"
	"github.com/kaillera-go/relay/internal/state"
	"github.com/kaillera-go/relay/internal/transport"
)

const version = "0.1.0"

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to a YAML config file (optional)")
	flag.Parse()

	logger.Banner("Kaillera-Go Relay", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("loading config: %v", err)
	}
	logger.SetLevel(logger.LevelFromString(cfg.LogLevel))

	logger.Info("main port %s:%d, control port %s:%d", cfg.Host, cfg.Port, cfg.Host, cfg.ControlPort)
	logger.Info("server name %q, max players per game %d", cfg.ServerName, cfg.MaxPlayers)

	store := state.NewStore()
	lob := lobby.New(store, nil, cfg)

	sessions := session.NewManager(cfg.IdleTimeout(), lob.Dispatch, lob.OnEvict)
	lob.Bind(sessions)

	mainAddr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	sock, err := transport.Listen(mainAddr, sessions.Dispatch)
	if err != nil {
		logger.Fatal("binding main port: %v", err)
	}
	lob.Sockets = sock

	controlAddr := fmt.Sprintf("%s:%d", cfg.Host, cfg.ControlPort)
	ctl, err := transport.ListenControl(controlAddr, cfg.Port, lob.Status)
	if err != nil {
		logger.Fatal("binding control port: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopSweep := make(chan struct{})
	go sessions.RunSweeper(cfg.SweepPeriod(), stopSweep)

	var metricsServer *http.Server
	if cfg.MetricsEnabled {
		metricsServer = metrics.StartHTTP(cfg.MetricsAddr)
	}

	errCh := make(chan error, 2)
	go func() { errCh <- sock.Run(ctx) }()
	go func() { errCh <- ctl.Run(ctx) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	logger.Success("relay is up")

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server loop exited: %v", err)
		}
	case sig := <-sigCh:
		logger.Warn("received signal %v, shutting down", sig)
	}

	close(stopSweep)
	cancel()
	ctl.Close()
	if metricsServer != nil {
		if err := metricsServer.Shutdown(context.Background()); err != nil {
			logger.Warn("metrics server shutdown: %v", err)
		}
	}
	logger.Success("relay stopped")
}
