package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/firesense/internal/adapter/httpadapter"
	"github.com/couchcryptid/firesense/internal/adapter/lcd"
	"github.com/couchcryptid/firesense/internal/adapter/transport"
	"github.com/couchcryptid/firesense/internal/config"
	"github.com/couchcryptid/firesense/internal/observability"
	"github.com/couchcryptid/firesense/internal/receiver"
)

const role = "receiver"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The display owns stdout, so logs go to stderr.
	logger, err := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat, role)
	if err != nil {
		slog.Error("failed to create logger", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("receiver node failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	// The receiver answers on the address the sensor node sends to.
	link, err := transport.NewLink(cfg, role, cfg.PeerAddress, nil, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := link.Close(); err != nil {
			logger.Error("radio close error", "error", err)
		}
	}()

	display := lcd.NewTerminal(os.Stdout, lcd.WithCursorHome())
	node := receiver.NewNode(receiver.NodeConfig{
		AlertHold:      cfg.AlertHold,
		DisplayRefresh: cfg.DisplayRefresh,
	}, display, link, nil, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, role, node, func() any { return node.Status() }, prometheus.DefaultGatherer, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	runErr := node.Run(ctx)

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	return runErr
}
