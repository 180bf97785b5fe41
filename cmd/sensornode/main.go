package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/firesense/internal/adapter/hardware"
	"github.com/couchcryptid/firesense/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/firesense/internal/adapter/kafka"
	"github.com/couchcryptid/firesense/internal/adapter/sim"
	"github.com/couchcryptid/firesense/internal/adapter/transport"
	"github.com/couchcryptid/firesense/internal/config"
	"github.com/couchcryptid/firesense/internal/observability"
	"github.com/couchcryptid/firesense/internal/pipeline"
)

const role = "sensor"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat, role)
	if err != nil {
		slog.Error("failed to create logger", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("sensor node failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	deps := pipeline.Deps{Logger: logger, Metrics: metrics}
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Hardware {
		board, err := hardware.Open(cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := board.Close(); err != nil {
				logger.Error("hardware close error", "error", err)
			}
		}()
		deps.Inputs, deps.Outputs, deps.Motion = board.Inputs(), board.Outputs(), board.Motion()
	} else {
		motion := sim.MotionPin(cfg.PinMotion)
		deps.Inputs = sim.Inputs(cfg)
		deps.Outputs, _ = sim.Outputs(cfg)
		deps.Motion = motion
		g.Go(func() error {
			return sim.Pulse(gctx, motion, clockwork.NewRealClock(), cfg.SimMotionEvery)
		})
		logger.Info("using simulated inputs", "motion_every", cfg.SimMotionEvery)
	}

	link, err := transport.NewLink(cfg, role, cfg.NodeAddress, nil, logger)
	if err != nil {
		return err
	}
	deps.Link = link
	defer func() {
		if err := link.Close(); err != nil {
			logger.Error("radio close error", "error", err)
		}
	}()

	if cfg.TelemetryEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger, metrics)
		deps.Publisher = writer
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		logger.Info("telemetry export enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	node := pipeline.NewNode(pipeline.NodeConfig{
		NodeID:          cfg.NodeID,
		PeerAddress:     cfg.PeerAddress,
		SamplePeriod:    cfg.SamplePeriod,
		CalcPeriod:      cfg.CalcPeriod,
		IndicatorPeriod: cfg.IndicatorPeriod,
		DispatchPeriod:  cfg.DispatchPeriod,
		SampleQueueSize: cfg.SampleQueueSize,
	}, deps)

	srv := httpadapter.NewServer(cfg.HTTPAddr, role, node, func() any { return node.Status() }, prometheus.DefaultGatherer, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	g.Go(func() error { return node.Run(gctx) })
	runErr := g.Wait()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	return runErr
}
