// Command simulate runs a sensor node and a receiver node in one process,
// joined by the in-process radio, with simulated inputs and the receiver's
// display drawn on the terminal.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/firesense/internal/adapter/lcd"
	"github.com/couchcryptid/firesense/internal/adapter/sim"
	"github.com/couchcryptid/firesense/internal/config"
	"github.com/couchcryptid/firesense/internal/observability"
	"github.com/couchcryptid/firesense/internal/pipeline"
	"github.com/couchcryptid/firesense/internal/radio"
	"github.com/couchcryptid/firesense/internal/receiver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sensorLog, err := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat, "sensor")
	if err != nil {
		slog.Error("failed to create logger", "error", err)
		os.Exit(1)
	}
	receiverLog, _ := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat, "receiver")
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	bus := radio.NewBus()
	outputs, _ := sim.Outputs(cfg)
	motion := sim.MotionPin(cfg.PinMotion)

	sensor := pipeline.NewNode(pipeline.NodeConfig{
		NodeID:          cfg.NodeID,
		PeerAddress:     cfg.PeerAddress,
		SamplePeriod:    cfg.SamplePeriod,
		CalcPeriod:      cfg.CalcPeriod,
		IndicatorPeriod: cfg.IndicatorPeriod,
		DispatchPeriod:  cfg.DispatchPeriod,
		SampleQueueSize: cfg.SampleQueueSize,
	}, pipeline.Deps{
		Inputs:  sim.Inputs(cfg),
		Outputs: outputs,
		Motion:  motion,
		Link:    bus.Link(cfg.NodeAddress),
		Clock:   clock,
		Logger:  sensorLog,
		Metrics: metrics,
	})

	display := lcd.NewTerminal(os.Stdout, lcd.WithCursorHome())
	rx := receiver.NewNode(receiver.NodeConfig{
		AlertHold:      cfg.AlertHold,
		DisplayRefresh: cfg.DisplayRefresh,
	}, display, bus.Link(cfg.PeerAddress), clock, receiverLog, metrics)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rx.Run(gctx) })
	g.Go(func() error { return sensor.Run(gctx) })
	g.Go(func() error { return sim.Pulse(gctx, motion, clock, cfg.SimMotionEvery) })

	if err := g.Wait(); err != nil {
		sensorLog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}
