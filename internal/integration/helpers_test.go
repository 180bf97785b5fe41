package integration_test

import (
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/firesense/internal/config"
	"github.com/couchcryptid/firesense/internal/pipeline"
	"github.com/couchcryptid/firesense/internal/receiver"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fastSensorConfig returns sensor node timing short enough for a test run.
func fastSensorConfig(cfg *config.Config) pipeline.NodeConfig {
	return pipeline.NodeConfig{
		NodeID:          cfg.NodeID,
		PeerAddress:     cfg.PeerAddress,
		SamplePeriod:    5 * time.Millisecond,
		CalcPeriod:      5 * time.Millisecond,
		IndicatorPeriod: 10 * time.Millisecond,
		DispatchPeriod:  10 * time.Millisecond,
		SampleQueueSize: cfg.SampleQueueSize,
	}
}

var fastReceiverConfig = receiver.NodeConfig{
	AlertHold:      200 * time.Millisecond,
	DisplayRefresh: 5 * time.Millisecond,
}
