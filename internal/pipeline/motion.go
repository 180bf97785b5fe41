package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/couchcryptid/firesense/internal/observability"
)

// MotionLatch turns motion edges into a level that stays set until an alert consumes it.
// Any number of edges before consumption collapse into one pending alert.
type MotionLatch struct {
	pending atomic.Bool
}

// Set marks motion as pending. Safe to call from any goroutine.
func (l *MotionLatch) Set() {
	l.pending.Store(true)
}

// Pending reports whether motion is waiting to be alerted.
func (l *MotionLatch) Pending() bool {
	return l.pending.Load()
}

// Clear consumes the pending motion and reports whether it was set.
func (l *MotionLatch) Clear() bool {
	return l.pending.CompareAndSwap(true, false)
}

// edgePoll bounds each WaitForEdge so cancellation is noticed.
const edgePoll = 250 * time.Millisecond

// MotionWatcher sets a latch on every falling edge of a motion sensor input.
type MotionWatcher struct {
	pin     gpio.PinIn
	latch   *MotionLatch
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewMotionWatcher creates a watcher for pin.
func NewMotionWatcher(pin gpio.PinIn, latch *MotionLatch, logger *slog.Logger, metrics *observability.Metrics) *MotionWatcher {
	return &MotionWatcher{pin: pin, latch: latch, logger: logger, metrics: metrics}
}

// Run configures the pin for falling-edge detection and latches edges until ctx is cancelled.
func (w *MotionWatcher) Run(ctx context.Context) error {
	if err := w.pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return fmt.Errorf("configure motion input %s: %w", w.pin, err)
	}
	for ctx.Err() == nil {
		if w.pin.WaitForEdge(edgePoll) {
			w.latch.Set()
			w.metrics.MotionEdges.Inc()
			w.logger.Debug("motion detected", "pin", w.pin.Name())
		}
	}
	return nil
}
