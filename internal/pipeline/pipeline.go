// Package pipeline implements the sensor node: a sampler feeding a bounded
// sample channel, a calculator publishing the latest FWI into a single-slot
// mailbox, and two consumers of that mailbox (the band indicator and the
// motion alert dispatcher).
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/gpio"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/observability"
	"github.com/couchcryptid/firesense/internal/radio"
)

// NodeConfig holds sensor node timing and addressing.
type NodeConfig struct {
	NodeID          string
	PeerAddress     domain.MAC
	SamplePeriod    time.Duration
	CalcPeriod      time.Duration
	IndicatorPeriod time.Duration
	DispatchPeriod  time.Duration
	SampleQueueSize int
}

// Deps are the collaborators a sensor node is built from.
// Motion and Publisher are optional.
type Deps struct {
	Inputs    Inputs
	Outputs   [4]gpio.PinOut
	Motion    gpio.PinIn
	Link      radio.Link
	Publisher ReadingPublisher
	Clock     clockwork.Clock
	Logger    *slog.Logger
	Metrics   *observability.Metrics
}

// Node owns the shared state of the sensor node and runs its tasks.
type Node struct {
	cfg     NodeConfig
	link    radio.Link
	motion  gpio.PinIn
	logger  *slog.Logger
	metrics *observability.Metrics

	samples chan domain.SensorSample
	mailbox *Mailbox
	latch   *MotionLatch

	sampler    *Sampler
	calculator *Calculator
	indicator  *Indicator
	dispatcher *Dispatcher
}

// NewNode wires a sensor node. Nothing is started until Run.
func NewNode(cfg NodeConfig, deps Deps) *Node {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	n := &Node{
		cfg:     cfg,
		link:    deps.Link,
		motion:  deps.Motion,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		samples: make(chan domain.SensorSample, cfg.SampleQueueSize),
		mailbox: &Mailbox{},
		latch:   &MotionLatch{},
	}
	n.sampler = NewSampler(deps.Inputs, n.samples, deps.Clock, cfg.SamplePeriod, deps.Logger, deps.Metrics)
	n.calculator = NewCalculator(n.samples, n.mailbox, deps.Publisher, cfg.NodeID, deps.Clock, cfg.CalcPeriod, deps.Logger, deps.Metrics)
	n.indicator = NewIndicator(n.mailbox, deps.Outputs, deps.Clock, cfg.IndicatorPeriod, deps.Logger, deps.Metrics)
	n.dispatcher = NewDispatcher(n.latch, n.mailbox, deps.Link, cfg.PeerAddress, deps.Clock, cfg.DispatchPeriod, deps.Logger, deps.Metrics)
	return n
}

// Latch returns the motion latch, for callers that detect motion themselves.
func (n *Node) Latch() *MotionLatch { return n.latch }

// Mailbox returns the FWI mailbox.
func (n *Node) Mailbox() *Mailbox { return n.mailbox }

// CheckReadiness returns nil once at least one FWI has been computed.
func (n *Node) CheckReadiness(_ context.Context) error {
	if n.calculator.Computed() == 0 {
		return errors.New("no fire weather index computed yet")
	}
	return nil
}

// Status is a point-in-time view of a sensor node.
type Status struct {
	NodeID          string   `json:"node_id"`
	IndicesComputed uint64   `json:"indices_computed"`
	PendingFWI      *float64 `json:"pending_fwi,omitempty"`
	PendingBand     string   `json:"pending_band,omitempty"`
	MotionPending   bool     `json:"motion_pending"`
}

// Status reports the unconsumed FWI, if any, and the motion latch without
// disturbing either. A non-finite FWI is reported by band only.
func (n *Node) Status() Status {
	st := Status{
		NodeID:          n.cfg.NodeID,
		IndicesComputed: n.calculator.Computed(),
		MotionPending:   n.latch.Pending(),
	}
	if fwi, ok := n.mailbox.Peek(); ok {
		st.PendingBand = domain.ClassifyFWI(fwi).String()
		if !math.IsNaN(fwi) && !math.IsInf(fwi, 0) {
			st.PendingFWI = &fwi
		}
	}
	return st
}

// Run initializes the radio, registers the peer and runs all tasks until ctx
// is cancelled. Initialization failures are returned before any task starts.
func (n *Node) Run(ctx context.Context) error {
	if err := n.link.Init(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRadioInit, err)
	}
	if err := n.link.AddPeer(n.cfg.PeerAddress); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrPeerRegistration, n.cfg.PeerAddress, err)
	}

	n.logger.Info("sensor node started",
		"peer", n.cfg.PeerAddress.String(),
		"sample_period", n.cfg.SamplePeriod,
		"queue_size", cap(n.samples),
	)
	n.metrics.NodeRunning.WithLabelValues("sensor").Set(1)
	defer n.metrics.NodeRunning.WithLabelValues("sensor").Set(0)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return n.sampler.Run(ctx) })
	g.Go(func() error { return n.calculator.Run(ctx) })
	g.Go(func() error { return n.indicator.Run(ctx) })
	g.Go(func() error { return n.dispatcher.Run(ctx) })
	if n.motion != nil {
		w := NewMotionWatcher(n.motion, n.latch, n.logger, n.metrics)
		g.Go(func() error { return w.Run(ctx) })
	}

	err := g.Wait()
	n.logger.Info("sensor node stopping", "reason", context.Cause(ctx))
	return err
}
