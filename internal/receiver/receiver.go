// Package receiver implements the receiver node: a non-blocking radio
// handler staging the latest alert, a 1 Hz software clock, and the display
// loop that shows alerts and otherwise the running clock.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/observability"
	"github.com/couchcryptid/firesense/internal/radio"
)

// NodeConfig holds receiver display timing.
type NodeConfig struct {
	AlertHold      time.Duration
	DisplayRefresh time.Duration
}

// Node owns the receiver's shared state and runs its tasks.
type Node struct {
	display Display
	link    radio.Link
	logger  *slog.Logger
	metrics *observability.Metrics

	inbox     *Inbox
	state     *domain.ClockState
	ticker    *Ticker
	loop      *DisplayLoop
	listening atomic.Bool
}

// NewNode wires a receiver node. A nil clock uses the real clock.
func NewNode(cfg NodeConfig, display Display, link radio.Link, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Node {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	n := &Node{
		display: display,
		link:    link,
		logger:  logger,
		metrics: metrics,
		inbox:   NewInbox(metrics),
		state:   &domain.ClockState{},
	}
	n.ticker = NewTicker(n.state, clock, metrics)
	n.loop = NewDisplayLoop(display, n.inbox, n.state, clock, cfg.AlertHold, cfg.DisplayRefresh, logger, metrics)
	return n
}

// Inbox returns the node's receive inbox.
func (n *Node) Inbox() *Inbox { return n.inbox }

// Clock returns the node's software clock.
func (n *Node) Clock() *domain.ClockState { return n.state }

// CheckReadiness returns nil while the radio is listening.
func (n *Node) CheckReadiness(_ context.Context) error {
	if !n.listening.Load() {
		return errors.New("radio is not listening")
	}
	return nil
}

// Status is a point-in-time view of a receiver node.
type Status struct {
	Clock        string `json:"clock"`
	AlertPending bool   `json:"alert_pending"`
	Listening    bool   `json:"listening"`
}

func (n *Node) Status() Status {
	return Status{
		Clock:        n.state.Format(),
		AlertPending: n.inbox.Pending(),
		Listening:    n.listening.Load(),
	}
}

// Run initializes the display and radio, then listens and drives the display
// until ctx is cancelled. Initialization failures are returned before any task starts.
func (n *Node) Run(ctx context.Context) error {
	if err := n.display.Init(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDisplayInit, err)
	}
	if err := n.link.Init(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRadioInit, err)
	}

	n.logger.Info("receiver node started")
	n.metrics.NodeRunning.WithLabelValues("receiver").Set(1)
	defer n.metrics.NodeRunning.WithLabelValues("receiver").Set(0)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer n.listening.Store(false)
		ready := func() { n.listening.Store(true) }
		if err := n.link.Listen(ctx, n.inbox.Handle, ready); err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error { return n.ticker.Run(ctx) })
	g.Go(func() error { return n.loop.Run(ctx) })

	err := g.Wait()
	n.logger.Info("receiver node stopping", "reason", context.Cause(ctx))
	return err
}
