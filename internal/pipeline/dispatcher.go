package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/observability"
	"github.com/couchcryptid/firesense/internal/radio"
)

// Dispatcher sends one alert byte to the peer when motion is pending and an FWI is available.
type Dispatcher struct {
	latch   *MotionLatch
	mailbox *Mailbox
	link    radio.Link
	peer    domain.MAC
	clock   clockwork.Clock
	period  time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewDispatcher creates a Dispatcher sending to peer over link.
func NewDispatcher(latch *MotionLatch, mailbox *Mailbox, link radio.Link, peer domain.MAC, clock clockwork.Clock, period time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		latch:   latch,
		mailbox: mailbox,
		link:    link,
		peer:    peer,
		clock:   clock,
		period:  period,
		logger:  logger,
		metrics: metrics,
	}
}

// Poll performs one dispatch check and reports whether an alert was transmitted
// (successfully or not). With motion pending and an empty mailbox the latch
// stays set for the next poll. A failed send is logged and not retried.
func (d *Dispatcher) Poll(ctx context.Context) bool {
	if !d.latch.Pending() {
		return false
	}
	fwi, ok := d.mailbox.TryTake()
	if !ok {
		d.metrics.AlertsDeferred.Inc()
		return false
	}
	d.latch.Clear()

	alert := domain.EncodeAlert(fwi)
	err := d.link.Send(ctx, d.peer, alert.Bytes())
	if err != nil {
		d.metrics.AlertSendFailures.Inc()
		d.logger.Warn("alert send failed", "status", "failed", "peer", d.peer.String(), "fwi", fwi, "alert", uint8(alert), "error", err)
		return true
	}
	d.metrics.AlertsSent.Inc()
	d.logger.Info("alert send status", "status", "success", "peer", d.peer.String(), "fwi", fwi, "alert", uint8(alert))
	return true
}

// Run polls once per period until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := d.clock.NewTicker(d.period)
	defer ticker.Stop()

	for {
		d.Poll(ctx)
		if !waitTick(ctx, ticker) {
			return nil
		}
	}
}
