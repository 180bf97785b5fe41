package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/observability"
)

// ReadingPublisher exports computed readings off-node. Implementations must not block the caller.
type ReadingPublisher interface {
	PublishReading(ctx context.Context, r domain.Reading) error
}

// Calculator turns samples into fire weather indices and offers the FWI to the mailbox.
type Calculator struct {
	in        <-chan domain.SensorSample
	mailbox   *Mailbox
	publisher ReadingPublisher
	nodeID    string
	clock     clockwork.Clock
	period    time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
	computed  atomic.Uint64
}

// NewCalculator creates a Calculator. publisher may be nil to disable telemetry export.
func NewCalculator(in <-chan domain.SensorSample, mailbox *Mailbox, publisher ReadingPublisher, nodeID string, clock clockwork.Clock, period time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Calculator {
	return &Calculator{
		in:        in,
		mailbox:   mailbox,
		publisher: publisher,
		nodeID:    nodeID,
		clock:     clock,
		period:    period,
		logger:    logger,
		metrics:   metrics,
	}
}

// Computed returns the number of samples processed so far.
func (c *Calculator) Computed() uint64 {
	return c.computed.Load()
}

// Process computes the indices for one sample and publishes the FWI.
// If the mailbox still holds an unconsumed value the new FWI is dropped.
func (c *Calculator) Process(ctx context.Context, s domain.SensorSample) domain.FireIndices {
	idx := domain.ComputeIndices(s)
	seq := c.computed.Add(1)

	c.metrics.IndicesComputed.Inc()
	c.metrics.LastFWI.Set(idx.FWI)
	if !c.mailbox.TryPut(idx.FWI) {
		c.metrics.MailboxDrops.Inc()
	}

	c.logger.Debug("fire weather index",
		"moisture_content", idx.MoistureContent,
		"ffmc", idx.FFMC,
		"isi", idx.ISI,
		"bui", idx.BUI,
		"fwi", idx.FWI,
	)

	switch {
	case c.publisher == nil:
	case s.HasNaN():
		// JSON has no NaN; the reading cannot be exported.
		c.logger.Warn("reading not published: sample has NaN", "sequence", seq)
		c.metrics.TelemetryErrors.Inc()
	default:
		reading := domain.Reading{
			NodeID:     c.nodeID,
			Sequence:   seq,
			Sample:     s,
			Indices:    idx,
			Band:       domain.ClassifyFWI(idx.FWI),
			ComputedAt: c.clock.Now().UTC(),
		}
		if err := c.publisher.PublishReading(ctx, reading); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warn("publish reading failed", "error", err, "sequence", seq)
			c.metrics.TelemetryErrors.Inc()
		}
	}
	return idx
}

// Run receives samples until ctx is cancelled, pausing to the next period
// boundary after each one.
func (c *Calculator) Run(ctx context.Context) error {
	ticker := c.clock.NewTicker(c.period)
	defer ticker.Stop()

	for {
		var sample domain.SensorSample
		select {
		case sample = <-c.in:
		case <-ctx.Done():
			return nil
		}
		c.metrics.SampleQueueDepth.Set(float64(len(c.in)))
		c.Process(ctx, sample)

		if !waitTick(ctx, ticker) {
			return nil
		}
	}
}
