package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/observability"
)

// Indicator drives one output per risk band, indexed by domain.RiskBand.
// On each refresh the active band's output toggles (so it blinks while the
// band persists) and the other three are forced low.
type Indicator struct {
	mailbox *Mailbox
	outputs [4]gpio.PinOut
	levels  [4]gpio.Level
	clock   clockwork.Clock
	period  time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewIndicator creates an Indicator over four outputs ordered Normal, Moderate, Critical, Dangerous.
func NewIndicator(mailbox *Mailbox, outputs [4]gpio.PinOut, clock clockwork.Clock, period time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Indicator {
	return &Indicator{
		mailbox: mailbox,
		outputs: outputs,
		clock:   clock,
		period:  period,
		logger:  logger,
		metrics: metrics,
	}
}

// Refresh consumes the mailbox value, if any, and updates the outputs.
// It returns the band shown and false when the mailbox was empty.
func (i *Indicator) Refresh() (domain.RiskBand, bool) {
	fwi, ok := i.mailbox.TryTake()
	if !ok {
		return 0, false
	}

	active := domain.ClassifyFWI(fwi)
	for _, b := range domain.Bands {
		if b == active {
			i.levels[b] = !i.levels[b]
			i.metrics.RiskBandActive.WithLabelValues(b.String()).Set(1)
		} else {
			i.levels[b] = gpio.Low
			i.metrics.RiskBandActive.WithLabelValues(b.String()).Set(0)
		}
		if err := i.outputs[b].Out(i.levels[b]); err != nil {
			i.logger.Warn("indicator output failed", "band", b, "error", err)
		}
	}
	return active, true
}

// Run refreshes the outputs once per period until ctx is cancelled.
func (i *Indicator) Run(ctx context.Context) error {
	ticker := i.clock.NewTicker(i.period)
	defer ticker.Stop()

	for {
		i.Refresh()
		if !waitTick(ctx, ticker) {
			return nil
		}
	}
}
