package receiver

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/observability"
)

const tickInterval = time.Second

// Ticker advances the receiver's software clock once per second.
type Ticker struct {
	state   *domain.ClockState
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewTicker creates a Ticker for state.
func NewTicker(state *domain.ClockState, clock clockwork.Clock, metrics *observability.Metrics) *Ticker {
	return &Ticker{state: state, clock: clock, metrics: metrics}
}

// Run ticks the clock until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) error {
	ticker := t.clock.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			t.state.Tick()
			t.metrics.ClockTicks.Inc()
		}
	}
}
