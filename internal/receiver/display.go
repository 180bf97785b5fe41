package receiver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/observability"
)

// Display is a 16x2 character display addressed by column and row.
type Display interface {
	Init() error
	Clear() error
	Print(col, row int, text string) error
}

// Screen layout.
const (
	alertHeader  = "Motion detected:"
	alertLabel   = "FWI: "
	alertValueAt = 5
	clockCol     = 8
	clockRow     = 1
)

// DisplayLoop renders either the last received alert or the running clock.
type DisplayLoop struct {
	display Display
	inbox   *Inbox
	state   *domain.ClockState
	clock   clockwork.Clock
	hold    time.Duration
	refresh time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewDisplayLoop creates a DisplayLoop. hold is how long an alert stays on
// screen; refresh is the pause between passes.
func NewDisplayLoop(display Display, inbox *Inbox, state *domain.ClockState, clock clockwork.Clock, hold, refresh time.Duration, logger *slog.Logger, metrics *observability.Metrics) *DisplayLoop {
	return &DisplayLoop{
		display: display,
		inbox:   inbox,
		state:   state,
		clock:   clock,
		hold:    hold,
		refresh: refresh,
		logger:  logger,
		metrics: metrics,
	}
}

// Step runs one pass of the loop. With an alert pending it shows the alert,
// holds it, resets the clock and clears the screen; otherwise it draws the
// clock in place. It returns false if ctx ended during the hold.
func (l *DisplayLoop) Step(ctx context.Context) bool {
	p := l.inbox.Take()
	if p == nil {
		l.print(clockCol, clockRow, l.state.Format())
		return true
	}

	l.logger.Info("alert received", "from", p.From.String(), "len", p.Len, "value", p.Decimal())
	l.clear()
	l.print(0, 0, alertHeader)
	l.print(0, 1, alertLabel)
	l.print(alertValueAt, 1, p.Decimal())

	select {
	case <-ctx.Done():
		return false
	case <-l.clock.After(l.hold):
	}

	l.state.Reset()
	l.clear()
	l.metrics.AlertsDisplayed.Inc()
	return true
}

// Run loops until ctx is cancelled.
func (l *DisplayLoop) Run(ctx context.Context) error {
	for {
		if !l.Step(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-l.clock.After(l.refresh):
		}
	}
}

func (l *DisplayLoop) clear() {
	if err := l.display.Clear(); err != nil {
		l.logger.Warn("display clear failed", "error", err)
	}
}

func (l *DisplayLoop) print(col, row int, text string) {
	if err := l.display.Print(col, row, text); err != nil {
		l.logger.Warn("display print failed", "error", fmt.Errorf("at %d,%d: %w", col, row, err))
	}
}
