package receiver

import (
	"sync/atomic"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/observability"
)

// Inbox hands the latest radio payload from the receive callback to the
// display loop. Storing a non-nil pointer marks it pending; the display loop
// swaps it back to nil when it takes it. A newer message replaces one not yet taken.
type Inbox struct {
	pending atomic.Pointer[domain.ReceivedPayload]
	metrics *observability.Metrics
}

// NewInbox creates an empty Inbox.
func NewInbox(metrics *observability.Metrics) *Inbox {
	return &Inbox{metrics: metrics}
}

// Handle stages up to domain.MaxPayloadLen bytes of payload. It never blocks
// and is safe to use as a radio.Handler.
func (in *Inbox) Handle(from domain.MAC, payload []byte) {
	in.pending.Store(domain.NewReceivedPayload(from, payload))
	in.metrics.MessagesReceived.Inc()
}

// Take returns the pending payload and clears it, or nil if none is pending.
func (in *Inbox) Take() *domain.ReceivedPayload {
	return in.pending.Swap(nil)
}

// Pending reports whether a payload is waiting.
func (in *Inbox) Pending() bool {
	return in.pending.Load() != nil
}
