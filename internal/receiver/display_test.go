package receiver_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/observability"
	"github.com/couchcryptid/firesense/internal/receiver"
)

const (
	alertHold      = 2 * time.Second
	displayRefresh = 50 * time.Millisecond
)

type loopFixture struct {
	display *mockDisplay
	inbox   *receiver.Inbox
	state   *domain.ClockState
	clock   *clockwork.FakeClock
	metrics *observability.Metrics
	loop    *receiver.DisplayLoop
}

func newLoopFixture() *loopFixture {
	f := &loopFixture{
		display: newMockDisplay(),
		state:   &domain.ClockState{},
		clock:   clockwork.NewFakeClock(),
		metrics: newTestMetrics(),
	}
	f.inbox = receiver.NewInbox(f.metrics)
	f.loop = receiver.NewDisplayLoop(f.display, f.inbox, f.state, f.clock, alertHold, displayRefresh, newTestLogger(), f.metrics)
	return f
}

func tickN(s *domain.ClockState, n int) {
	for range n {
		s.Tick()
	}
}

func TestDisplayLoop_IdleDrawsClock(t *testing.T) {
	f := newLoopFixture()
	tickN(f.state, 3725)

	require.True(t, f.loop.Step(context.Background()))

	assert.Empty(t, f.display.line(0))
	assert.Equal(t, "        01:02:05", f.display.line(1))
	assert.Zero(t, f.display.clearCount(), "idle pass does not clear")
}

func TestDisplayLoop_AlertHoldThenReset(t *testing.T) {
	f := newLoopFixture()
	tickN(f.state, 75)
	f.inbox.Handle(domain.DefaultPeerAddress, []byte{40})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stepped := make(chan bool, 1)
	go func() { stepped <- f.loop.Step(ctx) }()

	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	assert.Equal(t, "Motion detected:", f.display.line(0))
	assert.Equal(t, "FWI: 40", f.display.line(1))
	assert.False(t, f.inbox.Pending(), "payload is taken when the alert is shown")

	f.clock.Advance(alertHold - time.Millisecond)
	select {
	case <-stepped:
		t.Fatal("alert released before hold elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	f.clock.Advance(time.Millisecond)
	require.True(t, <-stepped)

	assert.Equal(t, "00:00:00", f.state.Format())
	assert.Empty(t, f.display.line(0))
	assert.Empty(t, f.display.line(1))
	assert.Equal(t, 2, f.display.clearCount())
	assert.InDelta(t, 1.0, testutil.ToFloat64(f.metrics.AlertsDisplayed), 0)
}

func TestDisplayLoop_MultiBytePayload(t *testing.T) {
	f := newLoopFixture()
	f.inbox.Handle(domain.DefaultPeerAddress, []byte{1, 23, 4})

	ctx, cancel := context.WithCancel(context.Background())
	stepped := make(chan bool, 1)
	go func() { stepped <- f.loop.Step(ctx) }()

	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	assert.Equal(t, "FWI: 1234", f.display.line(1))

	cancel()
	assert.False(t, <-stepped)
}

func TestDisplayLoop_MessageDuringHoldShownNext(t *testing.T) {
	f := newLoopFixture()
	f.inbox.Handle(domain.DefaultPeerAddress, []byte{12})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stepped := make(chan bool, 1)
	go func() { stepped <- f.loop.Step(ctx) }()

	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	f.inbox.Handle(domain.DefaultPeerAddress, []byte{92})
	f.clock.Advance(alertHold)
	require.True(t, <-stepped)
	assert.True(t, f.inbox.Pending())

	go func() { stepped <- f.loop.Step(ctx) }()
	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	assert.Equal(t, "FWI: 92", f.display.line(1))
	f.clock.Advance(alertHold)
	require.True(t, <-stepped)
}

func TestDisplayLoop_RunStopsOnCancel(t *testing.T) {
	f := newLoopFixture()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.loop.Run(ctx) }()

	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	assert.Equal(t, "        00:00:00", f.display.line(1))

	cancel()
	require.NoError(t, <-done)
}
