package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/observability"
	"github.com/couchcryptid/firesense/internal/pipeline"
)

const dispatchPeriod = 500 * time.Millisecond

type dispatchFixture struct {
	latch   *pipeline.MotionLatch
	mailbox *pipeline.Mailbox
	link    *mockLink
	metrics *observability.Metrics
	clock   *clockwork.FakeClock
	d       *pipeline.Dispatcher
}

func newDispatchFixture() *dispatchFixture {
	f := &dispatchFixture{
		latch:   &pipeline.MotionLatch{},
		mailbox: &pipeline.Mailbox{},
		link:    &mockLink{},
		metrics: newTestMetrics(),
		clock:   clockwork.NewFakeClock(),
	}
	f.d = pipeline.NewDispatcher(f.latch, f.mailbox, f.link, domain.DefaultPeerAddress, f.clock, dispatchPeriod, newTestLogger(), f.metrics)
	return f
}

func TestDispatcher_NoMotionNoSend(t *testing.T) {
	f := newDispatchFixture()
	f.mailbox.TryPut(40)

	assert.False(t, f.d.Poll(context.Background()))
	assert.Empty(t, f.link.frames())
	_, full := f.mailbox.Peek()
	assert.True(t, full, "mailbox untouched without motion")
}

func TestDispatcher_DeferredUntilValueAvailable(t *testing.T) {
	f := newDispatchFixture()
	f.latch.Set()

	assert.False(t, f.d.Poll(context.Background()))
	assert.True(t, f.latch.Pending(), "latch stays set while no value is available")
	assert.Empty(t, f.link.frames())
	assert.InDelta(t, 1.0, testutil.ToFloat64(f.metrics.AlertsDeferred), 0)

	f.mailbox.TryPut(40.749531481024654)
	assert.True(t, f.d.Poll(context.Background()))
	assert.False(t, f.latch.Pending())
	require.Len(t, f.link.frames(), 1)
	assert.Equal(t, []byte{40}, f.link.frames()[0].payload)
}

func TestDispatcher_SendsTruncatedByteToPeer(t *testing.T) {
	tests := []struct {
		fwi  float64
		want byte
	}{
		{27.459629617081795, 27},
		{40.749531481024654, 40},
		{348.9536593342388, 92},
		{0.99, 0},
	}

	for _, tt := range tests {
		f := newDispatchFixture()
		f.latch.Set()
		f.mailbox.TryPut(tt.fwi)

		require.True(t, f.d.Poll(context.Background()))

		frames := f.link.frames()
		require.Len(t, frames, 1)
		assert.Equal(t, domain.DefaultPeerAddress, frames[0].to)
		assert.Equal(t, []byte{tt.want}, frames[0].payload)
		_, full := f.mailbox.Peek()
		assert.False(t, full)
		assert.InDelta(t, 1.0, testutil.ToFloat64(f.metrics.AlertsSent), 0)
	}
}

func TestDispatcher_ManyEdgesOneAlert(t *testing.T) {
	f := newDispatchFixture()
	for range 5 {
		f.latch.Set()
	}
	f.mailbox.TryPut(12)
	f.d.Poll(context.Background())

	f.mailbox.TryPut(13)
	f.d.Poll(context.Background())

	assert.Len(t, f.link.frames(), 1)
	_, full := f.mailbox.Peek()
	assert.True(t, full, "second value is left for the indicator")
}

func TestDispatcher_SendFailureNotRetried(t *testing.T) {
	f := newDispatchFixture()
	f.link.sendErr = errors.New("no ack")
	f.latch.Set()
	f.mailbox.TryPut(40)

	assert.True(t, f.d.Poll(context.Background()))
	assert.False(t, f.latch.Pending(), "motion is consumed even when the send fails")
	assert.InDelta(t, 1.0, testutil.ToFloat64(f.metrics.AlertSendFailures), 0)

	f.mailbox.TryPut(40)
	f.d.Poll(context.Background())
	assert.Len(t, f.link.frames(), 1)
}

func TestDispatcher_Run(t *testing.T) {
	f := newDispatchFixture()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.d.Run(ctx) }()

	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	f.latch.Set()
	f.mailbox.TryPut(31)
	f.clock.Advance(dispatchPeriod)

	require.Eventually(t, func() bool { return len(f.link.frames()) == 1 }, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
