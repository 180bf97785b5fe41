package radio_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/radio"
)

var (
	sensorAddr   = domain.MAC{0x24, 0xEC, 0x4A, 0x0E, 0xBC, 0x5D}
	receiverAddr = domain.DefaultPeerAddress
)

type recorder struct {
	mu     sync.Mutex
	from   []domain.MAC
	frames [][]byte
}

func (r *recorder) handle(from domain.MAC, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.from = append(r.from, from)
	r.frames = append(r.frames, payload)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func listen(t *testing.T, bus *radio.Bus, l *radio.Loopback, h radio.Handler) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Listen(ctx, h, nil) }()
	require.Eventually(t, func() bool { return bus.Listening(l.Addr()) }, time.Second, time.Millisecond)
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	return cancel
}

func TestLoopback_SendDelivers(t *testing.T) {
	bus := radio.NewBus()
	tx := bus.Link(sensorAddr)
	rx := bus.Link(receiverAddr)
	require.NoError(t, tx.Init())
	require.NoError(t, rx.Init())
	require.NoError(t, tx.AddPeer(receiverAddr))

	rec := &recorder{}
	listen(t, bus, rx, rec.handle)

	payload := []byte{40}
	require.NoError(t, tx.Send(context.Background(), receiverAddr, payload))
	payload[0] = 0

	require.Equal(t, 1, rec.count())
	assert.Equal(t, sensorAddr, rec.from[0])
	assert.Equal(t, []byte{40}, rec.frames[0], "frame must be copied")
}

func TestLoopback_SendWithoutListenerFails(t *testing.T) {
	bus := radio.NewBus()
	tx := bus.Link(sensorAddr)
	require.NoError(t, tx.Init())
	require.NoError(t, tx.AddPeer(receiverAddr))

	err := tx.Send(context.Background(), receiverAddr, []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), receiverAddr.String())
}

func TestLoopback_UnknownPeer(t *testing.T) {
	bus := radio.NewBus()
	tx := bus.Link(sensorAddr)
	require.NoError(t, tx.Init())

	err := tx.Send(context.Background(), receiverAddr, []byte{1})
	assert.ErrorIs(t, err, radio.ErrUnknownPeer)
}

func TestLoopback_RequiresInit(t *testing.T) {
	bus := radio.NewBus()
	tx := bus.Link(sensorAddr)

	assert.ErrorIs(t, tx.AddPeer(receiverAddr), radio.ErrNotInitialized)
	assert.ErrorIs(t, tx.Listen(context.Background(), func(domain.MAC, []byte) {}, nil), radio.ErrNotInitialized)
}

func TestLoopback_Closed(t *testing.T) {
	bus := radio.NewBus()
	rx := bus.Link(receiverAddr)
	require.NoError(t, rx.Init())
	cancel := listen(t, bus, rx, func(domain.MAC, []byte) {})
	defer cancel()

	require.NoError(t, rx.Close())
	assert.False(t, bus.Listening(receiverAddr))
	assert.ErrorIs(t, rx.Init(), radio.ErrClosed)
	assert.ErrorIs(t, rx.AddPeer(sensorAddr), radio.ErrClosed)
}

func TestLoopback_CancelledContext(t *testing.T) {
	bus := radio.NewBus()
	tx := bus.Link(sensorAddr)
	require.NoError(t, tx.Init())
	require.NoError(t, tx.AddPeer(receiverAddr))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tx.Send(ctx, receiverAddr, []byte{1}), context.Canceled)
}
