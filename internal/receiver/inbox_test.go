package receiver_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/receiver"
)

var sensorAddr = domain.MAC{0x24, 0xEC, 0x4A, 0x0E, 0xBC, 0x5D}

func TestInbox_HandleThenTake(t *testing.T) {
	metrics := newTestMetrics()
	in := receiver.NewInbox(metrics)

	assert.False(t, in.Pending())
	assert.Nil(t, in.Take())

	buf := []byte{40}
	in.Handle(sensorAddr, buf)
	buf[0] = 0
	assert.True(t, in.Pending())

	p := in.Take()
	require.NotNil(t, p)
	assert.Equal(t, sensorAddr, p.From)
	assert.Equal(t, []byte{40}, p.Bytes())
	assert.Equal(t, "40", p.Decimal())

	assert.False(t, in.Pending())
	assert.Nil(t, in.Take())
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.MessagesReceived), 0)
}

func TestInbox_TruncatesToSixteenBytes(t *testing.T) {
	in := receiver.NewInbox(newTestMetrics())
	payload := make([]byte, 20)
	for i := range payload {
		payload[i] = byte(i)
	}

	in.Handle(sensorAddr, payload)

	p := in.Take()
	require.NotNil(t, p)
	assert.Equal(t, domain.MaxPayloadLen, p.Len)
	assert.Equal(t, payload[:16], p.Bytes())
}

func TestInbox_LatestMessageWins(t *testing.T) {
	in := receiver.NewInbox(newTestMetrics())
	in.Handle(sensorAddr, []byte{12})
	in.Handle(sensorAddr, []byte{92})

	p := in.Take()
	require.NotNil(t, p)
	assert.Equal(t, "92", p.Decimal())
	assert.Nil(t, in.Take())
}
