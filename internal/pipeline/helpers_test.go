package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/observability"
	"github.com/couchcryptid/firesense/internal/pipeline"
	"github.com/couchcryptid/firesense/internal/radio"
)

// --- mocks ---

type mockEnv struct {
	temperature, humidity float64
	err                   error
}

func (m *mockEnv) Sense() (float64, float64, error) {
	return m.temperature, m.humidity, m.err
}

type mockAnalog struct {
	raw uint16
	err error
}

func (m *mockAnalog) ReadRaw() (uint16, error) {
	return m.raw, m.err
}

// inputsFor returns inputs producing raw ADC counts for wind, duff moisture and drought.
func inputsFor(temp, hum float64, wind, dmc, dc uint16) pipeline.Inputs {
	return pipeline.Inputs{
		Env:          &mockEnv{temperature: temp, humidity: hum},
		Wind:         &mockAnalog{raw: wind},
		DuffMoisture: &mockAnalog{raw: dmc},
		Drought:      &mockAnalog{raw: dc},
	}
}

type sentFrame struct {
	to      domain.MAC
	payload []byte
}

type mockLink struct {
	mu      sync.Mutex
	initErr error
	peerErr error
	sendErr error
	peers   []domain.MAC
	sent    []sentFrame
	closed  bool
}

var _ radio.Link = (*mockLink)(nil)

func (m *mockLink) Init() error { return m.initErr }

func (m *mockLink) AddPeer(addr domain.MAC) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.peerErr != nil {
		return m.peerErr
	}
	m.peers = append(m.peers, addr)
	return nil
}

func (m *mockLink) Send(_ context.Context, to domain.MAC, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentFrame{to: to, payload: append([]byte(nil), payload...)})
	return m.sendErr
}

func (m *mockLink) Listen(ctx context.Context, _ radio.Handler, _ func()) error {
	<-ctx.Done()
	return nil
}

func (m *mockLink) Close() error {
	m.closed = true
	return nil
}

func (m *mockLink) frames() []sentFrame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentFrame(nil), m.sent...)
}

func newTestPins() ([4]gpio.PinOut, [4]*gpiotest.Pin) {
	var outs [4]gpio.PinOut
	var pins [4]*gpiotest.Pin
	for _, b := range domain.Bands {
		pins[b] = &gpiotest.Pin{N: "LED_" + b.String(), Num: int(b)}
		outs[b] = pins[b]
	}
	return outs, pins
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}
