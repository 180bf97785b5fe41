// Package transport selects the radio link named by RADIO_TRANSPORT.
package transport

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/firesense/internal/adapter/bleradio"
	"github.com/couchcryptid/firesense/internal/adapter/mqttradio"
	"github.com/couchcryptid/firesense/internal/config"
	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/radio"
)

// ErrNoBus is returned for the loopback transport when no bus is supplied.
// A loopback bus only connects links inside one process.
var ErrNoBus = errors.New("loopback transport needs an in-process bus; use mqtt or ble between separate nodes")

// NewLink returns the configured link bound to addr. bus backs the loopback
// transport and may be nil for the others.
func NewLink(cfg *config.Config, role string, addr domain.MAC, bus *radio.Bus, logger *slog.Logger) (radio.Link, error) {
	logger = logger.With("transport", cfg.RadioTransport, "addr", addr.String())
	switch cfg.RadioTransport {
	case config.TransportLoopback:
		if bus == nil {
			return nil, ErrNoBus
		}
		return bus.Link(addr), nil
	case config.TransportMQTT:
		return mqttradio.New(mqttradio.Options{
			Broker:      cfg.MQTTBroker,
			ClientID:    cfg.ClientID(role),
			TopicPrefix: cfg.MQTTTopicPrefix,
			Addr:        addr,
			Timeout:     cfg.MQTTTimeout,
		}, logger), nil
	case config.TransportBLE:
		return bleradio.New(bleradio.Options{
			Adapter: cfg.BLEAdapter,
			Addr:    addr,
			Burst:   cfg.BLEBurst,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown radio transport %q", cfg.RadioTransport)
	}
}
