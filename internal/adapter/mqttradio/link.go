// Package mqttradio emulates the point-to-point radio link over an MQTT
// broker. Each node subscribes to a topic named after its own hardware
// address; a send publishes the sender address followed by the payload to
// the destination's topic.
package mqttradio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/radio"
)

const (
	qos      = byte(1) // broker acknowledgement stands in for the link-layer ack
	quiesce  = 250     // ms
	addrSize = len(domain.MAC{})
)

// Options configures a Link.
type Options struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	Addr        domain.MAC
	Timeout     time.Duration
}

// Link is a radio.Link over MQTT.
type Link struct {
	client mqtt.Client
	opts   Options
	logger *slog.Logger

	mu     sync.Mutex
	ready  bool
	closed bool
	peers  map[domain.MAC]struct{}
}

var _ radio.Link = (*Link)(nil)

// New creates a Link. No connection is made until Init.
func New(opts Options, logger *slog.Logger) *Link {
	co := mqtt.NewClientOptions()
	co.AddBroker(opts.Broker)
	co.SetClientID(opts.ClientID)

	co.SetCleanSession(true)
	co.SetAutoReconnect(true)
	co.SetMaxReconnectInterval(30 * time.Second)
	co.SetKeepAlive(30 * time.Second)
	co.SetPingTimeout(10 * time.Second)

	co.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", opts.Broker)
	})
	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	return newLink(mqtt.NewClient(co), opts, logger)
}

func newLink(client mqtt.Client, opts Options, logger *slog.Logger) *Link {
	return &Link{
		client: client,
		opts:   opts,
		logger: logger,
		peers:  make(map[domain.MAC]struct{}),
	}
}

// Init connects to the broker, waiting at most Options.Timeout.
func (l *Link) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return radio.ErrClosed
	}
	if l.ready {
		return nil
	}

	token := l.client.Connect()
	if !token.WaitTimeout(l.opts.Timeout) {
		return fmt.Errorf("mqtt connect to %s: timed out after %s", l.opts.Broker, l.opts.Timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect to %s: %w", l.opts.Broker, err)
	}
	l.ready = true
	return nil
}

func (l *Link) AddPeer(addr domain.MAC) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(); err != nil {
		return err
	}
	l.peers[addr] = struct{}{}
	return nil
}

// Send publishes payload to the peer's topic and waits for the broker's acknowledgement.
func (l *Link) Send(ctx context.Context, to domain.MAC, payload []byte) error {
	l.mu.Lock()
	err := l.usable()
	_, known := l.peers[to]
	l.mu.Unlock()
	if err != nil {
		return err
	}
	if !known {
		return fmt.Errorf("%w: %s", radio.ErrUnknownPeer, to)
	}

	topic := topicFor(l.opts.TopicPrefix, to)
	token := l.client.Publish(topic, qos, false, encodeFrame(l.opts.Addr, payload))
	if err := waitToken(ctx, token, l.opts.Timeout); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	l.logger.Debug("mqtt frame sent", "topic", topic, "size", len(payload))
	return nil
}

// Listen subscribes to the node's own topic and delivers frames until ctx is
// cancelled. ready is called once the broker has acknowledged the subscription.
func (l *Link) Listen(ctx context.Context, h radio.Handler, ready func()) error {
	l.mu.Lock()
	err := l.usable()
	l.mu.Unlock()
	if err != nil {
		return err
	}

	topic := topicFor(l.opts.TopicPrefix, l.opts.Addr)
	token := l.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		from, payload, err := decodeFrame(msg.Payload())
		if err != nil {
			l.logger.Warn("dropping malformed frame", "topic", msg.Topic(), "error", err)
			return
		}
		h(from, payload)
	})
	if err := waitToken(ctx, token, l.opts.Timeout); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	l.logger.Info("subscribed to radio topic", "topic", topic)
	if ready != nil {
		ready()
	}

	<-ctx.Done()

	unsub := l.client.Unsubscribe(topic)
	if !unsub.WaitTimeout(l.opts.Timeout) || unsub.Error() != nil {
		l.logger.Warn("unsubscribe failed", "topic", topic, "error", unsub.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.ready {
		l.client.Disconnect(quiesce)
	}
	return nil
}

func (l *Link) usable() error {
	if l.closed {
		return radio.ErrClosed
	}
	if !l.ready {
		return radio.ErrNotInitialized
	}
	return nil
}

func topicFor(prefix string, addr domain.MAC) string {
	return prefix + "/" + addr.Hex()
}

func encodeFrame(from domain.MAC, payload []byte) []byte {
	frame := make([]byte, 0, addrSize+len(payload))
	frame = append(frame, from[:]...)
	return append(frame, payload...)
}

var errShortFrame = errors.New("frame shorter than sender address")

func decodeFrame(frame []byte) (domain.MAC, []byte, error) {
	var from domain.MAC
	if len(frame) < addrSize {
		return from, nil, errShortFrame
	}
	copy(from[:], frame[:addrSize])
	return from, frame[addrSize:], nil
}

// waitToken waits for token completion, ctx cancellation or timeout, whichever comes first.
func waitToken(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timed out after %s", timeout)
	}
}
