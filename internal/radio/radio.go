// Package radio defines the point-to-point link used to carry alert bytes
// from the sensor node to the receiver node, plus an in-process loopback
// implementation used by tests and the simulator.
package radio

import (
	"context"
	"errors"

	"github.com/couchcryptid/firesense/internal/domain"
)

var (
	// ErrClosed is returned by operations on a link after Close.
	ErrClosed = errors.New("radio: link closed")
	// ErrUnknownPeer is returned by Send when the destination was never registered with AddPeer.
	ErrUnknownPeer = errors.New("radio: unknown peer")
	// ErrNotInitialized is returned when a link is used before Init.
	ErrNotInitialized = errors.New("radio: link not initialized")
)

// Handler is invoked for every inbound frame. Implementations must not block;
// the payload slice is only valid for the duration of the call.
type Handler func(from domain.MAC, payload []byte)

// Link is a connectionless, unencrypted radio link addressed by 6-byte hardware addresses.
type Link interface {
	// Init brings the radio up. It must be called before any other method.
	Init() error
	// AddPeer registers a destination address.
	AddPeer(addr domain.MAC) error
	// Send transmits payload to a registered peer. A nil error means the
	// transmission was acknowledged by the link layer.
	Send(ctx context.Context, to domain.MAC, payload []byte) error
	// Listen delivers inbound frames to h until ctx is cancelled. ready, if
	// not nil, is called once frames can be received.
	Listen(ctx context.Context, h Handler, ready func()) error
	// Close releases the radio.
	Close() error
}
