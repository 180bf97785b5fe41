package radio

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/firesense/internal/domain"
)

// Bus is an in-memory medium connecting loopback links by address.
type Bus struct {
	mu        sync.RWMutex
	listeners map[domain.MAC]Handler
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[domain.MAC]Handler)}
}

// Link returns a loopback link with the given own address attached to the bus.
func (b *Bus) Link(addr domain.MAC) *Loopback {
	return &Loopback{bus: b, addr: addr, peers: make(map[domain.MAC]struct{})}
}

func (b *Bus) attach(addr domain.MAC, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[addr] = h
}

func (b *Bus) detach(addr domain.MAC) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.listeners, addr)
}

// Listening reports whether a link is currently listening at addr.
func (b *Bus) Listening(addr domain.MAC) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.listeners[addr]
	return ok
}

func (b *Bus) deliver(from, to domain.MAC, payload []byte) error {
	b.mu.RLock()
	h, ok := b.listeners[to]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no listener at %s", to)
	}
	frame := make([]byte, len(payload))
	copy(frame, payload)
	h(from, frame)
	return nil
}

// Loopback is a Link that delivers frames synchronously to another link on the same Bus.
// A send only succeeds if the destination is listening.
type Loopback struct {
	bus  *Bus
	addr domain.MAC

	mu          sync.Mutex
	initialized bool
	closed      bool
	peers       map[domain.MAC]struct{}
}

// Addr returns the link's own address.
func (l *Loopback) Addr() domain.MAC { return l.addr }

func (l *Loopback) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.initialized = true
	return nil
}

func (l *Loopback) AddPeer(addr domain.MAC) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.usable(); err != nil {
		return err
	}
	l.peers[addr] = struct{}{}
	return nil
}

func (l *Loopback) Send(ctx context.Context, to domain.MAC, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	err := l.usable()
	_, known := l.peers[to]
	l.mu.Unlock()
	if err != nil {
		return err
	}
	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, to)
	}
	return l.bus.deliver(l.addr, to, payload)
}

func (l *Loopback) Listen(ctx context.Context, h Handler, ready func()) error {
	l.mu.Lock()
	err := l.usable()
	l.mu.Unlock()
	if err != nil {
		return err
	}
	l.bus.attach(l.addr, h)
	defer l.bus.detach(l.addr)
	if ready != nil {
		ready()
	}
	<-ctx.Done()
	return nil
}

func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.bus.detach(l.addr)
	return nil
}

func (l *Loopback) usable() error {
	if l.closed {
		return ErrClosed
	}
	if !l.initialized {
		return ErrNotInitialized
	}
	return nil
}
