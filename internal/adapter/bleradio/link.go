// Package bleradio carries radio frames in BLE manufacturer-specific
// advertisement data. Advertising is connectionless, so a send succeeds once
// the advertisement burst has been broadcast; there is no receiver ack.
//
// Frame layout: [0:2] magic 0x01 0xF1, [2:8] destination address,
// [8:14] source address, [14] sequence, [15:] payload (at most 16 bytes).
// A scanner sees each advertisement many times during a burst; repeats of
// the last sequence from a sender are dropped.
package bleradio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/firesense/internal/domain"
	"github.com/couchcryptid/firesense/internal/radio"
)

const (
	companyID  = 0xFFFF // reserved for testing
	headerSize = 2 + 6 + 6 + 1
	advertise  = 100 * time.Millisecond
)

var magic = []byte{0x01, 0xF1}

// Options configures a Link.
type Options struct {
	Adapter string // "hci0" by default
	Addr    domain.MAC
	Burst   time.Duration
}

// Link is a radio.Link over BLE advertisements.
type Link struct {
	drv    driver
	opts   Options
	logger *slog.Logger

	sendMu sync.Mutex // one advertisement at a time
	seq    uint8

	mu     sync.Mutex
	ready  bool
	closed bool
	peers  map[domain.MAC]struct{}
}

var _ radio.Link = (*Link)(nil)

// New creates a Link on the given adapter. The adapter is enabled by Init.
func New(opts Options, logger *slog.Logger) *Link {
	if opts.Adapter == "" {
		opts.Adapter = "hci0"
	}
	return newLink(newBluez(opts.Adapter), opts, logger)
}

func newLink(drv driver, opts Options, logger *slog.Logger) *Link {
	return &Link{drv: drv, opts: opts, logger: logger, peers: make(map[domain.MAC]struct{})}
}

func (l *Link) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return radio.ErrClosed
	}
	if err := l.drv.Enable(); err != nil {
		return fmt.Errorf("ble enable (%s): %w", l.opts.Adapter, err)
	}
	l.ready = true
	l.logger.Info("ble adapter enabled", "adapter", l.opts.Adapter)
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

// Send broadcasts the frame for the configured burst duration.
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
	if len(payload) > domain.MaxPayloadLen {
		return fmt.Errorf("payload of %d bytes exceeds %d", len(payload), domain.MaxPayloadLen)
	}

	l.sendMu.Lock()
	defer l.sendMu.Unlock()

	l.seq++
	stop, err := l.drv.Advertise(companyID, encodeFrame(to, l.opts.Addr, l.seq, payload), advertise)
	if err != nil {
		return err
	}
	defer func() {
		if err := stop(); err != nil {
			l.logger.Warn("stop advertisement failed", "error", err)
		}
	}()

	timer := time.NewTimer(l.opts.Burst)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Listen scans for frames addressed to this node until ctx is cancelled.
// ready is called as scanning starts.
func (l *Link) Listen(ctx context.Context, h radio.Handler, ready func()) error {
	l.mu.Lock()
	err := l.usable()
	l.mu.Unlock()
	if err != nil {
		return err
	}

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			if err := l.drv.StopScan(); err != nil {
				l.logger.Warn("stop scan failed", "error", err)
			}
		case <-stopped:
		}
	}()

	last := make(map[domain.MAC]uint8)
	l.logger.Info("ble scanning started", "addr", l.opts.Addr.String())
	if ready != nil {
		ready()
	}
	err = l.drv.Scan(func(id uint16, data []byte) {
		if id != companyID {
			return
		}
		from, seq, payload, ok := decodeFrame(l.opts.Addr, data)
		if !ok {
			return
		}
		if prev, seen := last[from]; seen && prev == seq {
			return
		}
		last[from] = seq
		h(from, payload)
	})
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ble scan: %w", err)
	}
	return nil
}

func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
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

func encodeFrame(to, from domain.MAC, seq uint8, payload []byte) []byte {
	frame := make([]byte, 0, headerSize+len(payload))
	frame = append(frame, magic...)
	frame = append(frame, to[:]...)
	frame = append(frame, from[:]...)
	frame = append(frame, seq)
	return append(frame, payload...)
}

// decodeFrame returns the sender, sequence and payload of a frame addressed to self.
func decodeFrame(self domain.MAC, data []byte) (from domain.MAC, seq uint8, payload []byte, ok bool) {
	if len(data) < headerSize || !bytes.HasPrefix(data, magic) {
		return from, 0, nil, false
	}
	if !bytes.Equal(data[2:8], self[:]) {
		return from, 0, nil, false
	}
	copy(from[:], data[8:14])
	return from, data[14], append([]byte(nil), data[headerSize:]...), true
}
