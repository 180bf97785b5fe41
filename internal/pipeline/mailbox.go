package pipeline

import "sync"

// Mailbox is a single-slot handoff for the most recent unconsumed FWI.
// The first value written wins until a reader takes it.
type Mailbox struct {
	mu    sync.Mutex
	value float64
	full  bool
}

// TryPut stores v if the slot is empty and reports whether it was stored.
func (m *Mailbox) TryPut(v float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.full {
		return false
	}
	m.value = v
	m.full = true
	return true
}

// TryTake removes and returns the stored value without blocking.
// The check and removal happen under one lock so two readers never both get the same value.
func (m *Mailbox) TryTake() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.full {
		return 0, false
	}
	m.full = false
	return m.value, true
}

// Peek returns the stored value without consuming it.
func (m *Mailbox) Peek() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.full
}
