package domain

import (
	"fmt"
	"sync"
)

// ClockState is the receiver's software hh:mm:ss counter.
// It is advanced by the 1 Hz tick and reset by the display loop.
type ClockState struct {
	mu     sync.Mutex
	hour   int
	minute int
	second int
}

// Tick advances the counter by one second.
func (c *ClockState) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.second++
	if c.second == 60 {
		c.second = 0
		c.minute++
	}
	if c.minute == 60 {
		c.minute = 0
		c.hour++
	}
}

// Reset sets all counters to zero.
func (c *ClockState) Reset() {
	c.mu.Lock()
	c.hour, c.minute, c.second = 0, 0, 0
	c.mu.Unlock()
}

// HMS returns the current hour, minute and second.
func (c *ClockState) HMS() (hour, minute, second int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hour, c.minute, c.second
}

// Format renders the counter as HH:MM:SS with each field zero-padded to two digits.
func (c *ClockState) Format() string {
	h, m, s := c.HMS()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
