// Package lcd renders the receiver's 16x2 character display.
package lcd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Display geometry.
const (
	Cols = 16
	Rows = 2
)

var (
	errNotInitialized = errors.New("lcd: not initialized")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5f87af")).
			Foreground(lipgloss.Color("#afff5f")).
			Background(lipgloss.Color("#1c1c1c"))
)

// Terminal draws the display as a bordered panel on w. A frame is written
// only when the contents change.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	home   bool
	inited bool
	grid   [Rows][Cols]byte
	last   string
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithCursorHome moves the cursor to the top-left before each frame so the
// panel redraws in place on an ANSI terminal.
func WithCursorHome() Option {
	return func(t *Terminal) { t.home = true }
}

// NewTerminal creates a Terminal writing to w.
func NewTerminal(w io.Writer, opts ...Option) *Terminal {
	t := &Terminal{w: w}
	for _, opt := range opts {
		opt(t)
	}
	t.blank()
	return t
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inited = true
	if t.home {
		if _, err := io.WriteString(t.w, "\033[H\033[2J"); err != nil {
			return fmt.Errorf("lcd: clear screen: %w", err)
		}
	}
	t.blank()
	return t.flush()
}

func (t *Terminal) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.inited {
		return errNotInitialized
	}
	t.blank()
	return t.flush()
}

// Print writes text starting at (col, row). Characters past the last
// column are dropped.
func (t *Terminal) Print(col, row int, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.inited {
		return errNotInitialized
	}
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return fmt.Errorf("lcd: position (%d,%d) outside %dx%d", col, row, Cols, Rows)
	}
	for i := 0; i < len(text) && col+i < Cols; i++ {
		t.grid[row][col+i] = text[i]
	}
	return t.flush()
}

// Lines returns the current contents, one string per row.
func (t *Terminal) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lines()
}

func (t *Terminal) lines() []string {
	out := make([]string, Rows)
	for r := range t.grid {
		out[r] = string(t.grid[r][:])
	}
	return out
}

func (t *Terminal) blank() {
	for r := range t.grid {
		for c := range t.grid[r] {
			t.grid[r][c] = ' '
		}
	}
}

func (t *Terminal) flush() error {
	frame := panelStyle.Render(strings.Join(t.lines(), "\n"))
	if frame == t.last {
		return nil
	}
	t.last = frame
	if t.home {
		frame = "\033[H" + frame
	}
	if _, err := io.WriteString(t.w, frame+"\n"); err != nil {
		return fmt.Errorf("lcd: write frame: %w", err)
	}
	return nil
}
