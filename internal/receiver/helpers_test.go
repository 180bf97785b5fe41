package receiver_test

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/couchcryptid/firesense/internal/observability"
)

// mockDisplay records operations on a 16x2 character grid.
type mockDisplay struct {
	mu      sync.Mutex
	initErr error
	inited  bool
	clears  int
	rows    [2][16]byte
}

func newMockDisplay() *mockDisplay {
	d := &mockDisplay{}
	d.blank()
	return d
}

func (d *mockDisplay) blank() {
	for r := range d.rows {
		for c := range d.rows[r] {
			d.rows[r][c] = ' '
		}
	}
}

func (d *mockDisplay) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inited = true
	return d.initErr
}

func (d *mockDisplay) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clears++
	d.blank()
	return nil
}

func (d *mockDisplay) Print(col, row int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := 0; i < len(text) && col+i < 16; i++ {
		d.rows[row][col+i] = text[i]
	}
	return nil
}

func (d *mockDisplay) line(row int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return strings.TrimRight(string(d.rows[row][:]), " ")
}

func (d *mockDisplay) clearCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clears
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func (d *mockDisplay) isInited() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inited
}
