package observability

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/lmittmann/tint"
)

// Log formats accepted by NewLogger.
const (
	FormatJSON    = "json"
	FormatText    = "text"
	FormatConsole = "console"
)

// NewLogger builds a slog logger writing to w.
// json is meant for deployed nodes, text (tint) and console (charm) for a terminal.
func NewLogger(w io.Writer, level, format, role string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var h slog.Handler
	switch strings.ToLower(format) {
	case FormatJSON:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	case FormatText:
		h = tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
		})
	case FormatConsole:
		cl := charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Prefix:          role,
		})
		cl.SetLevel(charmlog.Level(lvl))
		h = cl
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q (allowed: json, text, console)", format)
	}

	return slog.New(h).With("role", role), nil
}

// ParseLevel converts a LOG_LEVEL value into a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
