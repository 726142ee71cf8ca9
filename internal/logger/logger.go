// Package logger builds the slog loggers used by the command line tool.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// Config holds logger configuration.
type Config struct {
	Writer io.Writer
	Format string
	Level  slog.Level
}

// New creates a logger. An empty format selects the pretty handler and a
// nil writer selects stderr, keeping stdout free for results.
func New(cfg Config) *slog.Logger {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}

	if strings.EqualFold(cfg.Format, FormatJSON) {
		return slog.New(slog.NewJSONHandler(cfg.Writer, &slog.HandlerOptions{Level: cfg.Level}))
	}
	return slog.New(&pretty{w: cfg.Writer, level: cfg.Level, mu: &sync.Mutex{}})
}

// ParseLevel converts a level name to slog.Level. An empty name is info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// ValidFormat reports whether format names a known handler.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case "", FormatJSON, FormatPretty:
		return true
	}
	return false
}

// levels maps a level to its tag and ANSI color.
var levels = map[slog.Level][2]string{
	slog.LevelDebug: {"DBG", "\033[35m"},
	slog.LevelInfo:  {"INF", "\033[32m"},
	slog.LevelWarn:  {"WRN", "\033[33m"},
	slog.LevelError: {"ERR", "\033[31m"},
}

// pretty writes one colored line per record:
//
//	15:04:05.000 INF message key=value ...
type pretty struct {
	w      io.Writer
	level  slog.Level
	prefix string
	attrs  []byte
	mu     *sync.Mutex
}

func (h *pretty) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }

func (h *pretty) Handle(_ context.Context, r slog.Record) error {
	tag, ok := levels[r.Level]
	if !ok {
		tag = [2]string{r.Level.String(), "\033[37m"}
	}

	buf := fmt.Appendf(nil, "\033[2m%s\033[0m %s%s\033[0m \033[1m%s\033[0m",
		r.Time.Format("15:04:05.000"), tag[1], tag[0], r.Message)
	buf = append(buf, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *pretty) appendAttr(buf []byte, a slog.Attr) []byte {
	v := a.Value.Resolve()
	var s string
	switch v.Kind() {
	case slog.KindTime:
		s = v.Time().Format(time.RFC3339Nano)
	default:
		s = v.String()
	}
	return fmt.Appendf(buf, " \033[36m%s%s=%s\033[0m", h.prefix, a.Key, s)
}

func (h *pretty) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append([]byte(nil), h.attrs...)
	for _, a := range attrs {
		c.attrs = h.appendAttr(c.attrs, a)
	}
	return &c
}

func (h *pretty) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}
