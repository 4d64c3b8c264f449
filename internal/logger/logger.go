// Package logger configures the process-wide slog logger.
//
// The TUI owns the terminal, so by default records go to debug.log inside
// the config directory; --debug sends them to stderr instead.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the log file inside the config directory.
const FileName = "debug.log"

// Options selects where and how to log.
type Options struct {
	Level  string // debug, info, warn, error (default: info)
	Format string // text, json (default: text)
	Dir    string // directory for FileName; empty discards output
	Stderr bool   // log to stderr instead of a file
}

// Init installs the default logger. The returned func closes the log file.
func Init(opts Options) (func() error, error) {
	w, closeFn, err := open(opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(New(w, opts.Level, opts.Format))
	return closeFn, nil
}

// New builds a logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func open(opts Options) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	if opts.Stderr {
		return os.Stderr, noop, nil
	}
	if opts.Dir == "" {
		return io.Discard, noop, nil
	}
	if err := os.MkdirAll(opts.Dir, 0700); err != nil {
		return nil, nil, fmt.Errorf("logger: create dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(opts.Dir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: open log file: %w", err)
	}
	return f, f.Close, nil
}
