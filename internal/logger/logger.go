// Package logger holds the process-wide structured logger. It discards
// everything until Init is called.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/mappings/pkg/types"
)

// L is the global logger.
var L = discard()

// closer is the log file opened by the last Init, if any.
var closer io.Closer

// Options configures Init.
type Options struct {
	Enabled bool      // false discards all output
	Level   string    // one of the types.LogLevel* names; default info
	JSON    bool      // JSON lines instead of key=value text
	File    string    // append to this file instead of Writer
	Writer  io.Writer // default os.Stderr
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a configured level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "", types.LogLevelInfo:
		return slog.LevelInfo, nil
	case types.LogLevelDebug:
		return slog.LevelDebug, nil
	case types.LogLevelWarn:
		return slog.LevelWarn, nil
	case types.LogLevelError:
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: %q", types.ErrLogLevelUnknown, name)
}

// Init replaces L according to opts. Call it before anything logs.
func Init(opts Options) error {
	if err := Close(); err != nil {
		return err
	}
	if !opts.Enabled {
		L = discard()
		return nil
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	hopts := &slog.HandlerOptions{Level: level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(w, hopts))
	} else {
		L = slog.New(slog.NewTextHandler(w, hopts))
	}
	return nil
}

// Close releases the log file opened by Init and resets L to discard.
func Close() error {
	L = discard()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }

func Info(msg string, args ...any) { L.Info(msg, args...) }

func Warn(msg string, args ...any) { L.Warn(msg, args...) }

func Error(msg string, args ...any) { L.Error(msg, args...) }
