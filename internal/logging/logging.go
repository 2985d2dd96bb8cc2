// Package logging builds the process logger. The chat surfaces own the
// terminal, so log output goes to a rotated file rather than stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eachlabs/solace/internal/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup returns a logger writing JSON lines to cfg.File. verbose forces
// debug level. An empty file path discards all output.
func Setup(cfg config.LoggingConfig, verbose bool) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}
	if verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	if cfg.File == "" {
		return zerolog.Nop(), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to create log dir: %w", err)
	}

	w := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}

	return New(w, level), w, nil
}

// New builds a timestamped logger on w.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a config level name onto a zerolog level. Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
