// Package logger builds the process-wide *slog.Logger. The logger is passed
// down explicitly; nothing here touches slog's default.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/lumberjack.v2"

	"github.com/sakif/fittrack/internal/config"
)

// New returns a logger writing to stdout and, when cfg.File is set, to a
// size-rotated file.
func New(cfg config.LogConfig) *slog.Logger {
	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, os.Stdout)
	}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		})
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	return NewWithWriter(io.MultiWriter(writers...), cfg.Format, cfg.Level)
}

// NewWithWriter is New without the file plumbing.
func NewWithWriter(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
