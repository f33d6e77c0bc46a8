package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/lmittmann/tint"
)

// slogLevel maps a config log level onto slog. logr verbosity V(n) is logged
// at slog level -n, so debug (-4) opens V(1) through V(4).
func slogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewFileLogger appends slog text records to path, creating its directory.
// The TUI owns the terminal, so this is where its logs go.
func NewFileLogger(path, level string) (logr.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return logr.Discard(), nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return logr.Discard(), nil, fmt.Errorf("open log file: %w", err)
	}
	handler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: slogLevel(level)})
	return logr.FromSlogHandler(handler), file, nil
}

// NewConsoleLogger returns a human-readable logger for the headless commands.
func NewConsoleLogger(w io.Writer, level string) logr.Logger {
	handler := tint.NewHandler(w, &tint.Options{
		Level:       slogLevel(level),
		TimeFormat:  time.TimeOnly,
		ReplaceAttr: rewriteLevel,
		NoColor:     color.NoColor,
	})
	return logr.FromSlogHandler(handler)
}

func rewriteLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) != 0 {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	var text string
	switch {
	case level < slog.LevelInfo:
		text = "DEBUG"
	case level < slog.LevelWarn:
		text = color.GreenString("INFO")
	case level < slog.LevelError:
		text = color.YellowString("WARN")
	default:
		text = color.RedString("ERROR")
	}
	a.Value = slog.StringValue(text)
	return a
}
