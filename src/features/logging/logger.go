package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/interrobot/taskrunner/src/features/config"
)

// SetupLogger builds the process logger: slog on top of a charmbracelet handler.
func SetupLogger(cfg *config.Manager) *slog.Logger {
	return NewLogger(os.Stderr, cfg.Get().Logger)
}

// NewLogger builds a logger writing to w with the given settings.
func NewLogger(w io.Writer, settings config.Logger) *slog.Logger {
	var formatter log.Formatter
	switch settings.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		formatter = log.TextFormatter
	}

	level := log.InfoLevel
	switch settings.Level {
	case "debug":
		level = log.DebugLevel
	case "warn":
		level = log.WarnLevel
	case "error":
		level = log.ErrorLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportCaller:    level == log.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "taskrunner",
		Formatter:       formatter,
		Level:           level,
	})

	return slog.New(handler)
}
