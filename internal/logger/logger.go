// Package logger builds the charmbracelet/log loggers used by the engine, jobs, api and cmd.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New creates a text logger with the given prefix that follows the global log level.
func New(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stdout, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// NewWithConfig creates a logger with explicit level, timestamp and formatter settings.
func NewWithConfig(prefix string, level log.Level, showTimestamp bool, formatter log.Formatter) *log.Logger {
	return NewWithWriter(os.Stdout, prefix, level, showTimestamp, formatter)
}

// NewWithWriter is NewWithConfig writing to w.
func NewWithWriter(w io.Writer, prefix string, level log.Level, showTimestamp bool, formatter log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    false,
		ReportTimestamp: showTimestamp,
		Formatter:       formatter,
	})
}

// Discard returns a logger that drops everything. Tests use it to keep output quiet.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLevel maps a config string ("debug", "info", "warn", "error") to a level.
// Unknown or empty strings fall back to info.
func ParseLevel(s string) log.Level {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// ParseFormatter maps "json" and "logfmt" to their formatters; anything else is text.
func ParseFormatter(s string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
