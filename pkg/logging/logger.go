// Package logging builds the structured loggers used by tsblame.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	DEBUG = "DEBUG"
	INFO  = "INFO"
	WARN  = "WARN"
	ERROR = "ERROR"

	FormatJSON = "json"
	FormatText = "text"
)

// ParseLevel maps a level name to a slog level; unknown names give Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New creates a JSON or text logger writing to dest (stdout when nil).
func New(level, format string, dest io.Writer) *slog.Logger {
	if dest == nil {
		dest = os.Stdout
	}
	options := &slog.HandlerOptions{
		AddSource: false,
		Level:     ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Rename the time key to "timestamp"
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			return a
		},
	}
	var handler slog.Handler
	if strings.EqualFold(format, FormatText) {
		handler = slog.NewTextHandler(dest, options)
	} else {
		handler = slog.NewJSONHandler(dest, options)
	}
	return slog.New(handler)
}

// Init creates a logger with New and installs it as the slog default.
func Init(level, format string, dest io.Writer) *slog.Logger {
	logger := New(level, format, dest)
	slog.SetDefault(logger)
	return logger
}
