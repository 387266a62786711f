// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Setup configures the global logger for level and format, writing to stderr.
func Setup(level, format string) {
	SetupWithWriter(level, format, os.Stderr)
}

// SetupWithWriter is Setup with an explicit output.
func SetupWithWriter(level, format string, out io.Writer) {
	lvl := ParseLevel(level)
	zerolog.SetGlobalLevel(lvl)

	if strings.EqualFold(format, FormatJSON) {
		log.Logger = zerolog.New(out).
			With().
			Timestamp().
			Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}

	if lvl == zerolog.DebugLevel {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	// log.Ctx falls back to the global logger for contexts without one.
	zerolog.DefaultContextLogger = &log.Logger
}

// ParseLevel converts a string log level to zerolog.Level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// TaskLogger adapts zerolog to the task queue's Info/Error logger interface.
type TaskLogger struct{}

func (TaskLogger) Info(message string, params ...any) {
	log.Info().Str("component", "tasks").Fields(params).Msg(message)
}

func (TaskLogger) Error(message string, params ...any) {
	log.Error().Str("component", "tasks").Fields(params).Msg(message)
}
