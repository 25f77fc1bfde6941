// Package log is the process-wide zerolog logger. Components take a child
// logger through With so every line names the module it came from.
package log

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yaguaretech/builder/config"
)

// logger is built once from config and never replaced
var logger = newLogger(os.Stdout, config.Get())

// newLogger writes human-readable lines in development and JSON elsewhere
func newLogger(out io.Writer, cfg *config.Config) zerolog.Logger {
	if cfg.IsDevelopment() {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).
		Level(parseLogLevel(cfg.LogLevel)).
		With().
		Timestamp().
		Logger()
}

func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func Debug() *zerolog.Event { return logger.Debug() }
func Info() *zerolog.Event  { return logger.Info() }
func Warn() *zerolog.Event  { return logger.Warn() }
func Error() *zerolog.Event { return logger.Error() }

// With returns a child logger carrying a "module" field
func With(module string) zerolog.Logger {
	return logger.With().Str("module", module).Logger()
}

// StdErrorLogger adapts the logger for http.Server.ErrorLog. Lines arrive
// at warn level with the stdlib's trailing newline removed.
func StdErrorLogger() *stdlog.Logger {
	return stdlog.New(stdWriter{logger.With().Str("module", "http").Logger()}, "", 0)
}

type stdWriter struct {
	logger zerolog.Logger
}

func (w stdWriter) Write(p []byte) (int, error) {
	w.logger.Warn().Msg(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
