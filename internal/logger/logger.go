// Package logger is the process-wide console logger: colored, leveled
// lines tagged by subsystem when attached to a terminal, structured JSON
// otherwise. internal/esi, internal/dispatcher and internal/transport use
// zerolog directly (with a request-scoped logger threaded through
// context.Context); this package is for startup and CLI-facing output
// where a subsystem tag reads better than a structured field.
package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var base zerolog.Logger

func init() {
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	var w interface{ Write([]byte) (int, error) } = os.Stdout
	if isTTY {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	base = zerolog.New(w).With().Timestamp().Logger()
}

func format(msg string, args ...interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Info logs a routine message under the given subsystem tag.
func Info(tag, msg string, args ...interface{}) {
	base.Info().Str("tag", tag).Msg(format(msg, args...))
}

// Success logs a positive-outcome message (e.g. a completed startup step).
func Success(tag, msg string, args ...interface{}) {
	base.Info().Str("tag", tag).Bool("ok", true).Msg(format(msg, args...))
}

// Warn logs a recoverable problem.
func Warn(tag, msg string, args ...interface{}) {
	base.Warn().Str("tag", tag).Msg(format(msg, args...))
}

// Error logs an unrecoverable or caller-relevant failure.
func Error(tag, msg string, args ...interface{}) {
	base.Error().Str("tag", tag).Msg(format(msg, args...))
}

// Banner prints a startup banner naming the running version. Purely
// cosmetic console output, not a structured log line.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(os.Stdout, "\n=== weve-market (%s) ===\n\n", version)
}

// Section prints a labeled divider, used to separate phases of startup
// output (config loaded, caches built, server listening).
func Section(title string) {
	fmt.Fprintf(os.Stdout, "\n-- %s --\n", title)
}

// Stats prints one human-readable key/value startup statistic.
func Stats(key string, value interface{}) {
	switch v := value.(type) {
	case int:
		fmt.Fprintf(os.Stdout, "  %-28s %s\n", key, humanize.Comma(int64(v)))
	case int64:
		fmt.Fprintf(os.Stdout, "  %-28s %s\n", key, humanize.Comma(v))
	case time.Duration:
		fmt.Fprintf(os.Stdout, "  %-28s %s\n", key, v.String())
	default:
		fmt.Fprintf(os.Stdout, "  %-28s %v\n", key, v)
	}
}

// Base returns the shared zerolog.Logger, for components (main.go, the
// HTTP transport) that need to attach it to a context.Context via
// zerolog.Logger.WithContext.
func Base() zerolog.Logger {
	return base
}
