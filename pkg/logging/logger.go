// Package logging configures the zerolog loggers flowtag writes its
// progress and diagnostics to. Records go to stderr so stdout stays free for
// command output: human-readable on a terminal, one JSON object per line
// otherwise.
//
//	ctx = logging.WithRunID(ctx, runID)
//	logging.FromContext(ctx).Warn().Str("workflow", name).Msg("No source path")
package logging

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger backs packages constructed without an explicit logger.
var defaultLogger = NewLoggerFromConfig(&Config{
	Level:   os.Getenv("LOG_LEVEL"),
	Format:  os.Getenv("LOG_FORMAT"),
	NoColor: os.Getenv("NO_COLOR") != "",
})

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, including zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Warn starts a warning on the process-wide logger.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// consoleWriter renders records for a human at a terminal.
func consoleWriter(out *os.File, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: noColor}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
