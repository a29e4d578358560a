package app

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/flowtag/pkg/logging"
)

// NewLogger builds the run logger from cfg. The level is taken from, in
// order: --log-level (or LOG_LEVEL), -q, -v, then info. Conflicting
// settings are reported on the new logger itself.
func NewLogger(cfg *Config) zerolog.Logger {
	level, warning := determineLogLevel(cfg)

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Output:    cfg.LogOutput,
		NoColor:   cfg.NoColor || os.Getenv("NO_COLOR") != "",
		AddCaller: level == "debug" || level == "trace",
	})
	if warning != "" {
		logger.Warn().Str("level", level).Msg(warning)
	}
	return logger
}

// determineLogLevel returns the effective level and, when the inputs
// conflict or are invalid, a warning describing the choice made.
func determineLogLevel(cfg *Config) (level, warning string) {
	switch {
	case cfg.LogLevel != "":
		if !knownLevel(cfg.LogLevel) {
			return "info", "Unknown log level " + cfg.LogLevel + ", using info"
		}
		return cfg.LogLevel, ""
	case cfg.Quiet && cfg.Verbose:
		return "warn", "Both --verbose and --quiet given, using --quiet"
	case cfg.Quiet:
		return "warn", ""
	case cfg.Verbose:
		return "debug", ""
	default:
		return "info", ""
	}
}

func knownLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return true
	}
	return false
}
