package logging

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/flowtag/pkg/constants"
)

// Config selects where and how records are written.
type Config struct {
	// Level is trace, debug, info, warn (or warning), error or off.
	// Anything else means info.
	Level string

	// Format is json, console or auto. Auto picks console when the output
	// is a terminal.
	Format string

	// Output is stderr (the default), stdout, discard or a file path the
	// records are appended to.
	Output string

	// NoColor disables ANSI colors in console mode.
	NoColor bool

	// AddCaller adds file:line to each record.
	AddCaller bool

	// Fields are attached to every record.
	Fields map[string]string
}

// DefaultConfig returns info-level auto-format logging to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Format:  "auto",
		Output:  "stderr",
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// NewLoggerFromConfig builds a logger from cfg. A nil cfg means DefaultConfig.
// An unopenable Output file falls back to stderr.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	lc := zerolog.New(writer(cfg)).Level(level).With().Timestamp()
	if cfg.AddCaller {
		lc = lc.Caller()
	}

	keys := make([]string, 0, len(cfg.Fields))
	for k := range cfg.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lc = lc.Str(k, cfg.Fields[k])
	}

	return lc.Logger()
}

func writer(cfg *Config) io.Writer {
	var file *os.File
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		file = os.Stderr
	case "stdout":
		file = os.Stdout
	case "discard", "none":
		return io.Discard
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
		if err != nil {
			file = os.Stderr
		} else {
			file = f
		}
	}

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		return consoleWriter(file, cfg.NoColor)
	case "json":
		return file
	}
	if file == os.Stderr && isTerminal(file) {
		return consoleWriter(file, cfg.NoColor)
	}
	return file
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "none", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
