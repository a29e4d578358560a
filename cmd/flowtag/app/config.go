package app

import (
	"os"

	"github.com/spf13/viper"

	"github.com/agentstation/flowtag/internal/config"
)

// Config holds the CLI configuration: global flags, logging options and
// the resolved run settings loaded from .env files, the environment and
// the optional config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	// Settings are the resolved connection and input parameters.
	Settings *config.Settings

	viper *viper.Viper
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables
//  3. .env files
//  4. Config file (configFile, or ~/.flowtag.yaml)
//  5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	settings, v, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	return &Config{
		ConfigFile: v.ConfigFileUsed(),
		LogLevel:   os.Getenv("LOG_LEVEL"),
		LogFormat:  getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:  getEnvOrDefault("LOG_OUTPUT", "stderr"),
		Format:     os.Getenv("FLOWTAG_FORMAT"),
		Settings:   settings,
		viper:      v,
	}, nil
}

// Reload re-reads settings from configFile, keeping flag values.
func (c *Config) Reload(configFile string) error {
	v, err := config.NewViper(configFile)
	if err != nil {
		return err
	}
	c.viper = v
	c.ConfigFile = v.ConfigFileUsed()
	c.Settings = config.FromViper(v)
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
