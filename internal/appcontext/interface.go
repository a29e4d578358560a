// Package appcontext provides the shared application context interface
// used by all commands. Commands depend on this interface rather than on
// the concrete App so they can be exercised against a Mock.
package appcontext

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/flowtag/internal/config"
	"github.com/agentstation/flowtag/internal/deps"
	"github.com/agentstation/flowtag/internal/n8n"
	"github.com/agentstation/flowtag/pkg/policy"
	"github.com/agentstation/flowtag/pkg/tagger"
)

// Interface defines the application context interface that commands need.
// The App struct from cmd/flowtag/app implements it.
type Interface interface {
	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml, wide).
	OutputFormat() string

	// Settings returns the resolved connection and input settings.
	// Commands may override fields from their own flags on the returned copy.
	Settings() *config.Settings

	// Fs returns the filesystem the source tree and input files are read from.
	Fs() afero.Fs

	// Client returns an n8n API client built from settings.
	// It fails with a ConfigError when the URL or key is missing.
	Client(settings *config.Settings) (*n8n.Client, error)

	// Backend opens the tagging backend named by settings.Backend.
	// The caller owns the returned backend and must Close it.
	Backend(ctx context.Context, settings *config.Settings) (tagger.Backend, error)

	// Policy returns the label policy: settings.PolicyFile when set,
	// otherwise the built-in table.
	Policy(settings *config.Settings) (*policy.Policy, error)

	// Checker returns the checker used to verify external programs.
	Checker() *deps.Checker

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
