// Package app provides the application context and dependency management
// for the flowtag CLI. It centralizes configuration, logging and the
// construction of n8n clients and tagging backends.
package app

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/flowtag/internal/config"
	"github.com/agentstation/flowtag/internal/deps"
	"github.com/agentstation/flowtag/internal/n8n"
	"github.com/agentstation/flowtag/internal/store"
	"github.com/agentstation/flowtag/internal/transport"
	"github.com/agentstation/flowtag/pkg/errors"
	"github.com/agentstation/flowtag/pkg/policy"
	"github.com/agentstation/flowtag/pkg/tagger"
)

// App represents the flowtag application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	fs     afero.Fs

	checker *deps.Checker
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		fs:      afero.NewOsFs(),
		checker: deps.NewChecker(),
	}

	cfg, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format value, empty meaning auto-detect.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Fs returns the filesystem inputs are read from.
func (a *App) Fs() afero.Fs {
	return a.fs
}

// Settings returns a copy of the resolved settings.
func (a *App) Settings() *config.Settings {
	s := *a.config.Settings
	return &s
}

// Checker returns the dependency checker.
func (a *App) Checker() *deps.Checker {
	return a.checker
}

// Client returns an n8n API client for s.
func (a *App) Client(s *config.Settings) (*n8n.Client, error) {
	if err := s.RequireAPI(); err != nil {
		return nil, err
	}
	return n8n.New(s.N8NURL, s.APIKey,
		transport.WithTimeout(s.HTTPTimeout),
		transport.WithUserAgent("flowtag/"+a.version),
	), nil
}

// Policy loads s.PolicyFile, or returns the built-in policy.
func (a *App) Policy(s *config.Settings) (*policy.Policy, error) {
	if s.PolicyFile == "" {
		return policy.Default(), nil
	}
	return policy.Load(a.fs, s.PolicyFile)
}

// Backend opens the backend selected by s.Backend. The relational backend
// is verified before it is returned: its external programs must be on PATH
// and the connectivity probe must succeed.
func (a *App) Backend(ctx context.Context, s *config.Settings) (tagger.Backend, error) {
	switch s.Backend {
	case config.BackendAPI:
		client, err := a.Client(s)
		if err != nil {
			return nil, err
		}
		return tagger.NewAPIBackend(client, a.logger), nil
	case config.BackendDB:
		return a.openDB(ctx, s)
	default:
		return nil, errors.NewConfigError("backend", "unknown backend "+s.Backend+" (want api or db)", nil)
	}
}

func (a *App) openDB(ctx context.Context, s *config.Settings) (tagger.Backend, error) {
	ex, err := store.Open(s.DatabaseDSN, store.WithTimeout(s.SQLTimeout))
	if err != nil {
		return nil, err
	}

	if p, ok := ex.(*store.PsqlExecutor); ok {
		required := p.Dependencies()
		if missing := deps.Missing(required, a.checker.CheckAll(ctx, required)); len(missing) > 0 {
			_ = ex.Close()
			return nil, errors.NewConfigError("store", missing[0].DisplayName+" is not installed ("+missing[0].Description+")", nil)
		}
	}

	backend := tagger.NewDBBackend(ex, a.logger, tagger.WithBatchSize(s.BatchSize))
	count, err := backend.Ping(ctx)
	if err != nil {
		_ = backend.Close()
		return nil, errors.NewConfigError("store", "database connectivity check failed", err)
	}
	a.logger.Debug().Int("tags", count).Msg("Database reachable")
	return backend, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithFs sets the filesystem inputs are read from.
func WithFs(fs afero.Fs) Option {
	return func(a *App) error {
		a.fs = fs
		return nil
	}
}

// WithChecker sets the checker used to verify the programs the psql
// executor shells out to.
func WithChecker(c *deps.Checker) Option {
	return func(a *App) error {
		a.checker = c
		return nil
	}
}
