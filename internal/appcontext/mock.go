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

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	SettingsFunc     func() *config.Settings
	FsFunc           func() afero.Fs
	ClientFunc       func(*config.Settings) (*n8n.Client, error)
	BackendFunc      func(context.Context, *config.Settings) (tagger.Backend, error)
	PolicyFunc       func(*config.Settings) (*policy.Policy, error)
	CheckerFunc      func() *deps.Checker
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Settings returns settings using the mock function or an empty API configuration.
func (m *Mock) Settings() *config.Settings {
	if m.SettingsFunc != nil {
		return m.SettingsFunc()
	}
	return &config.Settings{Backend: config.BackendAPI, BatchSize: 1}
}

// Fs returns the mock filesystem or a fresh in-memory one.
func (m *Mock) Fs() afero.Fs {
	if m.FsFunc != nil {
		return m.FsFunc()
	}
	return afero.NewMemMapFs()
}

// Client returns a client using the mock function or one built from settings.
func (m *Mock) Client(s *config.Settings) (*n8n.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(s)
	}
	return n8n.New(s.N8NURL, s.APIKey), nil
}

// Backend returns a backend using the mock function or nil.
func (m *Mock) Backend(ctx context.Context, s *config.Settings) (tagger.Backend, error) {
	if m.BackendFunc != nil {
		return m.BackendFunc(ctx, s)
	}
	return nil, nil
}

// Policy returns a policy using the mock function or the built-in one.
func (m *Mock) Policy(s *config.Settings) (*policy.Policy, error) {
	if m.PolicyFunc != nil {
		return m.PolicyFunc(s)
	}
	return policy.Default(), nil
}

// Checker returns a checker using the mock function or the os/exec one.
func (m *Mock) Checker() *deps.Checker {
	if m.CheckerFunc != nil {
		return m.CheckerFunc()
	}
	return deps.NewChecker()
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
