// Package store executes tag association statements against the n8n
// Postgres database, either through a psql process or an in-process driver.
package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/agentstation/flowtag/pkg/constants"
	"github.com/agentstation/flowtag/pkg/errors"
)

// Executor runs SQL text against the n8n database.
type Executor interface {
	// Exec runs one or more semicolon-separated statements.
	Exec(ctx context.Context, query string) error
	// Scalar runs a query returning a single value and returns it as text.
	Scalar(ctx context.Context, query string) (string, error)
	// Close releases any held connection.
	Close() error
}

type options struct {
	container string
	user      string
	database  string
	timeout   time.Duration
	runner    Runner
}

// Option configures Open.
type Option func(*options)

// WithContainer sets the docker container psql is executed in.
// An empty name runs psql on the host.
func WithContainer(name string) Option {
	return func(o *options) { o.container = name }
}

// WithUser sets the database role.
func WithUser(user string) Option {
	return func(o *options) { o.user = user }
}

// WithDatabase sets the database name.
func WithDatabase(db string) Option {
	return func(o *options) { o.database = db }
}

// WithTimeout bounds each Exec or Scalar call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRunner replaces the process runner used by the psql executor.
func WithRunner(r Runner) Option {
	return func(o *options) { o.runner = r }
}

func defaultOptions() *options {
	return &options{
		container: constants.DefaultContainer,
		user:      constants.DefaultDBUser,
		database:  constants.DefaultDBName,
		timeout:   constants.DefaultSQLTimeout,
		runner:    ExecRunner,
	}
}

func (o *options) psql() PsqlConfig {
	return PsqlConfig{
		Container: o.container,
		User:      o.user,
		Database:  o.database,
		Timeout:   o.timeout,
		Runner:    o.runner,
	}
}

// Open selects an executor by DSN scheme.
//
//	""                             psql inside the default container
//	docker://container/db?user=u   psql inside container
//	psql:///db?user=u              psql on the host
//	postgres://... postgresql://...  lib/pq, single connection
//	memory://                      in-process association table
func Open(dsn string, opts ...Option) (Executor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return NewPsqlExecutor(o.psql()), nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, errors.NewConfigError("store", "invalid database DSN", err)
	}

	switch scheme := strings.ToLower(parsed.Scheme); scheme {
	case "docker", "psql":
		if scheme == "docker" {
			o.container = parsed.Host
		} else {
			o.container = ""
		}
		if db := strings.Trim(parsed.Path, "/"); db != "" {
			o.database = db
		}
		if u := parsed.Query().Get("user"); u != "" {
			o.user = u
		} else if parsed.User != nil && parsed.User.Username() != "" {
			o.user = parsed.User.Username()
		}
		if scheme == "docker" && o.container == "" {
			return nil, errors.NewConfigError("store", "docker DSN requires a container name", nil)
		}
		return NewPsqlExecutor(o.psql()), nil
	case "postgres", "postgresql":
		return NewSQLExecutor(dsn, o.timeout)
	case "memory", "mem":
		return NewMemoryExecutor(), nil
	default:
		return nil, errors.NewConfigError("store", fmt.Sprintf("unsupported database scheme %q", scheme), nil)
	}
}
