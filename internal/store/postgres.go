package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/agentstation/flowtag/pkg/errors"
)

type sqlOpenFunc func(driverName, dsn string) (*sql.DB, error)

// SQLExecutor runs statements over a single lib/pq connection.
type SQLExecutor struct {
	dsn     string
	timeout time.Duration
	openDB  sqlOpenFunc

	initOnce sync.Once
	initErr  error
	db       *sql.DB
}

// NewSQLExecutor creates an executor for a postgres:// DSN. The connection
// is opened lazily on first use.
func NewSQLExecutor(dsn string, timeout time.Duration) (*SQLExecutor, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.NewConfigError("store", "postgres DSN is empty", nil)
	}
	return &SQLExecutor{
		dsn:     dsn,
		timeout: timeout,
		openDB:  sql.Open,
	}, nil
}

// Exec implements Executor. Multiple statements are sent in one simple query
// and run as a single implicit transaction.
func (e *SQLExecutor) Exec(ctx context.Context, query string) error {
	if err := e.ensureReady(); err != nil {
		return err
	}
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	if _, err := e.db.ExecContext(ctx, query); err != nil {
		return e.wrap(ctx, err)
	}
	return nil
}

// Scalar implements Executor.
func (e *SQLExecutor) Scalar(ctx context.Context, query string) (string, error) {
	if err := e.ensureReady(); err != nil {
		return "", err
	}
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	var v sql.NullString
	if err := e.db.QueryRowContext(ctx, query).Scan(&v); err != nil {
		return "", e.wrap(ctx, err)
	}
	return v.String, nil
}

// Close implements Executor.
func (e *SQLExecutor) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}

func (e *SQLExecutor) ensureReady() error {
	e.initOnce.Do(func() {
		db, err := e.openDB("postgres", e.dsn)
		if err != nil {
			e.initErr = errors.WrapResource("open", "database", redact(e.dsn), err)
			return
		}
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		e.db = db
	})
	return e.initErr
}

func (e *SQLExecutor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return context.WithCancel(ctx)
}

func (e *SQLExecutor) wrap(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("postgres: %w: %w", errors.ErrTimeout, err)
	}
	return fmt.Errorf("postgres: %w", err)
}

// redact hides the password of a URL-style DSN.
func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if user, _, ok := strings.Cut(creds, ":"); ok {
		return dsn[:scheme+3] + user + ":xxxxx" + dsn[at:]
	}
	return dsn
}
