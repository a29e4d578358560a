package store

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/agentstation/flowtag/internal/deps"
	"github.com/agentstation/flowtag/pkg/errors"
)

// Runner executes a program and returns its captured output.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

// ExecRunner runs programs with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) (string, string, error) {
	//nolint:gosec // name is docker or psql, args are built by PsqlExecutor
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// PsqlConfig configures a PsqlExecutor.
type PsqlConfig struct {
	Container string // docker container; empty runs psql on the host
	User      string
	Database  string
	Timeout   time.Duration
	Runner    Runner
}

// PsqlExecutor runs each call as a separate psql process. Nothing is pooled
// between calls.
type PsqlExecutor struct {
	cfg PsqlConfig
}

// NewPsqlExecutor creates a psql process executor.
func NewPsqlExecutor(cfg PsqlConfig) *PsqlExecutor {
	if cfg.Runner == nil {
		cfg.Runner = ExecRunner
	}
	return &PsqlExecutor{cfg: cfg}
}

// Command returns the program and arguments used to run query.
func (e *PsqlExecutor) Command(query string) (string, []string) {
	psql := []string{"psql", "-U", e.cfg.User, "-d", e.cfg.Database, "-t", "-c", query}
	if e.cfg.Container == "" {
		return psql[0], psql[1:]
	}
	return "docker", append([]string{"exec", e.cfg.Container}, psql...)
}

// Dependencies lists the programs this executor needs on PATH.
func (e *PsqlExecutor) Dependencies() []deps.Dependency {
	if e.cfg.Container != "" {
		return []deps.Dependency{{
			Name:          "docker",
			DisplayName:   "Docker",
			CheckCommands: []string{"docker"},
			Description:   "runs psql inside the " + e.cfg.Container + " container",
		}}
	}
	return []deps.Dependency{{
		Name:          "psql",
		DisplayName:   "PostgreSQL client",
		CheckCommands: []string{"psql"},
		MinVersion:    "9.5",
		Description:   "executes tag association statements",
	}}
}

// Exec implements Executor.
func (e *PsqlExecutor) Exec(ctx context.Context, query string) error {
	_, err := e.run(ctx, query)
	return err
}

// Scalar implements Executor.
func (e *PsqlExecutor) Scalar(ctx context.Context, query string) (string, error) {
	out, err := e.run(ctx, query)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Close implements Executor.
func (e *PsqlExecutor) Close() error { return nil }

func (e *PsqlExecutor) run(ctx context.Context, query string) (string, error) {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	name, args := e.Command(query)
	stdout, stderr, err := e.cfg.Runner(ctx, name, args...)
	if err != nil {
		perr := errors.NewProcessError("psql", name+" "+strings.Join(args[:len(args)-1], " "), strings.TrimSpace(stderr), err)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
		}
		if ctx.Err() == context.DeadlineExceeded {
			perr.Err = errors.Join(errors.ErrTimeout, err)
		}
		return "", perr
	}
	return stdout, nil
}
