package deps_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	depscmd "github.com/agentstation/flowtag/cmd/flowtag/cmd/deps"
	"github.com/agentstation/flowtag/internal/appcontext"
	"github.com/agentstation/flowtag/internal/deps"
	flowerrors "github.com/agentstation/flowtag/pkg/errors"
)

func checker(installed map[string]string) *deps.Checker {
	return deps.NewCheckerWith(
		func(name string) (string, error) {
			if _, ok := installed[name]; ok {
				return "/usr/bin/" + name, nil
			}
			return "", exec.ErrNotFound
		},
		func(_ context.Context, name string, _ ...string) ([]byte, error) {
			return []byte(installed[name]), nil
		},
	)
}

func run(mock *appcontext.Mock, args ...string) (string, error) {
	cmd := depscmd.NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDepsDockerAvailable(t *testing.T) {
	mock := &appcontext.Mock{
		OutputFormatFunc: func() string { return "json" },
		CheckerFunc:      func() *deps.Checker { return checker(map[string]string{"docker": "Docker version 27.1.1"}) },
	}

	out, err := run(mock, "--dsn", "docker://n8n-postgres/n8n")
	require.NoError(t, err)

	var got depscmd.Results
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Dependencies, 1)
	assert.Equal(t, "docker", got.Dependencies[0].Name)
	assert.True(t, got.Dependencies[0].Available)
	assert.Equal(t, "/usr/bin/docker", got.Dependencies[0].Path)
	assert.Zero(t, got.Missing)
}

func TestDepsPsqlMissing(t *testing.T) {
	mock := &appcontext.Mock{
		CheckerFunc: func() *deps.Checker { return checker(nil) },
	}

	out, err := run(mock, "--dsn", "psql:///n8n?user=n8n")
	assert.True(t, flowerrors.IsValidationError(err))
	assert.Contains(t, out, "PostgreSQL client")
	assert.Contains(t, out, "Missing")
}

func TestDepsPsqlTooOld(t *testing.T) {
	mock := &appcontext.Mock{
		OutputFormatFunc: func() string { return "json" },
		CheckerFunc:      func() *deps.Checker { return checker(map[string]string{"psql": "psql (PostgreSQL) 9.4.26"}) },
	}

	out, err := run(mock, "--dsn", "psql:///n8n")
	require.NoError(t, err)

	var got depscmd.Results
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Dependencies, 1)
	assert.True(t, got.Dependencies[0].Available)
	assert.Equal(t, "9.4.26", got.Dependencies[0].Version)
	assert.Contains(t, got.Dependencies[0].Error, "requires 9.5 or later")
}

func TestDepsInProcessDSN(t *testing.T) {
	mock := &appcontext.Mock{
		CheckerFunc: func() *deps.Checker { return checker(nil) },
	}

	out, err := run(mock, "--dsn", "memory://")
	require.NoError(t, err)
	assert.Contains(t, out, "No external programs needed")
}

func TestDepsInvalidDSN(t *testing.T) {
	_, err := run(&appcontext.Mock{}, "--dsn", "ftp://host/db")
	assert.True(t, flowerrors.IsConfigError(err))
}
