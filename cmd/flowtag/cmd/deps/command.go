// Package deps implements the command that checks the external programs
// the database backend shells out to.
package deps

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/flowtag/internal/appcontext"
	"github.com/agentstation/flowtag/internal/cmd/emoji"
	"github.com/agentstation/flowtag/internal/cmd/output"
	"github.com/agentstation/flowtag/internal/deps"
	"github.com/agentstation/flowtag/internal/store"
	"github.com/agentstation/flowtag/pkg/errors"
)

// Detail combines a dependency with its status.
type Detail struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Available   bool   `json:"available" yaml:"available"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
	Purpose     string `json:"purpose" yaml:"purpose"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Results is the document rendered for structured output.
type Results struct {
	Executor     string   `json:"executor" yaml:"executor"`
	Dependencies []Detail `json:"dependencies" yaml:"dependencies"`
	Missing      int      `json:"missing" yaml:"missing"`
}

// NewCommand creates the deps command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:     "deps",
		GroupID: "management",
		Short:   "Check external programs used by the database backend",
		Long: `Deps reports whether the programs the database backend runs are installed.

A docker:// DSN (and the empty default) needs docker on PATH, a psql:// DSN
needs the PostgreSQL client. postgres:// and memory:// DSNs run in process
and need nothing.`,
		Example: `  flowtag deps
  flowtag deps --dsn psql:///n8n?user=n8n
  flowtag deps -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := app.Settings()
			if cmd.Flags().Changed("dsn") {
				s.DatabaseDSN = dsn
			}
			return run(cmd, app, s.DatabaseDSN)
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", "", "Database DSN to check instead of the configured one")

	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface, dsn string) error {
	ctx := cmd.Context()

	ex, err := store.Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = ex.Close() }()

	results := Results{Executor: fmt.Sprintf("%T", ex), Dependencies: []Detail{}}
	if p, ok := ex.(*store.PsqlExecutor); ok {
		required := p.Dependencies()
		statuses := app.Checker().CheckAll(ctx, required)
		for _, dep := range required {
			results.Dependencies = append(results.Dependencies, detail(dep, statuses[dep.Name]))
		}
		results.Missing = len(deps.Missing(required, statuses))
	}

	app.Logger().Debug().
		Str("executor", results.Executor).
		Int("dependencies", len(results.Dependencies)).
		Int("missing", results.Missing).
		Msg("Checked dependencies")

	format := app.OutputFormat()
	if !output.IsStructured(output.DetectFormat(format)) && len(results.Dependencies) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s No external programs needed for this database DSN\n", emoji.Success)
		return nil
	}

	if err := output.Render(cmd.OutOrStdout(), format, results, func(bool) output.Data {
		return toTableData(results)
	}); err != nil {
		return err
	}

	if results.Missing > 0 {
		return &errors.ValidationError{
			Field:   "dependencies",
			Message: "required dependencies are missing",
		}
	}
	return nil
}

func detail(dep deps.Dependency, status deps.Status) Detail {
	d := Detail{
		Name:        dep.Name,
		DisplayName: dep.DisplayName,
		Available:   status.Available,
		Version:     status.Version,
		Path:        status.Path,
		Purpose:     dep.Description,
	}
	if status.CheckError != nil {
		d.Error = status.CheckError.Error()
	}
	return d
}

func toTableData(r Results) output.Data {
	rows := make([][]string, 0, len(r.Dependencies))
	for _, d := range r.Dependencies {
		status := emoji.Success + " Available"
		if !d.Available {
			status = emoji.Error + " Missing"
		}
		note := d.Purpose
		if d.Error != "" {
			note = d.Error
		}
		rows = append(rows, []string{d.DisplayName, status, orDash(d.Version), orDash(d.Path), note})
	}
	return output.Data{
		Headers: []string{"Dependency", "Status", "Version", "Path", "Purpose"},
		Rows:    rows,
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
