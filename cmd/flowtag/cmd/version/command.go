// Package version implements the version command.
package version

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/flowtag/internal/appcontext"
	"github.com/agentstation/flowtag/internal/cmd/output"
	"github.com/agentstation/flowtag/internal/cmd/table"
)

// Info is the build information printed by the version command.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// NewCommand creates the version command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := Info{
				Version:   app.Version(),
				Commit:    app.Commit(),
				Date:      app.Date(),
				BuiltBy:   app.BuiltBy(),
				GoVersion: runtime.Version(),
			}
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), info, func(bool) output.Data {
				return table.Data{
					Headers: []string{"Property", "Value"},
					Rows: [][]string{
						{"version", info.Version},
						{"commit", info.Commit},
						{"built", info.Date},
						{"built by", info.BuiltBy},
						{"go version", info.GoVersion},
					},
				}
			})
		},
	}
}
