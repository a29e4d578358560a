// Package labels implements the command that shows the label policy.
package labels

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/flowtag/internal/appcontext"
	"github.com/agentstation/flowtag/internal/cmd/output"
	"github.com/agentstation/flowtag/internal/cmd/table"
	"github.com/agentstation/flowtag/pkg/policy"
)

// Row is the structured form of one resolved path.
type Row struct {
	Path   string   `json:"path" yaml:"path"`
	Labels []string `json:"labels" yaml:"labels"`
	TagIDs []string `json:"tag_ids" yaml:"tag_ids"`
}

// NewCommand creates the labels command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		policyFile string
		catalog    bool
		export     bool
	)

	cmd := &cobra.Command{
		Use:     "labels [path...]",
		GroupID: "core",
		Short:   "Show the labels derived for source directories",
		Long: `Labels resolves source directories through the label policy exactly as
apply does. Without arguments every path of the policy is listed.

A path without an exact entry falls back to its first segment, and a path
matching nothing gets the root label only.`,
		Example: `  flowtag labels                                  # Every policy entry
  flowtag labels 02-speech-processing/whisper     # Labels for one directory
  flowtag labels --catalog                        # Label names and tag ids
  flowtag labels --export > policy.yaml           # Write the policy as YAML`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := app.Settings()
			if policyFile != "" {
				settings.PolicyFile = policyFile
			}
			pol, err := app.Policy(settings)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case export:
				data, err := policy.Marshal(pol)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			case catalog:
				return output.Render(out, app.OutputFormat(), pol.Catalog(), func(bool) output.Data {
					return table.CatalogToTableData(pol.Catalog())
				})
			}

			paths := args
			if len(paths) == 0 {
				for _, r := range pol.Rules() {
					paths = append(paths, r.Path)
				}
			}
			return output.Render(out, app.OutputFormat(), Resolve(pol, paths), func(wide bool) output.Data {
				return table.LabelsToTableData(pol, paths, wide)
			})
		},
	}

	cmd.Flags().StringVar(&policyFile, "policy", "", "label policy YAML file (default built-in)")
	cmd.Flags().BoolVar(&catalog, "catalog", false, "list label names and their tag ids")
	cmd.Flags().BoolVar(&export, "export", false, "print the policy as YAML")
	cmd.MarkFlagsMutuallyExclusive("catalog", "export")

	return cmd
}

// Resolve derives labels and tag ids for each path.
func Resolve(p *policy.Policy, paths []string) []Row {
	rows := make([]Row, 0, len(paths))
	for _, path := range paths {
		labels := p.LabelsFor(path)
		rows = append(rows, Row{Path: path, Labels: labels, TagIDs: p.LabelIDsFor(labels)})
	}
	return rows
}
