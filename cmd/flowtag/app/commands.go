package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/flowtag/cmd/flowtag/cmd/apply"
	"github.com/agentstation/flowtag/cmd/flowtag/cmd/deps"
	"github.com/agentstation/flowtag/cmd/flowtag/cmd/labels"
	"github.com/agentstation/flowtag/cmd/flowtag/cmd/tags"
	"github.com/agentstation/flowtag/cmd/flowtag/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(apply.NewCommand(a))
	rootCmd.AddCommand(labels.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(tags.NewCommand(a))
	rootCmd.AddCommand(deps.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
}
