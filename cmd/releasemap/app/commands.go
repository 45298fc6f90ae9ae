package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/releasemap/cmd/releasemap/cmd/backfill"
	"github.com/agentstation/releasemap/cmd/releasemap/cmd/list"
	"github.com/agentstation/releasemap/cmd/releasemap/cmd/publish"
	"github.com/agentstation/releasemap/cmd/releasemap/cmd/readme"
	"github.com/agentstation/releasemap/cmd/releasemap/cmd/update"
	"github.com/agentstation/releasemap/cmd/releasemap/cmd/validate"
	"github.com/agentstation/releasemap/cmd/releasemap/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(update.NewCommand(a))
	rootCmd.AddCommand(backfill.NewCommand(a))
	rootCmd.AddCommand(list.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(readme.NewCommand(a))
	rootCmd.AddCommand(publish.NewCommand(a))
	rootCmd.AddCommand(validate.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
}
