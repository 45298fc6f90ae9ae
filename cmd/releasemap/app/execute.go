package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/releasemap/internal/config"
	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/logging"
)

// Execute runs the releasemap CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "releasemap",
		Short:   "Desktop release download tracker",
		Version: a.version,
		Long: `Releasemap tracks the published versions of a desktop application.

It polls the vendor download API for every platform, records the download
links in a JSON version history, inserts a row for each new release into the
README table, and publishes the history to a static site.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is ./.releasemap.yaml or $HOME/.releasemap.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml, wide")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.String("ledger", "", "version history file (default "+a.config.LedgerPath+")")
	flags.String("readme", "", "README holding the download table (default "+a.config.ReadmePath+")")
	flags.String("publish-dir", "", "directory receiving the published history")
	flags.String("site-dir", "", "Hugo site root; empty disables the site page")

	bindFlags(rootCmd, map[string]string{
		"verbose":     config.KeyVerbose,
		"quiet":       config.KeyQuiet,
		"format":      config.KeyOutput,
		"log-level":   config.KeyLogLevel,
		"ledger":      config.KeyLedgerPath,
		"readme":      config.KeyReadmePath,
		"publish-dir": config.KeyPublishDir,
		"site-dir":    config.KeySiteDir,
	})

	rootCmd.SetVersionTemplate("releasemap {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// bindFlags binds persistent flags to their configuration keys so a flag
// set on the command line wins over the environment and the config file.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
			panic("programming error: failed to bind flag " + flag + ": " + err.Error())
		}
	}
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if path := mustGetString(cmd, "config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return errors.NewConfigError("file", "failed to read "+path, err)
		}
	}

	// Rebuild config from viper now that flags are parsed and bound
	cfg := fromViper(viper.GetViper())
	cfg.NoColor = cfg.NoColor || mustGetBool(cmd, "no-color")
	a.config = cfg

	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))

	// Drop any tracker built from the previous configuration
	a.mu.Lock()
	a.tracker = nil
	a.mu.Unlock()

	return nil
}

// ExitOnError prints err and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
