// Package list provides the list command.
package list

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/releasemap/internal/appcontext"
	"github.com/agentstation/releasemap/internal/cmd/output"
	"github.com/agentstation/releasemap/pkg/releases"
)

// NewCommand creates the list command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		GroupID: "core",
		Short:   "List recorded versions",
		Args:    cobra.NoArgs,
		Example: `  releasemap list                 # Table of versions and platforms
  releasemap list -o wide         # Include download URLs
  releasemap list -o json -n 5    # Newest five as JSON`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ExecuteList(cmd.Context(), app, limit, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many versions (0 for all)")

	return cmd
}

// ExecuteList prints the ledger in the configured format.
func ExecuteList(ctx context.Context, app appcontext.Interface, limit int, w io.Writer) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}

	tracker, err := app.Tracker()
	if err != nil {
		return err
	}

	l, err := tracker.Ledger(ctx)
	if err != nil {
		return err
	}

	if limit > 0 && limit < l.Len() {
		l = &releases.Ledger{Versions: l.Versions[:limit]}
	}

	return output.FormatLedger(w, l, app.Platforms(), format)
}
