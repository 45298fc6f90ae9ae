// Package readme provides the readme command and its subcommands.
package readme

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/releasemap/internal/appcontext"
)

// NewCommand creates the readme command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "readme",
		GroupID: "management",
		Short:   "Maintain the README download table",
	}

	cmd.AddCommand(newSyncCommand(app))

	return cmd
}

func newSyncCommand(app appcontext.Interface) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Rewrite Linux cells from the version history",
		Long: `Sync rewrites the Linux cell of every README row whose version history
entry has more Linux links than the row shows. Rows for versions the history
does not know are left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ExecuteSync(cmd.Context(), app, dryRun, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing the README")

	return cmd
}

// ExecuteSync runs the document sync and prints its report.
func ExecuteSync(ctx context.Context, app appcontext.Interface, dryRun bool, w io.Writer) error {
	tracker, err := app.Tracker()
	if err != nil {
		return err
	}

	report, err := tracker.SyncDocument(ctx, dryRun)
	if err != nil {
		return err
	}

	if len(report.Updated) == 0 {
		fmt.Fprintf(w, "README is up to date (%d rows unchanged)\n", report.Unchanged)
	} else {
		verb := "Updated"
		if dryRun {
			verb = "Would update"
		}
		fmt.Fprintf(w, "%s %d rows: %s\n", verb, len(report.Updated), strings.Join(report.Updated, ", "))
	}
	if len(report.NotInDocument) > 0 {
		fmt.Fprintf(w, "Not in README: %s\n", strings.Join(report.NotInDocument, ", "))
	}
	return nil
}
