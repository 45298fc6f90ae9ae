// Package update provides the update command.
package update

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/releasemap"
	"github.com/agentstation/releasemap/internal/appcontext"
	"github.com/agentstation/releasemap/internal/cmd/output"
	"github.com/agentstation/releasemap/pkg/constants"
)

// Flags holds the update command flags.
type Flags struct {
	DryRun    bool
	NoReadme  bool
	NoPublish bool
	Timeout   time.Duration
}

// NewCommand creates the update command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "update",
		GroupID: "core",
		Short:   "Record the latest release from the download API",
		Args:    cobra.NoArgs,
		Long: `Update asks the download API for the latest build of every platform.

The command will:
• Detect the latest version from the returned download URLs
• Add it to the version history with every platform link found
• Insert a row for it at the top of the README download table
• Copy a release the README lists but the history lacks back into the history
• Publish the history and regenerate the site page when anything changed`,
		Example: `  releasemap update                  # Check for a new release
  releasemap update --dry-run        # Report what would change
  releasemap update --no-publish     # Skip the publish step`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ExecuteUpdate(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	flags = addUpdateFlags(cmd)

	return cmd
}

func addUpdateFlags(cmd *cobra.Command) *Flags {
	flags := &Flags{}
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "report changes without writing files")
	cmd.Flags().BoolVar(&flags.NoReadme, "no-readme", false, "leave the README untouched")
	cmd.Flags().BoolVar(&flags.NoPublish, "no-publish", false, "skip publishing the history")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", constants.CommandTimeout, "overall timeout")
	return flags
}

// ExecuteUpdate runs one update pass and prints its result.
func ExecuteUpdate(ctx context.Context, app appcontext.Interface, flags *Flags, w io.Writer) error {
	tracker, err := app.Tracker()
	if err != nil {
		return err
	}

	opts := []releasemap.UpdateOption{
		releasemap.WithDryRun(flags.DryRun),
		releasemap.WithUpdateTimeout(flags.Timeout),
	}
	if flags.NoReadme {
		opts = append(opts, releasemap.WithoutReadme())
	}
	if flags.NoPublish {
		opts = append(opts, releasemap.WithoutPublish())
	}

	result, err := tracker.Update(ctx, opts...)
	if err != nil {
		return err
	}

	switch format := output.DetectFormat(app.OutputFormat()); format {
	case output.FormatJSON, output.FormatYAML:
		return output.NewFormatter(format).Format(w, result)
	default:
		printResult(w, result, flags.DryRun)
		return nil
	}
}

func printResult(w io.Writer, result *releasemap.UpdateResult, dryRun bool) {
	prefix := ""
	if dryRun {
		prefix = "[dry run] "
	}

	if result.Version == "" {
		fmt.Fprintf(w, "%sNo version found in %d download responses\n", prefix, result.Fetched)
	} else {
		fmt.Fprintf(w, "%sLatest version %s (%s): %s\n", prefix, result.Version, result.Date, result.Action)
	}
	if len(result.Dropped) > 0 {
		fmt.Fprintf(w, "%sDropped: %s\n", prefix, strings.Join(result.Dropped, ", "))
	}
	if result.ReadmeUpdated {
		fmt.Fprintf(w, "%sREADME row inserted\n", prefix)
	}
	if len(result.Recovered) > 0 {
		fmt.Fprintf(w, "%sRecovered from README: %s\n", prefix, strings.Join(result.Recovered, ", "))
	}
	if p := result.Publish; p != nil {
		if p.Snapshot != "" {
			fmt.Fprintf(w, "Published %s\n", p.Snapshot)
		}
		if p.Page != "" {
			fmt.Fprintf(w, "Generated %s\n", p.Page)
		}
	}
}
