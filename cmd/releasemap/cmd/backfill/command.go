// Package backfill provides the backfill command.
package backfill

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/releasemap/internal/appcontext"
	"github.com/agentstation/releasemap/internal/cmd/output"
	pkgbackfill "github.com/agentstation/releasemap/pkg/backfill"
	"github.com/agentstation/releasemap/pkg/releases"
)

// Flags holds the backfill command flags.
type Flags struct {
	Delay           time.Duration
	CheckpointEvery int
	NoLookup        bool
	DryRun          bool
}

// NewCommand creates the backfill command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:       "backfill <linux-arm64|linux-x64>",
		GroupID:   "core",
		Short:     "Fill a missing Linux platform across the version history",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{releases.PlatformLinuxArm64.String(), releases.PlatformLinuxX64.String()},
		Long: `Backfill walks every version that lacks the given Linux platform.

For each one it first asks the download API for that version, then falls
back to inferring the URL from the sibling Linux link. The history is saved
at regular checkpoints and once more at the end.`,
		Example: `  releasemap backfill linux-arm64                # Fill ARM64 links
  releasemap backfill linux-x64 --no-lookup       # Inference only
  releasemap backfill linux-arm64 --dry-run       # Report without saving`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ExecuteBackfill(cmd.Context(), app, releases.Platform(args[0]), flags, cmd.OutOrStdout())
		},
	}

	flags = addBackfillFlags(cmd, app.Settings())

	return cmd
}

func addBackfillFlags(cmd *cobra.Command, settings appcontext.Settings) *Flags {
	flags := &Flags{}
	cmd.Flags().DurationVar(&flags.Delay, "delay", settings.BackfillDelay, "pause between API lookups")
	cmd.Flags().IntVar(&flags.CheckpointEvery, "checkpoint-every", settings.CheckpointEvery, "save after this many updated versions")
	cmd.Flags().BoolVar(&flags.NoLookup, "no-lookup", false, "skip the download API and only infer URLs")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "resolve URLs without saving")
	return flags
}

// ExecuteBackfill runs one backfill job and prints its summary.
func ExecuteBackfill(ctx context.Context, app appcontext.Interface, target releases.Platform, flags *Flags, w io.Writer) error {
	tracker, err := app.Tracker()
	if err != nil {
		return err
	}

	opts := []pkgbackfill.Option{
		pkgbackfill.WithDelay(flags.Delay),
		pkgbackfill.WithCheckpointEvery(flags.CheckpointEvery),
		pkgbackfill.WithDryRun(flags.DryRun),
	}
	if flags.NoLookup {
		opts = append(opts, pkgbackfill.WithLookup(nil))
	}

	summary, err := tracker.Backfill(ctx, target, opts...)
	if summary != nil {
		if perr := printSummary(w, app, target, summary); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

func printSummary(w io.Writer, app appcontext.Interface, target releases.Platform, s *pkgbackfill.Summary) error {
	if format := output.DetectFormat(app.OutputFormat()); format == output.FormatJSON || format == output.FormatYAML {
		return output.NewFormatter(format).Format(w, s)
	}

	fmt.Fprintf(w, "Backfill %s: %d selected, %d updated, %d skipped, %d errors\n",
		target, s.Selected, s.Updated, s.Skipped, s.Errors)

	versions := make([]string, 0, len(s.Resolved))
	for v := range s.Resolved {
		versions = append(versions, v)
	}
	slices.SortFunc(versions, releases.CompareVersions)
	for _, v := range versions {
		fmt.Fprintf(w, "  %s  %s\n", v, s.Resolved[v])
	}

	if s.Saved {
		fmt.Fprintf(w, "Saved after %d checkpoints\n", s.Checkpoints)
	}
	return nil
}
