// Package publish provides the publish command.
package publish

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/releasemap"
	"github.com/agentstation/releasemap/internal/appcontext"
)

// NewCommand creates the publish command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var build bool

	cmd := &cobra.Command{
		Use:     "publish",
		GroupID: "management",
		Short:   "Publish the version history and site page",
		Long: `Publish copies the version history byte for byte into the publish
directory and regenerates the site's download page. With --build it also
runs hugo to render the site.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tracker, err := app.Tracker()
			if err != nil {
				return err
			}

			result, err := tracker.Publish(cmd.Context(), releasemap.WithSiteBuild(build))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if result.Snapshot == "" && result.Page == "" {
				fmt.Fprintln(w, "Nothing to publish: no publish or site directory configured")
				return nil
			}
			if result.Snapshot != "" {
				fmt.Fprintf(w, "Published %s\n", result.Snapshot)
			}
			if result.Page != "" {
				fmt.Fprintf(w, "Generated %s\n", result.Page)
			}
			if result.Built {
				fmt.Fprintln(w, "Site built")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&build, "build", false, "run hugo after generating the page")

	return cmd
}
