// Package validate provides the validate command.
package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/releasemap/internal/appcontext"
	"github.com/agentstation/releasemap/pkg/errors"
)

// NewCommand creates the validate command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "validate",
		GroupID: "management",
		Short:   "Check the version history for problems",
		Long: `Validate reads the version history strictly and reports malformed
versions or dates, duplicate versions, ordering mistakes, and links for
unknown platforms.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tracker, err := app.Tracker()
			if err != nil {
				return err
			}

			problems, err := tracker.Validate(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(problems) == 0 {
				fmt.Fprintf(w, "%s is valid\n", app.Settings().LedgerPath)
				return nil
			}
			for _, p := range problems {
				fmt.Fprintf(w, "  - %v\n", p)
			}
			return errors.NewValidationError("ledger", app.Settings().LedgerPath,
				fmt.Sprintf("%d problems found", len(problems)))
		},
	}
}
