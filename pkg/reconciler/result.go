package reconciler

import (
	"fmt"
	"slices"
)

// Action describes what a merge did to the ledger.
type Action string

// Merge actions.
const (
	ActionAdded     Action = "added"
	ActionUnchanged Action = "unchanged"
)

// Result represents the outcome of a reconciliation operation.
type Result struct {
	Action  Action
	Version string

	// Dropped lists versions removed by the size cap, oldest last.
	Dropped []string

	// Missing lists platforms absent from the observation.
	Missing []string
}

// Changed reports whether the ledger was mutated.
func (r *Result) Changed() bool {
	return r != nil && r.Action == ActionAdded
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	if r == nil {
		return "no result"
	}
	switch r.Action {
	case ActionAdded:
		s := fmt.Sprintf("added %s", r.Version)
		if len(r.Dropped) > 0 {
			s += fmt.Sprintf(", dropped %d old version(s)", len(r.Dropped))
		}
		return s
	default:
		if slices.Contains(r.Dropped, r.Version) {
			return fmt.Sprintf("%s is older than the retained history", r.Version)
		}
		return fmt.Sprintf("%s already recorded", r.Version)
	}
}
