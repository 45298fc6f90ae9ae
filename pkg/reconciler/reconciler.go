// Package reconciler merges newly observed releases into the version ledger.
// A merge never duplicates a version, keeps the ledger sorted newest first,
// and enforces the ledger size cap by dropping the oldest versions.
package reconciler

import (
	"context"
	"maps"
	"slices"

	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/logging"
	"github.com/agentstation/releasemap/pkg/releases"
)

// Observation is one release as seen by a fetch or recovered from the document.
type Observation struct {
	Version   string
	Date      string
	Platforms map[releases.Platform]string
}

// Entry converts the observation to a ledger entry.
func (o Observation) Entry() releases.VersionEntry {
	platforms := maps.Clone(o.Platforms)
	if platforms == nil {
		platforms = make(map[releases.Platform]string)
	}
	return releases.VersionEntry{Version: o.Version, Date: o.Date, Platforms: platforms}
}

// FromEntry converts a ledger entry to an observation.
func FromEntry(e releases.VersionEntry) Observation {
	return Observation{Version: e.Version, Date: e.Date, Platforms: maps.Clone(e.Platforms)}
}

// Reconciler is the main interface for merging releases into a ledger.
type Reconciler interface {
	// Reconcile merges one observation. Re-observing a recorded version is a no-op.
	Reconcile(ctx context.Context, ledger *releases.Ledger, obs Observation) (*Result, error)

	// Recover adds an entry reconstructed from the document under the same rules.
	Recover(ctx context.Context, ledger *releases.Ledger, entry releases.VersionEntry) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	maxEntries int
	validate   bool
	platforms  releases.PlatformTable
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &reconciler{
		maxEntries: options.maxEntries,
		validate:   options.validate,
		platforms:  options.platforms,
	}, nil
}

// Reconcile merges obs into ledger.
func (r *reconciler) Reconcile(ctx context.Context, ledger *releases.Ledger, obs Observation) (*Result, error) {
	if ledger == nil {
		return nil, &errors.ValidationError{Field: "ledger", Message: "cannot be nil"}
	}

	logger := logging.FromContext(logging.WithVersion(ctx, obs.Version))
	entry := obs.Entry()

	if r.validate {
		if err := entry.Validate(); err != nil {
			logger.Warn().Err(err).Msg("Rejected release observation")
			return nil, err
		}
	}

	result := &Result{Version: obs.Version, Missing: r.missing(entry)}

	if ledger.Find(obs.Version) >= 0 {
		result.Action = ActionUnchanged
		logger.Info().Str("action", string(result.Action)).Msg("Version already exists in version history, no update needed")
		return result, nil
	}

	ledger.Versions = append(ledger.Versions, entry)
	ledger.Sort()
	result.Dropped = ledger.Truncate(r.maxEntries)
	if slices.Contains(result.Dropped, obs.Version) {
		// older than every retained version, the ledger is as it was
		result.Action = ActionUnchanged
		logger.Info().
			Str("action", string(result.Action)).
			Int("max_entries", r.maxEntries).
			Msg("Version is older than the retained history, not recorded")
		return result, nil
	}
	result.Action = ActionAdded

	event := logger.Info().
		Str("action", string(result.Action)).
		Str("date", entry.Date).
		Int("platforms", len(entry.Platforms)).
		Int("entries", ledger.Len())
	if len(result.Dropped) > 0 {
		event = event.Strs("dropped", result.Dropped)
	}
	if len(result.Missing) > 0 {
		event = event.Strs("missing", result.Missing)
	}
	event.Msg("Added version to version history")

	return result, nil
}

// Recover adds an entry reconstructed from the projected document.
func (r *reconciler) Recover(ctx context.Context, ledger *releases.Ledger, entry releases.VersionEntry) (*Result, error) {
	logging.FromContext(ctx).Warn().
		Str("version", entry.Version).
		Msg("Version is in the document but not in version history, recovering it")
	return r.Reconcile(ctx, ledger, FromEntry(entry))
}

// missing returns the known platforms the entry has no URL for.
func (r *reconciler) missing(entry releases.VersionEntry) []string {
	var out []string
	for _, p := range r.platforms.All() {
		if !entry.Has(p) {
			out = append(out, p.String())
		}
	}
	return out
}
