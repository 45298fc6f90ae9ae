package releasemap

import (
	"context"
	"time"

	"github.com/agentstation/releasemap/internal/sources/downloads"
	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/logging"
	"github.com/agentstation/releasemap/pkg/readme"
	"github.com/agentstation/releasemap/pkg/reconciler"
	"github.com/agentstation/releasemap/pkg/releases"
)

// UpdateOptions control one Update run.
type UpdateOptions struct {
	DryRun      bool
	SkipReadme  bool
	SkipPublish bool
	Timeout     time.Duration
}

// UpdateOption configures an Update run.
type UpdateOption func(*UpdateOptions)

// NewUpdateOptions applies opts over the defaults.
func NewUpdateOptions(opts ...UpdateOption) *UpdateOptions {
	o := &UpdateOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithDryRun computes the update without writing any file.
func WithDryRun(enabled bool) UpdateOption {
	return func(o *UpdateOptions) {
		o.DryRun = enabled
	}
}

// WithoutReadme leaves the document alone.
func WithoutReadme() UpdateOption {
	return func(o *UpdateOptions) {
		o.SkipReadme = true
	}
}

// WithoutPublish skips the snapshot and site page.
func WithoutPublish() UpdateOption {
	return func(o *UpdateOptions) {
		o.SkipPublish = true
	}
}

// WithUpdateTimeout bounds the whole run.
func WithUpdateTimeout(d time.Duration) UpdateOption {
	return func(o *UpdateOptions) {
		o.Timeout = d
	}
}

// UpdateResult describes what an Update run did.
type UpdateResult struct {
	// Version is the latest version seen at the API, empty when no URL
	// carried a version.
	Version string            `json:"version" yaml:"version"`
	Date    string            `json:"date" yaml:"date"`
	Action  reconciler.Action `json:"action" yaml:"action"`

	// Fetched is the number of platforms the API answered for.
	Fetched int `json:"fetched" yaml:"fetched"`

	// Dropped lists versions removed by the ledger cap.
	Dropped []string `json:"dropped,omitempty" yaml:"dropped,omitempty"`

	// ReadmeUpdated reports whether a row was inserted into the document.
	ReadmeUpdated bool `json:"readme_updated" yaml:"readme_updated"`

	// Recovered lists versions copied from the document into the ledger.
	Recovered []string `json:"recovered,omitempty" yaml:"recovered,omitempty"`

	Publish *PublishResult `json:"publish,omitempty" yaml:"publish,omitempty"`
}

// Changed reports whether the run changed the ledger.
func (r *UpdateResult) Changed() bool {
	return r != nil && (r.Action == reconciler.ActionAdded || len(r.Recovered) > 0)
}

// Update fetches the latest URL of every platform, records a new release in
// the ledger, and projects it into the document.
func (t *tracker) Update(ctx context.Context, opts ...UpdateOption) (*UpdateResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	options := NewUpdateOptions(opts...)

	var cancel context.CancelFunc
	if options.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
	} else {
		cancel = func() {}
	}
	defer cancel()

	t.mu.Lock()
	defer t.mu.Unlock()

	ctx = logging.WithOperation(ctx, "update")
	logger := logging.FromContext(ctx)

	// Step 1: the document is required before anything is written
	var doc *readme.Document
	if !options.SkipReadme {
		var err error
		if doc, err = readme.Load(t.options.readmePath, t.options.layout); err != nil {
			return nil, err
		}
	}

	// Step 2: fetch every platform, failures degrade to "no URL"
	table := t.options.layout.Platforms
	snap := downloads.LatestAll(ctx, t.source, table)
	result := &UpdateResult{Date: t.today(), Action: reconciler.ActionUnchanged, Fetched: len(snap)}

	// Step 3: load the ledger and detect the version
	l, err := t.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	version, found := releases.LatestVersion(snap.URLs(table))
	if found {
		result.Version = version
		ctx = logging.WithVersion(ctx, version)
		logger = logging.FromContext(ctx)
	} else {
		logger.Error().Int("fetched", len(snap)).Msg("Failed to retrieve any valid version information")
	}

	// Step 4: reconcile into the ledger. A version the document already lists
	// is taken from its row so the ledger keeps the row's date and links.
	switch {
	case found && doc != nil && l.Find(version) < 0 && doc.HasRelease(version):
		logger.Info().Msg("Version already exists in document, recovering it from the row")
		recovered, err := t.recoverRow(ctx, doc, l, version, urlsFor(snap, version), options.DryRun)
		if err != nil {
			return nil, err
		}
		if recovered {
			result.Recovered = append(result.Recovered, version)
		}
	case found:
		obs := reconciler.Observation{Version: version, Date: result.Date, Platforms: urlsFor(snap, version)}
		rec, err := t.reconciler.Reconcile(ctx, l, obs)
		if err != nil {
			return nil, err
		}
		result.Action = rec.Action
		result.Dropped = rec.Dropped

		if rec.Changed() {
			logger.Info().Str("action", string(rec.Action)).Msg(rec.Summary())
			// the ledger is written before the document so a failed document
			// write never loses the release
			if err := t.saveLedger(ctx, l, options.DryRun); err != nil {
				return nil, err
			}
			if entry, ok := l.Get(version); ok {
				t.hooks.releaseAdded(*entry)
			}
		} else {
			logger.Info().Msg("Version already exists in version history, no update needed")
		}
	}

	if doc != nil {
		// Step 5: project into the document
		if result.Action == reconciler.ActionAdded {
			inserted, err := t.project(ctx, doc, l, version)
			if err != nil {
				return nil, err
			}
			result.ReadmeUpdated = inserted
		}

		// Step 6: the document's newest row must be in the ledger
		recovered, err := t.recoverLatest(ctx, doc, l, options.DryRun)
		if err != nil {
			return nil, err
		}
		if recovered != "" {
			result.Recovered = append(result.Recovered, recovered)
		}

		if result.ReadmeUpdated && !options.DryRun {
			if err := doc.Save(t.options.readmePath); err != nil {
				return nil, err
			}
			logger.Info().Str("path", t.options.readmePath).Msg("Document updated")
		}
	}

	// Step 7: publish the snapshot when the ledger changed
	if result.Changed() && !options.SkipPublish && !options.DryRun {
		if result.Publish, err = t.publish(ctx, l, false); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("action", string(result.Action)).
		Bool("readme_updated", result.ReadmeUpdated).
		Int("recovered", len(result.Recovered)).
		Bool("dry_run", options.DryRun).
		Msg("Update finished")
	return result, nil
}

// urlsFor keeps the snapshot URLs that belong to version. URLs without a
// recognizable version are kept too.
func urlsFor(snap downloads.Snapshot, version string) map[releases.Platform]string {
	out := make(map[releases.Platform]string, len(snap))
	for p, u := range snap {
		if v, ok := releases.ExtractVersion(u); ok && v != version {
			continue
		}
		out[p] = u
	}
	return out
}

// project inserts the row for version and refreshes the date stamps. A row
// already present is left alone.
func (t *tracker) project(ctx context.Context, doc *readme.Document, l *releases.Ledger, version string) (bool, error) {
	logger := logging.FromContext(ctx)

	entry, ok := l.Get(version)
	if !ok {
		// dropped by the cap; nothing to show
		return false, nil
	}

	err := doc.InsertRelease(*entry)
	switch {
	case errors.Is(err, readme.ErrRowExists):
		logger.Info().Msg("Version already exists in document, only the version history was updated")
		return false, nil
	case err != nil:
		return false, err
	}

	stamped := doc.Stamp(ctx, entry.Date)
	logger.Debug().Int("stamps", stamped).Msg("Inserted release row")
	return true, nil
}

// recoverLatest copies the document's newest release into the ledger when the
// ledger lacks it, and returns the recovered version.
func (t *tracker) recoverLatest(ctx context.Context, doc *readme.Document, l *releases.Ledger, dryRun bool) (string, error) {
	logger := logging.FromContext(ctx)

	version, date, ok := doc.LatestRelease()
	if !ok || l.Find(version) >= 0 {
		return "", nil
	}
	logger.Warn().
		Str("document_version", version).
		Str("date", date).
		Msg("Version is in the document but not in version history, recovering it")

	recovered, err := t.recoverRow(ctx, doc, l, version, nil, dryRun)
	if err != nil || !recovered {
		return "", err
	}
	return version, nil
}

// recoverRow adds the document row for version to the ledger with the row's
// date. fallback supplies the links when the row has none.
func (t *tracker) recoverRow(ctx context.Context, doc *readme.Document, l *releases.Ledger, version string, fallback map[releases.Platform]string, dryRun bool) (bool, error) {
	logger := logging.FromContext(ctx)

	entry, ok := doc.ParseRelease(version)
	if ok && len(entry.Platforms) == 0 && len(fallback) > 0 {
		entry.Platforms = fallback
	}
	if !ok || len(entry.Platforms) == 0 {
		logger.Error().Str("document_version", version).Msg("Failed to extract platform links from document")
		return false, nil
	}

	rec, err := t.reconciler.Recover(ctx, l, entry)
	if err != nil {
		logger.Error().Err(err).Str("document_version", version).Msg("Recovered entry is invalid, skipping")
		return false, nil
	}
	if !rec.Changed() || l.Find(version) < 0 {
		return false, nil
	}

	if err := t.saveLedger(ctx, l, dryRun); err != nil {
		return false, err
	}
	if recovered, ok := l.Get(version); ok {
		t.hooks.releaseRecovered(*recovered)
	}
	logger.Info().Str("document_version", version).Msg("Recovered version from document")
	return true, nil
}

func (t *tracker) saveLedger(ctx context.Context, l *releases.Ledger, dryRun bool) error {
	if dryRun {
		logging.FromContext(ctx).Info().Msg("Dry run, not saving version history")
		return nil
	}
	return t.store.Save(ctx, l)
}
