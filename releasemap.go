// Package releasemap tracks the published versions of a downloadable desktop
// application. It polls the vendor download API, records per-platform download
// URLs in a JSON version history, and keeps a README table and a static site
// page consistent with that history.
//
// Example usage:
//
//	// Create a tracker with default file locations
//	t, err := releasemap.New(
//	    releasemap.WithLedgerPath("version-history.json"),
//	    releasemap.WithReadmePath("README.md"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Register event hooks
//	t.OnReleaseAdded(func(entry releases.VersionEntry) {
//	    log.Printf("New release: %s", entry.Version)
//	})
//
//	// Check for a new release and project it into the README
//	result, err := t.Update(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Fill missing Linux ARM64 links
//	summary, err := t.Backfill(ctx, releases.PlatformLinuxArm64)
package releasemap

import (
	"context"
	"sync"

	"github.com/agentstation/releasemap/internal/sources/downloads"
	"github.com/agentstation/releasemap/internal/tools/site"
	"github.com/agentstation/releasemap/pkg/backfill"
	"github.com/agentstation/releasemap/pkg/constants"
	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/inference"
	"github.com/agentstation/releasemap/pkg/ledger"
	"github.com/agentstation/releasemap/pkg/logging"
	"github.com/agentstation/releasemap/pkg/readme"
	"github.com/agentstation/releasemap/pkg/reconciler"
	"github.com/agentstation/releasemap/pkg/releases"
)

// Compile-time interface check to ensure proper implementation.
var _ Tracker = (*tracker)(nil)

// Source answers download URL lookups for the vendor API.
type Source interface {
	downloads.LatestFetcher
	backfill.Lookup
}

// Tracker runs the release tracking pipelines against one ledger file and
// one document.
type Tracker interface {
	// Update checks for a new release and records it.
	Update(ctx context.Context, opts ...UpdateOption) (*UpdateResult, error)

	// Backfill fills a missing platform URL across the ledger.
	Backfill(ctx context.Context, target releases.Platform, opts ...backfill.Option) (*backfill.Summary, error)

	// SyncDocument rewrites stale Linux cells in the document from the ledger.
	SyncDocument(ctx context.Context, dryRun bool) (*readme.SyncReport, error)

	// Publish copies the ledger snapshot and regenerates the site page.
	Publish(ctx context.Context, opts ...PublishOption) (*PublishResult, error)

	// Ledger loads the current ledger.
	Ledger(ctx context.Context) (*releases.Ledger, error)

	// Validate reports every problem found in the ledger file.
	Validate(ctx context.Context) ([]error, error)

	// OnReleaseAdded registers a callback for new releases.
	OnReleaseAdded(ReleaseAddedHook)

	// OnReleaseRecovered registers a callback for releases recovered from the document.
	OnReleaseRecovered(ReleaseRecoveredHook)

	// OnLinkBackfilled registers a callback for backfilled URLs.
	OnLinkBackfilled(LinkBackfilledHook)
}

// tracker is the internal implementation of the Tracker interface.
type tracker struct {
	// mu serializes pipeline runs; the files have a single writer.
	mu sync.Mutex

	options    *options
	store      *ledger.Store
	source     Source
	inferencer *inference.Inferencer
	reconciler reconciler.Reconciler
	site       *site.Site
	hooks      *hooks
}

// New creates a new Tracker with the given options.
func New(opts ...Option) (Tracker, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	rules := inference.DefaultRules()
	switch {
	case o.rules != nil:
		rules = *o.rules
	case o.rulesFile != "":
		if rules, err = inference.LoadRules(o.rulesFile); err != nil {
			return nil, err
		}
	}

	rec, err := reconciler.New(
		reconciler.WithMaxEntries(o.maxEntries),
		reconciler.WithPlatforms(o.layout.Platforms),
	)
	if err != nil {
		return nil, errors.WrapResource("create", "reconciler", "", err)
	}

	src := o.source
	if src == nil {
		src = downloads.NewClient(o.endpoint, o.transport())
	}

	t := &tracker{
		options:    o,
		store:      ledger.NewStore(o.ledgerPath),
		source:     src,
		inferencer: inference.New(rules),
		reconciler: rec,
		hooks:      newHooks(),
	}

	if o.siteDir != "" {
		if t.site, err = site.New(&site.Config{RootDir: o.siteDir, Platforms: o.layout.Platforms}); err != nil {
			return nil, errors.WrapResource("create", "site", o.siteDir, err)
		}
	}

	logging.Debug().
		Str("ledger", o.ledgerPath).
		Str("readme", o.readmePath).
		Str("publish_dir", o.publishDir).
		Str("site_dir", o.siteDir).
		Int("max_entries", o.maxEntries).
		Msg("Tracker created")

	return t, nil
}

// Ledger loads the current ledger.
func (t *tracker) Ledger(ctx context.Context) (*releases.Ledger, error) {
	return t.store.Load(ctx)
}

// Validate reports every problem found in the ledger file.
func (t *tracker) Validate(ctx context.Context) ([]error, error) {
	l, err := t.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	return l.Problems(), nil
}

// OnReleaseAdded registers a callback for new releases.
func (t *tracker) OnReleaseAdded(fn ReleaseAddedHook) {
	t.hooks.OnReleaseAdded(fn)
}

// OnReleaseRecovered registers a callback for releases recovered from the document.
func (t *tracker) OnReleaseRecovered(fn ReleaseRecoveredHook) {
	t.hooks.OnReleaseRecovered(fn)
}

// OnLinkBackfilled registers a callback for backfilled URLs.
func (t *tracker) OnLinkBackfilled(fn LinkBackfilledHook) {
	t.hooks.OnLinkBackfilled(fn)
}

// today returns the run date in the ledger's date layout.
func (t *tracker) today() string {
	return t.options.clock().Time.Format(constants.DateLayout)
}
