package releasemap

import (
	"context"

	"github.com/agentstation/releasemap/pkg/backfill"
	"github.com/agentstation/releasemap/pkg/logging"
	"github.com/agentstation/releasemap/pkg/readme"
	"github.com/agentstation/releasemap/pkg/releases"
)

// Backfill fills target across the ledger, first from the live API and then
// from URL inference. opts are applied after the tracker's own lookup, so
// backfill.WithLookup(nil) turns the live lookup off.
func (t *tracker) Backfill(ctx context.Context, target releases.Platform, opts ...backfill.Option) (*backfill.Summary, error) {
	job, err := backfill.JobFor(target)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ctx = logging.WithPlatform(logging.WithOperation(ctx, "backfill"), target.String())

	l, err := t.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	before := l.Clone()

	orch, err := backfill.New(t.inferencer, t.store, append([]backfill.Option{backfill.WithLookup(t.source)}, opts...)...)
	if err != nil {
		return nil, err
	}

	summary, err := orch.Run(ctx, l, job)
	if summary != nil && summary.Updated > 0 {
		t.hooks.linksBackfilled(before, l, target)
	}
	return summary, err
}

// SyncDocument rewrites the Linux cell of every document row whose ledger
// entry knows more Linux links.
func (t *tracker) SyncDocument(ctx context.Context, dryRun bool) (*readme.SyncReport, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx = logging.WithOperation(ctx, "readme-sync")
	logger := logging.FromContext(ctx)

	doc, err := readme.Load(t.options.readmePath, t.options.layout)
	if err != nil {
		return nil, err
	}
	l, err := t.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	report := readme.Sync(ctx, doc, l)
	if report.Changed() && !dryRun {
		if err := doc.Save(t.options.readmePath); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Int("updated", len(report.Updated)).
		Int("unchanged", report.Unchanged).
		Int("not_in_document", len(report.NotInDocument)).
		Bool("dry_run", dryRun).
		Msg("Document sync finished")
	return &report, nil
}
