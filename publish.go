package releasemap

import (
	"context"

	"github.com/agentstation/releasemap/pkg/logging"
	"github.com/agentstation/releasemap/pkg/releases"
)

// PublishOption configures a Publish run.
type PublishOption func(*publishOptions)

type publishOptions struct {
	buildSite bool
}

// WithSiteBuild runs Hugo after the content page is written.
func WithSiteBuild(enabled bool) PublishOption {
	return func(o *publishOptions) {
		o.buildSite = enabled
	}
}

// PublishResult lists the files Publish wrote.
type PublishResult struct {
	// Snapshot is the copied ledger, empty when publishing is disabled.
	Snapshot string `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
	// Page is the generated site content page, empty without a site dir.
	Page  string `json:"page,omitempty" yaml:"page,omitempty"`
	Built bool   `json:"built" yaml:"built"`
}

// Publish copies the ledger byte for byte into the publish directory and
// regenerates the site page.
func (t *tracker) Publish(ctx context.Context, opts ...PublishOption) (*PublishResult, error) {
	o := &publishOptions{}
	for _, opt := range opts {
		opt(o)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ctx = logging.WithOperation(ctx, "publish")
	l, err := t.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return t.publish(ctx, l, o.buildSite)
}

func (t *tracker) publish(ctx context.Context, l *releases.Ledger, build bool) (*PublishResult, error) {
	logger := logging.FromContext(ctx)
	result := &PublishResult{}

	if dir := t.options.publishDir; dir != "" {
		dest, err := t.store.Publish(ctx, dir)
		if err != nil {
			return nil, err
		}
		result.Snapshot = dest
	} else {
		logger.Debug().Msg("No publish directory configured, skipping snapshot")
	}

	if t.site == nil {
		return result, nil
	}
	page, err := t.site.Generate(ctx, l)
	if err != nil {
		return nil, err
	}
	result.Page = page

	if build {
		if err := t.site.Build(ctx); err != nil {
			return nil, err
		}
		result.Built = true
	}
	return result, nil
}
