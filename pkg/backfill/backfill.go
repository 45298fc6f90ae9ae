// Package backfill repairs ledger entries that are missing a platform's
// download URL. Each candidate entry gets one live lookup, then pattern
// inference from a sibling platform URL. Entries that neither path resolves
// are counted and left alone; they never stop the batch.
package backfill

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/agentstation/releasemap/pkg/constants"
	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/inference"
	"github.com/agentstation/releasemap/pkg/logging"
	"github.com/agentstation/releasemap/pkg/releases"
	"github.com/agentstation/releasemap/pkg/save"
)

// Lookup fetches the authoritative download URL for a specific version.
type Lookup interface {
	Version(ctx context.Context, platform releases.Platform, version string) (string, error)
}

// Inferer derives a URL for target from an entry's other platform URLs.
type Inferer interface {
	Infer(entry releases.VersionEntry, target releases.Platform) inference.Result
}

// Saver persists the whole ledger.
type Saver interface {
	Save(ctx context.Context, ledger *releases.Ledger, opts ...save.Option) error
}

// Job names the platform to fill in and the platforms whose URLs it can be
// derived from.
type Job struct {
	Target  releases.Platform
	Sources []releases.Platform
}

// LinuxArm64Job fills linux-arm64 from linux-x64.
func LinuxArm64Job() Job {
	return Job{
		Target:  releases.PlatformLinuxArm64,
		Sources: []releases.Platform{releases.PlatformLinuxX64},
	}
}

// LinuxX64Job fills linux-x64 from the Mac and Windows builds.
func LinuxX64Job() Job {
	return Job{
		Target:  releases.PlatformLinuxX64,
		Sources: []releases.Platform{releases.PlatformDarwinUniversal, releases.PlatformWin32X64},
	}
}

// JobFor returns the preset job for target.
func JobFor(target releases.Platform) (Job, error) {
	switch target {
	case releases.PlatformLinuxArm64:
		return LinuxArm64Job(), nil
	case releases.PlatformLinuxX64:
		return LinuxX64Job(), nil
	}
	return Job{}, &errors.ValidationError{
		Field:   "target",
		Value:   target,
		Message: "backfill supports linux-arm64 and linux-x64",
	}
}

// Summary tallies a backfill pass.
type Summary struct {
	Selected    int  `json:"selected" yaml:"selected"`
	Updated     int  `json:"updated" yaml:"updated"`
	Skipped     int  `json:"skipped" yaml:"skipped"`
	Errors      int  `json:"errors" yaml:"errors"`
	Checkpoints int  `json:"checkpoints" yaml:"checkpoints"`
	Saved       bool `json:"saved" yaml:"saved"`

	// Resolved maps each updated version to how it was resolved.
	Resolved map[string]string `json:"resolved,omitempty" yaml:"resolved,omitempty"`
}

// Orchestrator runs backfill jobs.
type Orchestrator struct {
	lookup          Lookup
	inferer         Inferer
	saver           Saver
	delay           time.Duration
	checkpointEvery int
	dryRun          bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLookup sets the live lookup. Nil disables it.
func WithLookup(l Lookup) Option {
	return func(o *Orchestrator) error {
		o.lookup = l
		return nil
	}
}

// WithDelay sets the pause between live lookups. Zero disables pacing.
func WithDelay(d time.Duration) Option {
	return func(o *Orchestrator) error {
		if d < 0 {
			return &errors.ValidationError{Field: "delay", Value: d, Message: "cannot be negative"}
		}
		o.delay = d
		return nil
	}
}

// WithCheckpointEvery saves the ledger after every n successful updates.
func WithCheckpointEvery(n int) Option {
	return func(o *Orchestrator) error {
		if n <= 0 {
			return &errors.ValidationError{Field: "checkpoint_every", Value: n, Message: "must be greater than zero"}
		}
		o.checkpointEvery = n
		return nil
	}
}

// WithDryRun resolves URLs without saving anything.
func WithDryRun(enabled bool) Option {
	return func(o *Orchestrator) error {
		o.dryRun = enabled
		return nil
	}
}

// New returns an Orchestrator. inferer and saver are required.
func New(inferer Inferer, saver Saver, opts ...Option) (*Orchestrator, error) {
	if inferer == nil {
		return nil, &errors.ValidationError{Field: "inferer", Message: "cannot be nil"}
	}
	if saver == nil {
		return nil, &errors.ValidationError{Field: "saver", Message: "cannot be nil"}
	}

	o := &Orchestrator{
		inferer:         inferer,
		saver:           saver,
		delay:           constants.BackfillDelay,
		checkpointEvery: constants.CheckpointEvery,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Orchestrator) limiter() *rate.Limiter {
	if o.delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(o.delay), 1)
}

// Run fills job.Target across ledger. On a save failure it returns the
// summary so far along with the error.
func (o *Orchestrator) Run(ctx context.Context, ledger *releases.Ledger, job Job) (*Summary, error) {
	logger := logging.FromContext(logging.WithPlatform(ctx, job.Target.String()))

	candidates := ledger.Missing(job.Target, job.Sources...)
	summary := &Summary{
		Selected: len(candidates),
		Skipped:  ledger.Len() - len(candidates),
		Resolved: make(map[string]string),
	}
	logger.Info().
		Int("selected", summary.Selected).
		Int("skipped", summary.Skipped).
		Msg("Starting backfill")

	limiter := o.limiter()
	for _, idx := range candidates {
		entry := &ledger.Versions[idx]
		ectx := logging.WithVersion(logging.WithPlatform(ctx, job.Target.String()), entry.Version)

		url, how := o.resolve(ectx, limiter, *entry, job.Target)
		if url == "" {
			summary.Errors++
			logging.FromContext(ectx).Warn().Msg("No URL found by lookup or inference, leaving entry unresolved")
			continue
		}

		entry.Set(job.Target, url)
		summary.Updated++
		summary.Resolved[entry.Version] = how
		logging.FromContext(ectx).Info().Str("source", how).Str("url", url).Msg("Filled missing platform URL")

		if summary.Updated%o.checkpointEvery == 0 {
			if err := o.save(ctx, ledger); err != nil {
				return summary, errors.NewResourceError("checkpoint", "ledger", entry.Version, err)
			}
			summary.Checkpoints++
			logger.Info().Int("updated", summary.Updated).Msg("Checkpoint saved")
		}
	}

	if summary.Updated > 0 {
		if err := o.save(ctx, ledger); err != nil {
			return summary, errors.WrapResource("save", "ledger", "", err)
		}
		summary.Saved = !o.dryRun
	}

	logger.Info().
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("errors", summary.Errors).
		Int("checkpoints", summary.Checkpoints).
		Msg("Backfill complete")
	return summary, nil
}

// resolve tries the live lookup, then inference. It returns the URL and
// which path produced it.
func (o *Orchestrator) resolve(ctx context.Context, limiter *rate.Limiter, entry releases.VersionEntry, target releases.Platform) (string, string) {
	logger := logging.FromContext(ctx)

	if o.lookup != nil {
		if err := limiter.Wait(ctx); err != nil {
			logger.Warn().Err(err).Msg("Pacing wait interrupted, skipping live lookup")
		} else {
			url, err := o.lookup.Version(ctx, target, entry.Version)
			switch {
			case err != nil:
				logger.Debug().Err(err).Msg("Live lookup failed, falling back to inference")
			case url == "":
				logger.Debug().Msg("Live lookup returned no URL, falling back to inference")
			default:
				return url, "lookup"
			}
		}
	}

	res := o.inferer.Infer(entry, target)
	if res.Found() {
		return res.URL, res.Rule
	}
	logger.Debug().Str("reason", res.Reason).Msg("Inference not applicable")
	return "", ""
}

func (o *Orchestrator) save(ctx context.Context, ledger *releases.Ledger) error {
	if o.dryRun {
		return nil
	}
	return o.saver.Save(ctx, ledger)
}
