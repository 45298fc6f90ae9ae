// Package app provides the application context and dependency management
// for the releasemap CLI. It centralizes configuration, logging, and the
// tracker instance so commands receive them through one interface.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/releasemap"
	"github.com/agentstation/releasemap/internal/appcontext"
	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/releases"
)

// Compile-time interface check.
var _ appcontext.Interface = (*App)(nil)

// App represents the releasemap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Tracker instance (lazy-initialized, singleton)
	mu      sync.RWMutex
	tracker releasemap.Tracker
}

// Option configures an App.
type Option func(*App) error

// WithConfig replaces the loaded configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return errors.NewValidationError("config", nil, "cannot be nil")
		}
		a.config = config
		return nil
	}
}

// WithLogger replaces the configured logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		if logger == nil {
			return errors.NewValidationError("logger", nil, "cannot be nil")
		}
		a.logger = logger
		return nil
	}
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the format requested with --format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Platforms returns the platform table.
func (a *App) Platforms() releases.PlatformTable {
	return releases.DefaultPlatforms()
}

// Settings returns the resolved values commands use as flag defaults.
func (a *App) Settings() appcontext.Settings {
	return appcontext.Settings{
		LedgerPath:      a.config.LedgerPath,
		ReadmePath:      a.config.ReadmePath,
		PublishDir:      a.config.PublishDir,
		SiteDir:         a.config.SiteDir,
		BackfillDelay:   a.config.BackfillDelay,
		CheckpointEvery: a.config.CheckpointEvery,
	}
}

// Tracker returns the tracker instance, creating it lazily if needed.
// This is thread-safe and ensures only one instance is created.
func (a *App) Tracker() (releasemap.Tracker, error) {
	a.mu.RLock()
	if a.tracker != nil {
		t := a.tracker
		a.mu.RUnlock()
		return t, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.tracker != nil {
		return a.tracker, nil
	}

	t, err := releasemap.New(a.buildTrackerOptions()...)
	if err != nil {
		return nil, errors.WrapResource("create", "tracker", "", err)
	}

	a.tracker = t
	return t, nil
}

// TrackerWithOptions returns a new tracker with opts applied after the
// configured options, for commands that override file locations.
func (a *App) TrackerWithOptions(opts ...releasemap.Option) (releasemap.Tracker, error) {
	all := append(a.buildTrackerOptions(), opts...)
	t, err := releasemap.New(all...)
	if err != nil {
		return nil, errors.WrapResource("create", "tracker", "with custom options", err)
	}
	return t, nil
}

// buildTrackerOptions maps the configuration onto tracker options.
func (a *App) buildTrackerOptions() []releasemap.Option {
	c := a.config
	opts := []releasemap.Option{
		releasemap.WithPublishDir(c.PublishDir),
		releasemap.WithSiteDir(c.SiteDir),
	}
	if c.LedgerPath != "" {
		opts = append(opts, releasemap.WithLedgerPath(c.LedgerPath))
	}
	if c.ReadmePath != "" {
		opts = append(opts, releasemap.WithReadmePath(c.ReadmePath))
	}
	if c.DownloadEndpoint != "" {
		opts = append(opts, releasemap.WithEndpoint(c.DownloadEndpoint))
	}
	if c.UserAgent != "" {
		opts = append(opts, releasemap.WithUserAgent(c.UserAgent))
	}
	if c.HTTPTimeout > 0 {
		opts = append(opts, releasemap.WithHTTPTimeout(c.HTTPTimeout))
	}
	if c.MaxEntries > 0 {
		opts = append(opts, releasemap.WithMaxEntries(c.MaxEntries))
	}
	if c.RulesFile != "" {
		opts = append(opts, releasemap.WithRulesFile(c.RulesFile))
	}
	return opts
}

// Shutdown releases the tracker. The tracker holds no background work, so
// this only drops the reference.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tracker != nil {
		a.logger.Debug().Msg("Shutting down tracker")
		a.tracker = nil
	}
	return ctx.Err()
}
