package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/releasemap"
	"github.com/agentstation/releasemap/pkg/constants"
	"github.com/agentstation/releasemap/pkg/releases"
)

// Compile-time interface check.
var _ Interface = (*Mock)(nil)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	TrackerFunc            func() (releasemap.Tracker, error)
	TrackerWithOptionsFunc func(...releasemap.Option) (releasemap.Tracker, error)
	SettingsFunc           func() Settings
	LoggerFunc             func() *zerolog.Logger
	OutputFormatFunc       func() string
	VersionFunc            func() string
	CommitFunc             func() string
	DateFunc               func() string
	BuiltByFunc            func() string
}

// Tracker returns a tracker using the mock function or nil.
func (m *Mock) Tracker() (releasemap.Tracker, error) {
	if m.TrackerFunc != nil {
		return m.TrackerFunc()
	}
	return nil, nil
}

// TrackerWithOptions returns a tracker using the mock function, falling back
// to TrackerFunc.
func (m *Mock) TrackerWithOptions(opts ...releasemap.Option) (releasemap.Tracker, error) {
	if m.TrackerWithOptionsFunc != nil {
		return m.TrackerWithOptionsFunc(opts...)
	}
	return m.Tracker()
}

// Platforms returns the default platform table.
func (m *Mock) Platforms() releases.PlatformTable {
	return releases.DefaultPlatforms()
}

// Settings returns settings using the mock function or the defaults.
func (m *Mock) Settings() Settings {
	if m.SettingsFunc != nil {
		return m.SettingsFunc()
	}
	return Settings{
		LedgerPath:      constants.DefaultLedgerPath,
		ReadmePath:      constants.DefaultReadmePath,
		PublishDir:      constants.DefaultPublishDir,
		SiteDir:         constants.DefaultSiteDir,
		BackfillDelay:   constants.BackfillDelay,
		CheckpointEvery: constants.CheckpointEvery,
	}
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the format using the mock function or "".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return ""
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}
