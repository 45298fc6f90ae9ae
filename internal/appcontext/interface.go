// Package appcontext provides the shared application context interface
// used by all commands. Commands accept this interface rather than the
// concrete App so they can be tested with Mock.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/releasemap"
	"github.com/agentstation/releasemap/pkg/releases"
)

// Interface defines the application context interface that commands need.
// The App struct from cmd/releasemap/app implements it.
type Interface interface {
	// Tracker returns the default tracker, creating it lazily if needed.
	Tracker() (releasemap.Tracker, error)

	// TrackerWithOptions creates a new tracker with options applied on top
	// of the configured ones.
	TrackerWithOptions(...releasemap.Option) (releasemap.Tracker, error)

	// Platforms returns the platform table used by every component.
	Platforms() releases.PlatformTable

	// Settings returns the resolved configuration values commands read.
	Settings() Settings

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml, wide).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
