// Package constants provides shared constants used throughout the releasemap codebase.
// This includes timeouts, limits, file permissions, and the default locations of the
// files the tool reads and rewrites.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the hard cutoff for a single download API request
	DefaultHTTPTimeout = 10 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// ShutdownTimeout bounds cleanup after a failed command
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Ledger constants
const (
	// MaxLedgerEntries is the number of releases kept in the ledger
	MaxLedgerEntries = 100

	// BackupSuffix is appended to the ledger path for the previous version
	BackupSuffix = ".backup"

	// JSONIndent is the indentation used for the persisted ledger
	JSONIndent = "  "
)

// Backfill constants
const (
	// BackfillDelay is the fixed pause between remote lookups
	BackfillDelay = 500 * time.Millisecond

	// CheckpointEvery is the number of successful updates between checkpoint saves
	CheckpointEvery = 10
)

// Default paths
const (
	// DefaultLedgerPath is the default location of the version history
	DefaultLedgerPath = "version-history.json"

	// DefaultReadmePath is the default projected document
	DefaultReadmePath = "README.md"

	// DefaultPublishDir receives the byte-for-byte ledger snapshot
	DefaultPublishDir = "web/public/data"

	// DefaultSiteDir is the root of the generated site content
	DefaultSiteDir = "site"

	// DefaultConfigName is the config file name searched in $HOME and .
	DefaultConfigName = ".releasemap"
)

// Download API constants
const (
	// DefaultDownloadEndpoint is the vendor download API
	DefaultDownloadEndpoint = "https://www.cursor.com/api/download"

	// DefaultUserAgent identifies the tracker to the vendor API
	DefaultUserAgent = "Cursor-Version-Checker"

	// ReleaseTrackLatest asks the API for the newest release
	ReleaseTrackLatest = "latest"
)

// Format constants
const (
	// DateLayout is the ISO calendar date used in the ledger and the document
	DateLayout = "2006-01-02"
)
