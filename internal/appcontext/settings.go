package appcontext

import "time"

// Settings are the configuration values commands use as flag defaults.
type Settings struct {
	LedgerPath      string
	ReadmePath      string
	PublishDir      string
	SiteDir         string
	BackfillDelay   time.Duration
	CheckpointEvery int
}
