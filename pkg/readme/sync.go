package readme

import (
	"context"
	"strings"

	"github.com/agentstation/releasemap/pkg/logging"
	"github.com/agentstation/releasemap/pkg/releases"
)

// SyncReport lists what Sync changed.
type SyncReport struct {
	Updated   []string
	Unchanged int
	// NotInDocument lists ledger versions with no table row.
	NotInDocument []string
}

// Changed reports whether any row was rewritten.
func (r SyncReport) Changed() bool {
	return len(r.Updated) > 0
}

// Sync refreshes the Linux cell of every row whose ledger entry has more
// Linux links than the row currently shows.
func Sync(ctx context.Context, doc *Document, ledger *releases.Ledger) SyncReport {
	var report SyncReport
	logger := logging.FromContext(ctx)

	linux, _ := doc.layout.Platforms.Group(releases.OSLinux)
	for _, entry := range ledger.Versions {
		i, cells := doc.findRow(entry.Version)
		if i < 0 {
			report.NotInDocument = append(report.NotInDocument, entry.Version)
			continue
		}

		want := 0
		for _, p := range linux.Platforms {
			if entry.Has(p) {
				want++
			}
		}
		have := 0
		if len(cells) > 0 {
			have = len(parseLinks(cells[len(cells)-1], doc.layout.Platforms))
		}
		if want <= have {
			report.Unchanged++
			continue
		}

		changed, err := doc.UpdateLinuxCell(entry)
		if err != nil {
			logger.Warn().Err(err).Str("version", entry.Version).Msg("Could not update Linux links")
			continue
		}
		if changed {
			report.Updated = append(report.Updated, entry.Version)
			logger.Info().Str("version", entry.Version).Msg("Updated Linux links in document")
		} else {
			report.Unchanged++
		}
	}

	if len(report.NotInDocument) > 0 {
		logger.Debug().Str("versions", strings.Join(report.NotInDocument, ",")).Msg("Versions without a table row")
	}
	return report
}
