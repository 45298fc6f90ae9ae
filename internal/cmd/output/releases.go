package output

import (
	"io"
	"strings"

	"github.com/agentstation/releasemap/pkg/ledger"
	"github.com/agentstation/releasemap/pkg/releases"
	"github.com/agentstation/releasemap/pkg/save"
)

// LedgerToTableData lays the ledger out as one row per version. The narrow
// form lists the platforms present in each OS group, the wide form prints
// their URLs.
func LedgerToTableData(l *releases.Ledger, table releases.PlatformTable, wide bool) Data {
	headers := []string{"Version", "Date"}
	for _, g := range table.Groups() {
		headers = append(headers, g.Section)
	}

	rows := make([][]string, 0, l.Len())
	for _, entry := range l.Versions {
		row := []string{entry.Version, entry.Date}
		for _, g := range table.Groups() {
			var cells []string
			for _, p := range g.Platforms {
				if !entry.Has(p) {
					continue
				}
				if wide {
					cells = append(cells, entry.URL(p))
				} else {
					cells = append(cells, p.String())
				}
			}
			sep := ", "
			if wide {
				sep = "\n"
			}
			row = append(row, strings.Join(cells, sep))
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows}
}

// FormatLedger writes l to w in format. JSON and YAML use the ledger's own
// encoding, so JSON output matches the history file.
func FormatLedger(w io.Writer, l *releases.Ledger, table releases.PlatformTable, format Format) error {
	switch format {
	case FormatJSON:
		return ledger.Export(w, l, save.FormatJSON)
	case FormatYAML:
		return ledger.Export(w, l, save.FormatYAML)
	default:
		return NewFormatter(format).Format(w, LedgerToTableData(l, table, format == FormatWide))
	}
}
