package readme

import (
	"regexp"
	"strings"

	"github.com/agentstation/releasemap/pkg/releases"
)

var linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// FormatRow renders entry as a table row: version, date, then one cell per
// OS group with labeled links in fixed platform order.
func FormatRow(entry releases.VersionEntry, layout Layout) string {
	cells := []string{entry.Version, entry.Date}
	for _, g := range layout.Platforms.Groups() {
		cells = append(cells, formatCell(entry, g, layout))
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

func formatCell(entry releases.VersionEntry, g releases.Group, layout Layout) string {
	var links []string
	for _, p := range g.Platforms {
		if url := entry.URL(p); url != "" {
			links = append(links, "["+p.String()+"]("+url+")")
		}
	}
	if len(links) == 0 && g.OS == releases.OSLinux {
		return layout.Placeholder
	}
	return strings.Join(links, layout.LinkSep)
}

// linuxCell renders only the Linux cell for entry.
func linuxCell(entry releases.VersionEntry, layout Layout) string {
	g, ok := layout.Platforms.Group(releases.OSLinux)
	if !ok {
		return layout.Placeholder
	}
	return formatCell(entry, g, layout)
}

// splitCells returns the trimmed cells of a table row.
func splitCells(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")
	parts := strings.Split(row, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseLinks returns the platform links in a cell, ignoring unknown labels.
func parseLinks(cell string, table releases.PlatformTable) map[releases.Platform]string {
	out := make(map[releases.Platform]string)
	for _, m := range linkPattern.FindAllStringSubmatch(cell, -1) {
		p := releases.Platform(m[1])
		if table.Has(p) {
			out[p] = m[2]
		}
	}
	return out
}

// rowPrefix is the exact leading text of the row for version and date.
func rowPrefix(version, date string) string {
	return "| " + version + " | " + date + " |"
}
