// Package readme projects the version ledger into a Markdown document.
//
// The document is modeled as a sequence of regions. Named regions are the
// anchors releasemap edits: the table header, the table rows below it, and
// the date token of each "last checked" sentence. Everything else is kept as
// opaque text, so rendering a parsed document reproduces its bytes exactly.
package readme

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/logging"
	"github.com/agentstation/releasemap/pkg/releases"
)

// Projection errors.
var (
	ErrAnchorNotFound = errors.New("table header anchor not found")
	ErrRowExists      = fmt.Errorf("release row %w", errors.ErrAlreadyExists)
	ErrRowNotFound    = errors.New("release row not found")
)

// Region is a contiguous span of the document. Free text has no name.
type Region struct {
	Name string
	Text string
}

// Document is a parsed Markdown document.
type Document struct {
	layout  Layout
	regions []Region
}

type span struct {
	name       string
	start, end int
}

// Parse locates the layout's anchors in text.
func Parse(text string, layout Layout) *Document {
	var spans []span

	anchor := layout.Header + "\n" + layout.Separator
	if i := strings.Index(text, anchor); i >= 0 {
		end := i + len(anchor)
		spans = append(spans, span{RegionTableHeader, i, end})
		spans = append(spans, span{RegionTableRows, end, end + rowsLength(text[end:])})
	}

	for _, st := range layout.Stamps {
		re := regexp.MustCompile(regexp.QuoteMeta(st.Prefix) + "([^`]+)" + regexp.QuoteMeta(st.Suffix))
		if loc := re.FindStringSubmatchIndex(text); loc != nil {
			spans = append(spans, span{st.Name, loc[2], loc[3]})
		}
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	doc := &Document{layout: layout}
	pos := 0
	for _, s := range spans {
		if s.start < pos {
			// Overlapping anchors are left as free text.
			continue
		}
		if s.start > pos {
			doc.regions = append(doc.regions, Region{Text: text[pos:s.start]})
		}
		doc.regions = append(doc.regions, Region{Name: s.name, Text: text[s.start:s.end]})
		pos = s.end
	}
	if pos < len(text) {
		doc.regions = append(doc.regions, Region{Text: text[pos:]})
	}
	return doc
}

// rowsLength measures the run of "\n|..." lines at the start of s.
func rowsLength(s string) int {
	n := 0
	for strings.HasPrefix(s[n:], "\n|") {
		next := strings.IndexByte(s[n+1:], '\n')
		if next < 0 {
			return len(s)
		}
		n += 1 + next
	}
	return n
}

// String renders the document.
func (d *Document) String() string {
	var b strings.Builder
	for _, r := range d.regions {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Regions returns the named regions found in the document.
func (d *Document) Regions() []string {
	var names []string
	for _, r := range d.regions {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}
	return names
}

func (d *Document) region(name string) *Region {
	for i := range d.regions {
		if d.regions[i].Name == name {
			return &d.regions[i]
		}
	}
	return nil
}

// rows returns the table rows, newest first.
func (d *Document) rows() []string {
	r := d.region(RegionTableRows)
	if r == nil || r.Text == "" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(r.Text, "\n"), "\n")
}

func (d *Document) setRows(rows []string) {
	r := d.region(RegionTableRows)
	if r == nil {
		return
	}
	var b strings.Builder
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(row)
	}
	r.Text = b.String()
}

func (d *Document) findRow(version string) (int, []string) {
	for i, row := range d.rows() {
		cells := splitCells(row)
		if len(cells) > 0 && cells[0] == version {
			return i, cells
		}
	}
	return -1, nil
}

// HasTable reports whether the table header anchor was found.
func (d *Document) HasTable() bool {
	return d.region(RegionTableHeader) != nil
}

// HasRelease reports whether the table has a row for version.
func (d *Document) HasRelease(version string) bool {
	i, _ := d.findRow(version)
	return i >= 0
}

// InsertRelease adds a row for entry directly below the table header.
func (d *Document) InsertRelease(entry releases.VersionEntry) error {
	if !d.HasTable() {
		return ErrAnchorNotFound
	}
	if d.HasRelease(entry.Version) {
		return ErrRowExists
	}
	d.setRows(append([]string{FormatRow(entry, d.layout)}, d.rows()...))
	return nil
}

// UpdateLinuxCell rewrites the Linux cell of the row matching entry's version
// and date. All other bytes of the row are kept. It reports false when the
// cell already matches.
func (d *Document) UpdateLinuxCell(entry releases.VersionEntry) (bool, error) {
	prefix := rowPrefix(entry.Version, entry.Date)
	rows := d.rows()
	for i, row := range rows {
		if !strings.HasPrefix(row, prefix) {
			continue
		}

		end := strings.LastIndex(row, " |")
		start := strings.LastIndex(row[:max(end, 0)], " | ")
		if end < 0 || start < len(prefix)-2 {
			return false, &errors.ParseError{Format: "markdown", Message: "malformed row for " + entry.Version}
		}

		cell := linuxCell(entry, d.layout)
		if row[start+3:end] == cell {
			return false, nil
		}
		rows[i] = row[:start+3] + cell + row[end:]
		d.setRows(rows)
		return true, nil
	}
	return false, ErrRowNotFound
}

// Stamp sets the date in every stamp sentence and returns how many were
// updated. Missing stamps are logged and skipped.
func (d *Document) Stamp(ctx context.Context, date string) int {
	updated := 0
	for _, st := range d.layout.Stamps {
		r := d.region(st.Name)
		if r == nil {
			logging.FromContext(ctx).Warn().Str("region", st.Name).Msg("Date stamp not found in document, skipping")
			continue
		}
		r.Text = date
		updated++
	}
	return updated
}

// StampDate returns the date currently held by the named stamp.
func (d *Document) StampDate(name string) (string, bool) {
	r := d.region(name)
	if r == nil {
		return "", false
	}
	return r.Text, true
}

// ParseRelease reconstructs a ledger entry from the row for version.
func (d *Document) ParseRelease(version string) (releases.VersionEntry, bool) {
	i, cells := d.findRow(version)
	if i < 0 || len(cells) < 2 {
		return releases.VersionEntry{}, false
	}

	entry := releases.VersionEntry{
		Version:   cells[0],
		Date:      cells[1],
		Platforms: make(map[releases.Platform]string),
	}
	for _, cell := range cells[2:] {
		if cell == d.layout.Placeholder {
			continue
		}
		for p, url := range parseLinks(cell, d.layout.Platforms) {
			entry.Platforms[p] = url
		}
	}
	return entry, true
}

// LatestRelease returns the version and date of the first data row.
func (d *Document) LatestRelease() (version, date string, ok bool) {
	rows := d.rows()
	if len(rows) == 0 {
		return "", "", false
	}
	cells := splitCells(rows[0])
	if len(cells) < 2 {
		return "", "", false
	}
	return cells[0], cells[1], true
}

// Releases returns the versions listed in the table, in row order.
func (d *Document) Releases() []string {
	var out []string
	for _, row := range d.rows() {
		if cells := splitCells(row); len(cells) > 0 && cells[0] != "" {
			out = append(out, cells[0])
		}
	}
	return out
}
