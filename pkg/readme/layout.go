package readme

import "github.com/agentstation/releasemap/pkg/releases"

// Region names.
const (
	RegionTableHeader  = "table-header"
	RegionTableRows    = "table-rows"
	RegionStampIDE     = "stamp-ide"
	RegionStampWebsite = "stamp-website"
)

// StampTemplate is a sentence holding a backtick-delimited date between
// Prefix and Suffix.
type StampTemplate struct {
	Name   string
	Prefix string
	Suffix string
}

// Layout holds the literal anchors located in a document.
type Layout struct {
	Header      string
	Separator   string
	Stamps      []StampTemplate
	Placeholder string
	LinkSep     string
	Platforms   releases.PlatformTable
}

// DefaultLayout returns the anchors used by the project README.
func DefaultLayout() Layout {
	return Layout{
		Header:    "| Version | Date | Mac Installer | Windows Installer | Linux Installer |",
		Separator: "| --- | --- | --- | --- | --- |",
		Stamps: []StampTemplate{
			{
				Name:   RegionStampIDE,
				Prefix: "Official Download Link for The latest version from `[Cursor AI IDE]'s [Check for Updates...]` (on `",
				Suffix: "`) is:",
			},
			{
				Name:   RegionStampWebsite,
				Prefix: "Official Download Link for The latest version from [Cursor AI's Website](https://www.cursor.com/downloads) (on `",
				Suffix: "`) is:",
			},
		},
		Placeholder: "Not Ready",
		LinkSep:     "<br>",
		Platforms:   releases.DefaultPlatforms(),
	}
}
