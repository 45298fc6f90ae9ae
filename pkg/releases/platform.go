// Package releases defines the release data model shared by every releasemap
// component: platform identifiers, version entries, the version ledger, and
// the numeric-aware version ordering the ledger is kept in.
package releases

import "slices"

// Platform identifies an operating system and architecture build of a release.
type Platform string

// Known platforms.
const (
	PlatformDarwinUniversal Platform = "darwin-universal"
	PlatformDarwinX64       Platform = "darwin-x64"
	PlatformDarwinArm64     Platform = "darwin-arm64"
	PlatformWin32X64        Platform = "win32-x64"
	PlatformWin32Arm64      Platform = "win32-arm64"
	PlatformLinuxX64        Platform = "linux-x64"
	PlatformLinuxArm64      Platform = "linux-arm64"
)

// String returns the platform id.
func (p Platform) String() string {
	return string(p)
}

// OS is an operating system group in the release table.
type OS string

// OS groups, in table column order.
const (
	OSMac     OS = "mac"
	OSWindows OS = "windows"
	OSLinux   OS = "linux"
)

// Group is one OS column of the release table.
type Group struct {
	OS        OS
	Section   string
	Platforms []Platform
}

// PlatformTable is the fixed enumeration of platforms grouped by OS.
// Values returned by its methods are copies; the table itself never changes.
type PlatformTable struct {
	groups []Group
}

// DefaultPlatforms returns the platform table tracked by releasemap.
func DefaultPlatforms() PlatformTable {
	return PlatformTable{groups: []Group{
		{
			OS:        OSMac,
			Section:   "Mac Installer",
			Platforms: []Platform{PlatformDarwinUniversal, PlatformDarwinX64, PlatformDarwinArm64},
		},
		{
			OS:        OSWindows,
			Section:   "Windows Installer",
			Platforms: []Platform{PlatformWin32X64, PlatformWin32Arm64},
		},
		{
			OS:        OSLinux,
			Section:   "Linux Installer",
			Platforms: []Platform{PlatformLinuxX64, PlatformLinuxArm64},
		},
	}}
}

// Groups returns the OS groups in column order.
func (t PlatformTable) Groups() []Group {
	out := make([]Group, len(t.groups))
	for i, g := range t.groups {
		out[i] = Group{OS: g.OS, Section: g.Section, Platforms: slices.Clone(g.Platforms)}
	}
	return out
}

// Group returns the group for os.
func (t PlatformTable) Group(os OS) (Group, bool) {
	for _, g := range t.Groups() {
		if g.OS == os {
			return g, true
		}
	}
	return Group{}, false
}

// All returns every platform in table order.
func (t PlatformTable) All() []Platform {
	var out []Platform
	for _, g := range t.groups {
		out = append(out, g.Platforms...)
	}
	return out
}

// Has reports whether p is a known platform.
func (t PlatformTable) Has(p Platform) bool {
	for _, g := range t.groups {
		if slices.Contains(g.Platforms, p) {
			return true
		}
	}
	return false
}

// OSOf returns the OS group p belongs to.
func (t PlatformTable) OSOf(p Platform) (OS, bool) {
	for _, g := range t.groups {
		if slices.Contains(g.Platforms, p) {
			return g.OS, true
		}
	}
	return "", false
}
