package releases

import (
	"encoding/json"
	"maps"
	"slices"
	"sort"
)

// VersionEntry is one recorded release and its per-platform download URLs.
type VersionEntry struct {
	Version   string              `json:"version" yaml:"version" validate:"required,version"`
	Date      string              `json:"date" yaml:"date" validate:"required,datetime=2006-01-02"`
	Platforms map[Platform]string `json:"platforms" yaml:"platforms" validate:"dive,keys,platform,endkeys,required,url"`
}

// URL returns the download URL for p, or "" when the entry has none.
func (e VersionEntry) URL(p Platform) string {
	return e.Platforms[p]
}

// Has reports whether the entry carries a URL for p.
func (e VersionEntry) Has(p Platform) bool {
	return e.Platforms[p] != ""
}

// Set records url for p.
func (e *VersionEntry) Set(p Platform, url string) {
	if e.Platforms == nil {
		e.Platforms = make(map[Platform]string)
	}
	e.Platforms[p] = url
}

// Clone returns a deep copy of the entry.
func (e VersionEntry) Clone() VersionEntry {
	out := e
	out.Platforms = maps.Clone(e.Platforms)
	if out.Platforms == nil {
		out.Platforms = make(map[Platform]string)
	}
	return out
}

// Ledger is the ordered release history, newest version first.
type Ledger struct {
	Versions []VersionEntry `json:"versions" yaml:"versions"`
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{Versions: []VersionEntry{}}
}

// MarshalJSON keeps an empty ledger encoded as an empty array.
func (l Ledger) MarshalJSON() ([]byte, error) {
	type plain Ledger
	if l.Versions == nil {
		l.Versions = []VersionEntry{}
	}
	return json.Marshal(plain(l))
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.Versions)
}

// Find returns the index of version, or -1.
func (l *Ledger) Find(version string) int {
	return slices.IndexFunc(l.Versions, func(e VersionEntry) bool {
		return e.Version == version
	})
}

// Get returns the entry for version.
func (l *Ledger) Get(version string) (*VersionEntry, bool) {
	i := l.Find(version)
	if i < 0 {
		return nil, false
	}
	return &l.Versions[i], true
}

// Sort orders entries descending by version. Equal versions keep their order.
func (l *Ledger) Sort() {
	sort.SliceStable(l.Versions, func(i, j int) bool {
		return CompareVersions(l.Versions[i].Version, l.Versions[j].Version) > 0
	})
}

// Truncate drops entries past limit and returns the dropped versions.
func (l *Ledger) Truncate(limit int) []string {
	if limit <= 0 || len(l.Versions) <= limit {
		return nil
	}
	dropped := make([]string, 0, len(l.Versions)-limit)
	for _, e := range l.Versions[limit:] {
		dropped = append(dropped, e.Version)
	}
	l.Versions = l.Versions[:limit]
	return dropped
}

// Missing returns the entries that lack target but have a URL for any of sources.
func (l *Ledger) Missing(target Platform, sources ...Platform) []int {
	var out []int
	for i, e := range l.Versions {
		if e.Has(target) {
			continue
		}
		if slices.ContainsFunc(sources, e.Has) {
			out = append(out, i)
		}
	}
	return out
}

// Clone returns a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	out := &Ledger{Versions: make([]VersionEntry, len(l.Versions))}
	for i, e := range l.Versions {
		out.Versions[i] = e.Clone()
	}
	return out
}
