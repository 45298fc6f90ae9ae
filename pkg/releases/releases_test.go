package releases

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/releasemap/pkg/errors"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"0.46.10", "0.46.9", 1},
		{"0.46.9", "0.46.10", -1},
		{"1.2.0", "0.99.99", 1},
		{"0.45.0", "0.45.0", 0},
		{"0.45", "0.45.0", -1},
		{"0.45.0", "0.45", 1},
		{"0.45.1a", "0.45.1", 1},
		{"0.45.1a", "0.45.1b", -1},
		{"10.0.0", "9.9.9", 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_vs_%s", tt.a, tt.b), func(t *testing.T) {
			assert.Equal(t, tt.want, CompareVersions(tt.a, tt.b))
		})
	}
}

func TestLedgerSort(t *testing.T) {
	l := &Ledger{Versions: []VersionEntry{
		{Version: "0.46.9"},
		{Version: "1.2.0"},
		{Version: "0.46.10"},
		{Version: "0.99.99"},
	}}
	l.Sort()

	var got []string
	for _, e := range l.Versions {
		got = append(got, e.Version)
	}
	assert.Equal(t, []string{"1.2.0", "0.99.99", "0.46.10", "0.46.9"}, got)
}

func TestLedgerTruncate(t *testing.T) {
	l := NewLedger()
	for i := 0; i < 5; i++ {
		l.Versions = append(l.Versions, VersionEntry{Version: fmt.Sprintf("0.%d.0", 10-i)})
	}

	assert.Nil(t, l.Truncate(10))
	assert.Nil(t, l.Truncate(0))

	dropped := l.Truncate(3)
	assert.Equal(t, []string{"0.7.0", "0.6.0"}, dropped)
	assert.Equal(t, 3, l.Len())
}

func TestLedgerFindAndMissing(t *testing.T) {
	l := &Ledger{Versions: []VersionEntry{
		{Version: "0.46.0", Platforms: map[Platform]string{PlatformLinuxX64: "https://x/a", PlatformLinuxArm64: "https://x/b"}},
		{Version: "0.45.0", Platforms: map[Platform]string{PlatformLinuxX64: "https://x/c"}},
		{Version: "0.44.0", Platforms: map[Platform]string{PlatformDarwinUniversal: "https://x/d"}},
	}}

	assert.Equal(t, 1, l.Find("0.45.0"))
	assert.Equal(t, -1, l.Find("9.9.9"))

	assert.Equal(t, []int{1}, l.Missing(PlatformLinuxArm64, PlatformLinuxX64))
	assert.Equal(t, []int{2}, l.Missing(PlatformLinuxX64, PlatformDarwinUniversal, PlatformWin32X64))

	e, ok := l.Get("0.44.0")
	require.True(t, ok)
	e.Set(PlatformLinuxX64, "https://x/e")
	assert.True(t, l.Versions[2].Has(PlatformLinuxX64))
}

func TestLedgerClone(t *testing.T) {
	l := &Ledger{Versions: []VersionEntry{{Version: "0.1.0", Platforms: map[Platform]string{PlatformWin32X64: "https://x"}}}}
	c := l.Clone()
	c.Versions[0].Set(PlatformWin32X64, "https://y")
	assert.Equal(t, "https://x", l.Versions[0].URL(PlatformWin32X64))
}

func TestEmptyLedgerJSON(t *testing.T) {
	data, err := json.Marshal(&Ledger{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"versions":[]}`, string(data))
}

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
		ok   bool
	}{
		{
			name: "windows installer",
			url:  "https://downloads.cursor.com/production/abc/win32/x64/user-setup/CursorUserSetup-x64-0.46.10.exe",
			want: "0.46.10",
			ok:   true,
		},
		{
			name: "darwin dmg",
			url:  "https://downloads.cursor.com/production/abc/darwin/universal/Cursor-darwin-universal-0.45.14.dmg",
			want: "0.45.14",
			ok:   true,
		},
		{
			name: "no version",
			url:  "https://downloader.cursor.sh/builds/250207y6nbaw5qc/linux/appImage/x64",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractVersion(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLatestVersion(t *testing.T) {
	v, ok := LatestVersion([]string{
		"https://x/Cursor-0.46.9.dmg",
		"https://x/CursorUserSetup-x64-0.46.10.exe",
		"https://x/no-version",
	})
	require.True(t, ok)
	assert.Equal(t, "0.46.10", v)

	_, ok = LatestVersion(nil)
	assert.False(t, ok)
}

func TestPlatformTable(t *testing.T) {
	table := DefaultPlatforms()

	assert.Len(t, table.All(), 7)
	assert.True(t, table.Has(PlatformLinuxArm64))
	assert.False(t, table.Has(Platform("beos-x86")))

	os, ok := table.OSOf(PlatformWin32Arm64)
	require.True(t, ok)
	assert.Equal(t, OSWindows, os)

	mac, ok := table.Group(OSMac)
	require.True(t, ok)
	assert.Equal(t, []Platform{PlatformDarwinUniversal, PlatformDarwinX64, PlatformDarwinArm64}, mac.Platforms)

	// Mutating a returned group leaves the table intact.
	mac.Platforms[0] = PlatformLinuxX64
	again, _ := table.Group(OSMac)
	assert.Equal(t, PlatformDarwinUniversal, again.Platforms[0])
}

func TestEntryValidate(t *testing.T) {
	valid := VersionEntry{
		Version:   "0.46.10",
		Date:      "2025-02-20",
		Platforms: map[Platform]string{PlatformLinuxX64: "https://example.com/a.AppImage"},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		edit  func(e *VersionEntry)
		field string
	}{
		{"missing version", func(e *VersionEntry) { e.Version = "" }, "version"},
		{"bad version", func(e *VersionEntry) { e.Version = "latest" }, "version"},
		{"bad date", func(e *VersionEntry) { e.Date = "20/02/2025" }, "date"},
		{"unknown platform", func(e *VersionEntry) { e.Platforms["amiga"] = "https://x" }, "platforms"},
		{"empty url", func(e *VersionEntry) { e.Platforms[PlatformWin32X64] = "" }, "platforms"},
		{"relative url", func(e *VersionEntry) { e.Platforms[PlatformWin32X64] = "/download" }, "platforms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid.Clone()
			tt.edit(&e)
			err := e.Validate()
			require.Error(t, err)

			var verr *errors.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLedgerValidate(t *testing.T) {
	entry := VersionEntry{Version: "0.45.0", Date: "2025-01-01", Platforms: map[Platform]string{}}
	l := &Ledger{Versions: []VersionEntry{entry, entry}}

	err := l.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, err.Error(), "duplicate")

	problems := (&Ledger{Versions: []VersionEntry{
		{Version: "0.44.0", Date: "2025-01-01"},
		{Version: "0.45.0", Date: "bad"},
	}}).Problems()
	assert.Len(t, problems, 2)
}
