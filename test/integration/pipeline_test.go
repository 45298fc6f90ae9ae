// Package integration runs the release pipelines end to end against a
// local download API.
package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/releasemap"
	"github.com/agentstation/releasemap/pkg/backfill"
	"github.com/agentstation/releasemap/pkg/ledger"
	"github.com/agentstation/releasemap/pkg/reconciler"
	"github.com/agentstation/releasemap/pkg/releases"
)

const (
	x64Old   = "https://dl/linux/x64/appimage/Cursor-0.45.0-aaa111.deb.glibc2.25-x86_64.AppImage"
	arm64Old = "https://dl/linux/arm64/appimage/Cursor-0.45.0-aaa111.deb.glibc2.28-aarch64.AppImage"
	x64New   = "https://dl/linux/x64/appimage/Cursor-0.46.0-bbb222.deb.glibc2.25-x86_64.AppImage"
	arm64New = "https://dl/linux/arm64/appimage/Cursor-0.46.0-bbb222.deb.glibc2.28-aarch64.AppImage"
)

const readmeText = "# Downloads\n" +
	"\n" +
	"Official Download Link for The latest version from `[Cursor AI IDE]'s [Check for Updates...]` (on `2025-01-23`) is:\n" +
	"\n" +
	"| Version | Date | Mac Installer | Windows Installer | Linux Installer |\n" +
	"| --- | --- | --- | --- | --- |\n" +
	"| 0.45.0 | 2025-01-23 | Not Ready | Not Ready | [linux-x64](" + x64Old + ") |\n"

// downloadAPI answers platform/releaseTrack queries from a fixed table and
// records every query it sees.
type downloadAPI struct {
	mu      sync.Mutex
	urls    map[string]string
	queries []string
}

func (d *downloadAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("platform") + "@" + r.URL.Query().Get("releaseTrack")

	d.mu.Lock()
	d.queries = append(d.queries, key)
	u, ok := d.urls[key]
	d.mu.Unlock()

	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"downloadUrl": u})
}

func TestReleasePipeline(t *testing.T) {
	api := &downloadAPI{urls: map[string]string{
		"darwin-universal@latest": "https://dl/mac/Cursor-0.46.0-universal.dmg",
		"win32-x64@latest":        "https://dl/win/CursorUserSetup-x64-0.46.0.exe",
		"linux-x64@latest":        x64New,
		"linux-arm64@0.46.0":      arm64New,
	}}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "version-history.json")
	readmePath := filepath.Join(dir, "README.md")
	publishDir := filepath.Join(dir, "public")
	siteDir := filepath.Join(dir, "site")

	require.NoError(t, os.WriteFile(readmePath, []byte(readmeText), 0o644))
	require.NoError(t, ledger.NewStore(ledgerPath).Save(context.Background(), &releases.Ledger{
		Versions: []releases.VersionEntry{{
			Version:   "0.45.0",
			Date:      "2025-01-23",
			Platforms: map[releases.Platform]string{releases.PlatformLinuxX64: x64Old},
		}},
	}))

	tracker, err := releasemap.New(
		releasemap.WithLedgerPath(ledgerPath),
		releasemap.WithReadmePath(readmePath),
		releasemap.WithPublishDir(publishDir),
		releasemap.WithSiteDir(siteDir),
		releasemap.WithEndpoint(server.URL),
		releasemap.WithHTTPTimeout(5*time.Second),
		releasemap.WithClock(func() utc.Time {
			return utc.Time{Time: time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)}
		}),
	)
	require.NoError(t, err)

	var added []string
	tracker.OnReleaseAdded(func(entry releases.VersionEntry) {
		added = append(added, entry.Version)
	})
	ctx := context.Background()

	// Step 1: a new release appears at the API
	result, err := tracker.Update(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.46.0", result.Version)
	assert.Equal(t, reconciler.ActionAdded, result.Action)
	assert.Equal(t, 3, result.Fetched)
	assert.True(t, result.ReadmeUpdated)
	require.NotNil(t, result.Publish)
	assert.Equal(t, []string{"0.46.0"}, added)

	// Step 2: fill ARM64, once from the API and once by inference
	summary, err := tracker.Backfill(ctx, releases.PlatformLinuxArm64, backfill.WithDelay(0))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Selected)
	assert.Equal(t, 2, summary.Updated)
	assert.Equal(t, "lookup", summary.Resolved["0.46.0"])
	assert.NotEqual(t, "lookup", summary.Resolved["0.45.0"])

	l, err := tracker.Ledger(ctx)
	require.NoError(t, err)
	newest, _ := l.Get("0.46.0")
	oldest, _ := l.Get("0.45.0")
	assert.Equal(t, arm64New, newest.URL(releases.PlatformLinuxArm64))
	assert.Equal(t, arm64Old, oldest.URL(releases.PlatformLinuxArm64))

	// Step 3: carry the new links into the README
	report, err := tracker.SyncDocument(ctx, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"0.46.0", "0.45.0"}, report.Updated)

	doc, err := os.ReadFile(readmePath)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "(on `2025-02-01`)")
	assert.Contains(t, string(doc), "[linux-arm64]("+arm64Old+")")
	assert.Less(t, strings.Index(string(doc), "| 0.46.0 |"), strings.Index(string(doc), "| 0.45.0 |"))

	// Step 4: publish the final history
	published, err := tracker.Publish(ctx)
	require.NoError(t, err)
	want, err := os.ReadFile(ledgerPath)
	require.NoError(t, err)
	got, err := os.ReadFile(published.Snapshot)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	page, err := os.ReadFile(published.Page)
	require.NoError(t, err)
	assert.Contains(t, string(page), arm64New)

	problems, err := tracker.Validate(ctx)
	require.NoError(t, err)
	assert.Empty(t, problems)

	// Step 5: a second update is a no-op
	again, err := tracker.Update(ctx)
	require.NoError(t, err)
	assert.Equal(t, reconciler.ActionUnchanged, again.Action)
	assert.False(t, again.Changed())
	assert.Nil(t, again.Publish)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Contains(t, api.queries, "linux-arm64@0.45.0")
}
