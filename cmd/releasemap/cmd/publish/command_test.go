package publish

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/releasemap"
	"github.com/agentstation/releasemap/internal/appcontext"
	"github.com/agentstation/releasemap/pkg/ledger"
	"github.com/agentstation/releasemap/pkg/releases"
)

func TestPublishCommand(t *testing.T) {
	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "version-history.json")
	publishDir := filepath.Join(dir, "public")
	siteDir := filepath.Join(dir, "site")
	require.NoError(t, ledger.NewStore(ledgerPath).Save(context.Background(), &releases.Ledger{
		Versions: []releases.VersionEntry{{
			Version:   "0.46.9",
			Date:      "2025-02-20",
			Platforms: map[releases.Platform]string{releases.PlatformLinuxX64: "https://x/linux.AppImage"},
		}},
	}))

	mock := &appcontext.Mock{
		TrackerFunc: func() (releasemap.Tracker, error) {
			return releasemap.New(
				releasemap.WithLedgerPath(ledgerPath),
				releasemap.WithPublishDir(publishDir),
				releasemap.WithSiteDir(siteDir),
			)
		},
	}

	cmd := NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Published")
	assert.Contains(t, out.String(), "Generated")
	assert.NotContains(t, out.String(), "Site built")

	want, err := os.ReadFile(ledgerPath)
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(publishDir, "version-history.json"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = os.Stat(filepath.Join(siteDir, "content", "_index.md"))
	assert.NoError(t, err)
}

func TestPublishCommandNothingConfigured(t *testing.T) {
	ledgerPath := filepath.Join(t.TempDir(), "version-history.json")
	mock := &appcontext.Mock{
		TrackerFunc: func() (releasemap.Tracker, error) {
			return releasemap.New(releasemap.WithLedgerPath(ledgerPath), releasemap.WithPublishDir(""))
		},
	}

	cmd := NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Nothing to publish")
}
