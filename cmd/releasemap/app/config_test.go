package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/releasemap/pkg/constants"
)

// isolate resets global viper state and runs the test from an empty
// directory so no stray config or .env file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultLedgerPath, cfg.LedgerPath)
	assert.Equal(t, constants.DefaultReadmePath, cfg.ReadmePath)
	assert.Equal(t, constants.DefaultPublishDir, cfg.PublishDir)
	assert.Equal(t, constants.DefaultSiteDir, cfg.SiteDir)
	assert.Equal(t, constants.DefaultDownloadEndpoint, cfg.DownloadEndpoint)
	assert.Equal(t, constants.MaxLedgerEntries, cfg.MaxEntries)
	assert.Equal(t, constants.BackfillDelay, cfg.BackfillDelay)
	assert.Equal(t, constants.CheckpointEvery, cfg.CheckpointEvery)
	assert.Empty(t, cfg.LogLevel)
}

func TestLoadConfigEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("RELEASEMAP_LEDGER_PATH", "history.json")
	t.Setenv("RELEASEMAP_BACKFILL_DELAY", "2s")
	t.Setenv("RELEASEMAP_MAX_ENTRIES", "25")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "history.json", cfg.LedgerPath)
	assert.Equal(t, 2*time.Second, cfg.BackfillDelay)
	assert.Equal(t, 25, cfg.MaxEntries)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	content := "readme_path: docs/README.md\ncheckpoint_every: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".releasemap.yaml"), []byte(content), 0o644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "docs/README.md", cfg.ReadmePath)
	assert.Equal(t, 3, cfg.CheckpointEvery)
	assert.Equal(t, filepath.Join(dir, ".releasemap.yaml"), cfg.ConfigFile)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".releasemap.yaml"), []byte("readme_path: [\n"), 0o644))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigEnvFiles(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RELEASEMAP_SITE_DIR=from-env\nRELEASEMAP_USER_AGENT=agent-env\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("RELEASEMAP_SITE_DIR=from-local\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("RELEASEMAP_SITE_DIR")
		os.Unsetenv("RELEASEMAP_USER_AGENT")
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-local", cfg.SiteDir)
	assert.Equal(t, "agent-env", cfg.UserAgent)
}
