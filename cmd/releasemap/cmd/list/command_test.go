package list

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/releasemap"
	"github.com/agentstation/releasemap/internal/appcontext"
	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/ledger"
	"github.com/agentstation/releasemap/pkg/releases"
)

func setup(t *testing.T, format string) *appcontext.Mock {
	t.Helper()
	ledgerPath := filepath.Join(t.TempDir(), "version-history.json")
	var versions []releases.VersionEntry
	for _, v := range []string{"0.46.10", "0.46.9", "0.45.0"} {
		versions = append(versions, releases.VersionEntry{
			Version:   v,
			Date:      "2025-02-20",
			Platforms: map[releases.Platform]string{releases.PlatformLinuxX64: "https://x/linux-" + v + ".AppImage"},
		})
	}
	require.NoError(t, ledger.NewStore(ledgerPath).Save(context.Background(), &releases.Ledger{Versions: versions}))

	return &appcontext.Mock{
		TrackerFunc: func() (releasemap.Tracker, error) {
			return releasemap.New(releasemap.WithLedgerPath(ledgerPath))
		},
		OutputFormatFunc: func() string { return format },
	}
}

func TestListTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, ExecuteList(context.Background(), setup(t, "table"), 0, &out))
	for _, v := range []string{"0.46.10", "0.46.9", "0.45.0", "linux-x64"} {
		assert.Contains(t, out.String(), v)
	}
}

func TestListLimit(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, ExecuteList(context.Background(), setup(t, "wide"), 2, &out))
	assert.Contains(t, out.String(), "https://x/linux-0.46.9.AppImage")
	assert.NotContains(t, out.String(), "0.45.0")
}

func TestListJSON(t *testing.T) {
	cmd := NewCommand(setup(t, "json"))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-n", "1"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"version": "0.46.10"`)
	assert.NotContains(t, out.String(), "0.46.9")
}

func TestListRejectsFormat(t *testing.T) {
	err := ExecuteList(context.Background(), setup(t, "xml"), 0, &bytes.Buffer{})
	assert.True(t, errors.IsValidationError(err))
}
