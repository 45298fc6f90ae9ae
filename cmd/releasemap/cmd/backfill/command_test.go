package backfill

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/releasemap"
	"github.com/agentstation/releasemap/internal/appcontext"
	pkgbackfill "github.com/agentstation/releasemap/pkg/backfill"
	"github.com/agentstation/releasemap/pkg/ledger"
	"github.com/agentstation/releasemap/pkg/releases"
)

const (
	x64URL   = "https://x/linux/x64/appimage/Cursor-0.45.0-abc123.deb.glibc2.25-x86_64.AppImage"
	arm64URL = "https://x/linux/arm64/appimage/Cursor-0.45.0-abc123.deb.glibc2.28-aarch64.AppImage"
)

func setup(t *testing.T) (*appcontext.Mock, string) {
	t.Helper()
	ledgerPath := filepath.Join(t.TempDir(), "version-history.json")
	require.NoError(t, ledger.NewStore(ledgerPath).Save(context.Background(), &releases.Ledger{
		Versions: []releases.VersionEntry{{
			Version:   "0.45.0",
			Date:      "2025-01-23",
			Platforms: map[releases.Platform]string{releases.PlatformLinuxX64: x64URL},
		}},
	}))

	mock := &appcontext.Mock{
		TrackerFunc: func() (releasemap.Tracker, error) {
			return releasemap.New(releasemap.WithLedgerPath(ledgerPath), releasemap.WithPublishDir(""))
		},
		OutputFormatFunc: func() string { return "table" },
	}
	return mock, ledgerPath
}

func TestBackfillCommandInfers(t *testing.T) {
	mock, ledgerPath := setup(t)

	cmd := NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"linux-arm64", "--no-lookup", "--delay", "0s"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Backfill linux-arm64: 1 selected, 1 updated, 0 skipped, 0 errors")
	assert.Contains(t, out.String(), "0.45.0")

	l, err := ledger.NewStore(ledgerPath).Read(context.Background())
	require.NoError(t, err)
	got, ok := l.Get("0.45.0")
	require.True(t, ok)
	assert.Equal(t, arm64URL, got.URL(releases.PlatformLinuxArm64))
}

func TestBackfillCommandDryRun(t *testing.T) {
	mock, ledgerPath := setup(t)

	flags := &Flags{NoLookup: true, DryRun: true, CheckpointEvery: 10}
	var out bytes.Buffer
	require.NoError(t, ExecuteBackfill(context.Background(), mock, releases.PlatformLinuxArm64, flags, &out))

	l, err := ledger.NewStore(ledgerPath).Read(context.Background())
	require.NoError(t, err)
	got, _ := l.Get("0.45.0")
	assert.False(t, got.Has(releases.PlatformLinuxArm64))
}

func TestBackfillCommandRejectsTarget(t *testing.T) {
	mock, _ := setup(t)

	cmd := NewCommand(mock)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"darwin-arm64", "--no-lookup"})
	assert.Error(t, cmd.Execute())

	cmd = NewCommand(mock)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}

func TestBackfillFlagDefaults(t *testing.T) {
	mock, _ := setup(t)
	cmd := NewCommand(mock)

	delay, err := cmd.Flags().GetDuration("delay")
	require.NoError(t, err)
	assert.Equal(t, mock.Settings().BackfillDelay, delay)

	every, err := cmd.Flags().GetInt("checkpoint-every")
	require.NoError(t, err)
	assert.Equal(t, mock.Settings().CheckpointEvery, every)
}

func TestPrintSummaryOrdersVersionsNumerically(t *testing.T) {
	mock, _ := setup(t)
	s := &pkgbackfill.Summary{
		Selected: 3,
		Updated:  3,
		Resolved: map[string]string{"0.10.0": "inferred", "0.9.0": "inferred", "0.45.2": "lookup"},
	}

	var out bytes.Buffer
	require.NoError(t, printSummary(&out, mock, releases.PlatformLinuxArm64, s))

	text := out.String()
	first := strings.Index(text, "0.9.0")
	second := strings.Index(text, "0.10.0")
	third := strings.Index(text, "0.45.2")
	require.True(t, first >= 0 && second >= 0 && third >= 0)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}
