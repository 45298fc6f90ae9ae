package validate

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
	"github.com/agentstation/releasemap/pkg/errors"
	"github.com/agentstation/releasemap/pkg/ledger"
	"github.com/agentstation/releasemap/pkg/releases"
)

func mockFor(ledgerPath string) *appcontext.Mock {
	return &appcontext.Mock{
		TrackerFunc: func() (releasemap.Tracker, error) {
			return releasemap.New(releasemap.WithLedgerPath(ledgerPath))
		},
		SettingsFunc: func() appcontext.Settings {
			return appcontext.Settings{LedgerPath: ledgerPath}
		},
	}
}

func run(t *testing.T, mock *appcontext.Mock) (string, error) {
	t.Helper()
	cmd := NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name     string
		versions []releases.VersionEntry
		wantErr  bool
		want     string
	}{
		{
			name: "valid",
			versions: []releases.VersionEntry{
				{Version: "0.46.9", Date: "2025-02-20", Platforms: map[releases.Platform]string{}},
				{Version: "0.45.0", Date: "2025-01-23", Platforms: map[releases.Platform]string{}},
			},
			want: "is valid",
		},
		{
			name: "out of order",
			versions: []releases.VersionEntry{
				{Version: "0.45.0", Date: "2025-01-23", Platforms: map[releases.Platform]string{}},
				{Version: "0.46.9", Date: "2025-02-20", Platforms: map[releases.Platform]string{}},
			},
			wantErr: true,
			want:    "out of order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "version-history.json")
			require.NoError(t, ledger.NewStore(path).Save(context.Background(), &releases.Ledger{Versions: tt.versions}))

			out, err := run(t, mockFor(path))
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestValidateCommandMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version-history.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := run(t, mockFor(path))
	assert.Error(t, err)
}
