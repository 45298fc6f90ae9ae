package logging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestParseTimeFormat(t *testing.T) {
	assert.Equal(t, time.Kitchen, parseTimeFormat(""))
	assert.Equal(t, time.RFC3339, parseTimeFormat("rfc3339"))
	assert.Equal(t, "", parseTimeFormat("unix"))
	assert.Equal(t, "2006-01-02 15:04", parseTimeFormat("2006-01-02 15:04"))
	assert.Equal(t, time.Kitchen, parseTimeFormat("nonsense"))
}

func TestGetWriter(t *testing.T) {
	t.Run("discard", func(t *testing.T) {
		w := getWriter(&Config{Output: "discard", Format: "json"})
		assert.Equal(t, io.Discard, w)
	})

	t.Run("stdout json", func(t *testing.T) {
		w := getWriter(&Config{Output: "stdout", Format: "json"})
		assert.Equal(t, os.Stdout, w)
	})

	t.Run("console wraps output", func(t *testing.T) {
		w := getWriter(&Config{Output: "stdout", Format: "console"})
		_, ok := w.(zerolog.ConsoleWriter)
		assert.True(t, ok)
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.log")
		w := getWriter(&Config{Output: path, Format: "json"})
		f, ok := w.(*os.File)
		require.True(t, ok)
		t.Cleanup(func() { _ = f.Close() })

		_, err := os.Stat(path)
		assert.NoError(t, err)
	})
}

func TestNewLoggerFromConfig(t *testing.T) {
	oldLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(oldLevel) })

	logger := NewLoggerFromConfig(&Config{Level: "warn", Output: "discard", Format: "json"})
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger = NewLoggerFromConfig(nil)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestContextLogger(t *testing.T) {
	t.Run("falls back to default", func(t *testing.T) {
		assert.Equal(t, Default(), FromContext(context.Background()))
		//nolint:staticcheck // nil context is handled explicitly
		assert.Equal(t, Default(), FromContext(nil))
	})

	t.Run("stores logger", func(t *testing.T) {
		tl := NewTestLogger(t)
		ctx := WithLogger(context.Background(), tl.Logger)
		Ctx(ctx).Info().Msg("hello")
		tl.AssertContains(t, `"message":"hello"`)
	})

	t.Run("domain fields", func(t *testing.T) {
		tl := NewTestLogger(t)
		ctx := WithLogger(context.Background(), tl.Logger)
		ctx = WithVersion(ctx, "0.45.0")
		ctx = WithPlatform(ctx, "linux-arm64")
		ctx = WithOperation(ctx, "backfill")

		FromContext(ctx).Info().Msg("resolved")

		assert.True(t, tl.ContainsAll(
			`"version":"0.45.0"`,
			`"platform":"linux-arm64"`,
			`"operation":"backfill"`,
		))
	})

	t.Run("typed fields", func(t *testing.T) {
		tl := NewTestLogger(t)
		ctx := WithLogger(context.Background(), tl.Logger)
		ctx = WithFields(ctx, map[string]any{
			"entries": 3,
			"dry_run": true,
			"error":   errors.New("boom"),
			"cause":   errors.New("cause text"),
		})

		FromContext(ctx).Info().Msg("fields")

		assert.True(t, tl.ContainsAll(`"entries":3`, `"dry_run":true`, `"error":"boom"`, `"cause":"cause text"`))
		assert.Equal(t, 1, tl.Count())
	})
}

func TestCaptureLoggingForTest(t *testing.T) {
	tl := CaptureLoggingForTest(t)
	Info().Str("version", "0.46.10").Msg("recorded")
	Warn().Msg("careful")

	assert.Equal(t, 2, tl.Count())
	tl.AssertContains(t, "recorded")
	assert.Len(t, tl.Lines(), 2)
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)
	logger.Error().Msg("written")
	assert.Contains(t, buf.String(), "written")
}
