package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"DEBUG", zapcore.DebugLevel},
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"WARNING", zapcore.WarnLevel},
		{"warn", zapcore.WarnLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"CRITICAL", zapcore.DPanicLevel},
		{"", zapcore.InfoLevel},
		{"nonsense", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestParseLevel_CriticalSuppressesErrors(t *testing.T) {
	level := ParseLevel("critical")
	assert.False(t, level.Enabled(zapcore.ErrorLevel))
	assert.True(t, level.Enabled(zapcore.DPanicLevel))
	assert.True(t, ParseLevel("ERROR").Enabled(zapcore.ErrorLevel))
}

func TestNew_WritesRunFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	l, err := New(Options{Level: "DEBUG", Dir: dir})
	require.NoError(t, err)

	l.Named("runner").Infof("processing video %d/%d", 1, 2)
	l.Debugf("debug detail")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	require.NotEmpty(t, l.LogPath())
	assert.Equal(t, dir, filepath.Dir(l.LogPath()))
	assert.True(t, strings.HasSuffix(l.LogPath(), "-viewbot.log"))
	assert.Contains(t, filepath.Base(l.LogPath()), l.RunID()[:8])

	data, err := os.ReadFile(l.LogPath())
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Logger initialized")
	assert.Contains(t, content, "INFO - viewbot.runner - processing video 1/2")
	assert.Contains(t, content, "DEBUG - viewbot - debug detail")
}

func TestNew_LevelFilters(t *testing.T) {
	l, err := New(Options{Level: "ERROR", Dir: t.TempDir()})
	require.NoError(t, err)

	l.Infof("hidden")
	l.Errorf("shown")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.LogPath())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNew_FallsBackWhenDirUnusable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	l, err := New(Options{Dir: filepath.Join(blocker, "logs")})
	require.Error(t, err)
	require.NotNil(t, l)
	assert.Empty(t, l.LogPath())
	assert.NoError(t, l.Close())
}

func TestNamed_SharesRunID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core)

	child := l.Named("egress")
	child.Warnf("No proxies available")

	assert.Equal(t, l.RunID(), child.RunID())
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "viewbot.egress", entries[0].LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "No proxies available", entries[0].Message)
}
