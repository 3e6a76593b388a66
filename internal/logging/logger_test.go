package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitializeWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "glassngold.log")

	_, err := Initialize(Config{Level: "debug", Format: "json", File: logPath})
	require.NoError(t, err)
	t.Cleanup(func() { SetBase(nil); SetCategories(nil) })

	Get(CategoryAppraisal).Info("appraisal complete", zap.Int("amenities", 4))
	Sync()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"logger":"appraisal"`)
	assert.Contains(t, out, "appraisal complete")
	assert.Contains(t, out, `"amenities":4`)
}

func TestNewRejectsBadSettings(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	_, err = New(Config{Format: "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestCategoryFilter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetBase(zap.New(core))
	SetCategories(map[string]bool{"watch": false})
	t.Cleanup(func() { SetBase(nil); SetCategories(nil) })

	assert.False(t, IsCategoryEnabled(CategoryWatch))
	assert.True(t, IsCategoryEnabled(CategoryPipeline), "unlisted categories default to enabled")

	Get(CategoryWatch).Info("muted")
	Get(CategoryPipeline).Info("heard")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "heard", entries[0].Message)
	assert.Equal(t, "pipeline", entries[0].LoggerName)
}

func TestGetCachesPerCategory(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	SetBase(zap.New(core))
	t.Cleanup(func() { SetBase(nil) })

	a := Get(CategoryHTTP)
	b := Get(CategoryHTTP)
	assert.Same(t, a, b)
}

func TestConsoleFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	l, err := New(Config{Level: "info", Format: "console", File: logPath})
	require.NoError(t, err)

	l.Named("boot").Info("hello habibi")
	_ = l.Sync()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "hello habibi"))
	assert.False(t, strings.HasPrefix(strings.TrimSpace(string(data)), "{"), "console output is not JSON")
}
