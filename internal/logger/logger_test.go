package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blackboxscan/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewProductionDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := logger.New(logger.Config{OutputPath: path})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("visible")
	require.NoError(t, log.Sync())

	out := strings.TrimSpace(readLog(t, path))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "blackboxscan", entry["service"])
	assert.Contains(t, entry, "timestamp")
	assert.NotContains(t, entry, "caller")
}

func TestNewDevelopmentDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := logger.New(logger.Config{OutputPath: path, Development: true})
	require.NoError(t, err)

	log.Debug("debug line")
	require.NoError(t, log.Sync())

	out := readLog(t, path)
	assert.Contains(t, out, "debug line")
	assert.Contains(t, out, "logger_test.go")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"), "development output should be console encoded")
}

func TestNewExplicitSettingsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := logger.New(logger.Config{OutputPath: path, Development: true, Level: "warn", Encoding: "json"})
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept")
	require.NoError(t, log.Sync())

	out := readLog(t, path)
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
}

func TestNewInvalidLevelFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := logger.New(logger.Config{OutputPath: path, Level: "loud"})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("shown")
	require.NoError(t, log.Sync())

	out := readLog(t, path)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}
