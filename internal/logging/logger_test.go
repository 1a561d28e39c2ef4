package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger("chunk", &buf)

	logger.Debug("скрытое сообщение")
	logger.Warn("chunk (%d, %d) rejected", 1, -2)

	out := buf.String()
	assert.NotContains(t, out, "скрытое сообщение")
	assert.Contains(t, out, "[WARN] [chunk] chunk (1, -2) rejected")

	logger.SetLevels(TRACE, ERROR+1)
	logger.Trace("теперь видно")
	assert.Contains(t, buf.String(), "[TRACE] [chunk] теперь видно")
}

func TestNilLoggerIsSilent(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() { logger.Info("ничего") })
}

func TestLoggerManagerCreatesFiles(t *testing.T) {
	dir := t.TempDir()
	lm := NewLoggerManager(dir)
	lm.SetConsoleLevel(ERROR + 1)

	logger, err := lm.GetLogger(ComponentWorld)
	require.NoError(t, err)
	logger.Debug("activated chunk")

	again, err := lm.GetLogger(ComponentWorld)
	require.NoError(t, err)
	assert.Same(t, logger, again, "повторный запрос должен вернуть тот же логгер")

	_, err = lm.GetLogger(ComponentAPI)
	require.NoError(t, err)
	assert.Equal(t, []string{ComponentAPI, ComponentWorld}, lm.ListComponents())

	require.NoError(t, lm.SetLogLevel(ComponentWorld, INFO, TRACE))
	assert.Error(t, lm.SetLogLevel("missing", INFO, INFO))

	require.NoError(t, lm.CloseAll())

	matches, err := filepath.Glob(filepath.Join(dir, "world_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG] [world] activated chunk")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, INFO, ParseLevel("что-то"))
}
