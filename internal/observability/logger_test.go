package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids-flock/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// syncBuffer is a goroutine-safe bytes.Buffer usable as a zap sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Sync() error { return nil }

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

func TestInitialize(t *testing.T) {
	t.Cleanup(ResetForTest)

	t.Run("console logger colours the level", func(t *testing.T) {
		ResetForTest()
		buf := &syncBuffer{}

		Initialize(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "boids",
		}, buf)
		GetLogger().Info("flock created")
		Sync()

		out := buf.String()
		assert.Contains(t, out, "INFO")
		assert.Contains(t, out, "flock created")
		assert.Contains(t, out, levelColors[zapcore.InfoLevel]+"INFO"+ansiReset)
		assert.Contains(t, out, "boids.")
	})

	t.Run("json logger", func(t *testing.T) {
		ResetForTest()
		buf := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "json-test"}, buf)
		GetLogger().Warn("tick rejected", zap.Float64("dt", -1))
		Sync()

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "json-test", entry["logger"])
		assert.Equal(t, "tick rejected", entry["msg"])
		assert.Equal(t, -1.0, entry["dt"])
	})

	t.Run("level filters entries", func(t *testing.T) {
		ResetForTest()
		buf := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "warn", Format: "json"}, buf)
		GetLogger().Info("hidden")
		Sync()

		assert.Empty(t, buf.String())
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		ResetForTest()
		buf := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "chatty", Format: "json"}, buf)
		logger := GetLogger()

		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("log file", func(t *testing.T) {
		ResetForTest()
		path := filepath.Join(t.TempDir(), "boids.log")

		Initialize(config.LoggerConfig{Level: "debug", Format: "console", LogFile: path, MaxSize: 1}, &syncBuffer{})
		GetLogger().Error("written to the file")
		Sync()

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "written to the file")
	})

	t.Run("only the first call counts", func(t *testing.T) {
		ResetForTest()

		Initialize(config.LoggerConfig{Level: "info", ServiceName: "first"}, &syncBuffer{})
		first := GetLogger()
		Initialize(config.LoggerConfig{Level: "debug", ServiceName: "second"}, &syncBuffer{})

		assert.Same(t, first, GetLogger())
		assert.False(t, GetLogger().Core().Enabled(zapcore.DebugLevel))
	})
}

func TestGetLogger_Fallback(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()

	require.NotNil(t, logger)
	assert.Nil(t, globalLogger.Load())
}
