package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Info("test message", slog.String("key", "value"))
	logger.With(slog.String("component", "lookup")).Error("error message", slog.Int("code", 500))

	require.Equal(t, 2, handler.Count())
	assert.True(t, handler.ContainsMessage("test message"))
	assert.True(t, handler.ContainsAttr("key", "value"))
	assert.True(t, handler.ContainsAttr("component", "lookup"))
	assert.False(t, handler.ContainsMessage("missing"))

	rec, ok := handler.Find("error message")
	require.True(t, ok)
	assert.Equal(t, slog.LevelError, rec.Level)
	assert.Equal(t, int64(500), rec.Attrs["code"])

	assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
	AssertLogContains(t, handler, slog.LevelError, "error message")
}

func TestLoadDictionary(t *testing.T) {
	dict := LoadDictionary(t)
	assert.Equal(t, 3, dict.Len())

	rec, ok := dict.Lookup("pat", "US")
	require.True(t, ok)
	assert.Equal(t, "I", rec.Gender.String())

	path := WriteDictionary(t, t.TempDir())
	assert.FileExists(t, path)
}
