package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterTagsService(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "api", slog.LevelInfo)
	log.Debug("hidden")
	log.Info("request served", "status", 200)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "api", record["service"])
	assert.Equal(t, "request served", record["msg"])
	assert.EqualValues(t, 200, record["status"])
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(t.Context(), slog.LevelError))
}
