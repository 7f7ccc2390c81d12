package config

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	t.Run("json output carries app and level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggerConfig{Level: "DEBUG", Format: "json"}, &buf)

		logger.Debug().Str("order_id", "abc").Msg("hello")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "fruitstore", entry["app"])
		assert.Equal(t, "debug", entry["level"])
		assert.Equal(t, "abc", entry["order_id"])
		assert.Contains(t, entry, "time")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggerConfig{Level: "chatty"}, &buf)

		logger.Debug().Msg("dropped")
		assert.Zero(t, buf.Len())

		logger.Info().Msg("kept")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("console format is not json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggerConfig{Level: "info", Format: "console"}, &buf)

		logger.Info().Msg("readable")
		assert.Contains(t, buf.String(), "readable")
		assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	})
}
