package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("error"))

	// Desconocido o vacío caen en info.
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("trace"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
}

func TestNew_RespetaNivel(t *testing.T) {
	log := New(Config{Env: "production", Level: "error"})
	require.NotNil(t, log)
	assert.Equal(t, zerolog.ErrorLevel, log.zl.GetLevel())

	log = New(Config{Env: "development", Level: "debug"})
	assert.Equal(t, zerolog.DebugLevel, log.zl.GetLevel())
}
