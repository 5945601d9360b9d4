package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRejectsUnknownLevel(t *testing.T) {
	err := Setup(LogConfig{Level: "loud", Format: "json", Output: "stdout"})
	assert.Error(t, err)
}

func TestSetupWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billgen.log")
	require.NoError(t, Setup(LogConfig{Level: "debug", Format: "json", Output: path}))
	t.Cleanup(func() { _ = Setup(DefaultConfig()) })

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	log := WithComponent("test")
	log.Info().Str("bill", "INV-2026-10-001").Msg("written")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, string(data), `"bill":"INV-2026-10-001"`)
}
