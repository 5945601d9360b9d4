package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billgen/internal/config"
)

func TestNextNumberWithMemoryStore(t *testing.T) {
	previous := config.AppEnv
	t.Cleanup(func() { config.AppEnv = previous })
	config.AppEnv = config.Config{StoreDriver: config.StoreDriverMemory, JWTSecret: "x", Timezone: "UTC"}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"next-number"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	got := strings.TrimSpace(out.String())
	assert.Regexp(t, `^INV-\d{4}-\d{2}-001$`, got)
}

func TestPromoteUnknownUserFails(t *testing.T) {
	previous := config.AppEnv
	t.Cleanup(func() { config.AppEnv = previous })
	config.AppEnv = config.Config{StoreDriver: config.StoreDriverMemory, JWTSecret: "x"}

	rootCmd.SetArgs([]string{"promote", "ghost@example.com"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil); rootCmd.SetErr(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "User not found")
}
