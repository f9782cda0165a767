package appconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ws", cfg.Transport)
	assert.Equal(t, 20, cfg.TurnDurationSec)
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gateway_url: ws://game.example/ws\nturn_duration_sec: 45\n"), 0o644))

	t.Setenv("NAMEIT_TURN_DURATION_SEC", "30")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://game.example/ws", cfg.GatewayURL)
	assert.Equal(t, 30, cfg.TurnDurationSec, "env wins over file")
}

func TestLoad_RejectsNonPositiveTurnDuration(t *testing.T) {
	t.Setenv("NAMEIT_TURN_DURATION_SEC", "0")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
