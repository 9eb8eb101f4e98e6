package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsSane(t *testing.T) {
	cfg := Default()
	require.Equal(t, "0.0.0.0", cfg.Host)
	require.Equal(t, 27999, cfg.Port)
	require.Equal(t, 27888, cfg.ControlPort)
	require.Equal(t, 4, cfg.MaxPlayers)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	const body = `
host: "127.0.0.1"
port: 12345
max_players: 2
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", cfg.Host)
	require.Equal(t, 12345, cfg.Port)
	require.Equal(t, 2, cfg.MaxPlayers)
	require.Equal(t, "debug", cfg.LogLevel)
	// Untouched fields keep their defaults.
	require.Equal(t, 27888, cfg.ControlPort)
}

func TestIdleTimeoutFallsBackOnGarbage(t *testing.T) {
	cfg := Default()
	cfg.SessionIdleTimeout = "not-a-duration"
	require.Equal(t, cfg.IdleTimeout().String(), "2m0s")
}
