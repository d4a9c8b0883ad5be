package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/nosecatch/internal/distance"
	"github.com/tomz197/nosecatch/internal/filter"
	"github.com/tomz197/nosecatch/internal/game"
)

func TestLoad_Defaults(t *testing.T) {
	l, err := Load(t.TempDir(), nil)
	require.NoError(t, err)
	cfg := l.Current()

	assert.Equal(t, "2222", cfg.Server.SSHPort)
	assert.Equal(t, game.DefaultFPS, cfg.Server.FPS)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Audio.Enabled)
	assert.InDelta(t, 0.8, cfg.Audio.Volume, 1e-9)

	g := cfg.GameConfig()
	assert.Equal(t, 320.0, g.Width)
	assert.Equal(t, 1200*time.Millisecond, g.SpawnInterval)
	assert.Equal(t, filter.Position, g.Tracking.Position)
	assert.Equal(t, filter.Scale, g.Tracking.Scale)
	assert.Equal(t, distance.DefaultMonitorConfig(), g.Monitor)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	yaml := []byte(`
server:
  ssh_port: "2300"
game:
  lives: 5
  hold_duration: 2s
distance:
  thresholds:
    too_far: 0.2
  debounce: 250ms
`)
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "config.yaml"), yaml, 0o644))
	t.Setenv("NOSECATCH_SERVER_WEB_PORT", "9999")
	t.Setenv("NOSECATCH_DATABASE_ENABLED", "true")

	l, err := Load(root, nil)
	require.NoError(t, err)
	cfg := l.Current()

	assert.Equal(t, "2300", cfg.Server.SSHPort)
	assert.Equal(t, "9999", cfg.Server.WebPort)
	assert.True(t, cfg.Database.Enabled)

	g := cfg.GameConfig()
	assert.Equal(t, 5, g.Lives)
	assert.Equal(t, 2*time.Second, g.HoldDuration)
	assert.Equal(t, 0.2, g.Monitor.Thresholds.TooFar)
	assert.Equal(t, 0.45, g.Monitor.Thresholds.TooClose, "unset keys keep their defaults")
	assert.Equal(t, 250*time.Millisecond, g.Monitor.Debounce)
}

func TestLoad_MalformedFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.yaml"), []byte("server: [\n"), 0o644))

	_, err := Load(root, nil)
	assert.Error(t, err)
}
