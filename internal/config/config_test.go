package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roadgeo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 1.0, cfg.Maneuver.SamplingRadius)
	assert.Equal(t, 20.0, cfg.Maneuver.JunctionProbeDistance)
	assert.Equal(t, 2.0, cfg.Routing.HopResolution)
	assert.False(t, cfg.Routing.SelfPairing)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
network:
  path: testdata/fourway.yaml
maneuver:
  exit_angle_threshold_deg: 0.25
  max_steps: 500
routing:
  hop_resolution: 0.5
  self_pairing: true
cache:
  ttl: 30s
  valkey_addr: localhost:6379
logging:
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testdata/fourway.yaml", cfg.Network.Path)
	assert.Equal(t, 0.25, cfg.Maneuver.ExitAngleThreshold)
	assert.Equal(t, 500, cfg.Maneuver.MaxSteps)
	assert.Equal(t, 0.5, cfg.Routing.HopResolution)
	assert.True(t, cfg.Routing.SelfPairing)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "localhost:6379", cfg.Cache.ValkeyAddr)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Untouched keys keep their defaults
	assert.Equal(t, 20.0, cfg.Maneuver.JunctionProbeDistance)
	assert.Equal(t, time.Minute, cfg.Cache.CleanupInterval)
}

func TestLoadEnvironmentWins(t *testing.T) {
	path := writeConfig(t, `
routing:
  hop_resolution: 0.5
`)
	t.Setenv("ROADGEO__ROUTING__HOP_RESOLUTION", "4")
	t.Setenv("ROADGEO__LOGGING__LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4.0, cfg.Routing.HopResolution)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
maneuver:
  sampling_radius: 0
routing:
  nearby_threshold: 1
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maneuver.sampling_radius must be positive")
	assert.Contains(t, err.Error(), "routing.nearby_threshold")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"default is valid", func(*Config) {}, ""},
		{"negative max steps", func(c *Config) { c.Maneuver.MaxSteps = -1 }, "maneuver.max_steps"},
		{"zero crossing step", func(c *Config) { c.Maneuver.CrossingStep = 0 }, "maneuver.crossing_step"},
		{"zero hop resolution", func(c *Config) { c.Routing.HopResolution = 0 }, "routing.hop_resolution"},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, "cache.ttl"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
