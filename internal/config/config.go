package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dpup/scenario-geometry/server/internal/lib/maneuver"
	"github.com/dpup/scenario-geometry/server/internal/lib/routing"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto config keys. ROADGEO__ROUTING__HOP_RESOLUTION sets routing.hop_resolution.
const EnvPrefix = "ROADGEO__"

// Config represents the complete engine configuration
type Config struct {
	Network  NetworkConfig    `koanf:"network"`
	Maneuver maneuver.Options `koanf:"maneuver"`
	Routing  RoutingConfig    `koanf:"routing"`
	Cache    CacheConfig      `koanf:"cache"`
	Logging  LoggingConfig    `koanf:"logging"`
}

// NetworkConfig points at the lane network served by the in-memory world
type NetworkConfig struct {
	Path string `koanf:"path"`
}

// RoutingConfig holds route annotation and matching settings
type RoutingConfig struct {
	routing.Options `koanf:",squash"`

	OnRouteThreshold float64 `koanf:"on_route_threshold"`
	NearbyThreshold  float64 `koanf:"nearby_threshold"`
}

// CacheConfig holds route cache settings. An empty ValkeyAddr selects the
// in-memory cache.
type CacheConfig struct {
	TTL             time.Duration `koanf:"ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	ValkeyAddr      string        `koanf:"valkey_addr"`
	KeyPrefix       string        `koanf:"key_prefix"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	routingOpts := routing.DefaultOptions()
	return &Config{
		Maneuver: maneuver.DefaultOptions(),
		Routing: RoutingConfig{
			Options:          routingOpts,
			OnRouteThreshold: 5,
			NearbyThreshold:  50,
		},
		Cache: CacheConfig{
			TTL:             10 * time.Minute,
			CleanupInterval: time.Minute,
			KeyPrefix:       "roadgeo",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// defaults flattens DefaultConfig into the key space koanf unmarshals from.
func defaults() map[string]interface{} {
	d := DefaultConfig()
	return map[string]interface{}{
		"network.path":                      d.Network.Path,
		"maneuver.sampling_radius":          d.Maneuver.SamplingRadius,
		"maneuver.junction_probe_distance":  d.Maneuver.JunctionProbeDistance,
		"maneuver.exit_angle_threshold_deg": d.Maneuver.ExitAngleThreshold,
		"maneuver.distance_step":            d.Maneuver.DistanceStep,
		"maneuver.crossing_step":            d.Maneuver.CrossingStep,
		"maneuver.max_steps":                d.Maneuver.MaxSteps,
		"routing.hop_resolution":            d.Routing.HopResolution,
		"routing.self_pairing":              d.Routing.SelfPairing,
		"routing.on_route_threshold":        d.Routing.OnRouteThreshold,
		"routing.nearby_threshold":          d.Routing.NearbyThreshold,
		"cache.ttl":                         d.Cache.TTL.String(),
		"cache.cleanup_interval":            d.Cache.CleanupInterval.String(),
		"cache.valkey_addr":                 d.Cache.ValkeyAddr,
		"cache.key_prefix":                  d.Cache.KeyPrefix,
		"logging.level":                     d.Logging.Level,
		"logging.format":                    d.Logging.Format,
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// ROADGEO__ prefixed environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envMapper := func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envMapper), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that configuration values are present and sane.
func (c *Config) Validate() error {
	var errs []string

	m := c.Maneuver
	if m.SamplingRadius <= 0 {
		errs = append(errs, "maneuver.sampling_radius must be positive")
	}
	if m.JunctionProbeDistance <= 0 {
		errs = append(errs, "maneuver.junction_probe_distance must be positive")
	}
	if m.ExitAngleThreshold < 0 {
		errs = append(errs, "maneuver.exit_angle_threshold must not be negative")
	}
	if m.DistanceStep <= 0 {
		errs = append(errs, "maneuver.distance_step must be positive")
	}
	if m.CrossingStep <= 0 {
		errs = append(errs, "maneuver.crossing_step must be positive")
	}
	if m.MaxSteps < 0 {
		errs = append(errs, "maneuver.max_steps must not be negative")
	}

	if c.Routing.HopResolution <= 0 {
		errs = append(errs, "routing.hop_resolution must be positive")
	}
	if c.Routing.OnRouteThreshold <= 0 {
		errs = append(errs, "routing.on_route_threshold must be positive")
	}
	if c.Routing.NearbyThreshold < c.Routing.OnRouteThreshold {
		errs = append(errs, fmt.Sprintf("routing.nearby_threshold (%g) must be >= on_route_threshold (%g)",
			c.Routing.NearbyThreshold, c.Routing.OnRouteThreshold))
	}

	if c.Cache.TTL <= 0 {
		errs = append(errs, "cache.ttl must be positive")
	}
	if c.Cache.CleanupInterval <= 0 {
		errs = append(errs, "cache.cleanup_interval must be positive")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
