// Package config loads topomap settings from flags, environment, .env files
// and an optional YAML file through viper.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/beetlebugorg/topomap/pkg/topomap"
)

// EnvPrefix is the prefix of every environment variable read by viper.
const EnvPrefix = "TOPOMAP"

// Config represents the complete application configuration
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Build   BuildConfig   `mapstructure:"build"`
	View    ViewConfig    `mapstructure:"view"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// EngineConfig contains the geometry constants and projection settings
type EngineConfig struct {
	ClosedTolerance    float64 `mapstructure:"closed_tolerance"`
	SimplifyTolerance  float64 `mapstructure:"simplify_tolerance"`
	OpenSliverPoints   int     `mapstructure:"open_sliver_points"`
	ClosedSliverPoints int     `mapstructure:"closed_sliver_points"`
	TileSize           float64 `mapstructure:"tile_size"`
	AxisOrder          string  `mapstructure:"axis_order"`
}

// BuildConfig contains feature graph construction settings
type BuildConfig struct {
	Workers    int      `mapstructure:"workers"`
	Layers     []string `mapstructure:"layers"`
	AllLayers  bool     `mapstructure:"all_layers"`
	LinearScan bool     `mapstructure:"linear_scan"`
}

// ViewConfig contains interactive view limits
type ViewConfig struct {
	MinZoom      float64 `mapstructure:"min_zoom"`
	MaxZoom      float64 `mapstructure:"max_zoom"`
	PrimaryLayer string  `mapstructure:"primary_layer"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig contains the Prometheus endpoint configuration
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// Load loads configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads configuration from v, filling in defaults.
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// BindEnv loads .env files, when present, and makes v read TOPOMAP_*
// variables. Missing files are ignored; values already set in the process
// environment win over the files.
func BindEnv(v *viper.Viper, envFiles ...string) {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	params := topomap.DefaultParams()

	// Engine defaults
	v.SetDefault("engine.closed_tolerance", params.ClosedTolerance)
	v.SetDefault("engine.simplify_tolerance", params.SimplifyTolerance)
	v.SetDefault("engine.open_sliver_points", params.OpenSliverPoints)
	v.SetDefault("engine.closed_sliver_points", params.ClosedSliverPoints)
	v.SetDefault("engine.tile_size", topomap.DefaultTileSize)
	v.SetDefault("engine.axis_order", "latlng")

	// Build defaults
	var essential []string
	for _, id := range topomap.EssentialLayers() {
		essential = append(essential, id.String())
	}
	v.SetDefault("build.workers", 0)
	v.SetDefault("build.layers", essential)
	v.SetDefault("build.all_layers", false)
	v.SetDefault("build.linear_scan", false)

	// View defaults
	v.SetDefault("view.min_zoom", topomap.DefaultMinZoom)
	v.SetDefault("view.max_zoom", topomap.DefaultMaxZoom)
	v.SetDefault("view.primary_layer", topomap.PrimarySubdivisionArea.String())

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Metrics defaults
	v.SetDefault("metrics.address", "")
}

// Params converts the engine section to topomap.Params.
func (c *Config) Params() topomap.Params {
	return topomap.Params{
		ClosedTolerance:    c.Engine.ClosedTolerance,
		SimplifyTolerance:  c.Engine.SimplifyTolerance,
		OpenSliverPoints:   c.Engine.OpenSliverPoints,
		ClosedSliverPoints: c.Engine.ClosedSliverPoints,
	}
}

// Projection returns the configured Web Mercator projection.
func (c *Config) Projection() topomap.WebMercator {
	return topomap.WebMercator{TileSize: c.Engine.TileSize}
}

// LoadOptions converts the engine section to topomap.LoadOptions.
func (c *Config) LoadOptions() topomap.LoadOptions {
	opts := topomap.DefaultLoadOptions()
	if strings.EqualFold(c.Engine.AxisOrder, "lnglat") {
		opts.AxisOrder = topomap.LngLat
	}
	return opts
}

// BuildOptions converts the build section to topomap.BuildOptions.
func (c *Config) BuildOptions(log *zap.Logger) (topomap.BuildOptions, error) {
	opts := topomap.DefaultBuildOptions()
	if c.Build.Workers > 0 {
		opts.Workers = c.Build.Workers
	}
	opts.Params = c.Params()
	opts.Logger = log
	opts.LinearScan = c.Build.LinearScan

	if c.Build.AllLayers {
		return opts, nil
	}
	layers, err := parseLayers(c.Build.Layers)
	if err != nil {
		return opts, err
	}
	opts.Layers = layers
	return opts, nil
}

// PrimaryLayer returns the layer drawn beyond zoom 10.
func (c *Config) PrimaryLayer() (topomap.LayerID, error) {
	return topomap.ParseLayerID(c.View.PrimaryLayer)
}

// parseLayers accepts names, numeric keys and comma separated lists, as
// produced by flags and environment variables.
func parseLayers(values []string) ([]topomap.LayerID, error) {
	var out []topomap.LayerID
	for _, v := range values {
		for _, name := range strings.Split(v, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			id, err := topomap.ParseLayerID(name)
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		}
	}
	return out, nil
}
