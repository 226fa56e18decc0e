package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/beetlebugorg/topomap/pkg/topomap"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Params() != topomap.DefaultParams() {
		t.Errorf("Expected default params, got %+v", cfg.Params())
	}
	if cfg.Projection().TileSize != topomap.DefaultTileSize {
		t.Errorf("Expected tile size %d, got %v", topomap.DefaultTileSize, cfg.Projection().TileSize)
	}
	if cfg.LoadOptions().AxisOrder != topomap.LatLng {
		t.Error("Expected LatLng axis order by default")
	}

	opts, err := cfg.BuildOptions(nil)
	if err != nil {
		t.Fatalf("BuildOptions failed: %v", err)
	}
	want := topomap.EssentialLayers()
	if len(opts.Layers) != len(want) {
		t.Fatalf("Expected layers %v, got %v", want, opts.Layers)
	}
	for i := range want {
		if opts.Layers[i] != want[i] {
			t.Errorf("Expected layer %v at %d, got %v", want[i], i, opts.Layers[i])
		}
	}
	if opts.Workers <= 0 {
		t.Errorf("Expected positive worker count, got %d", opts.Workers)
	}

	primary, err := cfg.PrimaryLayer()
	if err != nil || primary != topomap.PrimarySubdivisionArea {
		t.Errorf("Expected primary layer PrimarySubdivisionArea, got %v, %v", primary, err)
	}
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	v.Set("engine.simplify_tolerance", 1.5)
	v.Set("engine.axis_order", "lnglat")
	v.Set("build.workers", 3)
	v.Set("build.layers", []string{"TsunamiForecastArea,8"})
	v.Set("logging.format", "json")

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Params().SimplifyTolerance != 1.5 {
		t.Errorf("Expected tolerance 1.5, got %v", cfg.Params().SimplifyTolerance)
	}
	if cfg.LoadOptions().AxisOrder != topomap.LngLat {
		t.Error("Expected LngLat axis order")
	}

	opts, err := cfg.BuildOptions(nil)
	if err != nil {
		t.Fatalf("BuildOptions failed: %v", err)
	}
	if opts.Workers != 3 {
		t.Errorf("Expected 3 workers, got %d", opts.Workers)
	}
	if len(opts.Layers) != 2 || opts.Layers[0] != topomap.TsunamiForecastArea || opts.Layers[1] != topomap.NationalAndRegionForecastArea {
		t.Errorf("Unexpected layers %v", opts.Layers)
	}
}

func TestAllLayers(t *testing.T) {
	v := viper.New()
	v.Set("build.all_layers", true)

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	opts, err := cfg.BuildOptions(nil)
	if err != nil {
		t.Fatalf("BuildOptions failed: %v", err)
	}
	if opts.Layers != nil {
		t.Errorf("Expected no layer filter, got %v", opts.Layers)
	}
}

func TestEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "TOPOMAP_LOGGING_LEVEL=debug\nTOPOMAP_VIEW_MAX_ZOOM=14\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TOPOMAP_VIEW_MAX_ZOOM", "10")
	// godotenv sets variables directly; restore them when the test ends.
	t.Setenv("TOPOMAP_LOGGING_LEVEL", "")
	os.Unsetenv("TOPOMAP_LOGGING_LEVEL")

	v := viper.New()
	BindEnv(v, envFile, filepath.Join(dir, "missing.env"))

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected level from .env file, got %q", cfg.Logging.Level)
	}
	if cfg.View.MaxZoom != 10 {
		t.Errorf("Expected process environment to win, got %v", cfg.View.MaxZoom)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"negative tolerance", "engine.closed_tolerance", -1},
		{"zero tile size", "engine.tile_size", 0},
		{"bad axis order", "engine.axis_order", "xy"},
		{"negative workers", "build.workers", -2},
		{"unknown layer", "build.layers", []string{"Ocean"}},
		{"inverted zoom", "view.max_zoom", 2},
		{"unknown primary", "view.primary_layer", "Nowhere"},
		{"bad level", "logging.level", "loud"},
		{"bad format", "logging.format", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			if _, err := LoadFrom(v); err == nil {
				t.Errorf("Expected validation error for %s=%v", tt.key, tt.val)
			}
		})
	}
}
