package config

import (
	"fmt"
	"strings"
)

// Validate validates the configuration structure and values
func Validate(config *Config) error {
	if err := validateEngine(&config.Engine); err != nil {
		return fmt.Errorf("engine configuration invalid: %w", err)
	}

	if err := validateBuild(&config.Build); err != nil {
		return fmt.Errorf("build configuration invalid: %w", err)
	}

	if err := validateView(config); err != nil {
		return fmt.Errorf("view configuration invalid: %w", err)
	}

	if err := validateLogging(&config.Logging); err != nil {
		return fmt.Errorf("logging configuration invalid: %w", err)
	}

	return nil
}

func validateEngine(config *EngineConfig) error {
	if config.ClosedTolerance < 0 {
		return fmt.Errorf("closed_tolerance must be non-negative")
	}

	if config.SimplifyTolerance < 0 {
		return fmt.Errorf("simplify_tolerance must be non-negative")
	}

	if config.OpenSliverPoints < 0 || config.ClosedSliverPoints < 0 {
		return fmt.Errorf("sliver point counts must be non-negative")
	}

	if config.TileSize <= 0 {
		return fmt.Errorf("tile_size must be positive")
	}

	switch strings.ToLower(config.AxisOrder) {
	case "latlng", "lnglat":
	default:
		return fmt.Errorf("axis_order must be latlng or lnglat, got %q", config.AxisOrder)
	}

	return nil
}

func validateBuild(config *BuildConfig) error {
	if config.Workers < 0 {
		return fmt.Errorf("workers must be non-negative")
	}

	if !config.AllLayers {
		if _, err := parseLayers(config.Layers); err != nil {
			return err
		}
	}

	return nil
}

func validateView(config *Config) error {
	if config.View.MinZoom < 0 {
		return fmt.Errorf("min_zoom must be non-negative")
	}

	if config.View.MaxZoom < config.View.MinZoom {
		return fmt.Errorf("max_zoom %v is below min_zoom %v", config.View.MaxZoom, config.View.MinZoom)
	}

	if _, err := config.PrimaryLayer(); err != nil {
		return fmt.Errorf("primary_layer: %w", err)
	}

	return nil
}

func validateLogging(config *LoggingConfig) error {
	switch strings.ToLower(config.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q", config.Level)
	}

	switch config.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown format %q", config.Format)
	}

	return nil
}
