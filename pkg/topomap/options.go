package topomap

import (
	"runtime"

	"go.uber.org/zap"
)

// Params holds the geometry constants of the engine.
type Params struct {
	// ClosedTolerance is the largest difference, in degrees on both axes,
	// between the first and last point of an arc that still counts as closed.
	ClosedTolerance float64

	// SimplifyTolerance is the Douglas-Peucker tolerance in pixels.
	SimplifyTolerance float64

	// OpenSliverPoints is the largest simplified point count of an open line
	// that is dropped as nothing to draw.
	OpenSliverPoints int

	// ClosedSliverPoints is the same limit for closed lines.
	ClosedSliverPoints int
}

// DefaultParams returns the constants used by the published map data.
func DefaultParams() Params {
	return Params{
		ClosedTolerance:    0.001,
		SimplifyTolerance:  2,
		OpenSliverPoints:   1,
		ClosedSliverPoints: 4,
	}
}

// BuildOptions controls feature graph construction across layers.
type BuildOptions struct {
	// Workers is the number of layers built concurrently.
	// If 0, defaults to runtime.NumCPU().
	Workers int

	// Layers restricts the build to the given layers. Nil builds every layer
	// present in the input.
	Layers []LayerID

	// Params are the geometry constants handed to every feature.
	Params Params

	// Logger receives per-layer build logs. Nil disables logging.
	Logger *zap.Logger

	// Progress is an optional callback called after each layer is built.
	// Parameters: (built, total).
	Progress func(built, total int)

	// LinearScan disables the R-tree; queries scan every feature.
	LinearScan bool
}

// DefaultBuildOptions returns build options with sensible defaults.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		Workers: runtime.NumCPU(),
		Layers:  nil,
		Params:  DefaultParams(),
	}
}

// EssentialLayers returns the layers needed to draw every zoom bucket
// chosen by SelectLayer with the default primary layer. The municipal
// layers are much larger and left out.
func EssentialLayers() []LayerID {
	return []LayerID{
		WorldWithoutJapan,
		NationalAndRegionForecastArea,
		PrefectureForecastArea,
		PrimarySubdivisionArea,
	}
}
