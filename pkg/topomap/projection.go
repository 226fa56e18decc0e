package topomap

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Projection maps geographic (lon, lat) coordinates to pixel coordinates at a
// continuous zoom level and back. ToPixel and ToGeo must be inverses of each
// other for every supported zoom.
type Projection interface {
	ToPixel(geo orb.Point, zoom float64) orb.Point
	ToGeo(pixel orb.Point, zoom float64) orb.Point
}

const (
	// DefaultTileSize is the pixel size of one tile at zoom 0.
	DefaultTileSize = 256

	// MaxLatitude is the latitude at which the Web Mercator world is square.
	MaxLatitude = 85.05112878
)

// worldMeters is the width of the spherical Mercator plane.
const worldMeters = 2 * math.Pi * orb.EarthRadius

// WebMercator is the slippy-map projection: the world is a square of
// TileSize * 2^zoom pixels with (0, 0) at the north-west corner.
type WebMercator struct {
	TileSize float64
}

// NewWebMercator returns a Web Mercator projection with 256 pixel tiles.
func NewWebMercator() WebMercator {
	return WebMercator{TileSize: DefaultTileSize}
}

func (w WebMercator) size(zoom float64) float64 {
	ts := w.TileSize
	if ts <= 0 {
		ts = DefaultTileSize
	}
	return ts * math.Exp2(zoom)
}

// ToPixel projects a (lon, lat) point. Latitude is clamped to ±MaxLatitude.
func (w WebMercator) ToPixel(geo orb.Point, zoom float64) orb.Point {
	lat := math.Max(-MaxLatitude, math.Min(MaxLatitude, geo[1]))
	m := project.WGS84.ToMercator(orb.Point{geo[0], lat})

	size := w.size(zoom)
	return orb.Point{
		(m[0]/worldMeters + 0.5) * size,
		(0.5 - m[1]/worldMeters) * size,
	}
}

// ToGeo converts a pixel position back to (lon, lat).
func (w WebMercator) ToGeo(pixel orb.Point, zoom float64) orb.Point {
	size := w.size(zoom)
	m := orb.Point{
		(pixel[0]/size - 0.5) * worldMeters,
		(0.5 - pixel[1]/size) * worldMeters,
	}
	return project.Mercator.ToWGS84(m)
}
