package topomap

import (
	"math"

	"github.com/paulmach/orb"
)

// Zoom limits of an interactive view.
const (
	DefaultMinZoom = 4
	DefaultMaxZoom = 12

	// MaxCenterLatitude bounds the latitude of a view center.
	MaxCenterLatitude = 80
)

// ZoomBucket splits a continuous zoom into the integer zoom used as cache
// key and the scale applied to geometry cached at that zoom.
//
//	base = ceil(z), scale = 2^(z - base)
//
// scale is in (0.5, 1] for any z.
func ZoomBucket(z float64) (base int, scale float64) {
	b := math.Ceil(z)
	return int(b), math.Exp2(z - b)
}

// ViewTransform maps base-zoom pixel geometry to screen coordinates.
type ViewTransform struct {
	// LeftTop is the pixel position of the screen origin at the base zoom.
	LeftTop orb.Point
	Scale   float64
}

// Apply transforms one base-zoom pixel.
func (t ViewTransform) Apply(p orb.Point) orb.Point {
	return orb.Point{
		(p[0] - t.LeftTop[0]) * t.Scale,
		(p[1] - t.LeftTop[1]) * t.Scale,
	}
}

// ApplyAll returns a transformed copy of g.
func (t ViewTransform) ApplyAll(g orb.MultiLineString) orb.MultiLineString {
	if g == nil {
		return nil
	}
	out := make(orb.MultiLineString, len(g))
	for i, ls := range g {
		line := make(orb.LineString, len(ls))
		for j, p := range ls {
			line[j] = t.Apply(p)
		}
		out[i] = line
	}
	return out
}

// ViewState is the caller-owned state of an interactive view.
type ViewState struct {
	Center orb.Point // (lon, lat)
	Zoom   float64
	Width  float64 // screen pixels
	Height float64
}

// Normalize clamps the zoom to [minZoom, maxZoom] and the center latitude to
// ±MaxCenterLatitude, and wraps the center longitude into [-180, 180].
func (v ViewState) Normalize(minZoom, maxZoom float64) ViewState {
	v.Zoom = math.Max(minZoom, math.Min(maxZoom, v.Zoom))
	v.Center[1] = math.Max(-MaxCenterLatitude, math.Min(MaxCenterLatitude, v.Center[1]))
	if v.Center[0] < -180 {
		v.Center[0] += 360
	}
	if v.Center[0] > 180 {
		v.Center[0] -= 360
	}
	return v
}

// Viewport returns the geographic rectangle covered by the view and the
// geographic location of its top-left corner.
func (v ViewState) Viewport(proj Projection) (bounds orb.Bound, leftTop orb.Point) {
	center := proj.ToPixel(v.Center, v.Zoom)
	lt := orb.Point{center[0] - v.Width/2, center[1] - v.Height/2}
	rb := orb.Point{center[0] + v.Width/2, center[1] + v.Height/2}

	leftTop = proj.ToGeo(lt, v.Zoom)
	rightBottom := proj.ToGeo(rb, v.Zoom)
	bounds = orb.Bound{
		Min: orb.Point{math.Min(leftTop[0], rightBottom[0]), math.Min(leftTop[1], rightBottom[1])},
		Max: orb.Point{math.Max(leftTop[0], rightBottom[0]), math.Max(leftTop[1], rightBottom[1])},
	}
	return bounds, leftTop
}

// Transform returns the zoom bucket of the view and the transform from
// base-zoom pixels to screen pixels.
func (v ViewState) Transform(proj Projection) (base int, t ViewTransform) {
	base, scale := ZoomBucket(v.Zoom)
	_, leftTop := v.Viewport(proj)
	return base, ViewTransform{
		LeftTop: proj.ToPixel(leftTop, float64(base)),
		Scale:   scale,
	}
}

// SelectLayer returns the layer drawn at a base zoom: the national layer up
// to 5, the prefecture layer up to 7, primary subdivisions up to 10 and
// primary beyond.
func SelectLayer(baseZoom int, primary LayerID) LayerID {
	switch {
	case baseZoom <= 5:
		return NationalAndRegionForecastArea
	case baseZoom <= 7:
		return PrefectureForecastArea
	case baseZoom <= 10:
		return PrimarySubdivisionArea
	default:
		return primary
	}
}
