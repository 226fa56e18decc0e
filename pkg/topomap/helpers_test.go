package topomap

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/topomap/internal/quantize"
)

// geoScale quantizes test coordinates to a thousandth of a degree.
var geoScale = quantize.Transform{Scale: [2]float64{0.001, 0.001}}

// arc builds an arc from (lon, lat) points.
func arc(t ArcType, points ...orb.Point) Arc {
	return Arc{Points: quantize.Encode(points, geoScale), Type: t}
}

// unitArc builds an arc whose quantized coordinates equal the given points.
func unitArc(t ArcType, points ...orb.Point) Arc {
	return Arc{
		Points: quantize.Encode(points, quantize.Transform{Scale: [2]float64{1, 1}}),
		Type:   t,
	}
}

func topology(arcs []Arc, polygons ...PolygonDef) *TopologyMap {
	return &TopologyMap{
		Scale:        geoScale.Scale,
		Translate:    geoScale.Translate,
		Arcs:         arcs,
		Polygons:     polygons,
		CenterPoints: map[int32]quantize.Delta{},
		AxisOrder:    LngLat,
	}
}

func unitTopology(arcs []Arc, polygons ...PolygonDef) *TopologyMap {
	m := topology(arcs, polygons...)
	m.Scale = [2]float64{1, 1}
	return m
}

func ring(refs ...int32) []int32 { return refs }

func code(c int32) *int32 { return &c }

// scaledProjection maps a geographic unit to scale*2^zoom pixels with no
// distortion, which keeps simplification arithmetic easy to follow.
type scaledProjection struct {
	scale float64
}

func (p scaledProjection) ToPixel(geo orb.Point, zoom float64) orb.Point {
	s := p.scale * math.Exp2(zoom)
	return orb.Point{geo[0] * s, geo[1] * s}
}

func (p scaledProjection) ToGeo(pixel orb.Point, zoom float64) orb.Point {
	s := p.scale * math.Exp2(zoom)
	return orb.Point{pixel[0] / s, pixel[1] / s}
}

// squareTopology is the two-arc unit square: arc 0 runs (0,0)-(1,0)-(1,1)
// and arc 1 runs (1,1)-(0,1)-(0,0).
func squareTopology() *TopologyMap {
	return unitTopology([]Arc{
		unitArc(ArcAdmin, orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{1, 1}),
		unitArc(ArcAdmin, orb.Point{1, 1}, orb.Point{0, 1}, orb.Point{0, 0}),
	}, PolygonDef{Rings: [][]int32{ring(0, 1)}, Code: code(1)})
}

func samePoints(a, b []orb.Point, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i][0]-b[i][0]) > tol || math.Abs(a[i][1]-b[i][1]) > tol {
			return false
		}
	}
	return true
}
