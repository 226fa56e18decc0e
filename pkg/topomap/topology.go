package topomap

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/topomap/internal/mpk"
	"github.com/beetlebugorg/topomap/internal/quantize"
)

// ArcType classifies a shared arc.
type ArcType uint8

const (
	ArcCoastline ArcType = ArcType(mpk.ArcCoastline)
	ArcAdmin     ArcType = ArcType(mpk.ArcAdmin)
	ArcArea      ArcType = ArcType(mpk.ArcArea)
)

func (t ArcType) String() string {
	switch t {
	case ArcCoastline:
		return "coastline"
	case ArcAdmin:
		return "admin"
	case ArcArea:
		return "area"
	default:
		return fmt.Sprintf("ArcType(%d)", uint8(t))
	}
}

// AxisOrder tells which decoded component holds the latitude.
type AxisOrder int

const (
	// LatLng means decoded X is latitude and decoded Y is longitude.
	// This is the layout of the published container files.
	LatLng AxisOrder = iota
	// LngLat means decoded X is longitude and decoded Y is latitude.
	LngLat
)

// Arc is a delta-encoded polyline shared between polygons.
type Arc struct {
	Points []quantize.Delta
	Type   ArcType
}

// PolygonDef is a polygon expressed as rings of signed arc references.
//
// A non-negative reference i selects Arcs[i] traversed forward; a negative
// reference i selects Arcs[-i-1] traversed in reverse.
type PolygonDef struct {
	Rings [][]int32
	Code  *int32
}

// TopologyMap is the decoded topology of one layer. It is not modified after
// load.
type TopologyMap struct {
	Scale        [2]float64
	Translate    [2]float64
	Arcs         []Arc
	Polygons     []PolygonDef
	CenterPoints map[int32]quantize.Delta
	AxisOrder    AxisOrder
}

func (m *TopologyMap) transform() quantize.Transform {
	return quantize.Transform{Scale: m.Scale, Translate: m.Translate}
}

// orient puts a decoded point into orb's (lon, lat) order.
func (m *TopologyMap) orient(p orb.Point) orb.Point {
	if m.AxisOrder == LatLng {
		return orb.Point{p[1], p[0]}
	}
	return p
}

// DecodeArc returns the geographic points of arc i as (lon, lat).
func (m *TopologyMap) DecodeArc(i int) ([]orb.Point, error) {
	if i < 0 || i >= len(m.Arcs) {
		return nil, fmt.Errorf("arc %d out of range [0,%d)", i, len(m.Arcs))
	}
	points := quantize.Decode(m.Arcs[i].Points, m.transform())
	for j := range points {
		points[j] = m.orient(points[j])
	}
	return points, nil
}

// CenterPoint returns the representative location of a region code.
func (m *TopologyMap) CenterPoint(code int32) (orb.Point, bool) {
	q, ok := m.CenterPoints[code]
	if !ok {
		return orb.Point{}, false
	}
	return m.orient(quantize.Absolute(q, m.transform())), true
}

// resolveRef decodes a signed arc reference against a pool of n arcs.
func resolveRef(ref int32, n int) (index int, reversed bool, ok bool) {
	if ref < 0 {
		index = int(-(int64(ref) + 1))
		reversed = true
	} else {
		index = int(ref)
	}
	return index, reversed, index < n
}

// appendJoined appends seq to dst following the ring join rule: the first
// sequence of a ring is appended whole, later ones without their first point
// (the vertex shared with the previous sequence). seq is never modified.
func appendJoined(dst, seq []orb.Point, reversed bool) []orb.Point {
	skip := 0
	if len(dst) > 0 {
		skip = 1
	}
	if !reversed {
		if skip < len(seq) {
			dst = append(dst, seq[skip:]...)
		}
		return dst
	}
	for i := len(seq) - 1 - skip; i >= 0; i-- {
		dst = append(dst, seq[i])
	}
	return dst
}

func fromContainer(src *mpk.Map, order AxisOrder) *TopologyMap {
	m := &TopologyMap{
		Scale:        src.Scale,
		Translate:    src.Translate,
		Arcs:         make([]Arc, len(src.Arcs)),
		Polygons:     make([]PolygonDef, len(src.Polygons)),
		CenterPoints: src.CenterPoints,
		AxisOrder:    order,
	}
	for i, a := range src.Arcs {
		m.Arcs[i] = Arc{Points: a.Points, Type: ArcType(a.Type)}
	}
	for i, p := range src.Polygons {
		m.Polygons[i] = PolygonDef{Rings: p.Rings, Code: p.Code}
	}
	return m
}

func (m *TopologyMap) toContainer() *mpk.Map {
	out := &mpk.Map{
		Scale:        m.Scale,
		Translate:    m.Translate,
		Arcs:         make([]mpk.Arc, len(m.Arcs)),
		Polygons:     make([]mpk.Polygon, len(m.Polygons)),
		CenterPoints: m.CenterPoints,
	}
	for i, a := range m.Arcs {
		out.Arcs[i] = mpk.Arc{Points: a.Points, Type: uint8(a.Type)}
	}
	for i, p := range m.Polygons {
		out.Polygons[i] = mpk.Polygon{Rings: p.Rings, Code: p.Code}
	}
	return out
}
