package topomap

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// FeatureKind is the closed set of feature variants.
type FeatureKind uint8

const (
	Coastline FeatureKind = iota
	AdminBoundary
	AreaBoundary
	Polygon
)

func (k FeatureKind) String() string {
	switch k {
	case Coastline:
		return "coastline"
	case AdminBoundary:
		return "admin"
	case AreaBoundary:
		return "area"
	case Polygon:
		return "polygon"
	default:
		return fmt.Sprintf("FeatureKind(%d)", uint8(k))
	}
}

// IsLine reports whether k is one of the line kinds.
func (k FeatureKind) IsLine() bool {
	return k != Polygon
}

func kindOf(t ArcType) (FeatureKind, bool) {
	switch t {
	case ArcCoastline:
		return Coastline, true
	case ArcAdmin:
		return AdminBoundary, true
	case ArcArea:
		return AreaBoundary, true
	default:
		return 0, false
	}
}

// Feature is either a line built from one arc or a polygon composed of the
// line features of its layer.
//
// Line features keep their geographic points. Polygon features keep only
// their rings of signed references into the layer's line features, so two
// polygons sharing an arc always draw the same simplified boundary.
//
// The geometry of a feature never changes after construction; only its
// simplification cache does. A Feature must not be copied.
type Feature struct {
	kind   FeatureKind
	index  int
	bounds orb.Bound
	closed bool

	// line features
	points []orb.Point

	// polygon features
	rings [][]int32
	code  *int32
	lines []*Feature

	params *Params
	cache  zoomCache
}

// Kind returns the feature variant.
func (f *Feature) Kind() FeatureKind { return f.kind }

// Index returns the position of the feature within its FeatureSet.
func (f *Feature) Index() int { return f.index }

// Bounds returns the geographic bounding box as (lon, lat). Polygons are
// bounded by their first ring. A feature without points has an empty bound.
func (f *Feature) Bounds() orb.Bound { return f.bounds }

// Closed reports whether the feature forms a ring. Always true for polygons.
func (f *Feature) Closed() bool { return f.closed }

// Points returns the geographic points of a line feature, or nil for a
// polygon. The slice must not be modified.
func (f *Feature) Points() []orb.Point { return f.points }

// Rings returns the signed line references of a polygon feature, or nil for
// a line. The slices must not be modified.
func (f *Feature) Rings() [][]int32 { return f.rings }

// Code returns the region code of a polygon, if it has one.
func (f *Feature) Code() (int32, bool) {
	if f.code == nil {
		return 0, false
	}
	return *f.code, true
}

// Geometry returns the full resolution geographic shape: an orb.LineString
// for a line, an orb.Polygon for a polygon. Polygon rings are joined from
// the referenced line points the same way pixel geometry is.
func (f *Feature) Geometry() orb.Geometry {
	if f.kind.IsLine() {
		return orb.LineString(f.points)
	}
	poly := make(orb.Polygon, 0, len(f.rings))
	for _, ring := range f.rings {
		var points []orb.Point
		for _, ref := range ring {
			idx, reversed, _ := resolveRef(ref, len(f.lines))
			points = appendJoined(points, f.lines[idx].points, reversed)
		}
		poly = append(poly, orb.Ring(points))
	}
	return poly
}

// emptyBound is the starting value of a running min/max bound. It reports
// IsEmpty and intersects nothing.
func emptyBound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}
}

func boundOf(points []orb.Point) orb.Bound {
	b := emptyBound()
	for _, p := range points {
		b.Min[0] = math.Min(b.Min[0], p[0])
		b.Min[1] = math.Min(b.Min[1], p[1])
		b.Max[0] = math.Max(b.Max[0], p[0])
		b.Max[1] = math.Max(b.Max[1], p[1])
	}
	return b
}

func unionBound(a, b orb.Bound) orb.Bound {
	if b.IsEmpty() {
		return a
	}
	if a.IsEmpty() {
		return b
	}
	return a.Union(b)
}

func isClosed(points []orb.Point, tolerance float64) bool {
	if len(points) == 0 {
		return false
	}
	first, last := points[0], points[len(points)-1]
	return math.Abs(first[0]-last[0]) < tolerance &&
		math.Abs(first[1]-last[1]) < tolerance
}
