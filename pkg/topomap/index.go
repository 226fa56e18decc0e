package topomap

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"github.com/beetlebugorg/topomap/internal/metrics"
)

// spatialEpsilon pads R-tree rectangles. rtreego needs positive side lengths
// and treats touching rectangles as disjoint, so both feature and query
// rectangles are padded and the candidates filtered exactly afterwards.
const spatialEpsilon = 1e-9

// spatialIndex provides O(log n) bound queries over one feature set.
type spatialIndex struct {
	rtree *rtreego.Rtree
}

// indexedFeature wraps a feature for R-tree storage.
type indexedFeature struct {
	feature *Feature
	rect    rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (f *indexedFeature) Bounds() rtreego.Rect {
	return f.rect
}

// paddedRect converts b to an epsilon padded R-tree rectangle. It fails for
// an inverted bound, whose side lengths stay negative after padding.
func paddedRect(b orb.Bound) (rtreego.Rect, error) {
	point := rtreego.Point{b.Min[0] - spatialEpsilon, b.Min[1] - spatialEpsilon}
	lengths := []float64{
		b.Max[0] - b.Min[0] + 2*spatialEpsilon,
		b.Max[1] - b.Min[1] + 2*spatialEpsilon,
	}
	return rtreego.NewRect(point, lengths)
}

// newSpatialIndex bulk loads every feature with a non-empty bound.
func newSpatialIndex(features []*Feature) *spatialIndex {
	objs := make([]rtreego.Spatial, 0, len(features))
	for _, f := range features {
		if !validBound(f.bounds) {
			continue
		}
		rect, err := paddedRect(f.bounds)
		if err != nil {
			continue
		}
		objs = append(objs, &indexedFeature{feature: f, rect: rect})
	}
	if len(objs) == 0 {
		return &spatialIndex{}
	}
	// 2D, min=25 children, max=50 children
	return &spatialIndex{rtree: rtreego.NewTree(2, 25, 50, objs...)}
}

// Find returns the features whose bound intersects viewport, touching edges
// included. The order is unspecified. An inverted, zero-width, zero-height
// or non-finite viewport matches nothing.
//
// Example:
//
//	viewport := orb.Bound{Min: orb.Point{135.0, 34.0}, Max: orb.Point{136.0, 35.0}}
//	for _, f := range set.Find(viewport) {
//	    draw(f.GeometryAt(proj, zoom))
//	}
func (s *FeatureSet) Find(viewport orb.Bound) []*Feature {
	if !validViewport(viewport) {
		return nil
	}

	var result []*Feature
	if s.index == nil {
		result = s.findLinear(viewport)
	} else {
		result = s.findIndexed(viewport)
	}
	metrics.QueryResults.WithLabelValues(s.layer.String()).Observe(float64(len(result)))
	return result
}

func (s *FeatureSet) findIndexed(viewport orb.Bound) []*Feature {
	if s.index.rtree == nil {
		return nil
	}

	query, err := paddedRect(viewport)
	if err != nil {
		return nil
	}
	spatials := s.index.rtree.SearchIntersect(query)
	result := make([]*Feature, 0, len(spatials))
	for _, spatial := range spatials {
		f := spatial.(*indexedFeature).feature
		if viewport.Intersects(f.bounds) {
			result = append(result, f)
		}
	}
	return result
}

// findLinear scans every feature when no spatial index exists.
func (s *FeatureSet) findLinear(viewport orb.Bound) []*Feature {
	var result []*Feature
	for _, group := range [][]*Feature{s.lines, s.polygons} {
		for _, f := range group {
			if validBound(f.bounds) && viewport.Intersects(f.bounds) {
				result = append(result, f)
			}
		}
	}
	return result
}

func validBound(b orb.Bound) bool {
	for _, v := range []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1]
}

func validViewport(b orb.Bound) bool {
	return validBound(b) && b.Min[0] < b.Max[0] && b.Min[1] < b.Max[1]
}
