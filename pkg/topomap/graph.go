package topomap

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/topomap/internal/metrics"
)

// FeatureSet holds the features of one layer: every line feature, in arc
// order, followed by every polygon feature, in polygon order.
type FeatureSet struct {
	layer    LayerID
	lines    []*Feature
	polygons []*Feature
	bounds   orb.Bound
	index    *spatialIndex
	params   Params
}

// BuildFeatureSet builds the feature graph of one layer and its spatial
// index. Line features are built from the arcs first; polygons then resolve
// their first ring against them to compute a bound.
//
// Returns a *StructuralError for an arc of unknown type or a ring reference
// outside the arc pool. Nothing is skipped.
//
// Example:
//
//	set, err := topomap.BuildFeatureSet(topomap.PrefectureForecastArea, m, topomap.DefaultParams())
//	if err != nil {
//	    return err
//	}
//	for _, f := range set.Find(viewport) {
//	    draw(f.GeometryAt(proj, zoom))
//	}
func BuildFeatureSet(layer LayerID, m *TopologyMap, params Params) (*FeatureSet, error) {
	return buildFeatureSet(layer, m, params, true)
}

func buildFeatureSet(layer LayerID, m *TopologyMap, params Params, indexed bool) (*FeatureSet, error) {
	start := time.Now()
	s := &FeatureSet{
		layer:  layer,
		params: params,
		bounds: emptyBound(),
		lines:  make([]*Feature, len(m.Arcs)),
	}

	for i := range m.Arcs {
		f, err := s.newLineFeature(m, i)
		if err != nil {
			return nil, err
		}
		s.lines[i] = f
		s.bounds = unionBound(s.bounds, f.bounds)
	}

	s.polygons = make([]*Feature, len(m.Polygons))
	for i, def := range m.Polygons {
		f, err := s.newPolygonFeature(i, def)
		if err != nil {
			return nil, err
		}
		s.polygons[i] = f
		s.bounds = unionBound(s.bounds, f.bounds)
	}

	if indexed {
		s.index = newSpatialIndex(s.Features())
	}

	s.record(time.Since(start))
	return s, nil
}

func (s *FeatureSet) newLineFeature(m *TopologyMap, i int) (*Feature, error) {
	kind, ok := kindOf(m.Arcs[i].Type)
	if !ok {
		return nil, &StructuralError{
			Layer:   s.layer,
			Polygon: -1,
			Ref:     int32(i),
			Reason:  fmt.Sprintf("unknown arc type %d", uint8(m.Arcs[i].Type)),
		}
	}

	points, err := m.DecodeArc(i)
	if err != nil {
		return nil, err
	}
	return &Feature{
		kind:   kind,
		index:  i,
		points: points,
		closed: isClosed(points, s.params.ClosedTolerance),
		bounds: boundOf(points),
		params: &s.params,
	}, nil
}

func (s *FeatureSet) newPolygonFeature(i int, def PolygonDef) (*Feature, error) {
	for r, ring := range def.Rings {
		for _, ref := range ring {
			if _, _, ok := resolveRef(ref, len(s.lines)); !ok {
				return nil, &StructuralError{
					Layer:   s.layer,
					Polygon: i,
					Ring:    r,
					Ref:     ref,
					Reason:  fmt.Sprintf("outside the %d line features of the layer", len(s.lines)),
				}
			}
		}
	}

	// The outer ring dominates the bound; its points are only needed here.
	var outer []orb.Point
	if len(def.Rings) > 0 {
		for _, ref := range def.Rings[0] {
			idx, reversed, _ := resolveRef(ref, len(s.lines))
			outer = appendJoined(outer, s.lines[idx].points, reversed)
		}
	}

	f := &Feature{
		kind:   Polygon,
		index:  len(s.lines) + i,
		closed: true,
		bounds: boundOf(outer),
		rings:  def.Rings,
		lines:  s.lines,
		params: &s.params,
	}
	if def.Code != nil {
		code := *def.Code
		f.code = &code
	}
	return f, nil
}

func (s *FeatureSet) record(elapsed time.Duration) {
	layer := s.layer.String()
	metrics.LayerBuildDurationMs.WithLabelValues(layer).Observe(float64(elapsed.Milliseconds()))

	counts := map[FeatureKind]int{}
	for _, f := range s.lines {
		counts[f.kind]++
	}
	counts[Polygon] = len(s.polygons)
	for _, k := range []FeatureKind{Coastline, AdminBoundary, AreaBoundary, Polygon} {
		metrics.FeaturesBuilt.WithLabelValues(layer, k.String()).Set(float64(counts[k]))
	}
}

// Layer returns the layer the set was built from.
func (s *FeatureSet) Layer() LayerID { return s.layer }

// Params returns the geometry constants of the set.
func (s *FeatureSet) Params() Params { return s.params }

// Len returns the number of features.
func (s *FeatureSet) Len() int { return len(s.lines) + len(s.polygons) }

// Feature returns the feature at index i, as numbered by Feature.Index.
func (s *FeatureSet) Feature(i int) *Feature {
	if i < len(s.lines) {
		return s.lines[i]
	}
	return s.polygons[i-len(s.lines)]
}

// Features returns every feature, lines first.
func (s *FeatureSet) Features() []*Feature {
	out := make([]*Feature, 0, s.Len())
	out = append(out, s.lines...)
	return append(out, s.polygons...)
}

// Lines returns the line features in arc order.
func (s *FeatureSet) Lines() []*Feature { return s.lines }

// Polygons returns the polygon features in definition order.
func (s *FeatureSet) Polygons() []*Feature { return s.polygons }

// Bounds returns the union of all non-empty feature bounds.
func (s *FeatureSet) Bounds() orb.Bound { return s.bounds }

// ClearCaches drops the simplified geometry of every feature.
func (s *FeatureSet) ClearCaches() {
	for _, f := range s.lines {
		f.ClearCache()
	}
	for _, f := range s.polygons {
		f.ClearCache()
	}
	metrics.CacheClearsTotal.Inc()
}
