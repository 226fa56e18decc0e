package topomap

import (
	"slices"

	"github.com/paulmach/orb"
)

// minStrokeZoom is the base zoom above which line features are stroked.
const minStrokeZoom = 5

// FrameRequest describes one frame to plan.
type FrameRequest struct {
	Projection Projection
	View       ViewState

	// PrimaryLayer is drawn beyond zoom 10. Defaults to
	// PrimarySubdivisionArea when zero-valued.
	PrimaryLayer LayerID
}

// DrawItem is one feature ready to draw, in screen pixels.
type DrawItem struct {
	Layer   LayerID
	Feature *Feature
	Kind    FeatureKind
	Closed  bool
	Paths   orb.MultiLineString
}

// Frame is the ordered list of features to draw for one view.
type Frame struct {
	BaseZoom int
	Scale    float64
	Layer    LayerID
	Viewport orb.Bound
	Items    []DrawItem
}

// sortForDrawing orders fills before strokes, each by feature index.
func sortForDrawing(features []*Feature) []*Feature {
	slices.SortFunc(features, func(a, b *Feature) int {
		ap, bp := a.kind == Polygon, b.kind == Polygon
		if ap != bp {
			if ap {
				return -1
			}
			return 1
		}
		return a.index - b.index
	})
	return features
}

// Plan resolves the features visible in a view and their screen geometry.
//
// Overseas land polygons come first, then the polygons and boundary lines
// of the layer selected for the zoom, fills before strokes. Lines are left
// out at base zoom 5 and below. Features with nothing to draw are skipped.
func (a *Atlas) Plan(req FrameRequest) Frame {
	primary := req.PrimaryLayer
	if primary == WorldWithoutJapan {
		primary = PrimarySubdivisionArea
	}

	viewport, _ := req.View.Viewport(req.Projection)
	base, t := req.View.Transform(req.Projection)
	frame := Frame{
		BaseZoom: base,
		Scale:    t.Scale,
		Layer:    SelectLayer(base, primary),
		Viewport: viewport,
	}

	add := func(layer LayerID, f *Feature) {
		g := f.GeometryAt(req.Projection, base)
		if g == nil {
			return
		}
		frame.Items = append(frame.Items, DrawItem{
			Layer:   layer,
			Feature: f,
			Kind:    f.kind,
			Closed:  f.closed,
			Paths:   t.ApplyAll(g),
		})
	}

	for _, f := range sortForDrawing(a.Find(WorldWithoutJapan, viewport)) {
		if f.kind == Polygon {
			add(WorldWithoutJapan, f)
		}
	}
	for _, f := range sortForDrawing(a.Find(frame.Layer, viewport)) {
		if f.kind.IsLine() && base <= minStrokeZoom {
			continue
		}
		add(frame.Layer, f)
	}
	return frame
}
