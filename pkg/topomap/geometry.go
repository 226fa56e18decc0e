package topomap

import (
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/beetlebugorg/topomap/internal/metrics"
	"github.com/beetlebugorg/topomap/internal/simplify"
)

// Per-kind cache counters, resolved once.
var cacheHits, cacheMisses [Polygon + 1]prometheus.Counter

func init() {
	for k := Coastline; k <= Polygon; k++ {
		cacheHits[k] = metrics.CacheHitsTotal.WithLabelValues(k.String())
		cacheMisses[k] = metrics.CacheMissesTotal.WithLabelValues(k.String())
	}
}

// GeometryAt returns the simplified pixel geometry of f at an integer zoom,
// or nil when there is nothing to draw.
func GeometryAt(f *Feature, proj Projection, zoom int) orb.MultiLineString {
	return f.GeometryAt(proj, zoom)
}

// GeometryAt returns the simplified pixel geometry of the feature at an
// integer zoom, or nil when there is nothing to draw.
//
// A line yields one linestring. A polygon yields one linestring per
// non-empty ring, joined from the cached geometry of its line features.
//
// Results are cached per zoom. The cache does not key on the projection:
// call ClearCache after switching projections. The returned geometry is
// shared with the cache and must not be modified.
func (f *Feature) GeometryAt(proj Projection, zoom int) orb.MultiLineString {
	if g, ok := f.cache.get(zoom); ok {
		cacheHits[f.kind].Inc()
		return g
	}
	cacheMisses[f.kind].Inc()

	var g orb.MultiLineString
	if f.kind == Polygon {
		g = f.polygonGeometry(proj, zoom)
	} else {
		g = f.lineGeometry(proj, zoom)
	}
	f.cache.put(zoom, g)
	return g
}

// ClearCache drops every cached zoom of the feature.
func (f *Feature) ClearCache() {
	f.cache.clear()
}

// CachedZooms returns the number of zoom levels currently cached.
func (f *Feature) CachedZooms() int {
	return f.cache.len()
}

func (f *Feature) lineGeometry(proj Projection, zoom int) orb.MultiLineString {
	if len(f.points) == 0 {
		return nil
	}

	z := float64(zoom)
	pixels := make([]orb.Point, len(f.points))
	for i, p := range f.points {
		pixels[i] = proj.ToPixel(p, z)
	}

	reduced := simplify.DouglasPeucker(pixels, f.params.SimplifyTolerance, f.closed)
	if len(reduced) <= f.params.OpenSliverPoints ||
		(f.closed && len(reduced) <= f.params.ClosedSliverPoints) {
		return nil
	}
	return orb.MultiLineString{orb.LineString(reduced)}
}

func (f *Feature) polygonGeometry(proj Projection, zoom int) orb.MultiLineString {
	var out orb.MultiLineString
	for _, ring := range f.rings {
		var points []orb.Point
		for _, ref := range ring {
			idx, reversed, _ := resolveRef(ref, len(f.lines))
			child := f.lines[idx].GeometryAt(proj, zoom)
			if len(child) == 0 {
				continue
			}
			// appendJoined copies, so the child's cached slice stays intact.
			points = appendJoined(points, child[0], reversed)
		}
		if len(points) > 0 {
			out = append(out, orb.LineString(points))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
