// Package topomap is a vector map feature engine for topology-encoded
// administrative maps.
//
// A map container holds one quantized topology per layer: a pool of shared
// arcs and polygons expressed as rings of signed references into that pool.
// The engine turns each topology into a FeatureSet of line features (one per
// arc) and polygon features composed from them, indexes their bounds for
// viewport queries, and produces simplified pixel geometry per integer zoom
// through a per-feature cache.
//
// # Loading and building
//
//	maps, err := topomap.LoadLayers("map.mpk.lz4")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	atlas, err := topomap.BuildAtlas(ctx, maps, topomap.DefaultBuildOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Drawing
//
// A continuous zoom is drawn from the cache of the integer zoom above it,
// scaled around the top-left corner of the screen:
//
//	proj := topomap.NewWebMercator()
//	base, t := view.Transform(proj)
//	viewport, _ := view.Viewport(proj)
//	for _, f := range atlas.Find(topomap.PrefectureForecastArea, viewport) {
//	    for _, ring := range t.ApplyAll(f.GeometryAt(proj, base)) {
//	        stroke(ring, f.Closed())
//	    }
//	}
//
// Atlas.Plan performs the same steps for a whole frame, including layer
// selection by zoom.
//
// Coordinates are orb points in (lon, lat) order; bounds are orb.Bound.
package topomap
