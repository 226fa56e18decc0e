package main

import (
	"context"
	"fmt"
	"log"

	"github.com/beetlebugorg/topomap/pkg/topomap"
)

func main() {
	maps, err := topomap.LoadLayers("japan.mpk")
	if err != nil {
		log.Fatal(err)
	}

	opts := topomap.DefaultBuildOptions()
	opts.Layers = []topomap.LayerID{topomap.NationalAndRegionForecastArea}
	atlas, err := topomap.BuildAtlas(context.Background(), maps, opts)
	if err != nil {
		log.Fatal(err)
	}

	set, ok := atlas.Layer(topomap.NationalAndRegionForecastArea)
	if !ok || len(set.Polygons()) == 0 {
		log.Fatal("no polygons in layer")
	}
	polygon := set.Polygons()[0]
	proj := topomap.NewWebMercator()

	// Simplified pixel rings shrink as the zoom goes down; each zoom is
	// computed once and then served from the feature's cache.
	for zoom := 10; zoom >= 2; zoom -= 2 {
		rings := polygon.GeometryAt(proj, zoom)
		points := 0
		for _, r := range rings {
			points += len(r)
		}
		fmt.Printf("zoom %2d: %d rings, %d points\n", zoom, len(rings), points)
	}
	fmt.Printf("cached zooms: %d\n", polygon.CachedZooms())
}
