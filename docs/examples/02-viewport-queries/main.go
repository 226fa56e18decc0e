package main

import (
	"context"
	"fmt"
	"log"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/topomap/pkg/topomap"
)

func main() {
	maps, err := topomap.LoadLayers("japan.mpk")
	if err != nil {
		log.Fatal(err)
	}

	opts := topomap.DefaultBuildOptions()
	opts.Layers = []topomap.LayerID{topomap.PrefectureForecastArea}
	atlas, err := topomap.BuildAtlas(context.Background(), maps, opts)
	if err != nil {
		log.Fatal(err)
	}

	// Define viewport (Tokyo Bay area) as (lon, lat)
	viewport := orb.Bound{
		Min: orb.Point{139.5, 35.0},
		Max: orb.Point{140.2, 35.8},
	}

	// Query R-tree index for visible features (O(log n))
	features := atlas.Find(topomap.PrefectureForecastArea, viewport)

	fmt.Printf("Visible features: %d\n", len(features))

	for _, f := range features {
		if c, ok := f.Code(); ok {
			fmt.Printf("  #%d %s code=%d\n", f.Index(), f.Kind(), c)
			continue
		}
		fmt.Printf("  #%d %s\n", f.Index(), f.Kind())
	}
}
