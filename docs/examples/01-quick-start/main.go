package main

import (
	"context"
	"fmt"
	"log"

	"github.com/beetlebugorg/topomap/pkg/topomap"
)

func main() {
	// Decode the container
	maps, err := topomap.LoadLayers("japan.mpk")
	if err != nil {
		log.Fatal(err)
	}

	// Build the essential layers
	atlas, err := topomap.BuildAtlas(context.Background(), maps, topomap.DefaultBuildOptions())
	if err != nil {
		log.Fatal(err)
	}

	for _, id := range atlas.Layers() {
		set, _ := atlas.Layer(id)
		bounds := set.Bounds()
		fmt.Printf("%s: %d lines, %d polygons\n", id, len(set.Lines()), len(set.Polygons()))
		fmt.Printf("  Bounds: [%.4f,%.4f] to [%.4f,%.4f]\n",
			bounds.Min[0], bounds.Min[1],
			bounds.Max[0], bounds.Max[1])
	}
}
