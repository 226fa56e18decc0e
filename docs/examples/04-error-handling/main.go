package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/topomap/pkg/topomap"
)

func safeLoadAtlas(path string) (*topomap.Atlas, error) {
	maps, err := topomap.LoadLayers(path)
	if err != nil {
		// Check if file exists
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("map file not found: %s", path)
		}

		// Malformed containers report the failing path
		var fe *topomap.FormatError
		if errors.As(err, &fe) {
			log.Printf("Malformed container at %s: %v", fe.Path, fe.Err)
		}
		return nil, err
	}

	atlas, err := topomap.BuildAtlas(context.Background(), maps, topomap.DefaultBuildOptions())
	if err != nil {
		// Rings referencing missing arcs are rejected per layer
		var se *topomap.StructuralError
		if errors.As(err, &se) {
			log.Printf("Layer %s polygon %d ring %d: %s", se.Layer, se.Polygon, se.Ring, se.Reason)
		}
		return nil, err
	}

	if len(atlas.Layers()) == 0 {
		log.Printf("Warning: %s contains none of the requested layers", path)
	}

	return atlas, nil
}

func main() {
	// Try to load a map
	atlas, err := safeLoadAtlas("japan.mpk")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	fmt.Printf("Successfully loaded %d layers\n", len(atlas.Layers()))

	// Try to load a non-existent map
	_, err = safeLoadAtlas("missing.mpk")
	if err != nil {
		log.Printf("Expected error: %v", err)
	}
}
