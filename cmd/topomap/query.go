package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/beetlebugorg/topomap/pkg/topomap"
)

var queryCmd = &cobra.Command{
	Use:   "query <file>",
	Short: "Find the features of a layer inside a bounding box",
	Long: `Build one layer and print the features whose bounds intersect the
bounding box as a GeoJSON FeatureCollection. With --zoom each feature also
carries its simplified pixel geometry at that zoom.

Examples:
  topomap query japan.mpk --layer PrefectureForecastArea --bbox "139,35,140.5,36"
  topomap query japan.mpk --bbox "135,34,136,35" --zoom 8 --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().String("layer", "", "layer to query (default: view.primary_layer)")
	queryCmd.Flags().String("bbox", "", "bounding box: 'min_lon,min_lat,max_lon,max_lat'")
	queryCmd.Flags().Int("zoom", -1, "include simplified pixel geometry at this zoom")
	queryCmd.Flags().Bool("pretty", false, "pretty print JSON output")
	queryCmd.MarkFlagRequired("bbox")
}

func runQuery(cmd *cobra.Command, args []string) error {
	id, err := layerFlag(cmd)
	if err != nil {
		return err
	}
	bboxStr, _ := cmd.Flags().GetString("bbox")
	bbox, err := parseBoundingBox(bboxStr)
	if err != nil {
		return err
	}
	zoom, _ := cmd.Flags().GetInt("zoom")
	pretty, _ := cmd.Flags().GetBool("pretty")

	// Only the queried layer needs building.
	cfg.Build.AllLayers = false
	cfg.Build.Layers = []string{id.String()}

	atlas, err := loadAtlas(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if _, ok := atlas.Layer(id); !ok {
		return fmt.Errorf("layer %s not in container", id)
	}

	fc := featureCollection(id, atlas.Find(id, bbox), cfg.Projection(), zoom)

	var data []byte
	if pretty {
		data, err = json.MarshalIndent(fc, "", "  ")
	} else {
		data, err = json.Marshal(fc)
	}
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func featureCollection(id topomap.LayerID, features []*topomap.Feature, proj topomap.Projection, zoom int) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(f.Geometry())
		gf.ID = f.Index()
		gf.Properties["layer"] = id.String()
		gf.Properties["kind"] = f.Kind().String()
		gf.Properties["closed"] = f.Closed()
		if c, ok := f.Code(); ok {
			gf.Properties["code"] = c
		}
		if zoom >= 0 {
			gf.Properties["zoom"] = zoom
			gf.Properties["pixels"] = f.GeometryAt(proj, zoom)
		}
		fc.Append(gf)
	}
	return fc
}

// parseBoundingBox parses 'min_lon,min_lat,max_lon,max_lat'.
func parseBoundingBox(bbox string) (orb.Bound, error) {
	parts := strings.Split(bbox, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bounding box must have 4 values: min_lon,min_lat,max_lon,max_lat")
	}

	coords := make([]float64, 4)
	for i, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("invalid coordinate value: %s", part)
		}
		coords[i] = val
	}

	return orb.Bound{
		Min: orb.Point{coords[0], coords[1]},
		Max: orb.Point{coords[2], coords[3]},
	}, nil
}

// parsePoint parses 'lon,lat'.
func parsePoint(s string) (orb.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("point must have 2 values: lon,lat")
	}
	var p orb.Point
	for i, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Point{}, fmt.Errorf("invalid coordinate value: %s", part)
		}
		p[i] = val
	}
	return p, nil
}
