package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beetlebugorg/topomap/pkg/topomap"
)

var planCmd = &cobra.Command{
	Use:   "plan <file>",
	Short: "Show what would be drawn for a view",
	Long: `Build the essential layers and plan one frame for the given view state:
the zoom bucket, the selected layer, the viewport and the draw list.

Example:
  topomap plan japan.mpk --center "139.7,35.7" --zoom 6.2 --width 800 --height 600 --items`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().String("center", "137,38", "view center: 'lon,lat'")
	planCmd.Flags().Float64("zoom", topomap.DefaultMinZoom, "fractional zoom level")
	planCmd.Flags().Float64("width", 800, "view width in pixels")
	planCmd.Flags().Float64("height", 600, "view height in pixels")
	planCmd.Flags().String("layer", "", "layer drawn beyond zoom 10 (default: view.primary_layer)")
	planCmd.Flags().Bool("items", false, "list every draw item")
}

func runPlan(cmd *cobra.Command, args []string) error {
	primary, err := layerFlag(cmd)
	if err != nil {
		return err
	}
	centerStr, _ := cmd.Flags().GetString("center")
	center, err := parsePoint(centerStr)
	if err != nil {
		return err
	}
	zoom, _ := cmd.Flags().GetFloat64("zoom")
	width, _ := cmd.Flags().GetFloat64("width")
	height, _ := cmd.Flags().GetFloat64("height")
	items, _ := cmd.Flags().GetBool("items")

	atlas, err := loadAtlas(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	view := topomap.ViewState{Center: center, Zoom: zoom, Width: width, Height: height}
	view = view.Normalize(cfg.View.MinZoom, cfg.View.MaxZoom)

	frame := atlas.Plan(topomap.FrameRequest{
		Projection:   cfg.Projection(),
		View:         view,
		PrimaryLayer: primary,
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "center:    %.5f,%.5f\n", view.Center[0], view.Center[1])
	fmt.Fprintf(out, "zoom:      %.3f (base %d, scale %.4f)\n", view.Zoom, frame.BaseZoom, frame.Scale)
	fmt.Fprintf(out, "layer:     %s\n", frame.Layer)
	fmt.Fprintf(out, "viewport:  %s\n", formatBound(frame.Viewport))

	var fills, strokes, points int
	for _, item := range frame.Items {
		if item.Kind == topomap.Polygon {
			fills++
		} else {
			strokes++
		}
		for _, path := range item.Paths {
			points += len(path)
		}
	}
	fmt.Fprintf(out, "items:     %d (%d fills, %d strokes, %d points)\n", len(frame.Items), fills, strokes, points)

	if items {
		for _, item := range frame.Items {
			code := ""
			if c, ok := item.Feature.Code(); ok {
				code = fmt.Sprintf(" code=%d", c)
			}
			fmt.Fprintf(out, "  %-36s %-9s #%-6d paths=%d%s\n",
				item.Layer, item.Kind, item.Feature.Index(), len(item.Paths), code)
		}
	}
	return nil
}
