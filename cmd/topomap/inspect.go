package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/beetlebugorg/topomap/pkg/topomap"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarize the layers of a container",
	Long: `Decode a topology map container and print, for every layer, its arc and
polygon counts and its geographic bounds. With --build the feature graph is
built as well, which validates every ring reference.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Bool("build", false, "build the feature graph of each listed layer")
}

func runInspect(cmd *cobra.Command, args []string) error {
	maps, err := topomap.NewLoader().LoadWithOptions(args[0], cfg.LoadOptions())
	if err != nil {
		return err
	}

	build, _ := cmd.Flags().GetBool("build")
	var atlas *topomap.Atlas
	if build {
		if atlas, err = buildAtlas(cmd.Context(), maps); err != nil {
			return err
		}
	}

	ids := make([]topomap.LayerID, 0, len(maps))
	for id := range maps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-38s %8s %8s  %-40s %s\n", "LAYER", "ARCS", "POLYGONS", "BOUNDS", "NAME")
	for _, id := range ids {
		m := maps[id]
		bounds := "-"
		if atlas != nil {
			if set, ok := atlas.Layer(id); ok {
				bounds = formatBound(set.Bounds())
			}
		}
		fmt.Fprintf(out, "%-38s %8d %8d  %-40s %s\n", id, len(m.Arcs), len(m.Polygons), bounds, id.DisplayName())
	}

	if atlas != nil {
		writeKindCounts(out, atlas)
	}
	return nil
}

func writeKindCounts(out io.Writer, atlas *topomap.Atlas) {
	fmt.Fprintln(out)
	for _, id := range atlas.Layers() {
		set, _ := atlas.Layer(id)
		counts := map[topomap.FeatureKind]int{}
		for _, f := range set.Features() {
			counts[f.Kind()]++
		}
		fmt.Fprintf(out, "%s: %d features (coastline %d, admin %d, area %d, polygon %d)\n",
			id, set.Len(),
			counts[topomap.Coastline], counts[topomap.AdminBoundary],
			counts[topomap.AreaBoundary], counts[topomap.Polygon])
	}
}

func formatBound(b orb.Bound) string {
	if b.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("[%.4f,%.4f %.4f,%.4f]", b.Min[0], b.Min[1], b.Max[0], b.Max[1])
}
