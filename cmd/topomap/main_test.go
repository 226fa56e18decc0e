package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/beetlebugorg/topomap/internal/config"
	"github.com/beetlebugorg/topomap/internal/quantize"
	"github.com/beetlebugorg/topomap/pkg/topomap"
)

var testScale = quantize.Transform{Scale: [2]float64{0.001, 0.001}}

func testArc(t topomap.ArcType, points ...orb.Point) topomap.Arc {
	return topomap.Arc{Points: quantize.Encode(points, testScale), Type: t}
}

// writeContainer writes a one degree square around (139.5, 35.5) as the
// prefecture layer and returns the file path.
func writeContainer(t *testing.T) string {
	t.Helper()

	code := int32(13)
	square := &topomap.TopologyMap{
		Scale: testScale.Scale,
		Arcs: []topomap.Arc{
			testArc(topomap.ArcCoastline, orb.Point{139, 35}, orb.Point{140, 35}, orb.Point{140, 36}),
			testArc(topomap.ArcAdmin, orb.Point{140, 36}, orb.Point{139, 36}, orb.Point{139, 35}),
		},
		Polygons:     []topomap.PolygonDef{{Rings: [][]int32{{0, 1}}, Code: &code}},
		CenterPoints: map[int32]quantize.Delta{},
	}

	data, err := topomap.EncodeLayers(map[topomap.LayerID]*topomap.TopologyMap{
		topomap.PrefectureForecastArea: square,
	})
	if err != nil {
		t.Fatalf("EncodeLayers failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "map.mpk")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func useConfig(t *testing.T) {
	t.Helper()

	v := viper.New()
	v.Set("engine.axis_order", "lnglat")
	c, err := config.LoadFrom(v)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	cfg = c
	t.Cleanup(func() { cfg = nil })
}

func newTestCommand(flags func(*cobra.Command)) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	flags(cmd)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func TestParseBoundingBox(t *testing.T) {
	b, err := parseBoundingBox("139, 35,140.5,36")
	if err != nil {
		t.Fatalf("parseBoundingBox failed: %v", err)
	}
	want := orb.Bound{Min: orb.Point{139, 35}, Max: orb.Point{140.5, 36}}
	if b != want {
		t.Errorf("Expected %v, got %v", want, b)
	}

	for _, bad := range []string{"", "1,2,3", "1,2,3,x"} {
		if _, err := parseBoundingBox(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("139.7,35.7")
	if err != nil || p != (orb.Point{139.7, 35.7}) {
		t.Errorf("Expected (139.7, 35.7), got %v, %v", p, err)
	}
	if _, err := parsePoint("139.7"); err == nil {
		t.Error("Expected error for a single value")
	}
}

func TestInspect(t *testing.T) {
	useConfig(t)
	path := writeContainer(t)

	cmd, out := newTestCommand(func(c *cobra.Command) {
		c.Flags().Bool("build", true, "")
	})
	if err := runInspect(cmd, []string{path}); err != nil {
		t.Fatalf("runInspect failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{"PrefectureForecastArea", "[139.0000,35.0000 140.0000,36.0000]", "府県予報区等", "polygon 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, text)
		}
	}
}

func TestQuery(t *testing.T) {
	useConfig(t)
	path := writeContainer(t)

	cmd, out := newTestCommand(func(c *cobra.Command) {
		c.Flags().String("layer", "PrefectureForecastArea", "")
		c.Flags().String("bbox", "139.8,35.8,141,37", "")
		c.Flags().Int("zoom", 6, "")
		c.Flags().Bool("pretty", false, "")
	})
	if err := runQuery(cmd, []string{path}); err != nil {
		t.Fatalf("runQuery failed: %v", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(out.Bytes())
	if err != nil {
		t.Fatalf("Output is not GeoJSON: %v", err)
	}
	// Both lines and the polygon touch the box.
	if len(fc.Features) != 3 {
		t.Fatalf("Expected 3 features, got %d", len(fc.Features))
	}

	var polygon *geojson.Feature
	for _, f := range fc.Features {
		if f.Properties.MustString("kind") == "polygon" {
			polygon = f
		}
		if _, ok := f.Properties["pixels"]; !ok {
			t.Errorf("Expected pixel geometry on feature %v", f.ID)
		}
	}
	if polygon == nil {
		t.Fatal("Expected a polygon feature")
	}
	if polygon.Properties.MustInt("code") != 13 {
		t.Errorf("Expected code 13, got %v", polygon.Properties["code"])
	}
	ring := polygon.Geometry.(orb.Polygon)[0]
	if len(ring) != 5 || ring[0] != ring[len(ring)-1] {
		t.Errorf("Expected closed 5 point ring, got %v", ring)
	}
}

func TestQueryOutsideBox(t *testing.T) {
	useConfig(t)
	path := writeContainer(t)

	cmd, out := newTestCommand(func(c *cobra.Command) {
		c.Flags().String("layer", "PrefectureForecastArea", "")
		c.Flags().String("bbox", "0,0,1,1", "")
		c.Flags().Int("zoom", -1, "")
		c.Flags().Bool("pretty", true, "")
	})
	if err := runQuery(cmd, []string{path}); err != nil {
		t.Fatalf("runQuery failed: %v", err)
	}

	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(out.Bytes(), &fc); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 0 {
		t.Errorf("Expected empty FeatureCollection, got %s", out.String())
	}
}

func TestPlan(t *testing.T) {
	useConfig(t)
	path := writeContainer(t)

	cmd, out := newTestCommand(func(c *cobra.Command) {
		c.Flags().String("center", "139.5,35.5", "")
		c.Flags().Float64("zoom", 6.2, "")
		c.Flags().Float64("width", 800, "")
		c.Flags().Float64("height", 600, "")
		c.Flags().String("layer", "", "")
		c.Flags().Bool("items", true, "")
	})
	if err := runPlan(cmd, []string{path}); err != nil {
		t.Fatalf("runPlan failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{"base 7", "layer:     PrefectureForecastArea", "items:     3 (1 fills, 2 strokes", "code=13"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, text)
		}
	}
}
