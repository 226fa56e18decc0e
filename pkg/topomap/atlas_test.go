package topomap

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func square(minLon, minLat, maxLon, maxLat float64) []orb.Point {
	return []orb.Point{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}
}

func prefectureTopology() *TopologyMap {
	return topology([]Arc{
		arc(ArcAdmin, orb.Point{135, 34}, orb.Point{140, 34}, orb.Point{140, 38}),
		arc(ArcCoastline, orb.Point{140, 38}, orb.Point{135, 38}, orb.Point{135, 34}),
	}, PolygonDef{Rings: [][]int32{ring(0, 1)}, Code: code(100)})
}

func atlasFixture() map[LayerID]*TopologyMap {
	return map[LayerID]*TopologyMap{
		WorldWithoutJapan: topology(
			[]Arc{arc(ArcCoastline, square(100, 30, 130, 45)...)},
			PolygonDef{Rings: [][]int32{ring(0)}}),
		NationalAndRegionForecastArea: topology(
			[]Arc{arc(ArcCoastline, square(135, 34, 140, 38)...)},
			PolygonDef{Rings: [][]int32{ring(0)}, Code: code(1)}),
		PrefectureForecastArea:         prefectureTopology(),
		PrimarySubdivisionArea:         prefectureTopology(),
		MunicipalityWeatherWarningArea: prefectureTopology(),
	}
}

func TestBuildAtlas(t *testing.T) {
	maps := atlasFixture()

	var mu sync.Mutex
	var calls [][2]int
	opts := DefaultBuildOptions()
	opts.Workers = 2
	opts.Progress = func(built, total int) {
		mu.Lock()
		calls = append(calls, [2]int{built, total})
		mu.Unlock()
	}

	atlas, err := BuildAtlas(context.Background(), maps, opts)
	if err != nil {
		t.Fatalf("BuildAtlas failed: %v", err)
	}

	if got := len(atlas.Layers()); got != len(maps) {
		t.Fatalf("Expected %d layers, got %d", len(maps), got)
	}
	if len(calls) != len(maps) {
		t.Fatalf("Expected %d progress calls, got %d", len(maps), len(calls))
	}
	for _, c := range calls {
		if c[1] != len(maps) || c[0] < 1 || c[0] > len(maps) {
			t.Errorf("Unexpected progress call %v", c)
		}
	}

	set, ok := atlas.Layer(PrefectureForecastArea)
	if !ok || set.Len() != 3 {
		t.Fatalf("Expected prefecture layer with 3 features, got %v", set)
	}

	viewport := orb.Bound{Min: orb.Point{136, 35}, Max: orb.Point{137, 36}}
	if got := len(atlas.Find(PrefectureForecastArea, viewport)); got != 3 {
		t.Errorf("Expected 3 features, got %d", got)
	}
	if got := atlas.Find(TsunamiForecastArea, viewport); got != nil {
		t.Errorf("Expected no features for a missing layer, got %d", len(got))
	}
}

func TestBuildAtlasLayerFilter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	opts := DefaultBuildOptions()
	opts.Layers = append(EssentialLayers(), PrefectureForecastArea, TsunamiForecastArea)
	opts.Logger = zap.New(core)
	opts.LinearScan = true

	atlas, err := BuildAtlas(context.Background(), atlasFixture(), opts)
	if err != nil {
		t.Fatalf("BuildAtlas failed: %v", err)
	}

	want := []LayerID{WorldWithoutJapan, PrimarySubdivisionArea, PrefectureForecastArea, NationalAndRegionForecastArea}
	got := atlas.Layers()
	if len(got) != len(want) {
		t.Fatalf("Expected layers %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected layer %v at %d, got %v", want[i], i, got[i])
		}
	}
	if _, ok := atlas.Layer(MunicipalityWeatherWarningArea); ok {
		t.Error("Expected municipal layer to be filtered out")
	}

	set, _ := atlas.Layer(PrefectureForecastArea)
	if set.index != nil {
		t.Error("Expected no spatial index with LinearScan")
	}
	if got := len(set.Find(orb.Bound{Min: orb.Point{136, 35}, Max: orb.Point{137, 36}})); got != 3 {
		t.Errorf("Expected 3 features from linear scan, got %d", got)
	}

	if logs.FilterMessage("requested layer not in map container").Len() != 1 {
		t.Error("Expected a warning for the missing tsunami layer")
	}
	if logs.FilterMessage("layer built").Len() != len(want) {
		t.Errorf("Expected %d layer logs, got %d", len(want), logs.FilterMessage("layer built").Len())
	}
	if logs.FilterMessage("atlas built").Len() != 1 {
		t.Error("Expected a summary log")
	}
}

func TestBuildAtlasStructuralError(t *testing.T) {
	maps := atlasFixture()
	maps[TsunamiForecastArea] = topology(nil, PolygonDef{Rings: [][]int32{ring(0)}})

	atlas, err := BuildAtlas(context.Background(), maps, DefaultBuildOptions())
	if atlas != nil {
		t.Error("Expected no partial atlas")
	}
	var se *StructuralError
	if !errors.As(err, &se) {
		t.Fatalf("Expected StructuralError, got %v", err)
	}
	if se.Layer != TsunamiForecastArea {
		t.Errorf("Expected error for %v, got %v", TsunamiForecastArea, se.Layer)
	}
}

func TestBuildAtlasCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildAtlas(ctx, atlasFixture(), DefaultBuildOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestBuildAtlasEmpty(t *testing.T) {
	atlas, err := BuildAtlas(context.Background(), nil, DefaultBuildOptions())
	if err != nil {
		t.Fatalf("BuildAtlas failed: %v", err)
	}
	if len(atlas.Layers()) != 0 {
		t.Errorf("Expected no layers, got %v", atlas.Layers())
	}
	atlas.ClearCaches()
}

func TestPlan(t *testing.T) {
	atlas, err := BuildAtlas(context.Background(), atlasFixture(), DefaultBuildOptions())
	if err != nil {
		t.Fatalf("BuildAtlas failed: %v", err)
	}
	proj := NewWebMercator()

	t.Run("national zoom suppresses lines", func(t *testing.T) {
		frame := atlas.Plan(FrameRequest{
			Projection: proj,
			View:       ViewState{Center: orb.Point{137, 36}, Zoom: 4.5, Width: 800, Height: 600},
		})

		if frame.BaseZoom != 5 || frame.Layer != NationalAndRegionForecastArea {
			t.Fatalf("Expected base 5 national layer, got %d %v", frame.BaseZoom, frame.Layer)
		}
		if len(frame.Items) != 2 {
			t.Fatalf("Expected 2 items, got %d", len(frame.Items))
		}
		if frame.Items[0].Layer != WorldWithoutJapan || frame.Items[0].Kind != Polygon {
			t.Errorf("Expected overseas polygon first, got %v %v", frame.Items[0].Layer, frame.Items[0].Kind)
		}
		if frame.Items[1].Layer != NationalAndRegionForecastArea || frame.Items[1].Kind != Polygon {
			t.Errorf("Expected national polygon second, got %v %v", frame.Items[1].Layer, frame.Items[1].Kind)
		}
	})

	t.Run("prefecture zoom draws lines", func(t *testing.T) {
		frame := atlas.Plan(FrameRequest{
			Projection: proj,
			View:       ViewState{Center: orb.Point{137, 36}, Zoom: 6.2, Width: 800, Height: 600},
		})

		if frame.BaseZoom != 7 || frame.Layer != PrefectureForecastArea {
			t.Fatalf("Expected base 7 prefecture layer, got %d %v", frame.BaseZoom, frame.Layer)
		}
		wantKinds := []FeatureKind{Polygon, Polygon, AdminBoundary, Coastline}
		if len(frame.Items) != len(wantKinds) {
			t.Fatalf("Expected %d items, got %d", len(wantKinds), len(frame.Items))
		}
		for i, k := range wantKinds {
			if frame.Items[i].Kind != k {
				t.Errorf("item %d: expected %v, got %v", i, k, frame.Items[i].Kind)
			}
		}

		for _, item := range frame.Items[1:] {
			for _, path := range item.Paths {
				for _, p := range path {
					if p[0] < 0 || p[0] > 800 || p[1] < 0 || p[1] > 600 {
						t.Errorf("%v point %v is off screen", item.Kind, p)
					}
				}
			}
		}
	})

	t.Run("primary layer beyond zoom 10", func(t *testing.T) {
		frame := atlas.Plan(FrameRequest{
			Projection:   proj,
			View:         ViewState{Center: orb.Point{137, 36}, Zoom: 11.5, Width: 800, Height: 600},
			PrimaryLayer: MunicipalityWeatherWarningArea,
		})
		if frame.Layer != MunicipalityWeatherWarningArea {
			t.Errorf("Expected primary layer, got %v", frame.Layer)
		}
	})
}
