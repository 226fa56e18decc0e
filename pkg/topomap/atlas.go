package topomap

import (
	"context"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Atlas holds the feature sets of several layers.
type Atlas struct {
	sets map[LayerID]*FeatureSet
}

type builtLayer struct {
	id  LayerID
	set *FeatureSet
}

// BuildAtlas builds the feature set of every selected layer on a bounded
// worker pool. Layers are independent of each other; the first failure
// cancels the remaining work and no partial atlas is returned.
//
// Example:
//
//	maps, err := topomap.LoadLayers("map.mpk.lz4")
//	if err != nil {
//	    return err
//	}
//	opts := topomap.DefaultBuildOptions()
//	opts.Layers = topomap.EssentialLayers()
//	opts.Progress = func(built, total int) {
//	    fmt.Printf("\rBuilding: %d/%d", built, total)
//	}
//	atlas, err := topomap.BuildAtlas(ctx, maps, opts)
func BuildAtlas(ctx context.Context, maps map[LayerID]*TopologyMap, opts BuildOptions) (*Atlas, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ids := selectLayers(maps, opts.Layers, log)
	if len(ids) == 0 {
		return &Atlas{sets: map[LayerID]*FeatureSet{}}, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(ids) {
		workers = len(ids)
	}

	total := len(ids)
	var built atomic.Int64
	start := time.Now()

	p := pool.NewWithResults[builtLayer]().
		WithMaxGoroutines(workers).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for _, id := range ids {
		id := id
		m := maps[id]
		p.Go(func(ctx context.Context) (builtLayer, error) {
			// Skipped after cancellation; the cause is reported once below.
			if ctx.Err() != nil {
				return builtLayer{}, nil
			}

			layerStart := time.Now()
			set, err := buildFeatureSet(id, m, opts.Params, !opts.LinearScan)
			if err != nil {
				log.Error("layer build failed", zap.Stringer("layer", id), zap.Error(err))
				return builtLayer{}, err
			}

			log.Debug("layer built",
				zap.Stringer("layer", id),
				zap.Int("lines", len(set.lines)),
				zap.Int("polygons", len(set.polygons)),
				zap.Duration("duration", time.Since(layerStart)))

			n := built.Add(1)
			if opts.Progress != nil {
				opts.Progress(int(n), total)
			}
			return builtLayer{id: id, set: set}, nil
		})
	}

	results, err := p.Wait()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a := &Atlas{sets: make(map[LayerID]*FeatureSet, len(results))}
	for _, r := range results {
		if r.set != nil {
			a.sets[r.id] = r.set
		}
	}
	log.Info("atlas built",
		zap.Int("layers", len(a.sets)),
		zap.Int("workers", workers),
		zap.Duration("duration", time.Since(start)))
	return a, nil
}

func selectLayers(maps map[LayerID]*TopologyMap, filter []LayerID, log *zap.Logger) []LayerID {
	var ids []LayerID
	if filter == nil {
		for id := range maps {
			ids = append(ids, id)
		}
	} else {
		for _, id := range filter {
			if _, ok := maps[id]; !ok {
				log.Warn("requested layer not in map container", zap.Stringer("layer", id))
				continue
			}
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	slices.Sort(ids)
	return ids
}

// Layer returns the feature set of a layer, if it was built.
func (a *Atlas) Layer(id LayerID) (*FeatureSet, bool) {
	s, ok := a.sets[id]
	return s, ok
}

// Layers returns the built layers in ascending order.
func (a *Atlas) Layers() []LayerID {
	ids := make([]LayerID, 0, len(a.sets))
	for id := range a.sets {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Find returns the features of a layer intersecting viewport. A layer that
// was not built yields no features.
func (a *Atlas) Find(id LayerID, viewport orb.Bound) []*Feature {
	s, ok := a.sets[id]
	if !ok {
		return nil
	}
	return s.Find(viewport)
}

// ClearCaches drops the simplified geometry of every layer.
func (a *Atlas) ClearCaches() {
	for _, s := range a.sets {
		s.ClearCaches()
	}
}
