package topomap

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/beetlebugorg/topomap/internal/mpk"
)

// Loader reads map containers into per-layer topologies.
//
// Create a loader with NewLoader and use Load or LoadWithOptions.
type Loader interface {
	// Load reads the container at path.
	//
	// Returns a *FormatError if the container is truncated, holds an unknown
	// arc type or does not match the expected record layout.
	Load(path string) (map[LayerID]*TopologyMap, error)

	// LoadWithOptions reads the container at path with custom options.
	LoadWithOptions(path string, opts LoadOptions) (map[LayerID]*TopologyMap, error)
}

// LoadOptions configures container decoding.
type LoadOptions struct {
	// AxisOrder of the decoded coordinate pairs.
	AxisOrder AxisOrder

	// SkipUnknownLayers drops container keys that are not a known LayerID
	// instead of failing.
	SkipUnknownLayers bool
}

// DefaultLoadOptions returns options matching the published container files.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		AxisOrder:         LatLng,
		SkipUnknownLayers: true,
	}
}

// NewLoader creates a loader with default settings.
//
// Example:
//
//	loader := topomap.NewLoader()
//	layers, err := loader.Load("map.mpk.lz4")
func NewLoader() Loader {
	return &fileLoader{}
}

type fileLoader struct{}

func (l *fileLoader) Load(path string) (map[LayerID]*TopologyMap, error) {
	return l.LoadWithOptions(path, DefaultLoadOptions())
}

func (l *fileLoader) LoadWithOptions(path string, opts LoadOptions) (map[LayerID]*TopologyMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map container: %w", err)
	}
	layers, err := decodeLayers(data, opts)
	if err != nil {
		if fe, ok := err.(*FormatError); ok {
			fe.Path = path
		}
		return nil, err
	}
	return layers, nil
}

// LoadLayers reads the container at path with default options.
func LoadLayers(path string) (map[LayerID]*TopologyMap, error) {
	return NewLoader().Load(path)
}

// LoadLayersFrom reads a whole container from r with default options.
func LoadLayersFrom(r io.Reader) (map[LayerID]*TopologyMap, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read map container: %w", err)
	}
	return DecodeLayers(buf.Bytes(), DefaultLoadOptions())
}

// DecodeLayers decodes an in-memory container.
func DecodeLayers(data []byte, opts LoadOptions) (map[LayerID]*TopologyMap, error) {
	return decodeLayers(data, opts)
}

func decodeLayers(data []byte, opts LoadOptions) (map[LayerID]*TopologyMap, error) {
	coll, err := mpk.Decode(data)
	if err != nil {
		return nil, &FormatError{Err: err}
	}

	layers := make(map[LayerID]*TopologyMap, len(coll))
	for key, m := range coll {
		id := LayerID(key)
		if !id.Valid() {
			if opts.SkipUnknownLayers {
				continue
			}
			return nil, &FormatError{Err: fmt.Errorf("unknown layer key %d: %w", key, ErrSchema)}
		}
		layers[id] = fromContainer(m, opts.AxisOrder)
	}
	return layers, nil
}

// EncodeLayers writes layers as a block-array compressed container.
//
// The coordinate pairs are written as stored; AxisOrder is not part of the
// container.
func EncodeLayers(layers map[LayerID]*TopologyMap) ([]byte, error) {
	coll := make(mpk.Collection, len(layers))
	for id, m := range layers {
		coll[int32(id)] = m.toContainer()
	}
	return mpk.Encode(coll, mpk.CompressionBlockArray)
}
