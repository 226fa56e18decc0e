// Package mpk reads and writes the compressed MessagePack container that holds
// one quantized topology per map layer.
//
// The container is a MessagePack map keyed by layer number. Each value is an
// array-encoded topology record:
//
//	[scale [x, y], translate [x, y], polygons, arcs, centers]
//
// where a polygon is [rings [][]int32, code int32|nil], an arc is
// [[[dx, dy]...], type] and centers map a region code to one [x, y] point.
//
// The encoded map is normally wrapped in an LZ4 block array: a MessagePack
// array whose first element is extension 98 holding the uncompressed length
// of every block, followed by one bin value per LZ4 block. The single-block
// extension 99 form and bare MessagePack are accepted as well.
package mpk

import (
	"errors"

	"github.com/beetlebugorg/topomap/internal/quantize"
)

// Arc type values as stored in the container.
const (
	ArcCoastline uint8 = 0
	ArcAdmin     uint8 = 1
	ArcArea      uint8 = 2
)

// Extension type codes of the compressed forms.
const (
	extBlock      int8 = 99
	extBlockArray int8 = 98
)

// Sentinel errors. Every decoding failure wraps exactly one of them.
var (
	ErrTruncated      = errors.New("truncated stream")
	ErrSchema         = errors.New("schema mismatch")
	ErrUnknownArcType = errors.New("unknown arc type")
	ErrCorruptBlock   = errors.New("corrupt compressed block")
)

// Collection maps a layer number to its topology.
type Collection map[int32]*Map

// Map is one decoded topology record.
type Map struct {
	Scale        [2]float64
	Translate    [2]float64
	Polygons     []Polygon
	Arcs         []Arc
	CenterPoints map[int32]quantize.Delta
}

// Polygon is a list of rings of signed arc references.
type Polygon struct {
	Rings [][]int32
	Code  *int32
}

// Arc is a delta-encoded polyline with its classification.
type Arc struct {
	Points []quantize.Delta
	Type   uint8
}

// Compression selects the container wrapping used by Encode.
type Compression int

const (
	// CompressionBlockArray splits the payload into LZ4 blocks (extension 98).
	CompressionBlockArray Compression = iota
	// CompressionBlock compresses the payload as one LZ4 block (extension 99).
	CompressionBlock
	// CompressionNone writes bare MessagePack.
	CompressionNone
)

func validArcType(t int64) bool {
	return t >= int64(ArcCoastline) && t <= int64(ArcArea)
}
