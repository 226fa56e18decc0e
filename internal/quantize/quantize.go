// Package quantize converts between delta-encoded integer coordinates and
// floating point coordinates using a per-map linear scale and offset.
package quantize

import (
	"math"

	"github.com/paulmach/orb"
)

// Delta is one delta-encoded coordinate pair. The first pair of a sequence is
// absolute (a delta from zero); every following pair is relative to the
// previous absolute position.
type Delta [2]int32

// Transform is the linear dequantization applied after accumulation:
// coord = absolute*Scale + Translate, component-wise.
type Transform struct {
	Scale     [2]float64
	Translate [2]float64
}

// Decode accumulates deltas and applies the transform. The output has the
// same length as the input and keeps the component order of the input pairs.
func Decode(points []Delta, t Transform) []orb.Point {
	out := make([]orb.Point, len(points))

	var x, y float64
	for i, d := range points {
		x += float64(d[0])
		y += float64(d[1])
		out[i] = orb.Point{
			x*t.Scale[0] + t.Translate[0],
			y*t.Scale[1] + t.Translate[1],
		}
	}
	return out
}

// Absolute dequantizes a single point that is not delta encoded, such as a
// region center point.
func Absolute(p Delta, t Transform) orb.Point {
	return orb.Point{
		float64(p[0])*t.Scale[0] + t.Translate[0],
		float64(p[1])*t.Scale[1] + t.Translate[1],
	}
}

// Encode is the inverse of Decode: each coordinate is quantized by inverting
// the transform and rounding, then stored as a delta from the previous
// quantized position. Round-tripping through Decode is exact up to one unit
// of quantization.
func Encode(points []orb.Point, t Transform) []Delta {
	out := make([]Delta, len(points))

	var px, py int64
	for i, p := range points {
		qx := quantizeComponent(p[0], t.Scale[0], t.Translate[0])
		qy := quantizeComponent(p[1], t.Scale[1], t.Translate[1])
		out[i] = Delta{int32(qx - px), int32(qy - py)}
		px, py = qx, qy
	}
	return out
}

func quantizeComponent(v, scale, translate float64) int64 {
	if scale == 0 {
		return 0
	}
	return int64(math.Round((v - translate) / scale))
}
