// Package simplify implements Douglas-Peucker polyline reduction for open and
// closed curves.
package simplify

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// DouglasPeucker returns the subset of points whose removal would move the
// curve by more than tolerance. The result never has more points than the
// input and the input is never modified.
//
// Open curves always keep both endpoints. Closed curves are split at the
// vertex farthest from the first point so that the closing edge takes part in
// the distance tests, and the last output point is set equal to the first.
func DouglasPeucker(points []orb.Point, tolerance float64, closed bool) []orb.Point {
	n := len(points)
	if n == 0 {
		return nil
	}
	if n <= 2 {
		out := append([]orb.Point(nil), points...)
		if closed {
			out[n-1] = out[0]
		}
		return out
	}

	tolSq := tolerance * tolerance
	keep := make([]bool, n)
	keep[0] = true
	keep[n-1] = true

	if closed {
		split := farthestFrom(points, points[0])
		if split == 0 {
			// Every vertex coincides with the first one.
			return []orb.Point{points[0], points[0]}
		}
		keep[split] = true
		mark(points, 0, split, tolSq, keep)
		mark(points, split, n-1, tolSq, keep)
	} else {
		mark(points, 0, n-1, tolSq, keep)
	}

	out := make([]orb.Point, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	if closed {
		out[len(out)-1] = out[0]
	}
	return out
}

// mark flags the vertices between first and last that must be kept. It uses
// an explicit stack so long coastlines cannot exhaust the goroutine stack.
func mark(points []orb.Point, first, last int, tolSq float64, keep []bool) {
	stack := [][2]int{{first, last}}

	for len(stack) > 0 {
		span := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		start, end := span[0], span[1]
		if end-start < 2 {
			continue
		}

		maxDist := -1.0
		index := -1
		for i := start + 1; i < end; i++ {
			d := planar.DistanceFromSegmentSquared(points[start], points[end], points[i])
			if d > maxDist {
				maxDist = d
				index = i
			}
		}

		if maxDist > tolSq {
			keep[index] = true
			stack = append(stack, [2]int{start, index}, [2]int{index, end})
		}
	}
}

// farthestFrom returns the index of the vertex farthest from origin, or 0
// when every vertex coincides with it.
func farthestFrom(points []orb.Point, origin orb.Point) int {
	index := 0
	maxDist := 0.0
	for i := 1; i < len(points); i++ {
		if d := planar.DistanceSquared(origin, points[i]); d > maxDist {
			maxDist = d
			index = i
		}
	}
	return index
}
