// Package geometry implements the point/polygon/rectangle primitives used by
// the detector's post-processing stage: convex hulls, minimum-area rotated
// rectangles, polygon offsetting and simplification, and oriented crops.
package geometry

import "math"

// Point is a 2-D coordinate used for geometric math.
type Point struct {
	X, Y float64
}

// IPoint is an integer-grid point used for relief-map and tiling work.
type IPoint struct {
	X, Y int32
}

func distance(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Hypot(dx, dy)
}

func dist2(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// crossZ returns the Z component of (a-o) x (b-o). Positive means a left turn
// when walking o -> a -> b.
func crossZ(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
