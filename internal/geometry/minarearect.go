package geometry

import "math"

// MinimumAreaRectangle finds the smallest-area rectangle (at any rotation)
// enclosing a convex hull, using rotating calipers: each hull edge is tried
// as a candidate rectangle side, all hull points are projected onto that
// edge's unit vector and normal, and the projection extents give a
// candidate rectangle area. The smallest-area candidate wins.
//
// hull must already be a convex polygon (e.g. the output of ConvexHull).
// Returns false if hull has fewer than 3 points or all points are collinear.
func MinimumAreaRectangle(hull Polygon) (RotatedRectangle, bool) {
	n := len(hull)
	if n < 3 {
		return RotatedRectangle{}, false
	}

	bestArea := math.Inf(1)
	var bestCorners [4]Point
	found := false

	for i := range n {
		a := hull[i]
		b := hull[(i+1)%n]
		ux, uy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(ux, uy)
		if length < collinearEps {
			continue
		}
		ux, uy = ux/length, uy/length
		vx, vy := -uy, ux

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			dx, dy := p.X-a.X, p.Y-a.Y
			pu := dx*ux + dy*uy
			pv := dx*vx + dy*vy
			minU = math.Min(minU, pu)
			maxU = math.Max(maxU, pu)
			minV = math.Min(minV, pv)
			maxV = math.Max(maxV, pv)
		}

		w := maxU - minU
		h := maxV - minV
		area := w * h
		if area < bestArea {
			bestArea = area
			found = true
			c0 := Point{X: a.X + minU*ux + minV*vx, Y: a.Y + minU*uy + minV*vy}
			c1 := Point{X: a.X + maxU*ux + minV*vx, Y: a.Y + maxU*uy + minV*vy}
			c2 := Point{X: a.X + maxU*ux + maxV*vx, Y: a.Y + maxU*uy + maxV*vy}
			c3 := Point{X: a.X + minU*ux + maxV*vx, Y: a.Y + minU*uy + maxV*vy}
			bestCorners = [4]Point{c0, c1, c2, c3}
		}
	}

	if !found || bestArea < collinearEps {
		return RotatedRectangle{}, false
	}

	return NewRotatedRectangleFromCorners(bestCorners), true
}
