package geometry

import "sort"

const collinearEps = 1e-8

// ConvexHull computes the convex hull of pts using a Graham scan. The anchor
// is the point of minimum Y (ties broken by minimum X); the remaining points
// are sorted by polar angle around the anchor, with collinear ties broken by
// distance (closer first) so that only the farthest of a collinear run
// survives the scan. Returns false when fewer than 3 points are given or the
// points are all collinear.
func ConvexHull(pts []Point) (Polygon, bool) {
	if len(pts) < 3 {
		return nil, false
	}

	anchor := pts[0]
	for _, p := range pts[1:] {
		if p.Y < anchor.Y || (p.Y == anchor.Y && p.X < anchor.X) {
			anchor = p
		}
	}

	rest := make([]Point, 0, len(pts)-1)
	for _, p := range pts {
		if p.X == anchor.X && p.Y == anchor.Y {
			continue
		}
		rest = append(rest, p)
	}
	if len(rest) < 2 {
		return nil, false
	}

	sort.Slice(rest, func(i, j int) bool {
		ci := crossZ(anchor, rest[i], rest[j])
		if ci != 0 {
			return ci > 0 // smaller polar angle first
		}
		return dist2(anchor, rest[i]) < dist2(anchor, rest[j])
	})

	stack := make([]Point, 0, len(rest)+1)
	stack = append(stack, anchor)

	var lastPopped *Point
	for i, p := range rest {
		isLast := i == len(rest)-1
		for len(stack) >= 2 && crossZ(stack[len(stack)-2], stack[len(stack)-1], p) <= 0 {
			if isLast {
				popped := stack[len(stack)-1]
				lastPopped = &popped
			}
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, p)
	}

	if lastPopped != nil && len(stack) >= 2 {
		if crossZ(stack[len(stack)-1], anchor, *lastPopped) > 0 {
			stack = append(stack, *lastPopped)
		}
	}

	if len(stack) < 3 {
		return nil, false
	}
	if allCollinear(stack) {
		return nil, false
	}
	return Polygon(stack), true
}

func allCollinear(pts []Point) bool {
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		c := pts[(i+2)%len(pts)]
		if dist2(a, b) < collinearEps || dist2(b, c) < collinearEps {
			continue
		}
		if crossZ(a, b, c) > collinearEps || crossZ(a, b, c) < -collinearEps {
			return false
		}
	}
	return true
}
