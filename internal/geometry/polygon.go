package geometry

import "math"

// Polygon is an ordered sequence of points, clockwise by convention after
// hull/rectangle extraction.
type Polygon []Point

// Clone returns an independent copy of the polygon.
func (p Polygon) Clone() Polygon {
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// Area returns the unsigned (shoelace) area of the polygon.
func (p Polygon) Area() float64 {
	return math.Abs(p.signedArea())
}

func (p Polygon) signedArea() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := range n {
		j := (i + 1) % n
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

// Perimeter returns the closed-polygon perimeter length.
func (p Polygon) Perimeter() float64 {
	n := len(p)
	if n < 2 {
		return 0
	}
	total := 0.0
	for i := range n {
		j := (i + 1) % n
		total += distance(p[i], p[j])
	}
	return total
}

// Centroid returns the arithmetic mean of the polygon's vertices. This is a
// simple, fast approximation used as the dilation/scale anchor; it is not the
// area-weighted centroid.
func (p Polygon) Centroid() Point {
	if len(p) == 0 {
		return Point{}
	}
	var cx, cy float64
	for _, pt := range p {
		cx += pt.X
		cy += pt.Y
	}
	n := float64(len(p))
	return Point{X: cx / n, Y: cy / n}
}

// Scale multiplies both coordinates of every point by s, relative to the origin.
func (p Polygon) Scale(s float64) Polygon {
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[i] = Point{X: pt.X * s, Y: pt.Y * s}
	}
	return out
}

// Clamp clips every point into [0,w] x [0,h]. Idempotent.
func (p Polygon) Clamp(h, w float64) Polygon {
	out := make(Polygon, len(p))
	for i, pt := range p {
		x := math.Max(0, math.Min(w, pt.X))
		y := math.Max(0, math.Min(h, pt.Y))
		out[i] = Point{X: x, Y: y}
	}
	return out
}

// BoundingArea returns the area of the polygon's axis-aligned bounding box.
func (p Polygon) BoundingArea() float64 {
	box, ok := p.AxisAlignedBoundingRect()
	if !ok {
		return 0
	}
	return box.Width() * box.Height()
}

// AxisAlignedBoundingRect returns the smallest axis-aligned box enclosing the
// polygon's points, with floor(min)/ceil(max) integer-friendly bounds.
func (p Polygon) AxisAlignedBoundingRect() (AxisAlignedRectangle, bool) {
	if len(p) == 0 {
		return AxisAlignedRectangle{}, false
	}
	minX, minY := p[0].X, p[0].Y
	maxX, maxY := p[0].X, p[0].Y
	for _, pt := range p[1:] {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	return boxFromMinMax(math.Floor(minX), math.Floor(minY), math.Ceil(maxX), math.Ceil(maxY))
}

// Dilate offsets the polygon outward by distance Area*ratio/Perimeter, which
// approximates a Clipper-style round-join offset without pulling in a
// clipping library: each vertex is pushed along the average of its two
// incident edge normals. Returns false for polygons with fewer than three
// points or a zero perimeter; the offset result is not checked for
// self-intersection or collapse.
func (p Polygon) Dilate(ratio float64) (Polygon, bool) {
	n := len(p)
	if n < 3 {
		return nil, false
	}
	perimeter := p.Perimeter()
	if perimeter == 0 {
		return nil, false
	}
	area := p.Area()
	d := area * ratio / perimeter

	out := make(Polygon, n)
	for i := range n {
		prev := p[(i-1+n)%n]
		cur := p[i]
		next := p[(i+1)%n]

		n1 := outwardNormal(prev, cur)
		n2 := outwardNormal(cur, next)
		nx, ny := n1.X+n2.X, n1.Y+n2.Y
		norm := math.Hypot(nx, ny)
		if norm < 1e-12 {
			out[i] = cur
			continue
		}
		nx, ny = nx/norm, ny/norm
		out[i] = Point{X: cur.X + nx*d, Y: cur.Y + ny*d}
	}
	return out, true
}

// outwardNormal returns the unit normal of edge a->b, rotated so it points
// away from the polygon interior assuming clockwise winding (screen
// coordinates, Y down): rotate the edge vector by -90 degrees.
func outwardNormal(a, b Point) Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return Point{}
	}
	return Point{X: dy / length, Y: -dx / length}
}

// Simplify reduces the number of points using Douglas-Peucker with the given
// pixel tolerance. Polygons of <=3 points pass through unchanged.
func Simplify(p Polygon, epsilon float64) Polygon {
	if len(p) <= 3 || epsilon <= 0 {
		return p.Clone()
	}
	keep := make([]bool, len(p))
	dpSimplify(p, 0, len(p)-1, epsilon, keep)
	keep[0] = true
	keep[len(p)-1] = true
	out := make(Polygon, 0, len(p))
	for i, k := range keep {
		if k {
			out = append(out, p[i])
		}
	}
	return out
}

func dpSimplify(pts Polygon, start, end int, eps float64, keep []bool) {
	if end <= start+1 {
		return
	}
	maxDist := -1.0
	index := -1
	a, b := pts[start], pts[end]
	for i := start + 1; i < end; i++ {
		d := perpendicularDistance(pts[i], a, b)
		if d > maxDist {
			maxDist = d
			index = i
		}
	}
	if maxDist > eps {
		dpSimplify(pts, start, index, eps, keep)
		keep[index] = true
		dpSimplify(pts, index, end, eps, keep)
	}
}

func perpendicularDistance(p, a, b Point) float64 {
	vx, vy := b.X-a.X, b.Y-a.Y
	if vx == 0 && vy == 0 {
		return distance(p, a)
	}
	num := math.Abs((p.X-a.X)*vy - (p.Y-a.Y)*vx)
	den := math.Hypot(vx, vy)
	return num / den
}
