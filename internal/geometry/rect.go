package geometry

import "math"

// AxisAlignedRectangle is a box aligned with the image axes.
type AxisAlignedRectangle struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the rectangle's horizontal extent.
func (r AxisAlignedRectangle) Width() float64 { return r.MaxX - r.MinX }

// Height returns the rectangle's vertical extent.
func (r AxisAlignedRectangle) Height() float64 { return r.MaxY - r.MinY }

// Area returns Width*Height, or 0 for a degenerate rectangle.
func (r AxisAlignedRectangle) Area() float64 {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func boxFromMinMax(minX, minY, maxX, maxY float64) (AxisAlignedRectangle, bool) {
	if maxX < minX || maxY < minY {
		return AxisAlignedRectangle{}, false
	}
	return AxisAlignedRectangle{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}, true
}

// RotatedRectangle is a minimum-area bounding rectangle described by its
// center, extents, and rotation in radians.
type RotatedRectangle struct {
	X, Y, W, H, Angle float64
}

// Corners reconstructs the four corners of the rectangle in TL, TR, BR, BL
// order, where TL/TR are the shorter-to-walk pair along the rectangle's
// "top" edge as established at construction time.
func (r RotatedRectangle) Corners() [4]Point {
	u := Point{X: math.Cos(r.Angle), Y: math.Sin(r.Angle)}
	v := Point{X: -math.Sin(r.Angle), Y: math.Cos(r.Angle)}
	hw, hh := r.W/2, r.H/2

	center := Point{X: r.X, Y: r.Y}
	tl := Point{X: center.X - u.X*hw - v.X*hh, Y: center.Y - u.Y*hw - v.Y*hh}
	tr := Point{X: center.X + u.X*hw - v.X*hh, Y: center.Y + u.Y*hw - v.Y*hh}
	br := Point{X: center.X + u.X*hw + v.X*hh, Y: center.Y + u.Y*hw + v.Y*hh}
	bl := Point{X: center.X - u.X*hw + v.X*hh, Y: center.Y - u.Y*hw + v.Y*hh}
	return [4]Point{tl, tr, br, bl}
}

// ToPolygon returns the rectangle's corners as a clockwise Polygon.
func (r RotatedRectangle) ToPolygon() Polygon {
	c := r.Corners()
	return Polygon{c[0], c[1], c[2], c[3]}
}

// NewRotatedRectangleFromCorners builds a RotatedRectangle from four corners
// produced by the rotating-calipers search (in, generically, TL, TR, BR, BL
// walking order but with an arbitrary starting edge). It normalizes the
// representation per these rules:
//
//   - the longer of the two edge pairs becomes the "top" edge (W is measured
//     along it), so Angle always describes the long axis;
//   - of the two candidate top-edge endpoints, the one with the smaller X
//     (ties broken by smaller Y) is taken as the top-left corner;
//   - for an exact square (equal edge lengths within epsilon), the corner
//     closest to the origin is chosen as top-left instead, to keep the
//     decomposition deterministic;
//   - angles are normalized into (-pi/2, pi/2]; an angle of exactly -pi/2 is
//     folded to +pi/2 so the extremum case has one canonical representation.
func NewRotatedRectangleFromCorners(c [4]Point) RotatedRectangle {
	edgeLen := func(i int) float64 {
		return distance(c[i], c[(i+1)%4])
	}

	e0, e1 := edgeLen(0), edgeLen(1)
	const sqEps = 1e-6

	var topStart int
	isSquare := math.Abs(e0-e1) <= sqEps*math.Max(1, math.Max(e0, e1))
	if isSquare {
		// Exact square: pick the corner closest to the origin as the
		// canonical top-left, walking from there.
		best := 0
		bestD := math.Inf(1)
		for i, p := range c {
			d := p.X*p.X + p.Y*p.Y
			if d < bestD {
				bestD = d
				best = i
			}
		}
		topStart = best
	} else if e0 >= e1 {
		topStart = 0
	} else {
		topStart = 1
	}

	a := c[topStart]
	b := c[(topStart+1)%4]
	cc := c[(topStart+2)%4]
	d := c[(topStart+3)%4]

	// a-b is the long (top) edge. If b is the smaller-X (then smaller-Y)
	// endpoint, start from the opposite long edge instead, which runs the
	// other way, so a is the smaller-X endpoint of the top edge. Squares
	// keep the origin-closest corner chosen above.
	if !isSquare && (b.X < a.X || (b.X == a.X && b.Y < a.Y)) {
		a, b, cc, d = cc, d, a, b
	}

	w := distance(a, b)
	h := distance(b, cc)
	angle := math.Atan2(b.Y-a.Y, b.X-a.X)

	angle = normalizeHalfTurn(angle)

	center := Point{
		X: (a.X + b.X + cc.X + d.X) / 4,
		Y: (a.Y + b.Y + cc.Y + d.Y) / 4,
	}

	return RotatedRectangle{X: center.X, Y: center.Y, W: w, H: h, Angle: angle}
}

// normalizeHalfTurn folds an angle into (-pi/2, pi/2], treating exactly -pi/2
// as the canonical +pi/2 representative.
func normalizeHalfTurn(angle float64) float64 {
	for angle <= -math.Pi/2 {
		angle += math.Pi
	}
	for angle > math.Pi/2 {
		angle -= math.Pi
	}
	if angle == -math.Pi/2 {
		angle = math.Pi / 2
	}
	return angle
}

// BoundingBox ties together the three geometric representations of a
// detected region: the refined polygon contour, its minimum-area rotated
// rectangle, and that rectangle's axis-aligned enclosure. Construction
// guarantees Rotated = MinimumAreaRectangle(ConvexHull(Contour)) and
// AxisAligned = enclosing box of Rotated's corners, with floor(min)/ceil(max)
// bounds.
type BoundingBox struct {
	Contour     Polygon
	Rotated     RotatedRectangle
	AxisAligned AxisAlignedRectangle
}

// NewBoundingBox derives the rotated and axis-aligned representations from a
// polygon contour. Returns false if the contour's convex hull or
// minimum-area rectangle cannot be computed (fewer than 3 usable points, or
// all points collinear).
func NewBoundingBox(contour Polygon) (BoundingBox, bool) {
	hull, ok := ConvexHull(contour)
	if !ok {
		return BoundingBox{}, false
	}
	rect, ok := MinimumAreaRectangle(hull)
	if !ok {
		return BoundingBox{}, false
	}
	corners := rect.Corners()
	aabb, ok := boxFromMinMax(
		math.Floor(math.Min(math.Min(corners[0].X, corners[1].X), math.Min(corners[2].X, corners[3].X))),
		math.Floor(math.Min(math.Min(corners[0].Y, corners[1].Y), math.Min(corners[2].Y, corners[3].Y))),
		math.Ceil(math.Max(math.Max(corners[0].X, corners[1].X), math.Max(corners[2].X, corners[3].X))),
		math.Ceil(math.Max(math.Max(corners[0].Y, corners[1].Y), math.Max(corners[2].Y, corners[3].Y))),
	)
	if !ok {
		return BoundingBox{}, false
	}
	return BoundingBox{Contour: contour.Clone(), Rotated: rect, AxisAligned: aabb}, true
}
