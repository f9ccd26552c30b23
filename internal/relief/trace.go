package relief

import (
	"sync"

	"github.com/jrbeckett/speedreader/internal/geometry"
)

// clockwiseDX/clockwiseDY give the 8-neighbourhood walk order starting at
// East: E, SE, S, SW, W, NW, N, NE.
var (
	clockwiseDX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	clockwiseDY = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

func dirIndex(dx, dy int) int {
	for i := range 8 {
		if clockwiseDX[i] == dx && clockwiseDY[i] == dy {
			return i
		}
	}
	return 0
}

// Tracer walks connected components of a label grid and extracts their
// outer boundary as a polygon using Moore-neighbourhood tracing. A Tracer
// traces each of its components exactly once: TraceAllBoundaries may only
// be called a single time per instance, and a second call panics.
type Tracer struct {
	labels *Labels
	count  int
	mu     sync.Mutex
	traced bool
}

// NewTracer builds a Tracer over a label grid produced by FloodFill.
func NewTracer(labels *Labels, componentCount int) *Tracer {
	return &Tracer{labels: labels, count: componentCount}
}

// TraceAllBoundaries walks every labeled component in raster discovery
// order (component 1 first) and returns each one's outer boundary as a
// polygon in pixel-center coordinates. Components whose boundary cannot be
// traced (shouldn't happen for a label grid produced by FloodFill, but
// guards against a malformed one) are skipped.
//
// Calling this more than once on the same Tracer panics: tracing is a
// one-shot operation tied to this instance's bookkeeping.
func (t *Tracer) TraceAllBoundaries() []geometry.Polygon {
	t.mu.Lock()
	if t.traced {
		t.mu.Unlock()
		panic("relief: TraceAllBoundaries called more than once on the same Tracer")
	}
	t.traced = true
	t.mu.Unlock()

	bounds := make([]componentBounds, t.count+1)
	for i := range bounds {
		bounds[i] = componentBounds{minX: t.labels.W, minY: t.labels.H, maxX: -1, maxY: -1}
	}
	for y := 0; y < t.labels.H; y++ {
		for x := 0; x < t.labels.W; x++ {
			lb := t.labels.At(x, y)
			if lb <= 0 || lb > t.count {
				continue
			}
			b := &bounds[lb]
			b.minX = min(b.minX, x)
			b.maxX = max(b.maxX, x)
			b.minY = min(b.minY, y)
			b.maxY = max(b.maxY, y)
		}
	}

	out := make([]geometry.Polygon, 0, t.count)
	for label := 1; label <= t.count; label++ {
		b := bounds[label]
		if b.maxX < b.minX || b.maxY < b.minY {
			continue
		}
		poly := TraceBoundary(t.labels, label, b)
		if poly != nil {
			out = append(out, poly)
		}
	}
	return out
}

type componentBounds struct {
	minX, minY, maxX, maxY int
}

// TraceBoundary extracts the outer boundary of a single labeled component
// using Moore-neighbourhood tracing, restricted to the component's
// axis-aligned bounding box for efficiency. Returned points are pixel-center
// coordinates in clockwise order. Returns nil if the label has no pixels
// within the given bounds.
func TraceBoundary(labels *Labels, label int, bounds componentBounds) geometry.Polygon {
	isLabel := func(x, y int) bool { return labels.At(x, y) == label }
	isBoundary := func(x, y int) bool {
		if !isLabel(x, y) {
			return false
		}
		return !isLabel(x+1, y) || !isLabel(x-1, y) || !isLabel(x, y+1) || !isLabel(x, y-1)
	}

	sx, sy := -1, -1
	for y := bounds.minY; y <= bounds.maxY && sx == -1; y++ {
		for x := bounds.minX; x <= bounds.maxX; x++ {
			if isBoundary(x, y) {
				sx, sy = x, y
				break
			}
		}
	}
	if sx == -1 {
		for y := bounds.minY; y <= bounds.maxY && sx == -1; y++ {
			for x := bounds.minX; x <= bounds.maxX; x++ {
				if isLabel(x, y) {
					sx, sy = x, y
					break
				}
			}
		}
		if sx == -1 {
			return nil
		}
	}

	cx, cy := sx, sy
	bx, by := sx-1, sy

	pts := make([]geometry.Point, 0, 64)
	push := func(x, y int) {
		p := geometry.Point{X: float64(x), Y: float64(y)}
		n := len(pts)
		if n >= 2 {
			a, b := pts[n-2], pts[n-1]
			v1x, v1y := b.X-a.X, b.Y-a.Y
			v2x, v2y := p.X-b.X, p.Y-b.Y
			if v1x*v2y-v1y*v2x == 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}
	push(cx, cy)

	startCx, startCy, startBx, startBy := cx, cy, bx, by
	maxSteps := labels.W*labels.H*4 + 8

	for steps := 0; ; steps++ {
		if steps > maxSteps {
			break // safety net; should never trigger for a well-formed label grid
		}
		dx, dy := bx-cx, by-cy
		start := (dirIndex(dx, dy) + 1) % 8
		found := false
		for k := range 8 {
			i := (start + k) % 8
			tx, ty := cx+clockwiseDX[i], cy+clockwiseDY[i]
			if isLabel(tx, ty) {
				bx, by = cx, cy
				cx, cy = tx, ty
				if len(pts) == 0 || pts[len(pts)-1].X != float64(cx) || pts[len(pts)-1].Y != float64(cy) {
					push(cx, cy)
				}
				found = true
				break
			}
			bx, by = tx, ty
		}
		if !found {
			break
		}
		if cx == startCx && cy == startCy && bx == startBx && by == startBy {
			break
		}
	}

	if len(pts) >= 2 && pts[0].X == pts[len(pts)-1].X && pts[0].Y == pts[len(pts)-1].Y {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return nil
	}
	return geometry.Polygon(pts)
}
