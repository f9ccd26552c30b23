// Package relief implements the binary-grid morphology and boundary-tracing
// kernel used to turn a detector probability map into region contours:
// binarization, erosion/dilation/opening, flood-fill labeling, and
// Moore-neighbourhood boundary tracing.
package relief

import "fmt"

// Map is a binary occupancy grid over a W x H raster, stored row-major.
type Map struct {
	W, H int
	data []bool
}

// NewMap allocates a cleared W x H map.
func NewMap(w, h int) *Map {
	return &Map{W: w, H: h, data: make([]bool, w*h)}
}

func (m *Map) idx(x, y int) int { return y*m.W + x }

// InBounds reports whether (x,y) is a valid grid coordinate.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.W && y < m.H
}

// At returns the value at (x,y). Out-of-bounds coordinates read as false.
func (m *Map) At(x, y int) bool {
	if !m.InBounds(x, y) {
		return false
	}
	return m.data[m.idx(x, y)]
}

// Set assigns the value at (x,y). Panics on out-of-bounds coordinates, since
// every caller in this package works from a bounds-checked loop.
func (m *Map) Set(x, y int, v bool) {
	if !m.InBounds(x, y) {
		panic(fmt.Sprintf("relief: Set out of bounds (%d,%d) on %dx%d map", x, y, m.W, m.H))
	}
	m.data[m.idx(x, y)] = v
}

// Clone returns an independent copy of the map.
func (m *Map) Clone() *Map {
	out := &Map{W: m.W, H: m.H, data: make([]bool, len(m.data))}
	copy(out.data, m.data)
	return out
}

// Binarize thresholds a dense float32 probability map (row-major, len ==
// w*h) into a Map: pixels strictly greater than thresh become foreground.
func Binarize(probMap []float32, w, h int, thresh float32) *Map {
	m := NewMap(w, h)
	for i, v := range probMap {
		if i >= len(m.data) {
			break
		}
		m.data[i] = v > thresh
	}
	return m
}
