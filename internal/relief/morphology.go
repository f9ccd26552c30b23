package relief

// Dilate grows foreground regions using a (2*radius+1) square structuring
// element. The operation is separable: a foreground marker survives a pass
// if any pixel within radius along that axis is foreground, so a 2D OR over
// the square kernel is computed as a horizontal OR pass followed by a
// vertical OR pass, each O(W*H) instead of O(W*H*kernel^2).
func Dilate(m *Map, radius int) *Map {
	if radius <= 0 {
		return m.Clone()
	}
	horiz := passOR(m, radius, true)
	return passOR(horiz, radius, false)
}

// Erode shrinks foreground regions using a (2*radius+1) square structuring
// element, via the same two-pass separable approach as Dilate but with a
// logical AND: a pixel survives only if every pixel within radius along
// both axes is foreground.
func Erode(m *Map, radius int) *Map {
	if radius <= 0 {
		return m.Clone()
	}
	horiz := passAND(m, radius, true)
	return passAND(horiz, radius, false)
}

// Opening removes small foreground noise while preserving the shape of
// larger regions: erode then dilate with the same radius.
func Opening(m *Map, radius int) *Map {
	return Dilate(Erode(m, radius), radius)
}

// Closing fills small background gaps inside foreground regions: dilate
// then erode with the same radius.
func Closing(m *Map, radius int) *Map {
	return Erode(Dilate(m, radius), radius)
}

func passOR(m *Map, radius int, horizontal bool) *Map {
	out := NewMap(m.W, m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			found := false
			for d := -radius; d <= radius && !found; d++ {
				if horizontal {
					found = m.At(x+d, y)
				} else {
					found = m.At(x, y+d)
				}
			}
			out.data[out.idx(x, y)] = found
		}
	}
	return out
}

func passAND(m *Map, radius int, horizontal bool) *Map {
	out := NewMap(m.W, m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			all := true
			for d := -radius; d <= radius && all; d++ {
				var nx, ny int
				if horizontal {
					nx, ny = x+d, y
				} else {
					nx, ny = x, y+d
				}
				// Out-of-bounds neighbours count as background, so erosion
				// shrinks regions that touch the grid edge - matching the
				// boundary behaviour of a direct 2D erosion.
				all = m.At(nx, ny)
			}
			out.data[out.idx(x, y)] = all
		}
	}
	return out
}
