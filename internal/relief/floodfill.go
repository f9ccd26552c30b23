package relief

// Labels is a dense, row-major component-label grid: 0 means background,
// and each connected foreground region is assigned a label starting at 1.
type Labels struct {
	W, H int
	data []int
}

func (l *Labels) idx(x, y int) int { return y*l.W + x }

// At returns the label at (x,y), or 0 for out-of-bounds coordinates.
func (l *Labels) At(x, y int) int {
	if x < 0 || y < 0 || x >= l.W || y >= l.H {
		return 0
	}
	return l.data[l.idx(x, y)]
}

// FloodFill performs 4-connected flood fill labeling over the whole map,
// assigning each connected foreground component a distinct label in
// discovery order (raster scan: top-to-bottom, left-to-right). It returns
// the label grid and the number of components found.
func FloodFill(m *Map) (*Labels, int) {
	labels := &Labels{W: m.W, H: m.H, data: make([]int, m.W*m.H)}
	next := 1

	queue := make([]int, 0, m.W*m.H/4+1)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !m.At(x, y) || labels.At(x, y) != 0 {
				continue
			}
			label := next
			next++

			queue = queue[:0]
			queue = append(queue, y*m.W+x)
			labels.data[y*m.W+x] = label

			for len(queue) > 0 {
				cur := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				cx, cy := cur%m.W, cur/m.W

				neighbors := [4][2]int{{cx + 1, cy}, {cx - 1, cy}, {cx, cy + 1}, {cx, cy - 1}}
				for _, n := range neighbors {
					nx, ny := n[0], n[1]
					if !m.At(nx, ny) {
						continue
					}
					if labels.At(nx, ny) != 0 {
						continue
					}
					labels.data[labels.idx(nx, ny)] = label
					queue = append(queue, ny*m.W+nx)
				}
			}
		}
	}

	return labels, next - 1
}
