package relief

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTraceBoundaryRectangle(t *testing.T) {
	m := squareMap(10, 10, 2, 2, 6, 6)
	labels, count := FloodFill(m)
	require.Equal(t, 1, count)

	poly := TraceBoundary(labels, 1, componentBounds{minX: 2, minY: 2, maxX: 6, maxY: 6})
	require.NotNil(t, poly)
	require.GreaterOrEqual(t, len(poly), 4)

	box, ok := poly.AxisAlignedBoundingRect()
	require.True(t, ok)
	require.InDelta(t, 2, box.MinX, 1e-9)
	require.InDelta(t, 2, box.MinY, 1e-9)
	require.InDelta(t, 6, box.MaxX, 1e-9)
	require.InDelta(t, 6, box.MaxY, 1e-9)
}

func TestTraceAllBoundariesFindsEachComponent(t *testing.T) {
	m := NewMap(20, 10)
	for x := 1; x < 4; x++ {
		for y := 1; y < 4; y++ {
			m.Set(x, y, true)
		}
	}
	for x := 10; x < 15; x++ {
		for y := 2; y < 7; y++ {
			m.Set(x, y, true)
		}
	}

	labels, count := FloodFill(m)
	require.Equal(t, 2, count)

	tracer := NewTracer(labels, count)
	polys := tracer.TraceAllBoundaries()
	require.Len(t, polys, 2)
}

func TestTraceAllBoundariesPanicsOnSecondCall(t *testing.T) {
	m := squareMap(6, 6, 1, 1, 3, 3)
	labels, count := FloodFill(m)

	tracer := NewTracer(labels, count)
	tracer.TraceAllBoundaries()

	require.Panics(t, func() { tracer.TraceAllBoundaries() })
}

func TestTraceBoundaryEmptyBoundsReturnsNil(t *testing.T) {
	m := NewMap(5, 5)
	labels, _ := FloodFill(m)
	poly := TraceBoundary(labels, 1, componentBounds{minX: 0, minY: 0, maxX: -1, maxY: -1})
	require.Nil(t, poly)
}
