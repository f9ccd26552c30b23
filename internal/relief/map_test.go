package relief

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBinarize(t *testing.T) {
	probMap := []float32{0.1, 0.9, 0.4, 0.6}
	m := Binarize(probMap, 2, 2, 0.5)

	require.False(t, m.At(0, 0))
	require.True(t, m.At(1, 0))
	require.False(t, m.At(0, 1))
	require.True(t, m.At(1, 1))
}

func TestMapOutOfBoundsReadsFalse(t *testing.T) {
	m := NewMap(3, 3)
	require.False(t, m.At(-1, 0))
	require.False(t, m.At(3, 0))
	require.False(t, m.At(0, 3))
}

func TestMapSetPanicsOutOfBounds(t *testing.T) {
	m := NewMap(2, 2)
	require.Panics(t, func() { m.Set(5, 5, true) })
}

func TestMapCloneIndependence(t *testing.T) {
	m := NewMap(2, 2)
	m.Set(0, 0, true)
	clone := m.Clone()
	clone.Set(1, 1, true)

	require.True(t, m.At(0, 0))
	require.False(t, m.At(1, 1))
	require.True(t, clone.At(1, 1))
}
