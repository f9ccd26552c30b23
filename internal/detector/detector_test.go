package detector

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrbeckett/speedreader/internal/engine"
	"github.com/jrbeckett/speedreader/internal/imgtensor"
)

// uniformForegroundKernel is a fake detection kernel that reports every
// pixel of every tile as foreground, regardless of input content.
func uniformForegroundKernel() engine.FuncKernel {
	return func(_ context.Context, input imgtensor.Tensor) (imgtensor.Tensor, error) {
		h, w := input.Shape[2], input.Shape[3]
		data := make([]float32, h*w)
		for i := range data {
			data[i] = 1.0
		}
		return imgtensor.Tensor{Data: data, Shape: [4]int64{1, 1, h, w}}, nil
	}
}

func TestNewRejectsTileSizeNotDivisibleBy32(t *testing.T) {
	_, err := New(Config{TileWidth: 100, TileHeight: 100}, nil)
	require.Error(t, err)
}

func TestDetectSingleTileFindsOneRegion(t *testing.T) {
	eng := engine.NewCPUEngine(uniformForegroundKernel(), 2)
	defer eng.Close() //nolint:errcheck

	d, err := New(Config{TileWidth: 64, TileHeight: 64}, eng)
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			img.Set(x, y, color.White)
		}
	}

	boxes, err := d.Detect(context.Background(), img)
	require.NoError(t, err)
	assert.Len(t, boxes, 1)
}

func TestDetectMultiTileCoversWholeImage(t *testing.T) {
	eng := engine.NewCPUEngine(uniformForegroundKernel(), 4)
	defer eng.Close() //nolint:errcheck

	d, err := New(Config{TileWidth: 64, TileHeight: 64}, eng)
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 120, 70))
	for y := range 70 {
		for x := range 120 {
			img.Set(x, y, color.White)
		}
	}

	boxes, err := d.Detect(context.Background(), img)
	require.NoError(t, err)
	require.NotEmpty(t, boxes)
	assert.Equal(t, 4, d.CurrentMaxCapacity())
}
