package imgtensor

import (
	"image"
	"image/color"
	"testing"

	"github.com/jrbeckett/speedreader/internal/mempool"
	"github.com/stretchr/testify/require"
)

func TestToNormalizedChwTensorUnit(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	img.Set(1, 0, color.NRGBA{R: 0, G: 255, B: 0, A: 255})
	img.Set(0, 1, color.NRGBA{R: 0, G: 0, B: 255, A: 255})
	img.Set(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	tensor, err := ToNormalizedChwTensor(img, UnitNormalization())
	require.NoError(t, err)
	defer mempool.PutFloat32(tensor.Data)

	require.NoError(t, tensor.Validate())
	require.Equal(t, [4]int64{1, 3, 2, 2}, tensor.Shape)

	plane := 4
	require.InDelta(t, 1.0, tensor.Data[0], 1e-3)        // R channel, pixel (0,0)
	require.InDelta(t, 1.0, tensor.Data[plane+1], 1e-3)  // G channel, pixel (1,0)
	require.InDelta(t, 1.0, tensor.Data[2*plane+2], 1e-3) // B channel, pixel (0,1)
}

func TestToNormalizedChwTensorRejectsEmptyImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	_, err := ToNormalizedChwTensor(img, UnitNormalization())
	require.Error(t, err)
}

func TestHwcToChwInPlace(t *testing.T) {
	// 1x2 image, 2 channels, HWC layout: [p0c0, p0c1, p1c0, p1c1]
	src := []float32{1, 2, 3, 4}
	HwcToChwInPlace(src, 1, 2, 2)
	require.Equal(t, []float32{1, 3, 2, 4}, src)
}

func TestSignedUnitNormalizationRange(t *testing.T) {
	norm := SignedUnitNormalization()
	black := (float32(0)/255.0 - norm.Mean[0]) / norm.Std[0]
	white := (float32(255)/255.0 - norm.Mean[0]) / norm.Std[0]
	require.InDelta(t, -1.0, black, 1e-3)
	require.InDelta(t, 1.0, white, 1e-3)
}
