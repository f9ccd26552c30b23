package geometry

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestOrientedCropAxisAlignedMatchesSolidColor(t *testing.T) {
	src := solidImage(20, 20, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	rect := RotatedRectangle{X: 10, Y: 10, W: 10, H: 10, Angle: 0}

	out := OrientedCrop(src, rect, 8, 8)
	require.Equal(t, 8, out.Bounds().Dx())
	require.Equal(t, 8, out.Bounds().Dy())

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := out.RGBAAt(x, y)
			require.InDelta(t, 200, c.R, 2)
			require.InDelta(t, 100, c.G, 2)
			require.InDelta(t, 50, c.B, 2)
		}
	}
}

func TestOrientedCropSamplesCornersExactly(t *testing.T) {
	// Distinct colors in each quadrant so corner sampling can be told apart
	// from a pixel-center sample that would land half a cell away.
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})  // TL
	src.Set(1, 0, color.RGBA{G: 255, A: 255})  // TR
	src.Set(0, 1, color.RGBA{B: 255, A: 255})  // BL
	src.Set(1, 1, color.RGBA{R: 255, G: 255, A: 255}) // BR

	rect := RotatedRectangle{X: 1, Y: 1, W: 2, H: 2, Angle: 0}
	out := OrientedCrop(src, rect, 2, 2)

	require.Equal(t, color.RGBA{R: 255, A: 255}, out.RGBAAt(0, 0))
	require.Equal(t, color.RGBA{G: 255, A: 255}, out.RGBAAt(1, 0))
	require.Equal(t, color.RGBA{B: 255, A: 255}, out.RGBAAt(0, 1))
	require.Equal(t, color.RGBA{R: 255, G: 255, A: 255}, out.RGBAAt(1, 1))
}

func TestOrientedCropZeroDimensions(t *testing.T) {
	src := solidImage(4, 4, color.RGBA{A: 255})
	rect := RotatedRectangle{X: 2, Y: 2, W: 2, H: 2, Angle: 0}
	out := OrientedCrop(src, rect, 0, 0)
	require.Equal(t, 0, out.Bounds().Dx())
}

func TestOrientedCropClampsOutOfBounds(t *testing.T) {
	src := solidImage(10, 10, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	// Rectangle extends past the image edges.
	rect := RotatedRectangle{X: 0, Y: 0, W: 20, H: 20, Angle: 0}
	out := OrientedCrop(src, rect, 4, 4)
	require.Equal(t, 4, out.Bounds().Dx())
	// Should not panic and should produce some sampled pixel near the source color.
	c := out.RGBAAt(3, 3)
	require.InDelta(t, 10, c.R, 5)
}
