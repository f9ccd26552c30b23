package geometry

import (
	"image"
	"image/color"
	"math"
)

// OrientedCrop samples an output width x height image from src along the
// rectangle described by rect, using bilinear interpolation. Source
// coordinates use the pixel-corner convention: destination pixel (dx,dy)
// maps to rect's (u,v) parametric position dx/(width-1), dy/(height-1) (0
// when the corresponding dimension is 1), so dx=0/dy=0 samples exactly at
// TL and dx=width-1/dy=height-1 samples exactly at TR/BL - edges and
// corners are sampled, never replicated. Source coordinates are clamped to
// the source bounds, so crops that extend slightly past the image edge
// degrade gracefully instead of reading garbage.
func OrientedCrop(src image.Image, rect RotatedRectangle, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 {
		return out
	}

	corners := rect.Corners() // TL, TR, BR, BL
	tl, tr, _, bl := corners[0], corners[1], corners[2], corners[3]

	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	for dy := 0; dy < height; dy++ {
		v := 0.0
		if height > 1 {
			v = float64(dy) / float64(height-1)
		}
		// Left and right edge points at this v, interpolated between TL->BL
		// and TR->BR.
		leftX := tl.X + (bl.X-tl.X)*v
		leftY := tl.Y + (bl.Y-tl.Y)*v
		rightX := tr.X + (corners[2].X-tr.X)*v
		rightY := tr.Y + (corners[2].Y-tr.Y)*v

		for dx := 0; dx < width; dx++ {
			u := 0.0
			if width > 1 {
				u = float64(dx) / float64(width-1)
			}
			sx := leftX + (rightX-leftX)*u
			sy := leftY + (rightY-leftY)*u

			sx = clampFloat(sx-float64(bounds.Min.X), 0, float64(srcW-1))
			sy = clampFloat(sy-float64(bounds.Min.Y), 0, float64(srcH-1))

			c := bilinearSample(src, bounds, sx, sy)
			out.Set(dx, dy, c)
		}
	}

	return out
}

func clampFloat(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func bilinearSample(src image.Image, bounds image.Rectangle, sx, sy float64) color.RGBA {
	x0 := int(math.Floor(sx))
	y0 := int(math.Floor(sy))
	x1 := x0 + 1
	y1 := y0 + 1

	maxX := bounds.Dx() - 1
	maxY := bounds.Dy() - 1
	if x1 > maxX {
		x1 = maxX
	}
	if y1 > maxY {
		y1 = maxY
	}

	fx := sx - float64(x0)
	fy := sy - float64(y0)

	c00 := rgbaAt(src, bounds, x0, y0)
	c10 := rgbaAt(src, bounds, x1, y0)
	c01 := rgbaAt(src, bounds, x0, y1)
	c11 := rgbaAt(src, bounds, x1, y1)

	lerp := func(a, b float64, t float64) float64 {
		return a + (b-a)*t
	}
	bilerp := func(v00, v10, v01, v11 uint8) uint8 {
		top := lerp(float64(v00), float64(v10), fx)
		bot := lerp(float64(v01), float64(v11), fx)
		return uint8(math.Round(lerp(top, bot, fy)))
	}

	r := bilerp(c00.R, c10.R, c01.R, c11.R)
	g := bilerp(c00.G, c10.G, c01.G, c11.G)
	b := bilerp(c00.B, c10.B, c01.B, c11.B)
	a := bilerp(c00.A, c10.A, c01.A, c11.A)

	return color.RGBA{R: r, G: g, B: b, A: a}
}

func rgbaAt(src image.Image, bounds image.Rectangle, x, y int) color.RGBA {
	r, g, b, a := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
