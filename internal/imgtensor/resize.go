package imgtensor

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// LetterboxPolicy controls where the resized image is placed within the
// padded canvas produced by AspectResize.
type LetterboxPolicy int

const (
	// LetterboxCenter centers the resized image within the padded canvas.
	LetterboxCenter LetterboxPolicy = iota
	// LetterboxTopLeft anchors the resized image at (0,0), matching how
	// detector tiles are padded so stitching offsets stay simple integers.
	LetterboxTopLeft
)

// AspectResize scales img to fit within targetW x targetH while preserving
// aspect ratio (never upscaling past the target box), then pads the result
// to exactly targetW x targetH with padValue using policy to place the
// scaled image. Returns the padded image and the scale factor that was
// applied, so callers can map coordinates back to the source.
func AspectResize(img image.Image, targetW, targetH int, policy LetterboxPolicy, padValue color.Color) (*image.NRGBA, float64, error) {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, 0, fmt.Errorf("imgtensor: source image has invalid dimensions %dx%d", srcW, srcH)
	}
	if targetW <= 0 || targetH <= 0 {
		return nil, 0, fmt.Errorf("imgtensor: invalid target dimensions %dx%d", targetW, targetH)
	}

	scale := math.Min(float64(targetW)/float64(srcW), float64(targetH)/float64(srcH))
	if scale > 1.0 {
		scale = 1.0
	}

	newW := max(1, int(float64(srcW)*scale))
	newH := max(1, int(float64(srcH)*scale))

	resized := imaging.Resize(img, newW, newH, imaging.Lanczos)

	canvas := imaging.New(targetW, targetH, padValue)

	var x, y int
	switch policy {
	case LetterboxTopLeft:
		x, y = 0, 0
	default:
		x = (targetW - newW) / 2
		y = (targetH - newH) / 2
	}

	out := imaging.Paste(canvas, resized, image.Pt(x, y))
	return out, scale, nil
}
