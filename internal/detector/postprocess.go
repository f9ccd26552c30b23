package detector

import (
	"github.com/jrbeckett/speedreader/internal/geometry"
	"github.com/jrbeckett/speedreader/internal/relief"
)

const (
	// binarizeThreshold is the probability-map cutoff separating text from
	// background.
	binarizeThreshold = 0.2
	// openingRadius is the structuring-element radius used to smooth
	// component shapes before boundary tracing.
	openingRadius = 1
	// simplifyEpsilonPx is the Douglas-Peucker tolerance applied to traced
	// boundaries, in tile-canvas pixels.
	simplifyEpsilonPx = 4
	// dilateRatio recovers a DBNet shrink-region polygon back to its
	// original text-region extent.
	dilateRatio = 1.5
)

// StitchProbabilityMaps composites per-tile probability maps (in tiling
// order, each tile.W*tile.H long) into one canvas-sized map, taking the
// per-pixel max over overlapping regions.
func StitchProbabilityMaps(tiling Tiling, tileMaps [][]float32) []float32 {
	canvas := make([]float32, tiling.CanvasW*tiling.CanvasH)
	for i, tile := range tiling.Tiles {
		m := tileMaps[i]
		for ty := 0; ty < tile.H; ty++ {
			cy := tile.Y + ty
			if cy < 0 || cy >= tiling.CanvasH {
				continue
			}
			srcRow := ty * tile.W
			dstRow := cy * tiling.CanvasW
			for tx := 0; tx < tile.W; tx++ {
				cx := tile.X + tx
				if cx < 0 || cx >= tiling.CanvasW {
					continue
				}
				v := m[srcRow+tx]
				idx := dstRow + cx
				if v > canvas[idx] {
					canvas[idx] = v
				}
			}
		}
	}
	return canvas
}

// Postprocess turns a stitched canvas-sized probability map into bounding
// boxes in the original image's coordinate system. scale is the
// letterboxing scale factor applied when the image was resized into the
// tiling canvas (canvas pixels = image pixels * scale).
func Postprocess(canvas []float32, canvasW, canvasH int, scale float64, imgW, imgH int) []geometry.BoundingBox {
	m := relief.Binarize(canvas, canvasW, canvasH, binarizeThreshold)
	m = relief.Opening(m, openingRadius)
	labels, count := relief.FloodFill(m)
	polys := relief.NewTracer(labels, count).TraceAllBoundaries()

	boxes := make([]geometry.BoundingBox, 0, len(polys))
	for _, poly := range polys {
		simplified := geometry.Simplify(poly, simplifyEpsilonPx)
		scaled := simplified.Scale(1 / scale)
		dilated, ok := scaled.Dilate(dilateRatio)
		if !ok {
			continue
		}
		clamped := dilated.Clamp(float64(imgH-1), float64(imgW-1))
		box, ok := geometry.NewBoundingBox(clamped)
		if !ok {
			continue
		}
		boxes = append(boxes, box)
	}
	return boxes
}
