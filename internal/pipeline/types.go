package pipeline

import (
	"github.com/jrbeckett/speedreader/internal/geometry"
)

// Region is one detected-and-recognized text line, keeping the full
// geometric detail (polygon, rotated rectangle, axis-aligned rectangle)
// alongside its decoded text and confidence.
type Region struct {
	Box        geometry.BoundingBox
	Text       string
	Confidence float64
}

// OcrResult is the per-image aggregated output of the pipeline: every
// detected-and-recognized region, in detection discovery order.
type OcrResult struct {
	Width, Height int
	Regions       []Region
}
