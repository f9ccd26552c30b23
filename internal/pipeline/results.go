package pipeline

import "encoding/json"

// PointJSON is one polygon vertex in original image coordinates.
type PointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PolygonJSON is a region's traced-and-refined contour.
type PolygonJSON struct {
	Points []PointJSON `json:"points"`
}

// RotatedRectangleJSON is a region's minimum-area oriented rectangle, angle
// in radians.
type RotatedRectangleJSON struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle"`
}

// RectangleJSON is a region's axis-aligned enclosing rectangle.
type RectangleJSON struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BoundingBoxJSON exposes all three geometric views of a detected region.
type BoundingBoxJSON struct {
	Polygon          PolygonJSON          `json:"polygon"`
	RotatedRectangle RotatedRectangleJSON `json:"rotatedRectangle"`
	Rectangle        RectangleJSON        `json:"rectangle"`
}

// RegionJSON is one recognized text line in the external result schema.
type RegionJSON struct {
	BoundingBox BoundingBoxJSON `json:"boundingBox"`
	Text        string          `json:"text"`
	Confidence  float64         `json:"confidence"`
}

// PageResult is the external JSON result schema §6 defines: one page (a
// single image, or one page of a multi-page source) and its recognized
// regions.
type PageResult struct {
	PageNumber int          `json:"pageNumber"`
	SourceFile string       `json:"sourceFile,omitempty"`
	VizFile    string       `json:"vizFile,omitempty"`
	Results    []RegionJSON `json:"results"`
}

// ToPageResult converts an internal OcrResult into the external JSON
// schema. sourceFile and vizFile are optional context the CLI attaches;
// pass "" to omit them.
func ToPageResult(pageNumber int, sourceFile, vizFile string, res OcrResult) PageResult {
	out := PageResult{PageNumber: pageNumber, SourceFile: sourceFile, VizFile: vizFile}
	out.Results = make([]RegionJSON, len(res.Regions))
	for i, r := range res.Regions {
		points := make([]PointJSON, len(r.Box.Contour))
		for j, p := range r.Box.Contour {
			points[j] = PointJSON{X: p.X, Y: p.Y}
		}
		out.Results[i] = RegionJSON{
			BoundingBox: BoundingBoxJSON{
				Polygon: PolygonJSON{Points: points},
				RotatedRectangle: RotatedRectangleJSON{
					X: r.Box.Rotated.X, Y: r.Box.Rotated.Y,
					Width: r.Box.Rotated.W, Height: r.Box.Rotated.H,
					Angle: r.Box.Rotated.Angle,
				},
				Rectangle: RectangleJSON{
					X: r.Box.AxisAligned.MinX, Y: r.Box.AxisAligned.MinY,
					Width: r.Box.AxisAligned.Width(), Height: r.Box.AxisAligned.Height(),
				},
			},
			Text:       r.Text,
			Confidence: r.Confidence,
		}
	}
	return out
}

// ToJSON marshals a PageResult as indented JSON.
func ToJSON(page PageResult) (string, error) {
	b, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
