package detector

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/jrbeckett/speedreader/internal/engine"
	"github.com/jrbeckett/speedreader/internal/geometry"
	"github.com/jrbeckett/speedreader/internal/imgtensor"
	"github.com/jrbeckett/speedreader/internal/mempool"
	"github.com/jrbeckett/speedreader/internal/ocrerr"
)

// Config controls a Detector's tiling geometry.
type Config struct {
	// TileWidth and TileHeight are the detection model's fixed input size;
	// each must be divisible by 32, the backbone's stride.
	TileWidth, TileHeight int
}

// DefaultConfig returns the tile geometry PP-OCRv5's detection models were
// exported for.
func DefaultConfig() Config {
	return Config{TileWidth: 960, TileHeight: 960}
}

func (c Config) validate() error {
	if c.TileWidth <= 0 || c.TileWidth%32 != 0 || c.TileHeight <= 0 || c.TileHeight%32 != 0 {
		return fmt.Errorf("detector: tile size %dx%d must be positive and divisible by 32", c.TileWidth, c.TileHeight)
	}
	return nil
}

// Detector tiles an image into the detection model's fixed input size, runs
// one inference call per tile through an injected engine façade, and
// stitches the per-tile probability maps back into bounding boxes in the
// original image's coordinate system.
type Detector struct {
	cfg    Config
	engine *engine.Facade
}

// New builds a Detector around an already-constructed inference engine
// façade (one kernel, one executor - shared process-wide per spec's
// singleton-engine ownership rule).
func New(cfg Config, eng *engine.Facade) (*Detector, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Detector{cfg: cfg, engine: eng}, nil
}

// Detect tiles img, runs detection inference tile by tile (admission is
// awaited sequentially so tile order is preserved, then every tile's
// completion is awaited), and returns the detected regions' bounding boxes
// in img's own coordinate system.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]geometry.BoundingBox, error) {
	bounds := img.Bounds()
	imgW, imgH := bounds.Dx(), bounds.Dy()
	if imgW <= 0 || imgH <= 0 {
		return nil, ocrerr.New(ocrerr.InvalidImageFormat, fmt.Errorf("detector: image has non-positive bounds %dx%d", imgW, imgH))
	}

	tiling := ComputeTiling(imgW, imgH, d.cfg.TileWidth, d.cfg.TileHeight)

	canvas, scale, err := imgtensor.AspectResize(img, tiling.CanvasW, tiling.CanvasH, imgtensor.LetterboxTopLeft, color.Black)
	if err != nil {
		return nil, ocrerr.New(ocrerr.InvalidImageFormat, err)
	}

	tickets, buffers, err := d.submitTiles(ctx, canvas, tiling)
	if err != nil {
		return nil, err
	}

	tileMaps, err := d.awaitTiles(ctx, tickets, buffers, tiling)
	if err != nil {
		return nil, err
	}

	stitched := StitchProbabilityMaps(tiling, tileMaps)
	return Postprocess(stitched, tiling.CanvasW, tiling.CanvasH, scale, imgW, imgH), nil
}

// submitTiles crops and normalises each tile, then submits it to the engine,
// awaiting admission sequentially to preserve tile order. Returns the
// admitted tickets alongside each tile's pooled tensor buffer, which callers
// must return to the pool once the ticket has been waited on.
func (d *Detector) submitTiles(ctx context.Context, canvas *image.NRGBA, tiling Tiling) ([]*engine.Ticket, [][]float32, error) {
	tickets := make([]*engine.Ticket, len(tiling.Tiles))
	buffers := make([][]float32, len(tiling.Tiles))

	for i, tile := range tiling.Tiles {
		crop := imaging.Crop(canvas, image.Rect(tile.X, tile.Y, tile.X+tile.W, tile.Y+tile.H))
		tensor, err := imgtensor.ToNormalizedChwTensor(crop, imgtensor.ImageNetNormalization())
		if err != nil {
			return nil, nil, ocrerr.New(ocrerr.InvalidImageFormat, err)
		}

		ticket, err := d.engine.Run(ctx, tensor.Data, [3]int64{tensor.Shape[1], tensor.Shape[2], tensor.Shape[3]})
		if err != nil {
			mempool.PutFloat32(tensor.Data)
			return nil, nil, ocrerr.New(ocrerr.InferenceKernelFailure, err)
		}
		tickets[i] = ticket
		buffers[i] = tensor.Data
	}
	return tickets, buffers, nil
}

// awaitTiles waits for every tile's completion and returns each tile's
// output probability map in tiling order.
func (d *Detector) awaitTiles(ctx context.Context, tickets []*engine.Ticket, buffers [][]float32, tiling Tiling) ([][]float32, error) {
	tileMaps := make([][]float32, len(tickets))
	for i, ticket := range tickets {
		result, err := ticket.Wait(ctx)
		mempool.PutFloat32(buffers[i])
		if err != nil {
			return nil, ocrerr.New(ocrerr.InferenceExecution, err)
		}
		res, ok := result.(engine.Result)
		if !ok {
			return nil, ocrerr.New(ocrerr.InferenceKernelFailure, fmt.Errorf("detector: unexpected engine result type %T", result))
		}
		tile := tiling.Tiles[i]
		if len(res.Data) != tile.W*tile.H {
			return nil, ocrerr.New(ocrerr.InferenceKernelFailure,
				fmt.Errorf("detector: tile %d output has %d values, expected %dx%d", i, len(res.Data), tile.W, tile.H))
		}
		tileMaps[i] = res.Data
	}
	return tileMaps, nil
}

// CurrentMaxCapacity exposes the underlying engine's parallelism, so a
// pipeline can size its task pool from it.
func (d *Detector) CurrentMaxCapacity() int {
	return d.engine.CurrentMaxCapacity()
}
