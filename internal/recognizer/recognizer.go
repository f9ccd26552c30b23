// Package recognizer crops oriented text regions out of an image, runs them
// through the recognition model, and decodes the resulting logits into text
// via greedy CTC. Grounded on the teacher's internal/recognizer
// (dictionary.go/ctc.go kept close to original; recognizer.go/inference.go
// rewritten to crop via internal/geometry and submit through
// internal/engine instead of owning an ONNX session and orientation
// pipeline directly).
package recognizer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/jrbeckett/speedreader/internal/engine"
	"github.com/jrbeckett/speedreader/internal/geometry"
	"github.com/jrbeckett/speedreader/internal/imgtensor"
	"github.com/jrbeckett/speedreader/internal/mempool"
	"github.com/jrbeckett/speedreader/internal/ocrerr"
)

// Config controls the recognizer's fixed input geometry.
type Config struct {
	// InputHeight is the model's fixed input height (48 for PP-OCRv5's
	// recognition models).
	InputHeight int
	// InputWidth is the model's fixed input width; crops are letterboxed
	// (never upscaled) into it with mid-gray padding (see padColor).
	InputWidth int
	// Clean, when non-nil, is applied to every decoded string before it is
	// returned.
	Clean *CleanOptions
}

// DefaultConfig returns PP-OCRv5's recognition input geometry with the
// default text cleanup applied.
func DefaultConfig() Config {
	opts := DefaultCleanOptions()
	return Config{InputHeight: 48, InputWidth: 320, Clean: &opts}
}

func (c Config) validate() error {
	if c.InputHeight <= 0 || c.InputWidth <= 0 {
		return fmt.Errorf("recognizer: invalid input size %dx%d", c.InputWidth, c.InputHeight)
	}
	return nil
}

// Recognition is one decoded text line and its confidence, in the geometric
// mean-of-per-character-probability sense §4.5 defines.
type Recognition struct {
	Text       string
	Confidence float64
}

// Recognizer crops each detected region's oriented rectangle, resizes it to
// the recognition model's fixed input height, runs inference through an
// injected engine façade, and CTC-decodes the result.
type Recognizer struct {
	cfg    Config
	engine *engine.Facade
	dict   *CharacterDictionary
}

// New builds a Recognizer around an already-constructed inference engine
// façade and character dictionary.
func New(cfg Config, eng *engine.Facade, dict *CharacterDictionary) (*Recognizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if dict == nil {
		return nil, fmt.Errorf("recognizer: dictionary is required")
	}
	return &Recognizer{cfg: cfg, engine: eng, dict: dict}, nil
}

// Recognize crops and recognizes each of boxes against img. Every crop is
// submitted to the engine independently (same admit-then-complete two-stage
// task the detector uses), so recognition work for one image overlaps
// across boxes up to the engine's current parallelism. Returns one
// Recognition per box, in input order.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image, boxes []geometry.BoundingBox) ([]Recognition, error) {
	tickets := make([]*engine.Ticket, len(boxes))
	buffers := make([][]float32, len(boxes))

	for i, box := range boxes {
		tensor, err := r.prepare(img, box)
		if err != nil {
			return nil, err
		}
		ticket, err := r.engine.Run(ctx, tensor.Data, [3]int64{tensor.Shape[1], tensor.Shape[2], tensor.Shape[3]})
		if err != nil {
			mempool.PutFloat32(tensor.Data)
			return nil, ocrerr.New(ocrerr.InferenceKernelFailure, err)
		}
		tickets[i] = ticket
		buffers[i] = tensor.Data
	}

	out := make([]Recognition, len(boxes))
	for i, ticket := range tickets {
		result, err := ticket.Wait(ctx)
		mempool.PutFloat32(buffers[i])
		if err != nil {
			return nil, ocrerr.New(ocrerr.InferenceExecution, err)
		}
		res, ok := result.(engine.Result)
		if !ok {
			return nil, ocrerr.New(ocrerr.InferenceKernelFailure, fmt.Errorf("recognizer: unexpected engine result type %T", result))
		}
		out[i] = r.decode(res)
	}
	return out, nil
}

// padColor is mid-gray (127.5 rounded down), the neutral value under the
// recognizer's /127.5 - 1 normalization: it maps to ~0 instead of the -1
// extreme a black pad would introduce along letterboxed edges.
var padColor = color.RGBA{R: 127, G: 127, B: 127, A: 255}

// prepare crops box's oriented rectangle out of img, aspect-resizes it into
// the model's fixed [3, InputHeight, InputWidth] input with mid-gray
// padding, and normalizes pixels into [-1, 1].
func (r *Recognizer) prepare(img image.Image, box geometry.BoundingBox) (imgtensor.Tensor, error) {
	cropW := max(1, int(math.Ceil(box.Rotated.W)))
	cropH := max(1, int(math.Ceil(box.Rotated.H)))
	cropped := geometry.OrientedCrop(img, box.Rotated, cropW, cropH)

	resized, _, err := imgtensor.AspectResize(cropped, r.cfg.InputWidth, r.cfg.InputHeight, imgtensor.LetterboxTopLeft, padColor)
	if err != nil {
		return imgtensor.Tensor{}, ocrerr.New(ocrerr.InvalidImageFormat, err)
	}
	return imgtensor.ToNormalizedChwTensor(resized, imgtensor.SignedUnitNormalization())
}

// decode runs greedy CTC decoding over one recognition engine result. The
// result's shape is the batch-stripped [T, K, 1] logits tensor the
// recognition model produces (rank 3 including batch, so the façade's fixed
// 3-slot Shape leaves one trailing padding dimension of 1 after stripping
// batch).
func (r *Recognizer) decode(res engine.Result) Recognition {
	shape := []int64{1, res.Shape[0], res.Shape[1]}
	sequences := DecodeCTCGreedy(res.Data, shape, BlankIndex, false)
	if len(sequences) == 0 {
		return Recognition{}
	}
	seq := sequences[0]
	text := r.dict.DecodeIndices(seq.Collapsed)
	if r.cfg.Clean != nil {
		text = PostProcessText(text, *r.cfg.Clean)
	}
	return Recognition{Text: text, Confidence: SequenceConfidence(seq.CollapsedProb)}
}

// CurrentMaxCapacity exposes the underlying engine's parallelism, so a
// pipeline can size its task pool from it.
func (r *Recognizer) CurrentMaxCapacity() int {
	return r.engine.CurrentMaxCapacity()
}
