// Package pipeline wires the detector and recognizer together into the
// single-image and streaming read operations the rest of the module
// exposes, owning the shared task pool that backpressures how many images
// are in flight at once.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/jrbeckett/speedreader/internal/detector"
	"github.com/jrbeckett/speedreader/internal/ocrerr"
	"github.com/jrbeckett/speedreader/internal/recognizer"
	"github.com/jrbeckett/speedreader/internal/taskpool"
)

// Ticket is an admitted-but-maybe-not-yet-complete read, mirroring the
// engine's own admission/completion split one level up: ReadOne returns as
// soon as the image's processing has been admitted into the task pool, and
// Wait blocks for the image to actually finish.
type Ticket struct {
	admitted chan struct{}
	done     chan struct{}
	result   OcrResult
	err      error
}

// Wait blocks until the ticket's image has been fully processed, or ctx is
// canceled first.
func (t *Ticket) Wait(ctx context.Context) (OcrResult, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return OcrResult{}, ctx.Err()
	}
}

// Outcome is one image's result on a ReadMany stream.
type Outcome struct {
	Result OcrResult
	Err    error
}

// Pipeline is the orchestrator: one image in, detect then recognize, with a
// task pool sized off the detector's and recognizer's own engine capacity so
// that admission pressure upstream roughly matches the inference throughput
// downstream.
type Pipeline struct {
	detector   *detector.Detector
	recognizer *recognizer.Recognizer
	pool       *taskpool.Pool
	profiler   Profiler
}

// New builds a Pipeline around an already-constructed detector and
// recognizer. The task pool's worker count is ceil(1.5 * (detector capacity
// + recognizer capacity)), giving the pool enough concurrent images in
// flight to keep both engines saturated without unbounded queuing.
func New(det *detector.Detector, rec *recognizer.Recognizer) (*Pipeline, error) {
	if det == nil || rec == nil {
		return nil, fmt.Errorf("pipeline: detector and recognizer are required")
	}
	size := int(math.Ceil(1.5 * float64(det.CurrentMaxCapacity()+rec.CurrentMaxCapacity())))
	if size < 1 {
		size = 1
	}
	return &Pipeline{
		detector:   det,
		recognizer: rec,
		pool:       taskpool.NewPool(size, size),
	}, nil
}

// Snapshot exposes the pipeline's cumulative throughput metrics.
func (p *Pipeline) Snapshot() map[string]any {
	return p.profiler.Snapshot()
}

// Close stops the underlying task pool, waiting for in-flight images to
// finish.
func (p *Pipeline) Close() error {
	return p.pool.Close()
}

// ReadOne admits img for processing and returns a Ticket as soon as it has
// claimed a worker slot; the caller waits on the ticket separately to learn
// the actual result. This mirrors the engine façade's own Task<Task<...>>
// contract one level up the stack.
func (p *Pipeline) ReadOne(ctx context.Context, img image.Image) (*Ticket, error) {
	t := &Ticket{admitted: make(chan struct{}), done: make(chan struct{})}
	submitErrCh := make(chan error, 1)

	go func() {
		factory := func(taskCtx context.Context) error {
			close(t.admitted)
			t.result, t.err = p.processImage(taskCtx, img)
			close(t.done)
			return t.err
		}
		submitErrCh <- p.pool.Submit(ctx, factory)
	}()

	select {
	case <-t.admitted:
		return t, nil
	case err := <-submitErrCh:
		select {
		case <-t.admitted:
			// Factory ran (and Submit's return is just its wrapped
			// error, already captured on t); the ticket is valid.
			return t, nil
		default:
			return nil, err
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ReadMany processes a stream of images, preserving input order on the
// output stream even though images may complete out of order underneath:
// admission (and therefore the degree of overlap across images) is
// governed by the task pool, while a single background goroutine drains
// completions in the order images were admitted.
func (p *Pipeline) ReadMany(ctx context.Context, images <-chan image.Image) <-chan Outcome {
	out := make(chan Outcome)
	order := make(chan *Ticket)

	go func() {
		defer close(order)
		for img := range images {
			ticket, err := p.ReadOne(ctx, img)
			if err != nil {
				ticket = failedTicket(err)
			}
			select {
			case order <- ticket:
			case <-ctx.Done():
				return
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	go func() {
		defer close(out)
		for ticket := range order {
			res, err := ticket.Wait(ctx)
			select {
			case out <- Outcome{Result: res, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func failedTicket(err error) *Ticket {
	t := &Ticket{admitted: make(chan struct{}), done: make(chan struct{})}
	close(t.admitted)
	t.err = err
	close(t.done)
	return t
}

// processImage runs detection to completion before recognition starts (the
// recognizer crops against the same source image using the detector's
// boxes, so there is no useful overlap between the two stages for a single
// image), then asserts the one invariant that must never be violated: every
// detected region yields exactly one recognition.
func (p *Pipeline) processImage(ctx context.Context, img image.Image) (OcrResult, error) {
	bounds := img.Bounds()

	detStart := time.Now()
	boxes, err := p.detector.Detect(ctx, img)
	detNs := time.Since(detStart).Nanoseconds()
	if err != nil {
		return OcrResult{}, err
	}

	recStart := time.Now()
	recs, err := p.recognizer.Recognize(ctx, img, boxes)
	recNs := time.Since(recStart).Nanoseconds()
	if err != nil {
		return OcrResult{}, err
	}

	if len(boxes) != len(recs) {
		return OcrResult{}, ocrerr.New(ocrerr.PipelineShapeMismatch,
			fmt.Errorf("pipeline: detected %d regions but recognized %d", len(boxes), len(recs)))
	}

	regions := make([]Region, len(boxes))
	for i := range boxes {
		regions[i] = Region{Box: boxes[i], Text: recs[i].Text, Confidence: recs[i].Confidence}
	}
	p.profiler.Record(detNs, recNs, len(regions))

	return OcrResult{Width: bounds.Dx(), Height: bounds.Dy(), Regions: regions}, nil
}
