package pipeline

import (
	"context"
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrbeckett/speedreader/internal/detector"
	"github.com/jrbeckett/speedreader/internal/engine"
	"github.com/jrbeckett/speedreader/internal/imgtensor"
	"github.com/jrbeckett/speedreader/internal/recognizer"
)

// uniformForegroundKernel reports every pixel of every tile as foreground.
func uniformForegroundKernel() engine.FuncKernel {
	return func(_ context.Context, input imgtensor.Tensor) (imgtensor.Tensor, error) {
		h, w := input.Shape[2], input.Shape[3]
		data := make([]float32, h*w)
		for i := range data {
			data[i] = 1.0
		}
		return imgtensor.Tensor{Data: data, Shape: [4]int64{1, 1, h, w}}, nil
	}
}

// fixedLogitsKernel always spells out the same short sequence as one-hot
// logits, regardless of the crop it receives.
func fixedLogitsKernel(t, k int, indices []int) engine.FuncKernel {
	return func(_ context.Context, _ imgtensor.Tensor) (imgtensor.Tensor, error) {
		data := make([]float32, t*k)
		for step, idx := range indices {
			if step >= t {
				break
			}
			data[step*k+idx] = 10.0
		}
		return imgtensor.Tensor{Data: data, Shape: [4]int64{1, int64(t), int64(k), 1}}, nil
	}
}

// testDictFallback writes a two-character dictionary file ("h", "i") to a
// temp directory and loads it, giving index layout [blank=0, h=1, i=2,
// space=3] - matching fixedLogitsKernel's scripted indices.
func testDictFallback(t *testing.T) *recognizer.CharacterDictionary {
	t.Helper()
	path := t.TempDir() + "/dict.txt"
	require.NoError(t, os.WriteFile(path, []byte("h\ni\n"), 0o600))
	dict, err := recognizer.LoadCharacterDictionary(path)
	require.NoError(t, err)
	return dict
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()

	detEngine := engine.NewCPUEngine(uniformForegroundKernel(), 2)
	t.Cleanup(func() { _ = detEngine.Close() })
	det, err := detector.New(detector.Config{TileWidth: 64, TileHeight: 64}, detEngine)
	require.NoError(t, err)

	recEngine := engine.NewCPUEngine(fixedLogitsKernel(4, 4, []int{1, 1, 2, 0}), 2)
	t.Cleanup(func() { _ = recEngine.Close() })
	rec, err := recognizer.New(recognizer.Config{InputHeight: 48, InputWidth: 64}, recEngine, testDictFallback(t))
	require.NoError(t, err)

	p, err := New(det, rec)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestReadOneProducesRegionsWithMatchingCounts(t *testing.T) {
	p := newTestPipeline(t)

	ticket, err := p.ReadOne(context.Background(), testImage())
	require.NoError(t, err)

	res, err := ticket.Wait(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, res.Regions)
	for _, r := range res.Regions {
		assert.NotEmpty(t, r.Text)
	}
}

func TestReadManyPreservesInputOrder(t *testing.T) {
	p := newTestPipeline(t)

	in := make(chan image.Image, 3)
	in <- testImage()
	in <- testImage()
	in <- testImage()
	close(in)

	out := p.ReadMany(context.Background(), in)

	count := 0
	for outcome := range out {
		require.NoError(t, outcome.Err)
		assert.NotEmpty(t, outcome.Result.Regions)
		count++
	}
	assert.Equal(t, 3, count)
}

func TestToPageResultRoundTripsSchema(t *testing.T) {
	p := newTestPipeline(t)
	ticket, err := p.ReadOne(context.Background(), testImage())
	require.NoError(t, err)
	res, err := ticket.Wait(context.Background())
	require.NoError(t, err)

	page := ToPageResult(1, "in.png", "", res)
	js, err := ToJSON(page)
	require.NoError(t, err)
	assert.Contains(t, js, `"pageNumber": 1`)
	assert.Contains(t, js, `"polygon"`)
	assert.Contains(t, js, `"rotatedRectangle"`)
	assert.Contains(t, js, `"rectangle"`)
}
