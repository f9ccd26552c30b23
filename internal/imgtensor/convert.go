package imgtensor

import (
	"fmt"
	"image"

	"github.com/jrbeckett/speedreader/internal/mempool"
)

// ToNormalizedChwTensor converts an image into a pooled, row-major NCHW
// float32 tensor (batch size 1), scaling pixels from [0,255] into [0,1] and
// then applying norm. The caller must return Data to the pool via
// mempool.PutFloat32 when done with it.
func ToNormalizedChwTensor(img image.Image, norm Normalization) (Tensor, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return Tensor{}, fmt.Errorf("imgtensor: image has non-positive bounds %dx%d", width, height)
	}

	plane := width * height
	data := mempool.GetFloat32(3 * plane)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := y*width + x

			data[idx] = (float32(r>>8)/255.0 - norm.Mean[0]) / norm.Std[0]
			data[plane+idx] = (float32(g>>8)/255.0 - norm.Mean[1]) / norm.Std[1]
			data[2*plane+idx] = (float32(b>>8)/255.0 - norm.Mean[2]) / norm.Std[2]
		}
	}

	return Tensor{
		Data:  data,
		Shape: [4]int64{1, 3, int64(height), int64(width)},
	}, nil
}

// HwcToChwInPlace transposes an interleaved HWC float32 buffer (channels
// innermost, as produced by a naive per-pixel decode) into CHW order,
// writing into a pooled scratch buffer and then copying back into src. src
// must have length h*w*channels.
func HwcToChwInPlace(src []float32, h, w, channels int) {
	plane := h * w
	scratch := mempool.GetFloat32(len(src))
	defer mempool.PutFloat32(scratch)

	for i := 0; i < plane; i++ {
		for c := 0; c < channels; c++ {
			scratch[c*plane+i] = src[i*channels+c]
		}
	}
	copy(src, scratch[:len(src)])
}

