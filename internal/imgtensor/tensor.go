// Package imgtensor converts decoded images into NCHW float32 tensors ready
// for ONNX inference, and back. It covers aspect-preserving resize, channel
// normalization, and HWC<->CHW transposition, pooling scratch buffers via
// internal/mempool the way the rest of this module's ONNX-facing code does.
package imgtensor

import (
	"errors"
	"fmt"
)

// Normalization describes the per-channel affine transform applied to pixel
// values after they are scaled into [0,1]: out = (in - Mean[c]) / Std[c].
type Normalization struct {
	Mean [3]float32
	Std  [3]float32
}

// UnitNormalization scales raw pixels into [0,1] with no further shift.
func UnitNormalization() Normalization {
	return Normalization{Mean: [3]float32{0, 0, 0}, Std: [3]float32{1, 1, 1}}
}

// ImageNetNormalization applies the standard ImageNet per-channel mean/std,
// used by backbones pretrained on that corpus.
func ImageNetNormalization() Normalization {
	return Normalization{
		Mean: [3]float32{0.485, 0.456, 0.406},
		Std:  [3]float32{0.229, 0.224, 0.225},
	}
}

// SignedUnitNormalization maps [0,1] pixels into [-1,1], the convention the
// recognizer model in this pipeline expects.
func SignedUnitNormalization() Normalization {
	return Normalization{Mean: [3]float32{0.5, 0.5, 0.5}, Std: [3]float32{0.5, 0.5, 0.5}}
}

// ErrNotContiguous describes an image whose backing storage is not a single
// contiguous RGBA/NRGBA buffer. No function in this package returns it.
var ErrNotContiguous = errors.New("imgtensor: image is not a contiguous RGBA buffer")

// Tensor is a row-major float32 buffer plus its NCHW shape.
type Tensor struct {
	Data  []float32
	Shape [4]int64 // N, C, H, W
}

// Validate checks that Data's length matches the product of Shape.
func (t Tensor) Validate() error {
	n, c, h, w := t.Shape[0], t.Shape[1], t.Shape[2], t.Shape[3]
	if n <= 0 || c <= 0 || h <= 0 || w <= 0 {
		return fmt.Errorf("imgtensor: invalid shape %v", t.Shape)
	}
	expected := int(n * c * h * w)
	if len(t.Data) != expected {
		return fmt.Errorf("imgtensor: data length %d != expected %d for shape %v", len(t.Data), expected, t.Shape)
	}
	return nil
}
