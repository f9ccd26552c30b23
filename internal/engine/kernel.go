// Package engine hosts the inference-kernel abstraction and the concurrency
// machinery wrapped around it: a managed executor that can change its
// parallelism without killing in-flight work, and an adaptive tuner that
// drives that parallelism from observed throughput.
package engine

import (
	"context"

	"github.com/jrbeckett/speedreader/internal/imgtensor"
)

// Kernel runs a single model invocation: tensor in, tensor out. It is the
// seam between the engine's concurrency machinery and whatever actually
// executes the model (ONNX Runtime in production, a stub in tests).
type Kernel interface {
	Run(ctx context.Context, input imgtensor.Tensor) (imgtensor.Tensor, error)
	Close() error
}

// NullKernel is a Kernel that returns its input unchanged. Useful for
// exercising the executor and tuner in tests without an ONNX Runtime
// dependency.
type NullKernel struct{}

// Run returns input as-is.
func (NullKernel) Run(_ context.Context, input imgtensor.Tensor) (imgtensor.Tensor, error) {
	return input, nil
}

// Close is a no-op.
func (NullKernel) Close() error { return nil }

// FuncKernel adapts a plain function into a Kernel, for tests that need
// kernel-specific behavior (latency, errors) without a full fake type.
type FuncKernel func(ctx context.Context, input imgtensor.Tensor) (imgtensor.Tensor, error)

// Run calls the wrapped function.
func (f FuncKernel) Run(ctx context.Context, input imgtensor.Tensor) (imgtensor.Tensor, error) {
	return f(ctx, input)
}

// Close is a no-op.
func (FuncKernel) Close() error { return nil }
