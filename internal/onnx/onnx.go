// Package onnx provides the concrete, ONNX-Runtime-backed implementation of
// internal/engine.Kernel (spec's "Onnx" kernel variant), plus the GPU
// execution-provider configuration (gpu.go) and shared-library discovery
// (libpath.go) the teacher's detector/recognizer packages used to own
// directly. Kernel construction is serialized by a package-level mutex,
// since onnxruntime_go's model loader is not itself thread-safe.
package onnx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	onnxruntime "github.com/yalue/onnxruntime_go"

	"github.com/jrbeckett/speedreader/internal/imgtensor"
	"github.com/jrbeckett/speedreader/internal/ocrerr"
)

// globalInit guards onnxruntime_go's process-wide environment
// initialization and every session's construction, mirroring spec §5's
// "a global lock guards kernel instantiation" requirement.
var globalInit sync.Mutex

// Kernel runs a single ONNX model via a DynamicAdvancedSession, exposing
// internal/engine.Kernel's tensor-in/tensor-out contract. One Kernel wraps
// one model; the detector and recognizer each own their own instance.
type Kernel struct {
	session    *onnxruntime.DynamicAdvancedSession
	inputName  string
	outputName string
	mu         sync.Mutex // serializes calls into the session; sessions are not safe for concurrent Run
}

// Config configures how a Kernel locates and loads its model.
type Config struct {
	ModelPath  string
	NumThreads int // 0 lets ONNX Runtime choose
	GPU        GPUConfig
}

// DefaultConfig returns a CPU-only configuration with no model path set;
// callers must fill in ModelPath.
func DefaultConfig() Config {
	return Config{GPU: DefaultGPUConfig()}
}

// NewKernel initializes the ONNX Runtime environment (if not already done)
// and loads cfg.ModelPath into a new session.
func NewKernel(cfg Config) (*Kernel, error) {
	if cfg.ModelPath == "" {
		return nil, ocrerr.New(ocrerr.InferenceKernelFailure, errors.New("onnx: model path is empty"))
	}

	globalInit.Lock()
	defer globalInit.Unlock()

	if err := SetONNXLibraryPath(cfg.GPU.UseGPU); err != nil {
		return nil, ocrerr.New(ocrerr.InferenceKernelFailure, fmt.Errorf("onnx: set library path: %w", err))
	}
	if !onnxruntime.IsInitialized() {
		if err := onnxruntime.InitializeEnvironment(); err != nil {
			return nil, ocrerr.New(ocrerr.InferenceKernelFailure, fmt.Errorf("onnx: initialize environment: %w", err))
		}
	}

	inputs, outputs, err := onnxruntime.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, ocrerr.New(ocrerr.InferenceKernelFailure, fmt.Errorf("onnx: inspect model: %w", err))
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, ocrerr.New(ocrerr.InferenceKernelFailure,
			fmt.Errorf("onnx: expected exactly 1 input and 1 output, got %d/%d", len(inputs), len(outputs)))
	}

	opts, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, ocrerr.New(ocrerr.InferenceKernelFailure, fmt.Errorf("onnx: session options: %w", err))
	}
	defer opts.Destroy() //nolint:errcheck // best-effort cleanup of a local options object

	if err := ConfigureSessionForGPU(opts, cfg.GPU); err != nil {
		return nil, ocrerr.New(ocrerr.InferenceKernelFailure, fmt.Errorf("onnx: configure GPU: %w", err))
	}
	if cfg.NumThreads > 0 {
		if err := opts.SetIntraOpNumThreads(cfg.NumThreads); err != nil {
			return nil, ocrerr.New(ocrerr.InferenceKernelFailure, fmt.Errorf("onnx: set thread count: %w", err))
		}
	}

	session, err := onnxruntime.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, opts)
	if err != nil {
		return nil, ocrerr.New(ocrerr.InferenceKernelFailure, fmt.Errorf("onnx: create session: %w", err))
	}

	return &Kernel{session: session, inputName: inputs[0].Name, outputName: outputs[0].Name}, nil
}

// Run executes the model on input (batch size 1 NCHW), returning the
// output tensor. Satisfies internal/engine.Kernel.
func (k *Kernel) Run(ctx context.Context, input imgtensor.Tensor) (imgtensor.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return imgtensor.Tensor{}, ocrerr.New(ocrerr.Cancelled, err)
	}
	if err := input.Validate(); err != nil {
		return imgtensor.Tensor{}, ocrerr.New(ocrerr.InferenceKernelFailure, err)
	}

	inTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(input.Shape[:]...), input.Data)
	if err != nil {
		return imgtensor.Tensor{}, ocrerr.New(ocrerr.InferenceKernelFailure, fmt.Errorf("onnx: build input tensor: %w", err))
	}
	defer inTensor.Destroy() //nolint:errcheck // best-effort cleanup

	k.mu.Lock()
	outputs := []onnxruntime.Value{nil}
	runErr := k.session.Run([]onnxruntime.Value{inTensor}, outputs)
	k.mu.Unlock()
	if runErr != nil {
		return imgtensor.Tensor{}, ocrerr.New(ocrerr.InferenceKernelFailure, fmt.Errorf("onnx: session run: %w", runErr))
	}
	outTensor, ok := outputs[0].(*onnxruntime.Tensor[float32])
	if !ok {
		return imgtensor.Tensor{}, ocrerr.New(ocrerr.InferenceKernelFailure,
			errors.New("onnx: output tensor is not float32"))
	}
	defer outTensor.Destroy() //nolint:errcheck // best-effort cleanup

	outShape := outTensor.GetShape()
	result := imgtensor.Tensor{Data: append([]float32(nil), outTensor.GetData()...)} //nolint:gocritic // intentional copy out of the session-owned buffer
	for i := range result.Shape {
		if i < len(outShape) {
			result.Shape[i] = outShape[i]
		} else {
			result.Shape[i] = 1
		}
	}
	return result, nil
}

// Close releases the underlying ONNX Runtime session.
func (k *Kernel) Close() error {
	if k.session == nil {
		return nil
	}
	return k.session.Destroy()
}
