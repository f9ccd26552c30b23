package engine

import (
	"context"

	"github.com/jrbeckett/speedreader/internal/imgtensor"
)

// tensorIn builds the batch-1 NCHW tensor a Kernel expects from a caller's
// batch-less (data, shape) request.
func tensorIn(data []float32, shape [3]int64) imgtensor.Tensor {
	return imgtensor.Tensor{
		Data:  data,
		Shape: [4]int64{1, shape[0], shape[1], shape[2]},
	}
}

// Result is the output of one inference call: the raw tensor data plus its
// shape with the batch dimension stripped back off.
type Result struct {
	Data  []float32
	Shape [3]int64 // C, H, W
}

// Facade is the inference engine façade: it accepts a single (data, shape)
// request (shape excluding the batch dimension), prepends batch size 1,
// hands the tensor to its Kernel via a ManagedExecutor, and strips the batch
// dimension back off the result. Submit's own admission blocking plays the
// role of the "outer" admission task; the returned Ticket is the "inner"
// completion task the caller awaits separately - callers that want to keep
// several requests in flight call Run repeatedly without waiting on earlier
// tickets.
type Facade struct {
	kernel   Kernel
	executor *ManagedExecutor
}

// NewFacade builds a façade around an already-constructed kernel and
// executor, letting callers share one executor across façades or tune its
// capacity independently.
func NewFacade(kernel Kernel, executor *ManagedExecutor) *Facade {
	return &Facade{kernel: kernel, executor: executor}
}

// NewCPUEngine builds the one required engine variant: a façade backed by a
// ManagedExecutor of the given initial capacity. The GPU variant is out of
// scope beyond satisfying the same interface.
func NewCPUEngine(kernel Kernel, capacity int) *Facade {
	return NewFacade(kernel, NewManagedExecutor(capacity))
}

// Run submits one inference request. It blocks until the request is
// admitted (or ctx is canceled, or the façade is closed), then returns a
// Ticket the caller can Wait on for the result.
func (f *Facade) Run(ctx context.Context, data []float32, shape [3]int64) (*Ticket, error) {
	input := tensorIn(data, shape)
	return f.executor.Submit(ctx, func(taskCtx context.Context) (any, error) {
		out, err := f.kernel.Run(taskCtx, input)
		if err != nil {
			return nil, err
		}
		return Result{
			Data:  out.Data,
			Shape: [3]int64{out.Shape[1], out.Shape[2], out.Shape[3]},
		}, nil
	})
}

// CurrentMaxCapacity exposes the executor's current parallelism so upstream
// pools (the recognizer pipeline's task pool sizing, notably) can right-size
// themselves against it.
func (f *Facade) CurrentMaxCapacity() int {
	return f.executor.Capacity()
}

// Tuner exposes the underlying executor as a Scaler, so a Tuner can be
// attached to this façade's parallelism.
func (f *Facade) Tuner(sensor Sensor, min, max int) *Tuner {
	return NewTuner(sensor, f.executor, min, max)
}

// Close shuts down the executor (draining in-flight work) and then the
// kernel.
func (f *Facade) Close() error {
	err := f.executor.Close()
	if kerr := f.kernel.Close(); kerr != nil && err == nil {
		err = kerr
	}
	return err
}
