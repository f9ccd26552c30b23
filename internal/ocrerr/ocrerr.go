// Package ocrerr defines the typed error kinds the core pipeline raises,
// kept distinct from plumbing errors (a failed os.Open, a context
// cancellation bubbling up verbatim) the way the teacher's
// ImageProcessingError/ResourceError types separate domain errors from
// infrastructure ones.
package ocrerr

import "fmt"

// Kind enumerates the error categories the core distinguishes.
type Kind int

const (
	// InvalidImageFormat marks a bad or unsupported input image.
	InvalidImageFormat Kind = iota
	// ImageNotContiguous marks an image whose backing storage isn't a
	// single contiguous RGBA/NRGBA buffer.
	ImageNotContiguous
	// InferenceKernelFailure marks a kernel that returned an error or an
	// output shape inconsistent with what was declared.
	InferenceKernelFailure
	// InferenceExecution marks an error returned by the task a caller
	// submitted to the managed executor (panics are not recovered).
	InferenceExecution
	// UserTaskCreation marks a pipeline task factory that failed before
	// producing a task.
	UserTaskCreation
	// PipelineShapeMismatch marks the fatal internal invariant violation
	// where a single image's detection and recognition counts disagree.
	PipelineShapeMismatch
	// Cancelled marks cooperative cancellation via context.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidImageFormat:
		return "InvalidImageFormat"
	case ImageNotContiguous:
		return "ImageNotContiguous"
	case InferenceKernelFailure:
		return "InferenceKernelFailure"
	case InferenceExecution:
		return "InferenceExecution"
	case UserTaskCreation:
		return "UserTaskCreation"
	case PipelineShapeMismatch:
		return "PipelineShapeMismatch"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error is the core's own error type: a Kind plus the wrapped cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err under kind.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Is reports whether err (or something it wraps) is an *Error of kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if oe, ok := err.(*Error); ok { //nolint:errorlint // explicit unwrap loop below handles wrapping
			e = oe
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}
