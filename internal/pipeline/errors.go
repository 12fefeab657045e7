package pipeline

import "fmt"

// InputError reports an invalid caller-supplied parameter. It is raised
// before any rasterization work happens.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DegenerateImageError reports that the rasterizer produced an image with
// no usable area. This is an adapter contract violation, not a problem
// with the caller's input.
type DegenerateImageError struct {
	Width  int
	Height int
}

func (e *DegenerateImageError) Error() string {
	return fmt.Sprintf("rasterizer produced a degenerate %dx%d image", e.Width, e.Height)
}

// ResampleError reports a failure inside the resize step.
type ResampleError struct {
	Err error
}

func (e *ResampleError) Error() string {
	return "resample: " + e.Err.Error()
}

func (e *ResampleError) Unwrap() error {
	return e.Err
}
