package ndarray

import "fmt"

// Reason says why a strict accessor refused a buffer.
type Reason int

const (
	ReasonView Reason = iota + 1
	ReasonNotContiguous
	ReasonDType
)

// LayoutError is returned when a compiled kernel rejects a parameter buffer.
// The messages match what the numeric runtime prints, since callers outside
// this module only ever see text.
type LayoutError struct {
	Op     string
	Reason Reason
	DType  DType
	Want   DType
}

func (e *LayoutError) Error() string {
	switch e.Reason {
	case ReasonView:
		return fmt.Sprintf("%s: array is a view; pythranized kernel needs an owning buffer", e.Op)
	case ReasonNotContiguous:
		return fmt.Sprintf("%s: ndarray is not C-contiguous", e.Op)
	default:
		return fmt.Sprintf("%s: invalid argument type for pythranized function: got %s buffer, expected %s", e.Op, e.DType, e.Want)
	}
}

// DimensionError is returned when an input has the wrong rank.
type DimensionError struct {
	Op    string
	Want  int
	Got   int
	Empty bool
}

func (e *DimensionError) Error() string {
	if e.Empty {
		return fmt.Sprintf("%s: array is empty", e.Op)
	}
	if e.Want == 1 {
		return fmt.Sprintf("%s: input must be a 1-dimensional array, got %d dimensions", e.Op, e.Got)
	}
	return fmt.Sprintf("%s: expected %d-dimensional array, got %d dimensions", e.Op, e.Want, e.Got)
}
