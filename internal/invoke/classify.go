package invoke

import (
	"errors"
	"strings"

	"surrogated/internal/ndarray"
)

// Class is the recovery path a call failure qualifies for.
type Class int

const (
	// ClassOther gets no recovery.
	ClassOther Class = iota
	// ClassLayout means a kernel rejected a buffer's layout or element type.
	// It is recovered by repairing the handle and retrying the same call.
	ClassLayout
	// ClassNeeds1D means the callee only accepts a flat 1-D input.
	// It is recovered by retrying with the flattened input.
	ClassNeeds1D
)

func (c Class) String() string {
	switch c {
	case ClassLayout:
		return "layout"
	case ClassNeeds1D:
		return "needs_1d"
	}
	return "other"
}

// Text signatures for errors that do not carry a typed cause, e.g. from
// functions wrapping a foreign kernel.
var (
	layoutSignatures = []string{"pythranized", "is a view", "contiguous"}
	needs1DSignature = "must be a 1-dimensional array"
)

// Classify maps a call failure to its recovery class. Typed causes from
// package ndarray take precedence; message text is only consulted when no
// typed cause is present. This is the only place error text is inspected.
func Classify(err error) Class {
	if err == nil {
		return ClassOther
	}
	var le *ndarray.LayoutError
	if errors.As(err, &le) {
		return ClassLayout
	}
	var de *ndarray.DimensionError
	if errors.As(err, &de) {
		if de.Want == 1 && !de.Empty {
			return ClassNeeds1D
		}
		return ClassOther
	}
	msg := err.Error()
	for _, sig := range layoutSignatures {
		if strings.Contains(msg, sig) {
			return ClassLayout
		}
	}
	if strings.Contains(msg, needs1DSignature) {
		return ClassNeeds1D
	}
	return ClassOther
}
