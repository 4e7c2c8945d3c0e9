package gotsne

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPoints is returned when initialization receives no observations.
	ErrNoPoints = errors.New("no observations provided")

	// ErrMismatchedLengths is returned when the neighbor index and distance
	// lists disagree in shape.
	ErrMismatchedLengths = errors.New("indices and distances should be of the same length")
)

// ErrTooManyNeighbors indicates that the neighbor count K is not smaller
// than the number of observations, which leaves the perplexity undefined.
type ErrTooManyNeighbors struct {
	K int
	N int
}

func (e *ErrTooManyNeighbors) Error() string {
	return fmt.Sprintf("number of observations (%d) should be greater than the number of neighbors (%d)", e.N, e.K)
}

// ErrRaggedNeighbors indicates a per-point neighbor list whose length
// differs from the expected K.
type ErrRaggedNeighbors struct {
	Point    int
	Expected int
	Actual   int
}

func (e *ErrRaggedNeighbors) Error() string {
	return fmt.Sprintf("point %d: expected %d neighbors, got %d", e.Point, e.Expected, e.Actual)
}

// ErrNeighborOutOfRange indicates a neighbor index outside [0, N).
type ErrNeighborOutOfRange struct {
	Point int
	Index int
	N     int
}

func (e *ErrNeighborOutOfRange) Error() string {
	return fmt.Sprintf("point %d: neighbor index %d out of range [0, %d)", e.Point, e.Index, e.N)
}

// ErrUnsupportedDimension indicates a configuration requiring a
// dimensionality the selected force accelerator cannot provide.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrUnsupportedDimension struct {
	Dimension int
	cause     error
}

func (e *ErrUnsupportedDimension) Error() string {
	return fmt.Sprintf("unsupported output dimension: %d", e.Dimension)
}

func (e *ErrUnsupportedDimension) Unwrap() error { return e.cause }

// ErrBufferSize indicates an embedding buffer whose length does not match
// N * ndim.
type ErrBufferSize struct {
	Expected int
	Actual   int
}

func (e *ErrBufferSize) Error() string {
	return fmt.Sprintf("embedding buffer length mismatch: expected %d, got %d", e.Expected, e.Actual)
}
