package clustergo

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned when Fit runs before any data has been set.
	ErrNoData = errors.New("no data has been set")

	// ErrNotFitted is returned when Predict, Transform or a result accessor
	// runs before a successful Fit.
	ErrNotFitted = errors.New("model has not been fitted")

	// ErrIncompatibleOptions is returned when two configured options cannot
	// hold at the same time.
	ErrIncompatibleOptions = errors.New("incompatible options")
)

// ErrInvalidDimensions indicates a non-positive or inconsistent problem
// dimension (sample count, feature count, cluster count or a leading
// dimension smaller than the logical extent).
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidDimensions struct {
	Param      string
	Value      int
	Constraint string
	cause      error
}

func (e *ErrInvalidDimensions) Error() string {
	return fmt.Sprintf("invalid dimensions: %s = %d (want %s)", e.Param, e.Value, e.Constraint)
}

func (e *ErrInvalidDimensions) Unwrap() error { return e.cause }

// ErrCacheMisconfigured indicates the reuse cache still holds rows of a
// different length than the current problem shape requires. The engine
// clears its cache when the shape changes, so this surfacing means the
// lifecycle contract was broken.
type ErrCacheMisconfigured struct {
	ExpectedRowLen int
	ActualRowLen   int
	cause          error
}

func (e *ErrCacheMisconfigured) Error() string {
	return fmt.Sprintf("cache misconfigured: row length %d, want %d (clear before reconfiguring)",
		e.ActualRowLen, e.ExpectedRowLen)
}

func (e *ErrCacheMisconfigured) Unwrap() error { return e.cause }
