package model

import "fmt"

// ErrShapeMismatch indicates two lengths that must agree but do not: a record
// vector against the collection's index, or parallel input slices. This must
// never happen for a well-formed collection; it is surfaced instead of
// silently truncating.
type ErrShapeMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch: expected length %d, got %d", e.Expected, e.Actual)
}

// NewShapeMismatch constructs an *ErrShapeMismatch.
func NewShapeMismatch(expected, actual int) *ErrShapeMismatch {
	return &ErrShapeMismatch{Expected: expected, Actual: actual}
}

// CheckShape validates a record against the expected vector length.
func CheckShape(rec Record, want int) error {
	if len(rec.Vector) != want {
		return NewShapeMismatch(want, len(rec.Vector))
	}
	return nil
}
