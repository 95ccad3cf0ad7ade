package series

import (
	"errors"
	"fmt"

	"github.com/pulselab/pulse/model"
)

var (
	// ErrEmptySelection is returned when a label-range window matches no
	// index positions.
	ErrEmptySelection = errors.New("selection matches no index positions")

	// ErrInvalidAxis is returned for an axis other than 0 or 1.
	ErrInvalidAxis = errors.New("axis must be 0 (within-record) or 1 (across-record)")

	// ErrEmptyCollection is returned when an operation needs at least one
	// record but the collection is empty.
	ErrEmptyCollection = errors.New("collection holds no records")

	// ErrKeyRankMismatch is returned when record keys disagree on the number
	// of coordinate dimensions.
	ErrKeyRankMismatch = errors.New("record keys have differing dimensionality")

	// ErrZeroCoordinate is returned when a multi-dimensional key carries a
	// zero component; coordinate keys are 1-based in every dimension.
	ErrZeroCoordinate = errors.New("coordinate keys are 1-based")
)

// ErrLabelNotFound indicates a Select label absent from the index.
type ErrLabelNotFound struct {
	Label model.Label
}

func (e *ErrLabelNotFound) Error() string {
	return fmt.Sprintf("label not found in index: %v", e.Label)
}

// ErrUnknownStatistic indicates an unsupported statistic name.
type ErrUnknownStatistic struct {
	Name string
}

func (e *ErrUnknownStatistic) Error() string {
	return fmt.Sprintf("unknown statistic: %q", e.Name)
}

// ErrUnsupportedMethod indicates an unsupported method name for a
// string-dispatched operation (normalize, detrend).
type ErrUnsupportedMethod struct {
	Op     string
	Method string
}

func (e *ErrUnsupportedMethod) Error() string {
	return fmt.Sprintf("unsupported %s method: %q", e.Op, e.Method)
}

// ErrDegenerateVariance indicates a zero standard deviation where a division
// is required. Position is the index position for across-record (axis 1)
// statistics, or -1 for a within-record (axis 0) statistic.
//
// Configure an epsilon via WithEpsilon to substitute a floor instead of
// failing.
type ErrDegenerateVariance struct {
	Position int
}

func (e *ErrDegenerateVariance) Error() string {
	if e.Position < 0 {
		return "degenerate variance: record has zero standard deviation"
	}
	return fmt.Sprintf("degenerate variance: zero standard deviation at index position %d", e.Position)
}
