package pulse

import (
	"github.com/pulselab/pulse/model"
	"github.com/pulselab/pulse/series"
)

// Common errors re-exported so simple programs can match them without
// importing subpackages.
var (
	// ErrEmptySelection is returned when a window or selection matches nothing.
	ErrEmptySelection = series.ErrEmptySelection
	// ErrEmptyCollection is returned when an operation needs at least one record.
	ErrEmptyCollection = series.ErrEmptyCollection
	// ErrInvalidAxis is returned for an axis other than WithinRecord or AcrossRecords.
	ErrInvalidAxis = series.ErrInvalidAxis
)

// ErrShapeMismatch indicates a record whose vector length disagrees with
// the series index.
type ErrShapeMismatch = model.ErrShapeMismatch
