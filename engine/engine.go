package engine

import (
	"context"
	"errors"

	"github.com/pulselab/pulse/model"
)

// ErrNilAccumulator is returned when an Aggregate constructor yields nil.
var ErrNilAccumulator = errors.New("aggregate: accumulator constructor returned nil")

// MapFunc transforms a single record. It must be stateless and must not
// retain or mutate its input; implementations run concurrently across
// partitions with no ordering guarantee.
type MapFunc func(model.Record) (model.Record, error)

// Accumulator folds records into a partial result and merges partial results
// from other partitions. Absorb and Merge together must form an associative,
// commutative reduction: the final value is invariant to partition count and
// task interleaving.
type Accumulator interface {
	// Absorb folds one record into the accumulator.
	Absorb(rec model.Record) error
	// Merge combines another accumulator of the same concrete type.
	Merge(other Accumulator) error
}

// Collection is the partition-parallel substrate the analysis engine runs on.
// Implementations expose exactly four operation shapes: a stateless map, an
// associative reduce, ordered materialization, and sampling. Any concrete
// execution engine (in-process, cluster-backed) can implement it.
//
// Aggregate is a synchronization point: it completes fully before any value
// is observed. Map is embarrassingly parallel and preserves record count and
// input order in the produced collection.
type Collection interface {
	// Map applies fn to every record, producing a new collection.
	Map(ctx context.Context, fn MapFunc) (Collection, error)

	// Aggregate folds all records using accumulators created by newAcc,
	// one per partition, merging the partials into the returned value.
	Aggregate(ctx context.Context, newAcc func() Accumulator) (Accumulator, error)

	// Collect materializes all records in stable input order.
	Collect(ctx context.Context) ([]model.Record, error)

	// Sample returns up to n records chosen deterministically from seed,
	// in stable input order. It is the only operation permitted to return
	// fewer records than the collection holds.
	Sample(ctx context.Context, n int, seed int64) ([]model.Record, error)

	// Count returns the number of records.
	Count() int
}
