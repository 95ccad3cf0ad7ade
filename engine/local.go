package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pulselab/pulse/model"
)

type localOptions struct {
	partitions int
	logger     *slog.Logger
}

// LocalOption configures the in-process engine.
type LocalOption func(*localOptions)

// WithPartitions sets the number of partitions (and worker goroutines).
// Values <= 0 default to GOMAXPROCS.
func WithPartitions(n int) LocalOption {
	return func(o *localOptions) {
		o.partitions = n
	}
}

// WithLogger sets a structured logger for debug-level phase tracing.
func WithLogger(l *slog.Logger) LocalOption {
	return func(o *localOptions) {
		o.logger = l
	}
}

// Local is the in-process Collection implementation. Records are split into
// contiguous partitions; Map and Aggregate fan out one goroutine per
// partition. All results are invariant to the partition count.
//
// A Local collection is immutable once constructed; transforms return a new
// collection sharing nothing mutable with the source.
type Local struct {
	parts  [][]model.Record
	count  int
	logger *slog.Logger
}

// NewLocal builds a Local collection from records. The collection aliases
// the input's backing array: records and their vectors are shared read-only
// and must not be mutated by the caller afterwards.
func NewLocal(records []model.Record, opts ...LocalOption) *Local {
	o := localOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.partitions <= 0 {
		o.partitions = runtime.GOMAXPROCS(0)
	}
	return &Local{
		parts:  partition(records, o.partitions),
		count:  len(records),
		logger: o.logger,
	}
}

// partition splits records into at most p contiguous, near-equal chunks.
func partition(records []model.Record, p int) [][]model.Record {
	n := len(records)
	if p > n {
		p = n
	}
	if p < 1 {
		p = 1
	}
	parts := make([][]model.Record, 0, p)
	base := n / p
	rem := n % p
	off := 0
	for i := 0; i < p; i++ {
		size := base
		if i < rem {
			size++
		}
		parts = append(parts, records[off:off+size])
		off += size
	}
	return parts
}

// Count returns the number of records.
func (l *Local) Count() int { return l.count }

// Partitions returns the partition count. Useful for tests asserting
// partition-count invariance.
func (l *Local) Partitions() int { return len(l.parts) }

// Map applies fn to every record in parallel across partitions.
func (l *Local) Map(ctx context.Context, fn MapFunc) (Collection, error) {
	out := make([][]model.Record, len(l.parts))
	g, ctx := errgroup.WithContext(ctx)
	for i, part := range l.parts {
		i, part := i, part
		g.Go(func() error {
			dst := make([]model.Record, len(part))
			for j, rec := range part {
				if err := ctx.Err(); err != nil {
					return err
				}
				mapped, err := fn(rec)
				if err != nil {
					return err
				}
				dst[j] = mapped
			}
			out[i] = dst
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if l.logger != nil {
		l.logger.Debug("map phase completed", "records", l.count, "partitions", len(l.parts))
	}
	return &Local{parts: out, count: l.count, logger: l.logger}, nil
}

// Aggregate folds all records into accumulators, one per partition, then
// merges the partials. The reduction must be associative and commutative;
// the merge order is unspecified.
func (l *Local) Aggregate(ctx context.Context, newAcc func() Accumulator) (Accumulator, error) {
	accs := make([]Accumulator, len(l.parts))
	g, ctx := errgroup.WithContext(ctx)
	for i, part := range l.parts {
		i, part := i, part
		g.Go(func() error {
			acc := newAcc()
			if acc == nil {
				return ErrNilAccumulator
			}
			for _, rec := range part {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := acc.Absorb(rec); err != nil {
					return err
				}
			}
			accs[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	total := newAcc()
	if total == nil {
		return nil, ErrNilAccumulator
	}
	for _, acc := range accs {
		if err := total.Merge(acc); err != nil {
			return nil, err
		}
	}
	if l.logger != nil {
		l.logger.Debug("reduce phase completed", "records", l.count, "partitions", len(l.parts))
	}
	return total, nil
}

// Collect materializes all records in stable input order.
func (l *Local) Collect(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Record, 0, l.count)
	for _, part := range l.parts {
		out = append(out, part...)
	}
	return out, nil
}

// Sample returns up to n records chosen without replacement from a seeded
// generator, preserving input order among the chosen records.
func (l *Local) Sample(ctx context.Context, n int, seed int64) ([]model.Record, error) {
	all, err := l.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if n >= len(all) {
		return all, nil
	}
	if n <= 0 {
		return nil, nil
	}
	rng := rand.New(rand.NewSource(seed))
	chosen := rng.Perm(len(all))[:n]
	sort.Ints(chosen)
	out := make([]model.Record, n)
	for i, idx := range chosen {
		out[i] = all[idx]
	}
	return out, nil
}
