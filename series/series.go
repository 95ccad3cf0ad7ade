package series

import (
	"context"
	"log/slog"

	"github.com/pulselab/pulse/engine"
	"github.com/pulselab/pulse/model"
)

type options struct {
	index  model.Index
	eps    float64
	logger *slog.Logger
}

// Option configures Series construction.
type Option func(*options)

// WithIndex supplies an externally defined index. Its length must match the
// vector length of every record. Without it, the identity index 0..n-1 is
// used.
func WithIndex(idx model.Index) Option {
	return func(o *options) {
		o.index = idx
	}
}

// WithEpsilon sets the floor substituted for a zero standard deviation in
// standardization. The default (0) makes zero variance a hard error.
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		o.eps = eps
	}
}

// WithLogger sets a structured logger for debug-level operation tracing.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Series is a distributed collection of records plus the index shared by
// every record's vector. The Series owns the index; records reference it
// read-only.
//
// A Series is immutable: every transform produces a new Series and leaves
// the source untouched. The shape invariant len(vector) == len(index) holds
// for every record; transforms that change vector length emit a matching new
// index.
type Series struct {
	col    engine.Collection
	index  model.Index
	eps    float64
	logger *slog.Logger
}

// New wraps a collection as a Series, validating the shape invariant across
// all records (a single blocking reduce). Records with empty vectors are
// rejected so downstream statistics never see n = 0.
func New(ctx context.Context, col engine.Collection, opts ...Option) (*Series, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	want := -1 // learn from the first record unless an index pins it
	if o.index != nil {
		want = len(o.index)
	}
	acc, err := col.Aggregate(ctx, func() engine.Accumulator {
		return &shapeAcc{want: want}
	})
	if err != nil {
		return nil, err
	}
	ncols := acc.(*shapeAcc).want

	idx := o.index
	if idx == nil {
		if ncols < 0 {
			ncols = 0
		}
		idx = model.Identity(ncols)
	}

	return &Series{col: col, index: idx, eps: o.eps, logger: o.logger}, nil
}

// shapeAcc validates that every vector has the same, non-zero length.
type shapeAcc struct {
	want int // -1 until the first record fixes it
}

func (a *shapeAcc) Absorb(rec model.Record) error {
	if len(rec.Vector) == 0 {
		return model.NewShapeMismatch(a.want, 0)
	}
	if a.want < 0 {
		a.want = len(rec.Vector)
		return nil
	}
	return model.CheckShape(rec, a.want)
}

func (a *shapeAcc) Merge(other engine.Accumulator) error {
	o := other.(*shapeAcc)
	if o.want < 0 {
		return nil
	}
	if a.want < 0 {
		a.want = o.want
		return nil
	}
	if a.want != o.want {
		return model.NewShapeMismatch(a.want, o.want)
	}
	return nil
}

// derive builds a Series around a transformed collection, carrying policy
// options forward.
func (s *Series) derive(col engine.Collection, idx model.Index) *Series {
	return &Series{col: col, index: idx, eps: s.eps, logger: s.logger}
}

// Index returns the shared label sequence. Callers must not mutate it.
func (s *Series) Index() model.Index { return s.index }

// Len returns the vector length (ncols).
func (s *Series) Len() int { return len(s.index) }

// Count returns the number of records.
func (s *Series) Count() int { return s.col.Count() }

// Collection exposes the underlying parallel collection.
func (s *Series) Collection() engine.Collection { return s.col }

// Records materializes all records in stable input order.
func (s *Series) Records(ctx context.Context) ([]model.Record, error) {
	return s.col.Collect(ctx)
}

// Sample returns up to n records chosen deterministically from seed.
func (s *Series) Sample(ctx context.Context, n int, seed int64) ([]model.Record, error) {
	return s.col.Sample(ctx, n, seed)
}

// Transform applies a per-record map and re-indexes the result. It is the
// extension point for layers built on top of Series (matrix products, custom
// record transforms). Input records are validated against the current index
// and outputs against idx, so a transform can never produce vectors of
// differing length.
func (s *Series) Transform(ctx context.Context, idx model.Index, fn engine.MapFunc) (*Series, error) {
	return s.apply(ctx, idx, fn)
}

// apply runs a per-record map and wraps the result with the given index.
func (s *Series) apply(ctx context.Context, idx model.Index, fn engine.MapFunc) (*Series, error) {
	ncols := len(s.index)
	nout := len(idx)
	checked := func(rec model.Record) (model.Record, error) {
		if err := model.CheckShape(rec, ncols); err != nil {
			return model.Record{}, err
		}
		out, err := fn(rec)
		if err != nil {
			return model.Record{}, err
		}
		if err := model.CheckShape(out, nout); err != nil {
			return model.Record{}, err
		}
		return out, nil
	}
	col, err := s.col.Map(ctx, checked)
	if err != nil {
		return nil, err
	}
	return s.derive(col, idx), nil
}

// Between retains the index positions whose label falls in [lower, upper]
// inclusive, slicing every record's vector to the matching positions in
// index order. Non-numeric labels never match. Returns ErrEmptySelection
// when no label is in range.
func (s *Series) Between(ctx context.Context, lower, upper float64) (*Series, error) {
	positions := make([]int, 0, len(s.index))
	for i, l := range s.index {
		f, ok := model.Numeric(l)
		if !ok {
			continue
		}
		if f >= lower && f <= upper {
			positions = append(positions, i)
		}
	}
	if len(positions) == 0 {
		return nil, ErrEmptySelection
	}
	return s.subset(ctx, positions)
}

// Select resolves each requested label to its exactly-equal index positions
// (in index order when duplicated) and concatenates the corresponding vector
// elements in request order. A single label and a one-element request are
// equivalent. Returns *ErrLabelNotFound for labels absent from the index.
func (s *Series) Select(ctx context.Context, labels ...model.Label) (*Series, error) {
	canon := make([]model.Label, len(s.index))
	for i, l := range s.index {
		canon[i] = model.Canonical(l)
	}
	positions := make([]int, 0, len(labels))
	for _, want := range labels {
		cw := model.Canonical(want)
		found := false
		for i, have := range canon {
			if have == cw {
				positions = append(positions, i)
				found = true
			}
		}
		if !found {
			return nil, &ErrLabelNotFound{Label: want}
		}
	}
	return s.subset(ctx, positions)
}

// subset slices every record's vector (and the index) to positions.
func (s *Series) subset(ctx context.Context, positions []int) (*Series, error) {
	idx := make(model.Index, len(positions))
	for i, p := range positions {
		idx[i] = s.index[p]
	}
	return s.apply(ctx, idx, func(rec model.Record) (model.Record, error) {
		out := make([]float64, len(positions))
		for i, p := range positions {
			out[i] = rec.Vector[p]
		}
		return model.Record{Key: rec.Key, Vector: out}, nil
	})
}
