package factor

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/pulselab/pulse/engine"
	"github.com/pulselab/pulse/model"
	"github.com/pulselab/pulse/series"
)

// RowMatrix views a Series as a matrix whose rows are records: nrows is the
// record count and ncols the index length. It shares the underlying record
// storage with the Series; no copy happens until a mutating matrix operation
// produces a new Series/RowMatrix pair.
type RowMatrix struct {
	s *series.Series
}

// NewRowMatrix wraps a Series as a RowMatrix without copying records.
func NewRowMatrix(s *series.Series) *RowMatrix {
	return &RowMatrix{s: s}
}

// Series returns the underlying Series. Key order and vector values are
// preserved exactly through the round trip.
func (m *RowMatrix) Series() *series.Series { return m.s }

// NRows returns the number of matrix rows (records).
func (m *RowMatrix) NRows() int { return m.s.Count() }

// NCols returns the number of matrix columns (index length).
func (m *RowMatrix) NCols() int { return m.s.Len() }

// ColumnMeans computes the per-column mean across all rows (one reduce).
func (m *RowMatrix) ColumnMeans(ctx context.Context) ([]float64, error) {
	ncols := m.NCols()
	acc, err := m.s.Collection().Aggregate(ctx, func() engine.Accumulator {
		return &colSumAcc{sums: make([]float64, ncols)}
	})
	if err != nil {
		return nil, err
	}
	cs := acc.(*colSumAcc)
	if cs.n == 0 {
		return nil, series.ErrEmptyCollection
	}
	means := make([]float64, ncols)
	for i, sum := range cs.sums {
		means[i] = sum / float64(cs.n)
	}
	return means, nil
}

// CenterColumns subtracts the per-column mean from every row, the feature
// centering used inside the factorization pipeline. The intermediate centered
// matrix is not otherwise observed, so the result replaces the receiver's
// role in the pipeline rather than being retained alongside it.
func (m *RowMatrix) CenterColumns(ctx context.Context) (*RowMatrix, error) {
	means, err := m.ColumnMeans(ctx)
	if err != nil {
		return nil, err
	}
	centered, err := m.s.Transform(ctx, m.s.Index(), func(rec model.Record) (model.Record, error) {
		out := make([]float64, len(rec.Vector))
		for i, x := range rec.Vector {
			out[i] = x - means[i]
		}
		return model.Record{Key: rec.Key, Vector: out}, nil
	})
	if err != nil {
		return nil, err
	}
	return NewRowMatrix(centered), nil
}

// Gram computes Xᵀ X (ncols x ncols) by reducing per-row outer products.
func (m *RowMatrix) Gram(ctx context.Context) (*mat.SymDense, error) {
	ncols := m.NCols()
	if m.NRows() == 0 {
		return nil, series.ErrEmptyCollection
	}
	acc, err := m.s.Collection().Aggregate(ctx, func() engine.Accumulator {
		return &gramAcc{n: ncols, upper: make([]float64, ncols*ncols)}
	})
	if err != nil {
		return nil, err
	}
	g := acc.(*gramAcc)
	// Mirror the upper triangle before handing gonum the full storage.
	for i := 0; i < ncols; i++ {
		for j := 0; j < i; j++ {
			g.upper[i*ncols+j] = g.upper[j*ncols+i]
		}
	}
	return mat.NewSymDense(ncols, g.upper), nil
}

// TimesMatrix right-multiplies every row by o (x -> xᵀ·o), producing a new
// RowMatrix with o's column count and an identity index.
func (m *RowMatrix) TimesMatrix(ctx context.Context, o mat.Matrix) (*RowMatrix, error) {
	r, c := o.Dims()
	if r != m.NCols() {
		return nil, model.NewShapeMismatch(m.NCols(), r)
	}
	out, err := m.s.Transform(ctx, model.Identity(c), func(rec model.Record) (model.Record, error) {
		y := make([]float64, c)
		for j := 0; j < c; j++ {
			var sum float64
			for i, x := range rec.Vector {
				sum += x * o.At(i, j)
			}
			y[j] = sum
		}
		return model.Record{Key: rec.Key, Vector: y}, nil
	})
	if err != nil {
		return nil, err
	}
	return NewRowMatrix(out), nil
}

type colSumAcc struct {
	n    int64
	sums []float64
}

func (a *colSumAcc) Absorb(rec model.Record) error {
	if err := model.CheckShape(rec, len(a.sums)); err != nil {
		return err
	}
	for i, x := range rec.Vector {
		a.sums[i] += x
	}
	a.n++
	return nil
}

func (a *colSumAcc) Merge(other engine.Accumulator) error {
	o := other.(*colSumAcc)
	for i := range a.sums {
		a.sums[i] += o.sums[i]
	}
	a.n += o.n
	return nil
}

// gramAcc accumulates the upper triangle of Σ x xᵀ in row-major storage.
type gramAcc struct {
	n     int
	upper []float64
}

func (a *gramAcc) Absorb(rec model.Record) error {
	if err := model.CheckShape(rec, a.n); err != nil {
		return err
	}
	for i := 0; i < a.n; i++ {
		xi := rec.Vector[i]
		if xi == 0 {
			continue
		}
		row := a.upper[i*a.n:]
		for j := i; j < a.n; j++ {
			row[j] += xi * rec.Vector[j]
		}
	}
	return nil
}

func (a *gramAcc) Merge(other engine.Accumulator) error {
	o := other.(*gramAcc)
	for i := range a.upper {
		a.upper[i] += o.upper[i]
	}
	return nil
}
