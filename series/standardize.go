package series

import (
	"context"
	"math"

	"github.com/pulselab/pulse/engine"
	"github.com/pulselab/pulse/internal/numeric"
	"github.com/pulselab/pulse/model"
)

// Axis selects the scope of a centering/standardization statistic.
//
// Axis 0 (within-record) computes the statistic from each record's own
// vector using population variance (ddof = 0) and needs no cross-record
// communication. Axis 1 (across-record) computes a per-position statistic
// from the values at that position across all records, using sample variance
// (ddof = 1) because it is an estimate from a finite sample of records; it
// requires one blocking reduce before any record can be transformed.
type Axis int

const (
	// WithinRecord computes statistics per record (axis 0).
	WithinRecord Axis = 0
	// AcrossRecords computes statistics per index position (axis 1).
	AcrossRecords Axis = 1
)

// Center subtracts the relevant mean element-wise: the record's own mean for
// axis 0, the per-position cross-record mean for axis 1.
func (s *Series) Center(ctx context.Context, axis Axis) (*Series, error) {
	switch axis {
	case WithinRecord:
		return s.apply(ctx, s.index, func(rec model.Record) (model.Record, error) {
			m := vectorMean(rec.Vector)
			out := make([]float64, len(rec.Vector))
			for i, x := range rec.Vector {
				out[i] = x - m
			}
			return model.Record{Key: rec.Key, Vector: out}, nil
		})
	case AcrossRecords:
		cs, err := s.columnMoments(ctx)
		if err != nil {
			return nil, err
		}
		means := cs.means()
		return s.apply(ctx, s.index, func(rec model.Record) (model.Record, error) {
			out := make([]float64, len(rec.Vector))
			for i, x := range rec.Vector {
				out[i] = x - means[i]
			}
			return model.Record{Key: rec.Key, Vector: out}, nil
		})
	default:
		return nil, ErrInvalidAxis
	}
}

// Standardize divides the original (uncentered) values by the relevant
// standard deviation. A zero standard deviation fails with
// *ErrDegenerateVariance unless an epsilon floor was configured.
func (s *Series) Standardize(ctx context.Context, axis Axis) (*Series, error) {
	switch axis {
	case WithinRecord:
		eps := s.eps
		return s.apply(ctx, s.index, func(rec model.Record) (model.Record, error) {
			_, sd := vectorMeanStdP(rec.Vector)
			sd, err := guardStd(sd, eps, -1)
			if err != nil {
				return model.Record{}, err
			}
			out := make([]float64, len(rec.Vector))
			for i, x := range rec.Vector {
				out[i] = x / sd
			}
			return model.Record{Key: rec.Key, Vector: out}, nil
		})
	case AcrossRecords:
		cs, err := s.columnMoments(ctx)
		if err != nil {
			return nil, err
		}
		stds, err := cs.sampleStds(s.eps)
		if err != nil {
			return nil, err
		}
		return s.apply(ctx, s.index, func(rec model.Record) (model.Record, error) {
			out := make([]float64, len(rec.Vector))
			for i, x := range rec.Vector {
				out[i] = x / stds[i]
			}
			return model.Record{Key: rec.Key, Vector: out}, nil
		})
	default:
		return nil, ErrInvalidAxis
	}
}

// ZScore subtracts the relevant mean and divides by the relevant standard
// deviation. The statistics are computed in one pass (one reduce for axis 1),
// not by composing Center and Standardize.
func (s *Series) ZScore(ctx context.Context, axis Axis) (*Series, error) {
	switch axis {
	case WithinRecord:
		eps := s.eps
		return s.apply(ctx, s.index, func(rec model.Record) (model.Record, error) {
			m, sd := vectorMeanStdP(rec.Vector)
			sd, err := guardStd(sd, eps, -1)
			if err != nil {
				return model.Record{}, err
			}
			out := make([]float64, len(rec.Vector))
			for i, x := range rec.Vector {
				out[i] = (x - m) / sd
			}
			return model.Record{Key: rec.Key, Vector: out}, nil
		})
	case AcrossRecords:
		cs, err := s.columnMoments(ctx)
		if err != nil {
			return nil, err
		}
		means := cs.means()
		stds, err := cs.sampleStds(s.eps)
		if err != nil {
			return nil, err
		}
		return s.apply(ctx, s.index, func(rec model.Record) (model.Record, error) {
			out := make([]float64, len(rec.Vector))
			for i, x := range rec.Vector {
				out[i] = (x - means[i]) / stds[i]
			}
			return model.Record{Key: rec.Key, Vector: out}, nil
		})
	default:
		return nil, ErrInvalidAxis
	}
}

// guardStd applies the degenerate-variance policy to a standard deviation.
func guardStd(sd, eps float64, position int) (float64, error) {
	if sd != 0 && !math.IsNaN(sd) {
		return sd, nil
	}
	if eps > 0 {
		return eps, nil
	}
	return 0, &ErrDegenerateVariance{Position: position}
}

func vectorMean(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// vectorMeanStdP returns the mean and population standard deviation.
func vectorMeanStdP(v []float64) (mean, std float64) {
	mean = vectorMean(v)
	var m2 float64
	for _, x := range v {
		d := x - mean
		m2 += d * d
	}
	return mean, math.Sqrt(m2 / float64(len(v)))
}

// columnMoments runs the blocking reduce that materializes per-position
// mean/variance across all records.
func (s *Series) columnMoments(ctx context.Context) (*colMomentsAcc, error) {
	if s.Count() == 0 {
		return nil, ErrEmptyCollection
	}
	ncols := len(s.index)
	acc, err := s.col.Aggregate(ctx, func() engine.Accumulator {
		return &colMomentsAcc{ncols: ncols}
	})
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Debug("column statistics materialized", "positions", ncols, "records", s.Count())
	}
	return acc.(*colMomentsAcc), nil
}

// colMomentsAcc accumulates per-position moments with the mergeable Welford
// scheme, one accumulator per index position.
type colMomentsAcc struct {
	ncols   int
	moments []numeric.Moments
}

func (a *colMomentsAcc) Absorb(rec model.Record) error {
	if err := model.CheckShape(rec, a.ncols); err != nil {
		return err
	}
	if a.moments == nil {
		a.moments = make([]numeric.Moments, a.ncols)
	}
	for i, x := range rec.Vector {
		a.moments[i].Add(x)
	}
	return nil
}

func (a *colMomentsAcc) Merge(other engine.Accumulator) error {
	o := other.(*colMomentsAcc)
	if o.moments == nil {
		return nil
	}
	if a.moments == nil {
		a.moments = make([]numeric.Moments, a.ncols)
	}
	for i := range a.moments {
		a.moments[i].Combine(o.moments[i])
	}
	return nil
}

func (a *colMomentsAcc) means() []float64 {
	out := make([]float64, a.ncols)
	for i := range a.moments {
		out[i] = a.moments[i].Mean
	}
	return out
}

// sampleStds returns per-position sample standard deviations (ddof = 1),
// applying the degenerate-variance policy position by position.
func (a *colMomentsAcc) sampleStds(eps float64) ([]float64, error) {
	out := make([]float64, a.ncols)
	for i := range a.moments {
		sd := math.Sqrt(a.moments[i].VarianceS())
		guarded, err := guardStd(sd, eps, i)
		if err != nil {
			return nil, err
		}
		out[i] = guarded
	}
	return out, nil
}
