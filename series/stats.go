package series

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/pulselab/pulse/model"
)

// Stat enumerates the per-record statistics. String dispatch is resolved once
// at call time via ParseStat, never inside the map closure.
type Stat uint8

const (
	StatCount Stat = iota
	StatMean
	StatStdev
	StatVariance
	StatSum
	StatMax
	StatMin
)

// statNames lists all supported statistics in the order SeriesStats reports
// them. This order is also the index of the SeriesStats result.
var statNames = []string{"count", "mean", "stdev", "variance", "sum", "max", "min"}

// String returns the dispatch name of the statistic.
func (st Stat) String() string {
	if int(st) < len(statNames) {
		return statNames[st]
	}
	return "unknown"
}

// ParseStat resolves a statistic by name.
func ParseStat(name string) (Stat, error) {
	for i, n := range statNames {
		if n == name {
			return Stat(i), nil
		}
	}
	return 0, &ErrUnknownStatistic{Name: name}
}

// statSeries builds the length-1 Series produced by scalar reductions.
func (s *Series) statSeries(ctx context.Context, name string, fn func(stats.Float64Data) (float64, error)) (*Series, error) {
	idx := model.Index{name}
	return s.apply(ctx, idx, func(rec model.Record) (model.Record, error) {
		v, err := fn(rec.Vector)
		if err != nil {
			return model.Record{}, err
		}
		return model.Record{Key: rec.Key, Vector: []float64{v}}, nil
	})
}

// SeriesMean computes the arithmetic mean of each record's vector, yielding a
// Series of length-1 vectors indexed by "mean".
func (s *Series) SeriesMean(ctx context.Context) (*Series, error) {
	return s.statSeries(ctx, "mean", stats.Mean)
}

// SeriesSum computes the sum of each record's vector.
func (s *Series) SeriesSum(ctx context.Context) (*Series, error) {
	return s.statSeries(ctx, "sum", stats.Sum)
}

// SeriesStdev computes the population standard deviation (denominator = n)
// of each record's vector.
func (s *Series) SeriesStdev(ctx context.Context) (*Series, error) {
	return s.statSeries(ctx, "stdev", stats.StandardDeviationPopulation)
}

// SeriesStat computes a single named statistic per record. Supported names
// are "count", "mean", "stdev", "variance", "sum", "max" and "min"; variance
// and stdev are population statistics. Unknown names fail with
// *ErrUnknownStatistic.
func (s *Series) SeriesStat(ctx context.Context, name string) (*Series, error) {
	st, err := ParseStat(name)
	if err != nil {
		return nil, err
	}
	switch st {
	case StatCount:
		return s.statSeries(ctx, name, func(v stats.Float64Data) (float64, error) {
			return float64(len(v)), nil
		})
	case StatMean:
		return s.statSeries(ctx, name, stats.Mean)
	case StatStdev:
		return s.statSeries(ctx, name, stats.StandardDeviationPopulation)
	case StatVariance:
		return s.statSeries(ctx, name, stats.PopulationVariance)
	case StatSum:
		return s.statSeries(ctx, name, stats.Sum)
	case StatMax:
		return s.statSeries(ctx, name, stats.Max)
	default:
		return s.statSeries(ctx, name, stats.Min)
	}
}

// SeriesStats computes all supported statistics per record in a single pass
// over each vector. The result's index enumerates the statistic names, so a
// following Select("mean") retrieves one of them.
func (s *Series) SeriesStats(ctx context.Context) (*Series, error) {
	idx := make(model.Index, len(statNames))
	for i, n := range statNames {
		idx[i] = n
	}
	return s.apply(ctx, idx, func(rec model.Record) (model.Record, error) {
		out := recordStats(rec.Vector)
		return model.Record{Key: rec.Key, Vector: out}, nil
	})
}

// recordStats computes count, mean, stdev, variance, sum, max and min from a
// non-empty vector in one traversal (Welford update for the moments).
func recordStats(v []float64) []float64 {
	var (
		mean, m2 float64
		sum      float64
	)
	maxv := math.Inf(-1)
	minv := math.Inf(1)
	for i, x := range v {
		sum += x
		if x > maxv {
			maxv = x
		}
		if x < minv {
			minv = x
		}
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}
	n := float64(len(v))
	variance := m2 / n
	return []float64{n, mean, math.Sqrt(variance), variance, sum, maxv, minv}
}
