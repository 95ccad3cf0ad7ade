// Package numeric holds small numeric kernels shared by the series and
// factorization layers: linear-interpolation percentiles, ordinary
// least-squares line fitting, and mergeable moment accumulators.
package numeric

import (
	"math"
	"sort"
)

// Percentile computes the p-th percentile (0 <= p <= 100) of values using the
// linear interpolation rule: the percentile sits at rank p/100*(n-1) in the
// sorted data, interpolating between the two nearest order statistics.
// Returns NaN for empty input.
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return values[0]
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// FitLine fits y = intercept + slope*x by ordinary least squares over
// x = 0..len(y)-1. A single point fits a flat line through itself.
func FitLine(y []float64) (slope, intercept float64) {
	n := len(y)
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return 0, y[0]
	}
	// x mean and variance have closed forms for x = 0..n-1.
	xMean := float64(n-1) / 2
	var yMean float64
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)

	var sxy, sxx float64
	for i, v := range y {
		dx := float64(i) - xMean
		sxy += dx * (v - yMean)
		sxx += dx * dx
	}
	slope = sxy / sxx
	intercept = yMean - slope*xMean
	return slope, intercept
}

// Moments is a mergeable one-pass mean/variance accumulator (Welford's
// update with the parallel combination rule). The zero value is ready to use.
type Moments struct {
	N    int64
	Mean float64
	M2   float64
}

// Add folds one observation.
func (m *Moments) Add(x float64) {
	m.N++
	delta := x - m.Mean
	m.Mean += delta / float64(m.N)
	m.M2 += delta * (x - m.Mean)
}

// Combine merges another accumulator into m.
func (m *Moments) Combine(o Moments) {
	if o.N == 0 {
		return
	}
	if m.N == 0 {
		*m = o
		return
	}
	n1, n2 := float64(m.N), float64(o.N)
	delta := o.Mean - m.Mean
	total := n1 + n2
	m.Mean += delta * n2 / total
	m.M2 += o.M2 + delta*delta*n1*n2/total
	m.N += o.N
}

// VarianceP returns the population variance (ddof = 0).
func (m *Moments) VarianceP() float64 {
	if m.N == 0 {
		return math.NaN()
	}
	return m.M2 / float64(m.N)
}

// VarianceS returns the sample variance (ddof = 1); NaN for fewer than two
// observations.
func (m *Moments) VarianceS() float64 {
	if m.N < 2 {
		return math.NaN()
	}
	return m.M2 / float64(m.N-1)
}
