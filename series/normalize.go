package series

import (
	"context"

	"github.com/pulselab/pulse/internal/numeric"
	"github.com/pulselab/pulse/model"
)

// NormalizeMethod enumerates baseline normalization methods. Dispatch by name
// happens once, before the map phase.
type NormalizeMethod uint8

const (
	// NormalizePercentile rescales each record relative to a percentile
	// baseline of its own values.
	NormalizePercentile NormalizeMethod = iota
)

// ParseNormalizeMethod resolves a normalization method by name.
func ParseNormalizeMethod(name string) (NormalizeMethod, error) {
	switch name {
	case "percentile":
		return NormalizePercentile, nil
	default:
		return 0, &ErrUnsupportedMethod{Op: "normalize", Method: name}
	}
}

// DetrendMethod enumerates trend-removal methods.
type DetrendMethod uint8

const (
	// DetrendLinear removes an ordinary-least-squares line fit.
	DetrendLinear DetrendMethod = iota
)

// ParseDetrendMethod resolves a detrend method by name.
func ParseDetrendMethod(name string) (DetrendMethod, error) {
	switch name {
	case "linear":
		return DetrendLinear, nil
	default:
		return 0, &ErrUnsupportedMethod{Op: "detrend", Method: name}
	}
}

type normalizeOptions struct {
	percentile float64
	offset     float64
}

// NormalizeOption configures Normalize.
type NormalizeOption func(*normalizeOptions)

// WithPercentile sets the baseline percentile (default 20).
func WithPercentile(p float64) NormalizeOption {
	return func(o *normalizeOptions) {
		o.percentile = p
	}
}

// WithOffset sets the denominator offset (default 0.1). The offset is added
// to the baseline in the denominator only; it does not shift the baseline
// used for centering. It keeps the division bounded when the baseline is
// near zero.
func WithOffset(off float64) NormalizeOption {
	return func(o *normalizeOptions) {
		o.offset = off
	}
}

// Normalize rescales every record independently against a baseline derived
// from its own values. For the "percentile" method the baseline is the given
// percentile (linear interpolation) of the record's vector, and the output
// is (value - baseline) / (baseline + offset) element-wise.
func (s *Series) Normalize(ctx context.Context, method string, opts ...NormalizeOption) (*Series, error) {
	m, err := ParseNormalizeMethod(method)
	if err != nil {
		return nil, err
	}
	o := normalizeOptions{percentile: 20, offset: 0.1}
	for _, opt := range opts {
		opt(&o)
	}
	_ = m // only NormalizePercentile exists today
	return s.apply(ctx, s.index, func(rec model.Record) (model.Record, error) {
		baseline := numeric.Percentile(rec.Vector, o.percentile)
		out := make([]float64, len(rec.Vector))
		for i, x := range rec.Vector {
			out[i] = (x - baseline) / (baseline + o.offset)
		}
		return model.Record{Key: rec.Key, Vector: out}, nil
	})
}

// Detrend removes a fitted trend from every record. For the "linear" method a
// first-degree polynomial of value against position 0..n-1 is fit by ordinary
// least squares and subtracted; any arithmetic progression detrends to the
// all-zero vector.
func (s *Series) Detrend(ctx context.Context, method string) (*Series, error) {
	m, err := ParseDetrendMethod(method)
	if err != nil {
		return nil, err
	}
	_ = m // only DetrendLinear exists today
	return s.apply(ctx, s.index, func(rec model.Record) (model.Record, error) {
		slope, intercept := numeric.FitLine(rec.Vector)
		out := make([]float64, len(rec.Vector))
		for i, x := range rec.Vector {
			out[i] = x - (intercept + slope*float64(i))
		}
		return model.Record{Key: rec.Key, Vector: out}, nil
	})
}
