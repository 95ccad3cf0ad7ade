package pulse

import (
	"github.com/pulselab/pulse/engine"
	"github.com/pulselab/pulse/model"
	"github.com/pulselab/pulse/series"
)

type options struct {
	index      model.Index
	partitions int
	epsilon    float64
	logger     *Logger
}

// Option configures series construction at the package level.
type Option func(*options)

// WithIndex sets the index labeling vector positions. Without it an
// identity index of 0..n-1 is derived from the first record.
func WithIndex(index model.Index) Option {
	return func(o *options) {
		o.index = index
	}
}

// WithPartitions sets how many partitions the in-process collection splits
// records into. More partitions mean more parallelism during transforms
// and aggregations.
func WithPartitions(n int) Option {
	return func(o *options) {
		o.partitions = n
	}
}

// WithEpsilon sets the variance floor used by standardization: positions
// whose standard deviation falls below eps are clamped to eps instead of
// failing with a degenerate-variance error.
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		o.epsilon = eps
	}
}

// WithLogger sets the structured logger used by the collection and series.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func (o options) engineOptions() []engine.LocalOption {
	var out []engine.LocalOption
	if o.partitions > 0 {
		out = append(out, engine.WithPartitions(o.partitions))
	}
	if o.logger != nil {
		out = append(out, engine.WithLogger(o.logger.Logger))
	}
	return out
}

func (o options) seriesOptions() []series.Option {
	var out []series.Option
	if o.index != nil {
		out = append(out, series.WithIndex(o.index))
	}
	if o.epsilon > 0 {
		out = append(out, series.WithEpsilon(o.epsilon))
	}
	if o.logger != nil {
		out = append(out, series.WithLogger(o.logger.Logger))
	}
	return out
}
