package pulse

import (
	"context"
	"io"

	"github.com/pulselab/pulse/engine"
	"github.com/pulselab/pulse/model"
	"github.com/pulselab/pulse/series"
	"github.com/pulselab/pulse/store"
)

// Convenience aliases so simple programs only import the root package.
type (
	// Key is an n-dimensional record coordinate.
	Key = model.Key
	// Record pairs a key with a vector of values.
	Record = model.Record
	// Index labels the positions of every record's vector.
	Index = model.Index
	// Series is a keyed collection of equal-length vectors.
	Series = series.Series
)

// FromRecords builds a series from records, distributing them over an
// in-process collection. All records must have vectors of equal length.
func FromRecords(ctx context.Context, records []model.Record, opts ...Option) (*series.Series, error) {
	o := applyOptions(opts)
	col := engine.NewLocal(records, o.engineOptions()...)
	s, err := series.New(ctx, col, o.seriesOptions()...)
	if err != nil {
		return nil, err
	}
	if o.logger != nil {
		o.logger.WithRows(s.Count()).WithCols(s.Len()).DebugContext(ctx, "series constructed")
	}
	return s, nil
}

// FromPairs builds a series from parallel key and vector slices. The slices
// must have equal length.
func FromPairs(ctx context.Context, keys []model.Key, vectors [][]float64, opts ...Option) (*series.Series, error) {
	if len(keys) != len(vectors) {
		return nil, model.NewShapeMismatch(len(keys), len(vectors))
	}
	records := make([]model.Record, len(keys))
	for i := range keys {
		records[i] = model.Record{Key: keys[i], Vector: vectors[i]}
	}
	return FromRecords(ctx, records, opts...)
}

// FromText builds a series from whitespace-delimited numeric rows. The
// first nkeys fields of each row form the key; pass 0 to assign linear
// one-based keys.
func FromText(ctx context.Context, r io.Reader, nkeys int, opts ...Option) (*series.Series, error) {
	records, err := store.ParseText(r, nkeys)
	if err != nil {
		return nil, err
	}
	return FromRecords(ctx, records, opts...)
}

// Save writes a series to a blob store under name.
func Save(ctx context.Context, bs store.BlobStore, name string, s *series.Series, opts ...store.SaveOption) error {
	return store.SaveSeries(ctx, bs, name, s, opts...)
}

// Load reads a series previously written with Save.
func Load(ctx context.Context, bs store.BlobStore, name string, opts ...store.SaveOption) (*series.Series, error) {
	return store.LoadSeries(ctx, bs, name, opts...)
}
