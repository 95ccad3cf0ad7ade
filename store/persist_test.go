package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/pulselab/pulse/engine"
	"github.com/pulselab/pulse/factor"
	"github.com/pulselab/pulse/model"
	"github.com/pulselab/pulse/series"
)

func buildSeries(t *testing.T, records []model.Record, opts ...series.Option) *series.Series {
	t.Helper()
	col := engine.NewLocal(records, engine.WithPartitions(2))
	s, err := series.New(context.Background(), col, opts...)
	require.NoError(t, err)
	return s
}

func TestSaveLoadSeries(t *testing.T) {
	ctx := context.Background()
	bs := NewMemoryStore()

	s := buildSeries(t, sampleRecords())
	require.NoError(t, SaveSeries(ctx, bs, "data/series.pls", s))

	loaded, err := LoadSeries(ctx, bs, "data/series.pls")
	require.NoError(t, err)

	assert.Equal(t, s.Index(), loaded.Index())
	assert.Equal(t, s.Count(), loaded.Count())

	want, err := s.Records(ctx)
	require.NoError(t, err)
	got, err := loaded.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveLoadSeriesOnDisk(t *testing.T) {
	ctx := context.Background()
	bs, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	s := buildSeries(t, sampleRecords())
	require.NoError(t, SaveSeries(ctx, bs, "series.pls", s, WithCompression(CompressionLZ4)))

	loaded, err := LoadSeries(ctx, bs, "series.pls", WithLoadPartitions(3))
	require.NoError(t, err)
	assert.Equal(t, s.Count(), loaded.Count())

	names, err := bs.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"series.pls"}, names)
}

func TestLoadSeriesMissing(t *testing.T) {
	ctx := context.Background()
	bs := NewMemoryStore()
	_, err := LoadSeries(ctx, bs, "nope.pls")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveLoadFactorization(t *testing.T) {
	ctx := context.Background()
	bs := NewMemoryStore()

	u := buildSeries(t, []model.Record{
		{Key: model.Key{1}, Vector: []float64{0.6, 0.8}},
		{Key: model.Key{2}, Vector: []float64{-0.8, 0.6}},
	})
	res := &factor.Result{
		U: u,
		S: []float64{5, 2},
		V: mat.NewDense(2, 3, []float64{1, 0, 0, 0, 1, 0}),
	}

	require.NoError(t, SaveFactorization(ctx, bs, "svd/run1", res))

	names, err := bs.List(ctx, "svd/run1")
	require.NoError(t, err)
	assert.Equal(t, []string{"svd/run1/comps.pls", "svd/run1/latent.pls", "svd/run1/scores.pls"}, names)

	loaded, err := LoadFactorization(ctx, bs, "svd/run1")
	require.NoError(t, err)
	assert.Equal(t, res.S, loaded.S)
	assert.Equal(t, res.V.RawMatrix().Data, loaded.V.RawMatrix().Data)

	wantU, err := res.U.Records(ctx)
	require.NoError(t, err)
	gotU, err := loaded.U.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantU, gotU)
}
