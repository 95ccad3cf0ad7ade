package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulselab/pulse/model"
)

func makeRecords(n int) []model.Record {
	records := make([]model.Record, n)
	for i := range records {
		records[i] = model.Record{
			Key:    model.Key{uint64(i + 1)},
			Vector: []float64{float64(i), float64(i * 2)},
		}
	}
	return records
}

// sumAcc folds the first vector element of every record.
type sumAcc struct {
	total float64
	seen  int
}

func (a *sumAcc) Absorb(rec model.Record) error {
	a.total += rec.Vector[0]
	a.seen++
	return nil
}

func (a *sumAcc) Merge(other Accumulator) error {
	o := other.(*sumAcc)
	a.total += o.total
	a.seen += o.seen
	return nil
}

func TestNewLocalPartitioning(t *testing.T) {
	tests := []struct {
		name       string
		records    int
		partitions int
		wantParts  int
	}{
		{name: "fewer records than partitions", records: 2, partitions: 8, wantParts: 2},
		{name: "even split", records: 8, partitions: 4, wantParts: 4},
		{name: "uneven split", records: 10, partitions: 3, wantParts: 3},
		{name: "empty", records: 0, partitions: 4, wantParts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLocal(makeRecords(tt.records), WithPartitions(tt.partitions))
			assert.Equal(t, tt.records, l.Count())
			assert.Equal(t, tt.wantParts, l.Partitions())
		})
	}
}

func TestCollectPreservesOrder(t *testing.T) {
	ctx := context.Background()
	records := makeRecords(17)
	l := NewLocal(records, WithPartitions(4))

	got, err := l.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, got, 17)
	for i, rec := range got {
		assert.Equal(t, model.Key{uint64(i + 1)}, rec.Key)
	}
}

func TestMapPreservesOrderAcrossPartitionCounts(t *testing.T) {
	ctx := context.Background()
	records := makeRecords(23)

	double := func(rec model.Record) (model.Record, error) {
		out := make([]float64, len(rec.Vector))
		for i, x := range rec.Vector {
			out[i] = x * 2
		}
		return model.Record{Key: rec.Key, Vector: out}, nil
	}

	var want []model.Record
	for _, parts := range []int{1, 2, 5, 23} {
		l := NewLocal(records, WithPartitions(parts))
		mapped, err := l.Map(ctx, double)
		require.NoError(t, err)
		got, err := mapped.Collect(ctx)
		require.NoError(t, err)

		if want == nil {
			want = got
			continue
		}
		assert.Equal(t, want, got, "partitions=%d", parts)
	}
}

func TestMapError(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(makeRecords(10), WithPartitions(3))

	boom := errors.New("boom")
	_, err := l.Map(ctx, func(rec model.Record) (model.Record, error) {
		if rec.Key[0] == 7 {
			return model.Record{}, boom
		}
		return rec, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestAggregateIsPartitionInvariant(t *testing.T) {
	ctx := context.Background()
	records := makeRecords(100)

	var want float64
	for _, rec := range records {
		want += rec.Vector[0]
	}

	for _, parts := range []int{1, 3, 7, 100} {
		l := NewLocal(records, WithPartitions(parts))
		acc, err := l.Aggregate(ctx, func() Accumulator { return &sumAcc{} })
		require.NoError(t, err)
		got := acc.(*sumAcc)
		assert.Equal(t, 100, got.seen, "partitions=%d", parts)
		assert.InDelta(t, want, got.total, 1e-9, "partitions=%d", parts)
	}
}

func TestAggregateNilAccumulator(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(makeRecords(4), WithPartitions(2))

	_, err := l.Aggregate(ctx, func() Accumulator { return nil })
	assert.ErrorIs(t, err, ErrNilAccumulator)
}

func TestSampleDeterministic(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(makeRecords(50), WithPartitions(4))

	a, err := l.Sample(ctx, 10, 42)
	require.NoError(t, err)
	b, err := l.Sample(ctx, 10, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := l.Sample(ctx, 10, 43)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	// Chosen records keep input order.
	for i := 1; i < len(a); i++ {
		assert.Less(t, a[i-1].Key[0], a[i].Key[0])
	}
}

func TestSampleBounds(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(makeRecords(5), WithPartitions(2))

	all, err := l.Sample(ctx, 10, 1)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := l.Sample(ctx, 0, 1)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMapCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewLocal(makeRecords(100), WithPartitions(2))
	_, err := l.Map(ctx, func(rec model.Record) (model.Record, error) {
		return rec, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
