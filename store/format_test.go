package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/pulselab/pulse/model"
)

func sampleRecords() []model.Record {
	return []model.Record{
		{Key: model.Key{1, 1}, Vector: []float64{1.5, -2.25, 0}},
		{Key: model.Key{2, 1}, Vector: []float64{3, 4, 5}},
		{Key: model.Key{1, 2}, Vector: []float64{-1, 0.125, 9.75}},
	}
}

func TestEncodeDecodeSeries(t *testing.T) {
	records := sampleRecords()
	index := model.Index{float64(0), float64(1), float64(2)}

	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		data, err := EncodeSeries(records, index, nil, comp)
		require.NoError(t, err)

		gotRecords, gotIndex, err := DecodeSeries(data)
		require.NoError(t, err)
		assert.Equal(t, records, gotRecords, "compression %d", comp)
		assert.Equal(t, index, gotIndex, "compression %d", comp)
	}
}

func TestEncodeDecodeSeriesStringLabels(t *testing.T) {
	records := []model.Record{
		{Key: model.Key{1}, Vector: []float64{1, 2}},
	}
	index := model.Index{"mean", "stdev"}

	data, err := EncodeSeries(records, index, nil, CompressionZSTD)
	require.NoError(t, err)

	_, gotIndex, err := DecodeSeries(data)
	require.NoError(t, err)
	assert.Equal(t, index, gotIndex)
}

func TestEncodeSeriesCanonicalizesIntLabels(t *testing.T) {
	records := []model.Record{
		{Key: model.Key{1}, Vector: []float64{1, 2}},
	}
	data, err := EncodeSeries(records, model.Index{0, 1}, nil, CompressionNone)
	require.NoError(t, err)

	_, gotIndex, err := DecodeSeries(data)
	require.NoError(t, err)
	assert.Equal(t, model.Index{float64(0), float64(1)}, gotIndex)
}

func TestEncodeSeriesRejectsShapeDrift(t *testing.T) {
	records := []model.Record{
		{Key: model.Key{1}, Vector: []float64{1, 2}},
		{Key: model.Key{2}, Vector: []float64{1}},
	}
	_, err := EncodeSeries(records, model.Index{float64(0), float64(1)}, nil, CompressionNone)
	var sm *model.ErrShapeMismatch
	assert.ErrorAs(t, err, &sm)
}

func TestEncodeSeriesRejectsKeyRankDrift(t *testing.T) {
	records := []model.Record{
		{Key: model.Key{1, 1}, Vector: []float64{1}},
		{Key: model.Key{2}, Vector: []float64{2}},
	}
	_, err := EncodeSeries(records, model.Index{float64(0)}, nil, CompressionNone)
	var bf *ErrBadFormat
	assert.ErrorAs(t, err, &bf)
}

func TestDecodeSeriesRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "short", data: []byte{1, 2}},
		{name: "wrong magic", data: []byte("XXXX\x01\x00\x04json")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeSeries(tt.data)
			var bf *ErrBadFormat
			assert.ErrorAs(t, err, &bf)
		})
	}
}

func TestDecodeSeriesRejectsWrongMagic(t *testing.T) {
	// A valid matrix block is not a series block.
	data, err := EncodeMatrix(mat.NewDense(1, 1, []float64{1}), nil, CompressionNone)
	require.NoError(t, err)
	_, _, err = DecodeSeries(data)
	var bf *ErrBadFormat
	assert.ErrorAs(t, err, &bf)
}

func TestEncodeDecodeMatrix(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4.5, -6, 7})

	data, err := EncodeMatrix(m, nil, CompressionLZ4)
	require.NoError(t, err)

	got, err := DecodeMatrix(data)
	require.NoError(t, err)
	rows, cols := got.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, m.RawMatrix().Data, got.RawMatrix().Data)
}

func TestEncodeDecodeVector(t *testing.T) {
	v := []float64{3.25, -1, 0, 2e10}

	data, err := EncodeVector(v, nil, CompressionZSTD)
	require.NoError(t, err)

	got, err := DecodeVector(data)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}
