package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyString(t *testing.T) {
	assert.Equal(t, "Key(1)", Key{1}.String())
	assert.Equal(t, "Key(2,3,4)", Key{2, 3, 4}.String())
}

func TestKeyClone(t *testing.T) {
	k := Key{1, 2}
	c := k.Clone()
	c[0] = 9
	assert.Equal(t, Key{1, 2}, k)
}

func TestIdentity(t *testing.T) {
	idx := Identity(3)
	require.Len(t, idx, 3)
	assert.Equal(t, float64(0), idx[0])
	assert.Equal(t, float64(2), idx[2])
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   Label
		want Label
	}{
		{name: "int", in: int(4), want: float64(4)},
		{name: "int32", in: int32(-2), want: float64(-2)},
		{name: "uint8", in: uint8(9), want: float64(9)},
		{name: "float32", in: float32(1.5), want: float64(1.5)},
		{name: "float64 passes through", in: float64(2.5), want: float64(2.5)},
		{name: "string passes through", in: "gene-a", want: "gene-a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.in))
		})
	}
}

func TestCanonicalEqualityAcrossKinds(t *testing.T) {
	// An index labeled with ints must match a float64 lookup.
	assert.Equal(t, Canonical(int(3)), Canonical(float64(3)))
}

func TestNumeric(t *testing.T) {
	f, ok := Numeric(int64(7))
	assert.True(t, ok)
	assert.Equal(t, float64(7), f)

	_, ok = Numeric("label")
	assert.False(t, ok)
}

func TestCheckShape(t *testing.T) {
	rec := Record{Key: Key{1}, Vector: []float64{1, 2, 3}}

	assert.NoError(t, CheckShape(rec, 3))

	err := CheckShape(rec, 4)
	require.Error(t, err)
	var sm *ErrShapeMismatch
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, 4, sm.Expected)
	assert.Equal(t, 3, sm.Actual)
}

func TestRecordClone(t *testing.T) {
	rec := Record{Key: Key{1}, Vector: []float64{1, 2}}
	c := rec.Clone()
	c.Vector[0] = 9
	c.Key[0] = 9
	assert.Equal(t, []float64{1, 2}, rec.Vector)
	assert.Equal(t, Key{1}, rec.Key)
}
