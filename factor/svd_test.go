package factor

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/pulselab/pulse/engine"
	"github.com/pulselab/pulse/series"
	"github.com/pulselab/pulse/testutil"
)

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("direct")
	require.NoError(t, err)
	assert.Equal(t, Direct, m)

	m, err = ParseMethod("em")
	require.NoError(t, err)
	assert.Equal(t, EM, m)

	_, err = ParseMethod("lanczos")
	var um *series.ErrUnsupportedMethod
	require.ErrorAs(t, err, &um)
	assert.Equal(t, "svd", um.Op)
}

func TestSVDInvalidK(t *testing.T) {
	m := newMatrix(t, [][]float64{{1, 2}, {3, 4}})

	for _, k := range []int{0, -1, 3} {
		svd := &SVD{K: k}
		_, err := svd.Calc(context.Background(), m)
		assert.ErrorIs(t, err, ErrInvalidK, "k=%d", k)
	}
}

func TestSVDDirectDiagonal(t *testing.T) {
	// X = diag(3, 2): singular values are exactly 3 and 2.
	m := newMatrix(t, [][]float64{{3, 0}, {0, 2}})

	svd := &SVD{K: 2, Method: Direct}
	res, err := svd.Calc(context.Background(), m)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{3, 2}, res.S, 1e-9)

	// Right singular vectors are the standard basis, up to sign.
	assert.InDelta(t, 1, math.Abs(res.V.At(0, 0)), 1e-9)
	assert.InDelta(t, 0, res.V.At(0, 1), 1e-9)
	assert.InDelta(t, 0, res.V.At(1, 0), 1e-9)
	assert.InDelta(t, 1, math.Abs(res.V.At(1, 1)), 1e-9)

	// Scores are unit rows, up to sign.
	rows := rowsOf(t, NewRowMatrix(res.U))
	assert.InDelta(t, 1, math.Abs(rows[0][0]), 1e-9)
	assert.InDelta(t, 0, rows[0][1], 1e-9)
	assert.InDelta(t, 0, rows[1][0], 1e-9)
	assert.InDelta(t, 1, math.Abs(rows[1][1]), 1e-9)
}

func testMatrixRows() [][]float64 {
	return [][]float64{
		{2.1, -1.0, 0.5},
		{0.3, 4.2, -2.2},
		{-1.5, 0.8, 3.1},
		{2.8, 2.8, 0.1},
		{-0.4, -0.9, 1.7},
	}
}

func TestSVDDirectReconstruction(t *testing.T) {
	rows := testMatrixRows()
	m := newMatrix(t, rows)

	// Full-rank decomposition reconstructs the matrix: X = U diag(S) V.
	svd := &SVD{K: 3, Method: Direct}
	res, err := svd.Calc(context.Background(), m)
	require.NoError(t, err)

	require.Len(t, res.S, 3)
	for i := 1; i < len(res.S); i++ {
		assert.GreaterOrEqual(t, res.S[i-1], res.S[i], "singular values must descend")
	}

	u := rowsOf(t, NewRowMatrix(res.U))
	for r := range rows {
		for c := range rows[r] {
			var sum float64
			for i := 0; i < 3; i++ {
				sum += u[r][i] * res.S[i] * res.V.At(i, c)
			}
			assert.InDelta(t, rows[r][c], sum, 1e-9, "(%d,%d)", r, c)
		}
	}
}

func TestSVDDirectOrthonormalV(t *testing.T) {
	m := newMatrix(t, testMatrixRows())

	svd := &SVD{K: 2, Method: Direct}
	res, err := svd.Calc(context.Background(), m)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			var dot float64
			for c := 0; c < 3; c++ {
				dot += res.V.At(i, c) * res.V.At(j, c)
			}
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, dot, 1e-9, "v[%d]·v[%d]", i, j)
		}
	}
}

func TestSVDEMAgreesWithDirect(t *testing.T) {
	m := newMatrix(t, testMatrixRows())
	ctx := context.Background()

	direct, err := (&SVD{K: 2, Method: Direct}).Calc(ctx, m)
	require.NoError(t, err)

	em, err := (&SVD{K: 2, Method: EM, MaxIter: 500, Tol: 1e-10}).Calc(ctx, m)
	require.NoError(t, err)

	assert.InDeltaSlice(t, direct.S, em.S, 1e-4)

	// The spanned subspaces agree: compare the projectors Vᵀ V, which are
	// invariant to sign and rotation within equal singular values.
	projector := func(v *mat.Dense) *mat.Dense {
		var p mat.Dense
		p.Mul(v.T(), v)
		return &p
	}
	pd := projector(direct.V)
	pe := projector(em.V)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, pd.At(i, j), pe.At(i, j), 1e-4, "(%d,%d)", i, j)
		}
	}
}

func TestSVDEMConvergenceFailure(t *testing.T) {
	m := newMatrix(t, testMatrixRows())

	svd := &SVD{K: 2, Method: EM, MaxIter: 1, Tol: 1e-15}
	_, err := svd.Calc(context.Background(), m)
	var conv *ErrConvergence
	require.ErrorAs(t, err, &conv)
	assert.Equal(t, 1, conv.Iters)
}

func TestSVDEMDeterministic(t *testing.T) {
	m := newMatrix(t, testMatrixRows())
	ctx := context.Background()

	a, err := (&SVD{K: 2, Method: EM, MaxIter: 500, Tol: 1e-10}).Calc(ctx, m)
	require.NoError(t, err)
	b, err := (&SVD{K: 2, Method: EM, MaxIter: 500, Tol: 1e-10}).Calc(ctx, m)
	require.NoError(t, err)

	assert.Equal(t, a.S, b.S)
}

func TestSVDDirectRandomData(t *testing.T) {
	ctx := context.Background()
	records := testutil.NewRNG(7).GaussianRecords(20, 4)
	col := engine.NewLocal(records, engine.WithPartitions(3))
	s, err := series.New(ctx, col)
	require.NoError(t, err)
	m := NewRowMatrix(s)

	res, err := (&SVD{K: 4, Method: Direct}).Calc(ctx, m)
	require.NoError(t, err)

	for i, sv := range res.S {
		assert.GreaterOrEqual(t, sv, 0.0, "s[%d]", i)
		if i > 0 {
			assert.GreaterOrEqual(t, res.S[i-1], res.S[i], "s[%d]", i)
		}
	}

	// Full-rank reconstruction recovers the input.
	u := rowsOf(t, NewRowMatrix(res.U))
	for r, rec := range records {
		for c := range rec.Vector {
			var sum float64
			for i := 0; i < 4; i++ {
				sum += u[r][i] * res.S[i] * res.V.At(i, c)
			}
			assert.InDelta(t, rec.Vector[c], sum, 1e-8, "(%d,%d)", r, c)
		}
	}
}

func TestSVDTruncationCapturesLargestDirections(t *testing.T) {
	m := newMatrix(t, testMatrixRows())
	ctx := context.Background()

	full, err := (&SVD{K: 3, Method: Direct}).Calc(ctx, m)
	require.NoError(t, err)
	trunc, err := (&SVD{K: 2, Method: Direct}).Calc(ctx, m)
	require.NoError(t, err)

	assert.InDeltaSlice(t, full.S[:2], trunc.S, 1e-9)
}
