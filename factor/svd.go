package factor

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/pulselab/pulse/engine"
	"github.com/pulselab/pulse/model"
	"github.com/pulselab/pulse/series"
)

// Method selects the SVD algorithm.
type Method uint8

const (
	// Direct forms the Gram matrix Xᵀ X and eigendecomposes it. Suited to
	// wide-but-short matrices where ncols x ncols fits in memory.
	Direct Method = iota
	// EM iterates an alternating least-squares subspace estimate. Suited to
	// very tall matrices where forming the Gram matrix is infeasible.
	EM
)

// ParseMethod resolves an SVD method by name ("direct" or "em").
func ParseMethod(name string) (Method, error) {
	switch name {
	case "direct":
		return Direct, nil
	case "em":
		return EM, nil
	default:
		return 0, &series.ErrUnsupportedMethod{Op: "svd", Method: name}
	}
}

// Default budgets for the iterative method.
const (
	DefaultMaxIter = 20
	DefaultTol     = 1e-5
)

// SVD computes the truncated singular value decomposition of a RowMatrix.
// The zero value selects the direct method with k = 1.
type SVD struct {
	// K is the number of singular triplets to estimate.
	K int
	// Method selects the algorithm.
	Method Method
	// MaxIter bounds the EM iteration count (default DefaultMaxIter).
	MaxIter int
	// Tol is the EM convergence threshold on the relative change of the
	// subspace estimate (default DefaultTol).
	Tol float64
	// Seed seeds the EM random initialization; the default (0) is a fixed
	// seed so results are reproducible.
	Seed int64
}

// Result holds the three co-owned factorization artifacts. They are produced
// together and never individually mutated after creation.
type Result struct {
	// U is a Series with one k-length left-singular-projection vector per
	// original record, in original record order.
	U *series.Series
	// S holds the k singular values, descending and non-negative.
	S []float64
	// V is the k x ncols matrix of right singular vectors (one per row).
	V *mat.Dense
}

// Calc computes the top-K singular triplets of m.
func (s *SVD) Calc(ctx context.Context, m *RowMatrix) (*Result, error) {
	if s.K < 1 || s.K > m.NCols() {
		return nil, fmt.Errorf("%w: k=%d, ncols=%d", ErrInvalidK, s.K, m.NCols())
	}
	switch s.Method {
	case Direct:
		return s.calcDirect(ctx, m)
	case EM:
		return s.calcEM(ctx, m)
	default:
		return nil, &series.ErrUnsupportedMethod{Op: "svd", Method: fmt.Sprintf("%d", s.Method)}
	}
}

// calcDirect eigendecomposes the Gram matrix: eig(XᵀX) yields the right
// singular vectors and squared singular values; u rows follow as (x·V)/s.
func (s *SVD) calcDirect(ctx context.Context, m *RowMatrix) (*Result, error) {
	gram, err := m.Gram(ctx)
	if err != nil {
		return nil, err
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(gram, true); !ok {
		return nil, fmt.Errorf("gram matrix eigendecomposition failed")
	}
	vals := eig.Values(nil) // ascending
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	ncols := m.NCols()
	sv, v := topTriplets(vals, &vecs, s.K, ncols)

	u, err := projectScores(ctx, m, v, sv)
	if err != nil {
		return nil, err
	}
	return &Result{U: u, S: sv, V: v}, nil
}

// calcEM estimates a k-dimensional subspace by alternating least squares,
// then solves the k x k eigenproblem in the reduced space.
func (s *SVD) calcEM(ctx context.Context, m *RowMatrix) (*Result, error) {
	maxIter := s.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}
	tol := s.Tol
	if tol <= 0 {
		tol = DefaultTol
	}

	k, ncols := s.K, m.NCols()
	rng := rand.New(rand.NewSource(s.Seed))
	c := mat.NewDense(k, ncols, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < ncols; j++ {
			c.Set(i, j, rng.NormFloat64())
		}
	}

	converged := false
	var lastDelta float64
	for iter := 0; iter < maxIter; iter++ {
		// Cinv = Cᵀ (C Cᵀ)⁻¹, the per-row projector for this iteration.
		var cct mat.Dense
		cct.Mul(c, c.T())
		var cctInv mat.Dense
		if err := cctInv.Inverse(&cct); err != nil {
			return nil, fmt.Errorf("subspace estimate became singular: %w", err)
		}
		var cinv mat.Dense
		cinv.Mul(c.T(), &cctInv)

		// One pass accumulates XᵀX·Cinv and Cinvᵀ·XᵀX·Cinv together.
		acc, err := m.s.Collection().Aggregate(ctx, func() engine.Accumulator {
			return newEMAcc(&cinv, ncols, k)
		})
		if err != nil {
			return nil, err
		}
		ea := acc.(*emAcc)
		xp := mat.NewDense(ncols, k, ea.xp)
		xc := mat.NewDense(k, k, ea.xc)

		var xcInv mat.Dense
		if err := xcInv.Inverse(xc); err != nil {
			return nil, fmt.Errorf("reduced covariance became singular: %w", err)
		}
		var tmp mat.Dense
		tmp.Mul(xp, &xcInv) // ncols x k

		var cNew mat.Dense
		cNew.CloneFrom(tmp.T())

		var diff mat.Dense
		diff.Sub(&cNew, c)
		lastDelta = mat.Norm(&diff, 2) / mat.Norm(&cNew, 2)
		c.CloneFrom(&cNew)
		if lastDelta < tol {
			converged = true
			break
		}
	}
	if !converged {
		return nil, &ErrConvergence{Iters: maxIter, Tol: tol, Last: lastDelta}
	}

	// Orthonormalize the estimated subspace: Q = thin QR factor of Cᵀ.
	var ct mat.Dense
	ct.CloneFrom(c.T()) // ncols x k
	var qr mat.QR
	qr.Factorize(&ct)
	var qFull mat.Dense
	qr.QTo(&qFull)
	q := qFull.Slice(0, ncols, 0, k).(*mat.Dense)

	// Reduced k x k eigenproblem: eig(Qᵀ Xᵀ X Q).
	acc, err := m.s.Collection().Aggregate(ctx, func() engine.Accumulator {
		return newEMAcc(q, ncols, k)
	})
	if err != nil {
		return nil, err
	}
	red := mat.NewSymDense(k, symmetrize(acc.(*emAcc).xc, k))

	var eig mat.EigenSym
	if ok := eig.Factorize(red, true); !ok {
		return nil, fmt.Errorf("reduced eigendecomposition failed")
	}
	vals := eig.Values(nil)
	var w mat.Dense
	eig.VectorsTo(&w)

	sv, wDesc := topTriplets(vals, &w, k, k)

	// Lift back to the full space: V = (Q · Wᵀ_rows)ᵀ.
	var qw mat.Dense
	qw.Mul(q, wDesc.T()) // ncols x k
	v := mat.NewDense(k, ncols, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < ncols; j++ {
			v.Set(i, j, qw.At(j, i))
		}
	}

	u, err := projectScores(ctx, m, v, sv)
	if err != nil {
		return nil, err
	}
	return &Result{U: u, S: sv, V: v}, nil
}

// topTriplets extracts the k largest eigenpairs from an ascending
// eigendecomposition: singular values sqrt(max(λ, 0)) in descending order,
// and the matching eigenvectors as rows of a k x dim matrix.
func topTriplets(vals []float64, vecs *mat.Dense, k, dim int) ([]float64, *mat.Dense) {
	n := len(vals)
	sv := make([]float64, k)
	v := mat.NewDense(k, dim, nil)
	for i := 0; i < k; i++ {
		col := n - 1 - i
		sv[i] = math.Sqrt(math.Max(vals[col], 0))
		for j := 0; j < dim; j++ {
			v.Set(i, j, vecs.At(j, col))
		}
	}
	return sv, v
}

// projectScores maps every row to its k-length score vector (x·vᵢ)/sᵢ.
// A zero singular value projects to zero.
func projectScores(ctx context.Context, m *RowMatrix, v *mat.Dense, sv []float64) (*series.Series, error) {
	k := len(sv)
	return m.s.Transform(ctx, model.Identity(k), func(rec model.Record) (model.Record, error) {
		out := make([]float64, k)
		for i := 0; i < k; i++ {
			var dot float64
			for j, x := range rec.Vector {
				dot += x * v.At(i, j)
			}
			if sv[i] != 0 {
				out[i] = dot / sv[i]
			}
		}
		return model.Record{Key: rec.Key, Vector: out}, nil
	})
}

// symmetrize mirrors the upper triangle of a row-major k x k buffer.
func symmetrize(a []float64, k int) []float64 {
	for i := 0; i < k; i++ {
		for j := 0; j < i; j++ {
			a[i*k+j] = a[j*k+i]
		}
	}
	return a
}

// emAcc accumulates XP = Σ outer(x, y) and XC = Σ outer(y, y) for y = xᵀ·P
// in a single pass, where P (ncols x k) is read-only during the pass.
type emAcc struct {
	p     *mat.Dense
	ncols int
	k     int
	xp    []float64 // ncols x k, row-major
	xc    []float64 // k x k, row-major
}

func newEMAcc(p *mat.Dense, ncols, k int) *emAcc {
	return &emAcc{
		p:     p,
		ncols: ncols,
		k:     k,
		xp:    make([]float64, ncols*k),
		xc:    make([]float64, k*k),
	}
}

func (a *emAcc) Absorb(rec model.Record) error {
	if err := model.CheckShape(rec, a.ncols); err != nil {
		return err
	}
	y := make([]float64, a.k)
	for j := 0; j < a.k; j++ {
		var sum float64
		for i, x := range rec.Vector {
			sum += x * a.p.At(i, j)
		}
		y[j] = sum
	}
	for i, x := range rec.Vector {
		if x == 0 {
			continue
		}
		row := a.xp[i*a.k:]
		for j, yj := range y {
			row[j] += x * yj
		}
	}
	for i, yi := range y {
		row := a.xc[i*a.k:]
		for j, yj := range y {
			row[j] += yi * yj
		}
	}
	return nil
}

func (a *emAcc) Merge(other engine.Accumulator) error {
	o := other.(*emAcc)
	for i := range a.xp {
		a.xp[i] += o.xp[i]
	}
	for i := range a.xc {
		a.xc[i] += o.xc[i]
	}
	return nil
}
