package factor

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/pulselab/pulse/series"
)

// PCA estimates principal components with the truncated SVD.
type PCA struct {
	// K is the number of principal components to estimate.
	K int
	// Method selects the SVD algorithm (Direct or EM).
	Method Method
	// MaxIter and Tol configure the EM method; zero values select defaults.
	MaxIter int
	Tol     float64
}

// NewPCA builds a PCA with the SVD method selected by name.
func NewPCA(k int, method string) (*PCA, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return nil, err
	}
	return &PCA{K: k, Method: m}, nil
}

// PCAResult holds the fitted principal components.
type PCAResult struct {
	// Scores is the representation of the data in component space: one
	// k-length vector per original record.
	Scores *series.Series
	// Latent holds the k latent values (singular values, descending).
	Latent []float64
	// Comps is the k x ncols matrix of principal components.
	Comps *mat.Dense
}

// Fit mean-centers every column (removing the mean structure shared across
// records, the axis-1 centering of the series layer) and factorizes the
// centered matrix.
func (p *PCA) Fit(ctx context.Context, s *series.Series) (*PCAResult, error) {
	return p.FitMatrix(ctx, NewRowMatrix(s))
}

// FitMatrix is Fit for data already wrapped as a RowMatrix.
func (p *PCA) FitMatrix(ctx context.Context, m *RowMatrix) (*PCAResult, error) {
	centered, err := m.CenterColumns(ctx)
	if err != nil {
		return nil, err
	}
	svd := SVD{K: p.K, Method: p.Method, MaxIter: p.MaxIter, Tol: p.Tol}
	res, err := svd.Calc(ctx, centered)
	if err != nil {
		return nil, err
	}
	return &PCAResult{Scores: res.U, Latent: res.S, Comps: res.V}, nil
}
