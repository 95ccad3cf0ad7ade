// Package factor provides the matrix view and factorization pipeline:
// RowMatrix wraps a Series as a row-per-record matrix, SVD computes truncated
// singular value decompositions, and PCA composes column centering with SVD.
//
// Two SVD algorithms are available. Direct forms the ncols x ncols Gram
// matrix in one reduce and eigendecomposes it locally; use it when the
// matrix is wide but short. EM never materializes the Gram matrix and
// instead iterates an alternating least-squares subspace estimate, one
// reduce per iteration; use it for very tall matrices. Both return the same
// Result contract: singular values descending and non-negative, V with one
// right singular vector per row, and U as a Series of per-record score
// vectors in original record order.
package factor
