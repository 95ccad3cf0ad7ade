// Package pulse provides distributed-style analysis of large collections of
// indexed series data.
//
// A series is a collection of records, each pairing an n-dimensional integer
// key with a vector of float64 values. All records share one index that
// labels the vector positions, so a series behaves like a huge logical
// matrix whose rows are addressed by coordinates.
//
// # Quick Start
//
//	ctx := context.Background()
//	s, _ := pulse.FromPairs(ctx,
//	    []pulse.Key{{1}, {2}, {3}},
//	    [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
//	)
//
//	windowed, _ := s.Between(ctx, 0, 1)        // index-label windowing
//	means, _ := s.SeriesMean(ctx)              // per-record statistics
//	z, _ := s.ZScore(ctx, series.WithinRecord) // normalization
//
// # Factorization
//
// The factor package computes singular value decompositions and principal
// component analyses over a series treated as a row matrix:
//
//	svd := &factor.SVD{K: 3, Method: factor.Direct}
//	res, _ := svd.Calc(ctx, factor.NewRowMatrix(s))
//
// # Persistence
//
// The store package saves series and factorization results to local disk,
// in-memory stores, or S3-compatible object storage, with lz4 or zstd
// block compression:
//
//	bs, _ := store.NewLocalStore("./data")
//	_ = store.SaveSeries(ctx, bs, "series.pls", s)
package pulse
