// Package testutil provides testing utilities for pulse.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded random generators and record builders so tests get
// reproducible datasets.
//
//	rng := testutil.NewRNG(seed)
//	records := rng.UniformRecords(100, 8)
//	grid := rng.GridRecords(4, 3, 8)
package testutil
