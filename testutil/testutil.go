package testutil

import (
	"math/rand"
	"sync"

	"github.com/pulselab/pulse/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float64()
	}
}

// FillGaussian fills dst with standard normal values.
func (r *RNG) FillGaussian(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.NormFloat64()
	}
}

// UniformRecords generates records with linear one-based keys and uniform
// random vectors. Uses a single backing array for efficiency.
func (r *RNG) UniformRecords(num, ncols int) []model.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*ncols)
	records := make([]model.Record, num)
	for i := 0; i < num; i++ {
		vec := data[i*ncols : (i+1)*ncols]
		for j := range vec {
			vec[j] = r.rand.Float64()
		}
		records[i] = model.Record{
			Key:    model.Key{uint64(i + 1)},
			Vector: vec,
		}
	}
	return records
}

// GaussianRecords generates records with linear one-based keys and standard
// normal vectors.
func (r *RNG) GaussianRecords(num, ncols int) []model.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]model.Record, num)
	for i := 0; i < num; i++ {
		vec := make([]float64, ncols)
		for j := range vec {
			vec[j] = r.rand.NormFloat64()
		}
		records[i] = model.Record{
			Key:    model.Key{uint64(i + 1)},
			Vector: vec,
		}
	}
	return records
}

// GridRecords generates records keyed by 2-D one-based grid coordinates
// (column-fastest) with uniform random vectors.
func (r *RNG) GridRecords(rows, cols, ncols int) []model.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]model.Record, 0, rows*cols)
	for j := 1; j <= cols; j++ {
		for i := 1; i <= rows; i++ {
			vec := make([]float64, ncols)
			for k := range vec {
				vec[k] = r.rand.Float64()
			}
			records = append(records, model.Record{
				Key:    model.Key{uint64(i), uint64(j)},
				Vector: vec,
			})
		}
	}
	return records
}
