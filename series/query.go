package series

import (
	"context"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/pulselab/pulse/engine"
	"github.com/pulselab/pulse/model"
)

// QueryResult pairs ordered group identifiers (1..number of groups) with the
// averaged vectors. Values preserves group order, one vector per group.
type QueryResult struct {
	Keys   []uint64
	Values [][]float64
}

// Matrix stacks the averaged vectors as a dense matrix with one row per
// group, preserving group order.
func (qr *QueryResult) Matrix() *mat.Dense {
	if len(qr.Values) == 0 {
		return nil
	}
	ncols := len(qr.Values[0])
	m := mat.NewDense(len(qr.Values), ncols, nil)
	for i, row := range qr.Values {
		m.SetRow(i, row)
	}
	return m
}

// Query averages groups of records identified by coordinate proximity. Each
// group is a set of 1-based linear indices; multi-dimensional keys are
// flattened with the fastest-varying-first convention derived from the
// maximal extent of each key dimension, and single-component keys are their
// own linear index. Multi-dimensional keys must be 1-based in every
// dimension (ErrZeroCoordinate otherwise).
//
// For every group, the element-wise mean of all member records' vectors is
// computed in one reduce. Linear indices absent from the collection are
// skipped silently; a group matching zero records yields an all-NaN vector
// rather than failing the query.
func (s *Series) Query(ctx context.Context, groups [][]uint64) (*QueryResult, error) {
	bitmaps := make([]*roaring.Bitmap, len(groups))
	for g, inds := range groups {
		bm := roaring.New()
		for _, ind := range inds {
			if ind > math.MaxUint32 {
				return nil, fmt.Errorf("linear index %d exceeds addressable range", ind)
			}
			bm.Add(uint32(ind))
		}
		bitmaps[g] = bm
	}
	return s.QueryBitmaps(ctx, bitmaps)
}

// QueryBitmaps is Query with pre-built group membership sets.
func (s *Series) QueryBitmaps(ctx context.Context, groups []*roaring.Bitmap) (*QueryResult, error) {
	if s.Count() == 0 {
		return nil, ErrEmptyCollection
	}

	dims, err := s.extents(ctx)
	if err != nil {
		return nil, err
	}

	ncols := len(s.index)
	acc, err := s.col.Aggregate(ctx, func() engine.Accumulator {
		return newGroupMeanAcc(groups, dims, ncols)
	})
	if err != nil {
		return nil, err
	}
	gm := acc.(*groupMeanAcc)

	res := &QueryResult{
		Keys:   make([]uint64, len(groups)),
		Values: make([][]float64, len(groups)),
	}
	for g := range groups {
		res.Keys[g] = uint64(g + 1)
		res.Values[g] = gm.mean(g)
	}
	if s.logger != nil {
		s.logger.Debug("subscript query completed", "groups", len(groups), "records", s.Count())
	}
	return res, nil
}

// extents discovers the maximal extent along each key dimension (a reduce
// over all keys).
func (s *Series) extents(ctx context.Context) ([]uint64, error) {
	acc, err := s.col.Aggregate(ctx, func() engine.Accumulator {
		return &extentAcc{}
	})
	if err != nil {
		return nil, err
	}
	return acc.(*extentAcc).dims, nil
}

type extentAcc struct {
	dims []uint64
}

func (a *extentAcc) Absorb(rec model.Record) error {
	if len(rec.Key) > 1 {
		for _, c := range rec.Key {
			if c == 0 {
				return ErrZeroCoordinate
			}
		}
	}
	return a.observe(rec.Key)
}

func (a *extentAcc) Merge(other engine.Accumulator) error {
	o := other.(*extentAcc)
	if o.dims == nil {
		return nil
	}
	return a.observe(model.Key(o.dims))
}

func (a *extentAcc) observe(k model.Key) error {
	if a.dims == nil {
		a.dims = k.Clone()
		return nil
	}
	if len(k) != len(a.dims) {
		return ErrKeyRankMismatch
	}
	for i, c := range k {
		if c > a.dims[i] {
			a.dims[i] = c
		}
	}
	return nil
}

// linearIndex flattens a 1-based coordinate key with the fastest-varying-
// first convention for the given extents. Single-component keys map to
// themselves.
func linearIndex(k model.Key, dims []uint64) uint64 {
	if len(k) == 1 {
		return k[0]
	}
	ind := k[0]
	stride := dims[0]
	for i := 1; i < len(k); i++ {
		ind += (k[i] - 1) * stride
		stride *= dims[i]
	}
	return ind
}

// groupMeanAcc accumulates per-group element-wise sums and member counts.
type groupMeanAcc struct {
	groups []*roaring.Bitmap
	dims   []uint64
	ncols  int
	sums   [][]float64
	counts []int64
}

func newGroupMeanAcc(groups []*roaring.Bitmap, dims []uint64, ncols int) *groupMeanAcc {
	sums := make([][]float64, len(groups))
	for g := range sums {
		sums[g] = make([]float64, ncols)
	}
	return &groupMeanAcc{
		groups: groups,
		dims:   dims,
		ncols:  ncols,
		sums:   sums,
		counts: make([]int64, len(groups)),
	}
}

func (a *groupMeanAcc) Absorb(rec model.Record) error {
	if err := model.CheckShape(rec, a.ncols); err != nil {
		return err
	}
	lin := linearIndex(rec.Key, a.dims)
	if lin > math.MaxUint32 {
		return fmt.Errorf("linear index %d exceeds addressable range", lin)
	}
	for g, bm := range a.groups {
		if !bm.Contains(uint32(lin)) {
			continue
		}
		sum := a.sums[g]
		for i, x := range rec.Vector {
			sum[i] += x
		}
		a.counts[g]++
	}
	return nil
}

func (a *groupMeanAcc) Merge(other engine.Accumulator) error {
	o := other.(*groupMeanAcc)
	for g := range a.sums {
		for i := range a.sums[g] {
			a.sums[g][i] += o.sums[g][i]
		}
		a.counts[g] += o.counts[g]
	}
	return nil
}

// mean returns the averaged vector for group g; all-NaN when the group
// matched no records.
func (a *groupMeanAcc) mean(g int) []float64 {
	out := make([]float64, a.ncols)
	if a.counts[g] == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	n := float64(a.counts[g])
	for i, sum := range a.sums[g] {
		out[i] = sum / n
	}
	return out
}
