// Package series implements the indexed-series transform and query engine:
// label-based selection and windowing, per-record statistics, axis-aware
// centering and standardization, percentile normalization, linear detrending,
// and coordinate-subscript aggregation queries.
//
// A Series is a distributed collection of (Key, Vector) records plus a shared
// index labeling every vector position. Series are immutable; every transform
// produces a new Series through the engine's map primitive, and operations
// needing a global statistic first (axis-1 standardization, subscript
// queries) run one blocking reduce before the map phase. Results are
// invariant to partition count and task interleaving.
//
// # Numeric conventions
//
//   - Per-record statistics are population statistics (denominator n).
//   - Axis-1 (across-record) variance is the sample variance (ddof = 1).
//   - Percentiles use the linear interpolation rule.
//   - A zero standard deviation where a division is required fails with
//     *ErrDegenerateVariance unless WithEpsilon configures a floor.
//
// # Edge-case policies
//
//   - Duplicate keys are valid replicate records and are never merged.
//   - Records with empty vectors are rejected at construction.
//   - A query group matching no records yields an all-NaN vector.
package series
