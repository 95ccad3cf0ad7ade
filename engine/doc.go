// Package engine abstracts the partition-parallel execution substrate.
//
// The analysis layer issues only four operation shapes against a Collection:
//
//   - Map: stateless per-record transform, embarrassingly parallel
//   - Aggregate: associative, commutative reduce to a single value
//   - Collect: ordered materialization
//   - Sample: deterministic seeded subset
//
// Operations that need a global statistic before transforming records
// (cross-record standardization, subscript queries, Gram matrix formation)
// are two-phase: a blocking Aggregate materializes the statistic, then a Map
// applies it per record. Aggregate is the only synchronization point.
//
// Local is the in-process implementation: contiguous partitions, one
// goroutine per partition via errgroup. A cluster-backed engine can be
// substituted by implementing Collection.
package engine
