// Package model defines core types used throughout pulse.
//
// # Data Types
//
//   - Key: coordinate tuple or single linear position identifying a record
//   - Label / Index: shared ordered labels describing vector positions
//   - Record: (Key, Vector) pair with a fixed-length float64 vector
//
// Labels compare by exact equality after canonicalization: all numeric kinds
// normalize to float64, strings compare as-is. See Canonical.
//
// The shape invariant len(Record.Vector) == len(Index) holds for every record
// in a collection at all times; violations surface as *ErrShapeMismatch.
package model
