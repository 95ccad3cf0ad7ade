package model

import (
	"fmt"
	"strings"
)

// Key identifies a record by an ordered tuple of non-negative coordinates
// (e.g. pixel subscripts) or by a single already-linear position.
// Keys need not be unique within a collection; records sharing a key are
// independent replicate observations and are never merged.
type Key []uint64

// String returns a string representation of the Key, e.g. "Key(2,1)".
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, c := range k {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return "Key(" + strings.Join(parts, ",") + ")"
}

// Clone returns a copy of the key.
func (k Key) Clone() Key {
	out := make(Key, len(k))
	copy(out, k)
	return out
}

// Label is a single index label. Labels are numeric or string values compared
// by exact equality after canonicalization (see Canonical).
type Label = any

// Index is the ordered label sequence shared by every record in a collection,
// one label per vector position.
type Index []Label

// Identity returns the default index over positions 0..n-1.
func Identity(n int) Index {
	idx := make(Index, n)
	for i := 0; i < n; i++ {
		idx[i] = float64(i)
	}
	return idx
}

// Clone returns a copy of the index.
func (idx Index) Clone() Index {
	out := make(Index, len(idx))
	copy(out, idx)
	return out
}

// Canonical normalizes a label for equality comparison: every integer and
// float kind maps to float64, strings pass through unchanged. This keeps
// Select(3) and Select(3.0) equivalent, and makes labels stable across
// serialization (JSON numbers decode as float64).
func Canonical(l Label) Label {
	switch v := l.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	default:
		return l
	}
}

// Numeric reports whether the label is numeric and returns its float64 value.
func Numeric(l Label) (float64, bool) {
	c := Canonical(l)
	f, ok := c.(float64)
	return f, ok
}

// Record pairs a Key with a fixed-length vector of float64 values.
// The vector length must equal the length of the owning collection's Index.
type Record struct {
	Key    Key
	Vector []float64
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	return Record{Key: r.Key.Clone(), Vector: append([]float64(nil), r.Vector...)}
}
