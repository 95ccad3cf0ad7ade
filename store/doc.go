// Package store persists series and factorization artifacts to pluggable
// blob backends.
//
// A BlobStore abstracts the byte storage: local filesystem typically, an
// in-memory store for tests, plus S3-compatible backends in the s3 and
// minio subpackages. On top of that the package defines a compact binary
// block format with lz4 or zstd payload compression and a codec-encoded
// header, so a blob written on one machine is readable on any other.
//
// SaveSeries/LoadSeries round-trip a full series including its index.
// SaveFactorization/LoadFactorization persist an SVD or PCA result as a
// small group of blobs under one prefix. ParseText ingests plain text
// rows, the lowest common denominator for getting data in.
package store
