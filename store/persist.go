package store

import (
	"context"
	"path"

	"github.com/pulselab/pulse/codec"
	"github.com/pulselab/pulse/engine"
	"github.com/pulselab/pulse/factor"
	"github.com/pulselab/pulse/series"
)

// SaveOption configures how artifacts are written.
type SaveOption func(*saveOptions)

type saveOptions struct {
	codec codec.Codec
	comp  Compression
	parts int
}

// WithCodec sets the header codec. Defaults to codec.Default.
func WithCodec(c codec.Codec) SaveOption {
	return func(o *saveOptions) {
		o.codec = c
	}
}

// WithCompression sets the payload compression. Defaults to zstd.
func WithCompression(c Compression) SaveOption {
	return func(o *saveOptions) {
		o.comp = c
	}
}

// WithLoadPartitions sets the partition count used when materializing
// loaded series. Zero keeps the engine default.
func WithLoadPartitions(n int) SaveOption {
	return func(o *saveOptions) {
		o.parts = n
	}
}

func applySaveOptions(opts []SaveOption) saveOptions {
	o := saveOptions{codec: codec.Default, comp: CompressionZSTD}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// SaveSeries writes a series (records plus index) to the store under name.
func SaveSeries(ctx context.Context, bs BlobStore, name string, s *series.Series, opts ...SaveOption) error {
	o := applySaveOptions(opts)
	records, err := s.Records(ctx)
	if err != nil {
		return err
	}
	data, err := EncodeSeries(records, s.Index(), o.codec, o.comp)
	if err != nil {
		return err
	}
	return bs.Put(ctx, name, data)
}

// LoadSeries reads a series previously written with SaveSeries.
func LoadSeries(ctx context.Context, bs BlobStore, name string, opts ...SaveOption) (*series.Series, error) {
	o := applySaveOptions(opts)
	data, err := ReadBlob(ctx, bs, name)
	if err != nil {
		return nil, err
	}
	records, index, err := DecodeSeries(data)
	if err != nil {
		return nil, err
	}
	var engineOpts []engine.LocalOption
	if o.parts > 0 {
		engineOpts = append(engineOpts, engine.WithPartitions(o.parts))
	}
	col := engine.NewLocal(records, engineOpts...)
	return series.New(ctx, col, series.WithIndex(index))
}

// Factorization artifact names under a common prefix.
const (
	artifactScores = "scores.pls"
	artifactLatent = "latent.pls"
	artifactComps  = "comps.pls"
)

// SaveFactorization writes an SVD or PCA result as three blobs under prefix:
// the score series, the singular/latent values, and the component matrix.
func SaveFactorization(ctx context.Context, bs BlobStore, prefix string, res *factor.Result, opts ...SaveOption) error {
	o := applySaveOptions(opts)
	if err := SaveSeries(ctx, bs, path.Join(prefix, artifactScores), res.U, opts...); err != nil {
		return err
	}
	latent, err := EncodeVector(res.S, o.codec, o.comp)
	if err != nil {
		return err
	}
	if err := bs.Put(ctx, path.Join(prefix, artifactLatent), latent); err != nil {
		return err
	}
	comps, err := EncodeMatrix(res.V, o.codec, o.comp)
	if err != nil {
		return err
	}
	return bs.Put(ctx, path.Join(prefix, artifactComps), comps)
}

// LoadFactorization reads a factorization previously written with
// SaveFactorization.
func LoadFactorization(ctx context.Context, bs BlobStore, prefix string, opts ...SaveOption) (*factor.Result, error) {
	u, err := LoadSeries(ctx, bs, path.Join(prefix, artifactScores), opts...)
	if err != nil {
		return nil, err
	}
	latentData, err := ReadBlob(ctx, bs, path.Join(prefix, artifactLatent))
	if err != nil {
		return nil, err
	}
	s, err := DecodeVector(latentData)
	if err != nil {
		return nil, err
	}
	compsData, err := ReadBlob(ctx, bs, path.Join(prefix, artifactComps))
	if err != nil {
		return nil, err
	}
	v, err := DecodeMatrix(compsData)
	if err != nil {
		return nil, err
	}
	return &factor.Result{U: u, S: s, V: v}, nil
}
