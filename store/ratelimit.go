package store

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttled wraps a BlobStore with a byte-rate limit on writes. Reads pass
// through untouched. Useful when bulk-exporting series to shared object
// storage.
type Throttled struct {
	inner   BlobStore
	limiter *rate.Limiter
}

// NewThrottled limits Put throughput to bytesPerSec with the given burst.
// The burst also caps the largest single reservation, so writes bigger than
// the burst are split into chunks.
func NewThrottled(inner BlobStore, bytesPerSec float64, burst int) *Throttled {
	return &Throttled{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), burst),
	}
}

// Open implements BlobStore.
func (t *Throttled) Open(ctx context.Context, name string) (Blob, error) {
	return t.inner.Open(ctx, name)
}

// Put implements BlobStore, waiting for rate tokens before writing.
func (t *Throttled) Put(ctx context.Context, name string, data []byte) error {
	burst := t.limiter.Burst()
	for remaining := len(data); remaining > 0; {
		n := remaining
		if n > burst {
			n = burst
		}
		if err := t.limiter.WaitN(ctx, n); err != nil {
			return err
		}
		remaining -= n
	}
	return t.inner.Put(ctx, name, data)
}

// List implements BlobStore.
func (t *Throttled) List(ctx context.Context, prefix string) ([]string, error) {
	return t.inner.List(ctx, prefix)
}
