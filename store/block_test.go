package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockRoundTrip(t *testing.T) {
	compressible := bytes.Repeat([]byte("series data block "), 500)
	incompressible := make([]byte, 256)
	for i := range incompressible {
		incompressible[i] = byte(i*7 + 13)
	}

	tests := []struct {
		name string
		comp Compression
		data []byte
	}{
		{name: "none", comp: CompressionNone, data: compressible},
		{name: "lz4", comp: CompressionLZ4, data: compressible},
		{name: "zstd", comp: CompressionZSTD, data: compressible},
		{name: "lz4 incompressible fallback", comp: CompressionLZ4, data: incompressible},
		{name: "zstd incompressible fallback", comp: CompressionZSTD, data: incompressible},
		{name: "empty payload", comp: CompressionZSTD, data: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := compressBlock(tt.data, tt.comp)
			require.NoError(t, err)

			got, err := decompressBlock(block, tt.comp)
			require.NoError(t, err)
			if len(tt.data) == 0 {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.data, got)
			}
		})
	}
}

func TestBlockCompressionShrinks(t *testing.T) {
	data := bytes.Repeat([]byte("repetitive payload "), 1000)

	for _, comp := range []Compression{CompressionLZ4, CompressionZSTD} {
		block, err := compressBlock(data, comp)
		require.NoError(t, err)
		assert.Less(t, len(block), len(data), "compression %d", comp)
	}
}

func TestDecompressBlockTruncated(t *testing.T) {
	_, err := decompressBlock([]byte{1, 2, 3}, CompressionNone)
	assert.Error(t, err)
}

func TestCompressBlockUnknownType(t *testing.T) {
	_, err := compressBlock([]byte("x"), Compression(99))
	assert.Error(t, err)
}
