package compress

import (
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/YuminosukeSato/olsinfer/pkg/errors"
)

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor compresses with LZ4 block format. Block frames do not record
// their decompressed size, so Decompress relies on the caller's size hint.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data using LZ4 compression.
// It returns ErrIncompressible when the block would not shrink.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, errors.Wrap(err, "lz4 compression failed")
	}
	if n == 0 || n >= len(data) {
		return nil, ErrIncompressible
	}

	return dst[:n], nil
}

// Decompress decompresses LZ4 block data.
//
// With a size hint the buffer is allocated exactly. Without one the buffer
// starts at 4x the compressed size and doubles on short-buffer errors up to
// MaxDecompressedSize.
func (c LZ4Compressor) Decompress(data []byte, sizeHint int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bufSize := len(data) * 4
	if sizeHint > 0 {
		bufSize = sizeHint
	}
	const maxSize = MaxDecompressedSize

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}

			return nil, errors.Wrap(err, "lz4 decompression failed")
		}

		return buf[:n], nil
	}

	return nil, errors.Wrap(lz4.ErrInvalidSourceShortBuffer, "lz4 decompression failed")
}
