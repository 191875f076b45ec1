// Package compress provides the payload codecs used by model snapshots.
//
// A snapshot body is a small gob stream (coefficients, XᵀX inverse, design
// metadata). Any of the codecs below can carry it; the choice trades encode
// speed for size and is recorded in the snapshot header.
package compress

import (
	"strings"

	"github.com/YuminosukeSato/olsinfer/pkg/errors"
)

// Type identifies a compression codec. The values are persisted in snapshot
// headers and must not be renumbered.
type Type uint8

const (
	TypeNone Type = 0x1 // TypeNone stores the payload as-is.
	TypeZstd Type = 0x2 // TypeZstd uses Zstandard.
	TypeS2   Type = 0x3 // TypeS2 uses S2 (Snappy-compatible).
	TypeLZ4  Type = 0x4 // TypeLZ4 uses LZ4 block compression.
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeZstd:
		return "zstd"
	case TypeS2:
		return "s2"
	case TypeLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// ParseType converts a codec name ("none", "zstd", "s2", "lz4") to a Type.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "":
		return TypeNone, nil
	case "zstd":
		return TypeZstd, nil
	case "s2":
		return TypeS2, nil
	case "lz4":
		return TypeLZ4, nil
	default:
		return 0, errors.NewValidationError("codec", "must be one of none, zstd, s2, lz4", name)
	}
}

// Compressor compresses a complete payload.
//
// The returned slice is owned by the caller; the input is not modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// MaxDecompressedSize bounds the output of every Decompress call. Size hints
// come from unverified headers, so codecs never allocate past it.
const MaxDecompressedSize = 128 << 20

// Decompressor reverses a Compressor.
//
// sizeHint is the expected decompressed length, or 0 when unknown. Codecs
// whose frames carry their own length ignore it.
type Decompressor interface {
	Decompress(data []byte, sizeHint int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// ErrIncompressible is returned by codecs that cannot represent a payload
// smaller than its input. Callers fall back to TypeNone.
var ErrIncompressible = errors.New("payload is incompressible")

var builtinCodecs = map[Type]Codec{
	TypeNone: NewNoOpCompressor(),
	TypeZstd: NewZstdCompressor(),
	TypeS2:   NewS2Compressor(),
	TypeLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the specified type.
func GetCodec(t Type) (Codec, error) {
	if codec, ok := builtinCodecs[t]; ok {
		return codec, nil
	}

	return nil, errors.NewValueError("compress.GetCodec", "unsupported compression type: "+t.String())
}
