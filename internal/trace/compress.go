package trace

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
)

// Encoders and decoders hold large internal buffers, they are pooled and
// configured for one-shot use from a single goroutine.
var (
	zstdEncoders = sync.Pool{
		New: func() any {
			e, _ := zstd.NewWriter(nil,
				zstd.WithEncoderCRC(false),
				zstd.WithEncoderConcurrency(1),
				zstd.WithEncoderLevel(zstd.SpeedFastest),
			)
			return e
		},
	}
	zstdDecoders = sync.Pool{
		New: func() any {
			d, _ := zstd.NewReader(nil,
				zstd.IgnoreChecksum(true),
				zstd.WithDecoderConcurrency(1),
			)
			return d
		},
	}
)

// Compress appends the compressed form of src to dst[:0].
func Compress(dst, src []byte, compression Compression) []byte {
	switch compression {
	case Snappy:
		return snappy.Encode(dst[:cap(dst)], src)
	case Zstd:
		enc := zstdEncoders.Get().(*zstd.Encoder)
		defer zstdEncoders.Put(enc)
		return enc.EncodeAll(src, dst[:0])
	default:
		return append(dst[:0], src...)
	}
}

// Decompress decompresses src into dst, which must have the length of the
// uncompressed data.
func Decompress(dst, src []byte, compression Compression) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	switch compression {
	case Uncompressed:
		b = append(dst[:0], src...)
	case Snappy:
		b, err = snappy.Decode(dst[:cap(dst)], src)
	case Zstd:
		dec := zstdDecoders.Get().(*zstd.Decoder)
		defer zstdDecoders.Put(dec)
		b, err = dec.DecodeAll(src, dst[:0])
	default:
		return dst, fmt.Errorf("unknown compression format: %d", compression)
	}
	if err != nil {
		return dst, err
	}
	if len(b) != len(dst) {
		return b, fmt.Errorf("decompressed size mismatch: expected %dB, got %dB", len(dst), len(b))
	}
	return b, nil
}
