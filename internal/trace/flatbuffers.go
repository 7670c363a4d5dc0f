package trace

import (
	"encoding/binary"

	flatbuffers "github.com/google/flatbuffers/go"
)

func prependUint64Vector(b *flatbuffers.Builder, values []uint64) flatbuffers.UOffsetT {
	b.StartVector(8, len(values), 8)
	for i := len(values) - 1; i >= 0; i-- {
		b.PrependUint64(values[i])
	}
	return b.EndVector(len(values))
}

func prependStringVector(b *flatbuffers.Builder, values []string, offsets []flatbuffers.UOffsetT) ([]flatbuffers.UOffsetT, flatbuffers.UOffsetT) {
	offsets = offsets[:0]
	for _, v := range values {
		offsets = append(offsets, b.CreateString(v))
	}
	b.StartVector(flatbuffers.SizeUOffsetT, len(offsets), flatbuffers.SizeUOffsetT)
	for i := len(offsets) - 1; i >= 0; i-- {
		b.PrependUOffsetT(offsets[i])
	}
	return offsets, b.EndVector(len(offsets))
}

// frameSize returns the size prefix of the flatbuffers frame at the start of
// b, including the prefix.
func frameSize(b []byte) int64 {
	return 4 + int64(binary.LittleEndian.Uint32(b))
}
