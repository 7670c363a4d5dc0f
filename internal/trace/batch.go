package trace

import (
	"fmt"
	"io"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/stealthrocket/tracecraft/format/tracefmt"
	"github.com/stealthrocket/tracecraft/internal/buffer"
)

// maxFrameSize is the maximum size of the flatbuffers table of a frame.
const maxFrameSize = (1 * 1024 * 1024) - 4

// maxPayloadSize bounds the size of the payloads following frames.
const maxPayloadSize = 256 * 1024 * 1024

var (
	compressedBufferPool   buffer.Pool
	uncompressedBufferPool buffer.Pool
)

// batchInfo is the index entry of an event batch, decoded from its frame.
type batchInfo struct {
	// Offset of the frame in the events file.
	offset int64
	// Offset of the payload in the events file.
	payload          int64
	firstOrdinal     int64
	numEvents        int
	compressedSize   int64
	uncompressedSize int64
	checksum         uint32
	compression      Compression
}

// size is the size of the payload in the events file.
func (b *batchInfo) size() int64 {
	if b.compression == Uncompressed {
		return b.uncompressedSize
	}
	return b.compressedSize
}

func (b *batchInfo) nextOrdinal() int64 {
	return b.firstOrdinal + int64(b.numEvents)
}

func decodeBatchInfo(frame []byte, offset int64) (info batchInfo, err error) {
	err = decodeSafely(func() error {
		batch := tracefmt.GetSizePrefixedRootAsEventBatch(frame, 0)
		info = batchInfo{
			offset:           offset,
			payload:          offset + int64(len(frame)),
			firstOrdinal:     batch.FirstOrdinal(),
			numEvents:        int(batch.NumEvents()),
			compressedSize:   int64(batch.CompressedSize()),
			uncompressedSize: int64(batch.UncompressedSize()),
			checksum:         batch.Checksum(),
			compression:      batch.Compression(),
		}
		switch info.compression {
		case Uncompressed, Snappy, Zstd:
		default:
			return fmt.Errorf("unknown compression format: %d", info.compression)
		}
		if info.uncompressedSize > maxPayloadSize || info.compressedSize > maxPayloadSize {
			return fmt.Errorf("event batch is too large (%d>%d)", max(info.uncompressedSize, info.compressedSize), maxPayloadSize)
		}
		return nil
	})
	return info, err
}

// readBatch reads, verifies, and decodes the events of a batch.
func readBatch(input io.ReaderAt, info *batchInfo, events []Event) ([]Event, error) {
	compressed := compressedBufferPool.Get(info.size())
	defer compressedBufferPool.Put(compressed)

	if n, err := input.ReadAt(compressed.Data, info.payload); n < len(compressed.Data) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return events, fmt.Errorf("reading %dB event batch payload: %w", len(compressed.Data), err)
	}

	if c := Checksum(compressed.Data); c != info.checksum {
		return events, fmt.Errorf("%w: expect %#x, got %#x", ErrChecksum, info.checksum, c)
	}

	records := compressed.Data
	if info.compression != Uncompressed {
		uncompressed := uncompressedBufferPool.Get(info.uncompressedSize)
		defer uncompressedBufferPool.Put(uncompressed)

		b, err := Decompress(uncompressed.Data, compressed.Data, info.compression)
		if err != nil {
			return events, fmt.Errorf("decompressing event batch: %w", err)
		}
		records = b
	}

	offset := uint32(0)
	for i := 0; i < info.numEvents; i++ {
		if offset+4 > uint32(len(records)) {
			return events, fmt.Errorf("cannot read event at offset %d as batch is length %d: %w", offset, len(records), io.ErrUnexpectedEOF)
		}
		size := flatbuffers.GetSizePrefix(records, flatbuffers.UOffsetT(offset))
		if offset+4+size < offset || offset+4+size > uint32(len(records)) {
			return events, fmt.Errorf("cannot read event at [%d:%d+%d] as batch is length %d: %w", offset, offset, size, len(records), io.ErrUnexpectedEOF)
		}
		events = append(events, Event{})
		e := &events[len(events)-1]
		if err := decodeEvent(e, records[offset:offset+4+size]); err != nil {
			return events, fmt.Errorf("decoding event %d: %w", info.firstOrdinal+int64(i), err)
		}
		if want := info.firstOrdinal + int64(i); e.Ordinal != want {
			return events, fmt.Errorf("%w: expected %d, got %d", ErrOrdinal, want, e.Ordinal)
		}
		offset += 4 + size
	}
	if offset != uint32(len(records)) {
		return events, fmt.Errorf("event batch has %dB of trailing data", uint32(len(records))-offset)
	}
	return events, nil
}

// EventBatchBuilder is a builder for event batches.
type EventBatchBuilder struct {
	builder      *flatbuffers.Builder
	compression  Compression
	firstOrdinal int64
	numEvents    uint32
	uncompressed []byte
	compressed   []byte
	events       []byte
	finished     bool
}

// Reset resets the builder.
func (b *EventBatchBuilder) Reset(compression Compression, firstOrdinal int64) {
	if b.builder == nil {
		b.builder = flatbuffers.NewBuilder(buffer.DefaultSize)
	} else {
		b.builder.Reset()
	}
	b.compression = compression
	b.firstOrdinal = firstOrdinal
	b.numEvents = 0
	b.uncompressed = b.uncompressed[:0]
	b.compressed = b.compressed[:0]
	b.events = nil
	b.finished = false
}

// AddEvent adds an event to the batch.
//
// The event is consumed immediately and the builder can be reused safely when
// the call returns.
func (b *EventBatchBuilder) AddEvent(event *EventBuilder) {
	if b.finished {
		panic("builder must be reset before events can be added")
	}
	b.uncompressed = append(b.uncompressed, event.Bytes()...)
	b.numEvents++
}

// NumEvents returns the number of events added to the batch.
func (b *EventBatchBuilder) NumEvents() int { return int(b.numEvents) }

// Size returns the uncompressed size of the events added to the batch.
func (b *EventBatchBuilder) Size() int { return len(b.uncompressed) }

// Write writes the serialized representation of the event batch to the
// specified writer.
func (b *EventBatchBuilder) Write(w io.Writer) (int, error) {
	if !b.finished {
		b.build()
		b.finished = true
	}
	n1, err := w.Write(b.builder.FinishedBytes())
	if err != nil {
		return n1, err
	}
	n2, err := w.Write(b.events)
	return n1 + n2, err
}

func (b *EventBatchBuilder) build() {
	if b.builder == nil {
		b.builder = flatbuffers.NewBuilder(buffer.DefaultSize)
	}
	b.builder.Reset()

	b.events = b.uncompressed
	if b.compression != Uncompressed {
		b.compressed = Compress(b.compressed, b.uncompressed, b.compression)
		b.events = b.compressed
	}

	tracefmt.EventBatchStart(b.builder)
	tracefmt.EventBatchAddFirstOrdinal(b.builder, b.firstOrdinal)
	tracefmt.EventBatchAddNumEvents(b.builder, b.numEvents)
	tracefmt.EventBatchAddCompressedSize(b.builder, uint32(len(b.compressed)))
	tracefmt.EventBatchAddUncompressedSize(b.builder, uint32(len(b.uncompressed)))
	tracefmt.EventBatchAddChecksum(b.builder, Checksum(b.events))
	tracefmt.EventBatchAddCompression(b.builder, b.compression)
	tracefmt.FinishSizePrefixedEventBatchBuffer(b.builder, tracefmt.EventBatchEnd(b.builder))
}
