package trace

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/stealthrocket/tracecraft/internal/buffer"
)

var frameBufferPool buffer.Pool

// readFrameAt reads the size-prefixed flatbuffers table starting at offset in
// a file of the given size. The returned buffer must be released to
// frameBufferPool.
func readFrameAt(input io.ReaderAt, offset, fileSize int64) (*buffer.Buffer, error) {
	if offset+4 > fileSize {
		return nil, fmt.Errorf("reading frame size: %w", io.ErrUnexpectedEOF)
	}
	var prefix [4]byte
	if _, err := input.ReadAt(prefix[:], offset); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading frame size: %w", err)
	}

	size := binary.LittleEndian.Uint32(prefix[:])
	if size > maxFrameSize {
		return nil, fmt.Errorf("frame is too large (%d>%d)", size, maxFrameSize)
	}
	byteLength := 4 + int64(size)
	if offset+byteLength > fileSize {
		return nil, fmt.Errorf("reading %dB frame: %w", byteLength, io.ErrUnexpectedEOF)
	}

	f := frameBufferPool.Get(byteLength)
	if _, err := input.ReadAt(f.Data, offset); err != nil {
		frameBufferPool.Put(f)
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading %dB frame: %w", byteLength, err)
	}
	return f, nil
}

// indexEvents scans the frames of the events file and returns the index of
// its batches. Ordinals must be contiguous from zero.
func indexEvents(path string, input io.ReaderAt, fileSize int64) ([]batchInfo, error) {
	var batches []batchInfo
	var nextOrdinal int64
	for offset := int64(0); offset < fileSize; {
		f, err := readFrameAt(input, offset, fileSize)
		if err != nil {
			return nil, formatError(path, offset, err, "event batch %d", len(batches))
		}
		info, err := decodeBatchInfo(f.Data, offset)
		frameBufferPool.Put(f)
		if err != nil {
			return nil, formatError(path, offset, err, "event batch %d", len(batches))
		}
		if info.firstOrdinal != nextOrdinal {
			return nil, formatError(path, offset, ErrOrdinal, "event batch %d starts at ordinal %d, expected %d", len(batches), info.firstOrdinal, nextOrdinal)
		}
		end := info.payload + info.size()
		if end > fileSize {
			return nil, formatError(path, offset, ErrTruncated, "event batch %d payload ends at %d past the end of the file (%d)", len(batches), end, fileSize)
		}
		batches = append(batches, info)
		nextOrdinal = info.nextOrdinal()
		offset = end
	}
	return batches, nil
}
