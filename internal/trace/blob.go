package trace

import (
	"fmt"
	"io"
	"sort"

	flatbuffers "github.com/google/flatbuffers/go"
	lru "github.com/hashicorp/golang-lru"
	"github.com/stealthrocket/tracecraft/format/tracefmt"
	"github.com/stealthrocket/tracecraft/internal/buffer"
)

// chunkInfo is the index entry of a blob store chunk.
type chunkInfo struct {
	// Logical offset of the chunk content in the store.
	offset int64
	// Offset of the payload in the store file.
	payload          int64
	compressedSize   int64
	uncompressedSize int64
	checksum         uint32
	compression      Compression
}

func (c *chunkInfo) size() int64 {
	if c.compression == Uncompressed {
		return c.uncompressedSize
	}
	return c.compressedSize
}

func (c *chunkInfo) end() int64 { return c.offset + c.uncompressedSize }

func decodeChunkInfo(frame []byte, offset int64) (info chunkInfo, err error) {
	err = decodeSafely(func() error {
		chunk := tracefmt.GetSizePrefixedRootAsChunk(frame, 0)
		info = chunkInfo{
			offset:           chunk.Offset(),
			payload:          offset + int64(len(frame)),
			compressedSize:   int64(chunk.CompressedSize()),
			uncompressedSize: int64(chunk.UncompressedSize()),
			checksum:         chunk.Checksum(),
			compression:      chunk.Compression(),
		}
		switch info.compression {
		case Uncompressed, Snappy, Zstd:
		default:
			return fmt.Errorf("unknown compression format: %d", info.compression)
		}
		if info.uncompressedSize > maxPayloadSize || info.compressedSize > maxPayloadSize {
			return fmt.Errorf("blob chunk is too large (%d>%d)", max(info.uncompressedSize, info.compressedSize), maxPayloadSize)
		}
		return nil
	})
	return info, err
}

// blobStore provides random access to the content of a blob store file.
type blobStore struct {
	store  Store
	path   string
	input  io.ReaderAt
	chunks []chunkInfo
	cache  *lru.Cache
}

type chunkKey struct {
	store Store
	index int
}

func indexBlobStore(store Store, path string, input io.ReaderAt, fileSize int64, cache *lru.Cache) (*blobStore, error) {
	s := &blobStore{
		store: store,
		path:  path,
		input: input,
		cache: cache,
	}
	var next int64
	for offset := int64(0); offset < fileSize; {
		f, err := readFrameAt(input, offset, fileSize)
		if err != nil {
			return nil, formatError(path, offset, err, "blob chunk %d", len(s.chunks))
		}
		info, err := decodeChunkInfo(f.Data, offset)
		frameBufferPool.Put(f)
		if err != nil {
			return nil, formatError(path, offset, err, "blob chunk %d", len(s.chunks))
		}
		if info.offset != next {
			return nil, formatError(path, offset, nil, "blob chunk %d starts at offset %d, expected %d", len(s.chunks), info.offset, next)
		}
		end := info.payload + info.size()
		if end > fileSize {
			return nil, formatError(path, offset, ErrTruncated, "blob chunk %d payload ends at %d past the end of the file (%d)", len(s.chunks), end, fileSize)
		}
		s.chunks = append(s.chunks, info)
		next = info.end()
		offset = end
	}
	return s, nil
}

// size returns the logical size of the store content.
func (s *blobStore) size() int64 {
	if len(s.chunks) == 0 {
		return 0
	}
	return s.chunks[len(s.chunks)-1].end()
}

// readChunk returns the uncompressed content of the i-th chunk. The returned
// slice is shared with the cache and must not be modified.
func (s *blobStore) readChunk(i int) ([]byte, error) {
	key := chunkKey{store: s.store, index: i}
	if v, ok := s.cache.Get(key); ok {
		return v.([]byte), nil
	}
	data, err := s.loadChunk(i)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, data)
	return data, nil
}

func (s *blobStore) loadChunk(i int) ([]byte, error) {
	info := &s.chunks[i]
	compressed := compressedBufferPool.Get(info.size())
	defer compressedBufferPool.Put(compressed)

	if n, err := s.input.ReadAt(compressed.Data, info.payload); n < len(compressed.Data) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, formatError(s.path, info.payload, err, "reading blob chunk %d", i)
	}
	if c := Checksum(compressed.Data); c != info.checksum {
		return nil, formatError(s.path, info.payload, ErrChecksum, "blob chunk %d: expect %#x, got %#x", i, info.checksum, c)
	}

	data := make([]byte, info.uncompressedSize)
	if info.compression == Uncompressed {
		copy(data, compressed.Data)
	} else if _, err := Decompress(data, compressed.Data, info.compression); err != nil {
		return nil, formatError(s.path, info.payload, err, "decompressing blob chunk %d", i)
	}
	return data, nil
}

// read copies the content of the blob store in [offset,offset+len(b)) to b.
func (s *blobStore) read(b []byte, offset int64) error {
	end := offset + int64(len(b))
	if offset < 0 || end < offset || end > s.size() {
		return formatError(s.path, -1, ErrBlobRange, "[%d:%d] not in [0:%d]", offset, end, s.size())
	}
	i := sort.Search(len(s.chunks), func(i int) bool {
		return s.chunks[i].end() > offset
	})
	for len(b) > 0 {
		data, err := s.readChunk(i)
		if err != nil {
			return err
		}
		n := copy(b, data[offset-s.chunks[i].offset:])
		b = b[n:]
		offset += int64(n)
		i++
	}
	return nil
}

// verify reads and checks all the chunks of the store.
func (s *blobStore) verify() error {
	for i := range s.chunks {
		if _, err := s.loadChunk(i); err != nil {
			return err
		}
	}
	return nil
}

// ChunkBuilder is a builder for blob store chunks.
type ChunkBuilder struct {
	builder     *flatbuffers.Builder
	compression Compression
	offset      int64
	data        []byte
	compressed  []byte
	payload     []byte
	finished    bool
}

// Reset resets the builder to start a chunk at the given logical offset.
func (b *ChunkBuilder) Reset(compression Compression, offset int64) {
	if b.builder == nil {
		b.builder = flatbuffers.NewBuilder(buffer.DefaultSize)
	} else {
		b.builder.Reset()
	}
	b.compression = compression
	b.offset = offset
	b.data = b.data[:0]
	b.compressed = b.compressed[:0]
	b.payload = nil
	b.finished = false
}

// Append appends data to the chunk and returns its logical offset.
func (b *ChunkBuilder) Append(data []byte) int64 {
	if b.finished {
		panic("builder must be reset before data can be appended")
	}
	offset := b.offset + int64(len(b.data))
	b.data = append(b.data, data...)
	return offset
}

// Size returns the size of the data appended to the chunk.
func (b *ChunkBuilder) Size() int { return len(b.data) }

// Write writes the serialized representation of the chunk to w.
func (b *ChunkBuilder) Write(w io.Writer) (int, error) {
	if !b.finished {
		b.build()
		b.finished = true
	}
	n1, err := w.Write(b.builder.FinishedBytes())
	if err != nil {
		return n1, err
	}
	n2, err := w.Write(b.payload)
	return n1 + n2, err
}

func (b *ChunkBuilder) build() {
	b.builder.Reset()

	b.payload = b.data
	if b.compression != Uncompressed {
		b.compressed = Compress(b.compressed, b.data, b.compression)
		b.payload = b.compressed
	}

	tracefmt.ChunkStart(b.builder)
	tracefmt.ChunkAddOffset(b.builder, b.offset)
	tracefmt.ChunkAddCompressedSize(b.builder, uint32(len(b.compressed)))
	tracefmt.ChunkAddUncompressedSize(b.builder, uint32(len(b.data)))
	tracefmt.ChunkAddChecksum(b.builder, Checksum(b.payload))
	tracefmt.ChunkAddCompression(b.builder, b.compression)
	tracefmt.FinishSizePrefixedChunkBuffer(b.builder, tracefmt.ChunkEnd(b.builder))
}
