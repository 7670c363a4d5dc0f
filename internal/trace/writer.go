package trace

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
)

// WriterOptions configure how traces are written.
type WriterOptions struct {
	// Compression of event batches and blob chunks. It overrides the
	// compression of the header.
	Compression Compression
	// Maximum number of events per batch.
	BatchSize int
	// Size of the blob store chunks.
	ChunkSize int
}

const (
	defaultBatchSize = 1024
	defaultChunkSize = 256 * 1024
)

// Writer produces trace directories. Replaying does not require it, the type
// exists so tests and tools can synthesize traces.
type Writer struct {
	opts      WriterOptions
	files     []*os.File
	events    *bufio.Writer
	batch     EventBatchBuilder
	event     EventBuilder
	ordinal   int64
	data      blobWriter
	mmaps     blobWriter
	stickyErr error
}

type blobWriter struct {
	output *bufio.Writer
	chunk  ChunkBuilder
	offset int64
}

// Create creates a trace in dir, which is created if it does not exist. A zero
// version or empty architecture in the header default to those of this build.
func Create(dir string, header *Header, opts WriterOptions) (*Writer, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return nil, err
	}

	var b HeaderBuilder
	b.Reset()
	if header.Version != 0 {
		b.SetVersion(header.Version)
	}
	if header.Arch != "" {
		b.SetArch(header.Arch)
	}
	b.SetUUID(header.UUID)
	b.SetProcess(header.Process)
	b.SetCompression(opts.Compression)
	b.SetSyscallbuf(header.Syscallbuf)

	w := &Writer{opts: opts}
	if err := w.writeHeader(filepath.Join(dir, HeaderFile), &b); err != nil {
		return nil, err
	}

	for _, f := range []struct {
		name string
		dst  **bufio.Writer
	}{
		{EventsFile, &w.events},
		{DataFile, &w.data.output},
		{MmapsFile, &w.mmaps.output},
	} {
		file, err := os.Create(filepath.Join(dir, f.name))
		if err != nil {
			w.closeFiles()
			return nil, err
		}
		w.files = append(w.files, file)
		*f.dst = bufio.NewWriter(file)
	}

	w.batch.Reset(opts.Compression, 0)
	w.data.chunk.Reset(opts.Compression, 0)
	w.mmaps.chunk.Reset(opts.Compression, 0)
	return w, nil
}

func (w *Writer) writeHeader(path string, b *HeaderBuilder) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	_, err = b.Write(f)
	return errors.Join(err, f.Close())
}

// WriteData appends b to the data store.
func (w *Writer) WriteData(b []byte) (BlobRef, error) {
	return w.writeBlob(&w.data, Data, b)
}

// WriteSnapshot appends b to the mmaps store.
func (w *Writer) WriteSnapshot(b []byte) (BlobRef, error) {
	return w.writeBlob(&w.mmaps, Mmaps, b)
}

func (w *Writer) writeBlob(s *blobWriter, store Store, b []byte) (BlobRef, error) {
	if w.stickyErr != nil {
		return BlobRef{}, w.stickyErr
	}
	ref := BlobRef{Store: store, Offset: s.chunk.Append(b), Length: int64(len(b))}
	if s.chunk.Size() >= w.opts.ChunkSize {
		if err := w.flushChunk(s); err != nil {
			return BlobRef{}, err
		}
	}
	return ref, nil
}

func (w *Writer) flushChunk(s *blobWriter) error {
	if s.chunk.Size() == 0 {
		return nil
	}
	s.offset += int64(s.chunk.Size())
	if _, err := s.chunk.Write(s.output); err != nil {
		w.stickyErr = err
		return err
	}
	s.chunk.Reset(w.opts.Compression, s.offset)
	return nil
}

// WriteEvent appends e to the events log. The ordinal of the event is
// assigned by the writer and returned.
func (w *Writer) WriteEvent(e *Event) (int64, error) {
	if w.stickyErr != nil {
		return -1, w.stickyErr
	}
	ordinal := w.ordinal
	event := *e
	event.Ordinal = ordinal

	w.event.Reset()
	w.event.SetEvent(&event)
	w.batch.AddEvent(&w.event)
	w.ordinal++

	if w.batch.NumEvents() >= w.opts.BatchSize || w.batch.Size() >= maxPayloadSize/2 {
		if err := w.flushBatch(); err != nil {
			return -1, err
		}
	}
	return ordinal, nil
}

func (w *Writer) flushBatch() error {
	if w.batch.NumEvents() == 0 {
		return nil
	}
	if _, err := w.batch.Write(w.events); err != nil {
		w.stickyErr = err
		return err
	}
	w.batch.Reset(w.opts.Compression, w.ordinal)
	return nil
}

// Flush writes buffered events and blobs to the trace files.
func (w *Writer) Flush() error {
	if w.stickyErr != nil {
		return w.stickyErr
	}
	if err := w.flushChunk(&w.data); err != nil {
		return err
	}
	if err := w.flushChunk(&w.mmaps); err != nil {
		return err
	}
	if err := w.flushBatch(); err != nil {
		return err
	}
	for _, b := range []*bufio.Writer{w.data.output, w.mmaps.output, w.events} {
		if err := b.Flush(); err != nil {
			w.stickyErr = err
			return err
		}
	}
	return nil
}

// Close flushes and closes the trace files.
func (w *Writer) Close() error {
	err := w.Flush()
	return errors.Join(err, w.closeFiles())
}

func (w *Writer) closeFiles() error {
	var errs []error
	for _, f := range w.files {
		errs = append(errs, f.Close())
	}
	w.files = nil
	return errors.Join(errs...)
}
