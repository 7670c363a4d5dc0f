package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	lru "github.com/hashicorp/golang-lru"
	"github.com/stealthrocket/tracecraft/internal/stream"
	"golang.org/x/sync/errgroup"
)

// DefaultCacheSize is the default number of decompressed blob chunks retained
// in memory by a Reader.
const DefaultCacheSize = 64

// Options configure how traces are opened.
type Options struct {
	// Number of decompressed blob chunks kept in memory.
	CacheSize int
	// Skip reading the payloads of event batches and blob chunks when the
	// trace is opened. The structure of the files is always checked.
	SkipVerify bool
}

// Reader provides access to the content of a trace directory.
//
// Readers are safe for concurrent use.
type Reader struct {
	dir     string
	header  *Header
	events  *os.File
	batches []batchInfo
	data    *blobStore
	mmaps   *blobStore
	files   []*os.File
}

// Open opens the trace in dir.
//
// The header, the structure of the events log and of the blob stores, and
// unless disabled by the options, the checksums and content of every event
// batch and blob chunk are validated before Open returns. Any problem with
// the trace is reported as a *FormatError.
func Open(dir string, opts Options) (*Reader, error) {
	r := &Reader{dir: dir}
	if err := r.open(opts); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) open(opts Options) error {
	header, err := readHeader(filepath.Join(r.dir, HeaderFile))
	if err != nil {
		return err
	}
	r.header = header

	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return err
	}

	eventsPath := filepath.Join(r.dir, EventsFile)
	events, eventsSize, err := r.openFile(eventsPath)
	if err != nil {
		return err
	}
	r.events = events
	if r.batches, err = indexEvents(eventsPath, events, eventsSize); err != nil {
		return err
	}

	for _, s := range []struct {
		store Store
		dst   **blobStore
	}{
		{Data, &r.data},
		{Mmaps, &r.mmaps},
	} {
		path := filepath.Join(r.dir, s.store.String())
		f, size, err := r.openFile(path)
		if err != nil {
			return err
		}
		if *s.dst, err = indexBlobStore(s.store, path, f, size, cache); err != nil {
			return err
		}
	}

	if opts.SkipVerify {
		return nil
	}
	return r.verify()
}

func (r *Reader) openFile(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, formatError(path, -1, err, "missing trace file")
		}
		return nil, 0, err
	}
	r.files = append(r.files, f)
	s, err := f.Stat()
	if err != nil {
		return nil, 0, err
	}
	return f, s.Size(), nil
}

func readHeader(path string) (*Header, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, formatError(path, -1, err, "missing trace header")
		}
		return nil, err
	}
	if len(b) < len(Magic) || string(b[:len(Magic)]) != Magic {
		return nil, formatError(path, 0, ErrBadMagic, "")
	}
	b = b[len(Magic):]
	if len(b) < 4 {
		return nil, formatError(path, int64(len(Magic)), ErrTruncated, "")
	}
	if size := frameSize(b); size != int64(len(b)) {
		if size > int64(len(b)) {
			return nil, formatError(path, int64(len(Magic)), ErrTruncated, "header is %dB but only %dB are present", size, len(b))
		}
		return nil, formatError(path, int64(len(Magic)), nil, "header has %dB of trailing data", int64(len(b))-size)
	}
	h, err := NewHeader(b)
	if err != nil {
		return nil, formatError(path, int64(len(Magic)), err, "")
	}
	if err := h.validate(); err != nil {
		return nil, formatError(path, -1, err, "")
	}
	return h, nil
}

// verify reads the payloads of every event batch and blob chunk, checking
// their checksums, content, and that blob references of events are in range.
func (r *Reader) verify() error {
	group := new(errgroup.Group)
	group.SetLimit(runtime.GOMAXPROCS(0))

	group.Go(r.data.verify)
	group.Go(r.mmaps.verify)

	eventsPath := filepath.Join(r.dir, EventsFile)
	dataSize, mmapsSize := r.data.size(), r.mmaps.size()

	for i := range r.batches {
		info := &r.batches[i]
		group.Go(func() error {
			events, err := readBatch(r.events, info, nil)
			if err != nil {
				return formatError(eventsPath, info.offset, err, "event batch %d", info.firstOrdinal)
			}
			for j := range events {
				if err := checkBlobRefs(&events[j], dataSize, mmapsSize); err != nil {
					return formatError(eventsPath, info.offset, err, "event %d", events[j].Ordinal)
				}
			}
			return nil
		})
	}
	return group.Wait()
}

func checkBlobRefs(e *Event, dataSize, mmapsSize int64) error {
	inRange := func(ref BlobRef, size int64) bool {
		end := ref.Offset + ref.Length
		return ref.Offset >= 0 && ref.Length >= 0 && end >= ref.Offset && end <= size
	}
	for _, w := range e.Writes {
		if !inRange(w.Data, dataSize) {
			return fmt.Errorf("%w: %s (store size %d)", ErrBlobRange, w.Data, dataSize)
		}
	}
	for _, m := range e.Mappings {
		if m.Backing == Snapshot && !inRange(m.Data, mmapsSize) {
			return fmt.Errorf("%w: %s (store size %d)", ErrBlobRange, m.Data, mmapsSize)
		}
	}
	return nil
}

// Dir returns the path of the trace directory.
func (r *Reader) Dir() string { return r.dir }

// Header returns the trace header.
func (r *Reader) Header() *Header { return r.header }

// NumEvents returns the number of events in the trace.
func (r *Reader) NumEvents() int64 {
	if len(r.batches) == 0 {
		return 0
	}
	return r.batches[len(r.batches)-1].nextOrdinal()
}

// Events returns a reader producing the events of the trace in order. Each
// call returns an independent reader positioned at the first event.
func (r *Reader) Events() *EventReader {
	return r.EventsFrom(0)
}

// EventsFrom returns a reader producing the events of the trace starting at
// the given ordinal.
func (r *Reader) EventsFrom(ordinal int64) *EventReader {
	er := &EventReader{reader: r}
	er.SeekOrdinal(ordinal)
	return er
}

// ReadBlob returns the bytes referenced by ref.
func (r *Reader) ReadBlob(ref BlobRef) ([]byte, error) {
	b := make([]byte, ref.Length)
	if err := r.ReadBlobAt(b, ref.Store, ref.Offset); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadBlobAt reads len(b) bytes at offset of the given store.
func (r *Reader) ReadBlobAt(b []byte, store Store, offset int64) error {
	switch store {
	case Data:
		return r.data.read(b, offset)
	case Mmaps:
		return r.mmaps.read(b, offset)
	default:
		return fmt.Errorf("unknown blob store: %d", store)
	}
}

// Close closes the files of the trace.
func (r *Reader) Close() error {
	var errs []error
	for _, f := range r.files {
		errs = append(errs, f.Close())
	}
	r.files = nil
	return errors.Join(errs...)
}

// EventReader reads events of a trace in order.
type EventReader struct {
	reader *Reader
	batch  int
	events []Event
	offset int
	next   int64
}

var (
	_ stream.Reader[Event] = (*EventReader)(nil)
)

// SeekOrdinal positions the reader so that the next event read is the one with the
// given ordinal. Seeking past the end positions the reader at the end.
func (er *EventReader) SeekOrdinal(ordinal int64) {
	batches := er.reader.batches
	er.batch = sort.Search(len(batches), func(i int) bool {
		return batches[i].nextOrdinal() > ordinal
	})
	er.events = er.events[:0]
	er.offset = 0
	er.next = min(max(ordinal, 0), er.reader.NumEvents())
}

// Position returns the ordinal of the next event that will be read.
func (er *EventReader) Position() int64 { return er.next }

// Read reads events from the trace, returning io.EOF after the last one.
func (er *EventReader) Read(events []Event) (int, error) {
	n := 0
	for n < len(events) {
		if er.offset == len(er.events) {
			if er.batch == len(er.reader.batches) {
				return n, io.EOF
			}
			if err := er.load(); err != nil {
				return n, err
			}
			continue
		}
		c := copy(events[n:], er.events[er.offset:])
		er.offset += c
		er.next += int64(c)
		n += c
	}
	return n, nil
}

func (er *EventReader) load() error {
	info := &er.reader.batches[er.batch]
	events, err := readBatch(er.reader.events, info, er.events[:0])
	if err != nil {
		return formatError(filepath.Join(er.reader.dir, EventsFile), info.offset, err, "event batch %d", info.firstOrdinal)
	}
	er.batch++
	er.events = events
	er.offset = int(er.next - info.firstOrdinal)
	return nil
}

// ReadAll reads all the events of a trace.
func ReadAll(r *Reader) ([]Event, error) {
	return stream.ReadAll[Event](r.Events())
}
