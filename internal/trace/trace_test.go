package trace_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/assert"
	"github.com/stealthrocket/tracecraft/internal/stream"
	"github.com/stealthrocket/tracecraft/internal/trace"
)

var testHeader = trace.Header{
	UUID: uuid.MustParse("9b0b4f8e-34f5-4b71-9a5e-2f2d52b07a01"),
	Process: trace.Process{
		Exe:        "/bin/true",
		Args:       []string{"true", "--flag"},
		Environ:    []string{"PATH=/usr/bin"},
		Cwd:        "/tmp",
		InitialTid: 100,
		StartTime:  time.Unix(1700000000, 0),
	},
}

type blob struct {
	store trace.Store
	data  []byte
}

// writeTrace writes a trace to a temporary directory. Blobs are written
// first and their references patched into events by index.
func writeTrace(t *testing.T, opts trace.WriterOptions, header trace.Header, blobs []blob, events []trace.Event, patch func([]trace.BlobRef, []trace.Event)) string {
	t.Helper()
	dir := t.TempDir()
	w, err := trace.Create(dir, &header, opts)
	assert.OK(t, err)

	refs := make([]trace.BlobRef, len(blobs))
	for i, b := range blobs {
		if b.store == trace.Mmaps {
			refs[i], err = w.WriteSnapshot(b.data)
		} else {
			refs[i], err = w.WriteData(b.data)
		}
		assert.OK(t, err)
	}
	if patch != nil {
		patch(refs, events)
	}
	for i := range events {
		ordinal, err := w.WriteEvent(&events[i])
		assert.OK(t, err)
		assert.Equal(t, ordinal, int64(i))
		events[i].Ordinal = ordinal
	}
	assert.OK(t, w.Close())
	return dir
}

func testRegisters(seed uint64) *arch.Registers {
	words := make([]uint64, arch.NumRegisters)
	for i := range words {
		words[i] = seed + uint64(i)
	}
	r := new(arch.Registers)
	if err := r.SetWords(words); err != nil {
		panic(err)
	}
	return r
}

func testEvents() ([]blob, []trace.Event, func([]trace.BlobRef, []trace.Event)) {
	blobs := []blob{
		{trace.Data, []byte("hello world\n")},
		{trace.Mmaps, bytes.Repeat([]byte{0xAB}, 100)},
		{trace.Data, []byte("0123456789abcdefghijklmnopqrstuvwxyz")},
	}
	events := []trace.Event{
		{Tid: 100, Kind: trace.SyscallEntry, Time: 1 * time.Millisecond, Syscall: arch.SysWrite, Registers: testRegisters(1)},
		{Tid: 100, Kind: trace.SyscallExit, Time: 2 * time.Millisecond, Syscall: arch.SysWrite, Result: 12},
		{Tid: 100, Kind: trace.SyscallEntry, Time: 3 * time.Millisecond, Syscall: arch.SysMmap},
		{Tid: 100, Kind: trace.SyscallExit, Time: 4 * time.Millisecond, Syscall: arch.SysMmap, Result: 0x7f0000000000,
			Mappings: []trace.Mapping{
				{Start: 0x7f0000000000, Length: 4096, Prot: 3, Flags: 0x22, Backing: trace.Snapshot},
				{Start: 0x7f0000001000, Length: 8192, Prot: 5, Flags: 0x2, FileOffset: 4096, Backing: trace.File, Path: "/lib/libc.so.6"},
				{Start: 0x7f0000003000, Length: 4096, Prot: 3, Flags: 0x22, Backing: trace.Zero},
			},
		},
		{Tid: 100, Kind: trace.SyscallEntry, Time: 5 * time.Millisecond, Syscall: arch.SysRead},
		{Tid: 100, Kind: trace.SyscallExit, Time: 6 * time.Millisecond, Syscall: arch.SysRead, Result: 36,
			Registers: testRegisters(1000)},
		{Tid: 100, Kind: trace.Signal, Time: 7 * time.Millisecond, Signal: 11, Disposition: trace.Handler, Synchronous: true, Siginfo: []byte{11, 0, 0, 0}},
		{Tid: 100, Kind: trace.Clone, Time: 8 * time.Millisecond, CloneFlags: 0x3d0f00, NewTid: 101},
		{Tid: 101, Kind: trace.Exec, Time: 9 * time.Millisecond, Path: "/bin/echo"},
		{Tid: 101, Kind: trace.Exit, Time: 10 * time.Millisecond, Status: 0x100},
	}
	patch := func(refs []trace.BlobRef, events []trace.Event) {
		events[1].Writes = []trace.MemWrite{{Addr: 0x1000, Data: refs[0]}}
		events[3].Mappings[0].Data = refs[1]
		events[5].Writes = []trace.MemWrite{
			{Addr: 0x2000, Data: refs[2]},
			{Addr: 0x3000, Data: refs[0]},
		}
	}
	return blobs, events, patch
}

func TestTraceRoundTrip(t *testing.T) {
	for _, compression := range []trace.Compression{trace.Uncompressed, trace.Snappy, trace.Zstd} {
		t.Run(compression.String(), func(t *testing.T) {
			blobs, events, patch := testEvents()
			dir := writeTrace(t, trace.WriterOptions{
				Compression: compression,
				BatchSize:   3,
				ChunkSize:   16,
			}, testHeader, blobs, events, patch)

			r, err := trace.Open(dir, trace.Options{CacheSize: 2})
			assert.OK(t, err)
			defer r.Close()

			h := r.Header()
			assert.Equal(t, h.Version, trace.Version)
			assert.Equal(t, h.Arch, arch.Name)
			assert.Equal(t, h.UUID, testHeader.UUID)
			assert.Equal(t, h.Compression, compression)
			assert.Equal(t, h.Process.Exe, testHeader.Process.Exe)
			assert.EqualAll(t, h.Process.Args, testHeader.Process.Args)
			assert.EqualAll(t, h.Process.Environ, testHeader.Process.Environ)
			assert.Equal(t, h.Process.InitialTid, int32(100))
			assert.Equal(t, h.Process.StartTime.Equal(testHeader.Process.StartTime), true)

			assert.Equal(t, r.NumEvents(), int64(len(events)))
			got, err := trace.ReadAll(r)
			assert.OK(t, err)
			assert.Diff(t, got, events)

			for i, b := range blobs {
				var ref trace.BlobRef
				switch i {
				case 0:
					ref = got[1].Writes[0].Data
				case 1:
					ref = got[3].Mappings[0].Data
				case 2:
					ref = got[5].Writes[0].Data
				}
				data, err := r.ReadBlob(ref)
				assert.OK(t, err)
				assert.Bytes(t, data, b.data)
			}
		})
	}
}

func TestEventsRestartable(t *testing.T) {
	blobs, events, patch := testEvents()
	dir := writeTrace(t, trace.WriterOptions{BatchSize: 4}, testHeader, blobs, events, patch)

	r, err := trace.Open(dir, trace.Options{})
	assert.OK(t, err)
	defer r.Close()

	first, err := stream.ReadAll[trace.Event](r.Events())
	assert.OK(t, err)
	second, err := stream.ReadAll[trace.Event](r.Events())
	assert.OK(t, err)
	assert.Diff(t, second, first)
}

func TestEventsFrom(t *testing.T) {
	blobs, events, patch := testEvents()
	dir := writeTrace(t, trace.WriterOptions{BatchSize: 3}, testHeader, blobs, events, patch)

	r, err := trace.Open(dir, trace.Options{})
	assert.OK(t, err)
	defer r.Close()

	for from := int64(0); from <= int64(len(events))+1; from++ {
		er := r.EventsFrom(from)
		assert.Equal(t, er.Position(), min(from, int64(len(events))))
		got, err := stream.ReadAll[trace.Event](er)
		assert.OK(t, err)
		want := events[min(from, int64(len(events))):]
		assert.Equal(t, len(got), len(want))
		for i := range got {
			assert.Equal(t, got[i].Ordinal, want[i].Ordinal)
			assert.Equal(t, got[i].Kind, want[i].Kind)
		}
	}
}

func TestEventReaderSmallReads(t *testing.T) {
	blobs, events, patch := testEvents()
	dir := writeTrace(t, trace.WriterOptions{BatchSize: 4}, testHeader, blobs, events, patch)

	r, err := trace.Open(dir, trace.Options{})
	assert.OK(t, err)
	defer r.Close()

	er := r.Events()
	buf := make([]trace.Event, 1)
	for i := range events {
		n, err := er.Read(buf)
		assert.OK(t, err)
		assert.Equal(t, n, 1)
		assert.Equal(t, buf[0].Ordinal, int64(i))
	}
	_, err = er.Read(buf)
	assert.Error(t, err, io.EOF)
}

func TestEventReaderSeekOrdinal(t *testing.T) {
	blobs, events, patch := testEvents()
	dir := writeTrace(t, trace.WriterOptions{BatchSize: 2}, testHeader, blobs, events, patch)

	r, err := trace.Open(dir, trace.Options{})
	assert.OK(t, err)
	defer r.Close()

	er := r.Events()
	buf := make([]trace.Event, 3)
	_, err = er.Read(buf)
	assert.OK(t, err)

	er.SeekOrdinal(1)
	assert.Equal(t, er.Position(), int64(1))
	n, err := er.Read(buf[:1])
	assert.OK(t, err)
	assert.Equal(t, n, 1)
	assert.Equal(t, buf[0].Ordinal, int64(1))

	er.SeekOrdinal(-1)
	assert.Equal(t, er.Position(), int64(0))

	er.SeekOrdinal(int64(len(events)) + 10)
	assert.Equal(t, er.Position(), int64(len(events)))
	_, err = er.Read(buf)
	assert.Error(t, err, io.EOF)
}

func TestEmptyTrace(t *testing.T) {
	dir := writeTrace(t, trace.WriterOptions{}, testHeader, nil, nil, nil)

	r, err := trace.Open(dir, trace.Options{})
	assert.OK(t, err)
	defer r.Close()

	assert.Equal(t, r.NumEvents(), int64(0))
	events, err := trace.ReadAll(r)
	assert.OK(t, err)
	assert.Equal(t, len(events), 0)
}

func TestReadBlobOutOfRange(t *testing.T) {
	dir := writeTrace(t, trace.WriterOptions{ChunkSize: 4}, testHeader,
		[]blob{{trace.Data, []byte("abcdefghij")}}, nil, nil)

	r, err := trace.Open(dir, trace.Options{})
	assert.OK(t, err)
	defer r.Close()

	b, err := r.ReadBlob(trace.BlobRef{Store: trace.Data, Offset: 2, Length: 7})
	assert.OK(t, err)
	assert.Bytes(t, b, []byte("cdefghi"))

	_, err = r.ReadBlob(trace.BlobRef{Store: trace.Data, Offset: 8, Length: 3})
	assert.Error(t, err, trace.ErrBlobRange)
	assert.ErrorAs[*trace.FormatError](t, err)
}

func TestOpenInvalidTraces(t *testing.T) {
	tests := []struct {
		scenario string
		header   func(*trace.Header)
		corrupt  func(t *testing.T, dir string)
		err      error
	}{
		{
			scenario: "unsupported version",
			header:   func(h *trace.Header) { h.Version = 2 },
			err:      trace.ErrUnsupportedVersion,
		},
		{
			scenario: "unsupported architecture",
			header:   func(h *trace.Header) { h.Arch = "aarch64" },
			err:      trace.ErrUnsupportedArch,
		},
		{
			scenario: "syscall buffering",
			header:   func(h *trace.Header) { h.Syscallbuf = true },
			err:      trace.ErrSyscallbuf,
		},
		{
			scenario: "bad magic",
			corrupt: func(t *testing.T, dir string) {
				rewrite(t, filepath.Join(dir, trace.HeaderFile), func(b []byte) []byte {
					b[0] = 'X'
					return b
				})
			},
			err: trace.ErrBadMagic,
		},
		{
			scenario: "truncated events",
			corrupt: func(t *testing.T, dir string) {
				rewrite(t, filepath.Join(dir, trace.EventsFile), func(b []byte) []byte {
					return b[:len(b)-3]
				})
			},
			err: trace.ErrTruncated,
		},
		{
			scenario: "corrupted events",
			corrupt: func(t *testing.T, dir string) {
				rewrite(t, filepath.Join(dir, trace.EventsFile), func(b []byte) []byte {
					b[len(b)-1] ^= 0xFF
					return b
				})
			},
			err: trace.ErrChecksum,
		},
		{
			scenario: "corrupted data",
			corrupt: func(t *testing.T, dir string) {
				rewrite(t, filepath.Join(dir, trace.DataFile), func(b []byte) []byte {
					b[len(b)-1] ^= 0xFF
					return b
				})
			},
			err: trace.ErrChecksum,
		},
		{
			scenario: "missing mmaps",
			corrupt: func(t *testing.T, dir string) {
				assert.OK(t, os.Remove(filepath.Join(dir, trace.MmapsFile)))
			},
			err: os.ErrNotExist,
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			header := testHeader
			if test.header != nil {
				test.header(&header)
			}
			blobs, events, patch := testEvents()
			dir := writeTrace(t, trace.WriterOptions{BatchSize: 100}, header, blobs, events, patch)
			if test.corrupt != nil {
				test.corrupt(t, dir)
			}
			_, err := trace.Open(dir, trace.Options{})
			assert.Error(t, err, test.err)
			assert.ErrorAs[*trace.FormatError](t, err)
		})
	}
}

func TestOpenDanglingBlobRef(t *testing.T) {
	events := []trace.Event{
		{Tid: 1, Kind: trace.SyscallExit, Syscall: arch.SysRead, Result: 4,
			Writes: []trace.MemWrite{{Addr: 0x1000, Data: trace.BlobRef{Store: trace.Data, Offset: 100, Length: 4}}}},
	}
	dir := writeTrace(t, trace.WriterOptions{}, testHeader, nil, events, nil)

	_, err := trace.Open(dir, trace.Options{})
	assert.Error(t, err, trace.ErrBlobRange)

	// Structural checks only, the reference is not inspected.
	r, err := trace.Open(dir, trace.Options{SkipVerify: true})
	assert.OK(t, err)
	assert.OK(t, r.Close())
}

func rewrite(t *testing.T, path string, f func([]byte) []byte) {
	t.Helper()
	b, err := os.ReadFile(path)
	assert.OK(t, err)
	assert.OK(t, os.WriteFile(path, f(b), 0o666))
}
