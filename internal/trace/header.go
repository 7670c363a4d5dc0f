package trace

import (
	"errors"
	"fmt"
	"io"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/google/uuid"
	"github.com/stealthrocket/tracecraft/format/tracefmt"
	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/buffer"
)

var (
	errMissingArch       = errors.New("missing architecture in trace header")
	errMissingUUID       = errors.New("missing uuid in trace header")
	errMissingExe        = errors.New("missing executable in trace header")
	errMissingInitialTid = errors.New("missing initial tid in trace header")
	errMissingStartTime  = errors.New("missing start time in trace header")
)

// Header is the header of a trace.
type Header struct {
	Version     int
	Arch        string
	UUID        uuid.UUID
	Process     Process
	Compression Compression
	Syscallbuf  bool
}

// Process describes the initial process of the recording.
type Process struct {
	Exe        string
	Args       []string
	Environ    []string
	Cwd        string
	InitialTid int32
	StartTime  time.Time
}

// NewHeader decodes a Header from a buffer holding the size-prefixed
// flatbuffers table. Only the structure of the header is checked, the
// version and architecture are validated by Open.
func NewHeader(b []byte) (*Header, error) {
	if len(b) < 4 || frameSize(b) > int64(len(b)) {
		return nil, ErrTruncated
	}
	var h Header
	err := decodeSafely(func() error {
		header := tracefmt.GetSizePrefixedRootAsTraceHeader(b, 0)
		h.Version = int(header.Version())
		h.Arch = string(header.Arch())
		if h.Arch == "" {
			return errMissingArch
		}
		id, err := uuid.FromBytes(header.UuidBytes())
		if err != nil {
			return fmt.Errorf("%w: %s", errMissingUUID, err)
		}
		h.UUID = id
		h.Process.Exe = string(header.Exe())
		if h.Process.Exe == "" {
			return errMissingExe
		}
		h.Process.Cwd = string(header.Cwd())
		if h.Process.InitialTid = header.InitialTid(); h.Process.InitialTid <= 0 {
			return errMissingInitialTid
		}
		if unixStartTime := header.UnixStartTime(); unixStartTime == 0 {
			return errMissingStartTime
		} else {
			h.Process.StartTime = time.Unix(0, unixStartTime)
		}
		h.Process.Args = make([]string, header.ArgsLength())
		for i := range h.Process.Args {
			h.Process.Args[i] = string(header.Args(i))
		}
		h.Process.Environ = make([]string, header.EnvironLength())
		for i := range h.Process.Environ {
			h.Process.Environ[i] = string(header.Environ(i))
		}
		h.Compression = header.Compression()
		h.Syscallbuf = header.Syscallbuf()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// validate checks that the header describes a trace that can be replayed by
// this build.
func (h *Header) validate() error {
	if h.Version != Version {
		return fmt.Errorf("%w: %d (expected %d)", ErrUnsupportedVersion, h.Version, Version)
	}
	if h.Arch != arch.Name {
		return fmt.Errorf("%w: %q (expected %q)", ErrUnsupportedArch, h.Arch, arch.Name)
	}
	if h.Syscallbuf {
		return ErrSyscallbuf
	}
	switch h.Compression {
	case Uncompressed, Snappy, Zstd:
	default:
		return fmt.Errorf("unknown compression format: %d", h.Compression)
	}
	return nil
}

// HeaderBuilder is a builder for headers.
type HeaderBuilder struct {
	builder     *flatbuffers.Builder
	version     int
	arch        string
	uuid        uuid.UUID
	process     Process
	compression Compression
	syscallbuf  bool
	offsets     []flatbuffers.UOffsetT
	finished    bool
}

// Reset resets the builder.
func (b *HeaderBuilder) Reset() {
	if b.builder == nil {
		b.builder = flatbuffers.NewBuilder(buffer.DefaultSize)
	} else {
		b.builder.Reset()
	}
	b.version = Version
	b.arch = arch.Name
	b.uuid = uuid.UUID{}
	b.process = Process{}
	b.compression = Uncompressed
	b.syscallbuf = false
	b.offsets = b.offsets[:0]
	b.finished = false
}

// SetVersion sets the format version. It defaults to Version.
func (b *HeaderBuilder) SetVersion(version int) {
	if b.finished {
		panic("builder must be reset before version can be set")
	}
	b.version = version
}

// SetArch sets the architecture. It defaults to the architecture of this
// build.
func (b *HeaderBuilder) SetArch(arch string) {
	if b.finished {
		panic("builder must be reset before arch can be set")
	}
	b.arch = arch
}

// SetUUID sets the trace uuid.
func (b *HeaderBuilder) SetUUID(id uuid.UUID) {
	if b.finished {
		panic("builder must be reset before uuid can be set")
	}
	b.uuid = id
}

// SetProcess sets process information.
func (b *HeaderBuilder) SetProcess(process Process) {
	if b.finished {
		panic("builder must be reset before process can be set")
	}
	b.process = process
}

// SetCompression sets the compression of event batches and blob chunks.
func (b *HeaderBuilder) SetCompression(compression Compression) {
	if b.finished {
		panic("builder must be reset before compression can be set")
	}
	b.compression = compression
}

// SetSyscallbuf marks the trace as recorded with syscall buffering.
func (b *HeaderBuilder) SetSyscallbuf(syscallbuf bool) {
	if b.finished {
		panic("builder must be reset before syscallbuf can be set")
	}
	b.syscallbuf = syscallbuf
}

// Bytes returns the serialized representation of the header, without the
// magic.
func (b *HeaderBuilder) Bytes() []byte {
	if !b.finished {
		b.build()
		b.finished = true
	}
	return b.builder.FinishedBytes()
}

// Write writes the magic and the serialized representation of the header to
// the specified writer.
func (b *HeaderBuilder) Write(w io.Writer) (int, error) {
	n1, err := io.WriteString(w, Magic)
	if err != nil {
		return n1, err
	}
	n2, err := w.Write(b.Bytes())
	return n1 + n2, err
}

func (b *HeaderBuilder) build() {
	if b.builder == nil {
		b.builder = flatbuffers.NewBuilder(buffer.DefaultSize)
	}

	var argsOffset, environOffset flatbuffers.UOffsetT
	b.offsets, argsOffset = prependStringVector(b.builder, b.process.Args, b.offsets)
	b.offsets, environOffset = prependStringVector(b.builder, b.process.Environ, b.offsets)
	uuidOffset := b.builder.CreateByteVector(b.uuid[:])
	archOffset := b.builder.CreateString(b.arch)
	cwdOffset := b.builder.CreateString(b.process.Cwd)
	exeOffset := b.builder.CreateString(b.process.Exe)

	var unixStartTime int64
	if !b.process.StartTime.IsZero() {
		unixStartTime = b.process.StartTime.UnixNano()
	}

	tracefmt.TraceHeaderStart(b.builder)
	tracefmt.TraceHeaderAddVersion(b.builder, uint32(b.version))
	tracefmt.TraceHeaderAddArch(b.builder, archOffset)
	tracefmt.TraceHeaderAddUuid(b.builder, uuidOffset)
	tracefmt.TraceHeaderAddArgs(b.builder, argsOffset)
	tracefmt.TraceHeaderAddEnviron(b.builder, environOffset)
	tracefmt.TraceHeaderAddCwd(b.builder, cwdOffset)
	tracefmt.TraceHeaderAddExe(b.builder, exeOffset)
	tracefmt.TraceHeaderAddInitialTid(b.builder, b.process.InitialTid)
	tracefmt.TraceHeaderAddUnixStartTime(b.builder, unixStartTime)
	tracefmt.TraceHeaderAddCompression(b.builder, b.compression)
	tracefmt.TraceHeaderAddSyscallbuf(b.builder, b.syscallbuf)
	tracefmt.FinishSizePrefixedTraceHeaderBuffer(b.builder, tracefmt.TraceHeaderEnd(b.builder))
}
