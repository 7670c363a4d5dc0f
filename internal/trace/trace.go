// Package trace implements reading and writing of trace directories.
//
// A trace directory holds the header of the recording session, the ordered
// log of events, and two blob stores for large payloads. The layout of each
// file is described in format/tracefmt/trace.fbs.
package trace

import (
	"fmt"
	"time"

	"github.com/stealthrocket/tracecraft/format/tracefmt"
	"github.com/stealthrocket/tracecraft/internal/arch"
)

// Version is the only trace format version supported by this package.
const Version = 1

// Magic is the sequence of bytes that every header file starts with.
const Magic = "TRCF"

// Names of the files of a trace directory.
const (
	HeaderFile = "header"
	EventsFile = "events"
	DataFile   = "data"
	MmapsFile  = "mmaps"
)

type Compression = tracefmt.Compression

const (
	Uncompressed Compression = tracefmt.CompressionUncompressed
	Snappy       Compression = tracefmt.CompressionSnappy
	Zstd         Compression = tracefmt.CompressionZstd
)

// ParseCompression parses the name of a compression algorithm.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "none", "uncompressed":
		return Uncompressed, nil
	case "snappy":
		return Snappy, nil
	case "zstd":
		return Zstd, nil
	}
	return 0, fmt.Errorf("unsupported compression: %q", s)
}

type EventKind = tracefmt.EventKind

const (
	SyscallEntry EventKind = tracefmt.EventKindSyscallEntry
	SyscallExit  EventKind = tracefmt.EventKindSyscallExit
	Signal       EventKind = tracefmt.EventKindSignal
	Clone        EventKind = tracefmt.EventKindClone
	Exec         EventKind = tracefmt.EventKindExec
	Exit         EventKind = tracefmt.EventKindExit
)

type Disposition = tracefmt.Disposition

const (
	Ignored Disposition = tracefmt.DispositionIgnored
	Handler Disposition = tracefmt.DispositionHandler
	Fatal   Disposition = tracefmt.DispositionFatal
)

type Backing = tracefmt.Backing

const (
	Zero     Backing = tracefmt.BackingZero
	Snapshot Backing = tracefmt.BackingSnapshot
	File     Backing = tracefmt.BackingFile
)

// Store identifies one of the blob stores of a trace.
type Store uint8

const (
	// Data is the store of syscall output buffers and signal frames.
	Data Store = iota
	// Mmaps is the store of memory snapshot segments.
	Mmaps
)

func (s Store) String() string {
	switch s {
	case Data:
		return DataFile
	case Mmaps:
		return MmapsFile
	default:
		return fmt.Sprintf("Store(%d)", s)
	}
}

// BlobRef references a range of bytes in a blob store.
type BlobRef struct {
	Store  Store
	Offset int64
	Length int64
}

func (r BlobRef) String() string {
	return fmt.Sprintf("%s[%d:%d]", r.Store, r.Offset, r.Offset+r.Length)
}

// MemWrite is a range of memory that the kernel wrote while executing a
// system call or delivering a signal.
type MemWrite struct {
	Addr uint64
	Data BlobRef
}

// Mapping describes a memory mapping of a task address space.
type Mapping struct {
	Start      uint64
	Length     uint64
	Prot       uint32
	Flags      uint32
	FileOffset int64
	Backing    Backing
	// For Snapshot mappings, the location of the mapping content in the
	// mmaps store.
	Data BlobRef
	// For File mappings, the path of the mapped file.
	Path string
}

// End is the address of the first byte after the mapping.
func (m *Mapping) End() uint64 { return m.Start + m.Length }

// Event is a decoded event of the trace.
type Event struct {
	Ordinal int64
	Tid     int32
	Kind    EventKind
	// Time elapsed since the start of the recording.
	Time time.Duration

	// Syscall events.
	Syscall int
	Result  int64

	// Registers is the register file of the task when the event occurred,
	// nil if the event did not record it.
	Registers *arch.Registers
	Writes    []MemWrite

	// Signal events.
	Signal      int
	Disposition Disposition
	Synchronous bool
	Siginfo     []byte

	// Clone events.
	CloneFlags uint64
	NewTid     int32

	// Exec events, and syscall exits that create mappings.
	Path     string
	Mappings []Mapping

	// Exit events, the wait status of the task.
	Status int32
}

func (e *Event) String() string {
	switch e.Kind {
	case SyscallEntry:
		return fmt.Sprintf("#%d tid=%d %s(%s)", e.Ordinal, e.Tid, e.Kind, arch.SyscallName(e.Syscall))
	case SyscallExit:
		return fmt.Sprintf("#%d tid=%d %s(%s) = %d", e.Ordinal, e.Tid, e.Kind, arch.SyscallName(e.Syscall), e.Result)
	case Signal:
		return fmt.Sprintf("#%d tid=%d %s(%d) %s", e.Ordinal, e.Tid, e.Kind, e.Signal, e.Disposition)
	case Clone:
		return fmt.Sprintf("#%d tid=%d %s(%d)", e.Ordinal, e.Tid, e.Kind, e.NewTid)
	case Exec:
		return fmt.Sprintf("#%d tid=%d %s(%q)", e.Ordinal, e.Tid, e.Kind, e.Path)
	case Exit:
		return fmt.Sprintf("#%d tid=%d %s(%#x)", e.Ordinal, e.Tid, e.Kind, e.Status)
	default:
		return fmt.Sprintf("#%d tid=%d %s", e.Ordinal, e.Tid, e.Kind)
	}
}
