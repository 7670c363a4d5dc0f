package trace

import (
	"fmt"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/stealthrocket/tracecraft/format/tracefmt"
	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/buffer"
)

// decodeEvent decodes the size-prefixed event table at the start of b into e.
func decodeEvent(e *Event, b []byte) error {
	return decodeSafely(func() error {
		event := tracefmt.GetSizePrefixedRootAsEvent(b, 0)
		*e = Event{
			Ordinal:     event.Ordinal(),
			Tid:         event.Tid(),
			Kind:        event.Kind(),
			Time:        time.Duration(event.Timestamp()),
			Syscall:     int(event.Syscall()),
			Result:      event.Result(),
			Signal:      int(event.Signal()),
			Disposition: event.Disposition(),
			Synchronous: event.Synchronous(),
			CloneFlags:  event.CloneFlags(),
			NewTid:      event.NewTid(),
			Path:        string(event.Path()),
			Status:      event.Status(),
		}
		if e.Kind == tracefmt.EventKindInvalid || e.Kind > Exit {
			return fmt.Errorf("invalid event kind: %d", e.Kind)
		}
		if e.Tid <= 0 {
			return fmt.Errorf("invalid event tid: %d", e.Tid)
		}

		if n := event.RegistersLength(); n > 0 {
			words := make([]uint64, n)
			for i := range words {
				words[i] = event.Registers(i)
			}
			e.Registers = new(arch.Registers)
			if err := e.Registers.SetWords(words); err != nil {
				return err
			}
		}

		if n := event.WritesLength(); n > 0 {
			e.Writes = make([]MemWrite, n)
			var w tracefmt.MemWrite
			for i := range e.Writes {
				event.Writes(&w, i)
				e.Writes[i] = MemWrite{
					Addr: w.Address(),
					Data: BlobRef{
						Store:  Data,
						Offset: w.DataOffset(),
						Length: int64(w.Length()),
					},
				}
			}
		}

		if siginfo := event.SiginfoBytes(); len(siginfo) > 0 {
			e.Siginfo = append([]byte(nil), siginfo...)
		}

		if n := event.MappingsLength(); n > 0 {
			e.Mappings = make([]Mapping, n)
			var m tracefmt.Mapping
			for i := range e.Mappings {
				event.Mappings(&m, i)
				e.Mappings[i] = Mapping{
					Start:      m.Start(),
					Length:     m.Length(),
					Prot:       m.Prot(),
					Flags:      m.Flags(),
					FileOffset: m.FileOffset(),
					Backing:    m.Backing(),
					Path:       string(m.Path()),
				}
				if e.Mappings[i].Backing == Snapshot {
					e.Mappings[i].Data = BlobRef{
						Store:  Mmaps,
						Offset: m.DataOffset(),
						Length: m.DataLength(),
					}
				}
			}
		}
		return nil
	})
}

// EventBuilder is a builder for events.
type EventBuilder struct {
	builder  *flatbuffers.Builder
	event    Event
	offsets  []flatbuffers.UOffsetT
	finished bool
}

// Reset resets the builder.
func (b *EventBuilder) Reset() {
	if b.builder == nil {
		b.builder = flatbuffers.NewBuilder(buffer.DefaultSize)
	} else {
		b.builder.Reset()
	}
	b.event = Event{}
	b.offsets = b.offsets[:0]
	b.finished = false
}

// SetEvent sets the event to serialize. The blob references of the event must
// point to data already written to the blob stores.
//
// The event is retained until Bytes is called.
func (b *EventBuilder) SetEvent(e *Event) {
	if b.finished {
		panic("builder must be reset before event can be set")
	}
	b.event = *e
}

// Bytes returns the serialized representation of the event.
func (b *EventBuilder) Bytes() []byte {
	if !b.finished {
		b.build()
		b.finished = true
	}
	return b.builder.FinishedBytes()
}

func (b *EventBuilder) build() {
	if b.builder == nil {
		panic("builder is not initialized")
	}
	e := &b.event

	var registersOffset flatbuffers.UOffsetT
	if e.Registers != nil {
		registersOffset = prependUint64Vector(b.builder, e.Registers.Words())
	}

	var writesOffset flatbuffers.UOffsetT
	if len(e.Writes) > 0 {
		tracefmt.EventStartWritesVector(b.builder, len(e.Writes))
		for i := len(e.Writes) - 1; i >= 0; i-- {
			w := &e.Writes[i]
			tracefmt.CreateMemWrite(b.builder, w.Addr, w.Data.Offset, uint32(w.Data.Length))
		}
		writesOffset = b.builder.EndVector(len(e.Writes))
	}

	var siginfoOffset flatbuffers.UOffsetT
	if len(e.Siginfo) > 0 {
		siginfoOffset = b.builder.CreateByteVector(e.Siginfo)
	}

	var pathOffset flatbuffers.UOffsetT
	if e.Path != "" {
		pathOffset = b.builder.CreateString(e.Path)
	}

	var mappingsOffset flatbuffers.UOffsetT
	if len(e.Mappings) > 0 {
		b.offsets = b.offsets[:0]
		for i := range e.Mappings {
			b.offsets = append(b.offsets, b.buildMapping(&e.Mappings[i]))
		}
		tracefmt.EventStartMappingsVector(b.builder, len(b.offsets))
		for i := len(b.offsets) - 1; i >= 0; i-- {
			b.builder.PrependUOffsetT(b.offsets[i])
		}
		mappingsOffset = b.builder.EndVector(len(b.offsets))
	}

	tracefmt.EventStart(b.builder)
	tracefmt.EventAddOrdinal(b.builder, e.Ordinal)
	tracefmt.EventAddTid(b.builder, e.Tid)
	tracefmt.EventAddKind(b.builder, e.Kind)
	tracefmt.EventAddTimestamp(b.builder, int64(e.Time))
	tracefmt.EventAddSyscall(b.builder, int32(e.Syscall))
	tracefmt.EventAddResult(b.builder, e.Result)
	if registersOffset != 0 {
		tracefmt.EventAddRegisters(b.builder, registersOffset)
	}
	if writesOffset != 0 {
		tracefmt.EventAddWrites(b.builder, writesOffset)
	}
	tracefmt.EventAddSignal(b.builder, int32(e.Signal))
	tracefmt.EventAddDisposition(b.builder, e.Disposition)
	tracefmt.EventAddSynchronous(b.builder, e.Synchronous)
	if siginfoOffset != 0 {
		tracefmt.EventAddSiginfo(b.builder, siginfoOffset)
	}
	tracefmt.EventAddCloneFlags(b.builder, e.CloneFlags)
	tracefmt.EventAddNewTid(b.builder, e.NewTid)
	if pathOffset != 0 {
		tracefmt.EventAddPath(b.builder, pathOffset)
	}
	if mappingsOffset != 0 {
		tracefmt.EventAddMappings(b.builder, mappingsOffset)
	}
	tracefmt.EventAddStatus(b.builder, e.Status)
	tracefmt.FinishSizePrefixedEventBuffer(b.builder, tracefmt.EventEnd(b.builder))
}

func (b *EventBuilder) buildMapping(m *Mapping) flatbuffers.UOffsetT {
	var pathOffset flatbuffers.UOffsetT
	if m.Path != "" {
		pathOffset = b.builder.CreateString(m.Path)
	}
	tracefmt.MappingStart(b.builder)
	tracefmt.MappingAddStart(b.builder, m.Start)
	tracefmt.MappingAddLength(b.builder, m.Length)
	tracefmt.MappingAddProt(b.builder, m.Prot)
	tracefmt.MappingAddFlags(b.builder, m.Flags)
	tracefmt.MappingAddFileOffset(b.builder, m.FileOffset)
	tracefmt.MappingAddBacking(b.builder, m.Backing)
	if m.Backing == Snapshot {
		tracefmt.MappingAddDataOffset(b.builder, m.Data.Offset)
		tracefmt.MappingAddDataLength(b.builder, m.Data.Length)
	}
	if pathOffset != 0 {
		tracefmt.MappingAddPath(b.builder, pathOffset)
	}
	return tracefmt.MappingEnd(b.builder)
}
