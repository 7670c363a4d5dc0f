package replay

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"golang.org/x/exp/slices"
)

var errInvalidRange = errors.New("invalid address range")

// SpaceID identifies an address space. Identifiers are never reused within a
// registry.
type SpaceID uint64

// Mapping is a range of memory of an address space.
type Mapping struct {
	Start   uint64
	End     uint64
	Prot    uint32
	Flags   uint32
	Offset  int64
	Backing trace.Backing
	Path    string
	// Data locates the content of snapshot mappings in the trace.
	Data trace.BlobRef
}

// Len returns the size of the mapping in bytes.
func (m Mapping) Len() uint64 { return m.End - m.Start }

// Contains reports whether addr is in the mapping.
func (m Mapping) Contains(addr uint64) bool { return addr >= m.Start && addr < m.End }

func (m Mapping) String() string {
	perms := []byte("---p")
	if m.Prot&arch.PROT_READ != 0 {
		perms[0] = 'r'
	}
	if m.Prot&arch.PROT_WRITE != 0 {
		perms[1] = 'w'
	}
	if m.Prot&arch.PROT_EXEC != 0 {
		perms[2] = 'x'
	}
	if m.Flags&arch.MAP_SHARED != 0 {
		perms[3] = 's'
	}
	s := fmt.Sprintf("%012x-%012x %s %08x", m.Start, m.End, perms, m.Offset)
	if m.Path != "" {
		s += " " + m.Path
	}
	return s
}

// slice returns the part of the mapping between from and to, which must be
// within the mapping.
func (m Mapping) slice(from, to uint64) Mapping {
	delta := from - m.Start
	m.Start, m.End = from, to
	if m.Backing == trace.File {
		m.Offset += int64(delta)
	}
	if m.Backing == trace.Snapshot {
		length := m.Data.Length - int64(delta)
		m.Data.Offset += int64(delta)
		m.Data.Length = max(0, min(length, int64(to-from)))
	}
	return m
}

// NewMapping converts a mapping recorded in the trace.
func NewMapping(m *trace.Mapping) Mapping {
	return Mapping{
		Start:   m.Start,
		End:     m.Start + arch.PageRoundUp(m.Length),
		Prot:    m.Prot,
		Flags:   m.Flags,
		Offset:  m.FileOffset,
		Backing: m.Backing,
		Path:    m.Path,
		Data:    m.Data,
	}
}

// AddressSpace models the memory mappings shared by tasks of a process.
//
// Mappings are kept sorted and never overlap. Adjacent mappings are not
// merged, a single kernel mapping may be modeled by multiple entries.
type AddressSpace struct {
	id       SpaceID
	owners   int
	limit    int
	mappings []Mapping
	brk      uint64
	scratch  uint64
}

func newAddressSpace(id SpaceID, limit int) *AddressSpace {
	return &AddressSpace{id: id, limit: limit}
}

// ID returns the identifier of the address space.
func (s *AddressSpace) ID() SpaceID { return s.id }

// Owners returns the number of tasks sharing the address space.
func (s *AddressSpace) Owners() int { return s.owners }

// Brk returns the program break, zero until a call to brk was replayed.
func (s *AddressSpace) Brk() uint64 { return s.brk }

// Scratch returns the address of the page the injector uses to pass
// arguments to system calls, zero if it was not created.
func (s *AddressSpace) Scratch() uint64 { return s.scratch }

// Mappings returns a copy of the mappings of the address space, ordered by
// address.
func (s *AddressSpace) Mappings() []Mapping { return slices.Clone(s.mappings) }

// Len returns the number of mappings.
func (s *AddressSpace) Len() int { return len(s.mappings) }

// Size returns the number of bytes mapped.
func (s *AddressSpace) Size() (size uint64) {
	for i := range s.mappings {
		size += s.mappings[i].Len()
	}
	return size
}

// Find returns the mapping containing addr.
func (s *AddressSpace) Find(addr uint64) (Mapping, bool) {
	i := sort.Search(len(s.mappings), func(i int) bool {
		return s.mappings[i].End > addr
	})
	if i < len(s.mappings) && s.mappings[i].Contains(addr) {
		return s.mappings[i], true
	}
	return Mapping{}, false
}

func checkRange(start, length uint64) (end uint64, err error) {
	if start%arch.PageSize != 0 {
		return 0, fmt.Errorf("%w: %#x is not page aligned", errInvalidRange, start)
	}
	end = start + arch.PageRoundUp(length)
	if length == 0 || end <= start {
		return 0, fmt.Errorf("%w: %#x+%#x", errInvalidRange, start, length)
	}
	return end, nil
}

// Map adds a mapping, replacing the parts of existing mappings it overlaps.
// The end of the mapping is rounded up to a page boundary.
func (s *AddressSpace) Map(m Mapping) error {
	if m.End < m.Start {
		return fmt.Errorf("%w: %#x-%#x", errInvalidRange, m.Start, m.End)
	}
	end, err := checkRange(m.Start, m.End-m.Start)
	if err != nil {
		return err
	}
	m.End = end
	mappings := unmapRange(make([]Mapping, 0, len(s.mappings)+2), s.mappings, m.Start, m.End)
	i := sort.Search(len(mappings), func(i int) bool {
		return mappings[i].Start >= m.End
	})
	mappings = slices.Insert(mappings, i, m)
	return s.update(mappings)
}

// Unmap removes the pages between start and start+length. Unmapping a range
// that holds no mappings is not an error.
func (s *AddressSpace) Unmap(start, length uint64) error {
	end, err := checkRange(start, length)
	if err != nil {
		return err
	}
	return s.update(unmapRange(make([]Mapping, 0, len(s.mappings)+1), s.mappings, start, end))
}

// Protect changes the protection of the mapped pages between start and
// start+length.
func (s *AddressSpace) Protect(start, length uint64, prot uint32) error {
	end, err := checkRange(start, length)
	if err != nil {
		return err
	}
	mappings := make([]Mapping, 0, len(s.mappings)+2)
	for _, m := range s.mappings {
		if m.End <= start || m.Start >= end {
			mappings = append(mappings, m)
			continue
		}
		if m.Start < start {
			mappings = append(mappings, m.slice(m.Start, start))
		}
		mid := m.slice(max(m.Start, start), min(m.End, end))
		mid.Prot = prot
		mappings = append(mappings, mid)
		if m.End > end {
			mappings = append(mappings, m.slice(end, m.End))
		}
	}
	return s.update(mappings)
}

// Remap moves the pages between oldStart and oldStart+oldLength to newStart,
// resizing the range to newLength. The old range must be within a single
// mapping.
func (s *AddressSpace) Remap(oldStart, oldLength, newStart, newLength uint64) error {
	oldEnd, err := checkRange(oldStart, oldLength)
	if err != nil {
		return err
	}
	newEnd, err := checkRange(newStart, newLength)
	if err != nil {
		return err
	}
	src, ok := s.Find(oldStart)
	if !ok || src.End < oldEnd {
		return fmt.Errorf("%w: %#x-%#x is not within a mapping", errInvalidRange, oldStart, oldEnd)
	}
	moved := src.slice(oldStart, oldEnd)
	if moved.Backing == trace.Snapshot {
		moved.Data.Length = min(moved.Data.Length, int64(newEnd-newStart))
	}
	moved.Start, moved.End = newStart, newEnd

	mappings := unmapRange(make([]Mapping, 0, len(s.mappings)+2), s.mappings, oldStart, oldEnd)
	mappings = unmapRange(make([]Mapping, 0, len(mappings)+2), mappings, newStart, newEnd)
	i := sort.Search(len(mappings), func(i int) bool {
		return mappings[i].Start >= newEnd
	})
	return s.update(slices.Insert(mappings, i, moved))
}

// SetBrk moves the program break, mapping or unmapping the heap pages between
// the old and new break.
func (s *AddressSpace) SetBrk(brk uint64) error {
	old := s.brk
	s.brk = brk
	if old == 0 || old == brk {
		return nil
	}
	oldEnd, newEnd := arch.PageRoundUp(old), arch.PageRoundUp(brk)
	switch {
	case newEnd > oldEnd:
		return s.Map(Mapping{
			Start: oldEnd,
			End:   newEnd,
			Prot:  arch.PROT_READ | arch.PROT_WRITE,
			Flags: arch.MAP_PRIVATE | arch.MAP_ANONYMOUS,
			Path:  "[heap]",
		})
	case newEnd < oldEnd:
		return s.Unmap(newEnd, oldEnd-newEnd)
	}
	return nil
}

func (s *AddressSpace) update(mappings []Mapping) error {
	if s.limit > 0 && len(mappings) > s.limit {
		return &ResourceExhaustionError{Resource: "memory mappings", Limit: s.limit}
	}
	s.mappings = mappings
	return nil
}

func (s *AddressSpace) clone(id SpaceID) *AddressSpace {
	return &AddressSpace{
		id:       id,
		limit:    s.limit,
		mappings: slices.Clone(s.mappings),
		brk:      s.brk,
		scratch:  s.scratch,
	}
}

func (s *AddressSpace) String() string {
	lines := make([]string, len(s.mappings))
	for i := range s.mappings {
		lines[i] = s.mappings[i].String()
	}
	return strings.Join(lines, "\n")
}

func unmapRange(dst, src []Mapping, start, end uint64) []Mapping {
	for _, m := range src {
		if m.End <= start || m.Start >= end {
			dst = append(dst, m)
			continue
		}
		if m.Start < start {
			dst = append(dst, m.slice(m.Start, start))
		}
		if m.End > end {
			dst = append(dst, m.slice(end, m.End))
		}
	}
	return dst
}
