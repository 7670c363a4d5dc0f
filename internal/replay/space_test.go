package replay

import (
	"errors"
	"testing"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/assert"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"pgregory.net/rapid"
)

func TestAddressSpaceMap(t *testing.T) {
	s := newAddressSpace(1, 0)
	assert.OK(t, s.Map(Mapping{Start: 0x1000, End: 0x5000, Prot: arch.PROT_READ, Backing: trace.Zero}))
	assert.OK(t, s.Map(Mapping{Start: 0x2000, End: 0x3000, Prot: arch.PROT_WRITE, Backing: trace.File, Path: "/lib/a.so", Offset: 0x8000}))

	mappings := s.Mappings()
	assert.Equal(t, len(mappings), 3)
	assert.Equal(t, mappings[0].End, uint64(0x2000))
	assert.Equal(t, mappings[1].Path, "/lib/a.so")
	assert.Equal(t, mappings[2].Start, uint64(0x3000))
	assert.Equal(t, s.Size(), uint64(0x4000))

	m, ok := s.Find(0x2fff)
	assert.Equal(t, ok, true)
	assert.Equal(t, m.Offset, int64(0x8000))
	_, ok = s.Find(0x5000)
	assert.Equal(t, ok, false)
}

func TestAddressSpaceInvalidRange(t *testing.T) {
	s := newAddressSpace(1, 0)
	assert.Error(t, s.Map(Mapping{Start: 0x1001, End: 0x2000}), errInvalidRange)
	assert.Error(t, s.Unmap(0x1000, 0), errInvalidRange)
	assert.Error(t, s.Protect(^uint64(0)&^(arch.PageSize-1), 2*arch.PageSize, 0), errInvalidRange)
	assert.Error(t, s.Remap(0x1000, arch.PageSize, 0x8000, arch.PageSize), errInvalidRange)
}

func TestAddressSpaceLimit(t *testing.T) {
	s := newAddressSpace(1, 2)
	assert.OK(t, s.Map(Mapping{Start: 0x1000, End: 0x2000}))
	assert.OK(t, s.Map(Mapping{Start: 0x3000, End: 0x4000}))
	err := s.Map(Mapping{Start: 0x5000, End: 0x6000})
	exhausted := assert.ErrorAs[*ResourceExhaustionError](t, err)
	assert.Equal(t, exhausted.Limit, 2)
	assert.Equal(t, s.Len(), 2)
}

func TestAddressSpaceBrk(t *testing.T) {
	s := newAddressSpace(1, 0)
	assert.OK(t, s.SetBrk(0x10000))
	assert.Equal(t, s.Len(), 0)
	assert.OK(t, s.SetBrk(0x12800))
	m, ok := s.Find(0x12000)
	assert.Equal(t, ok, true)
	assert.Equal(t, m.Path, "[heap]")
	assert.Equal(t, m.End, uint64(0x13000))
	assert.OK(t, s.SetBrk(0x10000))
	assert.Equal(t, s.Len(), 0)
}

const (
	modelBase  = 0x100000
	modelPages = 48
)

type pageAttrs struct {
	prot    uint32
	backing trace.Backing
	path    string
	offset  int64
}

func attrsAt(m Mapping, addr uint64) pageAttrs {
	a := pageAttrs{prot: m.Prot, backing: m.Backing, path: m.Path}
	if m.Backing == trace.File {
		a.offset = m.Offset + int64(addr-m.Start)
	}
	return a
}

func drawRange(t *rapid.T) (start, length uint64) {
	first := rapid.IntRange(0, modelPages-1).Draw(t, "first")
	count := rapid.IntRange(1, modelPages-first).Draw(t, "count")
	return modelBase + uint64(first)*arch.PageSize, uint64(count) * arch.PageSize
}

func TestAddressSpaceModel(t *testing.T) {
	rapid.Check(t, checkAddressSpace)
}

func checkAddressSpace(t *rapid.T) {
	s := newAddressSpace(1, 0)
	model := make(map[uint64]pageAttrs)

	actions := map[string]func(*rapid.T){
		"map": func(t *rapid.T) {
			start, length := drawRange(t)
			m := Mapping{
				Start:   start,
				End:     start + length,
				Prot:    uint32(rapid.IntRange(0, 7).Draw(t, "prot")),
				Backing: trace.Zero,
			}
			if rapid.Bool().Draw(t, "file") {
				m.Backing = trace.File
				m.Path = rapid.SampledFrom([]string{"/a", "/b"}).Draw(t, "path")
				m.Offset = int64(rapid.IntRange(0, 16).Draw(t, "offset")) * arch.PageSize
			}
			if err := s.Map(m); err != nil {
				t.Fatal(err)
			}
			for a := m.Start; a < m.End; a += arch.PageSize {
				model[a] = attrsAt(m, a)
			}
		},
		"unmap": func(t *rapid.T) {
			start, length := drawRange(t)
			if err := s.Unmap(start, length); err != nil {
				t.Fatal(err)
			}
			for a := start; a < start+length; a += arch.PageSize {
				delete(model, a)
			}
		},
		"protect": func(t *rapid.T) {
			start, length := drawRange(t)
			prot := uint32(rapid.IntRange(0, 7).Draw(t, "prot"))
			if err := s.Protect(start, length, prot); err != nil {
				t.Fatal(err)
			}
			for a := start; a < start+length; a += arch.PageSize {
				if attrs, ok := model[a]; ok {
					attrs.prot = prot
					model[a] = attrs
				}
			}
		},
		"remap": func(t *rapid.T) {
			oldStart, oldLength := drawRange(t)
			newStart, newLength := drawRange(t)
			src, ok := s.Find(oldStart)
			err := s.Remap(oldStart, oldLength, newStart, newLength)
			if !ok || src.End < oldStart+oldLength {
				if !errors.Is(err, errInvalidRange) {
					t.Fatalf("remap of %#x+%#x outside of a mapping: %v", oldStart, oldLength, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			for a := oldStart; a < oldStart+oldLength; a += arch.PageSize {
				delete(model, a)
			}
			for a := newStart; a < newStart+newLength; a += arch.PageSize {
				model[a] = attrsAt(src, oldStart+(a-newStart))
			}
		},
		"": func(t *rapid.T) {
			mappings := s.Mappings()
			pages := 0
			for i, m := range mappings {
				if m.Start >= m.End {
					t.Fatalf("empty mapping %s", m)
				}
				if i > 0 && mappings[i-1].End > m.Start {
					t.Fatalf("mappings overlap: %s and %s", mappings[i-1], m)
				}
				for a := m.Start; a < m.End; a += arch.PageSize {
					want, ok := model[a]
					if !ok {
						t.Fatalf("page %#x of %s is not mapped in the model", a, m)
					}
					if got := attrsAt(m, a); got != want {
						t.Fatalf("page %#x: got %+v, want %+v", a, got, want)
					}
					pages++
				}
			}
			if pages != len(model) {
				t.Fatalf("%d pages mapped, the model has %d", pages, len(model))
			}
		},
	}
	t.Repeat(actions)
}
