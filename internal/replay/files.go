package replay

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// FilesID identifies a descriptor table.
type FilesID uint64

// FdTable models the file descriptors open in a set of tasks. Only the
// numbers are tracked, the replay engine never performs I/O on them.
type FdTable struct {
	id     FilesID
	owners int
	limit  int
	fds    map[int]struct{}
}

func newFdTable(id FilesID, limit int) *FdTable {
	return &FdTable{id: id, limit: limit, fds: make(map[int]struct{})}
}

// ID returns the identifier of the table.
func (t *FdTable) ID() FilesID { return t.id }

// Owners returns the number of tasks sharing the table.
func (t *FdTable) Owners() int { return t.owners }

// Open records that fd was opened.
func (t *FdTable) Open(fd int) error {
	if _, ok := t.fds[fd]; !ok && t.limit > 0 && len(t.fds) >= t.limit {
		return &ResourceExhaustionError{Resource: "file descriptors", Limit: t.limit}
	}
	t.fds[fd] = struct{}{}
	return nil
}

// Close records that fd was closed, returning false if it was not open.
func (t *FdTable) Close(fd int) bool {
	_, ok := t.fds[fd]
	delete(t.fds, fd)
	return ok
}

// IsOpen reports whether fd is open.
func (t *FdTable) IsOpen(fd int) bool {
	_, ok := t.fds[fd]
	return ok
}

// Descriptors returns the open descriptors in increasing order.
func (t *FdTable) Descriptors() []int {
	fds := maps.Keys(t.fds)
	slices.Sort(fds)
	return fds
}

// Len returns the number of open descriptors.
func (t *FdTable) Len() int { return len(t.fds) }

func (t *FdTable) clone(id FilesID) *FdTable {
	return &FdTable{id: id, limit: t.limit, fds: maps.Clone(t.fds)}
}

func (t *FdTable) reset(fds []int) {
	maps.Clear(t.fds)
	for _, fd := range fds {
		t.fds[fd] = struct{}{}
	}
}
