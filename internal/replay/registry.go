package replay

import (
	"fmt"
	"sort"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"golang.org/x/exp/maps"
)

// Limits bound the size of the model of the replayed tasks.
type Limits struct {
	MaxTasks       int
	MaxMappings    int
	MaxDescriptors int
}

// DefaultLimits are the limits used when the configuration leaves them unset.
var DefaultLimits = Limits{
	MaxTasks:       4096,
	MaxMappings:    65530,
	MaxDescriptors: 65536,
}

func (l Limits) withDefaults() Limits {
	if l.MaxTasks <= 0 {
		l.MaxTasks = DefaultLimits.MaxTasks
	}
	if l.MaxMappings <= 0 {
		l.MaxMappings = DefaultLimits.MaxMappings
	}
	if l.MaxDescriptors <= 0 {
		l.MaxDescriptors = DefaultLimits.MaxDescriptors
	}
	return l
}

// Registry holds the live tasks of a replay session, indexed by their
// recorded tid, along with the address spaces and descriptor tables they
// share.
type Registry struct {
	limits    Limits
	tasks     map[int32]*Task
	spaces    map[SpaceID]*AddressSpace
	files     map[FilesID]*FdTable
	lastSpace SpaceID
	lastFiles FilesID
}

// NewRegistry creates an empty registry.
func NewRegistry(limits Limits) *Registry {
	return &Registry{
		limits: limits.withDefaults(),
		tasks:  make(map[int32]*Task),
		spaces: make(map[SpaceID]*AddressSpace),
		files:  make(map[FilesID]*FdTable),
	}
}

// NewSpace creates an empty address space. The space is destroyed when the
// last task using it is removed, or when a task leaves it.
func (r *Registry) NewSpace() *AddressSpace {
	r.lastSpace++
	s := newAddressSpace(r.lastSpace, r.limits.MaxMappings)
	r.spaces[s.id] = s
	return s
}

// CopySpace creates an address space holding a copy of the mappings of
// another one, as done by fork.
func (r *Registry) CopySpace(id SpaceID) (*AddressSpace, error) {
	s, ok := r.spaces[id]
	if !ok {
		return nil, fmt.Errorf("no such address space: %d", id)
	}
	r.lastSpace++
	c := s.clone(r.lastSpace)
	r.spaces[c.id] = c
	return c, nil
}

// NewFiles creates a descriptor table with the standard streams open.
func (r *Registry) NewFiles() *FdTable {
	r.lastFiles++
	t := newFdTable(r.lastFiles, r.limits.MaxDescriptors)
	t.reset([]int{0, 1, 2})
	r.files[t.id] = t
	return t
}

// CloneFiles creates a copy of a descriptor table.
func (r *Registry) CloneFiles(id FilesID) (*FdTable, error) {
	t, ok := r.files[id]
	if !ok {
		return nil, fmt.Errorf("no such descriptor table: %d", id)
	}
	r.lastFiles++
	c := t.clone(r.lastFiles)
	r.files[c.id] = c
	return c, nil
}

// AddTask registers a task. The task joins the address space share, or a new
// empty one if share is zero. It joins its descriptor table, or a new one if
// it has none.
func (r *Registry) AddTask(t *Task, share SpaceID) error {
	if _, ok := r.tasks[t.tid]; ok {
		return fmt.Errorf("task %d is already registered", t.tid)
	}
	if len(r.tasks) >= r.limits.MaxTasks {
		return &ResourceExhaustionError{Resource: "tasks", Limit: r.limits.MaxTasks}
	}

	space, files := r.spaces[share], r.files[t.files]
	if share != 0 && space == nil {
		return fmt.Errorf("no such address space: %d", share)
	}
	if t.files != 0 && files == nil {
		return fmt.Errorf("no such descriptor table: %d", t.files)
	}
	if space == nil {
		space = r.NewSpace()
	}
	if files == nil {
		files = r.NewFiles()
	}

	space.owners++
	files.owners++
	t.space = space.id
	t.files = files.id
	if t.tgid == 0 {
		t.tgid = t.tid
	}
	r.tasks[t.tid] = t
	return nil
}

// AddChild registers c, created by a clone of parent. Unless the clone flags
// share them, c gets a copy of the address space and of the descriptor table
// of parent. Nothing is left registered when it fails.
func (r *Registry) AddChild(c, parent *Task, flags uint64) error {
	var space *AddressSpace
	var files *FdTable
	share := parent.space
	c.files = parent.files
	if flags&arch.CLONE_VM == 0 {
		s, err := r.CopySpace(parent.space)
		if err != nil {
			return err
		}
		space, share = s, s.id
	}
	if flags&arch.CLONE_FILES == 0 {
		f, err := r.CloneFiles(parent.files)
		if err != nil {
			r.drop(space, nil)
			return err
		}
		files, c.files = f, f.id
	}
	if err := r.AddTask(c, share); err != nil {
		r.drop(space, files)
		c.files = 0
		return err
	}
	return nil
}

func (r *Registry) drop(space *AddressSpace, files *FdTable) {
	if space != nil {
		delete(r.spaces, space.id)
	}
	if files != nil {
		delete(r.files, files.id)
	}
}

// SetSpace moves a task to another address space, as done by exec. The old
// space is destroyed if no other task uses it.
func (r *Registry) SetSpace(t *Task, id SpaceID) error {
	space, ok := r.spaces[id]
	if !ok {
		return fmt.Errorf("no such address space: %d", id)
	}
	r.releaseSpace(t.space)
	space.owners++
	t.space = id
	return nil
}

// RemoveTask unregisters a task, destroying its address space and descriptor
// table if no other task uses them.
func (r *Registry) RemoveTask(tid int32) (*Task, bool) {
	t, ok := r.tasks[tid]
	if !ok {
		return nil, false
	}
	delete(r.tasks, tid)
	r.releaseSpace(t.space)
	if files := r.files[t.files]; files != nil {
		if files.owners--; files.owners <= 0 {
			delete(r.files, files.id)
		}
	}
	return t, true
}

func (r *Registry) releaseSpace(id SpaceID) {
	if space := r.spaces[id]; space != nil {
		if space.owners--; space.owners <= 0 {
			delete(r.spaces, id)
		}
	}
}

// Task returns the task registered with a recorded tid.
func (r *Registry) Task(tid int32) (*Task, bool) {
	t, ok := r.tasks[tid]
	return t, ok
}

// Space returns an address space.
func (r *Registry) Space(id SpaceID) (*AddressSpace, bool) {
	s, ok := r.spaces[id]
	return s, ok
}

// Files returns a descriptor table.
func (r *Registry) Files(id FilesID) (*FdTable, bool) {
	t, ok := r.files[id]
	return t, ok
}

// Len returns the number of live tasks.
func (r *Registry) Len() int { return len(r.tasks) }

// Tasks returns the live tasks ordered by recorded tid.
func (r *Registry) Tasks() []*Task {
	tasks := maps.Values(r.tasks)
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].tid < tasks[j].tid })
	return tasks
}

// Group returns the live tasks of a thread group ordered by recorded tid.
func (r *Registry) Group(tgid int32) []*Task {
	var group []*Task
	for _, t := range r.Tasks() {
		if t.tgid == tgid {
			group = append(group, t)
		}
	}
	return group
}

// Spaces returns the live address spaces ordered by id.
func (r *Registry) Spaces() []*AddressSpace {
	spaces := maps.Values(r.spaces)
	sort.Slice(spaces, func(i, j int) bool { return spaces[i].id < spaces[j].id })
	return spaces
}

// FdTables returns the live descriptor tables ordered by id.
func (r *Registry) FdTables() []*FdTable {
	tables := maps.Values(r.files)
	sort.Slice(tables, func(i, j int) bool { return tables[i].id < tables[j].id })
	return tables
}

// clear unregisters every task and returns them.
func (r *Registry) clear() []*Task {
	tasks := r.Tasks()
	maps.Clear(r.tasks)
	maps.Clear(r.spaces)
	maps.Clear(r.files)
	return tasks
}
