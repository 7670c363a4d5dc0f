package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/buffer"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"golang.org/x/exp/slices"
)

// ErrCheckpointBusy is returned when a checkpoint is requested while a task
// is creating, replacing, or terminating tasks.
var ErrCheckpointBusy = errors.New("tasks are changing, cannot checkpoint")

var memoryBufferPool buffer.Pool

// Checkpoint is the state of a session between two events.
type Checkpoint struct {
	ID uuid.UUID
	// Ordinal of the next event to replay.
	Ordinal int64
	Result  Result
	Tasks   []TaskCheckpoint
	Spaces  []SpaceCheckpoint
	Files   []FilesCheckpoint

	initialExited bool
	numErrors     int
}

// TaskCheckpoint is the state of a task.
type TaskCheckpoint struct {
	Tid       int32
	Tgid      int32
	Space     SpaceID
	Files     FilesID
	State     TaskState
	Cursor    int64
	Failed    bool
	Registers arch.Registers

	pending pendingSyscall
}

// SpaceCheckpoint is the layout and content of an address space.
type SpaceCheckpoint struct {
	ID       SpaceID
	Mappings []Mapping
	Brk      uint64
	Scratch  uint64
	Memory   []MemoryRange
}

// MemoryRange is the content of a mapping, compressed with zstd.
type MemoryRange struct {
	Start  uint64
	Length uint64
	Data   []byte
}

// FilesCheckpoint is the set of open descriptors of a descriptor table.
type FilesCheckpoint struct {
	ID          FilesID
	Descriptors []int
}

// Size returns the compressed size of the memory captured by the checkpoint.
func (cp *Checkpoint) Size() (size int64) {
	for _, s := range cp.Spaces {
		for _, r := range s.Memory {
			size += int64(len(r.Data))
		}
	}
	return size
}

func (s *Session) checkpointable() error {
	if len(s.zombies) > 0 {
		return ErrCheckpointBusy
	}
	for _, t := range s.registry.Tasks() {
		if t.exiting || t.atExitEvent || t.stashed != nil {
			return ErrCheckpointBusy
		}
		if t.failed == nil && t.state == AwaitingExit && t.pending.sys.Class == arch.Process {
			return ErrCheckpointBusy
		}
	}
	return nil
}

// Checkpoint captures the state of the session.
func (s *Session) Checkpoint(ctx context.Context) (*Checkpoint, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if err := s.checkpointable(); err != nil {
		return nil, err
	}
	cp := &Checkpoint{
		ID:            uuid.New(),
		Ordinal:       s.Position(),
		Result:        s.Result(),
		initialExited: s.initialExited,
		numErrors:     len(s.errs),
	}
	for _, t := range s.registry.Tasks() {
		regs, err := t.Registers()
		if err != nil {
			return nil, s.fail(ctx, err)
		}
		cp.Tasks = append(cp.Tasks, TaskCheckpoint{
			Tid:       t.tid,
			Tgid:      t.tgid,
			Space:     t.space,
			Files:     t.files,
			State:     t.state,
			Cursor:    t.cursor,
			Failed:    t.failed != nil,
			Registers: *regs,
			pending:   t.pending,
		})
	}
	for _, space := range s.registry.Spaces() {
		c, err := s.checkpointSpace(space)
		if err != nil {
			return nil, s.fail(ctx, err)
		}
		cp.Spaces = append(cp.Spaces, c)
	}
	for _, files := range s.registry.FdTables() {
		cp.Files = append(cp.Files, FilesCheckpoint{
			ID:          files.id,
			Descriptors: files.Descriptors(),
		})
	}
	s.log.Debug("checkpoint", "id", cp.ID, "ordinal", cp.Ordinal, "tasks", len(cp.Tasks), "size", cp.Size())
	return cp, nil
}

// captured reports whether the content of a mapping is saved in checkpoints.
func captured(m Mapping) bool {
	if m.Prot&arch.PROT_READ == 0 {
		return false
	}
	if m.Backing == trace.File && m.Flags&arch.MAP_SHARED != 0 {
		return false
	}
	switch m.Path {
	case "[vvar]", "[vdso]", "[vsyscall]":
		return false
	}
	return true
}

func (s *Session) owner(space SpaceID) *Task {
	for _, t := range s.registry.Tasks() {
		if t.space == space {
			return t
		}
	}
	return nil
}

func (s *Session) checkpointSpace(space *AddressSpace) (SpaceCheckpoint, error) {
	c := SpaceCheckpoint{
		ID:       space.id,
		Mappings: space.Mappings(),
		Brk:      space.brk,
		Scratch:  space.scratch,
	}
	t := s.owner(space.id)
	if t == nil {
		return c, fmt.Errorf("address space %d has no task", space.id)
	}
	for _, m := range c.Mappings {
		if !captured(m) {
			continue
		}
		b := memoryBufferPool.Get(int64(m.Len()))
		err := t.ReadMemory(m.Start, b.Data)
		if err == nil {
			c.Memory = append(c.Memory, MemoryRange{
				Start:  m.Start,
				Length: m.Len(),
				Data:   trace.Compress(nil, b.Data, trace.Zstd),
			})
		}
		memoryBufferPool.Put(b)
		if err != nil {
			return c, err
		}
	}
	return c, nil
}

// matches reports whether the live tasks are those of the checkpoint.
func (s *Session) matches(cp *Checkpoint) error {
	tasks := s.registry.Tasks()
	if len(tasks) != len(cp.Tasks) {
		return fmt.Errorf("%w: %d tasks, checkpoint has %d", ErrCheckpointMismatch, len(tasks), len(cp.Tasks))
	}
	for i, t := range tasks {
		c := &cp.Tasks[i]
		if t.tid != c.Tid || t.tgid != c.Tgid || t.space != c.Space || t.files != c.Files || (t.failed != nil) != c.Failed {
			return fmt.Errorf("%w: task %d", ErrCheckpointMismatch, c.Tid)
		}
	}
	spaces, files := s.registry.Spaces(), s.registry.FdTables()
	if len(spaces) != len(cp.Spaces) || len(files) != len(cp.Files) {
		return fmt.Errorf("%w: address spaces or descriptor tables differ", ErrCheckpointMismatch)
	}
	for i, space := range spaces {
		if space.id != cp.Spaces[i].ID {
			return fmt.Errorf("%w: address space %d", ErrCheckpointMismatch, cp.Spaces[i].ID)
		}
	}
	for i, table := range files {
		if table.id != cp.Files[i].ID {
			return fmt.Errorf("%w: descriptor table %d", ErrCheckpointMismatch, cp.Files[i].ID)
		}
	}
	return nil
}

// Restore brings the session back to a checkpoint taken with the same tasks.
func (s *Session) Restore(ctx context.Context, cp *Checkpoint) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := s.matches(cp); err != nil {
		return err
	}
	if err := s.checkpointable(); err != nil {
		return err
	}
	s.sched.revoke()
	if err := s.restore(ctx, cp); err != nil {
		return s.fail(ctx, err)
	}
	s.log.Debug("restored", "id", cp.ID, "ordinal", cp.Ordinal)
	return nil
}

func (s *Session) restore(ctx context.Context, cp *Checkpoint) error {
	// Tasks in a system call leave it so that every task can inject.
	for _, t := range s.registry.Tasks() {
		if t.state != AwaitingExit || t.atExitStop {
			continue
		}
		err := s.withTurn(t, func() error {
			regs, err := t.Registers()
			if err != nil {
				return err
			}
			regs.SetSyscallNo(-1)
			t.SetRegisters(regs)
			if err := syscallStop(ctx, t, s.injLog); err != nil {
				return err
			}
			t.atExitStop = true
			return nil
		})
		if err != nil {
			return err
		}
	}

	for i := range cp.Spaces {
		if err := s.restoreSpace(ctx, &cp.Spaces[i]); err != nil {
			return err
		}
	}

	for i := range cp.Tasks {
		c := &cp.Tasks[i]
		t, _ := s.registry.Task(c.Tid)
		if err := s.withTurn(t, func() error { return s.restoreTask(ctx, t, c) }); err != nil {
			return err
		}
	}

	for i := range cp.Files {
		files, _ := s.registry.Files(cp.Files[i].ID)
		files.reset(cp.Files[i].Descriptors)
	}

	s.sched.queue.SeekOrdinal(cp.Ordinal)
	s.sched.consumed = cp.Result.Consumed
	s.sched.skipped = cp.Result.Skipped
	s.result.Status = cp.Result.Status
	s.result.ExitStatus = cp.Result.ExitStatus
	s.initialExited = cp.initialExited
	s.errs = s.errs[:min(cp.numErrors, len(s.errs))]
	return nil
}

func (s *Session) withTurn(t *Task, fn func() error) error {
	turn := t.turn
	t.turn = true
	defer func() { t.turn = turn }()
	return fn()
}

func sameMapping(a, b Mapping) bool {
	return a.Start == b.Start && a.End == b.End && a.Prot == b.Prot && a.Flags == b.Flags &&
		a.Offset == b.Offset && a.Backing == b.Backing && a.Path == b.Path
}

func containsMapping(mappings []Mapping, m Mapping) bool {
	return slices.IndexFunc(mappings, func(x Mapping) bool { return sameMapping(x, m) }) >= 0
}

// restored reports whether the layout of a mapping is restored by unmapping
// and mapping it again. The heap follows the program break and the scratch
// page is handled separately.
func restored(m Mapping) bool {
	return m.Path != scratchPath && m.Path != "[heap]" && !strings.HasPrefix(m.Path, "[v")
}

func (s *Session) restoreSpace(ctx context.Context, c *SpaceCheckpoint) error {
	space, _ := s.registry.Space(c.ID)
	t := s.owner(c.ID)
	if t == nil {
		return fmt.Errorf("address space %d has no task", c.ID)
	}
	return s.withTurn(t, func() error {
		inj, err := s.injector(t)
		if err != nil {
			return err
		}
		if c.Brk != 0 && c.Brk != space.brk {
			if _, err := inj.Brk(ctx, c.Brk); err != nil {
				return err
			}
		}
		for _, m := range space.Mappings() {
			if restored(m) && !containsMapping(c.Mappings, m) {
				if err := inj.Munmap(ctx, m.Start, m.Len()); err != nil {
					return err
				}
			}
		}
		for _, m := range c.Mappings {
			if restored(m) && !containsMapping(space.mappings, m) {
				if err := inj.Map(ctx, m); err != nil {
					return err
				}
			}
		}
		if c.Scratch != 0 {
			if _, err := inj.Scratch(ctx); err != nil {
				return err
			}
		}

		for _, r := range c.Memory {
			if err := restoreMemory(t, r); err != nil {
				return err
			}
		}

		if c.Scratch == 0 && space.scratch != 0 {
			if err := inj.Munmap(ctx, space.scratch, arch.PageSize); err != nil {
				return err
			}
		}
		space.mappings = slices.Clone(c.Mappings)
		space.brk = c.Brk
		space.scratch = c.Scratch
		return nil
	})
}

func restoreMemory(t *Task, r MemoryRange) error {
	b := memoryBufferPool.Get(int64(r.Length))
	defer memoryBufferPool.Put(b)
	data, err := trace.Decompress(b.Data, r.Data, trace.Zstd)
	if err != nil {
		return fmt.Errorf("memory at %#x: %w", r.Start, err)
	}
	return t.WriteMemory(r.Start, data)
}

func (s *Session) restoreTask(ctx context.Context, t *Task, c *TaskCheckpoint) error {
	if c.State == AwaitingExit {
		// Executing the system call instruction again brings the task back to
		// the entry stop of the checkpoint.
		regs := c.Registers
		regs.SetIP(regs.IP() - uint64(len(arch.SyscallInsn)))
		regs.Rax = regs.OrigRax
		t.SetRegisters(&regs)
		if err := syscallStop(ctx, t, s.injLog); err != nil {
			return err
		}
	}
	t.SetRegisters(&c.Registers)
	t.state = c.State
	t.pending = c.pending
	t.cursor = c.Cursor
	t.atExitStop = false
	return nil
}
