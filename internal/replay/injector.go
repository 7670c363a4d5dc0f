package replay

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"github.com/stealthrocket/tracecraft/internal/tracee"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sys/unix"
)

var le = binary.LittleEndian

// ScratchAddress is where the injector maps the page it uses to pass
// arguments to system calls.
const ScratchAddress = 0x70000000

// scratchPath names the scratch page in the address space model.
const scratchPath = "[scratch]"

// maxRestarts bounds the number of times an interrupted injected system call
// is issued again.
const maxRestarts = 16

var errInjectAtEntry = errors.Base("cannot inject a system call at a system call entry stop")

// SyscallError is returned when an injected system call fails.
type SyscallError struct {
	Name  string
	Errno unix.Errno
}

func (e *SyscallError) Error() string { return fmt.Sprintf("%s: %s", e.Name, e.Errno) }

func (e *SyscallError) Unwrap() error { return e.Errno }

// Injector makes a stopped task execute system calls on behalf of the replay
// engine. The registers and the code of the task are restored after each
// call.
type Injector struct {
	task     *Task
	space    *AddressSpace
	syscalls *arch.Table
	log      *slog.Logger
}

func (s *Session) injector(t *Task) (*Injector, error) {
	space, err := s.space(t)
	if err != nil {
		return nil, err
	}
	return &Injector{task: t, space: space, syscalls: s.syscalls, log: s.injLog}, nil
}

func (inj *Injector) fail(err error, no int) error {
	errE := errors.WithMessage(err, "inject "+inj.syscalls.Name(no))
	errors.Details(errE)["tid"] = inj.task.tid
	errors.Details(errE)["real_tid"] = inj.task.RealTid()
	return errE
}

// Syscall executes a system call in the task and returns its raw result.
// Interrupted calls are issued again.
func (inj *Injector) Syscall(ctx context.Context, no int, args ...uint64) (int64, error) {
	t := inj.task
	if t.state == AwaitingExit && !t.atExitStop {
		return 0, inj.fail(errInjectAtEntry, no)
	}
	regs, err := t.Registers()
	if err != nil {
		return 0, inj.fail(err, no)
	}
	saved := *regs

	addr, restoreCode, err := inj.syscallInstruction(saved.IP())
	if err != nil {
		return 0, inj.fail(err, no)
	}

	var result int64
	for attempt := 0; ; attempt++ {
		r := saved
		r.SetIP(addr)
		r.SetSyscall(no, args...)
		t.SetRegisters(&r)
		if err := syscallStop(ctx, t, inj.log); err != nil { // entry
			return 0, inj.fail(err, no)
		}
		if err := syscallStop(ctx, t, inj.log); err != nil { // exit
			return 0, inj.fail(err, no)
		}
		regs, err := t.Registers()
		if err != nil {
			return 0, inj.fail(err, no)
		}
		result = regs.SyscallResult()
		if !arch.Restartable(result) || attempt >= maxRestarts {
			break
		}
		inj.log.Debug("restarting interrupted system call", "tid", t.tid, "syscall", inj.syscalls.Name(no))
	}

	if err := restoreCode(); err != nil {
		return 0, inj.fail(err, no)
	}
	t.SetRegisters(&saved)
	t.atExitStop = true
	inj.log.Debug("injected", "tid", t.tid, "syscall", inj.syscalls.Name(no), "result", result)
	return result, nil
}

// syscallInstruction returns the address of a syscall instruction to execute
// from. The instruction preceding ip is used when it is a syscall, otherwise
// one is written at ip and restoreCode puts back the original bytes.
func (inj *Injector) syscallInstruction(ip uint64) (addr uint64, restoreCode func() error, err error) {
	t := inj.task
	var insn [2]byte
	if ip >= 2 {
		if t.ReadMemory(ip-2, insn[:]) == nil && insn == arch.SyscallInsn {
			return ip - 2, func() error { return nil }, nil
		}
	}
	var saved [2]byte
	if err := t.ReadMemory(ip, saved[:]); err != nil {
		return 0, nil, err
	}
	if err := t.WriteMemory(ip, arch.SyscallInsn[:]); err != nil {
		return 0, nil, err
	}
	return ip, func() error { return t.WriteMemory(ip, saved[:]) }, nil
}

// syscallStop resumes a task to its next syscall stop. Signals are
// suppressed.
func syscallStop(ctx context.Context, t *Task, log *slog.Logger) error {
	for {
		if err := t.Resume(tracee.ResumeSyscall, 0); err != nil {
			return err
		}
		stop, err := t.Wait(ctx)
		if err != nil {
			return err
		}
		switch stop.Kind {
		case tracee.SyscallStop:
			return nil
		case tracee.SignalStop:
			log.Debug("suppressed signal", "tid", t.tid, "signal", arch.SignalName(stop.Signal))
		default:
			return errors.WithDetails(tracee.Errorf(t.RealTid(), "resume to syscall stop", errors.Base("unexpected stop")), "stop", stop.String())
		}
	}
}

func (inj *Injector) call(ctx context.Context, no int, args ...uint64) (int64, error) {
	result, err := inj.Syscall(ctx, no, args...)
	if err != nil {
		return 0, err
	}
	if arch.IsErrno(result) {
		return result, &SyscallError{Name: inj.syscalls.Name(no), Errno: unix.Errno(-result)}
	}
	return result, nil
}

// Mmap maps memory in the task.
func (inj *Injector) Mmap(ctx context.Context, addr, length uint64, prot, flags uint32, fd int, offset int64) (uint64, error) {
	r, err := inj.call(ctx, arch.SysMmap, addr, length, uint64(prot), uint64(flags), uint64(int64(fd)), uint64(offset))
	return uint64(r), err
}

// Munmap unmaps memory of the task.
func (inj *Injector) Munmap(ctx context.Context, addr, length uint64) error {
	_, err := inj.call(ctx, arch.SysMunmap, addr, length)
	return err
}

// Mprotect changes the protection of memory of the task.
func (inj *Injector) Mprotect(ctx context.Context, addr, length uint64, prot uint32) error {
	_, err := inj.call(ctx, arch.SysMprotect, addr, length, uint64(prot))
	return err
}

// Openat opens a file in the task, relative to its working directory.
func (inj *Injector) Openat(ctx context.Context, path string, flags int) (int, error) {
	if len(path)+1 > arch.PageSize {
		return -1, fmt.Errorf("path is too long to be injected: %q", path)
	}
	scratch, err := inj.Scratch(ctx)
	if err != nil {
		return -1, err
	}
	if err := inj.task.WriteMemory(scratch, append([]byte(path), 0)); err != nil {
		return -1, err
	}
	fd, err := inj.call(ctx, arch.SysOpenat, arch.Word(arch.AT_FDCWD), scratch, uint64(flags), 0)
	return int(fd), err
}

// Close closes a descriptor of the task.
func (inj *Injector) Close(ctx context.Context, fd int) error {
	_, err := inj.call(ctx, arch.SysClose, uint64(int64(fd)))
	return err
}

// Brk moves the program break of the task.
func (inj *Injector) Brk(ctx context.Context, brk uint64) (uint64, error) {
	r, err := inj.call(ctx, arch.SysBrk, brk)
	return uint64(r), err
}

// Tgkill sends a signal to a thread.
func (inj *Injector) Tgkill(ctx context.Context, tgid, tid, sig int) error {
	_, err := inj.call(ctx, arch.SysTgkill, uint64(tgid), uint64(tid), uint64(sig))
	return err
}

// ReadMemory reads memory of the task.
func (inj *Injector) ReadMemory(addr uint64, b []byte) error { return inj.task.ReadMemory(addr, b) }

// WriteMemory writes memory of the task.
func (inj *Injector) WriteMemory(addr uint64, b []byte) error { return inj.task.WriteMemory(addr, b) }

// Scratch returns the address of the scratch page of the address space of the
// task, mapping it on first use.
func (inj *Injector) Scratch(ctx context.Context) (uint64, error) {
	if inj.space.scratch != 0 {
		return inj.space.scratch, nil
	}
	const prot = arch.PROT_READ | arch.PROT_WRITE
	const flags = arch.MAP_PRIVATE | arch.MAP_ANONYMOUS | arch.MAP_FIXED_NOREPLACE
	addr, err := inj.Mmap(ctx, ScratchAddress, arch.PageSize, prot, flags, -1, 0)
	if err != nil {
		return 0, err
	}
	if addr != ScratchAddress {
		inj.Munmap(ctx, addr, arch.PageSize)
		return 0, fmt.Errorf("scratch page mapped at %#x instead of %#x", addr, ScratchAddress)
	}
	err = inj.space.Map(Mapping{
		Start: addr,
		End:   addr + arch.PageSize,
		Prot:  prot,
		Flags: arch.MAP_PRIVATE | arch.MAP_ANONYMOUS,
		Path:  scratchPath,
	})
	if err != nil {
		return 0, err
	}
	inj.space.scratch = addr
	inj.log.Debug("mapped scratch page", "tid", inj.task.tid, "addr", fmt.Sprintf("%#x", addr))
	return addr, nil
}

// MapFile maps a file mapping at its recorded address.
func (inj *Injector) MapFile(ctx context.Context, m Mapping) error {
	flags := arch.O_RDONLY
	if m.Flags&arch.MAP_SHARED != 0 && m.Prot&arch.PROT_WRITE != 0 {
		flags = arch.O_RDWR
	}
	fd, err := inj.Openat(ctx, m.Path, flags|arch.O_CLOEXEC)
	if err != nil {
		return err
	}
	mapFlags := m.Flags&^(arch.MAP_FIXED_NOREPLACE) | arch.MAP_FIXED
	addr, err := inj.Mmap(ctx, m.Start, m.Len(), m.Prot, mapFlags, fd, m.Offset)
	if closeErr := inj.Close(ctx, fd); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if addr != m.Start {
		return fmt.Errorf("%s mapped at %#x instead of %#x", m.Path, addr, m.Start)
	}
	return nil
}

// anonymousFlags returns the flags of mmap creating zero filled memory in
// place of m. Shared mappings stay shared so that the memory is visible to
// forked processes.
func anonymousFlags(m Mapping) uint32 {
	flags := uint32(arch.MAP_ANONYMOUS|arch.MAP_FIXED) | m.Flags&arch.MAP_GROWSDOWN
	if m.Flags&arch.MAP_SHARED != 0 {
		return flags | arch.MAP_SHARED
	}
	return flags | arch.MAP_PRIVATE
}

// MapAnonymous maps zero filled memory at a fixed address.
func (inj *Injector) MapAnonymous(ctx context.Context, m Mapping) error {
	addr, err := inj.Mmap(ctx, m.Start, m.Len(), m.Prot, anonymousFlags(m), -1, 0)
	if err != nil {
		return err
	}
	if addr != m.Start {
		return fmt.Errorf("anonymous mapping at %#x instead of %#x", addr, m.Start)
	}
	return nil
}

// Map creates a mapping of the model in the task.
func (inj *Injector) Map(ctx context.Context, m Mapping) error {
	if m.Backing == trace.File {
		return inj.MapFile(ctx, m)
	}
	return inj.MapAnonymous(ctx, m)
}
