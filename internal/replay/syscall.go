package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/davecgh/go-spew/spew"
	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"github.com/stealthrocket/tracecraft/internal/tracee"
	"golang.org/x/sys/unix"
)

// exitAction selects how the exit of a system call is replayed, when it
// differs from the default behavior of the system call class.
type exitAction int

const (
	exitDefault exitAction = iota
	exitEmulate
	exitMapAnonymous
	exitMapFile
	exitRemap
	exitClone
	exitCloned
	exitExec
	exitExecDone
	exitTerminate
)

// pendingSyscall is the system call a task is in.
type pendingSyscall struct {
	sys     arch.Syscall
	ordinal int64
	args    [6]uint64
	action  exitAction
	mapping Mapping
}

func (s *Session) syscallName(no int) string { return s.syscalls.Name(no) }

func isSyscallStop(stop tracee.Stop) bool { return stop.Kind == tracee.SyscallStop }

func isSignalStop(sig int) func(tracee.Stop) bool {
	return func(stop tracee.Stop) bool {
		return stop.Kind == tracee.SignalStop && stop.Signal == sig
	}
}

func isEventStop(events ...tracee.Event) func(tracee.Stop) bool {
	return func(stop tracee.Stop) bool {
		for _, event := range events {
			if stop.Is(event) {
				return true
			}
		}
		return false
	}
}

// resumeTo resumes the task until it reaches a stop accepted by want. The
// first resume delivers sig. Signals that the task did not raise itself are
// suppressed, they were not part of the recording.
func (s *Session) resumeTo(ctx context.Context, t *Task, e *trace.Event, mode tracee.ResumeMode, sig int, expected string, want func(tracee.Stop) bool) (tracee.Stop, error) {
	for {
		stop, err := t.advance(ctx, mode, sig)
		if err != nil {
			return stop, err
		}
		if want(stop) {
			return stop, nil
		}
		if stop.Kind == tracee.SignalStop && !arch.Synchronous(stop.Signal) {
			s.log.Debug("suppressed signal", "tid", t.tid, "signal", arch.SignalName(stop.Signal))
			sig = 0
			continue
		}
		return stop, divergence(e, expected, stop.String())
	}
}

func (s *Session) syscallEntry(ctx context.Context, t *Task, e *trace.Event) error {
	name := s.syscallName(e.Syscall)
	if t.state != AwaitingEntry {
		return divergence(e, "entry of "+name, "task in "+t.pending.sys.Name)
	}
	if _, err := s.resumeTo(ctx, t, e, tracee.ResumeSyscall, 0, "entry of "+name, isSyscallStop); err != nil {
		return err
	}
	regs, err := t.Registers()
	if err != nil {
		return err
	}
	if no := regs.SyscallNo(); no != e.Syscall {
		return divergence(e, "entry of "+name, "entry of "+s.syscallName(no))
	}
	if s.cfg.Strict && e.Registers != nil {
		for i := 0; i < 6; i++ {
			if got, want := regs.Arg(i), e.Registers.Arg(i); got != want {
				if s.sysLog.Enabled(ctx, slog.LevelDebug) {
					s.sysLog.Debug("argument mismatch", "tid", t.tid, "ordinal", e.Ordinal,
						"recorded", spew.Sdump(e.Registers), "observed", spew.Sdump(regs))
				}
				return divergence(e,
					fmt.Sprintf("%s with %s=%#x", name, arch.ArgName(i), want),
					fmt.Sprintf("%s=%#x", arch.ArgName(i), got))
			}
		}
	}

	sys := s.syscalls.Lookup(e.Syscall)
	t.state = AwaitingExit
	t.pending = pendingSyscall{sys: sys, ordinal: e.Ordinal}
	for i := range t.pending.args {
		t.pending.args[i] = regs.Arg(i)
	}
	s.sysLog.Debug("entry", "tid", t.tid, "ordinal", e.Ordinal, "syscall", sys.Name, "class", sys.Class)

	switch sys.Class {
	case arch.Emulate:
		return s.emulate(t)
	case arch.Execute:
		return nil
	case arch.Memory:
		return s.memoryEntry(ctx, t, e)
	case arch.Process:
		return s.processEntry(ctx, t, e)
	default:
		return unsupported(e, sys)
	}
}

// emulate prevents the kernel from executing the system call the task is
// entering.
func (s *Session) emulate(t *Task) error {
	regs, err := t.Registers()
	if err != nil {
		return err
	}
	regs.SetSyscallNo(-1)
	t.SetRegisters(regs)
	t.pending.action = exitEmulate
	return nil
}

func (s *Session) syscallExit(ctx context.Context, t *Task, e *trace.Event) error {
	p := &t.pending
	name := s.syscallName(e.Syscall)
	if t.state != AwaitingExit || p.sys.Number != e.Syscall {
		return divergence(e, "exit of "+name, "task "+t.state.String())
	}
	switch p.action {
	case exitClone:
		return divergence(e, "clone event before the exit of "+name, "exit")
	case exitExec:
		return divergence(e, "exec event before the exit of "+name, "exit")
	}
	if !t.atExitStop {
		if _, err := s.resumeTo(ctx, t, e, tracee.ResumeSyscall, 0, "exit of "+name, isSyscallStop); err != nil {
			return err
		}
		t.atExitStop = true
	}
	regs, err := t.Registers()
	if err != nil {
		return err
	}
	observed := regs.SyscallResult()

	switch p.action {
	case exitEmulate:
	case exitMapAnonymous:
		err = s.mapAnonymousExit(ctx, t, e, observed)
	case exitMapFile:
		err = s.mapFileExit(ctx, t, e)
	case exitRemap:
		err = s.remapExit(t, e, observed)
	case exitCloned:
		if arch.IsErrno(observed) {
			err = divergence(e, fmt.Sprintf("%s = %d", name, e.Result), fmt.Sprintf("%s = %d", name, observed))
		}
	case exitExecDone:
		if observed != 0 {
			err = divergence(e, name+" = 0", fmt.Sprintf("%s = %d", name, observed))
		}
	default:
		if p.sys.Flags.Has(arch.Verify) && observed != e.Result {
			err = divergence(e, fmt.Sprintf("%s = %d", name, e.Result), fmt.Sprintf("%s = %d", name, observed))
		} else if p.sys.Class == arch.Memory && !arch.IsErrno(observed) {
			err = s.updateSpace(t, p, observed)
		}
	}
	if err != nil {
		return err
	}

	// Injecting system calls may have reloaded the registers.
	if regs, err = t.Registers(); err != nil {
		return err
	}
	switch {
	case p.action == exitEmulate && e.Registers != nil:
		t.SetRegisters(e.Registers)
	case p.action == exitEmulate || p.action == exitMapFile:
		regs.SetSyscallNo(e.Syscall)
		regs.SetSyscallResult(e.Result)
		t.SetRegisters(regs)
	default:
		regs.SetSyscallResult(e.Result)
		t.SetRegisters(regs)
	}

	if err := t.applyWrites(s.reader, e.Writes); err != nil {
		return err
	}
	if err := s.trackDescriptors(t, p, e.Result); err != nil {
		return err
	}
	if err := s.echo(t, p, e.Result); err != nil {
		return err
	}
	s.sysLog.Debug("exit", "tid", t.tid, "ordinal", e.Ordinal, "syscall", name, "result", e.Result)
	t.state = AwaitingEntry
	t.pending = pendingSyscall{}
	return nil
}

// trackDescriptors updates the descriptor table of the task after a system
// call that opened or closed descriptors.
func (s *Session) trackDescriptors(t *Task, p *pendingSyscall, result int64) error {
	flags := p.sys.Flags
	if arch.IsErrno(result) || flags&(arch.ReturnsFD|arch.ReturnsFDPair|arch.ClosesFD) == 0 {
		return nil
	}
	files, ok := s.registry.Files(t.files)
	if !ok {
		return nil
	}
	switch {
	case flags.Has(arch.ReturnsFD):
		return files.Open(int(result))
	case flags.Has(arch.ReturnsFDPair):
		addr := p.args[0]
		if p.sys.Number == arch.SysSocketpair {
			addr = p.args[3]
		}
		var b [8]byte
		if err := t.ReadMemory(addr, b[:]); err != nil {
			return err
		}
		if err := files.Open(int(int32(le.Uint32(b[:4])))); err != nil {
			return err
		}
		return files.Open(int(int32(le.Uint32(b[4:]))))
	case flags.Has(arch.ClosesFD):
		files.Close(int(int32(p.args[0])))
	}
	return nil
}

// echo copies the output of system calls writing to the standard output or
// error of the task to the configured writers.
func (s *Session) echo(t *Task, p *pendingSyscall, result int64) error {
	if !p.sys.Flags.Has(arch.Output) || result <= 0 {
		return nil
	}
	w := s.cfg.Stdout
	switch int32(p.args[0]) {
	case 1:
	case 2:
		w = s.cfg.Stderr
	default:
		return nil
	}
	if w == nil {
		return nil
	}
	var b []byte
	switch p.sys.Number {
	case arch.SysWrite, arch.SysPwrite64:
		b = make([]byte, min(uint64(result), p.args[2]))
		if err := t.ReadMemory(p.args[1], b); err != nil {
			return err
		}
	case arch.SysWritev:
		var err error
		if b, err = gather(t, p.args[1], int(p.args[2]), int(result)); err != nil {
			return err
		}
	default:
		return nil
	}
	_, err := w.Write(b)
	return err
}

// gather reads the first n bytes of the buffers of an iovec array.
func gather(t *Task, iov uint64, count, n int) ([]byte, error) {
	b := make([]byte, 0, n)
	var vec [16]byte
	for i := 0; i < count && len(b) < n; i++ {
		if err := t.ReadMemory(iov+uint64(16*i), vec[:]); err != nil {
			return nil, err
		}
		base, size := le.Uint64(vec[:8]), le.Uint64(vec[8:])
		size = min(size, uint64(n-len(b)))
		chunk := make([]byte, size)
		if err := t.ReadMemory(base, chunk); err != nil {
			return nil, err
		}
		b = append(b, chunk...)
	}
	return b, nil
}

func (s *Session) space(t *Task) (*AddressSpace, error) {
	space, ok := s.registry.Space(t.space)
	if !ok {
		return nil, fmt.Errorf("%s has no address space", t)
	}
	return space, nil
}

// model applies the result of a change to the model of an address space.
// Ranges that the model rejects were accepted by the kernel, they are logged
// and ignored.
func (s *Session) model(t *Task, err error) error {
	if errors.Is(err, errInvalidRange) {
		s.sysLog.Warn("address space model out of sync", "tid", t.tid, "error", err)
		return nil
	}
	return err
}

func (s *Session) updateSpace(t *Task, p *pendingSyscall, result int64) error {
	space, err := s.space(t)
	if err != nil {
		return err
	}
	switch p.sys.Number {
	case arch.SysMunmap:
		err = space.Unmap(p.args[0], p.args[1])
	case arch.SysMprotect, arch.SysPkeyMprotect:
		err = space.Protect(p.args[0], p.args[1], uint32(p.args[2]))
	case arch.SysBrk:
		err = space.SetBrk(uint64(result))
	}
	return s.model(t, err)
}

func (s *Session) memoryEntry(ctx context.Context, t *Task, e *trace.Event) error {
	switch e.Syscall {
	case arch.SysMmap:
		return s.mmapEntry(t, e)
	case arch.SysMremap:
		return s.mremapEntry(t, e)
	}
	return nil
}

// lookaheadExit returns the exit event of the system call that a task is
// entering, nil if the trace does not have it.
func (s *Session) lookaheadExit(t *Task, e *trace.Event) (*trace.Event, error) {
	next, err := s.sched.queue.NextFor(t.tid)
	if err != nil || next == nil {
		return nil, err
	}
	if next.Kind != trace.SyscallExit || next.Syscall != e.Syscall {
		return nil, nil
	}
	return next, nil
}

func (s *Session) mmapEntry(t *Task, e *trace.Event) error {
	exit, err := s.lookaheadExit(t, e)
	if err != nil {
		return err
	}
	if exit == nil || arch.IsErrno(exit.Result) {
		return s.emulate(t)
	}
	m, err := recordedMapping(exit, &t.pending.args)
	if err != nil {
		return err
	}
	if m.Backing == trace.File {
		if err := s.emulate(t); err != nil {
			return err
		}
		t.pending.action = exitMapFile
		t.pending.mapping = m
		return nil
	}
	regs, err := t.Registers()
	if err != nil {
		return err
	}
	regs.SetArg(0, m.Start)
	regs.SetArg(3, uint64(anonymousFlags(m)))
	regs.SetArg(4, ^uint64(0))
	regs.SetArg(5, 0)
	t.SetRegisters(regs)
	t.pending.action = exitMapAnonymous
	t.pending.mapping = m
	return nil
}

// recordedMapping returns the mapping created by a recorded call to mmap.
func recordedMapping(exit *trace.Event, args *[6]uint64) (Mapping, error) {
	addr := uint64(exit.Result)
	if len(exit.Mappings) > 0 {
		m := NewMapping(&exit.Mappings[0])
		if m.Start != addr {
			return m, divergence(exit, fmt.Sprintf("mapping at %#x", addr), fmt.Sprintf("mapping recorded at %#x", m.Start))
		}
		return m, nil
	}
	if args[3]&arch.MAP_ANONYMOUS == 0 {
		return Mapping{}, divergence(exit, "recorded mapping of file", "no mapping")
	}
	return Mapping{
		Start:   addr,
		End:     addr + arch.PageRoundUp(args[1]),
		Prot:    uint32(args[2]),
		Flags:   uint32(args[3]),
		Backing: trace.Zero,
	}, nil
}

func (s *Session) mapAnonymousExit(ctx context.Context, t *Task, e *trace.Event, observed int64) error {
	m := t.pending.mapping
	if uint64(observed) != m.Start {
		return divergence(e, fmt.Sprintf("mapping at %#x", m.Start), fmt.Sprintf("mmap = %#x", observed))
	}
	return s.populate(ctx, t, e, []Mapping{m})
}

func (s *Session) mapFileExit(ctx context.Context, t *Task, e *trace.Event) error {
	m := t.pending.mapping
	inj, err := s.injector(t)
	if err != nil {
		return err
	}
	if err := inj.MapFile(ctx, m); err != nil {
		var syscallError *SyscallError
		if errors.As(err, &syscallError) {
			return divergence(e, "mapping of "+m.Path, err.Error())
		}
		return err
	}
	space, err := s.space(t)
	if err != nil {
		return err
	}
	return s.model(t, space.Map(m))
}

// populate adds mappings to the address space of a task, writing the content
// of snapshot mappings. A snapshot that the task has no memory for is a
// divergence from the event e.
func (s *Session) populate(ctx context.Context, t *Task, e *trace.Event, mappings []Mapping) error {
	space, err := s.space(t)
	if err != nil {
		return err
	}
	for _, m := range mappings {
		if err := s.model(t, space.Map(m)); err != nil {
			return err
		}
		if m.Backing != trace.Snapshot || m.Data.Length == 0 {
			continue
		}
		b, err := s.reader.ReadBlob(m.Data)
		if err != nil {
			return err
		}
		if err := s.writeSnapshot(ctx, t, m, b); err != nil {
			if errors.Is(err, unix.ESRCH) {
				return err
			}
			return divergence(e, fmt.Sprintf("mapping at %#x-%#x", m.Start, m.End), err.Error())
		}
	}
	return nil
}

// writeSnapshot writes the content of a snapshot mapping. When the memory is
// missing and the task can run injected system calls, the mapping is created
// first.
func (s *Session) writeSnapshot(ctx context.Context, t *Task, m Mapping, b []byte) error {
	err := t.WriteMemory(m.Start, b)
	if err == nil || errors.Is(err, unix.ESRCH) || t.state == AwaitingExit && !t.atExitStop {
		return err
	}
	inj, injErr := s.injector(t)
	if injErr != nil {
		return err
	}
	s.sysLog.Debug("mapping missing snapshot", "tid", t.tid, "start", fmt.Sprintf("%#x", m.Start), "error", err)
	return s.withTurn(t, func() error {
		if err := inj.MapAnonymous(ctx, m); err != nil {
			return err
		}
		return t.WriteMemory(m.Start, b)
	})
}

func (s *Session) mremapEntry(t *Task, e *trace.Event) error {
	exit, err := s.lookaheadExit(t, e)
	if err != nil {
		return err
	}
	if exit == nil || arch.IsErrno(exit.Result) {
		return s.emulate(t)
	}
	if addr := uint64(exit.Result); addr != t.pending.args[0] {
		regs, err := t.Registers()
		if err != nil {
			return err
		}
		regs.SetArg(3, t.pending.args[3]|arch.MREMAP_MAYMOVE|arch.MREMAP_FIXED)
		regs.SetArg(4, addr)
		t.SetRegisters(regs)
	}
	t.pending.action = exitRemap
	return nil
}

func (s *Session) remapExit(t *Task, e *trace.Event, observed int64) error {
	if observed != e.Result {
		return divergence(e, fmt.Sprintf("mremap = %#x", e.Result), fmt.Sprintf("mremap = %#x", observed))
	}
	space, err := s.space(t)
	if err != nil {
		return err
	}
	args := &t.pending.args
	return s.model(t, space.Remap(args[0], args[1], uint64(observed), args[2]))
}

func (s *Session) processEntry(ctx context.Context, t *Task, e *trace.Event) error {
	switch e.Syscall {
	case arch.SysClone, arch.SysFork, arch.SysVfork:
		return s.cloneEntry(t, e)
	case arch.SysExecve, arch.SysExecveat:
		return s.execEntry(t, e)
	case arch.SysExit, arch.SysExitGroup:
		return s.exitEntry(ctx, t, e)
	}
	return unsupported(e, t.pending.sys)
}

// cloneFlagsMask clears the flags that would let the child escape tracing or
// block the parent.
const cloneFlagsMask = ^uint64(arch.CLONE_UNTRACED | arch.CLONE_VFORK | arch.CLONE_NEWMASK)

func (s *Session) cloneEntry(t *Task, e *trace.Event) error {
	next, err := s.sched.queue.NextFor(t.tid)
	if err != nil {
		return err
	}
	if next == nil || next.Kind != trace.Clone {
		return s.emulate(t)
	}
	regs, err := t.Registers()
	if err != nil {
		return err
	}
	switch e.Syscall {
	case arch.SysClone:
		regs.SetArg(0, regs.Arg(0)&cloneFlagsMask)
	case arch.SysVfork:
		regs.SetSyscallNo(arch.SysClone)
		regs.SetArg(0, arch.CLONE_VM|arch.SIGCHLD)
		for i := 1; i < 6; i++ {
			regs.SetArg(i, 0)
		}
	}
	t.SetRegisters(regs)
	t.pending.action = exitClone
	return nil
}

func (s *Session) cloneEvent(ctx context.Context, t *Task, e *trace.Event) error {
	if t.state != AwaitingExit || t.pending.action != exitClone {
		return divergence(e, "clone event in a call to clone", "task "+t.state.String())
	}
	_, err := s.resumeTo(ctx, t, e, tracee.ResumeSyscall, 0, "clone event",
		isEventStop(tracee.EventClone, tracee.EventFork, tracee.EventVfork))
	if err != nil {
		return err
	}
	msg, err := t.tracee.EventMsg()
	if err != nil {
		return err
	}
	child, err := s.host.Adopt(int(msg))
	if err != nil {
		return err
	}
	c := s.newTask(e.NewTid, child)
	// Children attached automatically start with a SIGSTOP.
	for {
		stop, err := c.Wait(ctx)
		if err != nil {
			return err
		}
		if isSignalStop(arch.SIGSTOP)(stop) {
			break
		}
		if stop.Terminated() {
			return divergence(e, "new task", stop.String())
		}
		if err := child.Resume(tracee.ResumeSyscall, 0); err != nil {
			return err
		}
	}

	flags := e.CloneFlags
	c.tgid = e.NewTid
	if flags&arch.CLONE_THREAD != 0 {
		c.tgid = t.tgid
	}
	if err := s.registry.AddChild(c, t, flags); err != nil {
		c.tracee.Kill()
		return err
	}
	s.sysLog.Debug("clone", "tid", t.tid, "child", c.tid, "real", c.RealTid(), "flags", fmt.Sprintf("%#x", flags))
	t.pending.action = exitCloned
	return nil
}

func (s *Session) execEntry(t *Task, e *trace.Event) error {
	next, err := s.sched.queue.NextFor(t.tid)
	if err != nil {
		return err
	}
	if next == nil || next.Kind != trace.Exec {
		return s.emulate(t)
	}
	if n := len(s.registry.Group(t.tgid)); n > 1 {
		return divergence(e, "exec in a single threaded process", fmt.Sprintf("%d threads", n))
	}
	t.pending.action = exitExec
	return nil
}

func (s *Session) execEvent(ctx context.Context, t *Task, e *trace.Event) error {
	if t.state != AwaitingExit || t.pending.action != exitExec {
		return divergence(e, "exec event in a call to execve", "task "+t.state.String())
	}
	_, err := s.resumeTo(ctx, t, e, tracee.ResumeSyscall, 0, "exec event", isEventStop(tracee.EventExec))
	if err != nil {
		return err
	}
	space := s.registry.NewSpace()
	if err := s.registry.SetSpace(t, space.id); err != nil {
		return err
	}
	if err := s.populate(ctx, t, e, recordedMappings(e)); err != nil {
		return err
	}
	s.sysLog.Debug("exec", "tid", t.tid, "path", e.Path, "mappings", space.Len())
	t.pending.action = exitExecDone
	return nil
}

func recordedMappings(e *trace.Event) []Mapping {
	mappings := make([]Mapping, len(e.Mappings))
	for i := range e.Mappings {
		mappings[i] = NewMapping(&e.Mappings[i])
	}
	return mappings
}

func (s *Session) exitEntry(ctx context.Context, t *Task, e *trace.Event) error {
	t.pending.action = exitTerminate
	_, err := s.resumeTo(ctx, t, e, tracee.ResumeSyscall, 0, "exit of task", isEventStop(tracee.EventExit))
	if err != nil {
		return err
	}
	t.atExitEvent = true
	t.exiting = true
	if e.Syscall == arch.SysExitGroup {
		s.groupExiting(t)
	}
	return nil
}

// groupExiting marks the threads of the group of t as being terminated by the
// kernel.
func (s *Session) groupExiting(t *Task) {
	for _, g := range s.registry.Group(t.tgid) {
		g.exiting = true
	}
}

func (s *Session) exitEvent(ctx context.Context, t *Task, e *trace.Event) error {
	var status int32
	var terminated bool
	switch {
	case t.atExitEvent:
		msg, err := t.tracee.EventMsg()
		if err != nil {
			return err
		}
		status = int32(msg)
	case t.exiting:
		// Threads killed by another one reach their exit stop without being
		// resumed.
		stop, err := t.Wait(ctx)
		if err != nil {
			return err
		}
		switch {
		case stop.Is(tracee.EventExit):
			msg, err := t.tracee.EventMsg()
			if err != nil {
				return err
			}
			status = int32(msg)
		case stop.Terminated():
			status, terminated = int32(stop.Status), true
		default:
			return divergence(e, "exit of task", stop.String())
		}
	default:
		return divergence(e, "exit of task", "running task")
	}
	if status != e.Status {
		return divergence(e, fmt.Sprintf("exit status %#x", e.Status), fmt.Sprintf("exit status %#x", status))
	}

	leader := t.tid == t.tgid
	threads := len(s.registry.Group(t.tgid)) - 1
	if !terminated {
		if err := t.Resume(tracee.ResumeCont, 0); err != nil {
			return err
		}
		t.atExitEvent = false
		if leader && threads > 0 {
			// The kernel reports the exit of a thread group leader after
			// all other threads of the group are gone.
			s.zombies[t.tgid] = t
		} else if err := s.reap(ctx, t, e); err != nil {
			return err
		}
	}
	s.registry.RemoveTask(t.tid)
	s.sysLog.Debug("task exited", "tid", t.tid, "status", fmt.Sprintf("%#x", status))

	if z := s.zombies[t.tgid]; z != nil && !leader && threads == 0 {
		delete(s.zombies, t.tgid)
		if err := s.reap(ctx, z, e); err != nil {
			return err
		}
	}
	if t.tid == s.header.Process.InitialTid {
		s.result.ExitStatus = e.Status
		s.initialExited = true
	}
	return nil
}

// reap waits for a task that left its exit stop to terminate.
func (s *Session) reap(ctx context.Context, t *Task, e *trace.Event) error {
	stop, err := t.Wait(ctx)
	if err != nil {
		return err
	}
	if !stop.Terminated() {
		return divergence(e, "terminated task", stop.String())
	}
	return nil
}

func (s *Session) signalEvent(ctx context.Context, t *Task, e *trace.Event) error {
	switch e.Disposition {
	case trace.Ignored:
		return nil
	case trace.Handler:
		return s.handleSignal(ctx, t, e)
	case trace.Fatal:
		return s.fatalSignal(ctx, t, e)
	}
	return divergence(e, "signal disposition", e.Disposition.String())
}

func (s *Session) handleSignal(ctx context.Context, t *Task, e *trace.Event) error {
	name := arch.SignalName(e.Signal)
	if e.Registers == nil {
		return divergence(e, "registers of the handler of "+name, "none recorded")
	}
	if t.state != AwaitingEntry {
		return divergence(e, name+" outside of a system call", "task in "+t.pending.sys.Name)
	}
	if e.Synchronous {
		// The signal is raised again by the task and suppressed by the next
		// resume, the recorded frame replaces its delivery.
		if _, err := s.resumeTo(ctx, t, e, tracee.ResumeSyscall, 0, name, isSignalStop(e.Signal)); err != nil {
			return err
		}
	}
	if err := t.applyWrites(s.reader, e.Writes); err != nil {
		return err
	}
	t.SetRegisters(e.Registers)
	return nil
}

func (s *Session) fatalSignal(ctx context.Context, t *Task, e *trace.Event) error {
	name := arch.SignalName(e.Signal)
	if e.Synchronous {
		if _, err := s.resumeTo(ctx, t, e, tracee.ResumeSyscall, 0, name, isSignalStop(e.Signal)); err != nil {
			return err
		}
	} else {
		if t.state != AwaitingEntry {
			return divergence(e, name+" outside of a system call", "task in "+t.pending.sys.Name)
		}
		inj, err := s.injector(t)
		if err != nil {
			return err
		}
		if err := inj.Tgkill(ctx, s.realTgid(t), t.RealTid(), e.Signal); err != nil {
			return err
		}
		if _, err := s.resumeTo(ctx, t, e, tracee.ResumeSyscall, 0, name, isSignalStop(e.Signal)); err != nil {
			return err
		}
	}
	if len(e.Siginfo) > 0 {
		if err := t.tracee.SetSiginfo(e.Siginfo); err != nil {
			return err
		}
	}
	_, err := s.resumeTo(ctx, t, e, tracee.ResumeCont, e.Signal, "exit on "+name, isEventStop(tracee.EventExit))
	if err != nil {
		return err
	}
	t.atExitEvent = true
	s.groupExiting(t)
	return nil
}

func (s *Session) realTgid(t *Task) int {
	if leader, ok := s.registry.Task(t.tgid); ok {
		return leader.RealTid()
	}
	if leader := s.zombies[t.tgid]; leader != nil {
		return leader.RealTid()
	}
	return t.RealTid()
}
