package replaytest

import (
	"context"
	"errors"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"github.com/stealthrocket/tracecraft/internal/tracee"
	"golang.org/x/sys/unix"
)

var (
	errWouldBlock      = errors.New("replaytest: wait would block, the thread is not running")
	errBudgetExhausted = errors.New("replaytest: step budget exhausted")
)

type runState int

const (
	stopped runState = iota
	running
	dead
)

// stopPoint is where a stopped thread resumes from.
type stopPoint int

const (
	inUser stopPoint = iota
	atEntry
	atEvent
	atExit
	atSignal
)

const (
	sigDfl = 0
	sigIgn = 1
)

// Thread is a thread of the simulated kernel. Traced threads implement
// tracee.Tracee.
type Thread struct {
	k      *Kernel
	tid    int
	proc   *process
	traced bool
	regs   arch.Registers

	state   runState
	point   stopPoint
	mode    tracee.ResumeMode
	deliver int
	reports []tracee.Stop

	signals   []int
	sigSync   bool
	siginfo   [tracee.SiginfoSize]byte
	returning bool
	eventMsg  uint64
	status    int
	clearTid  uint64
	yield     bool

	// State of the system call in progress.
	result  int64
	skipped bool
	out     []memWrite
	mapped  []trace.Mapping
}

type memWrite struct {
	addr uint64
	data []byte
}

// Tid returns the thread id.
func (t *Thread) Tid() int { return t.tid }

// Tgid returns the id of the thread group.
func (t *Thread) Tgid() int { return t.proc.tgid }

// Registers returns a copy of the registers.
func (t *Thread) Registers() arch.Registers { return t.regs }

func (t *Thread) fail(op string, err error) error { return tracee.Errorf(t.tid, op, err) }

func (t *Thread) checkStopped(op string) error {
	switch t.state {
	case stopped:
		return nil
	case dead:
		return t.fail(op, unix.ESRCH)
	default:
		return t.fail(op, unix.EBUSY)
	}
}

func (t *Thread) Resume(mode tracee.ResumeMode, sig int) error {
	if err := t.checkStopped("resume"); err != nil {
		return err
	}
	if len(t.reports) > 0 {
		return t.fail("resume", unix.EBUSY)
	}
	t.mode = mode
	t.deliver = sig
	t.state = running
	t.returning = true
	return nil
}

func (t *Thread) Wait(ctx context.Context) (tracee.Stop, error) {
	if err := ctx.Err(); err != nil {
		return tracee.Stop{}, err
	}
	if len(t.reports) == 0 {
		if t.state != running {
			return tracee.Stop{}, errWouldBlock
		}
		if err := t.run(); err != nil {
			return tracee.Stop{}, err
		}
		if len(t.reports) == 0 {
			return tracee.Stop{}, errWouldBlock
		}
	}
	stop := t.reports[0]
	t.reports = t.reports[1:]
	return stop, nil
}

func (t *Thread) run() error {
	for i := 0; t.state == running; i++ {
		if i == t.k.budget {
			return errBudgetExhausted
		}
		t.step()
	}
	return nil
}

func (t *Thread) GetRegs(regs *arch.Registers) error {
	if err := t.checkStopped("get registers"); err != nil {
		return err
	}
	*regs = t.regs
	return nil
}

func (t *Thread) SetRegs(regs *arch.Registers) error {
	if err := t.checkStopped("set registers"); err != nil {
		return err
	}
	t.regs = *regs
	return nil
}

func (t *Thread) ReadMemory(addr uint64, b []byte) (int, error) {
	if t.state == dead {
		return 0, t.fail("read memory", unix.ESRCH)
	}
	if n := t.proc.mem.read(addr, b); n < len(b) {
		return n, t.fail("read memory", unix.EIO)
	}
	return len(b), nil
}

func (t *Thread) WriteMemory(addr uint64, b []byte) (int, error) {
	if t.state == dead {
		return 0, t.fail("write memory", unix.ESRCH)
	}
	if n := t.proc.mem.write(addr, b); n < len(b) {
		return n, t.fail("write memory", unix.EIO)
	}
	return len(b), nil
}

func (t *Thread) GetSiginfo(b []byte) error {
	copy(b, t.siginfo[:])
	return nil
}

func (t *Thread) SetSiginfo(b []byte) error {
	copy(t.siginfo[:], b)
	return nil
}

func (t *Thread) EventMsg() (uint64, error) { return t.eventMsg, nil }

// Kill terminates the thread group with SIGKILL.
func (t *Thread) Kill() error {
	if t.state == dead && t.proc.zombie != t {
		return t.fail("kill", unix.ESRCH)
	}
	t.die(tracee.Stop{Kind: tracee.Signaled, Signal: arch.SIGKILL, Status: arch.SIGKILL})
	return nil
}

func (t *Thread) die(stop tracee.Stop) {
	proc := t.proc
	for _, x := range proc.threads {
		if x.state != dead || x == proc.zombie {
			x.state = dead
			x.reports = nil
			if x.traced {
				x.reports = append(x.reports, stop)
			}
		}
	}
	proc.zombie = nil
	t.k.exitProcess(proc)
}

func (t *Thread) Detach() error {
	t.traced = false
	return nil
}

// stop reports a tracing stop, it returns false if the thread is not traced.
func (t *Thread) stop(stop tracee.Stop) bool {
	if !t.traced {
		return false
	}
	t.state = stopped
	t.reports = append(t.reports, stop)
	return true
}

func (t *Thread) step() {
	switch t.point {
	case atSignal:
		t.point = inUser
		sig := t.deliver
		t.deliver = 0
		if sig != 0 {
			t.deliverSignal(sig, t.sigSync)
		}
		return
	case atEntry:
		t.point = inUser
		t.enterSyscall()
		return
	case atEvent:
		t.point = inUser
		t.exitSyscall()
		return
	case atExit:
		t.point = inUser
		t.terminate()
		return
	}

	if t.returning {
		t.returning = false
		if len(t.signals) > 0 {
			sig := t.signals[0]
			t.signals = t.signals[1:]
			t.signal(sig, false)
			return
		}
	}

	rip := t.regs.Rip
	var insn [insnSize]byte
	mem := t.proc.mem
	if mem.read(rip, insn[:]) < insnSize || !mem.check(rip, insnSize, arch.PROT_EXEC) {
		t.signal(arch.SIGSEGV, true)
		return
	}
	switch insn {
	case opSyscall:
		t.regs.Rip += insnSize
		t.regs.OrigRax = t.regs.Rax
		t.regs.Rax = arch.Word(-arch.ENOSYS)
		t.k.rec.syscallEntry(t)
		if t.mode == tracee.ResumeSyscall && t.stop(tracee.Stop{Kind: tracee.SyscallStop}) {
			t.point = atEntry
			return
		}
		t.enterSyscall()
	case opNative:
		op := t.proc.prog.ops[rip]
		if op == nil {
			t.signal(arch.SIGILL, true)
			return
		}
		saved := t.regs
		cpu := &CPU{Regs: &t.regs, t: t, next: rip + insnSize}
		op(cpu)
		if cpu.sig != 0 {
			t.regs = saved
			t.signal(cpu.sig, true)
			return
		}
		t.regs.Rip = cpu.next
	default:
		t.signal(arch.SIGILL, true)
		return
	}
	if t.mode == tracee.ResumeSingleStep && t.state == running {
		t.setSiginfo(arch.SIGTRAP)
		if t.stop(tracee.Stop{Kind: tracee.SignalStop, Signal: arch.SIGTRAP}) {
			t.point = atSignal
			t.sigSync = true
		}
	}
}

func (t *Thread) enterSyscall() {
	no := int(int64(t.regs.OrigRax))
	t.out, t.mapped = t.out[:0], nil
	t.skipped = no < 0
	if t.skipped {
		t.exitSyscall()
		return
	}
	r := t.syscall(no)
	if r.exited {
		return
	}
	t.result = r.ret
	if r.event != 0 {
		t.eventMsg = r.msg
		if t.stop(tracee.Stop{Kind: tracee.EventStop, Event: r.event}) {
			t.point = atEvent
			return
		}
	}
	t.exitSyscall()
}

func (t *Thread) exitSyscall() {
	if !t.skipped {
		t.regs.Rax = uint64(t.result)
	}
	t.k.rec.syscallExit(t)
	t.returning = true
	if t.mode == tracee.ResumeSyscall {
		t.stop(tracee.Stop{Kind: tracee.SyscallStop})
	}
}

func (t *Thread) setSiginfo(sig int) {
	t.siginfo = [tracee.SiginfoSize]byte{}
	le.PutUint32(t.siginfo[0:], uint32(sig))
}

// signal interrupts the thread with a signal, which is delivered when the
// thread is not traced or when the tracer resumes it with the signal.
func (t *Thread) signal(sig int, sync bool) {
	t.setSiginfo(sig)
	t.sigSync = sync
	if t.stop(tracee.Stop{Kind: tracee.SignalStop, Signal: sig}) {
		t.point = atSignal
		return
	}
	t.deliverSignal(sig, sync)
}

func ignoredByDefault(sig int) bool {
	switch sig {
	case arch.SIGCHLD, arch.SIGURG, arch.SIGWINCH, arch.SIGCONT, arch.SIGSTOP:
		return true
	}
	return false
}

func (t *Thread) deliverSignal(sig int, sync bool) {
	handler := t.proc.handlers[sig]
	switch {
	case handler == sigIgn:
		t.k.rec.signal(t, sig, trace.Ignored, sync, nil)
	case handler == sigDfl && ignoredByDefault(sig):
	case handler == sigDfl:
		t.k.rec.signal(t, sig, trace.Fatal, sync, nil)
		t.groupExit(sig)
	default:
		frame := t.pushFrame(sig, handler)
		t.k.rec.signal(t, sig, trace.Handler, sync, frame)
	}
}

// frameSize is the size of the register file saved on the stack of signal
// handlers.
const frameSize = arch.NumRegisters * 8

func (t *Thread) pushFrame(sig int, handler uint64) *memWrite {
	frame := make([]byte, frameSize)
	for i, w := range t.regs.Words() {
		le.PutUint64(frame[i*8:], w)
	}
	sp := (t.regs.Rsp - frameSize) &^ 15
	if t.proc.mem.write(sp, frame) < len(frame) {
		t.groupExit(arch.SIGSEGV)
		return nil
	}
	t.regs.Rsp = sp
	t.regs.Rip = handler
	t.regs.Rdi = uint64(sig)
	return &memWrite{addr: sp, data: frame}
}

func (t *Thread) sigreturn() int64 {
	frame := make([]byte, frameSize)
	if t.proc.mem.read(t.regs.Rsp, frame) < len(frame) {
		return -int64(arch.EFAULT)
	}
	words := make([]uint64, arch.NumRegisters)
	for i := range words {
		words[i] = le.Uint64(frame[i*8:])
	}
	_ = t.regs.SetWords(words)
	return int64(t.regs.Rax)
}

func (t *Thread) queueSignal(sig int) {
	for _, s := range t.signals {
		if s == sig {
			return
		}
	}
	t.signals = append(t.signals, sig)
}

// groupExit terminates every thread of the group of t with a wait status.
func (t *Thread) groupExit(status int) {
	t.enterExit(status)
	for _, x := range t.proc.live() {
		if x != t && x.point != atExit {
			x.reports = nil
			x.enterExit(status)
		}
	}
}

// enterExit starts the termination of the thread, traced threads stop at
// their exit event first.
func (t *Thread) enterExit(status int) {
	t.status = status
	t.eventMsg = uint64(status)
	t.k.rec.exitTask(t, status)
	if t.stop(tracee.Stop{Kind: tracee.EventStop, Event: tracee.EventExit}) {
		t.point = atExit
		return
	}
	t.terminate()
}

func exitStop(status int) tracee.Stop {
	if sig := status & 0x7f; sig != 0 {
		return tracee.Stop{Kind: tracee.Signaled, Signal: sig, Status: status}
	}
	return tracee.Stop{Kind: tracee.Exited, Status: status}
}

func (t *Thread) terminate() {
	t.state = dead
	t.reports = nil
	proc := t.proc
	if t.clearTid != 0 {
		var zero [4]byte
		proc.mem.write(t.clearTid, zero[:])
	}
	live := proc.live()
	if t.tid == proc.tgid && len(live) > 0 {
		proc.zombie = t
		return
	}
	if t.traced {
		t.reports = append(t.reports, exitStop(t.status))
	}
	if len(live) == 0 {
		if z := proc.zombie; z != nil {
			proc.zombie = nil
			if z.traced {
				z.reports = append(z.reports, exitStop(z.status))
			}
		}
		t.k.exitProcess(proc)
	}
}

func (k *Kernel) exitProcess(proc *process) {
	if parent := proc.parent; parent != nil {
		if live := parent.live(); len(live) > 0 {
			live[0].queueSignal(arch.SIGCHLD)
		}
	}
}
