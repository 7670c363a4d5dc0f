//go:build linux && amd64

package ptrace

import (
	"context"
	"fmt"
	"os"
	"time"
	"unsafe"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/tracee"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sys/unix"
)

// process is a traced task.
type process struct {
	host *Host
	tid  int
	mem  *os.File
}

var _ tracee.Tracee = (*process)(nil)

func (p *process) Tid() int { return p.tid }

func (p *process) String() string { return fmt.Sprintf("tracee(%d)", p.tid) }

func (p *process) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	errE := errors.WithMessage(err, op)
	errors.Details(errE)["tid"] = p.tid
	return tracee.Errorf(p.tid, op, errE)
}

func (p *process) Resume(mode tracee.ResumeMode, sig int) error {
	var request int
	var op string
	switch mode {
	case tracee.ResumeSyscall:
		request, op = unix.PTRACE_SYSCALL, "ptrace(PTRACE_SYSCALL)"
	case tracee.ResumeCont:
		request, op = unix.PTRACE_CONT, "ptrace(PTRACE_CONT)"
	case tracee.ResumeSingleStep:
		request, op = unix.PTRACE_SINGLESTEP, "ptrace(PTRACE_SINGLESTEP)"
	default:
		return fmt.Errorf("invalid resume mode: %s", mode)
	}
	return p.fail(op, p.host.do(func() error {
		return ptrace(request, p.tid, 0, uintptr(sig))
	}))
}

// Wait polls the state of the task with WNOHANG until it reports a stop.
// Blocking in wait4 would hold the tracer thread and prevent cancellation.
func (p *process) Wait(ctx context.Context) (tracee.Stop, error) {
	delay := p.host.opts.PollInterval
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		var status unix.WaitStatus
		var wpid int
		err := p.host.do(func() error {
			for {
				var err error
				wpid, err = unix.Wait4(p.tid, &status, unix.WNOHANG|unix.WALL, nil)
				if err != unix.EINTR {
					return err
				}
			}
		})
		if err != nil {
			return tracee.Stop{}, p.fail("wait4", err)
		}
		if wpid == p.tid {
			if stop, ok := decodeStatus(status); ok {
				return stop, nil
			}
			// Group stops are not part of the replay model, the task is
			// resumed as if they never happened.
			if err := p.Resume(tracee.ResumeSyscall, 0); err != nil {
				return tracee.Stop{}, err
			}
			continue
		}

		timer.Reset(delay)
		select {
		case <-ctx.Done():
			return tracee.Stop{}, context.Cause(ctx)
		case <-timer.C:
		}
		delay = min(2*delay, p.host.opts.MaxPollInterval)
	}
}

func decodeStatus(status unix.WaitStatus) (tracee.Stop, bool) {
	switch {
	case status.Exited():
		return tracee.Stop{Kind: tracee.Exited, Status: int(status)}, true
	case status.Signaled():
		return tracee.Stop{Kind: tracee.Signaled, Signal: int(status.Signal()), Status: int(status)}, true
	case status.Stopped():
		sig := status.StopSignal()
		switch {
		case sig == unix.SIGTRAP|0x80:
			return tracee.Stop{Kind: tracee.SyscallStop}, true
		case status.TrapCause() == unix.PTRACE_EVENT_STOP:
			return tracee.Stop{}, false
		case sig == unix.SIGTRAP && status.TrapCause() > 0:
			return tracee.Stop{Kind: tracee.EventStop, Event: tracee.Event(status.TrapCause())}, true
		default:
			return tracee.Stop{Kind: tracee.SignalStop, Signal: int(sig)}, true
		}
	}
	return tracee.Stop{}, false
}

func (p *process) GetRegs(regs *arch.Registers) error {
	var r unix.PtraceRegs
	err := p.host.do(func() error { return unix.PtraceGetRegs(p.tid, &r) })
	if err != nil {
		return p.fail("ptrace(PTRACE_GETREGS)", err)
	}
	fromPtraceRegs(regs, &r)
	return nil
}

func (p *process) SetRegs(regs *arch.Registers) error {
	var r unix.PtraceRegs
	toPtraceRegs(&r, regs)
	return p.fail("ptrace(PTRACE_SETREGS)", p.host.do(func() error {
		return unix.PtraceSetRegs(p.tid, &r)
	}))
}

func (p *process) memory() (*os.File, error) {
	if p.mem == nil {
		f, err := os.OpenFile(fmt.Sprintf("/proc/%d/mem", p.tid), os.O_RDWR, 0)
		if err != nil {
			return nil, err
		}
		p.mem = f
	}
	return p.mem, nil
}

func (p *process) ReadMemory(addr uint64, b []byte) (n int, err error) {
	err = p.host.do(func() error {
		f, err := p.memory()
		if err != nil {
			return err
		}
		n, err = f.ReadAt(b, int64(addr))
		return err
	})
	if err != nil {
		errE := errors.WithDetails(err, "addr", fmt.Sprintf("%#x", addr), "size", len(b))
		return n, p.fail("read memory", errE)
	}
	return n, nil
}

func (p *process) WriteMemory(addr uint64, b []byte) (n int, err error) {
	err = p.host.do(func() error {
		f, err := p.memory()
		if err != nil {
			return err
		}
		n, err = f.WriteAt(b, int64(addr))
		return err
	})
	if err != nil {
		errE := errors.WithDetails(err, "addr", fmt.Sprintf("%#x", addr), "size", len(b))
		return n, p.fail("write memory", errE)
	}
	return n, nil
}

func (p *process) GetSiginfo(b []byte) error {
	if len(b) < tracee.SiginfoSize {
		return fmt.Errorf("siginfo buffer is too short: %d<%d", len(b), tracee.SiginfoSize)
	}
	return p.fail("ptrace(PTRACE_GETSIGINFO)", p.host.do(func() error {
		return ptrace(unix.PTRACE_GETSIGINFO, p.tid, 0, uintptr(unsafe.Pointer(&b[0])))
	}))
}

func (p *process) SetSiginfo(b []byte) error {
	var siginfo [tracee.SiginfoSize]byte
	copy(siginfo[:], b)
	return p.fail("ptrace(PTRACE_SETSIGINFO)", p.host.do(func() error {
		return ptrace(unix.PTRACE_SETSIGINFO, p.tid, 0, uintptr(unsafe.Pointer(&siginfo[0])))
	}))
}

func (p *process) EventMsg() (uint64, error) {
	var msg uint
	err := p.host.do(func() (err error) {
		msg, err = unix.PtraceGetEventMsg(p.tid)
		return err
	})
	if err != nil {
		return 0, p.fail("ptrace(PTRACE_GETEVENTMSG)", err)
	}
	return uint64(msg), nil
}

func (p *process) Kill() error {
	return p.fail("kill", p.kill())
}

func (p *process) kill() error {
	err := unix.Kill(p.tid, unix.SIGKILL)
	if err == unix.ESRCH {
		err = nil
	}
	p.closeMemory()
	return err
}

func (p *process) Detach() error {
	p.closeMemory()
	return p.fail("ptrace(PTRACE_DETACH)", p.host.do(func() error {
		return unix.PtraceDetach(p.tid)
	}))
}

func (p *process) closeMemory() {
	if p.mem != nil {
		p.mem.Close()
		p.mem = nil
	}
}
