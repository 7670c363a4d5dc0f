// Package tracee defines the facade through which the replay engine controls
// traced tasks. The Linux implementation lives in internal/ptrace, tests use
// the simulated kernel of internal/replay/replaytest.
package tracee

import (
	"context"
	"fmt"
	"io"

	"github.com/stealthrocket/tracecraft/internal/arch"
)

// StopKind classifies the reports returned by Tracee.Wait.
type StopKind int

const (
	// SyscallStop is a syscall-entry or syscall-exit stop. The facade does
	// not tell them apart, the caller tracks which one it expects.
	SyscallStop StopKind = iota
	// SignalStop is a signal-delivery stop. The signal is delivered only if
	// it is passed to the next call to Resume.
	SignalStop
	// EventStop is a stop caused by one of the ptrace events.
	EventStop
	// Exited reports that the task terminated normally.
	Exited
	// Signaled reports that the task was killed by a signal.
	Signaled
)

func (k StopKind) String() string {
	switch k {
	case SyscallStop:
		return "syscall-stop"
	case SignalStop:
		return "signal-stop"
	case EventStop:
		return "event-stop"
	case Exited:
		return "exited"
	case Signaled:
		return "signaled"
	default:
		return fmt.Sprintf("StopKind(%d)", int(k))
	}
}

// Event is the ptrace event of an EventStop.
type Event int

const (
	EventFork      Event = 1
	EventVfork     Event = 2
	EventClone     Event = 3
	EventExec      Event = 4
	EventVforkDone Event = 5
	EventExit      Event = 6
)

func (e Event) String() string {
	switch e {
	case EventFork:
		return "fork"
	case EventVfork:
		return "vfork"
	case EventClone:
		return "clone"
	case EventExec:
		return "exec"
	case EventVforkDone:
		return "vfork-done"
	case EventExit:
		return "exit"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// Stop is a report of a state change of a task.
type Stop struct {
	Kind StopKind
	// Signal of SignalStop and Signaled reports.
	Signal int
	// Event of EventStop reports.
	Event Event
	// Wait status of Exited and Signaled reports.
	Status int
}

func (s Stop) String() string {
	switch s.Kind {
	case SignalStop, Signaled:
		return fmt.Sprintf("%s(%d)", s.Kind, s.Signal)
	case EventStop:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Event)
	case Exited:
		return fmt.Sprintf("%s(%#x)", s.Kind, s.Status)
	default:
		return s.Kind.String()
	}
}

// Is reports whether s is an event stop for the given event.
func (s Stop) Is(event Event) bool {
	return s.Kind == EventStop && s.Event == event
}

// Terminated reports whether the task no longer exists after the stop.
func (s Stop) Terminated() bool {
	return s.Kind == Exited || s.Kind == Signaled
}

// ResumeMode selects where a resumed task stops next.
type ResumeMode int

const (
	// ResumeSyscall stops at the next syscall boundary.
	ResumeSyscall ResumeMode = iota
	// ResumeCont only stops on signals and events.
	ResumeCont
	// ResumeSingleStep stops after one instruction.
	ResumeSingleStep
)

func (m ResumeMode) String() string {
	switch m {
	case ResumeSyscall:
		return "syscall"
	case ResumeCont:
		return "cont"
	case ResumeSingleStep:
		return "singlestep"
	default:
		return fmt.Sprintf("ResumeMode(%d)", int(m))
	}
}

// Tracee is one traced task.
//
// All methods except Wait require the task to be in a tracing stop.
type Tracee interface {
	// Tid returns the real thread id of the task.
	Tid() int
	// Resume resumes the task, delivering sig if it is not zero and the task
	// is in a signal-delivery stop.
	Resume(mode ResumeMode, sig int) error
	// Wait blocks until the task reports its next stop or ctx is done.
	Wait(ctx context.Context) (Stop, error)
	GetRegs(regs *arch.Registers) error
	SetRegs(regs *arch.Registers) error
	ReadMemory(addr uint64, b []byte) (int, error)
	WriteMemory(addr uint64, b []byte) (int, error)
	GetSiginfo(b []byte) error
	SetSiginfo(b []byte) error
	// EventMsg returns the message of the last event stop: the new tid for
	// clone events, the wait status for exit events.
	EventMsg() (uint64, error)
	// Kill sends SIGKILL to the task.
	Kill() error
	// Detach releases the task from tracing.
	Detach() error
}

// SpawnOptions describe the initial process of a replay.
type SpawnOptions struct {
	Path   string
	Args   []string
	Env    []string
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Host creates and adopts tracees.
type Host interface {
	// Spawn starts a traced process with address space randomization
	// disabled. The returned task is stopped right after its initial exec.
	Spawn(ctx context.Context, opts SpawnOptions) (Tracee, error)
	// Adopt returns the tracee of a task that was automatically attached
	// after a clone, fork or vfork event reported tid.
	Adopt(tid int) (Tracee, error)
	// Close releases resources held by the host.
	Close() error
}

// SiginfoSize is the size of the siginfo_t structure.
const SiginfoSize = 128
