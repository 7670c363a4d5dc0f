package replay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"github.com/stealthrocket/tracecraft/internal/tracee"
	"golang.org/x/time/rate"
)

// TaskState is the position of a task in the system call state machine.
type TaskState int

const (
	// AwaitingEntry tasks run user code until their next system call.
	AwaitingEntry TaskState = iota
	// AwaitingExit tasks are stopped in a system call.
	AwaitingExit
)

func (s TaskState) String() string {
	switch s {
	case AwaitingEntry:
		return "awaiting-entry"
	case AwaitingExit:
		return "awaiting-exit"
	default:
		return fmt.Sprintf("TaskState(%d)", int(s))
	}
}

// Task is a replayed thread.
type Task struct {
	tid    int32
	tgid   int32
	tracee tracee.Tracee
	space  SpaceID
	files  FilesID
	state  TaskState
	// Ordinal of the last event consumed by the task, -1 if none.
	cursor int64
	// Error that caused the task to be parked, its events are skipped.
	failed error

	// The system call in progress when the task is AwaitingExit.
	pending pendingSyscall
	// Set when the task reached the exit stop of its system call.
	atExitStop bool
	// Set once the kernel started terminating the task.
	exiting bool
	// Set when the task is stopped at PTRACE_EVENT_EXIT.
	atExitEvent bool
	// Stop observed while single-stepping, returned by the next advance.
	stashed *tracee.Stop

	regs      arch.Registers
	regsValid bool
	regsDirty bool

	turn    bool
	timeout time.Duration
	retry   retrier
	log     *slog.Logger
}

func newTask(tid int32, t tracee.Tracee, timeout time.Duration, retry retrier, log *slog.Logger) *Task {
	return &Task{
		tid:     tid,
		tracee:  t,
		cursor:  -1,
		timeout: timeout,
		retry:   retry,
		log:     log.With("tid", tid),
	}
}

// Tid returns the tid of the task in the recording.
func (t *Task) Tid() int32 { return t.tid }

// RealTid returns the tid of the task in the replay.
func (t *Task) RealTid() int { return t.tracee.Tid() }

// Tgid returns the recorded id of the thread group of the task.
func (t *Task) Tgid() int32 { return t.tgid }

// Space returns the address space of the task.
func (t *Task) Space() SpaceID { return t.space }

// Files returns the descriptor table of the task.
func (t *Task) Files() FilesID { return t.files }

// State returns the system call state of the task.
func (t *Task) State() TaskState { return t.state }

// Cursor returns the ordinal of the last event consumed by the task.
func (t *Task) Cursor() int64 { return t.cursor }

// Failed returns the error that parked the task, nil if it is scheduled.
func (t *Task) Failed() error { return t.failed }

func (t *Task) String() string {
	return fmt.Sprintf("task(%d->%d)", t.tid, t.tracee.Tid())
}

// Registers returns the register file of the task. The returned value is a
// cache owned by the task, changes must be applied with SetRegisters.
func (t *Task) Registers() (*arch.Registers, error) {
	if !t.regsValid {
		err := t.retry.do(func() error { return t.tracee.GetRegs(&t.regs) })
		if err != nil {
			return nil, err
		}
		t.regsValid = true
	}
	return &t.regs, nil
}

// SetRegisters changes the register file of the task. The registers are
// written to the task before it resumes.
func (t *Task) SetRegisters(regs *arch.Registers) {
	if regs != &t.regs {
		t.regs = *regs
	}
	t.regsValid = true
	t.regsDirty = true
}

func (t *Task) flush() error {
	if !t.regsDirty {
		return nil
	}
	if err := t.retry.do(func() error { return t.tracee.SetRegs(&t.regs) }); err != nil {
		return err
	}
	t.regsDirty = false
	return nil
}

// Resume resumes the task. It panics if the task does not own the head event
// of the trace, replay would no longer follow the recorded order.
func (t *Task) Resume(mode tracee.ResumeMode, sig int) error {
	if !t.turn {
		panic(fmt.Sprintf("%s resumed out of turn", t))
	}
	if err := t.flush(); err != nil {
		return err
	}
	t.regsValid = false
	t.atExitStop = false
	return t.retry.do(func() error { return t.tracee.Resume(mode, sig) })
}

// Wait waits for the next stop of the task, for at most the stop timeout of
// the session.
func (t *Task) Wait(ctx context.Context) (tracee.Stop, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	stop, err := t.tracee.Wait(ctx)
	if err != nil {
		return stop, tracee.Errorf(t.tracee.Tid(), "wait", err)
	}
	t.log.Debug("stopped", "stop", stop)
	return stop, nil
}

// advance resumes the task and waits for its next stop. A stop stashed by
// single-stepping is returned without resuming.
func (t *Task) advance(ctx context.Context, mode tracee.ResumeMode, sig int) (tracee.Stop, error) {
	if t.stashed != nil {
		stop := *t.stashed
		t.stashed = nil
		return stop, nil
	}
	if err := t.Resume(mode, sig); err != nil {
		return tracee.Stop{}, err
	}
	return t.Wait(ctx)
}

// ReadMemory reads len(b) bytes of memory at addr.
func (t *Task) ReadMemory(addr uint64, b []byte) error {
	n, err := t.tracee.ReadMemory(addr, b)
	if err != nil {
		return err
	}
	if n < len(b) {
		return tracee.Errorf(t.tracee.Tid(), "read memory", io.ErrUnexpectedEOF)
	}
	return nil
}

// WriteMemory writes b to the memory at addr.
func (t *Task) WriteMemory(addr uint64, b []byte) error {
	n, err := t.tracee.WriteMemory(addr, b)
	if err != nil {
		return err
	}
	if n < len(b) {
		return tracee.Errorf(t.tracee.Tid(), "write memory", io.ErrShortWrite)
	}
	return nil
}

// ReadCString reads a null terminated string of at most limit bytes at addr.
func (t *Task) ReadCString(addr uint64, limit int) (string, error) {
	var s []byte
	var buf [256]byte
	for len(s) < limit {
		// Reads stop at page boundaries so they never cross into an
		// unmapped page after the end of the string.
		n := min(len(buf), int(arch.PageSize-addr%arch.PageSize), limit-len(s))
		if err := t.ReadMemory(addr, buf[:n]); err != nil {
			return "", err
		}
		if i := bytes.IndexByte(buf[:n], 0); i >= 0 {
			return string(append(s, buf[:i]...)), nil
		}
		s = append(s, buf[:n]...)
		addr += uint64(n)
	}
	return "", fmt.Errorf("string at %#x is longer than %d bytes", addr, limit)
}

// applyWrites copies the recorded memory writes of an event to the task.
func (t *Task) applyWrites(r BlobReader, writes []trace.MemWrite) error {
	for _, w := range writes {
		b, err := r.ReadBlob(w.Data)
		if err != nil {
			return err
		}
		if err := t.WriteMemory(w.Addr, b); err != nil {
			return err
		}
	}
	return nil
}

// BlobReader reads blobs of a trace.
type BlobReader interface {
	ReadBlob(ref trace.BlobRef) ([]byte, error)
}

// retrier repeats operations on tracees that fail with transient errors.
type retrier struct {
	attempts int
	limiter  *rate.Limiter
}

func newRetrier(attempts int, every time.Duration) retrier {
	return retrier{
		attempts: attempts,
		limiter:  rate.NewLimiter(rate.Every(every), 1),
	}
}

func (r retrier) do(op func() error) error {
	for attempt := 0; ; attempt++ {
		err := op()
		if err == nil || attempt >= r.attempts || !tracee.IsTransient(err) {
			return err
		}
		if r.limiter != nil {
			time.Sleep(r.limiter.Reserve().Delay())
		}
	}
}
