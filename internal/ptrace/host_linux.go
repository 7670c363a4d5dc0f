//go:build linux && amd64

package ptrace

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/stealthrocket/tracecraft/internal/tracee"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sys/unix"
)

const ptraceOptions = unix.PTRACE_O_TRACESYSGOOD |
	unix.PTRACE_O_TRACECLONE |
	unix.PTRACE_O_TRACEFORK |
	unix.PTRACE_O_TRACEVFORK |
	unix.PTRACE_O_TRACEEXEC |
	unix.PTRACE_O_TRACEEXIT |
	unix.PTRACE_O_EXITKILL

const (
	addrNoRandomize  = 0x0040000
	personalityQuery = 0xffffffff
)

const (
	defaultPollInterval    = 50 * time.Microsecond
	defaultMaxPollInterval = 10 * time.Millisecond
)

var (
	ErrUnexpectedStop = errors.Base("unexpected initial stop")
	ErrClosed         = errors.Base("ptrace host is closed")
)

// Options configure a Host.
type Options struct {
	Logger *slog.Logger
	// Initial and maximum delays between two polls of a task state.
	PollInterval    time.Duration
	MaxPollInterval time.Duration
}

// Host implements tracee.Host with ptrace.
type Host struct {
	exec   *executor
	opts   Options
	log    *slog.Logger
	mutex  sync.RWMutex
	closed bool
}

var _ tracee.Host = (*Host)(nil)

// NewHost returns a Host that owns a tracer thread.
func NewHost(opts Options) *Host {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.MaxPollInterval < opts.PollInterval {
		opts.MaxPollInterval = max(defaultMaxPollInterval, opts.PollInterval)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Host{
		exec: newExecutor(),
		opts: opts,
		log:  log,
	}
}

func (h *Host) do(f func() error) error {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if h.closed {
		return ErrClosed
	}
	return h.exec.do(f)
}

// Spawn starts the process described by opts under ptrace.
func (h *Host) Spawn(ctx context.Context, opts tracee.SpawnOptions) (tracee.Tracee, error) {
	cmd := &exec.Cmd{
		Path: opts.Path,
		Args: opts.Args,
		Env:  opts.Env,
		Dir:  opts.Dir,
		SysProcAttr: &syscall.SysProcAttr{
			Ptrace:    true,
			Pdeathsig: syscall.SIGKILL,
		},
	}
	if len(cmd.Args) == 0 {
		cmd.Args = []string{opts.Path}
	}
	// Only files are passed through, other readers and writers would require
	// copying goroutines that are released by cmd.Wait, which must not be
	// called on a traced process.
	if f, ok := opts.Stdin.(*os.File); ok && f != nil {
		cmd.Stdin = f
	}
	if f, ok := opts.Stdout.(*os.File); ok && f != nil {
		cmd.Stdout = f
	}
	if f, ok := opts.Stderr.(*os.File); ok && f != nil {
		cmd.Stderr = f
	}

	err := h.do(func() error {
		persona, err := personality(personalityQuery)
		if err != nil {
			return errors.WithMessage(err, "personality")
		}
		if _, err := personality(persona | addrNoRandomize); err != nil {
			return errors.WithMessage(err, "personality")
		}
		defer personality(persona) //nolint:errcheck

		if err := cmd.Start(); err != nil {
			return errors.WithMessage(err, "start")
		}
		return nil
	})
	if err != nil {
		return nil, tracee.Errorf(0, "spawn "+opts.Path, err)
	}

	pid := cmd.Process.Pid
	t := &process{host: h, tid: pid}

	stop, err := t.Wait(ctx)
	if err != nil {
		t.kill()
		return nil, err
	}
	if stop.Kind != tracee.SignalStop || stop.Signal != int(unix.SIGTRAP) {
		t.kill()
		errE := errors.WithDetails(ErrUnexpectedStop, "tid", pid, "stop", stop.String())
		return nil, tracee.Errorf(pid, "spawn "+opts.Path, errE)
	}

	err = h.do(func() error {
		if err := unix.PtraceSetOptions(pid, ptraceOptions); err != nil {
			errE := errors.WithMessage(err, "ptrace(PTRACE_SETOPTIONS)")
			errors.Details(errE)["tid"] = pid
			return errE
		}
		return nil
	})
	if err != nil {
		t.kill()
		return nil, tracee.Errorf(pid, "set options", err)
	}

	h.log.Debug("spawned tracee", "tid", pid, "path", opts.Path)
	return t, nil
}

// Adopt returns the tracee of an automatically attached child task.
func (h *Host) Adopt(tid int) (tracee.Tracee, error) {
	if tid <= 0 {
		return nil, tracee.Errorf(tid, "adopt", unix.ESRCH)
	}
	return &process{host: h, tid: tid}, nil
}

// Close terminates the tracer thread. Remaining tracees are killed by the
// kernel.
func (h *Host) Close() error {
	h.mutex.Lock()
	closed := h.closed
	h.closed = true
	h.mutex.Unlock()
	if !closed {
		h.exec.close()
	}
	return nil
}

func personality(persona uintptr) (uintptr, error) {
	r, _, e := unix.RawSyscall(unix.SYS_PERSONALITY, persona, 0, 0)
	if e != 0 {
		return 0, e
	}
	return r, nil
}

func ptrace(request int, tid int, addr, data uintptr) error {
	_, _, e := unix.Syscall6(unix.SYS_PTRACE, uintptr(request), uintptr(tid), addr, data, 0, 0)
	if e != 0 {
		return e
	}
	return nil
}
