// Package replay re-executes a recorded Linux process under ptrace, forcing
// every task to observe the system call results, signals, and memory effects
// stored in its trace.
package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/logging"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"github.com/stealthrocket/tracecraft/internal/tracee"
)

const (
	DefaultStopTimeout   = 10 * time.Second
	DefaultAttachRetries = 3
	DefaultRetryInterval = 10 * time.Millisecond
)

// Config configures a replay session. The zero value is valid.
type Config struct {
	// Compare the argument registers of system calls with the recorded ones.
	Strict bool
	// Writers receiving the output that the replayed process wrote to its
	// standard output and error. Nil writers discard it.
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	// Maximum time to wait for a task to stop.
	StopTimeout time.Duration
	// Number of times transient ptrace failures are retried, and the minimum
	// delay between attempts.
	AttachRetries int
	RetryInterval time.Duration
	Limits        Limits
	// System call table, arch.Syscalls() if nil.
	Syscalls *arch.Table
	Loggers  *logging.Loggers
	// OnEvent is called with each event after it was replayed.
	OnEvent func(*trace.Event)
}

func (c *Config) withDefaults() Config {
	cfg := *c
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultStopTimeout
	}
	if cfg.AttachRetries < 0 {
		cfg.AttachRetries = 0
	} else if cfg.AttachRetries == 0 {
		cfg.AttachRetries = DefaultAttachRetries
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if cfg.Syscalls == nil {
		cfg.Syscalls = arch.Syscalls()
	}
	return cfg
}

// Status is the state of a session.
type Status int

const (
	// Running sessions have events left to replay.
	Running Status = iota
	// Exited sessions replayed every event and every task exited.
	Exited
	// TraceEnded sessions replayed every event, the tasks still alive when
	// the trace ended were killed.
	TraceEnded
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Exited:
		return "exited"
	case TraceEnded:
		return "trace-ended"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result summarizes a session.
type Result struct {
	Status Status
	// Wait status of the initial process, valid once it exited.
	ExitStatus int32
	Consumed   int64
	Skipped    int64
	// Recorded tids of the tasks parked on unsupported system calls.
	Failed []int32
}

// Trace is the read access to a trace that sessions need.
type Trace interface {
	Header() *trace.Header
	EventsFrom(ordinal int64) *trace.EventReader
	ReadBlob(ref trace.BlobRef) ([]byte, error)
}

// Session replays one trace. Sessions are driven by a single goroutine.
type Session struct {
	cfg      Config
	reader   Trace
	header   *trace.Header
	host     tracee.Host
	registry *Registry
	sched    scheduler
	syscalls *arch.Table
	retry    retrier

	log    *slog.Logger
	sysLog *slog.Logger
	injLog *slog.Logger

	// Thread group leaders that exited before the other threads of their
	// group, by tgid.
	zombies       map[int32]*Task
	result        Result
	initialExited bool
	// Unsupported system calls, reported when the session finishes.
	errs   []error
	err    error
	closed bool
}

// NewSession spawns the initial process of a trace and returns a session
// positioned after its first event.
func NewSession(ctx context.Context, reader Trace, host tracee.Host, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	s := &Session{
		cfg:      cfg,
		reader:   reader,
		header:   reader.Header(),
		host:     host,
		registry: NewRegistry(cfg.Limits),
		syscalls: cfg.Syscalls,
		retry:    newRetrier(cfg.AttachRetries, cfg.RetryInterval),
		log:      cfg.Loggers.For(logging.Session),
		sysLog:   cfg.Loggers.For(logging.Syscall),
		injLog:   cfg.Loggers.For(logging.Inject),
		zombies:  make(map[int32]*Task),
	}
	s.sched = scheduler{
		registry: s.registry,
		queue:    newEventQueue(reader.EventsFrom(0)),
		log:      cfg.Loggers.For(logging.Sched),
	}
	if err := s.start(ctx); err != nil {
		return nil, s.fail(ctx, err)
	}
	return s, nil
}

func (s *Session) start(ctx context.Context) error {
	e, err := s.sched.queue.Peek()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("trace has no events")
		}
		return err
	}
	initialTid := s.header.Process.InitialTid
	if e.Kind != trace.Exec || e.Tid != initialTid {
		return divergence(e, fmt.Sprintf("exec of the initial task %d", initialTid), e.String())
	}
	ev := *e

	process := &s.header.Process
	path := ev.Path
	if path == "" {
		path = process.Exe
	}
	s.log.Info("spawning initial process", "path", path, "tid", initialTid)
	tr, err := s.host.Spawn(ctx, tracee.SpawnOptions{
		Path:  path,
		Args:  process.Args,
		Env:   process.Environ,
		Dir:   process.Cwd,
		Stdin: s.cfg.Stdin,
	})
	if err != nil {
		return err
	}
	t := s.newTask(initialTid, tr)
	if err := s.registry.AddTask(t, 0); err != nil {
		tr.Kill()
		return err
	}
	if err := s.populate(ctx, t, &ev, recordedMappings(&ev)); err != nil {
		return err
	}
	s.sched.consume(t, ev.Ordinal)
	s.notify(&ev)
	return nil
}

func (s *Session) newTask(tid int32, tr tracee.Tracee) *Task {
	return newTask(tid, tr, s.cfg.StopTimeout, s.retry, s.sched.log)
}

// Registry returns the registry of the live tasks.
func (s *Session) Registry() *Registry { return s.registry }

// Header returns the header of the replayed trace.
func (s *Session) Header() *trace.Header { return s.header }

// Position returns the ordinal of the next event to replay.
func (s *Session) Position() int64 { return s.sched.queue.Position() }

// Result returns the current summary of the session.
func (s *Session) Result() Result {
	r := s.result
	r.Consumed = s.sched.consumed
	r.Skipped = s.sched.skipped
	r.Failed = s.failedTids()
	return r
}

func (s *Session) failedTids() []int32 {
	var tids []int32
	for _, err := range s.errs {
		var e *UnsupportedSyscallError
		if errors.As(err, &e) {
			tids = append(tids, e.Tid)
		}
	}
	return tids
}

func (s *Session) check() error {
	if s.err != nil {
		return s.err
	}
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Step replays the next event that belongs to a scheduled task and returns
// it. It returns io.EOF once the trace is exhausted.
func (s *Session) Step(ctx context.Context) (*trace.Event, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, s.fail(ctx, err)
		}
		e, t, err := s.sched.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if err := s.finish(ctx); err != nil {
					return nil, s.fail(ctx, err)
				}
				return nil, io.EOF
			}
			return nil, s.fail(ctx, err)
		}
		if t == nil {
			return nil, s.fail(ctx, divergence(e, "live task", fmt.Sprintf("no task %d", e.Tid)))
		}
		ev := *e
		if t.failed != nil {
			s.sched.skip(&ev)
			if ev.Kind == trace.Exit {
				s.drop(ctx, t)
			}
			continue
		}

		err = s.dispatch(ctx, t, &ev)
		var unsupportedError *UnsupportedSyscallError
		switch {
		case errors.As(err, &unsupportedError):
			s.log.Warn("task parked", "tid", t.tid, "error", err)
			t.failed = err
			s.errs = append(s.errs, err)
		case err != nil:
			return nil, s.fail(ctx, err)
		}
		s.sched.consume(t, ev.Ordinal)
		s.notify(&ev)
		return &ev, nil
	}
}

func (s *Session) notify(e *trace.Event) {
	if s.cfg.OnEvent != nil {
		s.cfg.OnEvent(e)
	}
}

// RunTo replays events until the next one to replay has the given ordinal.
// It returns io.EOF if the trace ends before.
func (s *Session) RunTo(ctx context.Context, ordinal int64) error {
	for s.Position() < ordinal {
		if _, err := s.Step(ctx); err != nil {
			return err
		}
	}
	return s.check()
}

// Run replays the trace to completion. The unsupported system calls that
// parked tasks are returned together once the trace is exhausted.
func (s *Session) Run(ctx context.Context) (Result, error) {
	for {
		_, err := s.Step(ctx)
		if errors.Is(err, io.EOF) {
			return s.Result(), errors.Join(s.errs...)
		}
		if err != nil {
			return s.Result(), err
		}
	}
}

// SingleStep executes one instruction of the task owning the next event.
func (s *Session) SingleStep(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	e, t, err := s.sched.next()
	if err != nil {
		return err
	}
	if t == nil {
		return s.fail(ctx, divergence(e, "live task", fmt.Sprintf("no task %d", e.Tid)))
	}
	if t.failed != nil {
		return fmt.Errorf("%s is parked: %w", t, t.failed)
	}
	if t.state == AwaitingExit || t.stashed != nil || t.exiting {
		return ErrAtSyscallBoundary
	}
	regs, err := t.Registers()
	if err != nil {
		return s.fail(ctx, err)
	}
	var insn [2]byte
	if err := t.ReadMemory(regs.IP(), insn[:]); err != nil {
		return s.fail(ctx, err)
	}
	if insn == arch.SyscallInsn {
		return ErrAtSyscallBoundary
	}
	if err := t.Resume(tracee.ResumeSingleStep, 0); err != nil {
		return s.fail(ctx, err)
	}
	stop, err := t.Wait(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	if !isSignalStop(arch.SIGTRAP)(stop) {
		t.stashed = &stop
	}
	return nil
}

// finish kills the tasks still alive at the end of the trace.
func (s *Session) finish(ctx context.Context) error {
	if s.result.Status != Running {
		return nil
	}
	s.sched.revoke()
	live := len(s.registry.Tasks()) + len(s.zombies)
	s.result.Status = Exited
	if live > 0 {
		s.result.Status = TraceEnded
		s.log.Info("trace ended with live tasks", "tasks", live)
		s.killAll(ctx)
	}
	return nil
}

// drop kills a parked task whose exit was recorded.
func (s *Session) drop(ctx context.Context, t *Task) {
	s.kill(ctx, t)
	s.registry.RemoveTask(t.tid)
}

func (s *Session) kill(ctx context.Context, t *Task) {
	ctx = context.WithoutCancel(ctx)
	if err := t.tracee.Kill(); err != nil {
		s.log.Debug("kill", "tid", t.tid, "error", err)
		return
	}
	// Tasks may report their exit stop before terminating.
	for i := 0; i < 4; i++ {
		stop, err := t.Wait(ctx)
		if err != nil || stop.Terminated() {
			return
		}
		if err := t.tracee.Resume(tracee.ResumeCont, 0); err != nil {
			return
		}
	}
}

func (s *Session) killAll(ctx context.Context) {
	tasks := s.registry.clear()
	for _, z := range s.zombies {
		tasks = append(tasks, z)
	}
	clear(s.zombies)
	for _, t := range tasks {
		s.kill(ctx, t)
	}
}

// fail tears the session down after a fatal error, which every later call
// returns.
func (s *Session) fail(ctx context.Context, err error) error {
	if s.err != nil {
		return s.err
	}
	logging.Fatal(s.log, "replay failed", "position", s.sched.queue.Position(), "error", err)
	s.sched.revoke()
	s.killAll(ctx)
	s.err = err
	return err
}

// Close kills the tasks still alive. The host is left open.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.sched.revoke()
	s.killAll(context.Background())
	return nil
}
