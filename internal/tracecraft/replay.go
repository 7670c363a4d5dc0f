package tracecraft

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/stealthrocket/tracecraft/internal/logging"
	"github.com/stealthrocket/tracecraft/internal/ptrace"
	"github.com/stealthrocket/tracecraft/internal/replay"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"github.com/stealthrocket/tracecraft/internal/tracee"
)

// NewHost returns the tracee host of the build platform.
func NewHost(loggers *logging.Loggers) tracee.Host {
	return ptrace.NewHost(ptrace.Options{Logger: loggers.For(logging.Ptrace)})
}

// Replay coordinates the replay of a trace.
type Replay struct {
	config  *Config
	reader  replay.Trace
	host    tracee.Host
	loggers *logging.Loggers

	stdout io.Writer
	stderr io.Writer
	trace  io.Writer
	strict bool
	stopAt int64
}

// NewReplay creates a Replay of the trace read by reader, executing tasks on
// host.
func NewReplay(config *Config, reader replay.Trace, host tracee.Host) *Replay {
	return &Replay{
		config: config,
		reader: reader,
		host:   host,
		strict: config.Replay.Strict,
		stopAt: -1,
	}
}

// SetStdout sets the io.Writer that receives stdout from the replay.
func (r *Replay) SetStdout(w io.Writer) { r.stdout = w }

// SetStderr sets the io.Writer that receives stderr from the replay.
func (r *Replay) SetStderr(w io.Writer) { r.stderr = w }

// SetTrace sets the io.Writer that receives a line for each replayed event.
func (r *Replay) SetTrace(w io.Writer) { r.trace = w }

// SetLoggers sets the loggers of the engine components.
func (r *Replay) SetLoggers(loggers *logging.Loggers) { r.loggers = loggers }

// SetStrict enables the comparison of system call arguments.
func (r *Replay) SetStrict(strict bool) { r.strict = strict }

// SetStopAt makes Replay stop before the event with the given ordinal. A
// negative ordinal replays the whole trace.
func (r *Replay) SetStopAt(ordinal int64) { r.stopAt = ordinal }

// Start creates a session positioned after the exec of the initial process.
// Each replayed event is passed to observe, which may be nil.
func (r *Replay) Start(ctx context.Context, observe func(*trace.Event)) (*replay.Session, error) {
	cfg, err := r.config.SessionConfig()
	if err != nil {
		return nil, err
	}
	cfg.Strict = r.strict
	cfg.Stdout = r.stdout
	cfg.Stderr = r.stderr
	cfg.Loggers = r.loggers
	cfg.OnEvent = func(e *trace.Event) {
		if r.trace != nil {
			fmt.Fprintln(r.trace, e)
		}
		if observe != nil {
			observe(e)
		}
	}
	return replay.NewSession(ctx, r.reader, r.host, cfg)
}

// Replay replays the trace to completion, or until the stop ordinal.
func (r *Replay) Replay(ctx context.Context) (replay.Result, error) {
	s, err := r.Start(ctx, nil)
	if err != nil {
		return replay.Result{}, err
	}
	defer s.Close()

	if r.stopAt >= 0 {
		err := s.RunTo(ctx, r.stopAt)
		if errors.Is(err, io.EOF) {
			err = nil
		}
		return s.Result(), err
	}
	return s.Run(ctx)
}

// Rerun replays the events before from without reporting them, then passes
// each event with an ordinal in [from, to] to observe once it was replayed.
func (r *Replay) Rerun(ctx context.Context, from, to int64, observe func(*replay.Session, *trace.Event) error) (replay.Result, error) {
	if from < 0 || to < from {
		return replay.Result{}, fmt.Errorf("invalid span of events: [%d, %d]", from, to)
	}
	var s *replay.Session
	var observeErr error
	s, err := r.Start(ctx, func(e *trace.Event) {
		if s == nil || observeErr != nil || e.Ordinal < from || e.Ordinal > to {
			return
		}
		observeErr = observe(s, e)
	})
	if err != nil {
		return replay.Result{}, err
	}
	defer s.Close()

	if from == 0 {
		// The exec of the initial process is consumed by Start.
		e := r.initialExec()
		if err := observe(s, &e); err != nil {
			return s.Result(), err
		}
	}

	for s.Position() <= to && observeErr == nil {
		if _, err := s.Step(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return s.Result(), err
		}
	}
	return s.Result(), observeErr
}

func (r *Replay) initialExec() trace.Event {
	it := r.reader.EventsFrom(0)
	events := make([]trace.Event, 1)
	if n, _ := it.Read(events); n == 1 {
		return events[0]
	}
	return trace.Event{Kind: trace.Exec, Tid: r.reader.Header().Process.InitialTid}
}
