package replay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stealthrocket/tracecraft/internal/trace"
)

// scheduler hands the turn to the task that owns the head event of the trace.
// Only the task holding the turn may be resumed.
type scheduler struct {
	registry *Registry
	queue    *eventQueue
	current  *Task
	consumed int64
	skipped  int64
	log      *slog.Logger
}

// next returns the head event and the task it names. The task is nil if the
// event names a tid that is not live.
func (sc *scheduler) next() (*trace.Event, *Task, error) {
	e, err := sc.queue.Peek()
	if err != nil {
		return nil, nil, err
	}
	t, _ := sc.registry.Task(e.Tid)
	if sc.current != nil && sc.current != t {
		sc.current.turn = false
	}
	sc.current = t
	if t != nil {
		t.turn = true
	}
	return e, t, nil
}

// consume removes the head event, which was replayed by t.
func (sc *scheduler) consume(t *Task, ordinal int64) {
	sc.queue.Pop()
	t.cursor = ordinal
	sc.consumed++
}

// skip removes the head event without replaying it.
func (sc *scheduler) skip(e *trace.Event) {
	sc.log.Debug("skipped", "ordinal", e.Ordinal, "tid", e.Tid, "kind", e.Kind)
	sc.queue.Pop()
	sc.skipped++
}

// revoke takes the turn away from the current task.
func (sc *scheduler) revoke() {
	if sc.current != nil {
		sc.current.turn = false
		sc.current = nil
	}
}

func (s *Session) dispatch(ctx context.Context, t *Task, e *trace.Event) error {
	switch e.Kind {
	case trace.SyscallEntry:
		return s.syscallEntry(ctx, t, e)
	case trace.SyscallExit:
		return s.syscallExit(ctx, t, e)
	case trace.Signal:
		return s.signalEvent(ctx, t, e)
	case trace.Clone:
		return s.cloneEvent(ctx, t, e)
	case trace.Exec:
		return s.execEvent(ctx, t, e)
	case trace.Exit:
		return s.exitEvent(ctx, t, e)
	default:
		return divergence(e, "known event kind", fmt.Sprintf("event kind %d", e.Kind))
	}
}
