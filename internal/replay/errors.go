package replay

import (
	"errors"
	"fmt"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/trace"
)

var (
	// ErrAtSyscallBoundary is returned by SingleStep when the next
	// instruction of the task is a system call, or the task is in one.
	ErrAtSyscallBoundary = errors.New("task is at a system call boundary")

	// ErrCheckpointMismatch is returned when restoring a checkpoint taken
	// with a different set of tasks than the live one.
	ErrCheckpointMismatch = errors.New("checkpoint does not match the live tasks")

	// ErrClosed is returned by sessions that were closed, or torn down after a
	// fatal error.
	ErrClosed = errors.New("replay session is closed")
)

// DivergenceError is returned when a task does not behave as recorded.
type DivergenceError struct {
	Ordinal  int64
	Tid      int32
	Expected string
	Observed string
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("replay diverged at event #%d (tid %d): expected %s but observed %s",
		e.Ordinal, e.Tid, e.Expected, e.Observed)
}

func divergence(e *trace.Event, expected, observed string) *DivergenceError {
	return &DivergenceError{
		Ordinal:  e.Ordinal,
		Tid:      e.Tid,
		Expected: expected,
		Observed: observed,
	}
}

// UnsupportedSyscallError is reported when a task makes a system call that
// cannot be replayed. The task stops being scheduled.
type UnsupportedSyscallError struct {
	Ordinal int64
	Tid     int32
	Number  int
	Name    string
}

func (e *UnsupportedSyscallError) Error() string {
	return fmt.Sprintf("unsupported system call %s (%d) at event #%d (tid %d)", e.Name, e.Number, e.Ordinal, e.Tid)
}

func unsupported(e *trace.Event, sys arch.Syscall) *UnsupportedSyscallError {
	return &UnsupportedSyscallError{
		Ordinal: e.Ordinal,
		Tid:     e.Tid,
		Number:  sys.Number,
		Name:    sys.Name,
	}
}

// ResourceExhaustionError is returned when the model of the replayed tasks
// grows past one of the configured limits.
type ResourceExhaustionError struct {
	Resource string
	Limit    int
}

func (e *ResourceExhaustionError) Error() string {
	return fmt.Sprintf("too many %s (limit %d)", e.Resource, e.Limit)
}
