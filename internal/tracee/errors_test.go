package tracee_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stealthrocket/tracecraft/internal/assert"
	"github.com/stealthrocket/tracecraft/internal/tracee"
	"golang.org/x/sys/unix"
)

func TestAttachmentError(t *testing.T) {
	tests := []struct {
		err       error
		transient bool
		gone      bool
	}{
		{err: unix.EINTR, transient: true},
		{err: unix.EAGAIN, transient: true},
		{err: unix.EBUSY, transient: true},
		{err: fmt.Errorf("wait4: %w", unix.EINTR), transient: true},
		{err: unix.ESRCH, gone: true},
		{err: unix.ECHILD, gone: true},
		{err: unix.EPERM},
		{err: errors.New("other")},
	}

	for _, test := range tests {
		t.Run(test.err.Error(), func(t *testing.T) {
			err := tracee.Errorf(42, "ptrace(PTRACE_CONT)", test.err)
			e := assert.ErrorAs[*tracee.AttachmentError](t, err)
			assert.Equal(t, e.Tid, 42)
			assert.Equal(t, e.Transient(), test.transient)
			assert.Equal(t, e.Gone(), test.gone)
			assert.Error(t, err, test.err)
		})
	}
}

func TestAttachmentErrorNotWrappedTwice(t *testing.T) {
	err := tracee.Errorf(1, "first", unix.ESRCH)
	err = tracee.Errorf(2, "second", fmt.Errorf("context: %w", err))
	e := assert.ErrorAs[*tracee.AttachmentError](t, err)
	assert.Equal(t, e.Tid, 1)
	assert.Equal(t, e.Op, "first")
	assert.OK(t, tracee.Errorf(1, "nothing", nil))
}

func TestStopString(t *testing.T) {
	assert.Equal(t, tracee.Stop{Kind: tracee.EventStop, Event: tracee.EventClone}.String(), "event-stop(clone)")
	assert.Equal(t, tracee.Stop{Kind: tracee.SignalStop, Signal: 11}.String(), "signal-stop(11)")
	assert.Equal(t, tracee.Stop{Kind: tracee.SyscallStop}.String(), "syscall-stop")
	assert.Equal(t, tracee.Stop{Kind: tracee.Exited}.Terminated(), true)
	assert.Equal(t, tracee.Stop{Kind: tracee.EventStop, Event: tracee.EventExit}.Is(tracee.EventExit), true)
}
