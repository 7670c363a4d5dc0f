package tracee

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// AttachmentError reports a failure to control a traced task: attaching,
// detaching, resuming, signaling, or accessing its state.
type AttachmentError struct {
	Tid int
	Op  string
	Err error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("tracee %d: %s: %v", e.Tid, e.Op, e.Err)
}

func (e *AttachmentError) Unwrap() error { return e.Err }

// Transient reports whether retrying the operation may succeed.
func (e *AttachmentError) Transient() bool {
	return IsTransient(e.Err)
}

// Gone reports whether the task no longer exists.
func (e *AttachmentError) Gone() bool {
	return errors.Is(e.Err, unix.ESRCH) || errors.Is(e.Err, unix.ECHILD)
}

// IsTransient reports whether err is caused by an interruption or a
// temporary unavailability of the kernel resource.
func IsTransient(err error) bool {
	return errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EBUSY)
}

// Errorf constructs an AttachmentError.
func Errorf(tid int, op string, err error) error {
	if err == nil {
		return nil
	}
	var attachmentError *AttachmentError
	if errors.As(err, &attachmentError) {
		return err
	}
	return &AttachmentError{Tid: tid, Op: op, Err: err}
}
