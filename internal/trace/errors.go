package trace

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBadMagic           = errors.New("not a trace header")
	ErrUnsupportedVersion = errors.New("unsupported trace format version")
	ErrUnsupportedArch    = errors.New("unsupported architecture")
	ErrSyscallbuf         = errors.New("traces recorded with syscall buffering are not supported")
	ErrChecksum           = errors.New("checksum mismatch")
	ErrTruncated          = errors.New("truncated")
	ErrOrdinal            = errors.New("event ordinal out of sequence")
	ErrBlobRange          = errors.New("blob reference out of range")
)

// FormatError is returned when a trace is malformed, truncated, or has an
// unsupported version.
type FormatError struct {
	// Path of the file in which the error was found.
	Path string
	// Byte offset in the file, or -1 if the error is not located.
	Offset int64
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	var s strings.Builder
	s.WriteString("trace format error: ")
	s.WriteString(e.Path)
	if e.Offset >= 0 {
		fmt.Fprintf(&s, " at offset %d", e.Offset)
	}
	if e.Reason != "" {
		s.WriteString(": ")
		s.WriteString(e.Reason)
	}
	if e.Err != nil {
		s.WriteString(": ")
		s.WriteString(e.Err.Error())
	}
	return s.String()
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatError(path string, offset int64, err error, reason string, args ...any) *FormatError {
	return &FormatError{
		Path:   path,
		Offset: offset,
		Reason: fmt.Sprintf(reason, args...),
		Err:    err,
	}
}

// decodeSafely runs a decoding function, turning panics caused by reading
// malformed flatbuffers into errors.
func decodeSafely(decode func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed table: %v", r)
		}
	}()
	return decode()
}
