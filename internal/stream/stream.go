// Package stream moves values of any type in batches, the way io moves bytes.
//
// Trace events are read and printed through these types so that commands can
// chain conversions without materializing the whole trace.
package stream

import "io"

// Reader produces a stream of values of type T.
//
// Read fills values and returns how many were written. It returns io.EOF once
// the stream is exhausted, possibly together with the last values.
type Reader[T any] interface {
	Read(values []T) (int, error)
}

// Writer consumes a stream of values of type T.
type Writer[T any] interface {
	Write(values []T) (int, error)
}

// WriteCloser is a Writer that must be closed to flush buffered values.
type WriteCloser[T any] interface {
	Writer[T]
	io.Closer
}

// NewReader returns a Reader over a copy of values.
func NewReader[T any](values ...T) Reader[T] {
	return &sliceReader[T]{values: append([]T(nil), values...)}
}

type sliceReader[T any] struct{ values []T }

func (r *sliceReader[T]) Read(values []T) (int, error) {
	n := copy(values, r.values)
	r.values = r.values[n:]
	if len(r.values) == 0 {
		return n, io.EOF
	}
	return n, nil
}

// ReadAll drains r. Reaching io.EOF is not an error.
func ReadAll[T any](r Reader[T]) ([]T, error) {
	var values []T
	var buf [64]T
	for {
		n, err := r.Read(buf[:])
		values = append(values, buf[:n]...)
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			return values, err
		}
	}
}

// Copy writes the values read from r to w until r is exhausted, and returns
// the number of values written.
func Copy[T any](w Writer[T], r Reader[T]) (int64, error) {
	var buf [32]T
	var total int64
	for {
		n, err := r.Read(buf[:])
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			total += int64(wn)
			switch {
			case werr != nil:
				return total, werr
			case wn < n:
				return total, io.ErrShortWrite
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
