// Package textprint writes streams of values as text for terminals.
package textprint

import (
	"bufio"
	"fmt"
	"io"

	"github.com/stealthrocket/tracecraft/internal/stream"
)

const rule = "--------------------------------------------------------------------------------\n"

type WriterOption[T any] func(*writer[T])

// Separator sets the text written between two values, a horizontal rule by
// default.
func Separator[T any](s string) WriterOption[T] {
	return func(w *writer[T]) { w.separator = s }
}

// NewWriter returns a writer printing values with the %v verb, which lets
// types implementing fmt.Formatter control their own layout.
func NewWriter[T any](w io.Writer, opts ...WriterOption[T]) stream.WriteCloser[T] {
	tw := &writer[T]{output: bufio.NewWriter(w), separator: rule}
	for _, opt := range opts {
		opt(tw)
	}
	return tw
}

type writer[T any] struct {
	output    *bufio.Writer
	separator string
	written   bool
}

func (w *writer[T]) Write(values []T) (int, error) {
	for i, v := range values {
		if w.written {
			if _, err := w.output.WriteString(w.separator); err != nil {
				return i, err
			}
		}
		w.written = true
		if _, err := fmt.Fprintf(w.output, "%v", v); err != nil {
			return i, err
		}
	}
	return len(values), nil
}

func (w *writer[T]) Close() error { return w.output.Flush() }
