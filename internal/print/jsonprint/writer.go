// Package jsonprint writes streams of values as a sequence of indented JSON
// documents.
package jsonprint

import (
	"encoding/json"
	"io"

	"github.com/stealthrocket/tracecraft/internal/stream"
)

func NewWriter[T any](w io.Writer) stream.WriteCloser[T] {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return &writer[T]{enc: enc}
}

type writer[T any] struct{ enc *json.Encoder }

func (w *writer[T]) Write(values []T) (int, error) {
	for i := range values {
		if err := w.enc.Encode(values[i]); err != nil {
			return i, err
		}
	}
	return len(values), nil
}

// Close is a no-op, documents are written as soon as they are encoded.
func (w *writer[T]) Close() error { return nil }
