// Package yamlprint writes streams of values as a sequence of YAML documents.
package yamlprint

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/stealthrocket/tracecraft/internal/stream"
)

func NewWriter[T any](w io.Writer) stream.WriteCloser[T] {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &writer[T]{enc: enc}
}

type writer[T any] struct {
	enc     *yaml.Encoder
	written bool
}

func (w *writer[T]) Write(values []T) (int, error) {
	for i := range values {
		if err := w.enc.Encode(values[i]); err != nil {
			return i, err
		}
		w.written = true
	}
	return len(values), nil
}

// Close terminates the YAML stream. The encoder refuses to close a stream
// that was never started, so an empty stream is left untouched.
func (w *writer[T]) Close() error {
	if !w.written {
		return nil
	}
	return w.enc.Close()
}
