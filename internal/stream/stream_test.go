package stream_test

import (
	"errors"
	"io"
	"strconv"
	"testing"

	"github.com/stealthrocket/tracecraft/internal/assert"
	"github.com/stealthrocket/tracecraft/internal/stream"
)

func ordinals(n int) []int64 {
	values := make([]int64, n)
	for i := range values {
		values[i] = int64(i)
	}
	return values
}

// batches returns a reader serving one batch per call, including empty ones.
func batches[T any](batches ...[]T) stream.Reader[T] {
	return &batchReader[T]{batches: batches}
}

type batchReader[T any] struct{ batches [][]T }

func (r *batchReader[T]) Read(values []T) (int, error) {
	if len(r.batches) == 0 {
		return 0, io.EOF
	}
	n := copy(values, r.batches[0])
	if r.batches[0] = r.batches[0][n:]; len(r.batches[0]) == 0 {
		r.batches = r.batches[1:]
	}
	return n, nil
}

type collector[T any] struct{ values []T }

func (w *collector[T]) Write(values []T) (int, error) {
	w.values = append(w.values, values...)
	return len(values), nil
}

func TestReadAll(t *testing.T) {
	values := ordinals(200)

	read, err := stream.ReadAll(stream.NewReader(values...))
	assert.OK(t, err)
	assert.EqualAll(t, read, values)
}

func TestIterator(t *testing.T) {
	values := ordinals(150)

	read, err := stream.Values(stream.Iter(stream.NewReader(values...)))
	assert.OK(t, err)
	assert.EqualAll(t, read, values)
}

func TestIteratorEmptyBatches(t *testing.T) {
	r := batches([]int64{}, []int64{0}, []int64{}, []int64{1, 2, 3}, []int64{})

	read, err := stream.Values(stream.Iter(r))
	assert.OK(t, err)
	assert.EqualAll(t, read, ordinals(4))
}

func TestCopy(t *testing.T) {
	values := ordinals(95)
	w := new(collector[int64])

	n, err := stream.Copy[int64](w, stream.NewReader(values...))
	assert.OK(t, err)
	assert.Equal(t, n, int64(len(values)))
	assert.EqualAll(t, w.values, values)
}

func TestCopyEmpty(t *testing.T) {
	w := new(collector[int64])

	n, err := stream.Copy[int64](w, batches([]int64{}, []int64{}))
	assert.OK(t, err)
	assert.Equal(t, n, 0)
	assert.Equal(t, len(w.values), 0)
}

func TestConvertReader(t *testing.T) {
	r := stream.ConvertReader(stream.NewReader[int64](1, 2, 3), func(v int64) (string, error) {
		return "#" + strconv.FormatInt(v, 10), nil
	})
	values, err := stream.ReadAll(r)
	assert.OK(t, err)
	assert.EqualAll(t, values, []string{"#1", "#2", "#3"})
}

func TestConvertReaderStop(t *testing.T) {
	r := stream.ConvertReader(stream.NewReader(ordinals(10)...), func(v int64) (int64, error) {
		if v > 3 {
			return 0, io.EOF
		}
		return v, nil
	})
	w := new(collector[int64])

	n, err := stream.Copy[int64](w, r)
	assert.OK(t, err)
	assert.Equal(t, n, 4)
	assert.EqualAll(t, w.values, ordinals(4))
}

func TestConvertReaderError(t *testing.T) {
	errOdd := errors.New("odd")
	r := stream.ConvertReader(stream.NewReader[int64](2, 4, 5, 6), func(v int64) (int64, error) {
		if v%2 != 0 {
			return 0, errOdd
		}
		return v, nil
	})
	values, err := stream.ReadAll(r)
	assert.Error(t, err, errOdd)
	assert.EqualAll(t, values, []int64{2, 4})
}
