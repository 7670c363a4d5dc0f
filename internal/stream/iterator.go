package stream

import "io"

// Iterator walks the values of a Reader one at a time.
//
//	it := stream.Iter(r)
//	for it.Next() {
//		v := it.Value()
//	}
//	if err := it.Err(); err != nil {
//	}
type Iterator[T any] struct {
	r     Reader[T]
	buf   []T
	index int
	err   error
}

// Iter returns an Iterator reading from r.
func Iter[T any](r Reader[T]) *Iterator[T] {
	return &Iterator[T]{r: r, index: -1}
}

// Next advances to the next value, reporting false when there are no more
// values or an error occurred.
func (it *Iterator[T]) Next() bool {
	if it.index++; it.index < len(it.buf) {
		return true
	}
	for it.err == nil {
		if it.buf == nil {
			it.buf = make([]T, 64)
		}
		n, err := it.r.Read(it.buf[:cap(it.buf)])
		it.buf, it.index, it.err = it.buf[:n], 0, err
		if n > 0 {
			return true
		}
	}
	return false
}

// Value returns the current value. It is valid only after Next returned true.
func (it *Iterator[T]) Value() T { return it.buf[it.index] }

// Err returns the error that stopped the iteration, or nil at the end of the
// stream.
func (it *Iterator[T]) Err() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}

// Values collects the remaining values of it.
func Values[T any](it *Iterator[T]) ([]T, error) {
	var values []T
	for it.Next() {
		values = append(values, it.Value())
	}
	return values, it.Err()
}
