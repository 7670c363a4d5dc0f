// Package buffer provides pooled byte buffers, used to decode trace frames
// and to capture the memory of tasks.
package buffer

import "sync"

// DefaultSize is the size of a memory page. Buffer capacities are rounded up
// to a multiple of it.
const DefaultSize = 4096

// Buffer holds a byte slice that can be returned to a Pool.
type Buffer struct{ Data []byte }

// Len returns the length of the buffer.
func (b *Buffer) Len() int64 { return int64(len(b.Data)) }

// Pool is a pool of buffers. The zero value is ready to use.
type Pool struct{ pool sync.Pool }

// Get returns a buffer of n bytes, the content of the buffer is undefined.
func (p *Pool) Get(n int64) *Buffer {
	if b, _ := p.pool.Get().(*Buffer); b != nil {
		if n <= int64(cap(b.Data)) {
			b.Data = b.Data[:n]
			return b
		}
		p.pool.Put(b)
	}
	return New(n)
}

// Put returns b to the pool. b must not be used after the call.
func (p *Pool) Put(b *Buffer) {
	if b != nil {
		p.pool.Put(b)
	}
}

// New allocates a buffer of n bytes.
func New(n int64) *Buffer {
	return &Buffer{Data: make([]byte, n, Align(n, DefaultSize))}
}

// Align rounds n up to a multiple of to.
func Align(n, to int64) int64 {
	return ((n + (to - 1)) / to) * to
}
