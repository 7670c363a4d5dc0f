package replay

import (
	"errors"
	"io"

	"github.com/stealthrocket/tracecraft/internal/trace"
)

// lookahead bounds the number of events searched when a handler needs to know
// how a system call ends before it starts.
const lookahead = 4096

const queueReadSize = 64

// eventQueue buffers the events of a trace so that the scheduler can peek at
// the head and handlers can look ahead.
type eventQueue struct {
	events *trace.EventReader
	buffer []trace.Event
	eof    bool
}

func newEventQueue(events *trace.EventReader) *eventQueue {
	return &eventQueue{events: events}
}

// fill reads events until the buffer holds at least n, or the end of the
// trace is reached.
func (q *eventQueue) fill(n int) error {
	for len(q.buffer) < n && !q.eof {
		size := len(q.buffer)
		q.buffer = append(q.buffer, make([]trace.Event, queueReadSize)...)
		r, err := q.events.Read(q.buffer[size:])
		q.buffer = q.buffer[:size+r]
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return err
			}
			q.eof = true
		}
	}
	return nil
}

// Peek returns the head event, or io.EOF if all events were consumed.
func (q *eventQueue) Peek() (*trace.Event, error) {
	return q.PeekAt(0)
}

// PeekAt returns the i-th event after the head.
func (q *eventQueue) PeekAt(i int) (*trace.Event, error) {
	if err := q.fill(i + 1); err != nil {
		return nil, err
	}
	if i >= len(q.buffer) {
		return nil, io.EOF
	}
	return &q.buffer[i], nil
}

// NextFor returns the first event of a task following the head, or nil if
// there is none within the lookahead window.
func (q *eventQueue) NextFor(tid int32) (*trace.Event, error) {
	for i := 1; i < lookahead; i++ {
		e, err := q.PeekAt(i)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, err
		}
		if e.Tid == tid {
			return e, nil
		}
	}
	return nil, nil
}

// Pop removes the head event.
func (q *eventQueue) Pop() {
	if len(q.buffer) > 0 {
		q.buffer[0] = trace.Event{}
		q.buffer = q.buffer[1:]
	}
}

// Position returns the ordinal of the head event.
func (q *eventQueue) Position() int64 {
	return q.events.Position() - int64(len(q.buffer))
}

// SeekOrdinal positions the head at the given ordinal.
func (q *eventQueue) SeekOrdinal(ordinal int64) {
	q.events.SeekOrdinal(ordinal)
	q.buffer = nil
	q.eof = false
}
