//go:build linux && amd64

package ptrace

import (
	"runtime"
	"sync"
)

// executor runs functions on a dedicated OS thread.
type executor struct {
	calls chan func()
	once  sync.Once
	done  chan struct{}
}

func newExecutor() *executor {
	e := &executor{
		calls: make(chan func()),
		done:  make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *executor) run() {
	defer close(e.done)
	// The thread is never unlocked: when the goroutine returns the thread
	// exits, and the kernel kills the tracees attached with PTRACE_O_EXITKILL.
	runtime.LockOSThread()
	for f := range e.calls {
		f()
	}
}

func (e *executor) do(f func() error) error {
	errc := make(chan error, 1)
	e.calls <- func() { errc <- f() }
	return <-errc
}

func (e *executor) close() {
	e.once.Do(func() {
		close(e.calls)
		<-e.done
	})
}
