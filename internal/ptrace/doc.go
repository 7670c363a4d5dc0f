// Package ptrace implements the tracee facade on Linux.
//
// Linux ties tracees to the thread that attached them, so every ptrace
// request and wait is executed by a single goroutine locked to its OS thread.
package ptrace
