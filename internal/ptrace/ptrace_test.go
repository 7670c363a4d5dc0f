//go:build linux && amd64

package ptrace_test

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/assert"
	"github.com/stealthrocket/tracecraft/internal/ptrace"
	"github.com/stealthrocket/tracecraft/internal/tracee"
	"golang.org/x/sys/unix"
)

func spawn(t *testing.T, ctx context.Context, h *ptrace.Host, path string, args ...string) tracee.Tracee {
	t.Helper()
	path, err := exec.LookPath(path)
	if err != nil {
		t.Skip(err)
	}
	p, err := h.Spawn(ctx, tracee.SpawnOptions{Path: path, Args: append([]string{path}, args...)})
	if err != nil {
		if errors.Is(err, unix.EPERM) || errors.Is(err, unix.ENOSYS) {
			t.Skip("ptrace is not permitted:", err)
		}
		t.Fatal(err)
	}
	return p
}

func TestTraceSyscalls(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h := ptrace.NewHost(ptrace.Options{})
	defer h.Close()

	p := spawn(t, ctx, h, "true")

	var regs arch.Registers
	entries := 0
	entry := true
	sawExitGroup := false
	for {
		assert.OK(t, p.Resume(tracee.ResumeSyscall, 0))
		stop, err := p.Wait(ctx)
		assert.OK(t, err)

		switch stop.Kind {
		case tracee.SyscallStop:
			assert.OK(t, p.GetRegs(&regs))
			if entry {
				entries++
				if regs.SyscallNo() == arch.SysExitGroup {
					sawExitGroup = true
				}
			}
			entry = !entry
		case tracee.EventStop:
			assert.Equal(t, stop.Event, tracee.EventExit)
			status, err := p.EventMsg()
			assert.OK(t, err)
			assert.Equal(t, unix.WaitStatus(status).ExitStatus(), 0)
		case tracee.Exited:
			assert.Equal(t, unix.WaitStatus(stop.Status).ExitStatus(), 0)
			assert.Less(t, 0, entries)
			assert.Equal(t, sawExitGroup, true)
			return
		default:
			t.Fatalf("unexpected stop: %s", stop)
		}
	}
}

func TestReadWriteMemory(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h := ptrace.NewHost(ptrace.Options{})
	defer h.Close()

	p := spawn(t, ctx, h, "true")
	defer p.Kill()

	var regs arch.Registers
	assert.OK(t, p.GetRegs(&regs))

	b := make([]byte, 8)
	n, err := p.ReadMemory(regs.SP(), b)
	assert.OK(t, err)
	assert.Equal(t, n, len(b))

	want := []byte("tracecft")
	_, err = p.WriteMemory(regs.SP(), want)
	assert.OK(t, err)
	_, err = p.ReadMemory(regs.SP(), b)
	assert.OK(t, err)
	assert.Bytes(t, b, want)
}

func TestWaitCanceled(t *testing.T) {
	h := ptrace.NewHost(ptrace.Options{})
	defer h.Close()

	p := spawn(t, context.Background(), h, "sleep", "10")
	defer p.Kill()

	assert.OK(t, p.Resume(tracee.ResumeCont, 0))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := p.Wait(ctx)
	assert.Error(t, err, context.DeadlineExceeded)
}
