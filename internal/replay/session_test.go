package replay_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/assert"
	"github.com/stealthrocket/tracecraft/internal/replay"
	"github.com/stealthrocket/tracecraft/internal/replay/replaytest"
	"github.com/stealthrocket/tracecraft/internal/trace"
)

const replayTidBase = 5000

// record runs a program on a recording kernel and returns the trace it
// produced, along with the kernel to compare outputs with.
func record(t *testing.T, path string, opts ...replaytest.Option) (*trace.Reader, *replaytest.Kernel) {
	t.Helper()
	k := replaytest.NewKernel(append([]replaytest.Option{replaytest.TidBase(100)}, opts...)...)
	dir := t.TempDir()
	_, err := replaytest.Record(dir, k, path, trace.WriterOptions{Compression: trace.Zstd})
	assert.OK(t, err)
	r, err := trace.Open(dir, trace.Options{})
	assert.OK(t, err)
	t.Cleanup(func() { r.Close() })
	return r, k
}

type replayer struct {
	kernel  *replaytest.Kernel
	session *replay.Session
	stdout  bytes.Buffer
	events  []trace.Event
}

func startReplay(t *testing.T, r *trace.Reader, config replay.Config, opts ...replaytest.Option) *replayer {
	t.Helper()
	rp := &replayer{
		kernel: replaytest.NewKernel(append([]replaytest.Option{replaytest.TidBase(replayTidBase)}, opts...)...),
	}
	config.Stdout = &rp.stdout
	onEvent := config.OnEvent
	config.OnEvent = func(e *trace.Event) {
		rp.events = append(rp.events, *e)
		if onEvent != nil {
			onEvent(e)
		}
	}
	s, err := replay.NewSession(context.Background(), r, rp.kernel, config)
	assert.OK(t, err)
	t.Cleanup(func() { s.Close() })
	rp.session = s
	return rp
}

func helloProgram(path, msg string, status int) *replaytest.Program {
	p := replaytest.NewProgram(path)
	buf := p.Data([]byte(msg))
	p.Syscall(arch.SysWrite, 1, buf, uint64(len(msg)))
	p.Syscall(arch.SysExitGroup, uint64(status))
	return p
}

func TestReplayHello(t *testing.T) {
	hello := helloProgram("/bin/hello", "hello world\n", 0)
	r, rec := record(t, hello.Path, replaytest.Programs(hello))
	assert.Equal(t, rec.Stdout(), "hello world\n")

	rp := startReplay(t, r, replay.Config{}, replaytest.Programs(hello))
	res, err := rp.session.Run(context.Background())
	assert.OK(t, err)

	assert.Equal(t, res.Status, replay.Exited)
	assert.Equal(t, res.ExitStatus, int32(0))
	assert.Equal(t, res.Consumed, r.NumEvents())
	assert.Equal(t, res.Skipped, int64(0))
	assert.Equal(t, rp.stdout.String(), "hello world\n")
	// The write was not executed again.
	assert.Equal(t, rp.kernel.Stdout(), "")
	assert.Equal(t, len(rp.kernel.Live()), 0)

	for i, e := range rp.events {
		assert.Equal(t, e.Ordinal, int64(i))
	}
}

func TestReplayExitStatus(t *testing.T) {
	prog := helloProgram("/bin/false", "", 3)
	r, _ := record(t, prog.Path, replaytest.Programs(prog))

	rp := startReplay(t, r, replay.Config{Strict: true}, replaytest.Programs(prog))
	res, err := rp.session.Run(context.Background())
	assert.OK(t, err)
	assert.Equal(t, res.Status, replay.Exited)
	assert.Equal(t, res.ExitStatus, int32(3<<8))
}

func randomProgram() *replaytest.Program {
	p := replaytest.NewProgram("/bin/random")
	buf := p.Bytes(32)
	p.Syscall(arch.SysGetrandom, buf, 16, 0)
	p.Syscall(arch.SysClockGettime, 0, buf+16)
	p.Syscall(arch.SysWrite, 1, buf, 32)
	p.Syscall(arch.SysExitGroup, 0)
	return p
}

func TestReplayNondeterministicResults(t *testing.T) {
	prog := randomProgram()
	r, rec := record(t, prog.Path, replaytest.Programs(prog), replaytest.Seed(1))

	rp := startReplay(t, r, replay.Config{Strict: true}, replaytest.Programs(prog), replaytest.Seed(42))
	_, err := rp.session.Run(context.Background())
	assert.OK(t, err)
	assert.Bytes(t, rp.stdout.Bytes(), []byte(rec.Stdout()))
}

// threadsProgram starts a thread sharing the address space of the leader. The
// leader publishes a value in memory that the thread waits for and prints.
func threadsProgram() (prog *replaytest.Program, shared uint64) {
	p := replaytest.NewProgram("/bin/threads")
	shared = p.Bytes(8)
	var child uint64

	const flags = arch.CLONE_VM | arch.CLONE_FS | arch.CLONE_FILES | arch.CLONE_SIGHAND | arch.CLONE_THREAD
	p.Syscall(arch.SysClone, flags, replaytest.StackPointer-8*arch.PageSize)
	p.JumpIfZero(func() uint64 { return child })
	p.Syscall(arch.SysSchedYield)
	p.Op(func(c *replaytest.CPU) {
		c.Store64(shared, 42)
		c.Regs.SetSyscall(arch.SysGetpid)
	})
	p.Insn()
	p.Syscall(arch.SysExit, 0)

	// Reading the value and entering the next system call happen within one
	// scheduling quantum.
	child = p.Label()
	p.Syscall(arch.SysSchedYield)
	loop := p.Op(func(c *replaytest.CPU) {
		if c.Load64(shared) != 0 {
			c.Regs.SetSyscall(arch.SysWrite, 1, shared, 8)
		} else {
			c.Regs.SetSyscall(arch.SysSchedYield)
		}
	})
	p.Insn()
	p.Op(func(c *replaytest.CPU) {
		if c.Regs.OrigRax == arch.SysSchedYield {
			c.Jump(loop)
		}
	})
	p.Syscall(arch.SysExit, 0)
	return p, shared
}

func TestReplaySharedMemoryVisibility(t *testing.T) {
	prog, shared := threadsProgram()
	r, rec := record(t, prog.Path, replaytest.Programs(prog))
	initialTid := r.Header().Process.InitialTid

	var rp *replayer
	var publishedAt *trace.Event
	rp = startReplay(t, r, replay.Config{
		OnEvent: func(e *trace.Event) {
			if rp == nil || publishedAt != nil {
				return
			}
			b, err := rp.kernel.Memory(replayTidBase, shared, 8)
			if err == nil && b[0] == 42 {
				ev := *e
				publishedAt = &ev
			}
		},
	}, replaytest.Programs(prog))

	res, err := rp.session.Run(context.Background())
	assert.OK(t, err)
	assert.Equal(t, res.Status, replay.Exited)
	assert.Bytes(t, rp.stdout.Bytes(), []byte(rec.Stdout()))

	if publishedAt == nil {
		t.Fatal("the value was never published")
	}
	assert.Equal(t, publishedAt.Tid, initialTid)
	assert.Equal(t, publishedAt.Kind, trace.SyscallEntry)
	assert.Equal(t, publishedAt.Syscall, arch.SysGetpid)
	assert.Equal(t, len(rp.kernel.Live()), 0)
}

func TestReplayFork(t *testing.T) {
	p := replaytest.NewProgram("/bin/fork")
	parent, child := p.Data([]byte("parent\n")), p.Data([]byte("child\n"))
	var inChild uint64
	p.Syscall(arch.SysFork)
	p.JumpIfZero(func() uint64 { return inChild })
	p.Syscall(arch.SysWrite, 1, parent, 7)
	p.Syscall(arch.SysExitGroup, 0)
	inChild = p.Syscall(arch.SysWrite, 1, child, 6)
	p.Syscall(arch.SysExitGroup, 1)

	r, rec := record(t, p.Path, replaytest.Programs(p))
	rp := startReplay(t, r, replay.Config{}, replaytest.Programs(p))
	res, err := rp.session.Run(context.Background())
	assert.OK(t, err)
	assert.Equal(t, res.Status, replay.Exited)
	assert.Equal(t, res.ExitStatus, int32(0))
	assert.Equal(t, rp.stdout.String(), rec.Stdout())
}

func TestReplayForkSharedAnonymousMapping(t *testing.T) {
	p := replaytest.NewProgram("/bin/shmfork")
	slot := p.Bytes(8)
	var inChild uint64
	p.Syscall(arch.SysMmap, 0, arch.PageSize, arch.PROT_READ|arch.PROT_WRITE, arch.MAP_SHARED|arch.MAP_ANONYMOUS, ^uint64(0), 0)
	p.Op(func(c *replaytest.CPU) { c.Store64(slot, c.Regs.Rax) })
	p.Syscall(arch.SysFork)
	p.JumpIfZero(func() uint64 { return inChild })
	// The parent waits for the child to fill the shared page.
	loop := p.Op(func(c *replaytest.CPU) {
		addr := c.Load64(slot)
		if c.Load(addr, 1)[0] != 0 {
			c.Regs.SetSyscall(arch.SysWrite, 1, addr, 7)
		} else {
			c.Regs.SetSyscall(arch.SysSchedYield)
		}
	})
	p.Insn()
	p.Op(func(c *replaytest.CPU) {
		if c.Regs.OrigRax == arch.SysSchedYield {
			c.Jump(loop)
		}
	})
	p.Syscall(arch.SysExitGroup, 0)
	inChild = p.Op(func(c *replaytest.CPU) {
		c.Store(c.Load64(slot), []byte("shared\n"))
		c.Regs.SetSyscall(arch.SysExitGroup, 0)
	})
	p.Insn()

	r, rec := record(t, p.Path, replaytest.Programs(p))
	assert.Equal(t, rec.Stdout(), "shared\n")

	var rp *replayer
	var mapped uint64
	var seen []byte
	rp = startReplay(t, r, replay.Config{
		OnEvent: func(e *trace.Event) {
			switch {
			case e.Kind == trace.SyscallExit && e.Syscall == arch.SysMmap:
				mapped = uint64(e.Result)
			case e.Kind == trace.SyscallEntry && e.Syscall == arch.SysWrite:
				seen, _ = rp.kernel.Memory(replayTidBase, mapped, 7)
			}
		},
	}, replaytest.Programs(p))
	res, err := rp.session.Run(context.Background())
	assert.OK(t, err)
	assert.Equal(t, res.Status, replay.Exited)
	assert.Equal(t, res.Consumed, r.NumEvents())
	assert.Equal(t, rp.stdout.String(), "shared\n")
	assert.Equal(t, string(seen), "shared\n")
}

func TestReplayExec(t *testing.T) {
	hello := helloProgram("/bin/hello", "hello from exec\n", 0)
	p := replaytest.NewProgram("/bin/launcher")
	path := p.String(hello.Path)
	p.Syscall(arch.SysExecve, path, 0, 0)
	p.Syscall(arch.SysExitGroup, 1)

	r, _ := record(t, p.Path, replaytest.Programs(p, hello))
	rp := startReplay(t, r, replay.Config{}, replaytest.Programs(p, hello))
	res, err := rp.session.Run(context.Background())
	assert.OK(t, err)
	assert.Equal(t, res.ExitStatus, int32(0))
	assert.Equal(t, rp.stdout.String(), "hello from exec\n")
}

func TestReplayFileMapping(t *testing.T) {
	const content = "mapped file content\n"
	p := replaytest.NewProgram("/bin/mapfile")
	path := p.String("/etc/motd")
	p.Syscall(arch.SysOpenat, arch.Word(arch.AT_FDCWD), path, arch.O_RDONLY)
	p.Op(func(c *replaytest.CPU) {
		c.Regs.SetSyscall(arch.SysMmap, 0, arch.PageSize, arch.PROT_READ, arch.MAP_PRIVATE, c.Regs.Rax, 0)
	})
	p.Insn()
	p.Op(func(c *replaytest.CPU) {
		c.Regs.SetSyscall(arch.SysWrite, 1, c.Regs.Rax, uint64(len(content)))
	})
	p.Insn()
	p.Syscall(arch.SysExitGroup, 0)

	file := replaytest.File("/etc/motd", []byte(content))
	r, rec := record(t, p.Path, replaytest.Programs(p), file)
	assert.Equal(t, rec.Stdout(), content)

	rp := startReplay(t, r, replay.Config{}, replaytest.Programs(p), file)
	var mapped []replay.Mapping
	for {
		e, err := rp.session.Step(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		assert.OK(t, err)
		if e.Kind == trace.SyscallExit && e.Syscall == arch.SysMmap {
			task, ok := rp.session.Registry().Task(e.Tid)
			assert.Equal(t, ok, true)
			space, _ := rp.session.Registry().Space(task.Space())
			m, ok := space.Find(uint64(e.Result))
			assert.Equal(t, ok, true)
			mapped = append(mapped, m)
		}
	}
	assert.Equal(t, rp.stdout.String(), content)
	assert.Equal(t, len(mapped), 1)
	assert.Equal(t, mapped[0].Backing, trace.File)
	assert.Equal(t, mapped[0].Path, "/etc/motd")
}

func TestReplayUnsupportedSyscall(t *testing.T) {
	p := replaytest.NewProgram("/bin/clone3")
	a, b := p.Data([]byte("a")), p.Data([]byte("b"))
	p.Syscall(arch.SysWrite, 1, a, 1)
	p.Syscall(arch.SysClone3, 0, 0)
	p.Syscall(arch.SysWrite, 1, b, 1)
	p.Syscall(arch.SysExitGroup, 0)

	r, rec := record(t, p.Path, replaytest.Programs(p))
	assert.Equal(t, rec.Stdout(), "ab")

	rp := startReplay(t, r, replay.Config{}, replaytest.Programs(p))
	res, err := rp.session.Run(context.Background())
	unsupported := assert.ErrorAs[*replay.UnsupportedSyscallError](t, err)
	assert.Equal(t, unsupported.Name, "clone3")
	assert.Equal(t, unsupported.Tid, r.Header().Process.InitialTid)

	assert.Equal(t, res.Status, replay.Exited)
	assert.EqualAll(t, res.Failed, []int32{r.Header().Process.InitialTid})
	// clone3 exit, write entry and exit, exit_group entry, exit.
	assert.Equal(t, res.Skipped, int64(5))
	assert.Equal(t, rp.stdout.String(), "a")
	assert.Equal(t, len(rp.kernel.Live()), 0)
}

func TestReplaySyscallClassOverride(t *testing.T) {
	prog := randomProgram()
	r, _ := record(t, prog.Path, replaytest.Programs(prog))

	table, err := arch.Syscalls().WithOverrides(map[string]arch.Class{"getrandom": arch.Unsupported})
	assert.OK(t, err)
	rp := startReplay(t, r, replay.Config{Syscalls: table}, replaytest.Programs(prog))
	res, err := rp.session.Run(context.Background())
	unsupported := assert.ErrorAs[*replay.UnsupportedSyscallError](t, err)
	assert.Equal(t, unsupported.Number, arch.SysGetrandom)
	assert.Equal(t, len(res.Failed), 1)
}

func TestReplayDivergence(t *testing.T) {
	recorded := helloProgram("/bin/app", "hello\n", 0)
	r, _ := record(t, recorded.Path, replaytest.Programs(recorded))

	changed := replaytest.NewProgram("/bin/app")
	changed.Syscall(arch.SysGetpid)
	changed.Syscall(arch.SysExitGroup, 0)

	rp := startReplay(t, r, replay.Config{}, replaytest.Programs(changed))
	_, err := rp.session.Run(context.Background())
	divergence := assert.ErrorAs[*replay.DivergenceError](t, err)
	assert.Equal(t, divergence.Ordinal, int64(1))
	assert.Equal(t, divergence.Tid, r.Header().Process.InitialTid)
	assert.Equal(t, len(rp.kernel.Live()), 0)

	// The failure is sticky.
	_, err = rp.session.Step(context.Background())
	assert.ErrorAs[*replay.DivergenceError](t, err)
}

func TestReplayMissingSnapshotMapping(t *testing.T) {
	recorded := helloProgram("/bin/app", "hello\n", 0)
	r, _ := record(t, recorded.Path, replaytest.Programs(recorded))

	// Same instructions, without a data segment.
	changed := replaytest.NewProgram("/bin/app")
	changed.Syscall(arch.SysWrite, 1, replaytest.DataAddress, 6)
	changed.Syscall(arch.SysExitGroup, 0)

	rp := startReplay(t, r, replay.Config{}, replaytest.Programs(changed))
	data, err := rp.kernel.Memory(replayTidBase, replaytest.DataAddress, 6)
	assert.OK(t, err)
	assert.Equal(t, string(data), "hello\n")

	res, err := rp.session.Run(context.Background())
	assert.OK(t, err)
	assert.Equal(t, res.Status, replay.Exited)
	assert.Equal(t, rp.stdout.String(), "hello\n")
}

func TestReplayExecDivergence(t *testing.T) {
	hello := helloProgram("/bin/hello", "hello from exec\n", 0)
	p := replaytest.NewProgram("/bin/launcher")
	path := p.String(hello.Path)
	p.Syscall(arch.SysExecve, path, 0, 0)
	p.Syscall(arch.SysExitGroup, 1)
	r, _ := record(t, p.Path, replaytest.Programs(p, hello))

	changed := replaytest.NewProgram(hello.Path)
	changed.Syscall(arch.SysWrite, 1, replaytest.DataAddress, 16)
	changed.Syscall(arch.SysExitGroup, 0)

	rp := startReplay(t, r, replay.Config{}, replaytest.Programs(p, changed))
	_, err := rp.session.Run(context.Background())
	divergence := assert.ErrorAs[*replay.DivergenceError](t, err)
	assert.Equal(t, divergence.Tid, r.Header().Process.InitialTid)
	assert.Equal(t, divergence.Expected, fmt.Sprintf("mapping at %#x-%#x", replaytest.DataAddress, replaytest.DataAddress+arch.PageSize))
	assert.Equal(t, len(rp.kernel.Live()), 0)
}

func TestReplayStrictArguments(t *testing.T) {
	recorded := helloProgram("/bin/app", "hello\n", 0)
	r, _ := record(t, recorded.Path, replaytest.Programs(recorded))

	changed := helloProgram("/bin/app", "bye\n", 0)
	rp := startReplay(t, r, replay.Config{Strict: true}, replaytest.Programs(changed))
	_, err := rp.session.Run(context.Background())
	divergence := assert.ErrorAs[*replay.DivergenceError](t, err)
	assert.Equal(t, divergence.Expected, "write with rdx=0x6")
}

func TestReplayEmptyTrace(t *testing.T) {
	dir := t.TempDir()
	w, err := trace.Create(dir, &trace.Header{
		Process: trace.Process{Exe: "/bin/hello", InitialTid: 100, StartTime: time.Unix(1e9, 0)},
	}, trace.WriterOptions{})
	assert.OK(t, err)
	assert.OK(t, w.Close())

	r, err := trace.Open(dir, trace.Options{})
	assert.OK(t, err)
	defer r.Close()

	k := replaytest.NewKernel(replaytest.Programs(helloProgram("/bin/hello", "", 0)))
	_, err = replay.NewSession(context.Background(), r, k, replay.Config{})
	if err == nil {
		t.Fatal("session started without events")
	}
	assert.Equal(t, len(k.Live()), 0)
}

func TestSingleStep(t *testing.T) {
	p := replaytest.NewProgram("/bin/step")
	msg := p.Data([]byte("ok"))
	p.Op(func(c *replaytest.CPU) { c.Regs.Rbx++ })
	p.Syscall(arch.SysWrite, 1, msg, 2)
	p.Syscall(arch.SysExitGroup, 0)

	r, _ := record(t, p.Path, replaytest.Programs(p))
	rp := startReplay(t, r, replay.Config{}, replaytest.Programs(p))
	ctx := context.Background()

	assert.OK(t, rp.session.SingleStep(ctx))
	task, _ := rp.session.Registry().Task(r.Header().Process.InitialTid)
	regs, err := task.Registers()
	assert.OK(t, err)
	assert.Equal(t, regs.Rbx, uint64(1))

	// The second instruction loads the system call registers, the third is
	// the system call.
	assert.OK(t, rp.session.SingleStep(ctx))
	assert.Error(t, rp.session.SingleStep(ctx), replay.ErrAtSyscallBoundary)

	res, err := rp.session.Run(ctx)
	assert.OK(t, err)
	assert.Equal(t, res.Status, replay.Exited)
	assert.Equal(t, rp.stdout.String(), "ok")
}

func TestReplaySignalHandler(t *testing.T) {
	p := replaytest.NewProgram("/bin/segv")
	act := p.Bytes(8)
	msg := p.Data([]byte("caught\n"))
	var handler uint64
	p.Op(func(c *replaytest.CPU) {
		c.Store64(act, handler)
		c.Regs.SetSyscall(arch.SysRtSigaction, arch.SIGSEGV, act, 0, 8)
	})
	p.Insn()
	p.Op(func(c *replaytest.CPU) { c.Load64(0x10) })
	p.Syscall(arch.SysExitGroup, 1)
	handler = p.Syscall(arch.SysWrite, 1, msg, 7)
	p.Syscall(arch.SysExitGroup, 2)

	r, rec := record(t, p.Path, replaytest.Programs(p))
	assert.Equal(t, rec.Stdout(), "caught\n")

	rp := startReplay(t, r, replay.Config{}, replaytest.Programs(p))
	res, err := rp.session.Run(context.Background())
	assert.OK(t, err)
	assert.Equal(t, res.ExitStatus, int32(2<<8))
	assert.Equal(t, rp.stdout.String(), "caught\n")
}

func TestReplayAsynchronousSignalHandler(t *testing.T) {
	p := replaytest.NewProgram("/bin/usr1")
	act := p.Bytes(8)
	msg := p.Data([]byte("usr1\n"))
	var handler uint64
	p.Op(func(c *replaytest.CPU) {
		c.Store64(act, handler)
		c.Regs.SetSyscall(arch.SysRtSigaction, arch.SIGUSR1, act, 0, 8)
	})
	p.Insn()
	p.Syscall(arch.SysGettid)
	p.Op(func(c *replaytest.CPU) {
		tid := c.Regs.Rax
		c.Regs.SetSyscall(arch.SysTgkill, tid, tid, arch.SIGUSR1)
	})
	p.Insn()
	p.Syscall(arch.SysExitGroup, 1)
	handler = p.Syscall(arch.SysWrite, 1, msg, 5)
	p.Syscall(arch.SysExitGroup, 0)

	r, rec := record(t, p.Path, replaytest.Programs(p))
	assert.Equal(t, rec.Stdout(), "usr1\n")

	rp := startReplay(t, r, replay.Config{}, replaytest.Programs(p))
	res, err := rp.session.Run(context.Background())
	assert.OK(t, err)
	assert.Equal(t, res.ExitStatus, int32(0))
	assert.Equal(t, rp.stdout.String(), "usr1\n")
}

func TestReplayFatalSignal(t *testing.T) {
	p := replaytest.NewProgram("/bin/crash")
	p.Syscall(arch.SysGetpid)
	p.Op(func(c *replaytest.CPU) { c.Store64(0, 1) })
	p.Syscall(arch.SysExitGroup, 0)

	r, _ := record(t, p.Path, replaytest.Programs(p))
	rp := startReplay(t, r, replay.Config{}, replaytest.Programs(p))
	res, err := rp.session.Run(context.Background())
	assert.OK(t, err)
	assert.Equal(t, res.Status, replay.Exited)
	assert.Equal(t, res.ExitStatus, int32(arch.SIGSEGV))
}

// loopProgram maps a page, fills it with random bytes, and prints them, for a
// number of iterations.
func loopProgram(iterations int) *replaytest.Program {
	p := replaytest.NewProgram("/bin/loop")
	counter := p.Bytes(8)
	page := p.Bytes(8)
	loop := p.Syscall(arch.SysMmap, 0, arch.PageSize, arch.PROT_READ|arch.PROT_WRITE, arch.MAP_PRIVATE|arch.MAP_ANONYMOUS, ^uint64(0), 0)
	p.Op(func(c *replaytest.CPU) {
		c.Store64(page, c.Regs.Rax)
		c.Regs.SetSyscall(arch.SysGetrandom, c.Regs.Rax, 16, 0)
	})
	p.Insn()
	p.Op(func(c *replaytest.CPU) {
		c.Regs.SetSyscall(arch.SysWrite, 1, c.Load64(page), 16)
	})
	p.Insn()
	p.Op(func(c *replaytest.CPU) {
		n := c.Load64(counter) + 1
		c.Store64(counter, n)
		if n < uint64(iterations) {
			c.Jump(loop)
		}
	})
	p.Syscall(arch.SysExitGroup, 0)
	return p
}

func TestCheckpointRestore(t *testing.T) {
	prog := loopProgram(4)
	r, rec := record(t, prog.Path, replaytest.Programs(prog))

	var mappings []uint64
	rp := startReplay(t, r, replay.Config{
		OnEvent: func(e *trace.Event) {
			if e.Kind == trace.SyscallExit && e.Syscall == arch.SysMmap {
				mappings = append(mappings, uint64(e.Result))
			}
		},
	}, replaytest.Programs(prog))
	ctx := context.Background()
	s := rp.session

	// Exec, then mmap, getrandom, and write entries and exits.
	const iteration = 6
	assert.OK(t, s.RunTo(ctx, 1+iteration))
	cp, err := s.Checkpoint(ctx)
	assert.OK(t, err)
	assert.Equal(t, cp.Ordinal, int64(1+iteration))
	output := rp.stdout.String()

	assert.OK(t, s.RunTo(ctx, 1+2*iteration))
	second := rp.stdout.String()[len(output):]
	assert.Equal(t, len(mappings), 2)
	_, err = rp.kernel.Memory(replayTidBase, mappings[1], 16)
	assert.OK(t, err)

	saved, err := rp.kernel.Memory(replayTidBase, mappings[0], 16)
	assert.OK(t, err)
	th, ok := rp.kernel.Thread(replayTidBase)
	assert.Equal(t, ok, true)
	_, err = th.WriteMemory(mappings[0], make([]byte, 16))
	assert.OK(t, err)

	assert.OK(t, s.Restore(ctx, cp))
	assert.Equal(t, s.Position(), cp.Ordinal)
	memory, err := rp.kernel.Memory(replayTidBase, mappings[0], 16)
	assert.OK(t, err)
	assert.DeepEqual(t, memory, saved)
	_, err = rp.kernel.Memory(replayTidBase, mappings[1], 16)
	if err == nil {
		t.Fatal("mapping created after the checkpoint is still present")
	}

	restored, err := s.Checkpoint(ctx)
	assert.OK(t, err)
	assert.Diff(t, restored, cp,
		cmpopts.IgnoreFields(replay.Checkpoint{}, "ID"),
		cmpopts.IgnoreUnexported(replay.Checkpoint{}, replay.TaskCheckpoint{}),
	)

	assert.OK(t, s.RunTo(ctx, 1+2*iteration))
	assert.Equal(t, rp.stdout.String()[len(output)+len(second):], second)

	res, err := s.Run(ctx)
	assert.OK(t, err)
	assert.Equal(t, res.Status, replay.Exited)
	assert.Equal(t, res.Consumed, r.NumEvents())
	assert.Equal(t, len(rec.Stdout()), 4*16)
}

func TestCheckpointMismatch(t *testing.T) {
	prog, _ := threadsProgram()
	r, _ := record(t, prog.Path, replaytest.Programs(prog))
	rp := startReplay(t, r, replay.Config{}, replaytest.Programs(prog))
	ctx := context.Background()

	cp, err := rp.session.Checkpoint(ctx)
	assert.OK(t, err)
	for rp.session.Registry().Len() < 2 {
		_, err := rp.session.Step(ctx)
		assert.OK(t, err)
	}
	// The parent is still in its call to clone.
	_, err = rp.session.Checkpoint(ctx)
	assert.Error(t, err, replay.ErrCheckpointBusy)
	assert.Error(t, rp.session.Restore(ctx, cp), replay.ErrCheckpointMismatch)
}
