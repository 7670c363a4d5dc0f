package tracecraft_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/assert"
	"github.com/stealthrocket/tracecraft/internal/replay"
	"github.com/stealthrocket/tracecraft/internal/replay/replaytest"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"github.com/stealthrocket/tracecraft/internal/tracecraft"
)

func echoProgram() *replaytest.Program {
	p := replaytest.NewProgram("/bin/echo")
	hello := p.Data([]byte("hello\n"))
	world := p.Data([]byte("world\n"))
	p.Syscall(arch.SysWrite, 1, hello, 6)
	p.Syscall(arch.SysWrite, 2, world, 6)
	p.Syscall(arch.SysExitGroup, 0)
	return p
}

func recordEcho(t *testing.T) (*trace.Reader, *replaytest.Program) {
	t.Helper()
	prog := echoProgram()
	dir := t.TempDir()
	k := replaytest.NewKernel(replaytest.Programs(prog))
	_, err := replaytest.Record(dir, k, prog.Path, trace.WriterOptions{Compression: trace.Snappy})
	assert.OK(t, err)
	r, err := trace.Open(dir, trace.Options{})
	assert.OK(t, err)
	t.Cleanup(func() { r.Close() })
	return r, prog
}

func TestReplay(t *testing.T) {
	r, prog := recordEcho(t)
	kernel := replaytest.NewKernel(replaytest.Programs(prog), replaytest.TidBase(2000))

	stdout, stderr, events := new(strings.Builder), new(strings.Builder), new(strings.Builder)
	rp := tracecraft.NewReplay(tracecraft.DefaultConfig(), r, kernel)
	rp.SetStdout(stdout)
	rp.SetStderr(stderr)
	rp.SetTrace(events)

	res, err := rp.Replay(context.Background())
	assert.OK(t, err)
	assert.Equal(t, res.Status, replay.Exited)
	assert.Equal(t, res.Consumed, r.NumEvents())
	assert.Equal(t, stdout.String(), "hello\n")
	assert.Equal(t, stderr.String(), "world\n")

	lines := strings.Split(strings.TrimSuffix(events.String(), "\n"), "\n")
	assert.Equal(t, int64(len(lines)), r.NumEvents())
	assert.Equal(t, strings.HasPrefix(lines[0], "#0 "), true)
}

func TestReplayStopAt(t *testing.T) {
	r, prog := recordEcho(t)
	kernel := replaytest.NewKernel(replaytest.Programs(prog), replaytest.TidBase(2000))

	stdout := new(strings.Builder)
	rp := tracecraft.NewReplay(tracecraft.DefaultConfig(), r, kernel)
	rp.SetStdout(stdout)
	rp.SetStopAt(3)

	res, err := rp.Replay(context.Background())
	assert.OK(t, err)
	assert.Equal(t, res.Status, replay.Running)
	assert.Equal(t, res.Consumed, int64(3))
	assert.Equal(t, stdout.String(), "hello\n")
	// Tasks are killed when the replay stops early.
	assert.Equal(t, len(kernel.Live()), 0)
}

func TestRerun(t *testing.T) {
	r, prog := recordEcho(t)
	all, err := trace.ReadAll(r)
	assert.OK(t, err)

	for _, test := range []struct {
		scenario string
		from, to int64
	}{
		{scenario: "from the start", from: 0, to: 2},
		{scenario: "in the middle", from: 3, to: 4},
		{scenario: "past the end", from: 4, to: 100},
	} {
		t.Run(test.scenario, func(t *testing.T) {
			kernel := replaytest.NewKernel(replaytest.Programs(prog), replaytest.TidBase(2000))
			rp := tracecraft.NewReplay(tracecraft.DefaultConfig(), r, kernel)

			var ordinals []int64
			_, err := rp.Rerun(context.Background(), test.from, test.to, func(s *replay.Session, e *trace.Event) error {
				ordinals = append(ordinals, e.Ordinal)
				assert.Equal(t, e.Kind, all[e.Ordinal].Kind)
				return nil
			})
			assert.OK(t, err)

			var want []int64
			for i := test.from; i <= test.to && i < int64(len(all)); i++ {
				want = append(want, i)
			}
			assert.EqualAll(t, ordinals, want)
		})
	}

	rp := tracecraft.NewReplay(tracecraft.DefaultConfig(), r, replaytest.NewKernel())
	if _, err := rp.Rerun(context.Background(), 4, 2, nil); err == nil {
		t.Fatal("rerun of an empty span succeeded")
	}
}
