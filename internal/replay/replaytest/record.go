package replaytest

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/trace"
)

// Record runs the program at path until all its threads exit and writes the
// trace of the execution to dir. Threads are scheduled round robin, each runs
// for the quantum of the kernel or until it yields.
func Record(dir string, k *Kernel, path string, opts trace.WriterOptions) (*trace.Header, error) {
	if k.rec != nil {
		return nil, errors.New("replaytest: kernel is already recording")
	}
	rec := &recorder{start: k.now}
	k.rec = rec
	defer func() { k.rec = nil }()

	t, err := k.spawn(path, false)
	if err != nil {
		return nil, err
	}
	t.state = running

	header := &trace.Header{
		Version:     trace.Version,
		Arch:        arch.Name,
		UUID:        uuid.New(),
		Compression: opts.Compression,
		Process: trace.Process{
			Exe:        path,
			Args:       []string{path},
			Cwd:        "/",
			InitialTid: int32(t.tid),
			StartTime:  k.now,
		},
	}
	if rec.w, err = trace.Create(dir, header, opts); err != nil {
		return nil, err
	}
	rec.exec(t, path)
	rec.runq = append(rec.runq, t)

	steps := 0
	for len(rec.runq) > 0 && rec.err == nil {
		t := rec.runq[0]
		rec.runq = rec.runq[1:]
		t.yield = false
		for i := 0; i < k.quantum && t.state == running && !t.yield; i++ {
			if steps++; steps > k.budget {
				rec.err = errBudgetExhausted
				break
			}
			t.step()
		}
		if t.state == running {
			rec.runq = append(rec.runq, t)
		}
	}
	return header, errors.Join(rec.err, rec.w.Close())
}

type recorder struct {
	w     *trace.Writer
	start time.Time
	runq  []*Thread
	err   error
}

func (r *recorder) now(t *Thread) time.Duration { return t.k.now.Sub(r.start) }

func (r *recorder) write(e *trace.Event) {
	if r.err != nil {
		return
	}
	_, r.err = r.w.WriteEvent(e)
}

func (r *recorder) writes(out []memWrite) []trace.MemWrite {
	var writes []trace.MemWrite
	for _, w := range out {
		ref, err := r.w.WriteData(w.data)
		if err != nil {
			r.err = err
			return nil
		}
		writes = append(writes, trace.MemWrite{Addr: w.addr, Data: ref})
	}
	return writes
}

func (r *recorder) syscallEntry(t *Thread) {
	if r == nil {
		return
	}
	regs := t.regs
	r.write(&trace.Event{
		Tid:       int32(t.tid),
		Kind:      trace.SyscallEntry,
		Time:      r.now(t),
		Syscall:   int(int64(regs.OrigRax)),
		Registers: &regs,
	})
}

func (r *recorder) syscallExit(t *Thread) {
	if r == nil {
		return
	}
	regs := t.regs
	r.write(&trace.Event{
		Tid:       int32(t.tid),
		Kind:      trace.SyscallExit,
		Time:      r.now(t),
		Syscall:   int(int64(regs.OrigRax)),
		Result:    t.result,
		Registers: &regs,
		Writes:    r.writes(t.out),
		Mappings:  t.mapped,
	})
}

func (r *recorder) clone(t, child *Thread, flags uint64) {
	if r == nil {
		return
	}
	r.runq = append(r.runq, child)
	r.write(&trace.Event{
		Tid:        int32(t.tid),
		Kind:       trace.Clone,
		Time:       r.now(t),
		CloneFlags: flags,
		NewTid:     int32(child.tid),
	})
}

// exec records the layout of the address space of t, the content of mappings
// that are not anonymous is saved as snapshots.
func (r *recorder) exec(t *Thread, path string) {
	if r == nil {
		return
	}
	mappings := t.proc.mem.mappings()
	for i := range mappings {
		m := &mappings[i]
		if m.Flags&arch.MAP_ANONYMOUS != 0 {
			m.Backing = trace.Zero
			continue
		}
		b := make([]byte, m.Length)
		t.proc.mem.read(m.Start, b)
		ref, err := r.w.WriteSnapshot(b)
		if err != nil {
			r.err = err
			return
		}
		m.Backing, m.Data = trace.Snapshot, ref
	}
	r.write(&trace.Event{
		Tid:      int32(t.tid),
		Kind:     trace.Exec,
		Time:     r.now(t),
		Path:     path,
		Mappings: mappings,
	})
}

func (r *recorder) signal(t *Thread, sig int, disposition trace.Disposition, sync bool, frame *memWrite) {
	if r == nil {
		return
	}
	e := &trace.Event{
		Tid:         int32(t.tid),
		Kind:        trace.Signal,
		Time:        r.now(t),
		Signal:      sig,
		Disposition: disposition,
		Synchronous: sync,
		Siginfo:     append([]byte(nil), t.siginfo[:]...),
	}
	if frame != nil {
		regs := t.regs
		e.Registers = &regs
		e.Writes = r.writes([]memWrite{*frame})
	}
	r.write(e)
}

func (r *recorder) exitTask(t *Thread, status int) {
	if r == nil {
		return
	}
	r.write(&trace.Event{
		Tid:    int32(t.tid),
		Kind:   trace.Exit,
		Time:   r.now(t),
		Status: int32(status),
	})
}
