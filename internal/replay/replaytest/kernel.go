// Package replaytest simulates the Linux process model for tests of the replay
// engine. A Kernel runs programs of a small machine whose only real
// instruction is syscall, it can trace them through the tracee facade or
// record them to a trace.
package replaytest

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"github.com/stealthrocket/tracecraft/internal/tracee"
	"golang.org/x/exp/maps"
	"golang.org/x/sys/unix"
)

var le = binary.LittleEndian

const (
	defaultQuantum = 3
	defaultBudget  = 1 << 20
	mmapTop        = 0x7ffff7fff000
)

// Option configures a Kernel.
type Option func(*Kernel)

// TidBase sets the first thread id allocated by the kernel.
func TidBase(tid int) Option {
	return func(k *Kernel) { k.nextTid = tid }
}

// Seed sets the seed of the random numbers returned by getrandom.
func Seed(seed int64) Option {
	return func(k *Kernel) { k.rand = rand.New(rand.NewSource(seed)) }
}

// Clock sets the time returned by clock_gettime, which advances by tick on
// each call.
func Clock(start time.Time, tick time.Duration) Option {
	return func(k *Kernel) { k.now, k.tick = start, tick }
}

// Programs installs executables.
func Programs(programs ...*Program) Option {
	return func(k *Kernel) {
		for _, p := range programs {
			k.programs[p.Path] = p
		}
	}
}

// File installs a file that programs can open and map.
func File(path string, data []byte) Option {
	return func(k *Kernel) { k.files[path] = data }
}

// Stdin sets the data that programs read from their standard input.
func Stdin(data []byte) Option {
	return func(k *Kernel) { k.stdin = data }
}

// Quantum sets the number of instructions that a thread runs before another
// one is scheduled when recording.
func Quantum(n int) Option {
	return func(k *Kernel) { k.quantum = n }
}

// StepBudget bounds the number of instructions executed by a thread between
// two stops.
func StepBudget(n int) Option {
	return func(k *Kernel) { k.budget = n }
}

// Kernel is a simulated kernel. Kernels are not safe for concurrent use.
type Kernel struct {
	programs map[string]*Program
	files    map[string][]byte
	stdin    []byte
	stdout   bytes.Buffer
	stderr   bytes.Buffer
	rand     *rand.Rand
	now      time.Time
	tick     time.Duration
	quantum  int
	budget   int
	nextTid  int

	threads  map[int]*Thread
	attached map[int]*Thread
	// Set when recording, threads are not traced.
	rec *recorder
}

// NewKernel creates a kernel.
func NewKernel(opts ...Option) *Kernel {
	k := &Kernel{
		programs: make(map[string]*Program),
		files:    make(map[string][]byte),
		rand:     rand.New(rand.NewSource(1)),
		now:      time.Unix(1e9, 0),
		tick:     time.Millisecond,
		quantum:  defaultQuantum,
		budget:   defaultBudget,
		nextTid:  1000,
		threads:  make(map[int]*Thread),
		attached: make(map[int]*Thread),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Stdout returns what programs wrote to their standard output.
func (k *Kernel) Stdout() string { return k.stdout.String() }

// Stderr returns what programs wrote to their standard error.
func (k *Kernel) Stderr() string { return k.stderr.String() }

// Thread returns a live thread.
func (k *Kernel) Thread(tid int) (*Thread, bool) {
	t, ok := k.threads[tid]
	return t, ok
}

// Live returns the ids of the threads that did not terminate.
func (k *Kernel) Live() []int {
	var tids []int
	for tid, t := range k.threads {
		if t.state != dead {
			tids = append(tids, tid)
		}
	}
	sort.Ints(tids)
	return tids
}

// Memory reads the memory of a thread.
func (k *Kernel) Memory(tid int, addr uint64, n int) ([]byte, error) {
	t, ok := k.threads[tid]
	if !ok {
		return nil, unix.ESRCH
	}
	b := make([]byte, n)
	if t.proc.mem.read(addr, b) < n {
		return nil, unix.EFAULT
	}
	return b, nil
}

func (k *Kernel) allocTid() int {
	tid := k.nextTid
	k.nextTid++
	return tid
}

// Spawn starts a traced process. The returned tracee is stopped before its
// first instruction.
func (k *Kernel) Spawn(ctx context.Context, opts tracee.SpawnOptions) (tracee.Tracee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := k.spawn(opts.Path, true)
	if err != nil {
		return nil, tracee.Errorf(0, "spawn "+opts.Path, err)
	}
	return t, nil
}

func (k *Kernel) spawn(path string, traced bool) (*Thread, error) {
	prog, ok := k.programs[path]
	if !ok {
		return nil, unix.ENOENT
	}
	proc := &process{
		files:    newFiles(),
		handlers: make(map[int]uint64),
	}
	t := k.newThread(proc, traced)
	proc.tgid = t.tid
	proc.exec(prog)
	t.regs = initialRegisters(prog)
	return t, nil
}

// Adopt returns a child created by a traced clone.
func (k *Kernel) Adopt(tid int) (tracee.Tracee, error) {
	t, ok := k.attached[tid]
	if !ok {
		return nil, tracee.Errorf(tid, "adopt", unix.ESRCH)
	}
	delete(k.attached, tid)
	return t, nil
}

// Close kills the threads that are still alive.
func (k *Kernel) Close() error {
	for _, t := range maps.Values(k.threads) {
		if t.state != dead {
			t.die(tracee.Stop{Kind: tracee.Signaled, Signal: arch.SIGKILL, Status: arch.SIGKILL})
		}
	}
	return nil
}

func (k *Kernel) newThread(proc *process, traced bool) *Thread {
	t := &Thread{
		k:      k,
		tid:    k.allocTid(),
		proc:   proc,
		traced: traced,
		state:  stopped,
	}
	proc.threads = append(proc.threads, t)
	k.threads[t.tid] = t
	return t
}

func initialRegisters(p *Program) arch.Registers {
	return arch.Registers{
		Rip:    p.Entry(),
		Rsp:    StackPointer,
		Cs:     0x33,
		Ss:     0x2b,
		Eflags: 0x202,
	}
}

// process is a thread group.
type process struct {
	tgid     int
	parent   *process
	mem      *memory
	files    *files
	handlers map[int]uint64
	threads  []*Thread
	// Leader that exited while other threads were alive.
	zombie *Thread
	prog   *Program
}

func (p *process) exec(prog *Program) {
	p.mem = newMemory()
	p.prog = prog
	code := arch.PageRoundUp(uint64(len(prog.code)))
	p.mem.mapRange(CodeAddress, max(code, arch.PageSize), arch.PROT_READ|arch.PROT_EXEC, arch.MAP_PRIVATE, prog.Path, 0)
	p.mem.write(CodeAddress, prog.code)
	data := arch.PageRoundUp(uint64(len(prog.data)))
	if data > 0 {
		p.mem.mapRange(DataAddress, data, arch.PROT_READ|arch.PROT_WRITE, arch.MAP_PRIVATE, prog.Path, 0)
		p.mem.write(DataAddress, prog.data)
	}
	p.mem.mapRange(StackTop-StackSize, StackSize, arch.PROT_READ|arch.PROT_WRITE, arch.MAP_PRIVATE|arch.MAP_ANONYMOUS|arch.MAP_GROWSDOWN, "[stack]", 0)
	p.mem.brkStart = DataAddress + max(data, arch.PageSize) + 16*arch.PageSize
	p.mem.brk = p.mem.brkStart
	maps.Clear(p.handlers)
}

func (p *process) live() []*Thread {
	var live []*Thread
	for _, t := range p.threads {
		if t.state != dead {
			live = append(live, t)
		}
	}
	return live
}

// memory is an address space.
type memory struct {
	pages    map[uint64]*page
	brkStart uint64
	brk      uint64
}

// page is a page of memory. The data of shared pages is shared with the
// children of the process.
type page struct {
	data   *[arch.PageSize]byte
	prot   uint32
	flags  uint32
	path   string
	offset int64
}

func newMemory() *memory {
	return &memory{pages: make(map[uint64]*page)}
}

func (m *memory) clone() *memory {
	c := &memory{pages: make(map[uint64]*page, len(m.pages)), brkStart: m.brkStart, brk: m.brk}
	for addr, p := range m.pages {
		copied := *p
		if p.flags&arch.MAP_SHARED == 0 {
			data := *p.data
			copied.data = &data
		}
		c.pages[addr] = &copied
	}
	return c
}

func pageOf(addr uint64) uint64 { return addr &^ (arch.PageSize - 1) }

// read copies memory to b and returns the number of bytes read before the
// first unmapped page.
func (m *memory) read(addr uint64, b []byte) int {
	n := 0
	for n < len(b) {
		p := m.pages[pageOf(addr)]
		if p == nil {
			break
		}
		c := copy(b[n:], p.data[addr%arch.PageSize:])
		n += c
		addr += uint64(c)
	}
	return n
}

// write copies b to memory regardless of protections, up to the first
// unmapped page.
func (m *memory) write(addr uint64, b []byte) int {
	n := 0
	for n < len(b) {
		p := m.pages[pageOf(addr)]
		if p == nil {
			break
		}
		c := copy(p.data[addr%arch.PageSize:], b[n:])
		n += c
		addr += uint64(c)
	}
	return n
}

func (m *memory) check(addr, length uint64, prot uint32) bool {
	for a := pageOf(addr); a < addr+length; a += arch.PageSize {
		p := m.pages[a]
		if p == nil || p.prot&prot != prot {
			return false
		}
	}
	return true
}

func (m *memory) writable(addr, length uint64) bool { return m.check(addr, length, arch.PROT_WRITE) }

func (m *memory) overlaps(addr, length uint64) bool {
	for a := addr; a < addr+length; a += arch.PageSize {
		if m.pages[a] != nil {
			return true
		}
	}
	return false
}

func (m *memory) mapRange(addr, length uint64, prot, flags uint32, path string, offset int64) {
	for i := uint64(0); i < length; i += arch.PageSize {
		m.pages[addr+i] = &page{data: new([arch.PageSize]byte), prot: prot, flags: flags, path: path, offset: offset + int64(i)}
	}
}

func (m *memory) unmapRange(addr, length uint64) {
	for a := addr; a < addr+length; a += arch.PageSize {
		delete(m.pages, a)
	}
}

// free returns the highest free range of length bytes below top.
func (m *memory) free(length uint64) uint64 {
	addr := uint64(mmapTop) - length
	for m.overlaps(addr, length) {
		addr -= arch.PageSize
	}
	return addr
}

// mappings returns the layout of the memory, merging contiguous pages with
// the same attributes.
func (m *memory) mappings() []trace.Mapping {
	addrs := maps.Keys(m.pages)
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	var mappings []trace.Mapping
	for _, addr := range addrs {
		p := m.pages[addr]
		if n := len(mappings); n > 0 {
			last := &mappings[n-1]
			if last.End() == addr && last.Prot == p.prot && last.Flags == p.flags && last.Path == p.path &&
				last.FileOffset+int64(last.Length) == p.offset {
				last.Length += arch.PageSize
				continue
			}
		}
		mappings = append(mappings, trace.Mapping{
			Start:      addr,
			Length:     arch.PageSize,
			Prot:       p.prot,
			Flags:      p.flags,
			FileOffset: p.offset,
			Path:       p.path,
		})
	}
	return mappings
}

func (m *memory) String() string {
	var b bytes.Buffer
	for _, mapping := range m.mappings() {
		fmt.Fprintf(&b, "%x-%x %d %s\n", mapping.Start, mapping.End(), mapping.Prot, mapping.Path)
	}
	return b.String()
}

// files is a descriptor table.
type files struct {
	fds map[int]*file
}

type file struct {
	name   string
	data   []byte
	offset int
	// Standard streams are numbered 0, 1 and 2, other files -1.
	stream int
	pipe   *pipe
}

type pipe struct{ buf []byte }

func newFiles() *files {
	return &files{fds: map[int]*file{
		0: {name: "stdin", stream: 0},
		1: {name: "stdout", stream: 1},
		2: {name: "stderr", stream: 2},
	}}
}

func (f *files) clone() *files {
	return &files{fds: maps.Clone(f.fds)}
}

func (f *files) open(file *file) int {
	fd := 0
	for f.fds[fd] != nil {
		fd++
	}
	f.fds[fd] = file
	return fd
}
