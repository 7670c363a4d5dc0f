package replaytest

import (
	"github.com/stealthrocket/tracecraft/internal/arch"
)

// Layout of the address space of programs.
const (
	CodeAddress = 0x400000
	DataAddress = 0x600000
	StackTop    = 0x7ffffffff000
	StackSize   = 33 * arch.PageSize
	// Initial stack pointer of programs.
	StackPointer = StackTop - 2*arch.PageSize
)

// Encoding of the instructions of the simulated machine. Syscall is the x86
// syscall instruction, other instructions are native operations identified by
// their address.
var (
	opSyscall = arch.SyscallInsn
	opNative  = [2]byte{0x90, 0x90}
)

const insnSize = 2

// Op is a native instruction of a program.
type Op func(c *CPU)

// Program is the code and data of an executable of the simulated machine.
type Program struct {
	Path string
	code []byte
	ops  map[uint64]Op
	data []byte
}

// NewProgram creates an empty program.
func NewProgram(path string) *Program {
	return &Program{Path: path, ops: make(map[uint64]Op)}
}

// Entry returns the address of the first instruction.
func (p *Program) Entry() uint64 { return CodeAddress }

// Label returns the address of the next instruction.
func (p *Program) Label() uint64 { return CodeAddress + uint64(len(p.code)) }

// Op appends a native instruction and returns its address.
func (p *Program) Op(op Op) uint64 {
	addr := p.Label()
	p.ops[addr] = op
	p.code = append(p.code, opNative[:]...)
	return addr
}

// Insn appends a raw syscall instruction, the system call number and its
// arguments are taken from the registers.
func (p *Program) Insn() uint64 {
	addr := p.Label()
	p.code = append(p.code, opSyscall[:]...)
	return addr
}

// Syscall appends the instructions making a system call.
func (p *Program) Syscall(no int, args ...uint64) uint64 {
	addr := p.Op(func(c *CPU) { c.Regs.SetSyscall(no, args...) })
	p.Insn()
	return addr
}

// Jump appends an unconditional jump.
func (p *Program) Jump(target func() uint64) uint64 {
	return p.Op(func(c *CPU) { c.Jump(target()) })
}

// JumpIfZero appends a jump taken when the result of the last system call is
// zero, as in the child of a fork.
func (p *Program) JumpIfZero(target func() uint64) uint64 {
	return p.Op(func(c *CPU) {
		if c.Regs.Rax == 0 {
			c.Jump(target())
		}
	})
}

// Data appends b to the data segment and returns its address.
func (p *Program) Data(b []byte) uint64 {
	addr := DataAddress + uint64(len(p.data))
	p.data = append(p.data, b...)
	return addr
}

// Bytes reserves n zero bytes in the data segment.
func (p *Program) Bytes(n int) uint64 {
	return p.Data(make([]byte, n))
}

// String appends a null terminated string to the data segment.
func (p *Program) String(s string) uint64 {
	return p.Data(append([]byte(s), 0))
}

// CPU is the state that native instructions operate on.
type CPU struct {
	Regs *arch.Registers
	t    *Thread
	next uint64
	sig  int
}

// Tid returns the thread id of the executing thread.
func (c *CPU) Tid() int { return c.t.tid }

// Jump continues execution at addr.
func (c *CPU) Jump(addr uint64) { c.next = addr }

// Load reads n bytes of memory. Reading unmapped memory faults.
func (c *CPU) Load(addr uint64, n int) []byte {
	b := make([]byte, n)
	if c.t.proc.mem.read(addr, b) < n {
		c.Fault(arch.SIGSEGV)
	}
	return b
}

// Load64 reads a 64 bits word.
func (c *CPU) Load64(addr uint64) uint64 {
	return le.Uint64(c.Load(addr, 8))
}

// Store writes memory. Writing unmapped or read-only memory faults.
func (c *CPU) Store(addr uint64, b []byte) {
	if !c.t.proc.mem.writable(addr, uint64(len(b))) {
		c.Fault(arch.SIGSEGV)
		return
	}
	c.t.proc.mem.write(addr, b)
}

// Store64 writes a 64 bits word.
func (c *CPU) Store64(addr, v uint64) {
	var b [8]byte
	le.PutUint64(b[:], v)
	c.Store(addr, b[:])
}

// Fault raises a synchronous signal. The instruction is not completed.
func (c *CPU) Fault(sig int) {
	if c.sig == 0 {
		c.sig = sig
	}
}
