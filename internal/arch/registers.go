// Package arch describes the machine level state of replayed tasks: the
// general purpose register file and the table of system calls of the
// supported architecture.
package arch

import (
	"fmt"
	"strings"
)

// Name is the architecture name recorded in trace headers.
const Name = "x86_64"

// NumRegisters is the number of 64 bits words in a register file, which is
// the layout of struct user_regs_struct on x86_64.
const NumRegisters = 27

// SyscallInsn is the encoding of the syscall instruction.
var SyscallInsn = [2]byte{0x0f, 0x05}

// Registers is the general purpose register file of a task.
//
// The field order matches the kernel's user_regs_struct so the register file
// can be serialized as a flat sequence of words.
type Registers struct {
	R15     uint64
	R14     uint64
	R13     uint64
	R12     uint64
	Rbp     uint64
	Rbx     uint64
	R11     uint64
	R10     uint64
	R9      uint64
	R8      uint64
	Rax     uint64
	Rcx     uint64
	Rdx     uint64
	Rsi     uint64
	Rdi     uint64
	OrigRax uint64
	Rip     uint64
	Cs      uint64
	Eflags  uint64
	Rsp     uint64
	Ss      uint64
	FsBase  uint64
	GsBase  uint64
	Ds      uint64
	Es      uint64
	Fs      uint64
	Gs      uint64
}

var registerNames = [NumRegisters]string{
	"r15", "r14", "r13", "r12", "rbp", "rbx", "r11", "r10", "r9", "r8",
	"rax", "rcx", "rdx", "rsi", "rdi", "orig_rax", "rip", "cs", "eflags",
	"rsp", "ss", "fs_base", "gs_base", "ds", "es", "fs", "gs",
}

// RegisterName returns the name of the i-th register word.
func RegisterName(i int) string { return registerNames[i] }

func (r *Registers) words() [NumRegisters]*uint64 {
	return [NumRegisters]*uint64{
		&r.R15, &r.R14, &r.R13, &r.R12, &r.Rbp, &r.Rbx, &r.R11, &r.R10,
		&r.R9, &r.R8, &r.Rax, &r.Rcx, &r.Rdx, &r.Rsi, &r.Rdi, &r.OrigRax,
		&r.Rip, &r.Cs, &r.Eflags, &r.Rsp, &r.Ss, &r.FsBase, &r.GsBase,
		&r.Ds, &r.Es, &r.Fs, &r.Gs,
	}
}

// Words returns the register file as a sequence of words.
func (r *Registers) Words() []uint64 {
	w := make([]uint64, NumRegisters)
	for i, p := range r.words() {
		w[i] = *p
	}
	return w
}

// SetWords loads the register file from a sequence of words, which must hold
// exactly NumRegisters values.
func (r *Registers) SetWords(w []uint64) error {
	if len(w) != NumRegisters {
		return fmt.Errorf("register file has %d words, expected %d", len(w), NumRegisters)
	}
	for i, p := range r.words() {
		*p = w[i]
	}
	return nil
}

// Word returns the i-th register word.
func (r *Registers) Word(i int) uint64 { return *r.words()[i] }

// IP is the instruction pointer.
func (r *Registers) IP() uint64 { return r.Rip }

// SetIP sets the instruction pointer.
func (r *Registers) SetIP(ip uint64) { r.Rip = ip }

// SP is the stack pointer.
func (r *Registers) SP() uint64 { return r.Rsp }

// SyscallNo is the number of the system call the task is in, or -1 when the
// kernel was asked to skip it.
func (r *Registers) SyscallNo() int { return int(int64(r.OrigRax)) }

// SetSyscallNo sets the number of the system call the task is in. Setting it
// to -1 at a syscall entry stop prevents the kernel from executing it.
func (r *Registers) SetSyscallNo(no int) { r.OrigRax = uint64(int64(no)) }

// SyscallResult is the value in the return register.
func (r *Registers) SyscallResult() int64 { return int64(r.Rax) }

// SetSyscallResult sets the value of the return register.
func (r *Registers) SetSyscallResult(v int64) { r.Rax = uint64(v) }

// SyscallFailed reports whether the return register holds an errno value.
func (r *Registers) SyscallFailed() bool { return IsErrno(r.SyscallResult()) }

// Arg returns the i-th system call argument, i in [0,6).
func (r *Registers) Arg(i int) uint64 {
	switch i {
	case 0:
		return r.Rdi
	case 1:
		return r.Rsi
	case 2:
		return r.Rdx
	case 3:
		return r.R10
	case 4:
		return r.R8
	case 5:
		return r.R9
	default:
		panic(fmt.Sprintf("system call argument out of range: %d", i))
	}
}

// SetArg sets the i-th system call argument, i in [0,6).
func (r *Registers) SetArg(i int, v uint64) {
	switch i {
	case 0:
		r.Rdi = v
	case 1:
		r.Rsi = v
	case 2:
		r.Rdx = v
	case 3:
		r.R10 = v
	case 4:
		r.R8 = v
	case 5:
		r.R9 = v
	default:
		panic(fmt.Sprintf("system call argument out of range: %d", i))
	}
}

// ArgName returns the name of the register holding the i-th argument.
func ArgName(i int) string {
	return [...]string{"rdi", "rsi", "rdx", "r10", "r8", "r9"}[i]
}

// SetSyscall prepares the registers of a task stopped before a syscall
// instruction to issue the given system call.
func (r *Registers) SetSyscall(no int, args ...uint64) {
	if len(args) > 6 {
		panic("too many system call arguments")
	}
	r.Rax = uint64(int64(no))
	r.OrigRax = uint64(int64(no))
	for i := 0; i < 6; i++ {
		var v uint64
		if i < len(args) {
			v = args[i]
		}
		r.SetArg(i, v)
	}
}

// Mismatch describes a register holding a different value than expected.
type Mismatch struct {
	Name   string
	Expect uint64
	Actual uint64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s=%#x (expected %#x)", m.Name, m.Actual, m.Expect)
}

// Compare returns the list of registers differing between r and expect,
// ignoring the registers in the ignore mask. Bit i of the mask ignores the
// i-th register word.
func (r *Registers) Compare(expect *Registers, ignore uint32) []Mismatch {
	var mismatches []Mismatch
	actual, want := r.words(), expect.words()
	for i := range actual {
		if ignore&(1<<i) != 0 {
			continue
		}
		if *actual[i] != *want[i] {
			mismatches = append(mismatches, Mismatch{
				Name:   registerNames[i],
				Expect: *want[i],
				Actual: *actual[i],
			})
		}
	}
	return mismatches
}

// Masks of registers that the kernel clobbers across syscall instructions or
// that replay does not reproduce.
const (
	IgnoreScratch uint32 = 1<<6 | 1<<11 // r11, rcx
	IgnoreSegment uint32 = 0xF<<23 | 1<<17 | 1<<20
	IgnoreResult  uint32 = 1 << 10 // rax
)

// FormatMismatches renders a list of register mismatches on one line.
func FormatMismatches(mismatches []Mismatch) string {
	s := make([]string, len(mismatches))
	for i, m := range mismatches {
		s[i] = m.String()
	}
	return strings.Join(s, ", ")
}

// maxErrno is the first value of the range the kernel uses to return errno
// values, interpreted as an unsigned word.
const maxErrno = 0xfffffffffffff001

// IsErrno reports whether a system call result is a negated errno value.
func IsErrno(v int64) bool { return uint64(v) >= maxErrno }

// Word returns the register encoding of a signed value, such as AT_FDCWD or
// a negated errno.
func Word(v int64) uint64 { return uint64(v) }
