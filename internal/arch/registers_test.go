package arch_test

import (
	"testing"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/assert"
)

func TestRegistersWords(t *testing.T) {
	var regs arch.Registers
	words := make([]uint64, arch.NumRegisters)
	for i := range words {
		words[i] = uint64(i + 1)
	}
	assert.OK(t, regs.SetWords(words))
	assert.Equal(t, regs.R15, 1)
	assert.Equal(t, regs.OrigRax, 16)
	assert.Equal(t, regs.Rip, 17)
	assert.Equal(t, regs.Gs, arch.NumRegisters)
	assert.EqualAll(t, regs.Words(), words)

	for i := range words {
		assert.Equal(t, regs.Word(i), words[i])
	}
	assert.Equal(t, arch.RegisterName(16), "rip")
}

func TestRegistersSetWordsLength(t *testing.T) {
	var regs arch.Registers
	if err := regs.SetWords(make([]uint64, 3)); err == nil {
		t.Fatal("expected an error for a short register file")
	}
}

func TestRegistersSyscall(t *testing.T) {
	var regs arch.Registers
	regs.SetSyscall(arch.SysWrite, 1, 0x1000, 5)
	assert.Equal(t, regs.SyscallNo(), arch.SysWrite)
	assert.Equal(t, regs.Rax, arch.SysWrite)
	assert.Equal(t, regs.Arg(0), 1)
	assert.Equal(t, regs.Arg(1), 0x1000)
	assert.Equal(t, regs.Arg(2), 5)
	assert.Equal(t, regs.Arg(5), 0)

	regs.SetSyscallNo(-1)
	assert.Equal(t, regs.SyscallNo(), -1)
	assert.Equal(t, regs.OrigRax, ^uint64(0))

	regs.SetSyscallResult(-2)
	assert.Equal(t, regs.SyscallFailed(), true)
	regs.SetSyscallResult(-4096)
	assert.Equal(t, regs.SyscallFailed(), false)
	regs.SetSyscallResult(-4095)
	assert.Equal(t, regs.SyscallFailed(), true)

	for i := 0; i < 6; i++ {
		regs.SetArg(i, uint64(100+i))
	}
	assert.Equal(t, regs.Rdi, 100)
	assert.Equal(t, regs.R10, 103)
	assert.Equal(t, regs.R9, 105)
	assert.Equal(t, arch.ArgName(3), "r10")
}

func TestRegistersCompare(t *testing.T) {
	a := arch.Registers{Rip: 0x401000, Rax: 1, Rcx: 2, R11: 3}
	b := a
	assert.Equal(t, len(a.Compare(&b, 0)), 0)

	b.Rcx, b.R11 = 20, 30
	assert.Equal(t, len(a.Compare(&b, 0)), 2)
	assert.Equal(t, len(a.Compare(&b, arch.IgnoreScratch)), 0)

	b.Rip = 0x402000
	mismatches := a.Compare(&b, arch.IgnoreScratch)
	assert.Equal(t, len(mismatches), 1)
	assert.Equal(t, mismatches[0].Name, "rip")
	assert.Equal(t, mismatches[0].Expect, 0x402000)
	assert.Equal(t, mismatches[0].Actual, 0x401000)
	assert.Equal(t, arch.FormatMismatches(mismatches), "rip=0x401000 (expected 0x402000)")
}

func TestWord(t *testing.T) {
	assert.Equal(t, arch.Word(arch.AT_FDCWD), 0xffffffffffffff9c)
	assert.Equal(t, arch.Word(-arch.ENOSYS), 0xffffffffffffffda)
	assert.Equal(t, arch.IsErrno(int64(arch.Word(-arch.ENOSYS))), true)
	assert.Equal(t, arch.IsErrno(int64(arch.Word(arch.AT_FDCWD))), false)

	var regs arch.Registers
	regs.SetSyscallResult(int64(arch.Word(-arch.ENOSYS)))
	assert.Equal(t, regs.SyscallFailed(), true)
}
