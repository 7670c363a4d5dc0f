//go:build linux && amd64

package ptrace

import (
	"github.com/stealthrocket/tracecraft/internal/arch"
	"golang.org/x/sys/unix"
)

func fromPtraceRegs(regs *arch.Registers, r *unix.PtraceRegs) {
	*regs = arch.Registers{
		R15:     r.R15,
		R14:     r.R14,
		R13:     r.R13,
		R12:     r.R12,
		Rbp:     r.Rbp,
		Rbx:     r.Rbx,
		R11:     r.R11,
		R10:     r.R10,
		R9:      r.R9,
		R8:      r.R8,
		Rax:     r.Rax,
		Rcx:     r.Rcx,
		Rdx:     r.Rdx,
		Rsi:     r.Rsi,
		Rdi:     r.Rdi,
		OrigRax: r.Orig_rax,
		Rip:     r.Rip,
		Cs:      r.Cs,
		Eflags:  r.Eflags,
		Rsp:     r.Rsp,
		Ss:      r.Ss,
		FsBase:  r.Fs_base,
		GsBase:  r.Gs_base,
		Ds:      r.Ds,
		Es:      r.Es,
		Fs:      r.Fs,
		Gs:      r.Gs,
	}
}

func toPtraceRegs(r *unix.PtraceRegs, regs *arch.Registers) {
	*r = unix.PtraceRegs{
		R15:      regs.R15,
		R14:      regs.R14,
		R13:      regs.R13,
		R12:      regs.R12,
		Rbp:      regs.Rbp,
		Rbx:      regs.Rbx,
		R11:      regs.R11,
		R10:      regs.R10,
		R9:       regs.R9,
		R8:       regs.R8,
		Rax:      regs.Rax,
		Rcx:      regs.Rcx,
		Rdx:      regs.Rdx,
		Rsi:      regs.Rsi,
		Rdi:      regs.Rdi,
		Orig_rax: regs.OrigRax,
		Rip:      regs.Rip,
		Cs:       regs.Cs,
		Eflags:   regs.Eflags,
		Rsp:      regs.Rsp,
		Ss:       regs.Ss,
		Fs_base:  regs.FsBase,
		Gs_base:  regs.GsBase,
		Ds:       regs.Ds,
		Es:       regs.Es,
		Fs:       regs.Fs,
		Gs:       regs.Gs,
	}
}
