package arch_test

import (
	"testing"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/assert"
)

func TestSyscallTable(t *testing.T) {
	table := arch.Syscalls()
	assert.Equal(t, table.Arch(), arch.Name)

	tests := []struct {
		no    int
		name  string
		class arch.Class
		flags arch.Flags
	}{
		{arch.SysRead, "read", arch.Emulate, 0},
		{arch.SysWrite, "write", arch.Emulate, arch.Output},
		{arch.SysMmap, "mmap", arch.Memory, 0},
		{arch.SysOpenat, "openat", arch.Emulate, arch.ReturnsFD},
		{arch.SysPipe2, "pipe2", arch.Emulate, arch.ReturnsFDPair},
		{arch.SysClone, "clone", arch.Process, 0},
		{arch.SysExitGroup, "exit_group", arch.Process, 0},
		{arch.SysRtSigaction, "rt_sigaction", arch.Execute, arch.Verify},
		{arch.SysPtrace, "ptrace", arch.Unsupported, 0},
		{arch.SysClone3, "clone3", arch.Unsupported, 0},
		{arch.SysSetMempolicyHomeNode, "set_mempolicy_home_node", arch.Emulate, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sc := table.Lookup(test.no)
			assert.Equal(t, sc.Number, test.no)
			assert.Equal(t, sc.Name, test.name)
			assert.Equal(t, sc.Class, test.class)
			assert.Equal(t, sc.Flags, test.flags)

			byName, ok := table.LookupName(test.name)
			assert.Equal(t, ok, true)
			assert.Equal(t, byName, sc)
		})
	}
}

func TestSyscallTableUnknown(t *testing.T) {
	table := arch.Syscalls()
	for _, no := range []int{-1, 335, 423, 451, 100000} {
		sc := table.Lookup(no)
		assert.Equal(t, sc.Class, arch.Unknown)
	}
	assert.Equal(t, arch.SyscallName(400), "<unknown-syscall-400>")
	assert.Equal(t, table.Len(), 362)
	assert.Equal(t, len(table.Entries()), 362)
}

func TestSyscallTableOverrides(t *testing.T) {
	table := arch.Syscalls()

	overridden, err := table.WithOverrides(map[string]arch.Class{
		"getrandom": arch.Unsupported,
		"madvise":   arch.Emulate,
	})
	assert.OK(t, err)
	assert.Equal(t, overridden.Lookup(arch.SysGetrandom).Class, arch.Unsupported)
	assert.Equal(t, overridden.Lookup(arch.SysMadvise).Class, arch.Emulate)
	assert.Equal(t, overridden.Lookup(arch.SysMadvise).Flags, arch.Verify)
	assert.Equal(t, table.Lookup(arch.SysGetrandom).Class, arch.Emulate)
	assert.Equal(t, overridden.Len(), table.Len())

	_, err = table.WithOverrides(map[string]arch.Class{"not_a_syscall": arch.Emulate})
	if err == nil {
		t.Fatal("expected an error overriding an unknown system call")
	}
}

func TestParseClass(t *testing.T) {
	for _, class := range []arch.Class{arch.Emulate, arch.Execute, arch.Memory, arch.Process, arch.Unsupported} {
		c, err := arch.ParseClass(class.String())
		assert.OK(t, err)
		assert.Equal(t, c, class)
	}
	if _, err := arch.ParseClass("unknown"); err == nil {
		t.Fatal("expected an error parsing the unknown class")
	}
	assert.Equal(t, (arch.ReturnsFD | arch.ClosesFD).String(), "fd|close")
}
