package arch

//go:generate go run ./internal/gen -arch x86_64 -in syscalls_x86_64.txt -out syscalls_x86_64.go

import (
	"fmt"
	"strconv"
	"strings"
)

// Class describes how replay handles a system call.
type Class uint8

const (
	// Unknown is the class of numbers that are not system calls.
	Unknown Class = iota
	// Emulate system calls are suppressed at entry, their results and output
	// buffers are replaced by the recorded values.
	Emulate
	// Execute system calls run for real because their effects are local to
	// the task and deterministic.
	Execute
	// Memory system calls change the layout of the address space, they run
	// for real with arguments rewritten to reproduce the recorded layout.
	Memory
	// Process system calls create, replace, or terminate tasks.
	Process
	// Unsupported system calls cannot be replayed.
	Unsupported
)

var classNames = [...]string{
	Unknown:     "unknown",
	Emulate:     "emulate",
	Execute:     "execute",
	Memory:      "memory",
	Process:     "process",
	Unsupported: "unsupported",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "Class(" + strconv.Itoa(int(c)) + ")"
}

// ParseClass parses a class name.
func ParseClass(s string) (Class, error) {
	for c, name := range classNames {
		if name == s && Class(c) != Unknown {
			return Class(c), nil
		}
	}
	return Unknown, fmt.Errorf("invalid system call class: %q", s)
}

func (c Class) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Class) UnmarshalText(b []byte) error {
	v, err := ParseClass(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Flags describe side effects of system calls that the replay engine tracks.
type Flags uint8

const (
	// ReturnsFD system calls return a new file descriptor.
	ReturnsFD Flags = 1 << iota
	// ReturnsFDPair system calls write a pair of file descriptors to memory.
	ReturnsFDPair
	// ClosesFD system calls close the descriptor in their first argument.
	ClosesFD
	// Output system calls write a buffer to the descriptor in their first
	// argument, which is echoed when standard output is redirected.
	Output
	// Verify system calls have deterministic results that are compared with
	// the recorded ones when executed.
	Verify
)

var flagNames = [...]string{"fd", "fdpair", "close", "output", "verify"}

func (f Flags) Has(flags Flags) bool { return (f & flags) == flags }

func (f Flags) String() string {
	var s []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			s = append(s, name)
		}
	}
	return strings.Join(s, "|")
}

// ParseFlag parses the name of a single flag.
func ParseFlag(s string) (Flags, error) {
	for i, name := range flagNames {
		if name == s {
			return 1 << i, nil
		}
	}
	return 0, fmt.Errorf("invalid system call flag: %q", s)
}

// Syscall is an entry of the system call table.
type Syscall struct {
	Number int
	Name   string
	Class  Class
	Flags  Flags
}

// Table maps system call numbers to their replay handling.
type Table struct {
	arch    string
	entries []Syscall
	names   map[string]int
}

// newTable builds a table from a list of system calls. The list may be sparse
// and in any order, entries are indexed by number.
func newTable(arch string, syscalls []Syscall) *Table {
	size := 0
	for _, s := range syscalls {
		size = max(size, s.Number+1)
	}
	t := &Table{
		arch:    arch,
		entries: make([]Syscall, size),
		names:   make(map[string]int, len(syscalls)),
	}
	for _, s := range syscalls {
		if s.Class != Unknown {
			t.entries[s.Number] = s
			t.names[s.Name] = s.Number
		}
	}
	return t
}

// Syscalls returns the system call table of the architecture of this build.
func Syscalls() *Table { return syscallsX86_64 }

// Arch is the name of the architecture the table was generated for.
func (t *Table) Arch() string { return t.arch }

// Lookup returns the table entry for a system call number. The returned
// entry has the Unknown class if the number is not a system call.
func (t *Table) Lookup(no int) Syscall {
	if no >= 0 && no < len(t.entries) && t.entries[no].Class != Unknown {
		return t.entries[no]
	}
	return Syscall{Number: no, Name: SyscallName(no), Class: Unknown}
}

// LookupName returns the table entry for a system call name.
func (t *Table) LookupName(name string) (Syscall, bool) {
	i, ok := t.names[name]
	if !ok {
		return Syscall{}, false
	}
	return t.entries[i], true
}

// Name returns the name of a system call number.
func (t *Table) Name(no int) string { return t.Lookup(no).Name }

// Len returns the number of system calls in the table.
func (t *Table) Len() int { return len(t.names) }

// Entries returns the system calls of the table ordered by number.
func (t *Table) Entries() []Syscall {
	entries := make([]Syscall, 0, len(t.names))
	for _, e := range t.entries {
		if e.Class != Unknown {
			entries = append(entries, e)
		}
	}
	return entries
}

// WithOverrides returns a copy of the table where the classes of the named
// system calls are replaced.
func (t *Table) WithOverrides(classes map[string]Class) (*Table, error) {
	entries := make([]Syscall, len(t.entries))
	copy(entries, t.entries)
	for name, class := range classes {
		i, ok := t.names[name]
		if !ok {
			return nil, fmt.Errorf("%s: no such system call: %q", t.arch, name)
		}
		if class == Unknown {
			return nil, fmt.Errorf("%s: %s: cannot override class to %s", t.arch, name, class)
		}
		entries[i].Class = class
	}
	return newTable(t.arch, entries), nil
}

// SyscallName returns the name of a system call number of the architecture of
// this build.
func SyscallName(no int) string {
	if no >= 0 && no < len(syscallsX86_64.entries) {
		if e := syscallsX86_64.entries[no]; e.Class != Unknown {
			return e.Name
		}
	}
	return "<unknown-syscall-" + strconv.Itoa(no) + ">"
}
