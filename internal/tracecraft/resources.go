package tracecraft

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"gopkg.in/yaml.v3"
)

// SyscallsFile is the name of the file holding the system call policy
// overrides of an architecture, in the resource directory of the
// architecture.
const SyscallsFile = "syscalls.yaml"

// syscallOverrides is the content of a system call policy file, for example:
//
//	syscalls:
//	  getrandom: unsupported
//	  sched_yield: emulate
type syscallOverrides struct {
	Syscalls map[string]arch.Class `yaml:"syscalls"`
}

// ReadSyscallOverrides parses a system call policy file.
func ReadSyscallOverrides(r io.Reader) (map[string]arch.Class, error) {
	var overrides syscallOverrides
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(&overrides); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return overrides.Syscalls, nil
}

// Syscalls returns the system call table of the build architecture with the
// overrides found in the resource directory applied.
func (c *Config) Syscalls() (*arch.Table, error) {
	table := arch.Syscalls()
	location, ok := c.Resources.Location.Value()
	if !ok {
		return table, nil
	}
	dir, err := location.Resolve()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, table.Arch(), SyscallsFile)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return table, nil
		}
		return nil, err
	}
	defer f.Close()

	overrides, err := ReadSyscallOverrides(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(overrides) == 0 {
		return table, nil
	}
	table, err = table.WithOverrides(overrides)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}
