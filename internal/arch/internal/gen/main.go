// Command gen generates the Go source of a system call table from its text
// description.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"os"
	"strconv"
	"strings"
)

var classes = map[string]string{
	"emulate":     "Emulate",
	"execute":     "Execute",
	"memory":      "Memory",
	"process":     "Process",
	"unsupported": "Unsupported",
}

var flags = map[string]string{
	"fd":     "ReturnsFD",
	"fdpair": "ReturnsFDPair",
	"close":  "ClosesFD",
	"output": "Output",
	"verify": "Verify",
}

type syscall struct {
	number int
	name   string
	class  string
	flags  []string
}

func main() {
	arch := flag.String("arch", "", "architecture name")
	in := flag.String("in", "", "path to the system call table")
	out := flag.String("out", "", "path to the generated Go source")
	flag.Parse()

	if err := run(*arch, *in, *out); err != nil {
		fmt.Fprintf(os.Stderr, "gen: %s\n", err)
		os.Exit(1)
	}
}

func run(arch, in, out string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	syscalls, err := parse(f.Name(), bufio.NewScanner(f))
	if err != nil {
		return err
	}

	src, err := generate(arch, in, syscalls)
	if err != nil {
		return err
	}
	return os.WriteFile(out, src, 0644)
}

func parse(name string, s *bufio.Scanner) ([]syscall, error) {
	var syscalls []syscall
	numbers := make(map[int]string)
	for lineno := 1; s.Scan(); lineno++ {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("%s:%d: expected number, name and class", name, lineno)
		}
		number, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineno, err)
		}
		if prev, ok := numbers[number]; ok {
			return nil, fmt.Errorf("%s:%d: number %d already used by %s", name, lineno, number, prev)
		}
		class, ok := classes[fields[2]]
		if !ok {
			return nil, fmt.Errorf("%s:%d: invalid class: %q", name, lineno, fields[2])
		}
		sc := syscall{number: number, name: fields[1], class: class}
		for _, fl := range fields[3:] {
			f, ok := flags[fl]
			if !ok {
				return nil, fmt.Errorf("%s:%d: invalid flag: %q", name, lineno, fl)
			}
			sc.flags = append(sc.flags, f)
		}
		numbers[number] = sc.name
		syscalls = append(syscalls, sc)
	}
	return syscalls, s.Err()
}

func generate(arch, in string, syscalls []syscall) ([]byte, error) {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "// Code generated by internal/gen from %s. DO NOT EDIT.\n\n", in)
	fmt.Fprintf(buf, "package arch\n\n")
	fmt.Fprintf(buf, "// System call numbers of %s.\n", arch)
	fmt.Fprintf(buf, "const (\n")
	for _, sc := range syscalls {
		fmt.Fprintf(buf, "\t%s = %d\n", constName(sc.name), sc.number)
	}
	fmt.Fprintf(buf, ")\n\n")
	fmt.Fprintf(buf, "var syscalls%s = newTable(%q, []Syscall{\n", varSuffix(arch), arch)
	for _, sc := range syscalls {
		fmt.Fprintf(buf, "\t{Number: %s, Name: %q, Class: %s", constName(sc.name), sc.name, sc.class)
		if len(sc.flags) > 0 {
			fmt.Fprintf(buf, ", Flags: %s", strings.Join(sc.flags, " | "))
		}
		fmt.Fprintf(buf, "},\n")
	}
	fmt.Fprintf(buf, "})\n")
	return format.Source(buf.Bytes())
}

func constName(name string) string {
	var b strings.Builder
	b.WriteString("Sys")
	for _, part := range strings.Split(name, "_") {
		if part != "" {
			b.WriteString(strings.ToUpper(part[:1]))
			b.WriteString(part[1:])
		}
	}
	return b.String()
}

func varSuffix(arch string) string {
	return strings.ToUpper(arch[:1]) + arch[1:]
}
