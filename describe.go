package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stealthrocket/tracecraft/internal/print/human"
	"github.com/stealthrocket/tracecraft/internal/print/jsonprint"
	"github.com/stealthrocket/tracecraft/internal/print/textprint"
	"github.com/stealthrocket/tracecraft/internal/print/yamlprint"
	"github.com/stealthrocket/tracecraft/internal/stream"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"github.com/stealthrocket/tracecraft/internal/tracecraft"
)

const describeUsage = `
Usage:	tracecraft describe [options] [trace]

   The describe command prints the metadata of a trace: the recorded process,
   the number of events and tasks, and the size of the trace files.

   The trace is either the path to a trace directory, or the name of a trace
   in the trace directory. The default is latest-trace.

Example:

   $ tracecraft describe ls-0
   ID:          0e4a4dc1-7cc3-4e5f-9e3e-9c4c0d4bd71b
   Arch:        x86_64 (version 1)
   Command:     /bin/ls -l
   Directory:   /home/user
   Start:       2h ago, Mon, 29 May 2023 23:00:41 UTC
   Duration:    12ms
   Events:      1024 (SyscallEntry: 500, SyscallExit: 499, Exec: 1, ...)
   Tasks:       1
   Compression: zstd
   Size:        96.0 KiB
   ---
   FILE    SIZE
   header  256 B
   ...

Options:
   -c, --config path    Path to the tracecraft configuration file (overrides TRACECRAFTCONFIG)
   -h, --help           Show this usage information
   -o, --output format  Output format, one of: text, json, yaml
`

func describe(ctx context.Context, args []string) error {
	output := outputFormat("text")

	flagSet := newFlagSet("tracecraft describe", describeUsage)
	customVar(flagSet, &output, "o", "output")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	path, err := traceArg("describe", args)
	if err != nil {
		return err
	}
	config, err := tracecraft.LoadConfig()
	if err != nil {
		return err
	}
	r, err := config.OpenTrace(path)
	if err != nil {
		return err
	}
	defer r.Close()

	desc, err := describeTrace(r)
	if err != nil {
		return err
	}

	var writer stream.WriteCloser[*traceDescriptor]
	switch output {
	case "json":
		writer = jsonprint.NewWriter[*traceDescriptor](os.Stdout)
	case "yaml":
		writer = yamlprint.NewWriter[*traceDescriptor](os.Stdout)
	default:
		writer = textprint.NewWriter[*traceDescriptor](os.Stdout)
	}
	defer writer.Close()

	_, err = writer.Write([]*traceDescriptor{desc})
	return err
}

// traceArg returns the optional trace argument of a command.
func traceArg(cmd string, args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", nil
	case 1:
		return args[0], nil
	default:
		return "", usageError("Expected at most one trace as argument" + useCmd(cmd))
	}
}

type traceDescriptor struct {
	ID          uuid.UUID      `json:"id"          yaml:"id"`
	Version     int            `json:"version"     yaml:"version"`
	Arch        string         `json:"arch"        yaml:"arch"`
	Exe         string         `json:"exe"         yaml:"exe"`
	Args        []string       `json:"args"        yaml:"args"`
	Env         []string       `json:"env"         yaml:"env"`
	Cwd         string         `json:"cwd"         yaml:"cwd"`
	InitialTid  int32          `json:"initialTid"  yaml:"initialTid"`
	StartTime   human.Time     `json:"startTime"   yaml:"startTime"`
	Duration    human.Duration `json:"duration"    yaml:"duration"`
	Events      int64          `json:"events"      yaml:"events"`
	Tasks       int            `json:"tasks"       yaml:"tasks"`
	Compression string         `json:"compression" yaml:"compression"`
	Syscallbuf  bool           `json:"syscallbuf"  yaml:"syscallbuf"`
	Size        human.Bytes    `json:"size"        yaml:"size"`
	Files       []traceFile    `json:"files"       yaml:"files"`

	kinds string
}

type traceFile struct {
	Name string      `json:"name" yaml:"name" text:"FILE"`
	Size human.Bytes `json:"size" yaml:"size" text:"SIZE"`
}

func describeTrace(r *trace.Reader) (*traceDescriptor, error) {
	sum, err := summarize(r)
	if err != nil {
		return nil, err
	}
	header := r.Header()
	desc := &traceDescriptor{
		ID:          header.UUID,
		Version:     header.Version,
		Arch:        header.Arch,
		Exe:         header.Process.Exe,
		Args:        header.Process.Args,
		Env:         header.Process.Environ,
		Cwd:         header.Process.Cwd,
		InitialTid:  header.Process.InitialTid,
		StartTime:   human.Time(header.Process.StartTime.In(time.Local)),
		Duration:    human.Duration(sum.duration),
		Events:      sum.events,
		Tasks:       len(sum.tasks),
		Compression: compressionName(header.Compression),
		Syscallbuf:  header.Syscallbuf,
		kinds:       sum.kindCounts(),
	}
	for _, name := range []string{trace.HeaderFile, trace.EventsFile, trace.DataFile, trace.MmapsFile} {
		info, err := os.Stat(filepath.Join(r.Dir(), name))
		if err != nil {
			return nil, err
		}
		desc.Files = append(desc.Files, traceFile{Name: name, Size: human.Bytes(info.Size())})
		desc.Size += human.Bytes(info.Size())
	}
	return desc, nil
}

func compressionName(c trace.Compression) string {
	switch c {
	case trace.Uncompressed:
		return "none"
	case trace.Snappy:
		return "snappy"
	case trace.Zstd:
		return "zstd"
	default:
		return c.String()
	}
}

func (desc *traceDescriptor) Format(w fmt.State, _ rune) {
	command := strings.Join(desc.Args, " ")
	if command == "" {
		command = desc.Exe
	}
	fmt.Fprintf(w, "ID:          %s\n", desc.ID)
	fmt.Fprintf(w, "Arch:        %s (version %d)\n", desc.Arch, desc.Version)
	fmt.Fprintf(w, "Command:     %s\n", command)
	fmt.Fprintf(w, "Directory:   %s\n", desc.Cwd)
	fmt.Fprintf(w, "Start:       %s, %s\n", desc.StartTime, time.Time(desc.StartTime).Format(time.RFC1123))
	fmt.Fprintf(w, "Duration:    %s\n", desc.Duration)
	if desc.kinds != "" {
		fmt.Fprintf(w, "Events:      %d (%s)\n", desc.Events, desc.kinds)
	} else {
		fmt.Fprintf(w, "Events:      %d\n", desc.Events)
	}
	fmt.Fprintf(w, "Tasks:       %d (initial tid %d)\n", desc.Tasks, desc.InitialTid)
	fmt.Fprintf(w, "Compression: %s\n", desc.Compression)
	if desc.Syscallbuf {
		fmt.Fprintf(w, "Syscallbuf:  enabled (unsupported by replay)\n")
	}
	fmt.Fprintf(w, "Size:        %s\n", desc.Size)
	fmt.Fprintf(w, "---\n")

	table := textprint.NewTableWriter[traceFile](w)
	defer table.Close()

	_, _ = table.Write(desc.Files)
}
