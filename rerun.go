package main

import (
	"context"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/print/jsonprint"
	"github.com/stealthrocket/tracecraft/internal/print/textprint"
	"github.com/stealthrocket/tracecraft/internal/print/yamlprint"
	engine "github.com/stealthrocket/tracecraft/internal/replay"
	"github.com/stealthrocket/tracecraft/internal/stream"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"github.com/stealthrocket/tracecraft/internal/tracecraft"
)

const rerunUsage = `
Usage:	tracecraft rerun --from N --to M [options] [trace]

   The rerun command replays a trace up to event N without reporting it, then
   prints each event from N to M once it was replayed. With --regs, the
   registers of the task after the event are read from the live process.

Example:

   $ tracecraft rerun --from 10 --to 11 ls-0
   #10 tid=4242 SyscallEntry openat(0xffffff9c, 0x7ffd2f1c, 0x80000)
   #11 tid=4242 SyscallExit openat = 3

Options:
   -c, --config path    Path to the tracecraft configuration file (overrides TRACECRAFTCONFIG)
       --from N         First event of the span to print
   -h, --help           Show this usage information
   -o, --output format  Output format, one of: text, json, yaml
   -q, --quiet          Do not output the recording of stdout/stderr during the replay
       --regs           Print the registers of the task after each event
       --to N           Last event of the span to print
`

var registerDump = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func rerun(ctx context.Context, args []string) error {
	var (
		output    = outputFormat("text")
		from      = ordinal(-1)
		to        = ordinal(-1)
		quiet     = false
		registers = false
	)

	flagSet := newFlagSet("tracecraft rerun", rerunUsage)
	customVar(flagSet, &output, "o", "output")
	customVar(flagSet, &from, "from")
	customVar(flagSet, &to, "to")
	boolVar(flagSet, &quiet, "q", "quiet")
	boolVar(flagSet, &registers, "regs")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if from < 0 || to < 0 {
		return usageError("Expected both --from and --to" + useCmd("rerun"))
	}
	if to < from {
		return usageError("Invalid event range: --to %d is before --from %d"+useCmd("rerun"), to, from)
	}
	path, err := traceArg("rerun", args)
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

	loggers, err := config.Loggers(os.Stderr)
	if err != nil {
		return err
	}

	var writer stream.WriteCloser[eventView]
	switch output {
	case "json":
		writer = jsonprint.NewWriter[eventView](os.Stdout)
	case "yaml":
		writer = yamlprint.NewWriter[eventView](os.Stdout)
	default:
		writer = textprint.NewWriter[eventView](os.Stdout,
			textprint.Separator[eventView](""),
		)
	}

	replay := tracecraft.NewReplay(config, r, tracecraft.NewHost(loggers))
	replay.SetLoggers(loggers)
	if !quiet {
		// stdout carries the events.
		replay.SetStdout(os.Stderr)
		replay.SetStderr(os.Stderr)
	}

	result, err := replay.Rerun(ctx, int64(from), int64(to), func(s *engine.Session, e *trace.Event) error {
		v := viewEvent(e)
		if registers {
			regs, err := liveRegisters(s, e.Tid)
			if err != nil {
				return err
			}
			v.Registers = regs
		}
		_, err := writer.Write([]eventView{v})
		return err
	})
	if cerr := writer.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	reportResult(result, false)
	return nil
}

// liveRegisters reads the registers of the task with the recorded tid, nil if
// the task no longer exists.
func liveRegisters(s *engine.Session, tid int32) (*arch.Registers, error) {
	t, ok := s.Registry().Task(tid)
	if !ok {
		return nil, nil
	}
	regs, err := t.Registers()
	if err != nil {
		return nil, fmt.Errorf("reading registers of task %d: %w", tid, err)
	}
	return regs, nil
}

func (v eventView) Format(w fmt.State, _ rune) {
	fmt.Fprintf(w, "#%d tid=%d %s %s\n", v.Ordinal, v.Tid, v.Kind, v.Details)
	if v.Registers != nil {
		registerDump.Fdump(w, v.Registers)
	}
}
