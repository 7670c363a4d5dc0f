package main

import (
	"context"
	"io"
	"os"

	"github.com/stealthrocket/tracecraft/internal/print/jsonprint"
	"github.com/stealthrocket/tracecraft/internal/print/textprint"
	"github.com/stealthrocket/tracecraft/internal/print/yamlprint"
	"github.com/stealthrocket/tracecraft/internal/stream"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"github.com/stealthrocket/tracecraft/internal/tracecraft"
)

const eventsUsage = `
Usage:	tracecraft events [options] [trace]

   The events command lists the events recorded in a trace, in the order
   they are replayed.

Example:

   $ tracecraft events --from 10 --to 12 ls-0
   #   TID   TIME      KIND          DETAILS
   10  4242  1.021ms   SyscallEntry  openat(0xffffff9c, 0x7ffd2f1c, 0x80000)
   11  4242  1.045ms   SyscallExit   openat = 3
   12  4242  1.050ms   SyscallEntry  fstat(0x3, 0x7ffd2e50, 0x0)

Options:
   -c, --config path    Path to the tracecraft configuration file (overrides TRACECRAFTCONFIG)
       --from ordinal   First event to list (default to the first event)
   -h, --help           Show this usage information
   -o, --output format  Output format, one of: text, json, yaml
       --regs           Include the recorded registers (json and yaml only)
       --to ordinal     Last event to list (default to the last event)
`

func events(ctx context.Context, args []string) error {
	var (
		output    = outputFormat("text")
		from      = ordinal(-1)
		to        = ordinal(-1)
		registers = false
	)

	flagSet := newFlagSet("tracecraft events", eventsUsage)
	customVar(flagSet, &output, "o", "output")
	customVar(flagSet, &from, "from")
	customVar(flagSet, &to, "to")
	boolVar(flagSet, &registers, "regs")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if from >= 0 && to >= 0 && to < from {
		return usageError("Invalid event range: --to %d is before --from %d"+useCmd("events"), to, from)
	}
	path, err := traceArg("events", args)
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

	var writer stream.WriteCloser[eventView]
	switch output {
	case "json":
		writer = jsonprint.NewWriter[eventView](os.Stdout)
	case "yaml":
		writer = yamlprint.NewWriter[eventView](os.Stdout)
	default:
		writer = textprint.NewTableWriter[eventView](os.Stdout)
		registers = false
	}

	start := int64(0)
	if from >= 0 {
		start = int64(from)
	}
	reader := stream.ConvertReader[eventView, trace.Event](r.EventsFrom(start),
		func(e trace.Event) (eventView, error) {
			if to >= 0 && e.Ordinal > int64(to) {
				return eventView{}, io.EOF
			}
			v := viewEvent(&e)
			if registers {
				v.Registers = e.Registers
			}
			return v, nil
		},
	)
	_, err = stream.Copy[eventView](writer, reader)
	if cerr := writer.Close(); err == nil {
		err = cerr
	}
	return err
}
