package main

import (
	"context"
	"os"

	"github.com/stealthrocket/tracecraft/internal/print/jsonprint"
	"github.com/stealthrocket/tracecraft/internal/print/textprint"
	"github.com/stealthrocket/tracecraft/internal/print/yamlprint"
	"github.com/stealthrocket/tracecraft/internal/stream"
	"github.com/stealthrocket/tracecraft/internal/tracecraft"
)

const psUsage = `
Usage:	tracecraft ps [options] [trace]

   The ps command lists the tasks recorded in a trace. Threads share the
   TGID of the thread group leader, START is the ordinal of the clone event
   that created the task.

Example:

   $ tracecraft ps make-0
   TID   TGID  PARENT  EXE        START  SYSCALLS  SIGNALS  STATUS
   4242  4242  0       /bin/make  0      342       1        exited with status 0
   4243  4243  4242    /bin/cc    97     1201      0        exited with status 0

Options:
   -c, --config path    Path to the tracecraft configuration file (overrides TRACECRAFTCONFIG)
   -h, --help           Show this usage information
   -o, --output format  Output format, one of: text, json, yaml
   -q, --quiet          Only display task ids
`

func ps(ctx context.Context, args []string) error {
	var (
		output = outputFormat("text")
		quiet  = false
	)

	flagSet := newFlagSet("tracecraft ps", psUsage)
	customVar(flagSet, &output, "o", "output")
	boolVar(flagSet, &quiet, "q", "quiet")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	path, err := traceArg("ps", args)
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

	sum, err := summarize(r)
	if err != nil {
		return err
	}

	var writer stream.WriteCloser[*taskView]
	switch output {
	case "json":
		writer = jsonprint.NewWriter[*taskView](os.Stdout)
	case "yaml":
		writer = yamlprint.NewWriter[*taskView](os.Stdout)
	default:
		writer = textprint.NewTableWriter[*taskView](os.Stdout,
			textprint.Header[*taskView](!quiet),
			textprint.List[*taskView](quiet),
		)
	}

	_, err = writer.Write(sum.tasks)
	if cerr := writer.Close(); err == nil {
		err = cerr
	}
	return err
}
