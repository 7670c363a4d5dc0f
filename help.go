package main

import (
	"context"
	"fmt"
	"strings"
)

const helpUsage = `
Usage:	tracecraft <command> [options]

Replay Commands:
   replay    Replay a trace to completion
   rerun     Re-execute a span of events and print them

Inspection Commands:
   describe  Show the metadata of a trace
   events    List the events of a trace
   ps        List the tasks of a trace

Other Commands:
   config    View or edit the tracecraft configuration
   help      Show usage information about tracecraft commands
   version   Show the tracecraft version information

Global Options:
   -c, --config  Path to the tracecraft configuration file (overrides TRACECRAFTCONFIG)
   -h, --help    Show usage information

Environment:
   TRACECRAFT_TRACE_DIR      Directory where traces given by name are looked up
   TRACECRAFT_RESOURCE_PATH  Directory of the platform support data
   TRACECRAFT_LOG            Log levels, for example all:info,syscall:debug

For a description of each command, run 'tracecraft help <command>'.`

func help(ctx context.Context, args []string) error {
	flagSet := newFlagSet("tracecraft help", helpUsage)

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}

	var cmd string
	if len(args) > 0 {
		cmd = args[0]
	}

	var msg string
	switch cmd {
	case "config":
		msg = configUsage
	case "describe":
		msg = describeUsage
	case "events":
		msg = eventsUsage
	case "help", "":
		msg = helpUsage
	case "ps":
		msg = psUsage
	case "replay":
		msg = replayUsage
	case "rerun":
		msg = rerunUsage
	case "version":
		msg = versionUsage
	default:
		return usageError("tracecraft help %s: unknown command", cmd)
	}

	fmt.Println(strings.TrimSpace(msg))
	return nil
}
