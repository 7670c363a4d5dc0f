package main

import (
	"context"
	"os"

	engine "github.com/stealthrocket/tracecraft/internal/replay"
	"github.com/stealthrocket/tracecraft/internal/tracecraft"
)

const replayUsage = `
Usage:	tracecraft replay [options] [trace]

   The replay command re-executes the process recorded in a trace. Every
   thread observes the system call results, signals, and memory effects
   stored in the trace, in the recorded order.

   The trace is either the path to a trace directory, or the name of a trace
   in the trace directory. The default is latest-trace.

Example:

   $ tracecraft replay ls-0
   ...

Options:
   -c, --config path   Path to the tracecraft configuration file (overrides TRACECRAFTCONFIG)
   -h, --help          Show this usage information
   -q, --quiet         Do not output the recording of stdout/stderr during the replay
       --stop-at N     Stop the replay before the event with ordinal N
       --strict        Abort when system call arguments differ from the recording
   -T, --trace         Enable strace-like logging of the replayed events
`

func replay(ctx context.Context, args []string) error {
	var (
		quiet  = false
		strict = false
		trace  = false
		stopAt = ordinal(-1)
	)

	flagSet := newFlagSet("tracecraft replay", replayUsage)
	boolVar(flagSet, &quiet, "q", "quiet")
	boolVar(flagSet, &strict, "strict")
	boolVar(flagSet, &trace, "T", "trace")
	customVar(flagSet, &stopAt, "stop-at")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	path, err := traceArg("replay", args)
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

	replay := tracecraft.NewReplay(config, r, tracecraft.NewHost(loggers))
	replay.SetLoggers(loggers)
	replay.SetStopAt(int64(stopAt))
	if strict {
		replay.SetStrict(true)
	}
	if !quiet {
		replay.SetStdout(os.Stdout)
		replay.SetStderr(os.Stderr)
	}
	if trace {
		replay.SetTrace(os.Stderr)
	}

	result, err := replay.Replay(ctx)
	if err != nil {
		return err
	}
	reportResult(result, trace)
	return nil
}

// reportResult prints the outcome of a replay on stderr. Tasks parked on
// unsupported system calls are always reported.
func reportResult(result engine.Result, verbose bool) {
	if len(result.Failed) > 0 {
		perrorf("WARN: tasks parked on unsupported system calls: %v", result.Failed)
	}
	if !verbose {
		return
	}
	switch result.Status {
	case engine.Exited:
		perrorf("+++ %s (%d events, %d skipped)", formatStatus(result.ExitStatus), result.Consumed, result.Skipped)
	default:
		perrorf("+++ %s (%d events, %d skipped)", result.Status, result.Consumed, result.Skipped)
	}
}
