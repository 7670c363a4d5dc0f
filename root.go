package main

// Each command is implemented by a function named after it, in a file of the
// same name, and documented by a constant with the "Usage" suffix (replay and
// replayUsage in replay.go). Usage messages start with a "Usage:\ttracecraft"
// line, separated by a tab.

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/stealthrocket/tracecraft/internal/print/human"
	"github.com/stealthrocket/tracecraft/internal/tracecraft"
)

const rootUsage = `tracecraft - Deterministic replay of Linux process recordings

   tracecraft re-executes a recorded Linux process under ptrace, forcing every
   thread to observe the system call results, signals, and memory effects
   stored in its trace.

Example:

   $ tracecraft replay ~/traces/ls-0
   ...

   $ tracecraft rerun --from 120 --to 140 ls-0
   ...

For a list of commands available, run 'tracecraft help'.`

type command func(context.Context, []string) error

var commands = map[string]command{
	"config":   config,
	"describe": describe,
	"events":   events,
	"help":     help,
	"ps":       ps,
	"replay":   replay,
	"rerun":    rerun,
	"version":  version,
}

func root(ctx context.Context, args ...string) int {
	// Undocumented options used to profile tracecraft itself.
	var cpuProfile, memProfile human.Path

	tracecraft.ConfigPath = ""

	flagSet := newFlagSet("tracecraft", helpUsage)
	customVar(flagSet, &cpuProfile, "cpuprofile")
	customVar(flagSet, &memProfile, "memprofile")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return exitStatus("", usageError("tracecraft: %s", err))
	}

	if args = flagSet.Args(); len(args) == 0 {
		fmt.Println(rootUsage)
		return 0
	}
	defer profile(cpuProfile, memProfile)()

	cmd, args := args[0], args[1:]
	run, ok := commands[cmd]
	if !ok {
		return exitStatus(cmd, unknown(ctx, cmd))
	}
	return exitStatus(cmd, run(ctx, args))
}

// profile starts the requested profiles and returns a function which stops
// them. Profiling failures only produce warnings.
func profile(cpuProfile, memProfile human.Path) (stop func()) {
	var stops []func()
	if cpuProfile != "" {
		path, _ := cpuProfile.Resolve()
		if f, err := os.Create(path); err != nil {
			perrorf("WARN: could not create CPU profile: %s", err)
		} else if err := pprof.StartCPUProfile(f); err != nil {
			perrorf("WARN: could not start CPU profile: %s", err)
			f.Close()
		} else {
			stops = append(stops, func() { pprof.StopCPUProfile(); f.Close() })
		}
	}
	if memProfile != "" {
		path, _ := memProfile.Resolve()
		stops = append(stops, func() {
			f, err := os.Create(path)
			if err != nil {
				perrorf("WARN: could not create memory profile: %s", err)
				return
			}
			defer f.Close()
			runtime.GC()
			_ = pprof.WriteHeapProfile(f)
		})
	}
	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}

// exitStatus reports err on stderr and converts it to the exit code of the
// program: 2 for usage errors, 1 for other failures.
func exitStatus(cmd string, err error) int {
	var code exitCode
	var use usage
	switch {
	case err == nil:
		return 0
	case errors.As(err, &code):
		return int(code)
	case errors.As(err, &use):
		fmt.Fprintln(os.Stderr, string(use))
		return 2
	default:
		fmt.Fprintf(os.Stderr, "ERR: tracecraft %s: %s\n", cmd, err)
		return 1
	}
}

// exitCode is returned by commands which already reported their outcome and
// only need the program to exit with the given code.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit: %d", int(e)) }

// usage is the error type of invalid command lines.
type usage string

func usageError(msg string, args ...any) error { return usage(fmt.Sprintf(msg, args...)) }

func (e usage) Error() string { return string(e) }
