package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/stealthrocket/tracecraft/internal/tracecraft"
	"golang.org/x/exp/slices"
)

// newFlagSet returns a flag set for cmd printing usage when -h or --help is
// given. Every command accepts -c/--config.
//
// Flags are registered without help strings: the usage constants of each
// command are the documentation.
func newFlagSet(cmd, usage string) *flag.FlagSet {
	usage = strings.TrimSpace(usage)
	f := flag.NewFlagSet(cmd, flag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.Usage = func() { fmt.Println(usage) }
	customVar(f, &tracecraft.ConfigPath, "c", "config")
	return f
}

// parseFlags parses the options of f wherever they appear in args, and
// returns the positional arguments in order.
//
// Asking for help returns exitCode(0) once the usage was printed. Other
// parsing errors are usage errors.
func parseFlags(f *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := f.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, exitCode(0)
			}
			return nil, usageError("%s: %s", f.Name(), err)
		}
		args = f.Args()
		if len(args) == 0 {
			return positional, nil
		}
		next := slices.IndexFunc(args, isOption)
		switch {
		case next < 0:
			return append(positional, args...), nil
		case next == 0:
			// flag.Parse only stops on an option after consuming "--".
			return append(positional, args...), nil
		}
		positional = append(positional, args[:next]...)
		args = args[next:]
	}
}

func isOption(arg string) bool { return len(arg) > 1 && arg[0] == '-' }

func boolVar(f *flag.FlagSet, dst *bool, names ...string) {
	for _, name := range names {
		f.BoolVar(dst, name, *dst, "")
	}
}

func customVar(f *flag.FlagSet, dst flag.Value, names ...string) {
	for _, name := range names {
		f.Var(dst, name, "")
	}
}

type outputFormat string

func (o outputFormat) String() string { return string(o) }

func (o *outputFormat) Set(value string) error {
	switch value {
	case "text", "json", "yaml":
		*o = outputFormat(value)
		return nil
	}
	return fmt.Errorf("unsupported output format: %q (not one of text, json, yaml)", value)
}

// ordinal is an event ordinal given on the command line, -1 when unset.
type ordinal int64

func (o ordinal) String() string { return strconv.FormatInt(int64(o), 10) }

func (o *ordinal) Set(value string) error {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil || v < 0 {
		return fmt.Errorf("invalid event ordinal: %q", value)
	}
	*o = ordinal(v)
	return nil
}

func useCmd(cmd string) string {
	return "\nUse 'tracecraft " + cmd + " --help' for more information."
}

// perrorf prints a message for the user on stderr.
func perrorf(msg string, args ...any) {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
