package main

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
)

const versionUsage = `
Usage:	tracecraft version

   Prints the version of tracecraft, followed by the commit it was built
   from when known.

Options:
   -h, --help  Show this usage information
`

func version(ctx context.Context, args []string) error {
	flagSet := newFlagSet("tracecraft version", versionUsage)
	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return usageError("tracecraft version: unexpected arguments: %q", args)
	}
	v, commit := buildVersion()
	if commit != "" {
		fmt.Printf("tracecraft %s (%s, %s/%s)\n", v, commit, runtime.GOOS, runtime.GOARCH)
	} else {
		fmt.Printf("tracecraft %s\n", v)
	}
	return nil
}

// buildVersion returns the module version of the binary, "devel" for local
// builds, and the abbreviated VCS revision when the build recorded one.
func buildVersion() (version, commit string) {
	version = "devel"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version, ""
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		version = v
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 12 {
			commit = s.Value[:12]
		}
	}
	return version, commit
}
