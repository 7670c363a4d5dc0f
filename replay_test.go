package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stealthrocket/tracecraft/internal/assert"
	"github.com/stealthrocket/tracecraft/internal/trace"
)

var replayTests = tests{
	"replaying more than one trace is a usage error": func(t *testing.T) {
		_, stderr, exitCode := runCommand(t, "replay", "echo", "latest-trace")
		assert.Equal(t, exitCode, 2)
		assert.HasPrefix(t, stderr, "Expected at most one trace as argument\n")
	},

	"a negative stop ordinal is a usage error": func(t *testing.T) {
		_, _, exitCode := runCommand(t, "replay", "--stop-at", "-3", "echo")
		assert.Equal(t, exitCode, 2)
	},

	"replaying a missing trace is an error": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "replay", "missing")
		assert.Equal(t, exitCode, 1)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "ERR: tracecraft replay: ")
	},

	"a truncated trace is rejected before anything is spawned": func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "truncated")
		recordEcho(t, dir)
		path := filepath.Join(dir, trace.EventsFile)
		info, err := os.Stat(path)
		assert.OK(t, err)
		assert.OK(t, os.Truncate(path, info.Size()-1))

		stdout, stderr, exitCode := runCommand(t, "replay", dir)
		assert.Equal(t, exitCode, 1)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "ERR: tracecraft replay: ")
		assert.Contains(t, stderr, trace.EventsFile)
	},

	"a malformed log specification is an error": func(t *testing.T) {
		t.Setenv("TRACECRAFT_LOG", "ptrace:loud")

		_, stderr, exitCode := runCommand(t, "replay", "echo")
		assert.Equal(t, exitCode, 1)
		assert.HasPrefix(t, stderr, "ERR: tracecraft replay: TRACECRAFT_LOG: ")
	},
}

var rerunTests = tests{
	"the span of events is required": func(t *testing.T) {
		_, stderr, exitCode := runCommand(t, "rerun", "echo")
		assert.Equal(t, exitCode, 2)
		assert.HasPrefix(t, stderr, "Expected both --from and --to\n")
	},

	"the end of the span is required": func(t *testing.T) {
		_, _, exitCode := runCommand(t, "rerun", "--from", "2", "echo")
		assert.Equal(t, exitCode, 2)
	},

	"an inverted span is a usage error": func(t *testing.T) {
		_, stderr, exitCode := runCommand(t, "rerun", "--from", "4", "--to", "2", "echo")
		assert.Equal(t, exitCode, 2)
		assert.HasPrefix(t, stderr, "Invalid event range: --to 2 is before --from 4\n")
	},

	"rerunning a missing trace is an error": func(t *testing.T) {
		_, stderr, exitCode := runCommand(t, "rerun", "--from", "0", "--to", "1", "missing")
		assert.Equal(t, exitCode, 1)
		assert.HasPrefix(t, stderr, "ERR: tracecraft rerun: ")
	},
}
