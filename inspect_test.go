package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stealthrocket/tracecraft/internal/assert"
	"github.com/stealthrocket/tracecraft/internal/trace"
)

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func decodeJSON[T any](t *testing.T, s string) []T {
	t.Helper()
	var values []T
	d := json.NewDecoder(strings.NewReader(s))
	for {
		var v T
		if err := d.Decode(&v); err != nil {
			if err == io.EOF {
				return values
			}
			t.Fatal("decoding json output:", err)
		}
		values = append(values, v)
	}
}

var describeTests = tests{
	"describe a trace by name": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "describe", "echo")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")
		assert.HasPrefix(t, stdout, "ID:          ")
		assert.Contains(t, stdout, "\nCommand:     /bin/echo\n")
		assert.Contains(t, stdout, "\nEvents:      7 (SyscallEntry: 3, SyscallExit: 2, Exec: 1, Exit: 1)\n")
		assert.Contains(t, stdout, "\nTasks:       1 (initial tid 1000)\n")
		assert.Contains(t, stdout, "\nCompression: zstd\n")
		assert.Contains(t, stdout, "\nFILE    SIZE")
	},

	"describe the latest trace by default": func(t *testing.T) {
		stdout, _, exitCode := runCommand(t, "describe")
		assert.Equal(t, exitCode, 0)
		assert.Contains(t, stdout, "\nCommand:     /bin/echo\n")
	},

	"describe a trace by path": func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "traces", "other")
		recordEcho(t, dir)

		stdout, _, exitCode := runCommand(t, "describe", dir)
		assert.Equal(t, exitCode, 0)
		assert.Contains(t, stdout, "\nCommand:     /bin/echo\n")
	},

	"describe a trace as json": func(t *testing.T) {
		stdout, _, exitCode := runCommand(t, "describe", "-o", "json", "echo")
		assert.Equal(t, exitCode, 0)

		type description struct {
			Exe        string `json:"exe"`
			InitialTid int32  `json:"initialTid"`
			Events     int64  `json:"events"`
			Tasks      int    `json:"tasks"`
			Files      []struct {
				Name string `json:"name"`
			} `json:"files"`
		}
		desc := decodeJSON[description](t, stdout)
		assert.Equal(t, len(desc), 1)
		assert.Equal(t, desc[0].Exe, "/bin/echo")
		assert.Equal(t, desc[0].InitialTid, 1000)
		assert.Equal(t, desc[0].Events, 7)
		assert.Equal(t, desc[0].Tasks, 1)
		assert.Equal(t, len(desc[0].Files), 4)
		assert.Equal(t, desc[0].Files[0].Name, trace.HeaderFile)
	},

	"describing a missing trace is an error": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "describe", "missing")
		assert.Equal(t, exitCode, 1)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "ERR: tracecraft describe: ")
	},

	"describing more than one trace is a usage error": func(t *testing.T) {
		_, stderr, exitCode := runCommand(t, "describe", "echo", "latest-trace")
		assert.Equal(t, exitCode, 2)
		assert.HasPrefix(t, stderr, "Expected at most one trace as argument\n")
	},
}

var eventsTests = tests{
	"list all the events of a trace": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "events", "echo")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")

		output := lines(stdout)
		assert.Equal(t, len(output), 8)
		assert.HasPrefix(t, output[0], "#  ")
		assert.HasPrefix(t, output[1], "0  ")
		assert.Contains(t, output[1], "Exec")
		assert.Contains(t, output[2], "write(0x1, ")
		assert.Contains(t, output[3], "write = 6")
		assert.Contains(t, output[7], "exited with status 0")
	},

	"list a span of events": func(t *testing.T) {
		stdout, _, exitCode := runCommand(t, "events", "--from", "3", "--to", "4", "echo")
		assert.Equal(t, exitCode, 0)

		output := lines(stdout)
		assert.Equal(t, len(output), 3)
		assert.HasPrefix(t, output[1], "3  ")
		assert.HasPrefix(t, output[2], "4  ")
	},

	"list events with their registers": func(t *testing.T) {
		stdout, _, exitCode := runCommand(t, "events", "--regs", "-o", "json", "--from", "1", "--to", "2")
		assert.Equal(t, exitCode, 0)

		views := decodeJSON[eventView](t, stdout)
		assert.Equal(t, len(views), 2)
		assert.Equal(t, views[0].Ordinal, 1)
		assert.Equal(t, views[0].Kind, "SyscallEntry")
		assert.Equal(t, views[1].Kind, "SyscallExit")
		if views[0].Registers == nil {
			t.Fatal("registers of the syscall entry are missing")
		}
		assert.Equal(t, views[0].Registers.Rdi, 1)
	},

	"starting past the end lists nothing": func(t *testing.T) {
		stdout, _, exitCode := runCommand(t, "events", "--from", "100", "-o", "json")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, "")
	},

	"an inverted span is a usage error": func(t *testing.T) {
		_, _, exitCode := runCommand(t, "events", "--from", "4", "--to", "2")
		assert.Equal(t, exitCode, 2)
	},

	"a negative ordinal is a usage error": func(t *testing.T) {
		_, _, exitCode := runCommand(t, "events", "--from", "-1")
		assert.Equal(t, exitCode, 2)
	},
}

var psTests = tests{
	"list the tasks of a trace": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "ps", "echo")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stderr, "")

		output := lines(stdout)
		assert.Equal(t, len(output), 2)
		assert.HasPrefix(t, output[0], "TID ")
		assert.HasPrefix(t, output[1], "1000 ")
		assert.Contains(t, output[1], "/bin/echo")
		assert.Contains(t, output[1], "exited with status 0")
	},

	"list only the task ids": func(t *testing.T) {
		stdout, _, exitCode := runCommand(t, "ps", "-q", "echo")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, strings.TrimSpace(stdout), "1000")
	},

	"list the tasks as json": func(t *testing.T) {
		stdout, _, exitCode := runCommand(t, "ps", "-o", "json")
		assert.Equal(t, exitCode, 0)

		tasks := decodeJSON[taskView](t, stdout)
		assert.Equal(t, len(tasks), 1)
		assert.Equal(t, tasks[0], taskView{
			Tid:      1000,
			Tgid:     1000,
			Exe:      "/bin/echo",
			Syscalls: 3,
			Status:   "exited with status 0",
		})
	},

	"a corrupted trace is an error": func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "corrupted")
		recordEcho(t, dir)
		assert.OK(t, os.Truncate(filepath.Join(dir, trace.EventsFile), 10))

		_, stderr, exitCode := runCommand(t, "ps", dir)
		assert.Equal(t, exitCode, 1)
		assert.HasPrefix(t, stderr, "ERR: tracecraft ps: ")
	},
}
