package main

import (
	"testing"

	"github.com/stealthrocket/tracecraft/internal/assert"
)

var helpTests = tests{
	"calling help with an unknown command causes an error": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "help", "whatever")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.Equal(t, stderr, "tracecraft help whatever: unknown command\n")
	},

	"passing an unsupported flag to the command causes an error": func(t *testing.T) {
		_, _, exitCode := runCommand(t, "help", "-_")
		assert.Equal(t, exitCode, 2)
	},

	"show the help command help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "help", "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\ttracecraft <command> ")
		assert.Equal(t, stderr, "")
	},

	"show the help command help with the long option": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "help", "--help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\ttracecraft <command> ")
		assert.Equal(t, stderr, "")
	},

	"show the help command help after a command name": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "help", "replay", "--help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\ttracecraft <command> ")
		assert.Equal(t, stderr, "")
	},

	"the help lists the environment variables": func(t *testing.T) {
		stdout, _, exitCode := runCommand(t, "help")
		assert.Equal(t, exitCode, 0)
		assert.Contains(t, stdout, "TRACECRAFT_TRACE_DIR")
		assert.Contains(t, stdout, "TRACECRAFT_RESOURCE_PATH")
		assert.Contains(t, stdout, "TRACECRAFT_LOG")
	},

	"tracecraft help config": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "help", "config")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\ttracecraft config ")
		assert.Equal(t, stderr, "")
	},

	"tracecraft help describe": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "help", "describe")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\ttracecraft describe ")
		assert.Equal(t, stderr, "")
	},

	"tracecraft help events": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "help", "events")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\ttracecraft events ")
		assert.Equal(t, stderr, "")
	},

	"tracecraft help help": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "help", "help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\ttracecraft <command> ")
		assert.Equal(t, stderr, "")
	},

	"tracecraft help ps": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "help", "ps")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\ttracecraft ps ")
		assert.Equal(t, stderr, "")
	},

	"tracecraft help replay": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "help", "replay")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\ttracecraft replay ")
		assert.Equal(t, stderr, "")
	},

	"tracecraft help rerun": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "help", "rerun")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\ttracecraft rerun ")
		assert.Equal(t, stderr, "")
	},

	"tracecraft help version": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "help", "version")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\ttracecraft version\n")
		assert.Equal(t, stderr, "")
	},
}

var rootTests = tests{
	"invoking tracecraft without a command prints the introduction message": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t)
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "tracecraft - Deterministic replay of Linux process recordings\n")
		assert.Equal(t, stderr, "")
	},

	"show the tracecraft help with the short option": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "-h")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\ttracecraft <command> ")
		assert.Equal(t, stderr, "")
	},

	"show the tracecraft help with the long option": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "--help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\ttracecraft <command> ")
		assert.Equal(t, stderr, "")
	},

	"an unknown global option is a usage error": func(t *testing.T) {
		_, stderr, exitCode := runCommand(t, "--whatever", "version")
		assert.Equal(t, exitCode, 2)
		assert.HasPrefix(t, stderr, "tracecraft: ")
	},
}

var unknownTests = tests{
	"an error is reported when invoking an unknown command": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "whatever")
		assert.Equal(t, exitCode, 2)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "tracecraft whatever: unknown command\n")
	},
}

var versionTests = tests{
	"show the version": func(t *testing.T) {
		stdout, stderr, exitCode := runCommand(t, "version")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "tracecraft ")
		assert.Equal(t, stderr, "")
	},

	"the version command does not take arguments": func(t *testing.T) {
		_, _, exitCode := runCommand(t, "version", "now")
		assert.Equal(t, exitCode, 2)
	},

	"show the version command help": func(t *testing.T) {
		stdout, _, exitCode := runCommand(t, "version", "--help")
		assert.Equal(t, exitCode, 0)
		assert.HasPrefix(t, stdout, "Usage:\ttracecraft version\n")
	},
}
