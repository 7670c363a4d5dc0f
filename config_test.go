package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stealthrocket/tracecraft/internal/assert"
)

var configTests = tests{
	"the text output is the content of the configuration file": func(t *testing.T) {
		b, err := os.ReadFile(os.Getenv("TRACECRAFTCONFIG"))
		assert.OK(t, err)

		stdout, stderr, exitCode := runCommand(t, "config")
		assert.Equal(t, exitCode, 0)
		assert.Equal(t, stdout, string(b))
		assert.Equal(t, stderr, "")
	},

	"the json output applies the environment": func(t *testing.T) {
		t.Setenv("TRACECRAFT_LOG", "sched:debug")

		stdout, _, exitCode := runCommand(t, "config", "-o", "json")
		assert.Equal(t, exitCode, 0)
		assert.Contains(t, stdout, `"log": "sched:debug"`)
	},

	"the trace directory of the environment overrides the file": func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("TRACECRAFT_TRACE_DIR", dir)

		stdout, _, exitCode := runCommand(t, "config", "--output=json")
		assert.Equal(t, exitCode, 0)
		assert.Contains(t, stdout, `"location": "`+dir+`"`)
	},

	"a malformed log specification is an error": func(t *testing.T) {
		t.Setenv("TRACECRAFT_LOG", "sched")

		stdout, stderr, exitCode := runCommand(t, "config", "-o", "yaml")
		assert.Equal(t, exitCode, 1)
		assert.Equal(t, stdout, "")
		assert.HasPrefix(t, stderr, "ERR: tracecraft config: TRACECRAFT_LOG: ")
	},

	"a missing configuration file yields the default configuration": func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.yaml")

		stdout, _, exitCode := runCommand(t, "config", "-c", path, "-o", "json")
		assert.Equal(t, exitCode, 0)
		assert.Contains(t, stdout, `"log": "all:fatal"`)
		assert.Contains(t, stdout, `"cacheSize": 64`)
	},

	"unknown fields in the configuration file are an error": func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		assert.OK(t, os.WriteFile(path, []byte("registry:\n  location: /tmp\n"), 0666))

		_, stderr, exitCode := runCommand(t, "config", "--config", path, "-o", "json")
		assert.Equal(t, exitCode, 1)
		assert.HasPrefix(t, stderr, "ERR: tracecraft config: reading tracecraft configuration: ")
	},

	"an unsupported output format is a usage error": func(t *testing.T) {
		_, _, exitCode := runCommand(t, "config", "-o", "xml")
		assert.Equal(t, exitCode, 2)
	},

	"the config command does not take arguments": func(t *testing.T) {
		_, _, exitCode := runCommand(t, "config", "whatever")
		assert.Equal(t, exitCode, 2)
	},
}
