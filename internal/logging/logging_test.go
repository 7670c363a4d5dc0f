package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stealthrocket/tracecraft/internal/assert"
	"github.com/stealthrocket/tracecraft/internal/logging"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		spec    string
		levels  map[string]slog.Level
		display string
	}{
		{
			spec:    "",
			levels:  map[string]slog.Level{"sched": slog.LevelWarn},
			display: "all:warn",
		},
		{
			spec: "all:debug",
			levels: map[string]slog.Level{
				"sched":   slog.LevelDebug,
				"syscall": slog.LevelDebug,
			},
			display: "all:debug",
		},
		{
			spec: "all:fatal, sched:debug ,syscall:info",
			levels: map[string]slog.Level{
				"sched":   slog.LevelDebug,
				"syscall": slog.LevelInfo,
				"inject":  logging.LevelFatal,
			},
			display: "all:fatal,sched:debug,syscall:info",
		},
		{
			spec: "ptrace:WARN,,all:info",
			levels: map[string]slog.Level{
				"ptrace":  slog.LevelWarn,
				"session": slog.LevelInfo,
			},
			display: "all:info,ptrace:warn",
		},
	}

	for _, test := range tests {
		t.Run(test.spec, func(t *testing.T) {
			spec, err := logging.ParseSpec(test.spec)
			assert.OK(t, err)
			for module, level := range test.levels {
				assert.Equal(t, spec.Level(module), level)
			}
			assert.Equal(t, spec.String(), test.display)
		})
	}
}

func TestParseSpecErrors(t *testing.T) {
	for _, spec := range []string{
		"debug",
		":debug",
		"sched:verbose",
		"all:error",
		"sched:info,syscall",
	} {
		t.Run(spec, func(t *testing.T) {
			_, err := logging.ParseSpec(spec)
			if err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoggers(t *testing.T) {
	spec, err := logging.ParseSpec("all:warn,sched:debug")
	assert.OK(t, err)

	var out bytes.Buffer
	loggers := logging.New(&out, spec)

	loggers.For(logging.Sched).Debug("scheduled", "tid", 42)
	loggers.For(logging.Syscall).Info("hidden")
	loggers.For(logging.Syscall).Warn("shown")
	logging.Fatal(loggers.For(logging.Session), "aborted")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, len(lines), 3)
	assert.Equal(t, strings.Contains(lines[0], "module=sched"), true)
	assert.Equal(t, strings.Contains(lines[0], "tid=42"), true)
	assert.Equal(t, strings.Contains(lines[1], "msg=shown"), true)
	assert.Equal(t, strings.Contains(lines[2], "level=FATAL"), true)
	assert.Equal(t, strings.Contains(lines[2], "module=session"), true)
}

func TestNilLoggersDiscard(t *testing.T) {
	var loggers *logging.Loggers
	log := loggers.For(logging.Trace)
	assert.Equal(t, log.Enabled(nil, logging.LevelFatal), false) //nolint:staticcheck
	assert.Equal(t, loggers.Spec().Default, logging.DefaultLevel)
}
