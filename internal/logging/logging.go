// Package logging builds the structured loggers of the replay engine
// components from a list of per-module levels.
//
// A specification is a comma-separated list of module:level pairs, where the
// special module "all" sets the level of modules that are not listed, for
// example "all:warn,sched:debug". Recognized levels are debug, info, warn
// and fatal.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// LevelFatal is the level of errors that abort a replay session.
const LevelFatal = slog.Level(12)

// DefaultLevel is the level of modules that a specification does not name.
const DefaultLevel = slog.LevelWarn

// Names of the modules of the replay engine.
const (
	Trace   = "trace"
	Sched   = "sched"
	Syscall = "syscall"
	Inject  = "inject"
	Ptrace  = "ptrace"
	Session = "session"
)

// ParseLevel parses one of the level names debug, info, warn or fatal.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "fatal":
		return LevelFatal, nil
	}
	return 0, fmt.Errorf("unknown log level: %q (expected debug, info, warn or fatal)", s)
}

// LevelName returns the name of a level as accepted by ParseLevel.
func LevelName(level slog.Level) string {
	switch {
	case level >= LevelFatal:
		return "fatal"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}

// Spec is a parsed logging specification.
type Spec struct {
	Default slog.Level
	Modules map[string]slog.Level
}

// ParseSpec parses a logging specification.
func ParseSpec(s string) (Spec, error) {
	spec := Spec{Default: DefaultLevel}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		module, name, ok := strings.Cut(item, ":")
		module = strings.TrimSpace(module)
		if !ok || module == "" {
			return Spec{}, fmt.Errorf("malformed log specification %q: expected module:level", item)
		}
		level, err := ParseLevel(name)
		if err != nil {
			return Spec{}, fmt.Errorf("malformed log specification %q: %w", item, err)
		}
		if module == "all" {
			spec.Default = level
			continue
		}
		if spec.Modules == nil {
			spec.Modules = make(map[string]slog.Level)
		}
		spec.Modules[module] = level
	}
	return spec, nil
}

// Level returns the level of a module.
func (s Spec) Level(module string) slog.Level {
	if level, ok := s.Modules[module]; ok {
		return level
	}
	return s.Default
}

func (s Spec) String() string {
	items := []string{"all:" + LevelName(s.Default)}
	modules := make([]string, 0, len(s.Modules))
	for module := range s.Modules {
		modules = append(modules, module)
	}
	sort.Strings(modules)
	for _, module := range modules {
		items = append(items, module+":"+LevelName(s.Modules[module]))
	}
	return strings.Join(items, ",")
}

// Loggers creates the loggers of modules. A nil *Loggers produces loggers
// that discard everything.
type Loggers struct {
	spec    Spec
	handler slog.Handler
}

// New returns Loggers writing text records to w.
func New(w io.Writer, spec Spec) *Loggers {
	return NewWithHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceLevel,
	}), spec)
}

// NewWithHandler returns Loggers producing records to h, which should accept
// every level.
func NewWithHandler(h slog.Handler, spec Spec) *Loggers {
	return &Loggers{spec: spec, handler: h}
}

// Spec returns the specification of the loggers.
func (l *Loggers) Spec() Spec {
	if l == nil {
		return Spec{Default: DefaultLevel}
	}
	return l.spec
}

// For returns the logger of a module.
func (l *Loggers) For(module string) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return slog.New(moduleHandler{
		inner: l.handler.WithAttrs([]slog.Attr{slog.String("module", module)}),
		level: l.spec.Level(module),
	})
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// Fatal logs msg at LevelFatal. It does not terminate the program.
func Fatal(log *slog.Logger, msg string, args ...any) {
	log.Log(context.Background(), LevelFatal, msg, args...)
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey && len(groups) == 0 {
		if level, ok := a.Value.Any().(slog.Level); ok && level >= LevelFatal {
			a.Value = slog.StringValue("FATAL")
		}
	}
	return a
}

type moduleHandler struct {
	inner slog.Handler
	level slog.Level
}

func (h moduleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level && h.inner.Enabled(ctx, level)
}

func (h moduleHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h moduleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return moduleHandler{inner: h.inner.WithAttrs(attrs), level: h.level}
}

func (h moduleHandler) WithGroup(name string) slog.Handler {
	return moduleHandler{inner: h.inner.WithGroup(name), level: h.level}
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
