// Package tracecraft ties the configuration of the tracecraft command to the
// replay engine: it locates traces, loads platform support data, builds the
// loggers, and drives replay sessions.
package tracecraft

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stealthrocket/tracecraft/internal/logging"
	"github.com/stealthrocket/tracecraft/internal/print/human"
	"github.com/stealthrocket/tracecraft/internal/replay"
	"github.com/stealthrocket/tracecraft/internal/trace"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "~/.tracecraft/config.yaml"
	defaultTracePath  = "~/.tracecraft/traces"

	// DefaultTrace is the name of the trace replayed when none is given.
	DefaultTrace = "latest-trace"
)

// Environment variables overriding the configuration file.
const (
	ConfigEnv       = "TRACECRAFTCONFIG"
	TraceDirEnv     = "TRACECRAFT_TRACE_DIR"
	ResourcePathEnv = "TRACECRAFT_RESOURCE_PATH"
	LogEnv          = "TRACECRAFT_LOG"
)

// ConfigPath is the path to the tracecraft configuration. When empty, the
// path is taken from the environment, or is the default path.
var ConfigPath human.Path

func configPath() human.Path {
	if ConfigPath != "" {
		return ConfigPath
	}
	if path := os.Getenv(ConfigEnv); path != "" {
		return human.Path(path)
	}
	return defaultConfigPath
}

// LoadConfig opens and reads the configuration file, then applies the
// overrides of the environment.
func LoadConfig() (*Config, error) {
	r, _, err := OpenConfig()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	c, err := ReadConfig(r)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return c, nil
}

// OpenConfig opens the configuration file. The default configuration is
// returned when the file does not exist.
func OpenConfig() (io.ReadCloser, string, error) {
	path, err := configPath().Resolve()
	if err != nil {
		return nil, path, err
	}
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, path, err
		}
		b, _ := yaml.Marshal(DefaultConfig())
		return io.NopCloser(bytes.NewReader(b)), path, nil
	}
	return f, path, nil
}

// ReadConfig reads and parses configuration.
func ReadConfig(r io.Reader) (*Config, error) {
	c := DefaultConfig()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading tracecraft configuration: %w", err)
	}
	if _, err := logging.ParseSpec(c.Log); err != nil {
		return nil, fmt.Errorf("reading tracecraft configuration: %w", err)
	}
	return c, nil
}

// DefaultConfig is the default configuration.
func DefaultConfig() *Config {
	c := new(Config)
	c.Traces.Location = NullableValue[human.Path](defaultTracePath)
	c.Log = "all:warn"
	c.Reader.CacheSize = trace.DefaultCacheSize
	c.Reader.Verify = true
	c.Replay.StopTimeout = human.Duration(replay.DefaultStopTimeout)
	c.Replay.AttachRetries = replay.DefaultAttachRetries
	c.Replay.RetryInterval = human.Duration(replay.DefaultRetryInterval)
	return c
}

// Config is tracecraft configuration.
type Config struct {
	Traces struct {
		Location Nullable[human.Path] `json:"location" yaml:"location"`
	} `json:"traces" yaml:"traces"`
	Resources struct {
		Location Nullable[human.Path] `json:"location" yaml:"location"`
	} `json:"resources" yaml:"resources"`
	// Log is the logging specification, see the logging package.
	Log    string `json:"log" yaml:"log"`
	Reader struct {
		CacheSize int  `json:"cacheSize" yaml:"cacheSize"`
		Verify    bool `json:"verify" yaml:"verify"`
	} `json:"reader" yaml:"reader"`
	Replay struct {
		Strict        bool           `json:"strict" yaml:"strict"`
		StopTimeout   human.Duration `json:"stopTimeout" yaml:"stopTimeout"`
		AttachRetries int            `json:"attachRetries" yaml:"attachRetries"`
		RetryInterval human.Duration `json:"retryInterval" yaml:"retryInterval"`
		Limits        struct {
			MaxTasks       Nullable[int] `json:"maxTasks" yaml:"maxTasks"`
			MaxMappings    Nullable[int] `json:"maxMappings" yaml:"maxMappings"`
			MaxDescriptors Nullable[int] `json:"maxDescriptors" yaml:"maxDescriptors"`
		} `json:"limits" yaml:"limits"`
	} `json:"replay" yaml:"replay"`
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if dir, ok := lookup(TraceDirEnv); ok && dir != "" {
		var p human.Path
		if err := p.Set(dir); err != nil {
			return fmt.Errorf("%s: %w", TraceDirEnv, err)
		}
		c.Traces.Location = NullableValue(p)
	}
	if dir, ok := lookup(ResourcePathEnv); ok && dir != "" {
		var p human.Path
		if err := p.Set(dir); err != nil {
			return fmt.Errorf("%s: %w", ResourcePathEnv, err)
		}
		c.Resources.Location = NullableValue(p)
	}
	if spec, ok := lookup(LogEnv); ok {
		if _, err := logging.ParseSpec(spec); err != nil {
			return fmt.Errorf("%s: %w", LogEnv, err)
		}
		c.Log = spec
	}
	return nil
}

// TraceDir returns the directory where traces named on the command line are
// looked up, or the empty string if it is not configured.
func (c *Config) TraceDir() (string, error) {
	location, ok := c.Traces.Location.Value()
	if !ok {
		return "", nil
	}
	return location.Resolve()
}

// ResolveTrace returns the path of the trace directory designated by arg,
// which is either a path to a directory or the name of a trace in the trace
// directory. An empty arg designates the default trace.
func (c *Config) ResolveTrace(arg string) (string, error) {
	if arg == "" {
		arg = DefaultTrace
	}
	if strings.ContainsRune(arg, os.PathSeparator) || arg == "." || arg == ".." {
		return human.Path(arg).Resolve()
	}
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return arg, nil
	}
	dir, err := c.TraceDir()
	if err != nil {
		return "", err
	}
	if dir == "" {
		return "", fmt.Errorf("trace %q not found and no trace directory is configured", arg)
	}
	return filepath.Join(dir, arg), nil
}

// OpenTrace opens and validates the trace designated by arg.
func (c *Config) OpenTrace(arg string) (*trace.Reader, error) {
	dir, err := c.ResolveTrace(arg)
	if err != nil {
		return nil, err
	}
	return trace.Open(dir, trace.Options{
		CacheSize:  c.Reader.CacheSize,
		SkipVerify: !c.Reader.Verify,
	})
}

// Loggers builds the loggers of the engine components, writing to w.
func (c *Config) Loggers(w io.Writer) (*logging.Loggers, error) {
	spec, err := logging.ParseSpec(c.Log)
	if err != nil {
		return nil, err
	}
	return logging.New(w, spec), nil
}

// SessionConfig returns the configuration of replay sessions. Output writers
// and observers are left for the caller to set.
func (c *Config) SessionConfig() (replay.Config, error) {
	syscalls, err := c.Syscalls()
	if err != nil {
		return replay.Config{}, err
	}
	var limits replay.Limits
	limits.MaxTasks, _ = c.Replay.Limits.MaxTasks.Value()
	limits.MaxMappings, _ = c.Replay.Limits.MaxMappings.Value()
	limits.MaxDescriptors, _ = c.Replay.Limits.MaxDescriptors.Value()
	return replay.Config{
		Strict:        c.Replay.Strict,
		StopTimeout:   time.Duration(c.Replay.StopTimeout),
		AttachRetries: c.Replay.AttachRetries,
		RetryInterval: time.Duration(c.Replay.RetryInterval),
		Limits:        limits,
		Syscalls:      syscalls,
	}, nil
}
