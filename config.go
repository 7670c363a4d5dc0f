package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/stealthrocket/tracecraft/internal/print/jsonprint"
	"github.com/stealthrocket/tracecraft/internal/print/yamlprint"
	"github.com/stealthrocket/tracecraft/internal/stream"
	"github.com/stealthrocket/tracecraft/internal/tracecraft"
)

const configUsage = `
Usage:	tracecraft config [options]

   The config command prints the tracecraft configuration. With the text
   output format, the content of the configuration file is shown as is. The
   json and yaml formats show the configuration after the overrides of the
   environment were applied.

Options:
   -c, --config path    Path to the tracecraft configuration file (overrides TRACECRAFTCONFIG)
       --edit           Open $EDITOR to edit the configuration
   -h, --help           Show usage information
   -o, --output format  Output format, one of: text, json, yaml
`

func config(ctx context.Context, args []string) error {
	var (
		edit   bool
		output = outputFormat("text")
	)

	flagSet := newFlagSet("tracecraft config", configUsage)
	boolVar(flagSet, &edit, "edit")
	customVar(flagSet, &output, "o", "output")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return usageError("tracecraft config: unexpected arguments: %q", args)
	}

	if edit {
		if err := editConfig(ctx); err != nil {
			return err
		}
	}

	config, err := tracecraft.LoadConfig()
	if err != nil {
		return err
	}

	var writer stream.WriteCloser[*tracecraft.Config]
	switch output {
	case "json":
		writer = jsonprint.NewWriter[*tracecraft.Config](os.Stdout)
	case "yaml":
		writer = yamlprint.NewWriter[*tracecraft.Config](os.Stdout)
	default:
		r, _, err := tracecraft.OpenConfig()
		if err != nil {
			return err
		}
		defer r.Close()
		_, err = io.Copy(os.Stdout, r)
		return err
	}
	defer writer.Close()
	_, err = writer.Write([]*tracecraft.Config{config})
	return err
}

// editConfig opens a copy of the configuration file in $EDITOR, and replaces
// the file with the copy once the editor exits, unless the copy is invalid.
func editConfig(ctx context.Context) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return errors.New("$EDITOR is not set")
	}

	r, path, err := tracecraft.OpenConfig()
	if err != nil {
		return err
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return err
	}
	dir, name := filepath.Split(path)
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	_, err = io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	// The editor may carry arguments ("code --wait"), let the shell split them.
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", editor+` "$0"`, tmp.Name())
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", editor, err)
	}

	f, err := os.Open(tmp.Name())
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := tracecraft.ReadConfig(f); err != nil {
		return fmt.Errorf("not applying configuration updates because the file has a syntax error: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
