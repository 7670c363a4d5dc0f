package main

import (
	"context"
)

const unknownCommand = `tracecraft %s: unknown command
For a list of commands available, run 'tracecraft help'.`

func unknown(ctx context.Context, cmd string) error {
	return usageError(unknownCommand, cmd)
}
