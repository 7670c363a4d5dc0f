//go:build !linux || !amd64

package ptrace

import (
	"context"
	"log/slog"
	"time"

	"github.com/stealthrocket/tracecraft/internal/tracee"
	"gitlab.com/tozd/go/errors"
)

// ErrUnsupportedPlatform is returned by the hosts of builds that cannot
// replay traces.
var ErrUnsupportedPlatform = errors.Base("replay requires linux/amd64")

// Options configure a Host.
type Options struct {
	Logger          *slog.Logger
	PollInterval    time.Duration
	MaxPollInterval time.Duration
}

// Host is a placeholder that fails every operation.
type Host struct{}

var _ tracee.Host = (*Host)(nil)

func NewHost(opts Options) *Host { return &Host{} }

func (h *Host) Spawn(ctx context.Context, opts tracee.SpawnOptions) (tracee.Tracee, error) {
	return nil, tracee.Errorf(0, "spawn "+opts.Path, ErrUnsupportedPlatform)
}

func (h *Host) Adopt(tid int) (tracee.Tracee, error) {
	return nil, tracee.Errorf(tid, "adopt", ErrUnsupportedPlatform)
}

func (h *Host) Close() error { return nil }
