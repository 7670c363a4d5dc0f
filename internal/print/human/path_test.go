package human_test

import (
	"path/filepath"
	"testing"

	"github.com/stealthrocket/tracecraft/internal/assert"
	"github.com/stealthrocket/tracecraft/internal/print/human"
)

func TestPathResolve(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	for _, test := range []struct {
		path human.Path
		want string
	}{
		{path: "~", want: home},
		{path: "~/.tracecraft/traces", want: filepath.Join(home, ".tracecraft/traces")},
		{path: "~other/traces", want: "~other/traces"},
		{path: "/var/lib/tracecraft", want: "/var/lib/tracecraft"},
		{path: "traces", want: "traces"},
	} {
		got, err := test.path.Resolve()
		assert.OK(t, err)
		assert.Equal(t, got, test.want)
	}
}
