package yamlprint_test

import (
	"bytes"
	"testing"

	"github.com/stealthrocket/tracecraft/internal/assert"
	"github.com/stealthrocket/tracecraft/internal/print/yamlprint"
)

type mapping struct {
	Start uint64 `yaml:"start"`
	Path  string `yaml:"path,omitempty"`
}

func TestWriteNothing(t *testing.T) {
	b := new(bytes.Buffer)
	w := yamlprint.NewWriter[mapping](b)
	assert.OK(t, w.Close())
	assert.Equal(t, b.String(), "")
}

func TestWriteValues(t *testing.T) {
	b := new(bytes.Buffer)
	w := yamlprint.NewWriter[mapping](b)
	_, err := w.Write([]mapping{
		{Start: 4194304, Path: "/bin/echo"},
		{Start: 1879048192},
		{Start: 8192, Path: "/lib/ld-linux.so"},
	})
	assert.OK(t, err)
	assert.OK(t, w.Close())
	assert.Equal(t, b.String(), `start: 4194304
path: /bin/echo
---
start: 1879048192
---
start: 8192
path: /lib/ld-linux.so
`)
}
