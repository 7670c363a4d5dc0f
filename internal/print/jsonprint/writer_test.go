package jsonprint_test

import (
	"bytes"
	"testing"

	"github.com/stealthrocket/tracecraft/internal/assert"
	"github.com/stealthrocket/tracecraft/internal/print/jsonprint"
)

type mapping struct {
	Start uint64 `json:"start"`
	Path  string `json:"path,omitempty"`
}

func TestWriteNothing(t *testing.T) {
	b := new(bytes.Buffer)
	w := jsonprint.NewWriter[mapping](b)
	assert.OK(t, w.Close())
	assert.Equal(t, b.String(), "")
}

func TestWriteValues(t *testing.T) {
	b := new(bytes.Buffer)
	w := jsonprint.NewWriter[mapping](b)
	_, err := w.Write([]mapping{
		{Start: 4194304, Path: "/bin/echo"},
		{Start: 1879048192},
	})
	assert.OK(t, err)
	_, err = w.Write([]mapping{{Start: 8192, Path: "<vdso>"}})
	assert.OK(t, err)
	assert.OK(t, w.Close())
	assert.Equal(t, b.String(), `{
  "start": 4194304,
  "path": "/bin/echo"
}
{
  "start": 1879048192
}
{
  "start": 8192,
  "path": "<vdso>"
}
`)
}
