package textprint_test

import (
	"bytes"
	"testing"

	"github.com/stealthrocket/tracecraft/internal/assert"
	"github.com/stealthrocket/tracecraft/internal/print/textprint"
)

type task struct {
	Tid    int32  `text:"TID"`
	Exe    string `text:"EXE"`
	Status string `text:"STATUS"`
	parent int32
	Notes  *string `text:"-"`
}

var tasks = []task{
	{Tid: 1000, Exe: "/bin/sh", Status: "exited with status 0"},
	{Tid: 1001, Exe: "/usr/bin/make", Status: "killed by SIGTERM"},
	{Tid: 1002, Exe: "/bin/cc", Status: "running"},
}

func TestTableWriteNothing(t *testing.T) {
	b := new(bytes.Buffer)
	w := textprint.NewTableWriter[task](b)
	assert.OK(t, w.Close())
	assert.Equal(t, b.String(), "TID  EXE  STATUS\n")
}

func TestTableWriteValues(t *testing.T) {
	b := new(bytes.Buffer)
	w := textprint.NewTableWriter[task](b)
	_, err := w.Write(tasks)
	assert.OK(t, err)
	assert.OK(t, w.Close())
	assert.Equal(t, b.String(), `TID   EXE            STATUS
1000  /bin/sh        exited with status 0
1001  /usr/bin/make  killed by SIGTERM
1002  /bin/cc        running
`)
}

func TestTableWritePointers(t *testing.T) {
	b := new(bytes.Buffer)
	w := textprint.NewTableWriter[*task](b,
		textprint.Header[*task](false),
		textprint.List[*task](true),
	)
	_, err := w.Write([]*task{&tasks[0], &tasks[2]})
	assert.OK(t, err)
	assert.OK(t, w.Close())
	assert.Equal(t, b.String(), "1000\n1002\n")
}

func TestWriterSeparator(t *testing.T) {
	b := new(bytes.Buffer)
	w := textprint.NewWriter[int64](b, textprint.Separator[int64](", "))
	_, err := w.Write([]int64{1, 2})
	assert.OK(t, err)
	_, err = w.Write([]int64{3})
	assert.OK(t, err)
	assert.OK(t, w.Close())
	assert.Equal(t, b.String(), "1, 2, 3")
}

func TestTableWriteNilLastColumn(t *testing.T) {
	type mapping struct {
		Start string  `text:"START"`
		Path  *string `text:"PATH"`
	}
	stack := "[stack]"
	b := new(bytes.Buffer)
	w := textprint.NewTableWriter[mapping](b)
	_, err := w.Write([]mapping{{Start: "0x400000"}, {Start: "0x7ffffffde000", Path: &stack}})
	assert.OK(t, err)
	assert.OK(t, w.Close())
	assert.Equal(t, b.String(), `START           PATH
0x400000        -
0x7ffffffde000  [stack]
`)
}
