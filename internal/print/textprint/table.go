package textprint

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/stealthrocket/tracecraft/internal/stream"
)

type TableOption[T any] func(*tableWriter[T])

// Header controls whether the column names are printed, true by default.
func Header[T any](enable bool) TableOption[T] {
	return func(t *tableWriter[T]) { t.header = enable }
}

// List restricts the output to the first column.
func List[T any](enable bool) TableOption[T] {
	return func(t *tableWriter[T]) { t.list = enable }
}

// NewTableWriter returns a writer printing struct values (or pointers to
// structs) as the rows of a table. The table is only written when the writer
// is closed, once the width of every column is known.
//
// Columns are the exported fields of the struct, named by their "text" tag.
// Fields tagged `text:"-"` are omitted.
func NewTableWriter[T any](w io.Writer, opts ...TableOption[T]) stream.WriteCloser[T] {
	t := &tableWriter[T]{output: w, header: true}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type tableWriter[T any] struct {
	output io.Writer
	rows   []T
	header bool
	list   bool
}

type column struct {
	name  string
	index []int
}

func columnsOf(t reflect.Type) []column {
	var columns []column
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("text"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		columns = append(columns, column{name: name, index: f.Index})
	}
	return columns
}

func (t *tableWriter[T]) Write(rows []T) (int, error) {
	t.rows = append(t.rows, rows...)
	return len(rows), nil
}

func (t *tableWriter[T]) Close() error {
	rowType := reflect.TypeOf((*T)(nil)).Elem()
	indirect := rowType.Kind() == reflect.Pointer
	if indirect {
		rowType = rowType.Elem()
	}
	columns := columnsOf(rowType)
	if t.list && len(columns) > 1 {
		columns = columns[:1]
	}

	tw := tabwriter.NewWriter(t.output, 0, 4, 2, ' ', 0)
	if t.header {
		for i, c := range columns {
			if i > 0 {
				io.WriteString(tw, "\t")
			}
			io.WriteString(tw, c.name)
		}
		fmt.Fprintln(tw)
	}
	for i := range t.rows {
		row := reflect.ValueOf(&t.rows[i]).Elem()
		if indirect {
			row = row.Elem()
		}
		for j, c := range columns {
			if j > 0 {
				io.WriteString(tw, "\t")
			}
			printCell(tw, row.FieldByIndex(c.index))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func printCell(w io.Writer, v reflect.Value) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			io.WriteString(w, "-")
			return
		}
	}
	fmt.Fprint(w, v.Interface())
}
