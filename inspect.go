package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/stealthrocket/tracecraft/internal/arch"
	"github.com/stealthrocket/tracecraft/internal/print/human"
	"github.com/stealthrocket/tracecraft/internal/stream"
	"github.com/stealthrocket/tracecraft/internal/trace"
)

// eventView is the printable form of an event.
type eventView struct {
	Ordinal   int64           `json:"ordinal"             yaml:"ordinal"             text:"#"`
	Tid       int32           `json:"tid"                 yaml:"tid"                 text:"TID"`
	Time      human.Duration  `json:"time"                yaml:"time"                text:"TIME"`
	Kind      string          `json:"kind"                yaml:"kind"                text:"KIND"`
	Details   string          `json:"details"             yaml:"details"             text:"DETAILS"`
	Registers *arch.Registers `json:"registers,omitempty" yaml:"registers,omitempty" text:"-"`
}

func viewEvent(e *trace.Event) eventView {
	return eventView{
		Ordinal: e.Ordinal,
		Tid:     e.Tid,
		Time:    human.Duration(e.Time),
		Kind:    e.Kind.String(),
		Details: eventDetails(e),
	}
}

func eventDetails(e *trace.Event) string {
	var s string
	switch e.Kind {
	case trace.SyscallEntry:
		s = arch.SyscallName(e.Syscall)
		if e.Registers != nil {
			r := e.Registers
			s += fmt.Sprintf("(%#x, %#x, %#x)", r.Arg(0), r.Arg(1), r.Arg(2))
		}
	case trace.SyscallExit:
		s = fmt.Sprintf("%s = %s", arch.SyscallName(e.Syscall), formatResult(e.Result))
	case trace.Signal:
		s = fmt.Sprintf("%s %s", arch.SignalName(e.Signal), e.Disposition)
		if e.Synchronous {
			s += " sync"
		}
	case trace.Clone:
		s = fmt.Sprintf("tid %d flags=%#x", e.NewTid, e.CloneFlags)
	case trace.Exec:
		s = fmt.Sprintf("%q", e.Path)
	case trace.Exit:
		s = formatStatus(e.Status)
	}
	if n := len(e.Writes); n > 0 {
		s += fmt.Sprintf(" +%d writes", n)
	}
	if n := len(e.Mappings); n > 0 {
		s += fmt.Sprintf(" +%d mappings", n)
	}
	return s
}

func formatResult(result int64) string {
	if arch.IsErrno(result) {
		return fmt.Sprintf("-%d", -result)
	}
	return fmt.Sprintf("%d", result)
}

// formatStatus formats a wait status.
func formatStatus(status int32) string {
	if sig := int(status & 0x7f); sig != 0 {
		return "killed by " + arch.SignalName(sig)
	}
	return fmt.Sprintf("exited with status %d", (status>>8)&0xff)
}

// taskView summarizes the life of a task recorded in a trace.
type taskView struct {
	Tid      int32  `json:"tid"              yaml:"tid"              text:"TID"`
	Tgid     int32  `json:"tgid"             yaml:"tgid"             text:"TGID"`
	Parent   int32  `json:"parent,omitempty" yaml:"parent,omitempty" text:"PARENT"`
	Exe      string `json:"exe"              yaml:"exe"              text:"EXE"`
	Start    int64  `json:"start"            yaml:"start"            text:"START"`
	Syscalls int    `json:"syscalls"         yaml:"syscalls"         text:"SYSCALLS"`
	Signals  int    `json:"signals"          yaml:"signals"          text:"SIGNALS"`
	Status   string `json:"status"           yaml:"status"           text:"STATUS"`
}

// traceSummary holds what is learned by reading every event of a trace.
type traceSummary struct {
	events   int64
	duration time.Duration
	kinds    map[trace.EventKind]int64
	tasks    []*taskView
}

func summarize(r *trace.Reader) (*traceSummary, error) {
	header := r.Header()
	initial := &taskView{
		Tid:    header.Process.InitialTid,
		Tgid:   header.Process.InitialTid,
		Exe:    header.Process.Exe,
		Status: "running",
	}
	sum := &traceSummary{
		kinds: make(map[trace.EventKind]int64),
		tasks: []*taskView{initial},
	}
	live := map[int32]*taskView{initial.Tid: initial}

	it := stream.Iter[trace.Event](r.Events())
	for it.Next() {
		e := it.Value()
		sum.events++
		sum.kinds[e.Kind]++
		if e.Time > sum.duration {
			sum.duration = e.Time
		}

		t := live[e.Tid]
		if t == nil {
			continue
		}
		switch e.Kind {
		case trace.SyscallEntry:
			t.Syscalls++
		case trace.Signal:
			t.Signals++
		case trace.Clone:
			child := &taskView{
				Tid:    e.NewTid,
				Tgid:   e.NewTid,
				Parent: t.Tid,
				Exe:    t.Exe,
				Start:  e.Ordinal,
				Status: "running",
			}
			if e.CloneFlags&arch.CLONE_THREAD != 0 {
				child.Tgid = t.Tgid
			}
			sum.tasks = append(sum.tasks, child)
			live[child.Tid] = child
		case trace.Exec:
			if e.Path != "" {
				t.Exe = e.Path
			}
		case trace.Exit:
			t.Status = formatStatus(e.Status)
			delete(live, t.Tid)
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return sum, nil
}

func (sum *traceSummary) kindCounts() string {
	kinds := []trace.EventKind{
		trace.SyscallEntry,
		trace.SyscallExit,
		trace.Signal,
		trace.Clone,
		trace.Exec,
		trace.Exit,
	}
	counts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		if n := sum.kinds[kind]; n != 0 {
			counts = append(counts, fmt.Sprintf("%s: %d", kind, n))
		}
	}
	return strings.Join(counts, ", ")
}
