// Package tracefmt contains the flatbuffers tables of the trace directory
// format. The Go sources are generated from trace.fbs.
package tracefmt

//go:generate flatc --go -o .. trace.fbs
