// Package debug renders indented text trees for the debug report.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Pairs writes key=value list on a single line. Odd trailing key is
// written with empty value.
func (tw *TreeWriter) Pairs(depth int, kv ...any) {
	tw.indent(depth)
	for i := 0; i < len(kv); i += 2 {
		if i > 0 {
			tw.w.WriteByte(' ')
		}
		fmt.Fprint(tw.w, kv[i])
		tw.w.WriteByte('=')
		if i+1 < len(kv) {
			tw.w.WriteString(encodeValue(kv[i+1]))
		}
	}
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}

func encodeValue(v any) string {
	if s, ok := v.(string); ok {
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}
		return s
	}
	return fmt.Sprint(v)
}
