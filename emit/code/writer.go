// Package code provides the indenting line writer emitters render into.
package code

import (
	"bytes"
	"fmt"
	"strings"
)

// Writer accumulates indented source lines.
type Writer struct {
	buf    bytes.Buffer
	indent string
	depth  int
}

// New returns a writer indenting with unit, e.g. "\t" or four spaces.
func New(unit string) *Writer {
	return &Writer{indent: unit}
}

// Line writes one line at the current depth. An empty format writes a
// blank line with no indentation.
func (w *Writer) Line(format string, args ...any) {
	if format == "" {
		w.buf.WriteByte('\n')
		return
	}
	w.buf.WriteString(strings.Repeat(w.indent, w.depth))
	if len(args) > 0 {
		fmt.Fprintf(&w.buf, format, args...)
	} else {
		w.buf.WriteString(format)
	}
	w.buf.WriteByte('\n')
}

// Lines writes each line at the current depth.
func (w *Writer) Lines(lines []string) {
	for _, l := range lines {
		w.Line("%s", l)
	}
}

// Indent increases the depth.
func (w *Writer) Indent() { w.depth++ }

// Dedent decreases the depth.
func (w *Writer) Dedent() {
	if w.depth > 0 {
		w.depth--
	}
}

// Block writes open, runs body one level deeper and writes close.
func (w *Writer) Block(open, close string, body func()) {
	w.Line("%s", open)
	w.Indent()
	body()
	w.Dedent()
	w.Line("%s", close)
}

// Depth returns the current depth.
func (w *Writer) Depth() int { return w.depth }

// Bytes returns the written content.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// String returns the written content.
func (w *Writer) String() string { return w.buf.String() }

// Quote returns s as a double-quoted string literal valid in C#,
// TypeScript and Go.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
