// Package derive holds the runtime helpers used by code generated with
// derivegen. Generated Format methods build their output through the
// builders in this package; generated Parse functions report failures with
// the error types declared here.
package derive

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const indent = "    "

type builderKind uint8

const (
	kindStruct builderKind = iota
	kindTuple
	kindMap
)

type entry struct {
	key   string
	value string
}

// DebugBuilder renders a value in the pretty, multi-line debug layout:
//
//	Name {
//	    field: value,
//	}
//
// Nested multi-line values are re-indented one level.
type DebugBuilder struct {
	w       io.Writer
	kind    builderKind
	name    string
	entries []entry
}

// NewDebugStruct starts a struct block. Use Field to add named fields.
func NewDebugStruct(w io.Writer, name string) *DebugBuilder {
	return &DebugBuilder{w: w, kind: kindStruct, name: name}
}

// NewDebugTuple starts a tuple block. Use Elem to add positional values.
func NewDebugTuple(w io.Writer, name string) *DebugBuilder {
	return &DebugBuilder{w: w, kind: kindTuple, name: name}
}

// NewDebugMap starts an anonymous key/value block.
func NewDebugMap(w io.Writer) *DebugBuilder {
	return &DebugBuilder{w: w, kind: kindMap}
}

// Field appends a named entry. value is already rendered.
func (b *DebugBuilder) Field(name, value string) *DebugBuilder {
	b.entries = append(b.entries, entry{key: name, value: value})
	return b
}

// Elem appends a positional entry. value is already rendered.
func (b *DebugBuilder) Elem(value string) *DebugBuilder {
	b.entries = append(b.entries, entry{value: value})
	return b
}

// String renders the block.
func (b *DebugBuilder) String() string {
	if len(b.entries) == 0 {
		if b.kind == kindMap {
			return "{}"
		}
		return b.name
	}

	var sb strings.Builder
	switch b.kind {
	case kindStruct:
		sb.WriteString(b.name)
		sb.WriteString(" {\n")
	case kindTuple:
		sb.WriteString(b.name)
		sb.WriteString("(\n")
	case kindMap:
		sb.WriteString("{\n")
	}
	for _, e := range b.entries {
		sb.WriteString(indent)
		if b.kind != kindTuple {
			sb.WriteString(e.key)
			sb.WriteString(": ")
		}
		sb.WriteString(strings.ReplaceAll(e.value, "\n", "\n"+indent))
		sb.WriteString(",\n")
	}
	if b.kind == kindTuple {
		sb.WriteString(")")
	} else {
		sb.WriteString("}")
	}
	return sb.String()
}

// Finish writes the block to the underlying writer.
func (b *DebugBuilder) Finish() {
	_, _ = io.WriteString(b.w, b.String())
}

// Debug renders v the way a field is shown by default. Strings are quoted,
// values that know how to describe themselves use %#v and everything else
// uses %+v.
func Debug(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return strconv.Quote(x)
	case fmt.Formatter, fmt.GoStringer:
		return fmt.Sprintf("%#v", x)
	case error:
		return strconv.Quote(x.Error())
	}
	return fmt.Sprintf("%+v", v)
}

// FormatVerb handles the verbs a generated Format method does not render as
// a debug block, and reports whether it wrote v. %v with the + or # flag
// always falls through to the debug block. %s, %q and plain %v use v's String
// method when v has one; without it %v and %s fall through as well. Other
// verbs format raw, the underlying value of a constant enum, or report a bad
// verb the way fmt does when raw is nil.
func FormatVerb(f fmt.State, verb rune, v, raw any) bool {
	s, isStringer := v.(fmt.Stringer)
	switch {
	case verb == 'v' && (f.Flag('+') || f.Flag('#')):
		return false
	case (verb == 'v' || verb == 's' || verb == 'q') && isStringer:
		fmt.Fprintf(f, fmt.FormatString(f, verb), s.String())
	case verb == 'v' || verb == 's':
		return false
	case raw != nil:
		fmt.Fprintf(f, fmt.FormatString(f, verb), raw)
	default:
		fmt.Fprintf(f, "%%!%c(%T)", verb, v)
	}
	return true
}

// Display renders v with its user-facing form.
func Display(v any) string {
	return fmt.Sprint(v)
}

// WriteString writes a pre-rendered value. Generated code uses it for unit
// variants and zero values.
func WriteString(w io.Writer, s string) {
	_, _ = io.WriteString(w, s)
}
