package derive

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type point struct {
	X, Y int
}

func (p point) Format(f fmt.State, verb rune) {
	NewDebugStruct(f, "point").
		Field("x", Debug(p.X)).
		Field("y", Debug(p.Y)).
		Finish()
}

func TestDebugStruct(t *testing.T) {
	var buf bytes.Buffer
	NewDebugStruct(&buf, "User").
		Field("name", Debug("bob")).
		Field("age", Debug(3)).
		Finish()

	assert.Equal(t, "User {\n    name: \"bob\",\n    age: 3,\n}", buf.String())
}

func TestDebugTuple(t *testing.T) {
	got := NewDebugTuple(nil, "Pair").Elem("1").Elem(`"a"`).String()
	assert.Equal(t, "Pair(\n    1,\n    \"a\",\n)", got)
}

func TestDebugMap(t *testing.T) {
	got := NewDebugMap(nil).Field("code", "7").String()
	assert.Equal(t, "{\n    code: 7,\n}", got)
}

func TestDebugEmpty(t *testing.T) {
	assert.Equal(t, "Empty", NewDebugStruct(nil, "Empty").String())
	assert.Equal(t, "Empty", NewDebugTuple(nil, "Empty").String())
	assert.Equal(t, "{}", NewDebugMap(nil).String())
}

func TestDebugNestedIndent(t *testing.T) {
	got := NewDebugTuple(nil, "At").Elem(Debug(point{X: 1, Y: 2})).String()
	want := "At(\n" +
		"    point {\n" +
		"        x: 1,\n" +
		"        y: 2,\n" +
		"    },\n" +
		")"
	assert.Equal(t, want, got)

	// 两层嵌套
	outer := NewDebugStruct(nil, "Shape").Field("kind", got).String()
	assert.Contains(t, outer, "\n            y: 2,\n")
}

func TestDebugValues(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "<nil>"},
		{"string", "a\"b", `"a\"b"`},
		{"int", 42, "42"},
		{"error", errors.New("boom"), `"boom"`},
		{"struct", struct{ A int }{A: 1}, "{A:1}"},
		{"formatter", point{X: 1}, "point {\n    x: 1,\n    y: 0,\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Debug(tt.in))
		})
	}
}

func TestDisplayAndWriteString(t *testing.T) {
	assert.Equal(t, "hi", Display("hi"))
	assert.Equal(t, "3", Display(3))

	var buf bytes.Buffer
	WriteString(&buf, `"Red"`)
	assert.Equal(t, `"Red"`, buf.String())
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero(nil))
	assert.True(t, IsZero(0))
	assert.True(t, IsZero(point{}))
	assert.False(t, IsZero(point{Y: 1}))
	assert.False(t, IsZero("x"))
}

type signal int

func (s signal) String() string { return "Go" }

func (s signal) Format(f fmt.State, verb rune) {
	if FormatVerb(f, verb, s, int(s)) {
		return
	}
	WriteString(f, `"Go"`)
}

type plain struct{}

func (p plain) Format(f fmt.State, verb rune) {
	if FormatVerb(f, verb, p, nil) {
		return
	}
	WriteString(f, "plain")
}

func TestFormatVerb(t *testing.T) {
	tests := []struct {
		name   string
		format string
		in     any
		want   string
	}{
		{"stringer v", "%v", signal(7), "Go"},
		{"stringer s", "%s", signal(7), "Go"},
		{"stringer q", "%q", signal(7), `"Go"`},
		{"stringer width", "%-4s|", signal(7), "Go  |"},
		{"stringer plus v", "%+v", signal(7), `"Go"`},
		{"stringer sharp v", "%#v", signal(7), `"Go"`},
		{"raw d", "%d", signal(7), "7"},
		{"raw x", "%03x", signal(10), "00a"},
		{"plain v", "%v", plain{}, "plain"},
		{"plain s", "%s", plain{}, "plain"},
		{"plain bad verb", "%d", plain{}, "%!d(derive.plain)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fmt.Sprintf(tt.format, tt.in))
		})
	}

	assert.Equal(t, "Go", Display(signal(1)))
	assert.Equal(t, `"Go"`, Debug(signal(1)))
}
