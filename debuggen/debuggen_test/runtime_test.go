package debuggen_test_test

import (
	"fmt"
	"testing"

	"github.com/donutnomad/derivegen/debuggen/debuggen_test"
	"github.com/stretchr/testify/assert"
)

// TestDebugAndStrOnOneType 同时有 Format 和 String 时各动词的输出
func TestDebugAndStrOnOneType(t *testing.T) {
	green := debuggen_test.Green
	tests := []struct {
		format string
		value  any
		want   string
	}{
		{"%v", green, "Green"},
		{"%s", green, "Green"},
		{"%q", green, `"Green"`},
		{"%-6s|", green, "Green |"},
		{"%d / %s", []any{green, green}, "1 / Green"},
		{"%03d", green, "001"},
		{"%x", debuggen_test.Blue, "2"},
		{"%+v", green, `"Green"`},
		{"%#v", green, `"Green"`},
		{"%v", debuggen_test.Color(7), "Color(7)"},
		{"%#v", debuggen_test.Color(7), "Color(7)"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if args, ok := tt.value.([]any); ok {
				assert.Equal(t, tt.want, fmt.Sprintf(tt.format, args...))
				return
			}
			assert.Equal(t, tt.want, fmt.Sprintf(tt.format, tt.value))
		})
	}
	assert.Equal(t, "Green", fmt.Sprint(green))
	assert.Equal(t, "[Red Blue]", fmt.Sprint([]debuggen_test.Color{debuggen_test.Red, debuggen_test.Blue}))
}

func TestStructBlock(t *testing.T) {
	p := debuggen_test.Palette{
		Primary: debuggen_test.Red,
		Accent:  debuggen_test.Green,
		Name:    "warm",
		Secret:  "token",
		Cache:   []int{1, 2},
	}
	want := `Palette {
    Primary: "Red",
    Accent: Green,
    Name: "warm",
    Secret: "***",
}`
	assert.Equal(t, want, fmt.Sprintf("%v", p))
	assert.Equal(t, want, fmt.Sprintf("%+v", p))
	assert.Equal(t, want, fmt.Sprint(p))
	assert.Equal(t, "%!d(debuggen_test.Palette)", fmt.Sprintf("%d", p))
}

func TestTupleStyle(t *testing.T) {
	c := debuggen_test.Circle{R: 1.5, C: debuggen_test.Blue}
	assert.Equal(t, "Circle(\n    1.5,\n    \"Blue\",\n)", fmt.Sprintf("%#v", c))
}

func TestEnumVariants(t *testing.T) {
	tests := []struct {
		name  string
		shape debuggen_test.Shape
		want  string
	}{
		{"unit", debuggen_test.Shape{Empty: &struct{}{}}, `"Empty"`},
		{
			"positional",
			debuggen_test.Shape{Round: &debuggen_test.Circle{R: 2, C: debuggen_test.Red}},
			"Round(\n    Circle(\n        2,\n        \"Red\",\n    ),\n)",
		},
		{"zero", debuggen_test.Shape{}, "Shape(<nil>)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fmt.Sprintf("%v", tt.shape))
		})
	}
}

// TestNestedIndentation 每嵌套一层多缩进四个空格
func TestNestedIndentation(t *testing.T) {
	scene := debuggen_test.Scene{
		Title: "s",
		Shape: debuggen_test.Shape{Line: &struct {
			Start debuggen_test.Point
			End   debuggen_test.Point
		}{
			Start: debuggen_test.Point{X: 1, Y: 2},
			End:   debuggen_test.Point{X: 3, Y: 4},
		}},
	}
	want := `Scene {
    Title: "s",
    Shape: {
        from: Point {
            X: 1,
            Y: 2,
        },
        End: Point {
            X: 3,
            Y: 4,
        },
    },
}`
	assert.Equal(t, want, fmt.Sprintf("%+v", scene))
}
