package derive

import (
	"errors"
	"net/netip"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level int

func (l level) String() string { return "L" + strconv.Itoa(int(l)) }

func TestConversionErrors(t *testing.T) {
	var err error = &InvalidValueError{Type: "Color", Input: "x"}
	assert.EqualError(t, err, `failed to convert to Color: invalid value "x"`)
	assert.True(t, errors.Is(err, ErrInvalidValue))
	assert.False(t, errors.Is(err, ErrAmbiguous))

	err = &AmbiguousConversionError{Type: "Value", Input: "1", Candidates: []string{"Int", "Float"}}
	assert.True(t, errors.Is(err, ErrAmbiguous))
	assert.Contains(t, err.Error(), "Int, Float")

	var ambiguous *AmbiguousConversionError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, []string{"Int", "Float"}, ambiguous.Candidates)

	inner := errors.New("bad digit")
	err = &ConversionError{Type: "Value", Variant: "Int", Err: inner}
	assert.Equal(t, "failed to convert to Value.Int: bad digit", err.Error())
	assert.True(t, errors.Is(err, inner))
}

func TestFormatText(t *testing.T) {
	assert.Equal(t, "abc", FormatText("abc"))
	assert.Equal(t, "L2", FormatText(level(2)))
	assert.Equal(t, "10.0.0.1", FormatText(netip.MustParseAddr("10.0.0.1")))
	assert.Equal(t, "1.5", FormatText(1.5))

	// 载荷以指针传入
	l := level(3)
	assert.Equal(t, "L3", FormatText(&l))
	name := "abc"
	assert.Equal(t, "abc", FormatText(&name))
	n := 9
	assert.Equal(t, "9", FormatText(&n))
	assert.Equal(t, "ptr:5", FormatText(&ptrLevel{n: 5}))
	assert.Equal(t, "<nil>", FormatText((*ptrLevel)(nil)))
}

// ptrLevel 的 String 声明在指针接收者上
type ptrLevel struct{ n int }

func (p *ptrLevel) String() string { return "ptr:" + strconv.Itoa(p.n) }

func TestParseText(t *testing.T) {
	var s string
	require.NoError(t, ParseText(&s, "hello"))
	assert.Equal(t, "hello", s)

	var b bool
	require.NoError(t, ParseText(&b, "true"))
	assert.True(t, b)

	var i8 int8
	require.NoError(t, ParseText(&i8, "-12"))
	assert.Equal(t, int8(-12), i8)
	assert.Error(t, ParseText(&i8, "300"))
	assert.Equal(t, int8(-12), i8, "失败时不修改目标")

	var u uint
	assert.Error(t, ParseText(&u, "-1"))

	var f float64
	require.NoError(t, ParseText(&f, "2.5"))
	assert.Equal(t, 2.5, f)

	var addr netip.Addr
	require.NoError(t, ParseText(&addr, "::1"))
	assert.True(t, addr.IsLoopback())

	var lv level
	assert.Error(t, ParseText(&lv, "1"))
}
