package strgen_test_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/donutnomad/derivegen/derive"
	"github.com/donutnomad/derivegen/strgen/strgen_test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseLiterals 显式字面量都能解析，输出总是第一个字面量
func TestParseLiterals(t *testing.T) {
	for _, s := range []string{"get", "GET", "g"} {
		m, err := strgen_test.ParseMethod(s)
		require.NoError(t, err, s)
		assert.NotNil(t, m.Get)
		assert.Equal(t, "get", m.String())
	}

	m, err := strgen_test.ParseMethod("Head")
	require.NoError(t, err)
	assert.NotNil(t, m.Head)

	_, err = strgen_test.ParseMethod("head")
	assert.ErrorIs(t, err, derive.ErrInvalidValue)
	_, err = strgen_test.ParseMethod("Get")
	assert.ErrorIs(t, err, derive.ErrInvalidValue, "有字面量的变体不再接受声明名")
}

func TestConstEnumRoundTrip(t *testing.T) {
	tests := []struct {
		level strgen_test.Level
		text  string
	}{
		{strgen_test.LevelDebug, "level_debug"},
		{strgen_test.LevelWarnOnly, "level_warn_only"},
		{strgen_test.LevelError, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.text, tt.level.String())
			parsed, err := strgen_test.ParseLevel(tt.level.String())
			require.NoError(t, err)
			assert.Equal(t, tt.level, parsed)
		})
	}

	level, err := strgen_test.ParseLevel("err")
	require.NoError(t, err)
	assert.Equal(t, strgen_test.LevelError, level)
	assert.Equal(t, "Level(9)", strgen_test.Level(9).String())

	var invalid *derive.InvalidValueError
	_, err = strgen_test.ParseLevel("warn")
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "Level", invalid.Type)
	assert.Equal(t, "warn", invalid.Input)
}

func TestWrappedFallback(t *testing.T) {
	v, err := strgen_test.ParseValue("1.5")
	require.NoError(t, err)
	require.NotNil(t, v.Float)
	assert.Equal(t, 1.5, *v.Float)
	assert.Equal(t, "1.5", v.String())

	v, err = strgen_test.ParseValue("none")
	require.NoError(t, err)
	assert.NotNil(t, v.Nothing)

	_, err = strgen_test.ParseValue("x")
	assert.ErrorIs(t, err, derive.ErrInvalidValue)
}

// TestAmbiguousInput "1" 同时能解析为 int 和 float64
func TestAmbiguousInput(t *testing.T) {
	_, err := strgen_test.ParseValue("1")
	require.ErrorIs(t, err, derive.ErrAmbiguous)

	var ambiguous *derive.AmbiguousConversionError
	require.True(t, errors.As(err, &ambiguous))
	assert.Equal(t, "Value", ambiguous.Type)
	assert.Equal(t, []string{"int", "float64"}, ambiguous.Candidates)
	assert.Contains(t, err.Error(), "int, float64")
}

func TestWrappedPointerMethods(t *testing.T) {
	tok, err := strgen_test.ParseToken("#name")
	require.NoError(t, err)
	require.NotNil(t, tok.Tag)
	assert.Equal(t, "#name", tok.String())

	_, err = strgen_test.ParseToken("name")
	assert.ErrorIs(t, err, derive.ErrInvalidValue)
}

func TestTextMarshaling(t *testing.T) {
	type payload struct {
		Method strgen_test.Method `json:"method"`
		Level  strgen_test.Level  `json:"level"`
		Token  strgen_test.Token  `json:"token"`
	}
	in := payload{
		Method: strgen_test.Method{Post: &struct{}{}},
		Level:  strgen_test.LevelWarnOnly,
	}
	in.Token, _ = strgen_test.ParseToken("#x")

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"post","level":"level_warn_only","token":"#x"}`, string(data))

	var out payload
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.Level, out.Level)
	assert.NotNil(t, out.Method.Post)
	assert.Equal(t, "#x", out.Token.String())

	err = json.Unmarshal([]byte(`{"method":"put"}`), &out)
	assert.ErrorIs(t, err, derive.ErrInvalidValue)
}
