package derive

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrInvalidValue matches every *InvalidValueError.
	ErrInvalidValue = errors.New("invalid value")
	// ErrAmbiguous matches every *AmbiguousConversionError.
	ErrAmbiguous = errors.New("ambiguous conversion")
)

// InvalidValueError is returned when no variant accepts the input.
type InvalidValueError struct {
	Type  string
	Input string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("failed to convert to %s: invalid value %q", e.Type, e.Input)
}

func (e *InvalidValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

// AmbiguousConversionError is returned when the input has no explicit
// mapping and more than one wrapped type accepts it.
type AmbiguousConversionError struct {
	Type       string
	Input      string
	Candidates []string
}

func (e *AmbiguousConversionError) Error() string {
	return fmt.Sprintf("failed to convert to %s: %q has no explicit mapping and %s can all accept it",
		e.Type, e.Input, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousConversionError) Is(target error) bool {
	return target == ErrAmbiguous
}

// ConversionError wraps the failure of a wrapped type's own parser after an
// explicit literal selected its variant.
type ConversionError struct {
	Type    string
	Variant string
	Err     error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("failed to convert to %s.%s: %v", e.Type, e.Variant, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// FormatText renders a wrapped payload as text. fmt.Stringer wins over
// encoding.TextMarshaler. Pointers are accepted so methods declared on
// either receiver match; a nil pointer renders as <nil>.
func FormatText(v any) string {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "<nil>"
	}
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case encoding.TextMarshaler:
		text, err := x.MarshalText()
		if err == nil {
			return string(text)
		}
	}
	if rv.Kind() == reflect.Pointer {
		return FormatText(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

// ParseText parses s into dst. dst must be a pointer to a type implementing
// encoding.TextUnmarshaler, or a pointer to a string, bool, integer or float.
func ParseText(dst any, s string) error {
	switch p := dst.(type) {
	case encoding.TextUnmarshaler:
		return p.UnmarshalText([]byte(s))
	case *string:
		*p = s
		return nil
	case *bool:
		v, err := strconv.ParseBool(s)
		return assign(p, v, err)
	case *int:
		v, err := strconv.ParseInt(s, 10, strconv.IntSize)
		return assign(p, int(v), err)
	case *int8:
		v, err := strconv.ParseInt(s, 10, 8)
		return assign(p, int8(v), err)
	case *int16:
		v, err := strconv.ParseInt(s, 10, 16)
		return assign(p, int16(v), err)
	case *int32:
		v, err := strconv.ParseInt(s, 10, 32)
		return assign(p, int32(v), err)
	case *int64:
		v, err := strconv.ParseInt(s, 10, 64)
		return assign(p, v, err)
	case *uint:
		v, err := strconv.ParseUint(s, 10, strconv.IntSize)
		return assign(p, uint(v), err)
	case *uint8:
		v, err := strconv.ParseUint(s, 10, 8)
		return assign(p, uint8(v), err)
	case *uint16:
		v, err := strconv.ParseUint(s, 10, 16)
		return assign(p, uint16(v), err)
	case *uint32:
		v, err := strconv.ParseUint(s, 10, 32)
		return assign(p, uint32(v), err)
	case *uint64:
		v, err := strconv.ParseUint(s, 10, 64)
		return assign(p, v, err)
	case *float32:
		v, err := strconv.ParseFloat(s, 32)
		return assign(p, float32(v), err)
	case *float64:
		v, err := strconv.ParseFloat(s, 64)
		return assign(p, v, err)
	}
	return fmt.Errorf("%T does not implement encoding.TextUnmarshaler", dst)
}

func assign[T any](p *T, v T, err error) error {
	if err != nil {
		return err
	}
	*p = v
	return nil
}
