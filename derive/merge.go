package derive

import "reflect"

// IsZero reports whether v holds the zero value of its type. A nil
// interface counts as zero.
func IsZero(v any) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || rv.IsZero()
}
