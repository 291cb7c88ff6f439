package seq

import (
	"math"
	"reflect"
)

// Truthy reports whether v counts as present. It is false for nil, zero
// numbers, false, NaN, empty strings, slices, maps and arrays, nil pointers,
// channels and funcs, and zero-valued structs. Everything else is truthy;
// a non-empty array or slice is truthy even if its elements are zero.
// Filter uses Truthy when no predicate is given.
func Truthy[T any](v T) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return false
	}

	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Complex64, reflect.Complex128:
		c := rv.Complex()
		return c != 0 && !math.IsNaN(real(c)) && !math.IsNaN(imag(c))
	default:
		return !rv.IsZero()
	}
}
