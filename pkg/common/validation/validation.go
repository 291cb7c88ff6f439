package validation

import (
	"reflect"
	"strings"

	gferrors "github.com/vnykmshr/genflow/pkg/common/errors"
)

type number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Positive rejects widths, steps and page sizes that are zero, negative or NaN.
func Positive[N number](module, field string, value N) error {
	if !(value > 0) {
		return gferrors.NewValidationError(module, field, value, "must be positive")
	}
	return nil
}

// NonNegative rejects negative counts and durations. Zero is accepted:
// taking, dropping or splitting into zero is well defined.
func NonNegative[N number](module, field string, value N) error {
	if value < 0 {
		return gferrors.NewValidationError(module, field, value, "cannot be negative")
	}
	return nil
}

// Present rejects a missing dependency. A nil pointer, map, func or chan
// stored in an interface counts as missing, so a nil *redis.Client passed
// as a redis.Cmdable is caught here rather than on the first round trip.
func Present(module, field string, value any) error {
	if isNil(value) {
		return gferrors.NewValidationError(module, field, nil, "is required")
	}
	return nil
}

// NotBlank rejects names and expressions that are empty or whitespace only.
func NotBlank(module, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return gferrors.NewValidationError(module, field, value, "cannot be blank")
	}
	return nil
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
