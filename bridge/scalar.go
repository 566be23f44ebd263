package bridge

import (
	"math"

	"github.com/anooppoommen/libsignal-client/errors"
	"github.com/anooppoommen/libsignal-client/host"
)

// MaxSafeInteger is 2^53 - 1, the largest integer the host's numeric type
// represents exactly. 64-bit values are bounded by it in both directions;
// exceeding it is a range error, never a silent truncation.
const MaxSafeInteger = 9007199254740991

// numberValue extracts the float64 behind a host number, or fails with a
// type error naming the expected native type.
func numberValue(v host.Value, nativeType string) (float64, error) {
	n, ok := v.(host.Number)
	if !ok || v.Kind() != host.KindNumber {
		return 0, errors.TypeMismatch(errors.PhaseConvert, v.Kind().String(), nativeType)
	}
	return n.Float(), nil
}

// integerInRange reports whether value is a finite integer within
// [lo, hi]. This is the single gate every host-number-to-integer
// conversion goes through.
func integerInRange(value, lo, hi float64) bool {
	return !math.IsInf(value, 0) && !math.IsNaN(value) &&
		math.Trunc(value) == value && value >= lo && value <= hi
}

func convertInteger(v host.Value, lo, hi float64, nativeType string) (float64, error) {
	value, err := numberValue(v, nativeType)
	if err != nil {
		return 0, err
	}
	if !integerInRange(value, lo, hi) {
		return 0, errors.Range(errors.PhaseConvert, value, nativeType)
	}
	return value, nil
}

// U8 converts all valid values for the type.
type U8 struct{}

func (U8) ConvertFrom(cx *host.Context, v host.Value) (uint8, error) {
	value, err := convertInteger(v, 0, math.MaxUint8, "u8")
	if err != nil {
		return 0, err
	}
	return uint8(value), nil
}

func (U8) Convert(cx *host.Context, native uint8) (host.Value, error) {
	return cx.Runtime().Number(float64(native)), nil
}

// U32 converts all valid values for the type.
type U32 struct{}

func (U32) ConvertFrom(cx *host.Context, v host.Value) (uint32, error) {
	value, err := convertInteger(v, 0, math.MaxUint32, "u32")
	if err != nil {
		return 0, err
	}
	return uint32(value), nil
}

func (U32) Convert(cx *host.Context, native uint32) (host.Value, error) {
	return cx.Runtime().Number(float64(native)), nil
}

// I32 converts all valid values for the type.
type I32 struct{}

func (I32) ConvertFrom(cx *host.Context, v host.Value) (int32, error) {
	value, err := convertInteger(v, math.MinInt32, math.MaxInt32, "i32")
	if err != nil {
		return 0, err
	}
	return int32(value), nil
}

func (I32) Convert(cx *host.Context, native int32) (host.Value, error) {
	return cx.Runtime().Number(float64(native)), nil
}

// U64 converts non-negative integers up to MaxSafeInteger. The type's true
// range does not fit the host's numeric representation, so both directions
// are bounded by 2^53-1.
type U64 struct{}

func (U64) ConvertFrom(cx *host.Context, v host.Value) (uint64, error) {
	value, err := convertInteger(v, 0, MaxSafeInteger, "u64")
	if err != nil {
		return 0, err
	}
	return uint64(value), nil
}

func (U64) Convert(cx *host.Context, native uint64) (host.Value, error) {
	if native > MaxSafeInteger {
		return nil, errors.New(errors.PhaseResult, errors.KindRange).
			NativeType("u64").
			Value(native).
			Detail("precision loss during conversion of %d to a host number", native).
			Build()
	}
	return cx.Runtime().Number(float64(native)), nil
}

// I64 converts integers within ±MaxSafeInteger, same bound as U64.
type I64 struct{}

func (I64) ConvertFrom(cx *host.Context, v host.Value) (int64, error) {
	value, err := convertInteger(v, -MaxSafeInteger, MaxSafeInteger, "i64")
	if err != nil {
		return 0, err
	}
	return int64(value), nil
}

func (I64) Convert(cx *host.Context, native int64) (host.Value, error) {
	if native > MaxSafeInteger || native < -MaxSafeInteger {
		return nil, errors.New(errors.PhaseResult, errors.KindRange).
			NativeType("i64").
			Value(native).
			Detail("precision loss during conversion of %d to a host number", native).
			Build()
	}
	return cx.Runtime().Number(float64(native)), nil
}

// Str converts host strings losslessly.
type Str struct{}

func (Str) ConvertFrom(cx *host.Context, v host.Value) (string, error) {
	s, ok := v.(host.String)
	if !ok || v.Kind() != host.KindString {
		return "", errors.TypeMismatch(errors.PhaseConvert, v.Kind().String(), "string")
	}
	return s.Text(), nil
}

func (Str) Convert(cx *host.Context, native string) (host.Value, error) {
	return cx.Runtime().String(native), nil
}

// Bool converts host booleans losslessly.
type Bool struct{}

func (Bool) ConvertFrom(cx *host.Context, v host.Value) (bool, error) {
	b, ok := v.(host.Boolean)
	if !ok || v.Kind() != host.KindBoolean {
		return false, errors.TypeMismatch(errors.PhaseConvert, v.Kind().String(), "bool")
	}
	return b.Bool(), nil
}

func (Bool) Convert(cx *host.Context, native bool) (host.Value, error) {
	return cx.Runtime().Boolean(native), nil
}

// Unit is the result contract for native operations returning nothing; the
// host sees undefined.
type Unit struct{}

func (Unit) Convert(cx *host.Context, _ struct{}) (host.Value, error) {
	return cx.Runtime().Undefined(), nil
}
