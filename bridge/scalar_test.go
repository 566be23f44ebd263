package bridge

import (
	"math"
	"strings"
	"testing"

	"github.com/anooppoommen/libsignal-client/errors"
	"github.com/anooppoommen/libsignal-client/host"
	"github.com/anooppoommen/libsignal-client/host/hosttest"
)

func TestScalar_RoundTrips(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	for _, v := range []uint32{0, 1, 42, math.MaxUint32} {
		got, err := U32{}.ConvertFrom(cx, hosttest.Number(float64(v)))
		if err != nil {
			t.Fatalf("u32 %d: %v", v, err)
		}
		if got != v {
			t.Fatalf("u32 round trip: expected %d, got %d", v, got)
		}
	}

	for _, v := range []int32{math.MinInt32, -1, 0, math.MaxInt32} {
		got, err := I32{}.ConvertFrom(cx, hosttest.Number(float64(v)))
		if err != nil {
			t.Fatalf("i32 %d: %v", v, err)
		}
		if got != v {
			t.Fatalf("i32 round trip: expected %d, got %d", v, got)
		}
	}

	// u64 and i64 are exact up to 2^53-1
	for _, v := range []uint64{0, 1 << 52, MaxSafeInteger} {
		got, err := U64{}.ConvertFrom(cx, hosttest.Number(float64(v)))
		if err != nil {
			t.Fatalf("u64 %d: %v", v, err)
		}
		if got != v {
			t.Fatalf("u64 round trip: expected %d, got %d", v, got)
		}
	}

	got, err := I64{}.ConvertFrom(cx, hosttest.Number(-MaxSafeInteger))
	if err != nil {
		t.Fatalf("i64 min safe: %v", err)
	}
	if got != -MaxSafeInteger {
		t.Fatalf("i64 round trip: expected %d, got %d", int64(-MaxSafeInteger), got)
	}
}

func TestScalar_RangeErrorsNameValueAndType(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	cases := []struct {
		name  string
		value float64
		conv  func(*host.Context, host.Value) error
	}{
		{"u8 overflow", 256, func(cx *host.Context, v host.Value) error { _, err := U8{}.ConvertFrom(cx, v); return err }},
		{"u32 negative", -1, func(cx *host.Context, v host.Value) error { _, err := U32{}.ConvertFrom(cx, v); return err }},
		{"u64 negative", -1, func(cx *host.Context, v host.Value) error { _, err := U64{}.ConvertFrom(cx, v); return err }},
		{"u64 beyond safe", float64(MaxSafeInteger) * 2, func(cx *host.Context, v host.Value) error { _, err := U64{}.ConvertFrom(cx, v); return err }},
		{"non-integral", 1.5, func(cx *host.Context, v host.Value) error { _, err := U32{}.ConvertFrom(cx, v); return err }},
		{"infinite", math.Inf(1), func(cx *host.Context, v host.Value) error { _, err := U32{}.ConvertFrom(cx, v); return err }},
		{"nan", math.NaN(), func(cx *host.Context, v host.Value) error { _, err := I32{}.ConvertFrom(cx, v); return err }},
	}

	for _, c := range cases {
		err := c.conv(cx, hosttest.Number(c.value))
		if err == nil {
			t.Fatalf("%s: expected a range error", c.name)
		}
		if !errors.IsRange(err) {
			t.Fatalf("%s: expected range kind, got %v", c.name, err)
		}
		if !strings.Contains(err.Error(), "cannot convert") {
			t.Fatalf("%s: expected the offending value named, got %q", c.name, err.Error())
		}
	}
}

func TestScalar_TypeMismatch(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	if _, err := (U32{}).ConvertFrom(cx, hosttest.Str("5")); !errors.IsTypeMismatch(err) {
		t.Fatalf("Expected type mismatch for string, got %v", err)
	}
	if _, err := (Str{}).ConvertFrom(cx, hosttest.Number(5)); !errors.IsTypeMismatch(err) {
		t.Fatalf("Expected type mismatch for number, got %v", err)
	}
	if _, err := (Bool{}).ConvertFrom(cx, rt.Null()); !errors.IsTypeMismatch(err) {
		t.Fatalf("Expected type mismatch for null, got %v", err)
	}
}

func TestScalar_U64ResultPrecisionLoss(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	if _, err := (U64{}).Convert(cx, MaxSafeInteger+1); err == nil {
		t.Fatal("Expected precision loss error for u64 beyond 2^53-1")
	} else if !errors.IsRange(err) {
		t.Fatalf("Expected range kind, got %v", err)
	}

	hv, err := U64{}.Convert(cx, MaxSafeInteger)
	if err != nil {
		t.Fatalf("u64 at the bound should convert: %v", err)
	}
	if n, ok := hv.(host.Number); !ok || n.Float() != MaxSafeInteger {
		t.Fatalf("Unexpected converted value: %v", hv)
	}

	if _, err := (I64{}).Convert(cx, -(MaxSafeInteger + 1)); err == nil {
		t.Fatal("Expected precision loss error for i64 below -(2^53-1)")
	}
}

func TestScalar_StrAndBoolAndUnit(t *testing.T) {
	rt := hosttest.New()
	cx := rt.Context()

	s, err := Str{}.ConvertFrom(cx, hosttest.Str("héllo"))
	if err != nil || s != "héllo" {
		t.Fatalf("string conversion: %q, %v", s, err)
	}

	b, err := Bool{}.ConvertFrom(cx, hosttest.Bool(true))
	if err != nil || !b {
		t.Fatalf("bool conversion: %v, %v", b, err)
	}

	hv, err := Unit{}.Convert(cx, struct{}{})
	if err != nil {
		t.Fatalf("unit conversion: %v", err)
	}
	if !host.IsUndefined(hv) {
		t.Fatalf("Expected undefined for unit result, got kind %s", hv.Kind())
	}
}
