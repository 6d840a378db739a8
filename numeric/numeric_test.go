package numeric

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestToFloat64_Representations(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 1.3521, 1.3521},
		{"int", 42, 42},
		{"numeric string", "103.8198", 103.8198},
		{"padded string", "  1.5 ", 1.5},
		{"garbage string", "not-a-number", 0},
		{"empty string", "", 0},
		{"json number", json.Number("2.75"), 2.75},
		{"decimal", decimal.RequireFromString("1.3521"), 1.3521},
		{"tolerant decimal", DecimalFromString("103.8198"), 103.8198},
		{"unsupported type", struct{}{}, 0},
	}

	for _, tc := range cases {
		got := ToFloat64(tc.in)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("%s: result not finite: %v", tc.name, got)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestToFloat64_NeverNaN(t *testing.T) {
	if got := ToFloat64(math.NaN()); got != 0 {
		t.Fatalf("NaN input should coerce to 0, got %v", got)
	}
	if got := ToFloat64(math.Inf(1)); got != 0 {
		t.Fatalf("Inf input should coerce to 0, got %v", got)
	}
}

func TestToDecimal_Representations(t *testing.T) {
	if got := ToDecimal("1.3521"); !got.Equal(decimal.RequireFromString("1.3521")) {
		t.Fatalf("string input: got %s", got)
	}
	if got := ToDecimal(nil); !got.IsZero() {
		t.Fatalf("nil input should be zero, got %s", got)
	}
	if got := ToDecimal("bogus"); !got.IsZero() {
		t.Fatalf("garbage input should be zero, got %s", got)
	}
	if got := ToDecimal(math.NaN()); !got.IsZero() {
		t.Fatalf("NaN input should be zero, got %s", got)
	}
	var nilDec *decimal.Decimal
	if got := ToDecimal(nilDec); !got.IsZero() {
		t.Fatalf("nil pointer should be zero, got %s", got)
	}
}

func TestDecimal_UnmarshalTolerant(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`"1.3521"`, "1.3521"},
		{`103.8198`, "103.8198"},
		{`null`, "0"},
		{`""`, "0"},
		{`"junk"`, "0"},
	}

	for _, tc := range cases {
		var d Decimal
		if err := json.Unmarshal([]byte(tc.raw), &d); err != nil {
			t.Fatalf("unmarshal %s: unexpected error: %v", tc.raw, err)
		}
		if d.String() != tc.want {
			t.Fatalf("unmarshal %s: expected %s, got %s", tc.raw, tc.want, d.String())
		}
	}
}

func TestDecimal_MarshalPreservesPrecision(t *testing.T) {
	d := DecimalFromString("103.81980000001")
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `"103.81980000001"` {
		t.Fatalf("expected quoted string, got %s", out)
	}
}
