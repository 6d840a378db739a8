package numeric

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal is the canonical coordinate representation. The backend serializes
// latitude/longitude sometimes as JSON numbers and sometimes as strings;
// Decimal accepts either and never fails to decode, degrading to zero.
type Decimal struct {
	decimal.Decimal
}

func NewDecimal(d decimal.Decimal) Decimal {
	return Decimal{d}
}

func DecimalFromString(s string) Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Decimal{decimal.Zero}
	}
	return Decimal{d}
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		d.Decimal = decimal.Zero
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		d.Decimal = decimal.Zero
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		d.Decimal = decimal.Zero
		return nil
	}
	d.Decimal = v
	return nil
}

// MarshalJSON always emits a quoted string so the value survives
// re-serialization without float rounding.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.Decimal.String())), nil
}

func (d Decimal) IsZero() bool {
	return d.Decimal.IsZero()
}

// ToFloat64 converts any of the wire-level numeric representations to a
// float64. Absent or unparseable input yields 0; the result is always finite.
func ToFloat64(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return finite(f)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return finite(f)
	case decimal.Decimal:
		return finite(n.InexactFloat64())
	case *decimal.Decimal:
		if n == nil {
			return 0
		}
		return finite(n.InexactFloat64())
	case Decimal:
		return finite(n.InexactFloat64())
	case *Decimal:
		if n == nil {
			return 0
		}
		return finite(n.InexactFloat64())
	default:
		return 0
	}
}

// ToDecimal converts any of the wire-level numeric representations to a
// decimal value. Absent or unparseable input yields decimal zero.
func ToDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero
		}
		return *n
	case Decimal:
		return n.Decimal
	case *Decimal:
		if n == nil {
			return decimal.Zero
		}
		return n.Decimal
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(n)
	case float32:
		return ToDecimal(float64(n))
	case int:
		return decimal.NewFromInt(int64(n))
	case int32:
		return decimal.NewFromInt32(n)
	case int64:
		return decimal.NewFromInt(n)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero
		}
		return d
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
