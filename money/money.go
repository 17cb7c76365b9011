/*
Package money provides the exact decimal arithmetic used by every
financial computation in the engine.

PURPOSE:
  Wraps shopspring/decimal behind a small Value type so that callers never
  touch floating point for money. All figures destined for storage or
  display round to 2 decimal places, half-up. Intermediate computation
  keeps 20 digits of division precision so chained operations
  (commission -> net -> aggregate sums) don't compound rounding error.

COERCION CONTRACT:
  From() accepts numbers, numeric strings, and nil. Nil coerces to zero:
  a missing tips field or an unset parts cost is "no money", not an error.
  Non-numeric, non-nil input is a programmer error and returns
  *ValidationError (MustFrom panics on it).

DIVISION BY ZERO:
  Div(x, 0) returns zero. Deliberate domain choice: a derived figure with
  a zero denominator must stay displayable rather than fail the caller.

SEE ALSO:
  - finance/derive.go: Derivation functions built on this package
*/
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Chained divisions (rate/100, minimum-subtotal) need more headroom
	// than the shopspring default of 16 digits.
	if decimal.DivisionPrecision < 20 {
		decimal.DivisionPrecision = 20
	}
}

// Value is an exact decimal amount. The zero value is zero money.
type Value struct {
	d decimal.Decimal
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// Zero returns the zero amount.
func Zero() Value { return Value{} }

func FromFloat(f float64) Value { return Value{d: decimal.NewFromFloat(f)} }

func FromInt(n int64) Value { return Value{d: decimal.NewFromInt(n)} }

func FromDecimal(d decimal.Decimal) Value { return Value{d: d} }

// FromString parses a numeric string. Empty string coerces to zero.
func FromString(s string) (Value, error) {
	if strings.TrimSpace(s) == "" {
		return Zero(), nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Zero(), &ValidationError{Input: s, Reason: "not a numeric string"}
	}
	return Value{d: d}, nil
}

// From constructs a Value from loosely typed input. Nil coerces to zero.
// Any other non-numeric input is rejected with *ValidationError.
func From(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Zero(), nil
	case Value:
		return x, nil
	case decimal.Decimal:
		return Value{d: x}, nil
	case float64:
		return FromFloat(x), nil
	case float32:
		return FromFloat(float64(x)), nil
	case int:
		return FromInt(int64(x)), nil
	case int32:
		return FromInt(int64(x)), nil
	case int64:
		return FromInt(x), nil
	case string:
		return FromString(x)
	case *float64:
		if x == nil {
			return Zero(), nil
		}
		return FromFloat(*x), nil
	case *string:
		if x == nil {
			return Zero(), nil
		}
		return FromString(*x)
	default:
		return Zero(), &ValidationError{Input: v, Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

// MustFrom is From for inputs the caller already knows are numeric.
func MustFrom(v any) Value {
	val, err := From(v)
	if err != nil {
		panic(err)
	}
	return val
}

// =============================================================================
// ARITHMETIC
// =============================================================================

func (v Value) Add(o Value) Value { return Value{d: v.d.Add(o.d)} }
func (v Value) Sub(o Value) Value { return Value{d: v.d.Sub(o.d)} }
func (v Value) Mul(o Value) Value { return Value{d: v.d.Mul(o.d)} }
func (v Value) Neg() Value        { return Value{d: v.d.Neg()} }

// Div returns v/o, or zero when o is zero.
func (v Value) Div(o Value) Value {
	if o.d.IsZero() {
		return Zero()
	}
	return Value{d: v.d.Div(o.d)}
}

// Sum is the n-ary sum. Aggregates must use this rather than sequential
// float addition so the result is order-independent.
func Sum(vs ...Value) Value {
	if len(vs) == 0 {
		return Zero()
	}
	ds := make([]decimal.Decimal, len(vs)-1)
	for i, v := range vs[1:] {
		ds[i] = v.d
	}
	return Value{d: decimal.Sum(vs[0].d, ds...)}
}

// =============================================================================
// ROUNDING & PREDICATES
// =============================================================================

// Round2 rounds to 2 decimal places, half-up. Every value persisted or
// displayed goes through this.
func (v Value) Round2() Value { return Value{d: v.d.Round(2)} }

func (v Value) IsNegative() bool        { return v.d.IsNegative() }
func (v Value) IsZero() bool            { return v.d.IsZero() }
func (v Value) IsPositive() bool        { return v.d.IsPositive() }
func (v Value) Equal(o Value) bool      { return v.d.Equal(o.d) }
func (v Value) LessThan(o Value) bool   { return v.d.LessThan(o.d) }
func (v Value) GreaterThan(o Value) bool { return v.d.GreaterThan(o.d) }
func (v Value) Cmp(o Value) int         { return v.d.Cmp(o.d) }

// Float64 returns the 2dp-rounded float for storage in numeric columns.
func (v Value) Float64() float64 {
	f, _ := v.Round2().d.Float64()
	return f
}

func (v Value) Decimal() decimal.Decimal { return v.d }

func (v Value) String() string { return v.d.String() }

// =============================================================================
// FORMATTING
// =============================================================================

// Currency formats as "$1,234.50": symbol, thousands separators, exactly
// two decimals. Negative amounts render as "-$1,234.50".
func (v Value) Currency() string {
	fixed := v.Round2().d.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	whole, frac := parts[0], parts[1]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// Percent formats with the given number of decimal places: 12.5 -> "12.5%".
func (v Value) Percent(places int) string {
	if places < 0 {
		places = 0
	}
	return v.d.Round(int32(places)).StringFixed(int32(places)) + "%"
}

// Percent1 is Percent with the default single decimal place.
func (v Value) Percent1() string { return v.Percent(1) }

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// ValidationError reports non-numeric, non-nil input to a constructor.
// Malformed data is a programmer error, rejected at the boundary, never
// recovered into a zero.
type ValidationError struct {
	Input  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid numeric input %v: %s", e.Input, e.Reason)
}
