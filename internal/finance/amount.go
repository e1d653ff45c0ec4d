// Package finance derives financial metrics from project records. Every
// function is pure: no I/O, no clock reads, no shared state.
package finance

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Some wraps a defined value.
func Some(v decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(v)
}

// None is the "no data" value.
func None() decimal.NullDecimal {
	return decimal.NullDecimal{}
}

// OrZero collapses "no data" to zero. Only used where a sum treats missing
// terms as zero.
func OrZero(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

// Sub returns a - b, or None when either side is missing.
func Sub(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid {
		return None()
	}
	return Some(a.Decimal.Sub(b.Decimal))
}

// Ratio returns num / den * 100, or None when either side is missing or den is zero.
func Ratio(num, den decimal.NullDecimal) decimal.NullDecimal {
	if !num.Valid || !den.Valid || den.Decimal.IsZero() {
		return None()
	}
	return Some(num.Decimal.Div(den.Decimal).Mul(hundred))
}

// Clamp bounds v to [lo, hi]; None stays None.
func Clamp(v decimal.NullDecimal, lo, hi decimal.Decimal) decimal.NullDecimal {
	if !v.Valid {
		return v
	}
	if v.Decimal.LessThan(lo) {
		return Some(lo)
	}
	if v.Decimal.GreaterThan(hi) {
		return Some(hi)
	}
	return v
}
