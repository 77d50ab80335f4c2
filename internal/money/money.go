// Package money provides the fixed-point monetary type used everywhere in
// the exchange. spec.md §9 forbids floating point for money; the teacher's
// Order.LimitPrice/Trade.Price (float64) are replaced with decimal.Decimal,
// the approach the grounding pack's trading repos (web3guy0-polybot,
// 0xtitan6-polymarket-mm) use for the same reason.
package money

import "github.com/shopspring/decimal"

// Money is always scaled to 2 decimal places once it leaves this package.
type Money = decimal.Decimal

// Zero is the additive identity, 0.00.
var Zero = decimal.Zero

// FromCents builds a Money value from an integer number of cents, the
// storage representation used by internal/store.
func FromCents(cents int64) Money {
	return decimal.New(cents, -2)
}

// FromString parses a decimal string (e.g. "45.00") into a 2-decimal Money
// value, the form accepted by the HTTP request bodies of spec.md §6.
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, err
	}
	return d.Truncate(2), nil
}

// ToCents converts a 2-decimal Money value to its integer cent storage
// representation. The value must already be scaled to 2 decimals.
func ToCents(m Money) int64 {
	return m.Shift(2).Round(0).IntPart()
}

// Mul computes price * quantity at 2-decimal scale. This is the
// execution-price x execution-quantity arithmetic spec.md §9 requires to be
// exact integer arithmetic at the cents scale; decimal multiplication of two
// exactly-scaled operands is exact, so no rounding is introduced here.
func Mul(price Money, quantity int64) Money {
	return price.Mul(decimal.NewFromInt(quantity)).Truncate(2)
}

// DivTruncate divides total by quantity, truncating toward zero at 2
// decimals. Used for the cost-basis-per-share computation on partial sells
// (spec.md §9: "rounds toward zero at the 2-decimal scale; any residual
// stays on the remaining holding"). All operands here are non-negative, so
// truncation toward zero is equivalent to flooring.
func DivTruncate(total Money, quantity int64) Money {
	if quantity == 0 {
		return Zero
	}
	return total.DivRound(decimal.NewFromInt(quantity), 8).Truncate(2)
}

// Add, Sub, GreaterThanOrEqual, GreaterThan, IsZero, IsPositive, IsNegative
// are used directly via decimal.Decimal's own methods; Money is a type
// alias, not a wrapper, so no forwarding is needed.
