// Package money represents currency amounts as integer minor units (cents).
//
// All balances produced by the projection engine are Cents so that zero-balance
// and totals checks are exact. Conversions from user-entered floats and the
// application of fractional rates go through shopspring/decimal to avoid
// binary floating-point drift.
package money

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is an amount of money in minor currency units.
type Cents int64

// Zero is the zero amount.
const Zero Cents = 0

// MaxAmount is the largest magnitude an amount may take, one trillion
// currency units. Sums across the longest schedule stay within int64.
const MaxAmount Cents = 100_000_000_000_000

// ErrOutOfRange reports an amount beyond MaxAmount or a non-finite value.
var ErrOutOfRange = errors.New("amount out of range")

// RoundingMode selects how a fractional cent result is resolved.
type RoundingMode int

const (
	// RoundNearest rounds half away from zero.
	RoundNearest RoundingMode = iota
	// RoundDown truncates toward negative infinity.
	RoundDown
	// RoundUp rounds toward positive infinity.
	RoundUp
)

var (
	hundred    = decimal.NewFromInt(100)
	maxDecimal = decimal.NewFromInt(int64(MaxAmount))
)

// FromFloat converts a currency amount such as 1234.56 into Cents, rounding
// to the nearest cent.
func FromFloat(amount float64) Cents {
	return FromDecimal(decimal.NewFromFloat(amount))
}

// FromDecimal converts a decimal currency amount into Cents, rounding to the
// nearest cent.
func FromDecimal(amount decimal.Decimal) Cents {
	return Cents(amount.Mul(hundred).Round(0).IntPart())
}

// ParseDecimal converts a decimal currency amount into Cents, rounding to the
// nearest cent, and rejects amounts beyond MaxAmount.
func ParseDecimal(amount decimal.Decimal) (Cents, error) {
	return roundChecked(amount.Mul(hundred), RoundNearest)
}

// FromFloatMode converts a float amount of cents (not currency units) into
// Cents using the given rounding mode. NaN, infinities and amounts beyond
// MaxAmount return ErrOutOfRange.
func FromFloatMode(cents float64, mode RoundingMode) (Cents, error) {
	if math.IsNaN(cents) || math.IsInf(cents, 0) {
		return 0, fmt.Errorf("%w: %v cents", ErrOutOfRange, cents)
	}
	return roundChecked(decimal.NewFromFloat(cents), mode)
}

// Decimal returns the amount in currency units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Float64 returns the amount in currency units.
func (c Cents) Float64() float64 {
	f, _ := c.Decimal().Float64()
	return f
}

// String renders the amount with two decimals and no separators, e.g. "-1234.50".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// MulRate multiplies the amount by a fractional rate (0.005 for half a
// percent) and resolves the fractional cent with mode.
func (c Cents) MulRate(rate float64, mode RoundingMode) Cents {
	if c == 0 || rate == 0 {
		return 0
	}
	return round(decimal.NewFromInt(int64(c)).Mul(decimal.NewFromFloat(rate)), mode)
}

// MulRateChecked is MulRate for growing balances: a result beyond MaxAmount
// returns ErrOutOfRange instead of wrapping.
func (c Cents) MulRateChecked(rate float64, mode RoundingMode) (Cents, error) {
	if c == 0 || rate == 0 {
		return 0, nil
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("%w: rate %v", ErrOutOfRange, rate)
	}
	return roundChecked(decimal.NewFromInt(int64(c)).Mul(decimal.NewFromFloat(rate)), mode)
}

// AddChecked adds amounts that are each within MaxAmount, reporting a sum
// beyond it as ErrOutOfRange.
func AddChecked(amounts ...Cents) (Cents, error) {
	var total Cents
	for _, a := range amounts {
		if !a.InRange() {
			return 0, fmt.Errorf("%w: %s", ErrOutOfRange, a)
		}
		total += a
		if !total.InRange() {
			return 0, fmt.Errorf("%w: sum %s exceeds %s", ErrOutOfRange, total, MaxAmount)
		}
	}
	return total, nil
}

// InRange reports whether the amount is within MaxAmount.
func (c Cents) InRange() bool {
	return c >= -MaxAmount && c <= MaxAmount
}

// Scale multiplies the amount by a ratio num/den, rounding to the nearest cent.
func (c Cents) Scale(num, den int64) Cents {
	if den == 0 {
		return 0
	}
	v := decimal.NewFromInt(int64(c)).Mul(decimal.NewFromInt(num)).Div(decimal.NewFromInt(den))
	return round(v, RoundNearest)
}

// Abs returns the absolute amount.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// Sum adds up a list of amounts.
func Sum(amounts ...Cents) Cents {
	var total Cents
	for _, a := range amounts {
		total += a
	}
	return total
}

// FitsFloat reports whether a currency amount is within MaxAmount. NaN and
// infinities never fit.
func FitsFloat(amount float64) bool {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return false
	}
	return math.Abs(amount) <= float64(MaxAmount)/100
}

func resolve(v decimal.Decimal, mode RoundingMode) decimal.Decimal {
	switch mode {
	case RoundDown:
		return v.Floor()
	case RoundUp:
		return v.Ceil()
	default:
		return v.Round(0)
	}
}

func round(v decimal.Decimal, mode RoundingMode) Cents {
	return Cents(resolve(v, mode).IntPart())
}

func roundChecked(v decimal.Decimal, mode RoundingMode) (Cents, error) {
	v = resolve(v, mode)
	if v.Abs().GreaterThan(maxDecimal) {
		return 0, fmt.Errorf("%w: %s cents exceeds %s", ErrOutOfRange, v.String(), MaxAmount)
	}
	return Cents(v.IntPart()), nil
}

// MarshalJSON renders the amount as a currency number with two decimals.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON reads a currency number such as 1234.5 or "1234.50". A JSON
// null leaves the amount unchanged.
func (c *Cents) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	d, err := decimal.NewFromString(strings.Trim(string(data), `"`))
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	amount, err := ParseDecimal(d)
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	*c = amount
	return nil
}

// MarshalYAML renders the amount in currency units.
func (c Cents) MarshalYAML() (any, error) {
	return c.Float64(), nil
}
