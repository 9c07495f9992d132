package config

import (
	"github.com/iwvelando/finance-calculators/pkg/money"
	"github.com/iwvelando/finance-calculators/pkg/projection"
)

// toCents converts a user-entered currency amount, rejecting negatives and
// amounts too large to hold in cents.
func toCents(field string, amount float64) (money.Cents, error) {
	if !money.FitsFloat(amount) {
		return 0, projection.InvalidParameter("%s of %v is not a representable amount", field, amount)
	}
	if amount < 0 {
		return 0, projection.InvalidParameter("%s must not be negative, got %v", field, amount)
	}
	return money.FromFloat(amount), nil
}

// amounts converts a list of named amounts in order, stopping at the first
// error.
type amounts []struct {
	field  string
	amount float64
	target *money.Cents
}

func (a amounts) convert() error {
	for _, f := range a {
		c, err := toCents(f.field, f.amount)
		if err != nil {
			return err
		}
		*f.target = c
	}
	return nil
}
