// Package format renders amounts and rates for display.
package format

import (
	"fmt"

	"github.com/iwvelando/finance-calculators/pkg/money"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	if amount < 0 {
		return "-$" + NumericCurrency(-amount)
	}
	return "$" + NumericCurrency(amount)
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	return printer().Sprintf("%.2f", amount)
}

// Cents formats an amount of cents as currency.
func Cents(amount money.Cents) string {
	return Currency(amount.Float64())
}

// Percent formats a percentage with two decimals, e.g. "7.23%".
func Percent(percent float64) string {
	return printer().Sprintf("%.2f%%", percent)
}

// Number formats a value with thousands separators and the given decimals.
func Number(value float64, decimals int) string {
	return printer().Sprintf(fmt.Sprintf("%%.%df", decimals), value)
}
