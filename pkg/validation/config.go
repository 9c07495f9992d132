// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/finance-calculators/pkg/constants"
)

// CalculationInfo is the part of a configured calculation the warnings look at.
type CalculationInfo struct {
	Name      string
	Kind      string
	KnownKind bool
	// RatesPercent are every annual rate the calculation uses.
	RatesPercent []float64
	TermYears    float64
	// Ages are every age the calculation mentions.
	Ages []float64
}

// ValidateRate warns about an annual rate above what consumer products charge.
func ValidateRate(name string, ratePercent float64) string {
	if ratePercent > constants.UnusualAnnualRatePercent {
		return fmt.Sprintf("Calculation '%s' uses an unusually high annual rate of %.2f%% - check it was entered as a percentage",
			name, ratePercent)
	}
	return ""
}

// ValidateTerm warns about loan terms longer than lenders offer.
func ValidateTerm(name string, termYears float64) string {
	if termYears > constants.LongLoanTermYears {
		return fmt.Sprintf("Calculation '%s' has a term of %.1f years, longer than %d years",
			name, termYears, constants.LongLoanTermYears)
	}
	return ""
}

// ValidateAge warns about ages beyond a plausible lifespan.
func ValidateAge(name string, age float64) string {
	if age > constants.MaxPlausibleAge {
		return fmt.Sprintf("Calculation '%s' plans to age %.0f, beyond %d",
			name, age, constants.MaxPlausibleAge)
	}
	return ""
}

// CalculationWarnings validates every calculation and returns warnings.
// Warnings never stop a calculation from running.
func CalculationWarnings(calculations []CalculationInfo) []string {
	var warnings []string
	seen := make(map[string]bool)

	for _, calc := range calculations {
		if seen[calc.Name] {
			warnings = append(warnings, fmt.Sprintf("Calculation name '%s' is used more than once", calc.Name))
		}
		seen[calc.Name] = true

		if !calc.KnownKind {
			warnings = append(warnings, fmt.Sprintf("Calculation '%s' has unknown kind '%s'", calc.Name, calc.Kind))
			continue
		}

		for _, rate := range calc.RatesPercent {
			if w := ValidateRate(calc.Name, rate); w != "" {
				warnings = append(warnings, w)
			}
		}
		if w := ValidateTerm(calc.Name, calc.TermYears); w != "" {
			warnings = append(warnings, w)
		}
		for _, age := range calc.Ages {
			if w := ValidateAge(calc.Name, age); w != "" {
				warnings = append(warnings, w)
			}
		}
	}

	return warnings
}
