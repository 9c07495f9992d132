package projection

import (
	"math"
	"strings"

	"github.com/iwvelando/finance-calculators/pkg/mathutil"
	"github.com/iwvelando/finance-calculators/pkg/money"
)

// CompoundingFrequency is the number of interest compounding periods per year.
type CompoundingFrequency int

const (
	Annually     CompoundingFrequency = 1
	SemiAnnually CompoundingFrequency = 2
	Quarterly    CompoundingFrequency = 4
	Monthly      CompoundingFrequency = 12
	Daily        CompoundingFrequency = 365
)

// PeriodsPerYear returns the number of compounding periods in a year.
func (f CompoundingFrequency) PeriodsPerYear() int {
	return int(f)
}

// Valid reports whether f is one of the supported frequencies.
func (f CompoundingFrequency) Valid() bool {
	switch f {
	case Annually, SemiAnnually, Quarterly, Monthly, Daily:
		return true
	}
	return false
}

func (f CompoundingFrequency) String() string {
	switch f {
	case Annually:
		return "annually"
	case SemiAnnually:
		return "semi-annually"
	case Quarterly:
		return "quarterly"
	case Monthly:
		return "monthly"
	case Daily:
		return "daily"
	}
	return "unknown"
}

// ContributionFrequency is the number of contributions (or withdrawals, or
// extra payments) made per year.
type ContributionFrequency int

const (
	None                     ContributionFrequency = 0
	Weekly                   ContributionFrequency = 52
	BiWeekly                 ContributionFrequency = 26
	MonthlyContribution      ContributionFrequency = 12
	QuarterlyContribution    ContributionFrequency = 4
	SemiAnnuallyContribution ContributionFrequency = 2
	AnnuallyContribution     ContributionFrequency = 1
)

// PerYear returns the number of contributions in a year.
func (f ContributionFrequency) PerYear() int {
	return int(f)
}

// Valid reports whether f is one of the supported frequencies.
func (f ContributionFrequency) Valid() bool {
	switch f {
	case None, Weekly, BiWeekly, MonthlyContribution, QuarterlyContribution,
		SemiAnnuallyContribution, AnnuallyContribution:
		return true
	}
	return false
}

func (f ContributionFrequency) String() string {
	switch f {
	case None:
		return "none"
	case Weekly:
		return "weekly"
	case BiWeekly:
		return "bi-weekly"
	case MonthlyContribution:
		return "monthly"
	case QuarterlyContribution:
		return "quarterly"
	case SemiAnnuallyContribution:
		return "semi-annually"
	case AnnuallyContribution:
		return "annually"
	}
	return "unknown"
}

func normalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "")
	n = strings.ReplaceAll(n, "_", "")
	return strings.ReplaceAll(n, " ", "")
}

// ParseCompounding parses a frequency name such as "monthly" or "semi-annually".
// An empty name defaults to Monthly.
func ParseCompounding(name string) (CompoundingFrequency, error) {
	switch normalizeName(name) {
	case "", "monthly", "month":
		return Monthly, nil
	case "annually", "annual", "yearly":
		return Annually, nil
	case "semiannually", "semiannual":
		return SemiAnnually, nil
	case "quarterly", "quarter":
		return Quarterly, nil
	case "daily", "day":
		return Daily, nil
	}
	return 0, InvalidParameter("unknown compounding frequency %q", name)
}

// ParseContribution parses a contribution frequency name. An empty name
// means None.
func ParseContribution(name string) (ContributionFrequency, error) {
	switch normalizeName(name) {
	case "", "none", "never":
		return None, nil
	case "weekly":
		return Weekly, nil
	case "biweekly", "fortnightly":
		return BiWeekly, nil
	case "monthly":
		return MonthlyContribution, nil
	case "quarterly":
		return QuarterlyContribution, nil
	case "semiannually", "semiannual":
		return SemiAnnuallyContribution, nil
	case "annually", "annual", "yearly":
		return AnnuallyContribution, nil
	}
	return 0, InvalidParameter("unknown contribution frequency %q", name)
}

// ToPeriodicRate converts a nominal annual percentage into the rate applied
// once per compounding period.
func ToPeriodicRate(annualRatePercent float64, compounding CompoundingFrequency) (float64, error) {
	if !mathutil.IsFinite(annualRatePercent) || annualRatePercent < 0 {
		return 0, InvalidParameter("annual rate must be a non-negative number, got %v", annualRatePercent)
	}
	if compounding.PeriodsPerYear() <= 0 {
		return 0, InvalidParameter("compounding frequency must be positive, got %d", compounding)
	}
	return mathutil.PercentToDecimal(annualRatePercent) / float64(compounding.PeriodsPerYear()), nil
}

// ToPeriodicContribution spreads an amount declared at one cadence across
// compounding periods of another, e.g. a monthly deposit under daily
// compounding.
func ToPeriodicContribution(amount money.Cents, frequency ContributionFrequency, periodsPerYear int) (money.Cents, error) {
	if frequency < 0 {
		return 0, InvalidParameter("contribution frequency must not be negative, got %d", frequency)
	}
	if periodsPerYear <= 0 {
		return 0, InvalidParameter("periods per year must be positive, got %d", periodsPerYear)
	}
	if frequency == None {
		return 0, nil
	}
	return amount.Scale(int64(frequency.PerYear()), int64(periodsPerYear)), nil
}

// EffectiveAnnualRate returns the annual percentage yield of a nominal rate
// compounded at the given frequency.
func EffectiveAnnualRate(annualRatePercent float64, compounding CompoundingFrequency) (float64, error) {
	r, err := ToPeriodicRate(annualRatePercent, compounding)
	if err != nil {
		return 0, err
	}
	ear := math.Pow(1+r, float64(compounding.PeriodsPerYear())) - 1
	return ear * 100, nil
}
