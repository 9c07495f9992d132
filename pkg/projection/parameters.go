// Package projection holds the shared model of the projection engine: the
// simulation parameters, the per-period records every simulator produces,
// rate conversion, and the aggregation of period series into summaries.
package projection

import (
	"math"

	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
	"github.com/iwvelando/finance-calculators/pkg/money"
)

// ContributionTiming selects whether a period's contribution is added before
// or after that period's interest accrues.
type ContributionTiming int

const (
	// PreCompound adds the contribution first so it earns interest in the
	// same period (annuity due).
	PreCompound ContributionTiming = iota
	// PostCompound accrues interest on the opening balance and then adds the
	// contribution (ordinary annuity).
	PostCompound
)

func (t ContributionTiming) String() string {
	if t == PostCompound {
		return "post-compound"
	}
	return "pre-compound"
}

// ParseTiming parses "pre"/"pre-compound"/"due" or "post"/"post-compound"/"ordinary".
// An empty value defaults to PreCompound.
func ParseTiming(name string) (ContributionTiming, error) {
	switch normalizeName(name) {
	case "", "pre", "precompound", "due", "beginning", "start":
		return PreCompound, nil
	case "post", "postcompound", "ordinary", "end":
		return PostCompound, nil
	}
	return 0, InvalidParameter("unknown contribution timing %q", name)
}

// Parameters is the immutable input of a single simulation run.
type Parameters struct {
	// Principal is the starting balance: loan principal, initial investment
	// or current savings.
	Principal money.Cents
	// AnnualRatePercent is the nominal annual rate, 5.5 meaning 5.5%.
	AnnualRatePercent float64
	Compounding       CompoundingFrequency

	// ContributionAmount is a periodic addition for accumulation or an extra
	// principal payment for amortization, declared at ContributionFrequency.
	ContributionAmount    money.Cents
	ContributionFrequency ContributionFrequency
	ContributionTiming    ContributionTiming

	// HorizonYears is the loan term, the years until a goal, or the years in
	// retirement depending on the simulator.
	HorizonYears float64

	// FixedPayment is a specified periodic loan payment. It is mutually
	// exclusive with HorizonYears for amortization.
	FixedPayment *money.Cents

	// WithdrawalAmount is taken at WithdrawalFrequency during drawdown.
	WithdrawalAmount    money.Cents
	WithdrawalFrequency ContributionFrequency

	// InflationRatePercent escalates drawdown withdrawals once per year.
	InflationRatePercent float64
}

// PeriodsPerYear returns the compounding periods per year.
func (p Parameters) PeriodsPerYear() int {
	return p.Compounding.PeriodsPerYear()
}

// PeriodicRate returns the per-period interest rate.
func (p Parameters) PeriodicRate() (float64, error) {
	return ToPeriodicRate(p.AnnualRatePercent, p.Compounding)
}

// PeriodCount returns the number of periods in the horizon.
func (p Parameters) PeriodCount() int {
	return int(math.Round(p.HorizonYears * float64(p.PeriodsPerYear())))
}

// MaxPeriods is the iteration cap for the parameters' compounding frequency.
func (p Parameters) MaxPeriods() int {
	return constants.MaxYears * p.PeriodsPerYear()
}

// Validate performs the checks shared by every simulator. Simulators layer
// their own requirements (e.g. a positive loan principal) on top.
func (p Parameters) Validate() error {
	if !p.Compounding.Valid() {
		return InvalidParameter("unsupported compounding frequency %d", p.Compounding)
	}
	if !mathutil.IsFinite(p.AnnualRatePercent) || p.AnnualRatePercent < 0 {
		return InvalidParameter("annual rate must be a non-negative number, got %v", p.AnnualRatePercent)
	}
	if p.Principal < 0 {
		return InvalidParameter("principal must not be negative, got %s", p.Principal)
	}
	if p.ContributionAmount < 0 {
		return InvalidParameter("contribution must not be negative, got %s", p.ContributionAmount)
	}
	if !p.ContributionFrequency.Valid() {
		return InvalidParameter("unsupported contribution frequency %d", p.ContributionFrequency)
	}
	if p.WithdrawalAmount < 0 {
		return InvalidParameter("withdrawal must not be negative, got %s", p.WithdrawalAmount)
	}
	if !p.WithdrawalFrequency.Valid() {
		return InvalidParameter("unsupported withdrawal frequency %d", p.WithdrawalFrequency)
	}
	if !mathutil.IsFinite(p.HorizonYears) || p.HorizonYears < 0 {
		return InvalidParameter("horizon must be a non-negative number of years, got %v", p.HorizonYears)
	}
	if p.HorizonYears > constants.MaxYears {
		return InvalidParameter("horizon of %v years exceeds the %d year limit", p.HorizonYears, constants.MaxYears)
	}
	if !mathutil.IsFinite(p.InflationRatePercent) || p.InflationRatePercent < 0 {
		return InvalidParameter("inflation rate must be a non-negative number, got %v", p.InflationRatePercent)
	}
	if p.FixedPayment != nil && *p.FixedPayment <= 0 {
		return InvalidParameter("fixed payment must be positive, got %s", *p.FixedPayment)
	}
	for _, amount := range []money.Cents{p.Principal, p.ContributionAmount, p.WithdrawalAmount} {
		if !amount.InRange() {
			return InvalidParameter("amount %s exceeds the %s limit", amount, money.MaxAmount)
		}
	}
	if p.FixedPayment != nil && !p.FixedPayment.InRange() {
		return InvalidParameter("fixed payment %s exceeds the %s limit", *p.FixedPayment, money.MaxAmount)
	}
	return nil
}

// PeriodRecord is one compounding period of a simulation.
//
// For accumulation ClosingBalance = OpeningBalance + InterestAccrued +
// ContributionOrPayment. For amortization ClosingBalance = OpeningBalance -
// PrincipalComponent, where PrincipalComponent = ContributionOrPayment -
// InterestAccrued. For drawdown ContributionOrPayment is the withdrawal and
// ClosingBalance = OpeningBalance - ContributionOrPayment + InterestAccrued.
type PeriodRecord struct {
	PeriodIndex           int         `json:"period" yaml:"period"`
	OpeningBalance        money.Cents `json:"openingBalance" yaml:"openingBalance"`
	InterestAccrued       money.Cents `json:"interest" yaml:"interest"`
	ContributionOrPayment money.Cents `json:"contributionOrPayment" yaml:"contributionOrPayment"`
	PrincipalComponent    money.Cents `json:"principal" yaml:"principal"`
	ClosingBalance        money.Cents `json:"closingBalance" yaml:"closingBalance"`
}

// Totals sums a period series.
type Totals struct {
	// TotalPaid is the sum of payments, contributions or withdrawals.
	TotalPaid     money.Cents `json:"totalPaid" yaml:"totalPaid"`
	TotalInterest money.Cents `json:"totalInterest" yaml:"totalInterest"`
	// TotalContributions is the principal track: principal repaid for a loan,
	// deposits for accumulation, withdrawals for drawdown.
	TotalContributions money.Cents `json:"totalContributions" yaml:"totalContributions"`
}

// YearlySummary condenses one year of periods. It is derived from the period
// series and never authoritative.
type YearlySummary struct {
	Year                              int         `json:"year" yaml:"year"`
	Balance                           money.Cents `json:"balance" yaml:"balance"`
	YearPaid                          money.Cents `json:"yearPaid" yaml:"yearPaid"`
	YearInterest                      money.Cents `json:"yearInterest" yaml:"yearInterest"`
	CumulativeContributionsOrPayments money.Cents `json:"cumulativePaid" yaml:"cumulativePaid"`
	CumulativeInterest                money.Cents `json:"cumulativeInterest" yaml:"cumulativeInterest"`
}
