package projection

import "github.com/iwvelando/finance-calculators/pkg/money"

// SumTotals sums payments, interest and the principal track across the full
// series.
func SumTotals(periods []PeriodRecord) Totals {
	var t Totals
	for _, p := range periods {
		t.TotalPaid += p.ContributionOrPayment
		t.TotalInterest += p.InterestAccrued
		t.TotalContributions += p.PrincipalComponent
	}
	return t
}

// ToYearlySummaries groups every periodsPerYear records into one row. A final
// partial year is emitted as its own row.
func ToYearlySummaries(periods []PeriodRecord, periodsPerYear int) ([]YearlySummary, error) {
	if periodsPerYear <= 0 {
		return nil, InvalidParameter("periods per year must be positive, got %d", periodsPerYear)
	}

	summaries := make([]YearlySummary, 0, (len(periods)+periodsPerYear-1)/periodsPerYear)
	var cumulativePaid, cumulativeInterest money.Cents
	var current YearlySummary
	for i, p := range periods {
		if i%periodsPerYear == 0 {
			current = YearlySummary{Year: i/periodsPerYear + 1}
		}
		current.YearPaid += p.ContributionOrPayment
		current.YearInterest += p.InterestAccrued
		cumulativePaid += p.ContributionOrPayment
		cumulativeInterest += p.InterestAccrued

		if (i+1)%periodsPerYear == 0 || i == len(periods)-1 {
			current.Balance = p.ClosingBalance
			current.CumulativeContributionsOrPayments = cumulativePaid
			current.CumulativeInterest = cumulativeInterest
			summaries = append(summaries, current)
		}
	}
	return summaries, nil
}

// Crossover finds the breakpoint of a series: for a loan the first period in
// which principal repaid exceeds interest, for a growing balance the first
// period in which cumulative interest exceeds the starting balance plus
// cumulative contributions. It returns false when the series never crosses.
func Crossover(periods []PeriodRecord) (int, bool) {
	if len(periods) == 0 {
		return 0, false
	}

	amortizing := periods[0].ClosingBalance < periods[0].OpeningBalance &&
		periods[0].ContributionOrPayment > periods[0].InterestAccrued
	var cumulativeInterest money.Cents
	cumulativeContributions := periods[0].OpeningBalance
	for _, p := range periods {
		if amortizing {
			if p.PrincipalComponent > p.InterestAccrued {
				return p.PeriodIndex, true
			}
			continue
		}
		cumulativeInterest += p.InterestAccrued
		cumulativeContributions += p.PrincipalComponent
		if cumulativeInterest > cumulativeContributions {
			return p.PeriodIndex, true
		}
	}
	return 0, false
}

// FinalBalance returns the closing balance of the last period, or zero for an
// empty series.
func FinalBalance(periods []PeriodRecord) money.Cents {
	if len(periods) == 0 {
		return 0
	}
	return periods[len(periods)-1].ClosingBalance
}
