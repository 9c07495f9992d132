package finance

import (
	"math"

	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
	"github.com/iwvelando/finance-calculators/pkg/money"
	"github.com/iwvelando/finance-calculators/pkg/projection"
)

// RetirementGoal describes the income a retirement has to fund.
type RetirementGoal struct {
	// AnnualWithdrawal is the yearly income needed, in today's money.
	AnnualWithdrawal     money.Cents
	YearsUntilRetirement float64
	YearsInRetirement    float64
	// AnnualRatePercent is the expected return during retirement.
	AnnualRatePercent    float64
	InflationRatePercent float64
	// WithdrawAtStart funds withdrawals taken at the start of each month,
	// before the remaining balance earns interest, as SimulateDrawdown does.
	// The default funds withdrawals at the end of each month.
	WithdrawAtStart bool
}

func (g RetirementGoal) validate() error {
	if g.AnnualWithdrawal < 0 {
		return projection.InvalidParameter("annual withdrawal must not be negative, got %s", g.AnnualWithdrawal)
	}
	if !mathutil.IsFinite(g.YearsUntilRetirement) || g.YearsUntilRetirement < 0 {
		return projection.InvalidParameter("years until retirement must not be negative, got %v", g.YearsUntilRetirement)
	}
	if !mathutil.IsFinite(g.YearsInRetirement) || g.YearsInRetirement <= 0 {
		return projection.InvalidParameter("years in retirement must be positive, got %v", g.YearsInRetirement)
	}
	if g.YearsUntilRetirement+g.YearsInRetirement > constants.MaxYears {
		return projection.InvalidParameter("plan spans more than %d years", constants.MaxYears)
	}
	if !mathutil.IsFinite(g.AnnualRatePercent) || g.AnnualRatePercent < 0 {
		return projection.InvalidParameter("annual rate must be a non-negative number, got %v", g.AnnualRatePercent)
	}
	if !mathutil.IsFinite(g.InflationRatePercent) || g.InflationRatePercent < 0 {
		return projection.InvalidParameter("inflation rate must be a non-negative number, got %v", g.InflationRatePercent)
	}
	return nil
}

// WithdrawalAtRetirement inflates the annual withdrawal to the retirement date.
func (g RetirementGoal) WithdrawalAtRetirement() (money.Cents, error) {
	if err := g.validate(); err != nil {
		return 0, err
	}
	inflation := mathutil.PercentToDecimal(g.InflationRatePercent)
	factor := mathutil.CompoundFactor(inflation, g.YearsUntilRetirement)
	w, err := money.FromFloatMode(float64(g.AnnualWithdrawal)*factor, money.RoundNearest)
	if err != nil {
		return 0, projection.InvalidParameter("withdrawal inflated over %v years: %v", g.YearsUntilRetirement, err)
	}
	return w, nil
}

// SolveRetirementGoal calculates the savings needed at retirement to fund the
// goal's withdrawals, as the present value of a monthly annuity over the
// years in retirement.
func SolveRetirementGoal(g RetirementGoal) (money.Cents, error) {
	if err := g.validate(); err != nil {
		return 0, err
	}

	inflated, err := g.WithdrawalAtRetirement()
	if err != nil {
		return 0, err
	}
	w := float64(inflated)
	r, err := projection.ToPeriodicRate(g.AnnualRatePercent, projection.Monthly)
	if err != nil {
		return 0, err
	}
	if r == 0 {
		return goalAmount(w * g.YearsInRetirement)
	}

	n := math.Round(g.YearsInRetirement * constants.MonthsPerYear)
	pv := (w / constants.MonthsPerYear) * (1 - math.Pow(1+r, -n)) / r
	if g.WithdrawAtStart {
		pv *= 1 + r
	}
	return goalAmount(pv)
}

func goalAmount(cents float64) (money.Cents, error) {
	amount, err := money.FromFloatMode(cents, money.RoundNearest)
	if err != nil {
		return 0, projection.InvalidParameter("required savings: %v", err)
	}
	return amount, nil
}

// SolveRequiredContribution calculates the per-period deposit needed for
// principal to grow to target over the given number of compounding periods.
// The result is rounded up so the target is always reached.
func SolveRequiredContribution(principal money.Cents, annualRatePercent float64, compounding projection.CompoundingFrequency, periods int, target money.Cents, timing projection.ContributionTiming) (money.Cents, error) {
	if principal < 0 {
		return 0, projection.InvalidParameter("principal must not be negative, got %s", principal)
	}
	if target <= 0 {
		return 0, projection.InvalidParameter("target must be positive, got %s", target)
	}
	if periods <= 0 {
		return 0, projection.InvalidParameter("period count must be positive, got %d", periods)
	}
	if !compounding.Valid() {
		return 0, projection.InvalidParameter("unsupported compounding frequency %d", compounding)
	}
	r, err := projection.ToPeriodicRate(annualRatePercent, compounding)
	if err != nil {
		return 0, err
	}

	growth := mathutil.CompoundFactor(r, float64(periods))
	shortfall := float64(target) - float64(principal)*growth
	if shortfall <= 0 {
		return 0, nil
	}

	factor := float64(periods)
	if r > 0 {
		factor = (growth - 1) / r
		if timing == projection.PreCompound {
			factor *= 1 + r
		}
	}
	contribution, err := money.FromFloatMode(mathutil.RoundTo(shortfall/factor, 6), money.RoundUp)
	if err != nil {
		return 0, projection.InvalidParameter("required contribution: %v", err)
	}
	return contribution, nil
}
