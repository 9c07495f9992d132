package finance

import (
	"fmt"

	"github.com/iwvelando/finance-calculators/pkg/mathutil"
	"github.com/iwvelando/finance-calculators/pkg/money"
	"github.com/iwvelando/finance-calculators/pkg/projection"
	"go.uber.org/zap"
)

// Schedule is the period series of a growing or shrinking balance.
type Schedule struct {
	Periods []projection.PeriodRecord
	Totals  projection.Totals
	// Contribution is the per-period deposit after frequency conversion.
	Contribution   money.Cents
	Timing         projection.ContributionTiming
	PeriodsPerYear int
}

// FinalBalance returns the closing balance of the last period.
func (s Schedule) FinalBalance() money.Cents {
	return projection.FinalBalance(s.Periods)
}

// DrawdownResult is a drawdown schedule and the period in which the balance
// ran out, nil when it survives the full horizon.
type DrawdownResult struct {
	Schedule
	DepletedAtPeriod *int
	// InitialWithdrawal and FinalWithdrawal are the per-period withdrawals
	// in the first and last simulated years.
	InitialWithdrawal money.Cents
	FinalWithdrawal   money.Cents
}

// Depleted reports whether the balance ran out within the horizon.
func (d DrawdownResult) Depleted() bool {
	return d.DepletedAtPeriod != nil
}

func horizonPeriods(params projection.Parameters) (int, error) {
	if params.HorizonYears <= 0 {
		return 0, projection.InvalidParameter("horizon must be positive, got %v years", params.HorizonYears)
	}
	n := params.PeriodCount()
	if n <= 0 {
		return 0, projection.InvalidParameter("horizon of %v years is shorter than one %s period", params.HorizonYears, params.Compounding)
	}
	return n, nil
}

// SimulateAccumulation compounds a balance with periodic contributions over
// the horizon. With PreCompound timing each contribution earns interest in
// the period it is made; with PostCompound it is added after interest.
func (p *Projector) SimulateAccumulation(params projection.Parameters) (Schedule, error) {
	if err := params.Validate(); err != nil {
		return Schedule{}, err
	}
	n, err := horizonPeriods(params)
	if err != nil {
		return Schedule{}, err
	}
	r, err := params.PeriodicRate()
	if err != nil {
		return Schedule{}, err
	}
	periodsPerYear := params.PeriodsPerYear()
	contribution, err := projection.ToPeriodicContribution(params.ContributionAmount, params.ContributionFrequency, periodsPerYear)
	if err != nil {
		return Schedule{}, err
	}

	periods := make([]projection.PeriodRecord, 0, n)
	balance := params.Principal
	for k := 1; k <= n; k++ {
		base := balance
		if params.ContributionTiming == projection.PreCompound {
			if base, err = money.AddChecked(balance, contribution); err != nil {
				return Schedule{}, projection.OutOfRange(k, err)
			}
		}
		interest, err := base.MulRateChecked(r, money.RoundNearest)
		if err != nil {
			return Schedule{}, projection.OutOfRange(k, err)
		}
		closing, err := money.AddChecked(balance, interest, contribution)
		if err != nil {
			return Schedule{}, projection.OutOfRange(k, err)
		}

		periods = append(periods, projection.PeriodRecord{
			PeriodIndex:           k,
			OpeningBalance:        balance,
			InterestAccrued:       interest,
			ContributionOrPayment: contribution,
			PrincipalComponent:    contribution,
			ClosingBalance:        closing,
		})
		balance = closing
	}

	schedule := Schedule{
		Periods:        periods,
		Totals:         projection.SumTotals(periods),
		Contribution:   contribution,
		Timing:         params.ContributionTiming,
		PeriodsPerYear: periodsPerYear,
	}

	p.logger.Debug(fmt.Sprintf("accumulated %s over %d periods", balance, n),
		zap.String("op", "finance.SimulateAccumulation"),
		zap.String("timing", params.ContributionTiming.String()),
		zap.String("interest", schedule.Totals.TotalInterest.String()),
	)
	return schedule, nil
}

// SimulateDrawdown withdraws from a balance every period and compounds what
// remains. Withdrawals grow with InflationRatePercent at each year boundary.
// The simulation stops early when the balance is exhausted.
func (p *Projector) SimulateDrawdown(params projection.Parameters) (DrawdownResult, error) {
	if err := params.Validate(); err != nil {
		return DrawdownResult{}, err
	}
	n, err := horizonPeriods(params)
	if err != nil {
		return DrawdownResult{}, err
	}
	if params.WithdrawalAmount > 0 && params.WithdrawalFrequency == projection.None {
		return DrawdownResult{}, projection.InvalidParameter("withdrawal of %s has no frequency", params.WithdrawalAmount)
	}
	r, err := params.PeriodicRate()
	if err != nil {
		return DrawdownResult{}, err
	}
	periodsPerYear := params.PeriodsPerYear()
	base, err := projection.ToPeriodicContribution(params.WithdrawalAmount, params.WithdrawalFrequency, periodsPerYear)
	if err != nil {
		return DrawdownResult{}, err
	}
	inflation := mathutil.PercentToDecimal(params.InflationRatePercent)

	result := DrawdownResult{InitialWithdrawal: base, FinalWithdrawal: base}
	periods := make([]projection.PeriodRecord, 0, n)
	balance := params.Principal
	withdrawal := base
	for k := 1; k <= n; k++ {
		if year := (k - 1) / periodsPerYear; year > 0 && (k-1)%periodsPerYear == 0 {
			// Escalate from the base amount so rounding does not compound.
			withdrawal, err = money.FromFloatMode(float64(base)*mathutil.CompoundFactor(inflation, float64(year)), money.RoundNearest)
			if err != nil {
				return DrawdownResult{}, projection.OutOfRange(k, err)
			}
			result.FinalWithdrawal = withdrawal
		}

		if balance-withdrawal <= 0 {
			periods = append(periods, projection.PeriodRecord{
				PeriodIndex:           k,
				OpeningBalance:        balance,
				ContributionOrPayment: balance,
				PrincipalComponent:    balance,
			})
			depleted := k
			result.DepletedAtPeriod = &depleted
			break
		}

		remaining := balance - withdrawal
		interest, err := remaining.MulRateChecked(r, money.RoundNearest)
		if err != nil {
			return DrawdownResult{}, projection.OutOfRange(k, err)
		}
		closing, err := money.AddChecked(remaining, interest)
		if err != nil {
			return DrawdownResult{}, projection.OutOfRange(k, err)
		}
		periods = append(periods, projection.PeriodRecord{
			PeriodIndex:           k,
			OpeningBalance:        balance,
			InterestAccrued:       interest,
			ContributionOrPayment: withdrawal,
			PrincipalComponent:    withdrawal,
			ClosingBalance:        closing,
		})
		balance = closing
	}

	result.Schedule = Schedule{
		Periods:        periods,
		Totals:         projection.SumTotals(periods),
		PeriodsPerYear: periodsPerYear,
	}

	if result.Depleted() {
		p.logger.Debug(fmt.Sprintf("balance depleted in period %d of %d", *result.DepletedAtPeriod, n),
			zap.String("op", "finance.SimulateDrawdown"),
		)
	} else {
		p.logger.Debug(fmt.Sprintf("balance of %s survives %d periods", balance, n),
			zap.String("op", "finance.SimulateDrawdown"),
		)
	}
	return result, nil
}
