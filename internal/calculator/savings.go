package calculator

import (
	"github.com/iwvelando/finance-calculators/internal/config"
	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/finance"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
	"github.com/iwvelando/finance-calculators/pkg/projection"
)

func (c *Calculator) compoundInterest(ci config.CompoundInterest, result *Result) error {
	params, err := ci.Parameters()
	if err != nil {
		return err
	}
	schedule, err := c.projector.SimulateAccumulation(params)
	if err != nil {
		return err
	}
	apy, err := projection.EffectiveAnnualRate(params.AnnualRatePercent, params.Compounding)
	if err != nil {
		return err
	}
	if err := result.setSchedule(schedule.Periods, schedule.PeriodsPerYear); err != nil {
		return err
	}

	result.addMoney("finalBalance", "Final balance", schedule.FinalBalance())
	result.addMoney("totalDeposits", "Total deposits", params.Principal+schedule.Totals.TotalContributions)
	result.addMoney("totalInterest", "Total interest", schedule.Totals.TotalInterest)
	if schedule.Contribution > 0 {
		result.addMoney("periodicDeposit", "Deposit per "+params.Compounding.String()+" period", schedule.Contribution)
	}
	result.add("apy", "Annual percentage yield", mathutil.RoundTo(apy, 4), UnitPercent)

	if k, ok := projection.Crossover(schedule.Periods); ok {
		result.note("Interest earned exceeds deposits from period %d", k)
	}
	return nil
}

func (c *Calculator) investment(inv config.Investment, result *Result) error {
	params, target, err := inv.Parameters()
	if err != nil {
		return err
	}
	schedule, err := c.projector.SimulateAccumulation(params)
	if err != nil {
		return err
	}
	if err := result.setSchedule(schedule.Periods, schedule.PeriodsPerYear); err != nil {
		return err
	}

	final := schedule.FinalBalance()
	result.addMoney("finalBalance", "Projected balance", final)
	result.addMoney("totalContributed", "Total contributed", params.Principal+schedule.Totals.TotalContributions)
	result.addMoney("totalGrowth", "Investment growth", schedule.Totals.TotalInterest)
	if target == 0 {
		return nil
	}

	required, err := finance.SolveRequiredContribution(params.Principal, params.AnnualRatePercent, params.Compounding,
		len(schedule.Periods), target, params.ContributionTiming)
	if err != nil {
		return err
	}
	result.addMoney("target", "Target", target)
	result.addMoney("requiredContribution", "Monthly contribution to reach the target", required)
	if final >= target {
		result.note("On track: the projected balance exceeds the %s target by %s", target, final-target)
	} else {
		result.note("Short of the %s target by %s; contribute %s per month to reach it", target, target-final, required)
	}
	return nil
}

func (c *Calculator) retirement(r config.Retirement, result *Result) error {
	plan, err := r.Plan()
	if err != nil {
		return err
	}
	res, err := c.projector.SimulateRetirement(plan)
	if err != nil {
		return err
	}

	// One timeline: savings periods followed by retirement periods.
	offset := len(res.Accumulation.Periods)
	timeline := make([]projection.PeriodRecord, 0, offset+len(res.Drawdown.Periods))
	timeline = append(timeline, res.Accumulation.Periods...)
	for _, p := range res.Drawdown.Periods {
		p.PeriodIndex += offset
		timeline = append(timeline, p)
	}
	if err := result.setSchedule(timeline, constants.MonthsPerYear); err != nil {
		return err
	}

	result.addMoney("balanceAtRetirement", "Savings at retirement", res.BalanceAtRetirement)
	result.addMoney("requiredAtRetirement", "Savings needed at retirement", res.RequiredAtRetirement)
	if res.Surplus >= 0 {
		result.addMoney("surplus", "Surplus", res.Surplus)
	} else {
		result.addMoney("shortfall", "Shortfall", -res.Surplus)
	}
	if res.RequiredAtRetirement > 0 {
		funded := mathutil.CalculatePercentage(res.BalanceAtRetirement.Float64(), res.RequiredAtRetirement.Float64())
		result.add("fundedPercent", "Share of the goal funded", mathutil.RoundTo(funded, 1), UnitPercent)
	}
	if offset > 0 {
		result.addMoney("totalContributions", "Total contributions", res.Accumulation.Totals.TotalContributions)
	}
	result.addMoney("firstYearIncome", "Monthly income in the first year of retirement", res.Drawdown.InitialWithdrawal)
	result.addMoney("finalYearIncome", "Monthly income in the final year", res.Drawdown.FinalWithdrawal)

	if res.DepletionAge != nil {
		result.add("depletionAge", "Age savings run out", mathutil.RoundTo(*res.DepletionAge, 1), UnitYears)
		result.note("Savings run out at age %.1f, %.1f years before life expectancy",
			*res.DepletionAge, plan.LifeExpectancy-*res.DepletionAge)
	} else {
		result.addMoney("endingBalance", "Savings left at life expectancy", res.Drawdown.FinalBalance())
		result.note("Savings last through age %.0f", plan.LifeExpectancy)
	}
	return nil
}
