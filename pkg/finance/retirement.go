package finance

import (
	"fmt"

	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/money"
	"github.com/iwvelando/finance-calculators/pkg/projection"
	"go.uber.org/zap"
)

// RetirementPlan chains saving until retirement into drawing down afterwards.
type RetirementPlan struct {
	CurrentAge     float64
	RetirementAge  float64
	LifeExpectancy float64

	CurrentSavings        money.Cents
	ContributionAmount    money.Cents
	ContributionFrequency projection.ContributionFrequency

	PreRetirementRatePercent  float64
	PostRetirementRatePercent float64

	// AnnualWithdrawal is the yearly income needed, in today's money.
	AnnualWithdrawal     money.Cents
	InflationRatePercent float64
}

// RetirementResult summarizes both phases of a retirement plan.
type RetirementResult struct {
	// Accumulation is empty when the plan starts at retirement.
	Accumulation Schedule
	Drawdown     DrawdownResult

	BalanceAtRetirement  money.Cents
	RequiredAtRetirement money.Cents
	// Surplus is BalanceAtRetirement less RequiredAtRetirement; negative
	// values are a shortfall.
	Surplus money.Cents
	// DepletionAge is nil when savings last until LifeExpectancy.
	DepletionAge *float64
}

func (plan RetirementPlan) validate() error {
	if plan.CurrentAge < 0 || plan.RetirementAge < plan.CurrentAge {
		return projection.InvalidParameter("retirement age %v must not precede current age %v", plan.RetirementAge, plan.CurrentAge)
	}
	if plan.LifeExpectancy <= plan.RetirementAge {
		return projection.InvalidParameter("life expectancy %v must be after retirement age %v", plan.LifeExpectancy, plan.RetirementAge)
	}
	if plan.LifeExpectancy-plan.CurrentAge > constants.MaxYears {
		return projection.InvalidParameter("plan spans more than %d years", constants.MaxYears)
	}
	return nil
}

// SimulateRetirement accumulates savings until retirement with contributions
// made before compounding, then draws down the inflation-adjusted withdrawal
// until life expectancy. Both phases compound monthly.
func (p *Projector) SimulateRetirement(plan RetirementPlan) (RetirementResult, error) {
	if err := plan.validate(); err != nil {
		return RetirementResult{}, err
	}

	var result RetirementResult
	yearsUntil := plan.RetirementAge - plan.CurrentAge
	result.BalanceAtRetirement = plan.CurrentSavings
	if yearsUntil > 0 {
		accumulation, err := p.SimulateAccumulation(projection.Parameters{
			Principal:             plan.CurrentSavings,
			AnnualRatePercent:     plan.PreRetirementRatePercent,
			Compounding:           projection.Monthly,
			ContributionAmount:    plan.ContributionAmount,
			ContributionFrequency: plan.ContributionFrequency,
			ContributionTiming:    projection.PreCompound,
			HorizonYears:          yearsUntil,
		})
		if err != nil {
			return RetirementResult{}, fmt.Errorf("failed to simulate savings phase: %w", err)
		}
		result.Accumulation = accumulation
		result.BalanceAtRetirement = accumulation.FinalBalance()
	}

	goal := RetirementGoal{
		AnnualWithdrawal:     plan.AnnualWithdrawal,
		YearsUntilRetirement: yearsUntil,
		YearsInRetirement:    plan.LifeExpectancy - plan.RetirementAge,
		AnnualRatePercent:    plan.PostRetirementRatePercent,
		InflationRatePercent: plan.InflationRatePercent,
		WithdrawAtStart:      true,
	}
	required, err := SolveRetirementGoal(goal)
	if err != nil {
		return RetirementResult{}, fmt.Errorf("failed to solve retirement goal: %w", err)
	}
	result.RequiredAtRetirement = required
	result.Surplus = result.BalanceAtRetirement - required
	withdrawal, err := goal.WithdrawalAtRetirement()
	if err != nil {
		return RetirementResult{}, fmt.Errorf("failed to solve retirement goal: %w", err)
	}

	drawdown, err := p.SimulateDrawdown(projection.Parameters{
		Principal:            result.BalanceAtRetirement,
		AnnualRatePercent:    plan.PostRetirementRatePercent,
		Compounding:          projection.Monthly,
		HorizonYears:         goal.YearsInRetirement,
		WithdrawalAmount:     withdrawal,
		WithdrawalFrequency:  projection.AnnuallyContribution,
		InflationRatePercent: plan.InflationRatePercent,
	})
	if err != nil {
		return RetirementResult{}, fmt.Errorf("failed to simulate withdrawal phase: %w", err)
	}
	result.Drawdown = drawdown

	if drawdown.Depleted() {
		age := plan.RetirementAge + float64(*drawdown.DepletedAtPeriod)/constants.MonthsPerYear
		result.DepletionAge = &age
	}

	p.logger.Debug("retirement plan simulated",
		zap.String("op", "finance.SimulateRetirement"),
		zap.String("balanceAtRetirement", result.BalanceAtRetirement.String()),
		zap.String("required", required.String()),
		zap.Bool("depleted", drawdown.Depleted()),
	)
	return result, nil
}
