package calculator

import (
	"errors"
	"fmt"

	"github.com/iwvelando/finance-calculators/internal/config"
	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/loans"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
	"github.com/iwvelando/finance-calculators/pkg/money"
	"github.com/iwvelando/finance-calculators/pkg/projection"
	"go.uber.org/zap"
)

func (c *Calculator) mortgage(m config.Mortgage, result *Result) error {
	terms, err := m.Terms()
	if err != nil {
		return err
	}
	schedule, err := c.amortizer.Simulate(terms.Parameters)
	if err != nil {
		return err
	}
	if err := result.setSchedule(schedule.Periods, schedule.PeriodsPerYear); err != nil {
		return err
	}

	insuranceMonths := 0
	if terms.MortgageInsurance > 0 {
		for _, p := range schedule.Periods {
			if p.OpeningBalance <= terms.MortgageInsuranceCutoff {
				break
			}
			insuranceMonths++
		}
	}
	months := schedule.PayoffPeriods()
	insuranceTotal := terms.MortgageInsurance * money.Cents(insuranceMonths)
	escrowTotal := terms.MonthlyEscrow * money.Cents(months)
	monthly := schedule.Payment + schedule.ExtraPayment + terms.MonthlyEscrow
	if insuranceMonths > 0 {
		monthly += terms.MortgageInsurance
	}

	result.addMoney("loanAmount", "Loan amount", terms.Parameters.Principal)
	result.addMoney("downPayment", "Down payment", terms.DownPayment)
	result.addMoney("principalAndInterest", "Monthly principal and interest", schedule.Payment)
	if schedule.ExtraPayment > 0 {
		result.addMoney("extraPayment", "Monthly extra principal", schedule.ExtraPayment)
	}
	result.addMoney("escrow", "Monthly taxes, insurance and HOA", terms.MonthlyEscrow)
	if insuranceMonths > 0 {
		result.addMoney("mortgageInsurance", "Monthly mortgage insurance", terms.MortgageInsurance)
	}
	result.addMoney("monthlyPayment", "Total monthly payment", monthly)
	result.addMoney("totalInterest", "Total interest", schedule.Totals.TotalInterest)
	result.addMoney("totalCost", "Total cost of ownership", money.Sum(terms.DownPayment, schedule.Totals.TotalPaid, escrowTotal, insuranceTotal))
	result.add("payoffMonths", "Months to payoff", float64(months), UnitMonths)

	if insuranceMonths > 0 {
		result.note("Mortgage insurance drops off after %d payments, costing %s in total", insuranceMonths, insuranceTotal)
	}
	crossoverNote(result, schedule.Periods)
	return c.compareExtra(terms.Parameters, schedule, result)
}

func (c *Calculator) loan(l config.Loan, result *Result) error {
	params, err := l.Parameters()
	if err != nil {
		return err
	}
	schedule, err := c.amortizer.Simulate(params)
	if err != nil {
		return err
	}
	if err := result.setSchedule(schedule.Periods, schedule.PeriodsPerYear); err != nil {
		return err
	}

	periods := schedule.PayoffPeriods()
	result.addMoney("payment", "Payment", schedule.Payment)
	if schedule.ExtraPayment > 0 {
		result.addMoney("extraPayment", "Extra principal per payment", schedule.ExtraPayment)
	}
	result.addMoney("totalInterest", "Total interest", schedule.Totals.TotalInterest)
	result.addMoney("totalPaid", "Total paid", schedule.Totals.TotalPaid)
	result.add("payoffPeriods", "Payments to payoff", float64(periods), UnitPeriods)
	result.add("payoffYears", "Years to payoff", mathutil.RoundTo(float64(periods)/float64(schedule.PeriodsPerYear), 2), UnitYears)

	crossoverNote(result, schedule.Periods)
	return c.compareExtra(params, schedule, result)
}

func (c *Calculator) creditCard(card config.CreditCard, result *Result) error {
	terms, err := card.Terms()
	if err != nil {
		return err
	}

	params := projection.Parameters{
		Principal:         terms.Balance,
		AnnualRatePercent: terms.AnnualRate,
		Compounding:       projection.Monthly,
	}
	if terms.TargetMonths > 0 {
		payment, err := loans.SolvePayment(terms.Balance, terms.AnnualRate, projection.Monthly, terms.TargetMonths)
		if err != nil {
			return err
		}
		params.HorizonYears = float64(terms.TargetMonths) / constants.MonthsPerYear
		result.addMoney("requiredPayment", fmt.Sprintf("Monthly payment to clear in %d months", terms.TargetMonths), payment)
	} else {
		months, err := loans.SolveMonthsToPayoff(terms.Balance, terms.AnnualRate, projection.Monthly, terms.Payment)
		if err != nil {
			return err
		}
		params.FixedPayment = &terms.Payment
		result.addMoney("payment", "Monthly payment", terms.Payment)
		result.add("monthsToPayoff", "Months to payoff", float64(months), UnitMonths)
	}

	schedule, err := c.amortizer.Simulate(params)
	if err != nil {
		return err
	}
	if err := result.setSchedule(schedule.Periods, schedule.PeriodsPerYear); err != nil {
		return err
	}

	result.addMoney("firstMonthInterest", "First month's interest", schedule.Periods[0].InterestAccrued)
	result.addMoney("totalInterest", "Total interest", schedule.Totals.TotalInterest)
	result.addMoney("totalPaid", "Total paid", schedule.Totals.TotalPaid)
	if schedule.Totals.TotalInterest > terms.Balance/2 {
		result.note("Interest adds %s to the %s balance", schedule.Totals.TotalInterest, terms.Balance)
	}
	return nil
}

// compareExtra reports what the extra principal in params saves against the
// same loan without it.
func (c *Calculator) compareExtra(params projection.Parameters, accelerated loans.Schedule, result *Result) error {
	if accelerated.ExtraPayment == 0 {
		return nil
	}
	base := params
	base.ContributionAmount = 0
	base.ContributionFrequency = projection.None

	baseline, err := c.amortizer.Simulate(base)
	if errors.Is(err, projection.ErrPaymentTooLow) || errors.Is(err, projection.ErrDidNotConverge) {
		c.logger.Debug("baseline without extra payments never pays off",
			zap.String("op", "calculator.compareExtra"),
			zap.Error(err),
		)
		result.note("Without the extra payments the loan would never be repaid")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to simulate baseline without extra payments: %w", err)
	}

	saved := loans.InterestSaved(baseline, accelerated)
	result.addMoney("interestSaved", "Interest saved by extra payments", saved.InterestSaved)
	result.add("paymentsSaved", "Payments saved by extra payments", float64(saved.PeriodsSaved), UnitPeriods)
	result.note("Extra payments retire the loan %d payments early and save %s in interest", saved.PeriodsSaved, saved.InterestSaved)
	return nil
}

func crossoverNote(result *Result, periods []projection.PeriodRecord) {
	if k, ok := projection.Crossover(periods); ok {
		result.note("Principal repaid exceeds interest from payment %d", k)
	}
}
