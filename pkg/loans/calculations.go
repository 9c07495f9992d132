// Package loans provides the amortization simulator and the loan goal solvers
// used by the mortgage, loan and credit card calculators.
package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
	"github.com/iwvelando/finance-calculators/pkg/money"
	"github.com/iwvelando/finance-calculators/pkg/projection"
	"go.uber.org/zap"
)

// Schedule is a complete amortization schedule.
type Schedule struct {
	Periods []projection.PeriodRecord
	Totals  projection.Totals
	// Payment is the scheduled periodic payment, excluding any extra principal.
	Payment        money.Cents
	ExtraPayment   money.Cents
	PeriodsPerYear int
}

// PayoffPeriods returns the number of periods until the balance reaches zero.
func (s Schedule) PayoffPeriods() int {
	return len(s.Periods)
}

// InterestForPeriod calculates the interest portion of a payment. Interest is
// truncated to the cent so a ceiling-rounded payment always retires the loan
// within its term.
func InterestForPeriod(balance money.Cents, periodicRate float64) money.Cents {
	return balance.MulRate(periodicRate, money.RoundDown)
}

// SolvePayment calculates the level periodic payment that retires principal
// in exactly periods payments, rounded up to the next cent.
func SolvePayment(principal money.Cents, annualRatePercent float64, compounding projection.CompoundingFrequency, periods int) (money.Cents, error) {
	if principal <= 0 {
		return 0, projection.InvalidParameter("principal must be positive, got %s", principal)
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

	if r == 0 {
		// For zero interest, simply divide the principal by term
		n := int64(periods)
		return money.Cents((int64(principal) + n - 1) / n), nil
	}

	power := mathutil.CompoundFactor(r, float64(periods))
	payment := float64(principal) * r * power / (power - 1)
	// Trim float noise so an exact cent amount is not pushed up a cent.
	amount, err := money.FromFloatMode(mathutil.RoundTo(payment, 6), money.RoundUp)
	if err != nil {
		return 0, projection.InvalidParameter("payment for %s over %d periods: %v", principal, periods, err)
	}
	return amount, nil
}

// SolveMonthsToPayoff calculates the number of periods a fixed payment needs
// to retire principal. The name follows the calculators, where the period is
// almost always a month.
//
// The closed form ceil(-ln(1 - principal*r/payment) / ln(1+r)) bounds the
// count from above because interest is truncated to the cent each period.
// The exact count comes from the same cents recurrence Simulate runs, so the
// solver and the simulator always agree.
func SolveMonthsToPayoff(principal money.Cents, annualRatePercent float64, compounding projection.CompoundingFrequency, payment money.Cents) (int, error) {
	n, _, err := solvePayoff(principal, annualRatePercent, compounding, payment)
	return n, err
}

// PayoffInterest calculates the total interest a fixed payment pays before
// the loan is retired, matching the simulated schedule to the cent.
func PayoffInterest(principal money.Cents, annualRatePercent float64, compounding projection.CompoundingFrequency, payment money.Cents) (money.Cents, error) {
	_, interest, err := solvePayoff(principal, annualRatePercent, compounding, payment)
	return interest, err
}

func solvePayoff(principal money.Cents, annualRatePercent float64, compounding projection.CompoundingFrequency, payment money.Cents) (int, money.Cents, error) {
	if principal <= 0 {
		return 0, 0, projection.InvalidParameter("principal must be positive, got %s", principal)
	}
	if payment <= 0 {
		return 0, 0, projection.InvalidParameter("payment must be positive, got %s", payment)
	}
	if !principal.InRange() || !payment.InRange() {
		return 0, 0, projection.InvalidParameter("amounts must not exceed %s", money.MaxAmount)
	}
	if !compounding.Valid() {
		return 0, 0, projection.InvalidParameter("unsupported compounding frequency %d", compounding)
	}
	r, err := projection.ToPeriodicRate(annualRatePercent, compounding)
	if err != nil {
		return 0, 0, err
	}
	if !coversInterest(payment, principal, r) {
		return 0, 0, &projection.PaymentTooLowError{
			Payment:  payment,
			Interest: principal.MulRate(r, money.RoundNearest),
		}
	}

	limit := constants.MaxYears * compounding.PeriodsPerYear()
	if bound := closedFormPeriods(principal, r, payment); bound < float64(limit) {
		limit = min(limit, int(math.Ceil(bound))+1)
	}

	balance := principal
	var interest money.Cents
	for k := 1; k <= limit; k++ {
		step := amortizationStep(balance, r, payment)
		interest += step.interest
		balance -= step.principal
		if balance == 0 {
			return k, interest, nil
		}
	}
	return 0, 0, &projection.NotConvergedError{Periods: limit, Balance: balance}
}

// closedFormPeriods is the real-valued period count of the untruncated
// annuity. Callers ensure payment covers the first period's interest.
func closedFormPeriods(principal money.Cents, r float64, payment money.Cents) float64 {
	if r == 0 {
		return float64(principal) / float64(payment)
	}
	ratio := float64(principal) * r / float64(payment)
	return -math.Log(1-ratio) / math.Log(1+r)
}

func coversInterest(payment, balance money.Cents, r float64) bool {
	return float64(payment) > float64(balance)*r
}

// period is one step of the amortization recurrence.
type period struct {
	interest  money.Cents
	principal money.Cents
	paid      money.Cents
}

// amortizationStep applies one payment to balance. The payment that would
// overshoot pays exactly the balance plus its interest.
func amortizationStep(balance money.Cents, r float64, payment money.Cents) period {
	interest := InterestForPeriod(balance, r)
	principalPart := payment - interest
	if principalPart >= balance {
		return period{interest: interest, principal: balance, paid: balance + interest}
	}
	return period{interest: interest, principal: principalPart, paid: payment}
}

// Amortizer generates loan amortization schedules.
type Amortizer struct {
	logger *zap.Logger
}

// NewAmortizer creates a new amortizer instance
func NewAmortizer(logger *zap.Logger) *Amortizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Amortizer{logger: logger}
}

// SimulateAmortization runs Amortizer.Simulate without logging.
func SimulateAmortization(params projection.Parameters) (Schedule, error) {
	return NewAmortizer(nil).Simulate(params)
}

// Simulate creates a complete amortization schedule. Exactly one of
// params.FixedPayment and params.HorizonYears drives the other: with a fixed
// payment the loan runs until paid off, with a horizon the payment is solved
// so the loan ends in exactly that many periods. ContributionAmount is paid
// as extra principal every period.
func (a *Amortizer) Simulate(params projection.Parameters) (Schedule, error) {
	if err := params.Validate(); err != nil {
		return Schedule{}, err
	}
	if params.Principal <= 0 {
		return Schedule{}, projection.InvalidParameter("loan principal must be positive, got %s", params.Principal)
	}

	r, err := params.PeriodicRate()
	if err != nil {
		return Schedule{}, err
	}
	periodsPerYear := params.PeriodsPerYear()
	extra, err := projection.ToPeriodicContribution(params.ContributionAmount, params.ContributionFrequency, periodsPerYear)
	if err != nil {
		return Schedule{}, err
	}

	var payment money.Cents
	term := 0
	switch {
	case params.FixedPayment != nil && params.HorizonYears > 0:
		return Schedule{}, projection.InvalidParameter("fixed payment and horizon are mutually exclusive")
	case params.FixedPayment != nil:
		payment = *params.FixedPayment
	case params.HorizonYears > 0:
		term = params.PeriodCount()
		if term > params.MaxPeriods() {
			return Schedule{}, projection.InvalidParameter("term of %d periods exceeds the %d period cap", term, params.MaxPeriods())
		}
		payment, err = SolvePayment(params.Principal, params.AnnualRatePercent, params.Compounding, term)
		if err != nil {
			return Schedule{}, err
		}
	default:
		return Schedule{}, projection.InvalidParameter("either a fixed payment or a horizon is required")
	}

	total := payment + extra
	if !coversInterest(total, params.Principal, r) {
		return Schedule{}, &projection.PaymentTooLowError{
			Payment:  total,
			Interest: params.Principal.MulRate(r, money.RoundNearest),
		}
	}

	maxPeriods := params.MaxPeriods()
	capacity := term
	if capacity == 0 {
		capacity = periodsPerYear
	}
	periods := make([]projection.PeriodRecord, 0, capacity)
	balance := params.Principal

	for k := 1; balance > 0; k++ {
		if k > maxPeriods {
			a.logger.Debug(fmt.Sprintf("amortization stopped at the %d period cap with %s outstanding", maxPeriods, balance),
				zap.String("op", "loans.Simulate"),
			)
			return Schedule{}, &projection.NotConvergedError{Periods: maxPeriods, Balance: balance}
		}

		step := amortizationStep(balance, r, total)
		// In horizon mode the last scheduled period absorbs any rounding residue.
		if k == term {
			step = period{interest: step.interest, principal: balance, paid: balance + step.interest}
		}

		periods = append(periods, projection.PeriodRecord{
			PeriodIndex:           k,
			OpeningBalance:        balance,
			InterestAccrued:       step.interest,
			ContributionOrPayment: step.paid,
			PrincipalComponent:    step.principal,
			ClosingBalance:        balance - step.principal,
		})
		balance -= step.principal
	}

	schedule := Schedule{
		Periods:        periods,
		Totals:         projection.SumTotals(periods),
		Payment:        payment,
		ExtraPayment:   extra,
		PeriodsPerYear: periodsPerYear,
	}

	a.logger.Debug("amortization schedule generated",
		zap.String("op", "loans.Simulate"),
		zap.String("payment", payment.String()),
		zap.String("extra", extra.String()),
		zap.Int("periods", len(periods)),
		zap.String("interest", schedule.Totals.TotalInterest.String()),
	)
	return schedule, nil
}

// Comparison describes what extra payments save against a baseline schedule.
type Comparison struct {
	PeriodsSaved  int
	InterestSaved money.Cents
}

// InterestSaved compares a baseline schedule with an accelerated one.
func InterestSaved(base, accelerated Schedule) Comparison {
	return Comparison{
		PeriodsSaved:  base.PayoffPeriods() - accelerated.PayoffPeriods(),
		InterestSaved: base.Totals.TotalInterest - accelerated.Totals.TotalInterest,
	}
}
