package finance

import (
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/finance-calculators/pkg/money"
	"github.com/iwvelando/finance-calculators/pkg/projection"
	"go.uber.org/zap"
)

func TestSimulateAccumulation(t *testing.T) {
	tests := []struct {
		name     string
		params   projection.Parameters
		periods  int
		expected float64
		tol      float64
	}{
		{
			name: "Lump sum compounded annually",
			params: projection.Parameters{
				Principal:         1000000,
				AnnualRatePercent: 7,
				Compounding:       projection.Annually,
				HorizonYears:      10,
			},
			periods:  10,
			expected: 19671.51,
			tol:      0.05,
		},
		{
			name: "Zero rate adds contributions only",
			params: projection.Parameters{
				Principal:             100000,
				Compounding:           projection.Monthly,
				ContributionAmount:    10000,
				ContributionFrequency: projection.MonthlyContribution,
				HorizonYears:          1,
			},
			periods:  12,
			expected: 2200,
			tol:      0,
		},
		{
			name: "Ordinary annuity",
			params: projection.Parameters{
				AnnualRatePercent:     6,
				Compounding:           projection.Monthly,
				ContributionAmount:    10000,
				ContributionFrequency: projection.MonthlyContribution,
				ContributionTiming:    projection.PostCompound,
				HorizonYears:          10,
			},
			periods:  120,
			expected: 16387.93,
			tol:      1,
		},
		{
			name: "Annuity due",
			params: projection.Parameters{
				AnnualRatePercent:     6,
				Compounding:           projection.Monthly,
				ContributionAmount:    10000,
				ContributionFrequency: projection.MonthlyContribution,
				ContributionTiming:    projection.PreCompound,
				HorizonYears:          10,
			},
			periods:  120,
			expected: 16469.87,
			tol:      1,
		},
	}

	projector := NewProjector(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, err := projector.SimulateAccumulation(tt.params)
			if err != nil {
				t.Fatalf("SimulateAccumulation() error = %v", err)
			}
			if len(schedule.Periods) != tt.periods {
				t.Errorf("got %d periods, expected %d", len(schedule.Periods), tt.periods)
			}
			if got := schedule.FinalBalance().Float64(); math.Abs(got-tt.expected) > tt.tol {
				t.Errorf("final balance = %.2f, expected %.2f", got, tt.expected)
			}

			// Starting balance plus deposits plus interest is the final balance, to the cent
			totals := schedule.Totals
			if tt.params.Principal+totals.TotalContributions+totals.TotalInterest != schedule.FinalBalance() {
				t.Errorf("totals %+v do not reconcile with final balance %s", totals, schedule.FinalBalance())
			}

			previous := tt.params.Principal
			for _, p := range schedule.Periods {
				if p.ClosingBalance < previous {
					t.Fatalf("balance decreased in period %d", p.PeriodIndex)
				}
				if p.ClosingBalance != p.OpeningBalance+p.InterestAccrued+p.ContributionOrPayment {
					t.Fatalf("period %d does not balance: %+v", p.PeriodIndex, p)
				}
				previous = p.ClosingBalance
			}
		})
	}
}

func TestContributionTimingMatters(t *testing.T) {
	params := projection.Parameters{
		Principal:             500000,
		AnnualRatePercent:     8,
		Compounding:           projection.Monthly,
		ContributionAmount:    25000,
		ContributionFrequency: projection.MonthlyContribution,
		HorizonYears:          20,
	}

	params.ContributionTiming = projection.PreCompound
	pre, err := SimulateAccumulation(params)
	if err != nil {
		t.Fatalf("pre-compound error = %v", err)
	}
	params.ContributionTiming = projection.PostCompound
	post, err := SimulateAccumulation(params)
	if err != nil {
		t.Fatalf("post-compound error = %v", err)
	}

	if pre.FinalBalance() <= post.FinalBalance() {
		t.Errorf("pre-compound %s should exceed post-compound %s", pre.FinalBalance(), post.FinalBalance())
	}
	if pre.Totals.TotalContributions != post.Totals.TotalContributions {
		t.Errorf("contributions differ: %s vs %s", pre.Totals.TotalContributions, post.Totals.TotalContributions)
	}
	if pre.Timing != projection.PreCompound || post.Timing != projection.PostCompound {
		t.Errorf("schedules report timing %v and %v", pre.Timing, post.Timing)
	}
}

func TestAccumulationContributionConversion(t *testing.T) {
	schedule, err := SimulateAccumulation(projection.Parameters{
		Compounding:           projection.Monthly,
		ContributionAmount:    120000,
		ContributionFrequency: projection.AnnuallyContribution,
		HorizonYears:          2,
	})
	if err != nil {
		t.Fatalf("SimulateAccumulation() error = %v", err)
	}
	if schedule.Contribution != 10000 {
		t.Errorf("per-period contribution = %s, expected 100.00", schedule.Contribution)
	}
	if schedule.FinalBalance() != 240000 {
		t.Errorf("final balance = %s, expected 2400.00", schedule.FinalBalance())
	}
}

func TestAccumulationInvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		params projection.Parameters
	}{
		{"No horizon", projection.Parameters{Principal: 1000, AnnualRatePercent: 5, Compounding: projection.Monthly}},
		{"Negative principal", projection.Parameters{Principal: -1, Compounding: projection.Monthly, HorizonYears: 1}},
		{"Negative rate", projection.Parameters{AnnualRatePercent: -2, Compounding: projection.Monthly, HorizonYears: 1}},
		{"Horizon shorter than a period", projection.Parameters{Compounding: projection.Annually, HorizonYears: 0.2}},
		{"Unknown compounding", projection.Parameters{Compounding: projection.CompoundingFrequency(3), HorizonYears: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SimulateAccumulation(tt.params); !errors.Is(err, projection.ErrInvalidParameter) {
				t.Errorf("SimulateAccumulation() error = %v, expected ErrInvalidParameter", err)
			}
		})
	}
}

func TestSimulateDrawdownDepletes(t *testing.T) {
	result, err := NewProjector(zap.NewNop()).SimulateDrawdown(projection.Parameters{
		Principal:           1200000,
		Compounding:         projection.Monthly,
		HorizonYears:        2,
		WithdrawalAmount:    100000,
		WithdrawalFrequency: projection.MonthlyContribution,
	})
	if err != nil {
		t.Fatalf("SimulateDrawdown() error = %v", err)
	}

	if !result.Depleted() || *result.DepletedAtPeriod != 12 {
		t.Fatalf("DepletedAtPeriod = %v, expected 12", result.DepletedAtPeriod)
	}
	if len(result.Periods) != 12 {
		t.Errorf("schedule should stop at depletion, got %d periods", len(result.Periods))
	}
	last := result.Periods[len(result.Periods)-1]
	if last.ClosingBalance != 0 || last.ContributionOrPayment != 100000 {
		t.Errorf("last period = %+v, expected the remaining 1000.00 withdrawn", last)
	}
	if result.Totals.TotalPaid != 1200000 {
		t.Errorf("total withdrawn = %s, expected 12000.00", result.Totals.TotalPaid)
	}
}

func TestSimulateDrawdownPartialFinalWithdrawal(t *testing.T) {
	result, err := SimulateDrawdown(projection.Parameters{
		Principal:           250000,
		Compounding:         projection.Monthly,
		HorizonYears:        1,
		WithdrawalAmount:    100000,
		WithdrawalFrequency: projection.MonthlyContribution,
	})
	if err != nil {
		t.Fatalf("SimulateDrawdown() error = %v", err)
	}
	if !result.Depleted() || *result.DepletedAtPeriod != 3 {
		t.Fatalf("DepletedAtPeriod = %v, expected 3", result.DepletedAtPeriod)
	}
	if last := result.Periods[2]; last.ContributionOrPayment != 50000 {
		t.Errorf("final withdrawal = %s, expected the remaining 500.00", last.ContributionOrPayment)
	}
}

func TestSimulateDrawdownSurvives(t *testing.T) {
	result, err := SimulateDrawdown(projection.Parameters{
		Principal:           10000000,
		AnnualRatePercent:   6,
		Compounding:         projection.Monthly,
		HorizonYears:        5,
		WithdrawalAmount:    10000,
		WithdrawalFrequency: projection.MonthlyContribution,
	})
	if err != nil {
		t.Fatalf("SimulateDrawdown() error = %v", err)
	}
	if result.Depleted() {
		t.Fatalf("balance should survive, depleted at %d", *result.DepletedAtPeriod)
	}
	if len(result.Periods) != 60 {
		t.Errorf("expected 60 periods, got %d", len(result.Periods))
	}

	for _, p := range result.Periods {
		if p.ClosingBalance != p.OpeningBalance-p.ContributionOrPayment+p.InterestAccrued {
			t.Fatalf("period %d does not balance: %+v", p.PeriodIndex, p)
		}
	}
	if result.FinalBalance() <= 10000000 {
		t.Errorf("growth should outpace a $100 withdrawal, final balance %s", result.FinalBalance())
	}
}

func TestSimulateDrawdownInflation(t *testing.T) {
	result, err := SimulateDrawdown(projection.Parameters{
		Principal:            100000000,
		Compounding:          projection.Monthly,
		HorizonYears:         3,
		WithdrawalAmount:     100000,
		WithdrawalFrequency:  projection.MonthlyContribution,
		InflationRatePercent: 10,
	})
	if err != nil {
		t.Fatalf("SimulateDrawdown() error = %v", err)
	}

	expected := map[int]money.Cents{
		1:  100000,
		12: 100000,
		13: 110000,
		24: 110000,
		25: 121000,
		36: 121000,
	}
	for period, amount := range expected {
		if got := result.Periods[period-1].ContributionOrPayment; got != amount {
			t.Errorf("withdrawal in period %d = %s, expected %s", period, got, amount)
		}
	}
	if result.InitialWithdrawal != 100000 || result.FinalWithdrawal != 121000 {
		t.Errorf("withdrawals = %s..%s, expected 1000.00..1210.00", result.InitialWithdrawal, result.FinalWithdrawal)
	}
}

func TestSimulateDrawdownInvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		params projection.Parameters
	}{
		{"Withdrawal without frequency", projection.Parameters{Principal: 1000, Compounding: projection.Monthly, HorizonYears: 1, WithdrawalAmount: 100}},
		{"No horizon", projection.Parameters{Principal: 1000, Compounding: projection.Monthly, WithdrawalAmount: 100, WithdrawalFrequency: projection.MonthlyContribution}},
		{"Negative withdrawal", projection.Parameters{Principal: 1000, Compounding: projection.Monthly, HorizonYears: 1, WithdrawalAmount: -100, WithdrawalFrequency: projection.MonthlyContribution}},
		{"Negative inflation", projection.Parameters{Principal: 1000, Compounding: projection.Monthly, HorizonYears: 1, InflationRatePercent: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SimulateDrawdown(tt.params); !errors.Is(err, projection.ErrInvalidParameter) {
				t.Errorf("SimulateDrawdown() error = %v, expected ErrInvalidParameter", err)
			}
		})
	}
}

func TestAccumulationInvariantsSweep(t *testing.T) {
	principals := []money.Cents{0, 100000, 123456789}
	rates := []float64{0, 0.5, 4, 7, 15}
	compoundings := []projection.CompoundingFrequency{projection.Annually, projection.Quarterly, projection.Monthly}
	contributions := []money.Cents{0, 10000}
	timings := []projection.ContributionTiming{projection.PreCompound, projection.PostCompound}
	horizons := []float64{1, 10, 40}

	for _, principal := range principals {
		for _, rate := range rates {
			for _, compounding := range compoundings {
				for _, contribution := range contributions {
					for _, timing := range timings {
						for _, years := range horizons {
							params := projection.Parameters{
								Principal:             principal,
								AnnualRatePercent:     rate,
								Compounding:           compounding,
								ContributionAmount:    contribution,
								ContributionFrequency: projection.MonthlyContribution,
								ContributionTiming:    timing,
								HorizonYears:          years,
							}
							schedule, err := SimulateAccumulation(params)
							if err != nil {
								t.Fatalf("SimulateAccumulation(%+v) error = %v", params, err)
							}
							checkAccumulated(t, params, schedule)
						}
					}
				}
			}
		}
	}
}

// checkAccumulated asserts the cent-exact invariants of an accumulation.
func checkAccumulated(t *testing.T, params projection.Parameters, schedule Schedule) {
	t.Helper()
	if len(schedule.Periods) != params.PeriodCount() {
		t.Fatalf("%+v: %d periods, expected %d", params, len(schedule.Periods), params.PeriodCount())
	}
	previous := params.Principal
	for _, p := range schedule.Periods {
		if p.OpeningBalance != previous {
			t.Fatalf("%+v: period %d opens at %s, previous closed at %s", params, p.PeriodIndex, p.OpeningBalance, previous)
		}
		if p.ClosingBalance != p.OpeningBalance+p.InterestAccrued+p.ContributionOrPayment {
			t.Fatalf("%+v: period %d does not balance: %+v", params, p.PeriodIndex, p)
		}
		if p.ClosingBalance < p.OpeningBalance || p.InterestAccrued < 0 {
			t.Fatalf("%+v: period %d balance fell from %s to %s", params, p.PeriodIndex, p.OpeningBalance, p.ClosingBalance)
		}
		previous = p.ClosingBalance
	}

	final := schedule.FinalBalance()
	if final != params.Principal+schedule.Totals.TotalContributions+schedule.Totals.TotalInterest {
		t.Errorf("%+v: final %s != principal + contributions %s + interest %s",
			params, final, schedule.Totals.TotalContributions, schedule.Totals.TotalInterest)
	}
	if params.AnnualRatePercent == 0 {
		expected := params.Principal + schedule.Contribution*money.Cents(len(schedule.Periods))
		if final != expected || schedule.Totals.TotalInterest != 0 {
			t.Errorf("%+v: zero rate final = %s, expected %s", params, final, expected)
		}
	}
}

func TestAccumulationOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		params projection.Parameters
	}{
		{
			name: "Doubling every year for 60 years",
			params: projection.Parameters{
				Principal:         100000000,
				AnnualRatePercent: 100,
				Compounding:       projection.Annually,
				HorizonYears:      60,
			},
		},
		{
			name: "Extreme rate",
			params: projection.Parameters{
				Principal:         100,
				AnnualRatePercent: 1e9,
				Compounding:       projection.Monthly,
				HorizonYears:      1,
			},
		},
		{
			name: "Contributions at the limit",
			params: projection.Parameters{
				Principal:             money.MaxAmount,
				Compounding:           projection.Monthly,
				ContributionAmount:    100,
				ContributionFrequency: projection.MonthlyContribution,
				HorizonYears:          1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, err := SimulateAccumulation(tt.params)
			if !errors.Is(err, projection.ErrInvalidParameter) || !errors.Is(err, money.ErrOutOfRange) {
				t.Fatalf("SimulateAccumulation() error = %v, expected an out of range ErrInvalidParameter", err)
			}
			if len(schedule.Periods) != 0 {
				t.Errorf("SimulateAccumulation() returned %d periods alongside the error", len(schedule.Periods))
			}
		})
	}
}

func TestDrawdownOutOfRange(t *testing.T) {
	_, err := SimulateDrawdown(projection.Parameters{
		Principal:           100000000,
		AnnualRatePercent:   100,
		Compounding:         projection.Annually,
		HorizonYears:        60,
		WithdrawalAmount:    100,
		WithdrawalFrequency: projection.AnnuallyContribution,
	})
	if !errors.Is(err, projection.ErrInvalidParameter) || !errors.Is(err, money.ErrOutOfRange) {
		t.Fatalf("SimulateDrawdown() error = %v, expected an out of range ErrInvalidParameter", err)
	}
}

func TestAccumulationNearLimitSucceeds(t *testing.T) {
	// $1,000,000 doubling for 20 years ends just above $1 trillion; 19 years stays under.
	schedule, err := SimulateAccumulation(projection.Parameters{
		Principal:         100000000,
		AnnualRatePercent: 100,
		Compounding:       projection.Annually,
		HorizonYears:      19,
	})
	if err != nil {
		t.Fatalf("SimulateAccumulation() error = %v", err)
	}
	if final := schedule.FinalBalance(); final != 100000000<<19 {
		t.Errorf("final balance = %s, expected %s", final, money.Cents(100000000<<19))
	}
}
