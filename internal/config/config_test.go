package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/finance-calculators/pkg/bac"
	"github.com/iwvelando/finance-calculators/pkg/money"
	"github.com/iwvelando/finance-calculators/pkg/projection"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Example calculations",
			configPath: "testdata/calculations.yaml",
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration("testdata/calculations.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Logging.Level != "info" {
		t.Errorf("Expected logging level info, got %q", config.Logging.Level)
	}
	if config.Output.Format != "pretty" {
		t.Errorf("Expected output format pretty, got %q", config.Output.Format)
	}

	expected := []struct{ name, kind string }{
		{"starter home", KindMortgage},
		{"car", KindLoan},
		{"store card", KindCreditCard},
		{"savings", KindCompoundInterest},
		{"brokerage", KindInvestment},
		{"retirement-6", KindRetirement},
		{"night out", KindAlcohol},
	}
	if len(config.Calculations) != len(expected) {
		t.Fatalf("Expected %d calculations, got %d", len(expected), len(config.Calculations))
	}
	for i, e := range expected {
		calc := config.Calculations[i]
		if calc.Name != e.name || calc.Kind != e.kind {
			t.Errorf("Calculation %d = (%q, %q), expected (%q, %q)", i, calc.Name, calc.Kind, e.name, e.kind)
		}
	}

	mortgage := config.Calculations[0].Mortgage
	if mortgage == nil {
		t.Fatal("Expected mortgage section to be decoded")
	}
	if mortgage.HomePrice != 400000 || mortgage.DownPaymentPercent != 20 || mortgage.HOA != 50 {
		t.Errorf("Unexpected mortgage section: %+v", *mortgage)
	}

	savings := config.Calculations[3].CompoundInterest
	if savings == nil || savings.Compounding != "daily" || savings.Timing != "post" {
		t.Errorf("Unexpected compound interest section: %+v", savings)
	}

	alcohol := config.Calculations[6].Alcohol
	if alcohol == nil || len(alcohol.Drinks) != 2 {
		t.Fatalf("Expected two drinks, got %+v", alcohol)
	}
	if alcohol.Drinks[1].ABVPercent != 12 || alcohol.Drinks[1].HoursAgo != 1 {
		t.Errorf("Unexpected second drink: %+v", alcohol.Drinks[1])
	}

	if warnings := config.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("Expected no warnings for the example file, got %v", warnings)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	body := `
calculations:
  - name: card
    kind: credit-card
    creditCard:
      balance: 2500
      annualRate: 45
      targetMonths: 12
  - name: card
    kind: lottery
`
	config, err := LoadConfigurationFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if got := config.Calculations[0].CreditCard.TargetMonths; got != 12 {
		t.Errorf("Expected target months 12, got %d", got)
	}

	warnings := config.ValidateConfiguration()
	if len(warnings) != 3 {
		t.Fatalf("Expected 3 warnings, got %d: %v", len(warnings), warnings)
	}
	for i, fragment := range []string{"unusually high", "more than once", "unknown kind"} {
		if !strings.Contains(warnings[i], fragment) {
			t.Errorf("Warning %d = %q, expected it to mention %q", i, warnings[i], fragment)
		}
	}
}

func TestLoadConfigurationRejectsEmpty(t *testing.T) {
	inputs := map[string]string{
		"no calculations": "logging:\n  level: debug\n",
		"malformed yaml":  "calculations: [\n",
	}
	for name, body := range inputs {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfigurationFromReader(strings.NewReader(body)); err == nil {
				t.Errorf("Expected an error")
			}
		})
	}
}

func TestKnownKind(t *testing.T) {
	for _, kind := range Kinds() {
		if !KnownKind(kind) {
			t.Errorf("KnownKind(%q) = false", kind)
		}
	}
	if KnownKind("lottery") {
		t.Error("KnownKind(lottery) = true")
	}
}

func TestToCents(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		expected  money.Cents
		wantError bool
	}{
		{"whole amount", 1200, 120000, false},
		{"fractional amount", 19.995, 2000, false},
		{"zero", 0, 0, false},
		{"negative", -5, 0, true},
		{"too large", 1e18, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toCents("amount", tt.amount)
			if tt.wantError {
				if !errors.Is(err, projection.ErrInvalidParameter) {
					t.Errorf("Expected ErrInvalidParameter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("toCents(%v) = %d, expected %d", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestMortgageTerms(t *testing.T) {
	m := Mortgage{
		HomePrice:          400000,
		DownPaymentPercent: 20,
		AnnualRate:         6.5,
		TermYears:          30,
		PropertyTax:        4800,
		HomeInsurance:      1200,
		HOA:                50,
		ExtraPayment:       100,
	}
	terms, err := m.Terms()
	if err != nil {
		t.Fatalf("Terms() error = %v", err)
	}

	if terms.DownPayment != 8000000 {
		t.Errorf("Expected down payment 8000000 cents, got %d", terms.DownPayment)
	}
	if terms.Parameters.Principal != 32000000 {
		t.Errorf("Expected principal 32000000 cents, got %d", terms.Parameters.Principal)
	}
	if terms.MonthlyEscrow != 55000 {
		t.Errorf("Expected monthly escrow 55000 cents, got %d", terms.MonthlyEscrow)
	}
	if terms.MortgageInsuranceCutoff != 32000000 {
		t.Errorf("Expected insurance cutoff 32000000 cents, got %d", terms.MortgageInsuranceCutoff)
	}
	if terms.Parameters.ContributionAmount != 10000 || terms.Parameters.HorizonYears != 30 {
		t.Errorf("Unexpected parameters: %+v", terms.Parameters)
	}
}

func TestMortgageTermsInvalid(t *testing.T) {
	valid := Mortgage{HomePrice: 300000, DownPayment: 30000, AnnualRate: 6, TermYears: 30}

	tests := []struct {
		name   string
		mutate func(*Mortgage)
	}{
		{"no home price", func(m *Mortgage) { m.HomePrice = 0 }},
		{"both down payments", func(m *Mortgage) { m.DownPaymentPercent = 10 }},
		{"down payment covers price", func(m *Mortgage) { m.DownPayment = 300000 }},
		{"full percent down", func(m *Mortgage) { m.DownPayment = 0; m.DownPaymentPercent = 100 }},
		{"no term", func(m *Mortgage) { m.TermYears = 0 }},
		{"negative tax", func(m *Mortgage) { m.PropertyTax = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.mutate(&m)
			if _, err := m.Terms(); !errors.Is(err, projection.ErrInvalidParameter) {
				t.Errorf("Expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestLoanParameters(t *testing.T) {
	params, err := Loan{Amount: 25000, AnnualRate: 7.2, TermYears: 5, ExtraPayment: 50}.Parameters()
	if err != nil {
		t.Fatalf("Parameters() error = %v", err)
	}
	if params.Principal != 2500000 || params.FixedPayment != nil {
		t.Errorf("Unexpected parameters: %+v", params)
	}
	if params.ContributionFrequency != projection.MonthlyContribution {
		t.Errorf("Extra payments should default to monthly, got %v", params.ContributionFrequency)
	}

	params, err = Loan{Amount: 5000, AnnualRate: 10, Payment: 250, Compounding: "quarterly"}.Parameters()
	if err != nil {
		t.Fatalf("Parameters() error = %v", err)
	}
	if params.FixedPayment == nil || *params.FixedPayment != 25000 {
		t.Errorf("Expected a fixed payment of 25000 cents, got %v", params.FixedPayment)
	}
	if params.Compounding != projection.Quarterly {
		t.Errorf("Expected quarterly compounding, got %v", params.Compounding)
	}

	if _, err := (Loan{Amount: 5000, AnnualRate: 10, Compounding: "hourly"}).Parameters(); !errors.Is(err, projection.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for unknown compounding, got %v", err)
	}
}

func TestCreditCardTerms(t *testing.T) {
	terms, err := CreditCard{Balance: 5000, AnnualRate: 18.9, MonthlyPayment: 200}.Terms()
	if err != nil {
		t.Fatalf("Terms() error = %v", err)
	}
	if terms.Balance != 500000 || terms.Payment != 20000 || terms.TargetMonths != 0 {
		t.Errorf("Unexpected terms: %+v", terms)
	}

	invalid := []CreditCard{
		{Balance: 5000, AnnualRate: 18.9},
		{Balance: 5000, AnnualRate: 18.9, MonthlyPayment: 200, TargetMonths: 24},
		{Balance: 0, AnnualRate: 18.9, MonthlyPayment: 200},
		{Balance: 5000, AnnualRate: 18.9, TargetMonths: -3},
	}
	for i, card := range invalid {
		if _, err := card.Terms(); !errors.Is(err, projection.ErrInvalidParameter) {
			t.Errorf("Card %d: expected ErrInvalidParameter, got %v", i, err)
		}
	}
}

func TestCompoundInterestParameters(t *testing.T) {
	params, err := CompoundInterest{
		Principal:    10000,
		AnnualRate:   5,
		Compounding:  "daily",
		Contribution: 100,
		Timing:       "post",
		Years:        10,
	}.Parameters()
	if err != nil {
		t.Fatalf("Parameters() error = %v", err)
	}
	if params.Compounding != projection.Daily {
		t.Errorf("Expected daily compounding, got %v", params.Compounding)
	}
	if params.ContributionFrequency != projection.MonthlyContribution {
		t.Errorf("Contributions should default to monthly, got %v", params.ContributionFrequency)
	}
	if params.ContributionTiming != projection.PostCompound {
		t.Errorf("Expected post-compound timing, got %v", params.ContributionTiming)
	}

	if _, err := (CompoundInterest{Principal: 100, AnnualRate: 5, Years: 1, Timing: "sometimes"}).Parameters(); err == nil {
		t.Error("Expected an error for unknown timing")
	}
}

func TestInvestmentParameters(t *testing.T) {
	params, target, err := Investment{
		InitialInvestment:   5000,
		AnnualRate:          7,
		MonthlyContribution: 500,
		Years:               20,
		Target:              300000,
	}.Parameters()
	if err != nil {
		t.Fatalf("Parameters() error = %v", err)
	}
	if target != 30000000 {
		t.Errorf("Expected target 30000000 cents, got %d", target)
	}
	if params.ContributionTiming != projection.PreCompound || params.Compounding != projection.Monthly {
		t.Errorf("Unexpected parameters: %+v", params)
	}
}

func TestRetirementPlan(t *testing.T) {
	plan, err := Retirement{
		CurrentAge:          35,
		RetirementAge:       65,
		LifeExpectancy:      90,
		CurrentSavings:      50000,
		MonthlyContribution: 1000,
		PreRetirementRate:   7,
		PostRetirementRate:  4,
		AnnualIncome:        40000,
		InflationRate:       2.5,
	}.Plan()
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if plan.CurrentSavings != 5000000 || plan.ContributionAmount != 100000 || plan.AnnualWithdrawal != 4000000 {
		t.Errorf("Unexpected amounts: %+v", plan)
	}
	if plan.ContributionFrequency != projection.MonthlyContribution {
		t.Errorf("Expected monthly contributions, got %v", plan.ContributionFrequency)
	}

	if _, err := (Retirement{CurrentSavings: -1}).Plan(); !errors.Is(err, projection.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter for negative savings, got %v", err)
	}
}

func TestAlcoholSession(t *testing.T) {
	now := time.Date(2025, 6, 14, 23, 0, 0, 0, time.UTC)
	a := Alcohol{
		WeightKg: 80,
		Sex:      "female",
		Drinks: []Drink{
			{VolumeMl: 355, ABVPercent: 5, HoursAgo: 2},
			{VolumeMl: 150, ABVPercent: 12, HoursAgo: 0.5},
		},
	}
	session, err := a.Session(now)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if session.Sex != bac.Female {
		t.Errorf("Expected female, got %v", session.Sex)
	}
	if want := now.Add(-2 * time.Hour); !session.Drinks[0].ConsumedAt.Equal(want) {
		t.Errorf("First drink at %v, expected %v", session.Drinks[0].ConsumedAt, want)
	}
	if want := now.Add(-30 * time.Minute); !session.Drinks[1].ConsumedAt.Equal(want) {
		t.Errorf("Second drink at %v, expected %v", session.Drinks[1].ConsumedAt, want)
	}

	invalid := []Alcohol{
		{WeightKg: 80, Sex: "unknown", Drinks: a.Drinks},
		{WeightKg: 80, Sex: "male"},
		{WeightKg: 80, Sex: "male", Drinks: []Drink{{VolumeMl: 355, ABVPercent: 5, HoursAgo: -1}}},
	}
	for i, in := range invalid {
		if _, err := in.Session(now); !errors.Is(err, projection.ErrInvalidParameter) {
			t.Errorf("Input %d: expected ErrInvalidParameter, got %v", i, err)
		}
	}
}
