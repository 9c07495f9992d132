package config

import (
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
	"github.com/iwvelando/finance-calculators/pkg/money"
	"github.com/iwvelando/finance-calculators/pkg/projection"
)

// mortgageInsuranceLTV is the loan-to-value ratio at which mortgage insurance
// is dropped.
const mortgageInsuranceLTV = 80

// Mortgage describes a home purchase financed with a mortgage. Amounts are in
// currency units and rates in percent.
type Mortgage struct {
	HomePrice          float64 `yaml:"homePrice" json:"homePrice"`
	DownPayment        float64 `yaml:"downPayment,omitempty" json:"downPayment,omitempty"`
	DownPaymentPercent float64 `yaml:"downPaymentPercent,omitempty" json:"downPaymentPercent,omitempty"`
	AnnualRate         float64 `yaml:"annualRate" json:"annualRate"`
	TermYears          float64 `yaml:"termYears" json:"termYears"`
	PropertyTax        float64 `yaml:"propertyTax,omitempty" json:"propertyTax,omitempty"`     // annual
	HomeInsurance      float64 `yaml:"homeInsurance,omitempty" json:"homeInsurance,omitempty"` // annual
	HOA                float64 `yaml:"hoa,omitempty" json:"hoa,omitempty"`                     // monthly
	// MortgageInsurance is charged monthly while the balance is above 80%
	// of the home price.
	MortgageInsurance float64 `yaml:"mortgageInsurance,omitempty" json:"mortgageInsurance,omitempty"`
	ExtraPayment      float64 `yaml:"extraPayment,omitempty" json:"extraPayment,omitempty"` // monthly
}

// MortgageTerms is a Mortgage converted to engine units.
type MortgageTerms struct {
	Parameters  projection.Parameters
	HomePrice   money.Cents
	DownPayment money.Cents
	// MonthlyEscrow is property tax, insurance and HOA dues per month.
	MonthlyEscrow     money.Cents
	MortgageInsurance money.Cents
	// MortgageInsuranceCutoff is the balance at which insurance stops.
	MortgageInsuranceCutoff money.Cents
}

// Terms validates the mortgage and converts it to engine units.
func (m Mortgage) Terms() (MortgageTerms, error) {
	var terms MortgageTerms
	var down, tax, insurance, hoa, extra money.Cents
	err := amounts{
		{"home price", m.HomePrice, &terms.HomePrice},
		{"down payment", m.DownPayment, &down},
		{"property tax", m.PropertyTax, &tax},
		{"home insurance", m.HomeInsurance, &insurance},
		{"HOA dues", m.HOA, &hoa},
		{"mortgage insurance", m.MortgageInsurance, &terms.MortgageInsurance},
		{"extra payment", m.ExtraPayment, &extra},
	}.convert()
	if err != nil {
		return MortgageTerms{}, err
	}

	if terms.HomePrice <= 0 {
		return MortgageTerms{}, projection.InvalidParameter("home price must be positive")
	}
	if m.DownPayment != 0 && m.DownPaymentPercent != 0 {
		return MortgageTerms{}, projection.InvalidParameter("down payment and down payment percent are mutually exclusive")
	}
	if m.DownPaymentPercent < 0 || m.DownPaymentPercent >= 100 || !mathutil.IsFinite(m.DownPaymentPercent) {
		return MortgageTerms{}, projection.InvalidParameter("down payment percent must be in [0, 100), got %v", m.DownPaymentPercent)
	}
	if m.DownPaymentPercent > 0 {
		down = terms.HomePrice.MulRate(mathutil.PercentToDecimal(m.DownPaymentPercent), money.RoundNearest)
	}
	if down >= terms.HomePrice {
		return MortgageTerms{}, projection.InvalidParameter("down payment %s covers the home price %s", down, terms.HomePrice)
	}
	if m.TermYears <= 0 {
		return MortgageTerms{}, projection.InvalidParameter("mortgage term must be positive, got %v years", m.TermYears)
	}

	terms.DownPayment = down
	terms.MonthlyEscrow = (tax + insurance).Scale(1, 12) + hoa
	terms.MortgageInsuranceCutoff = terms.HomePrice.Scale(mortgageInsuranceLTV, 100)
	terms.Parameters = projection.Parameters{
		Principal:             terms.HomePrice - down,
		AnnualRatePercent:     m.AnnualRate,
		Compounding:           projection.Monthly,
		HorizonYears:          m.TermYears,
		ContributionAmount:    extra,
		ContributionFrequency: projection.MonthlyContribution,
	}
	return terms, terms.Parameters.Validate()
}

// Loan describes an installment loan. Exactly one of TermYears and Payment is
// set; the other is solved.
type Loan struct {
	Amount     float64 `yaml:"amount" json:"amount"`
	AnnualRate float64 `yaml:"annualRate" json:"annualRate"`
	TermYears  float64 `yaml:"termYears,omitempty" json:"termYears,omitempty"`
	Payment    float64 `yaml:"payment,omitempty" json:"payment,omitempty"`
	// Compounding defaults to monthly.
	Compounding    string  `yaml:"compounding,omitempty" json:"compounding,omitempty"`
	ExtraPayment   float64 `yaml:"extraPayment,omitempty" json:"extraPayment,omitempty"`
	ExtraFrequency string  `yaml:"extraFrequency,omitempty" json:"extraFrequency,omitempty"`
}

// Parameters validates the loan and converts it to simulation parameters.
func (l Loan) Parameters() (projection.Parameters, error) {
	var principal, payment, extra money.Cents
	err := amounts{
		{"loan amount", l.Amount, &principal},
		{"payment", l.Payment, &payment},
		{"extra payment", l.ExtraPayment, &extra},
	}.convert()
	if err != nil {
		return projection.Parameters{}, err
	}

	compounding, err := projection.ParseCompounding(l.Compounding)
	if err != nil {
		return projection.Parameters{}, err
	}
	frequency, err := projection.ParseContribution(l.ExtraFrequency)
	if err != nil {
		return projection.Parameters{}, err
	}
	if extra > 0 && frequency == projection.None {
		frequency = projection.MonthlyContribution
	}

	params := projection.Parameters{
		Principal:             principal,
		AnnualRatePercent:     l.AnnualRate,
		Compounding:           compounding,
		HorizonYears:          l.TermYears,
		ContributionAmount:    extra,
		ContributionFrequency: frequency,
	}
	if payment > 0 {
		params.FixedPayment = &payment
	}
	return params, params.Validate()
}

// CreditCard describes a card balance to pay off. Exactly one of
// MonthlyPayment and TargetMonths is set.
type CreditCard struct {
	Balance        float64 `yaml:"balance" json:"balance"`
	AnnualRate     float64 `yaml:"annualRate" json:"annualRate"`
	MonthlyPayment float64 `yaml:"monthlyPayment,omitempty" json:"monthlyPayment,omitempty"`
	TargetMonths   int     `yaml:"targetMonths,omitempty" json:"targetMonths,omitempty"`
}

// CreditCardTerms is a CreditCard converted to engine units.
type CreditCardTerms struct {
	Balance      money.Cents
	AnnualRate   float64
	Payment      money.Cents
	TargetMonths int
}

// Terms validates the card and converts it to engine units.
func (c CreditCard) Terms() (CreditCardTerms, error) {
	terms := CreditCardTerms{AnnualRate: c.AnnualRate, TargetMonths: c.TargetMonths}
	err := amounts{
		{"balance", c.Balance, &terms.Balance},
		{"monthly payment", c.MonthlyPayment, &terms.Payment},
	}.convert()
	if err != nil {
		return CreditCardTerms{}, err
	}

	if terms.Balance <= 0 {
		return CreditCardTerms{}, projection.InvalidParameter("balance must be positive")
	}
	if c.TargetMonths < 0 {
		return CreditCardTerms{}, projection.InvalidParameter("target months must not be negative, got %d", c.TargetMonths)
	}
	if (terms.Payment > 0) == (c.TargetMonths > 0) {
		return CreditCardTerms{}, projection.InvalidParameter("exactly one of monthly payment and target months is required")
	}
	return terms, nil
}
