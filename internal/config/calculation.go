package config

import "github.com/iwvelando/finance-calculators/pkg/validation"

// Calculator kinds.
const (
	KindMortgage         = "mortgage"
	KindLoan             = "loan"
	KindCreditCard       = "credit-card"
	KindCompoundInterest = "compound-interest"
	KindInvestment       = "investment"
	KindRetirement       = "retirement"
	KindAlcohol          = "alcohol"
)

// Kinds lists every supported calculator kind.
func Kinds() []string {
	return []string{
		KindMortgage,
		KindLoan,
		KindCreditCard,
		KindCompoundInterest,
		KindInvestment,
		KindRetirement,
		KindAlcohol,
	}
}

// KnownKind reports whether kind is a supported calculator kind.
func KnownKind(kind string) bool {
	for _, k := range Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// Calculation is one calculator invocation. Only the section matching Kind
// is read.
type Calculation struct {
	Name             string            `yaml:"name" json:"name"`
	Kind             string            `yaml:"kind" json:"kind"`
	Mortgage         *Mortgage         `yaml:"mortgage,omitempty" json:"mortgage,omitempty"`
	Loan             *Loan             `yaml:"loan,omitempty" json:"loan,omitempty"`
	CreditCard       *CreditCard       `yaml:"creditCard,omitempty" json:"creditCard,omitempty"`
	CompoundInterest *CompoundInterest `yaml:"compoundInterest,omitempty" json:"compoundInterest,omitempty"`
	Investment       *Investment       `yaml:"investment,omitempty" json:"investment,omitempty"`
	Retirement       *Retirement       `yaml:"retirement,omitempty" json:"retirement,omitempty"`
	Alcohol          *Alcohol          `yaml:"alcohol,omitempty" json:"alcohol,omitempty"`
}

func (c Calculation) info() validation.CalculationInfo {
	info := validation.CalculationInfo{
		Name:      c.Name,
		Kind:      c.Kind,
		KnownKind: KnownKind(c.Kind),
	}

	switch c.Kind {
	case KindMortgage:
		if c.Mortgage != nil {
			info.RatesPercent = []float64{c.Mortgage.AnnualRate}
			info.TermYears = c.Mortgage.TermYears
		}
	case KindLoan:
		if c.Loan != nil {
			info.RatesPercent = []float64{c.Loan.AnnualRate}
			info.TermYears = c.Loan.TermYears
		}
	case KindCreditCard:
		if c.CreditCard != nil {
			info.RatesPercent = []float64{c.CreditCard.AnnualRate}
			info.TermYears = float64(c.CreditCard.TargetMonths) / 12
		}
	case KindCompoundInterest:
		if c.CompoundInterest != nil {
			info.RatesPercent = []float64{c.CompoundInterest.AnnualRate}
		}
	case KindInvestment:
		if c.Investment != nil {
			info.RatesPercent = []float64{c.Investment.AnnualRate}
		}
	case KindRetirement:
		if r := c.Retirement; r != nil {
			info.RatesPercent = []float64{r.PreRetirementRate, r.PostRetirementRate}
			info.Ages = []float64{r.CurrentAge, r.RetirementAge, r.LifeExpectancy}
		}
	}
	return info
}
