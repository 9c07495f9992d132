package config

import (
	"time"

	"github.com/iwvelando/finance-calculators/pkg/bac"
	"github.com/iwvelando/finance-calculators/pkg/finance"
	"github.com/iwvelando/finance-calculators/pkg/money"
	"github.com/iwvelando/finance-calculators/pkg/projection"
)

// CompoundInterest describes a balance growing with optional deposits.
type CompoundInterest struct {
	Principal  float64 `yaml:"principal" json:"principal"`
	AnnualRate float64 `yaml:"annualRate" json:"annualRate"`
	// Compounding defaults to monthly.
	Compounding           string  `yaml:"compounding,omitempty" json:"compounding,omitempty"`
	Contribution          float64 `yaml:"contribution,omitempty" json:"contribution,omitempty"`
	ContributionFrequency string  `yaml:"contributionFrequency,omitempty" json:"contributionFrequency,omitempty"`
	// Timing is "pre" (default) or "post" compounding.
	Timing string  `yaml:"timing,omitempty" json:"timing,omitempty"`
	Years  float64 `yaml:"years" json:"years"`
}

// Parameters validates the input and converts it to simulation parameters.
func (c CompoundInterest) Parameters() (projection.Parameters, error) {
	var principal, contribution money.Cents
	err := amounts{
		{"principal", c.Principal, &principal},
		{"contribution", c.Contribution, &contribution},
	}.convert()
	if err != nil {
		return projection.Parameters{}, err
	}

	compounding, err := projection.ParseCompounding(c.Compounding)
	if err != nil {
		return projection.Parameters{}, err
	}
	frequency, err := projection.ParseContribution(c.ContributionFrequency)
	if err != nil {
		return projection.Parameters{}, err
	}
	if contribution > 0 && frequency == projection.None {
		frequency = projection.MonthlyContribution
	}
	timing, err := projection.ParseTiming(c.Timing)
	if err != nil {
		return projection.Parameters{}, err
	}

	params := projection.Parameters{
		Principal:             principal,
		AnnualRatePercent:     c.AnnualRate,
		Compounding:           compounding,
		ContributionAmount:    contribution,
		ContributionFrequency: frequency,
		ContributionTiming:    timing,
		HorizonYears:          c.Years,
	}
	return params, params.Validate()
}

// Investment describes monthly investing toward an optional target.
type Investment struct {
	InitialInvestment   float64 `yaml:"initialInvestment" json:"initialInvestment"`
	AnnualRate          float64 `yaml:"annualRate" json:"annualRate"`
	MonthlyContribution float64 `yaml:"monthlyContribution,omitempty" json:"monthlyContribution,omitempty"`
	Years               float64 `yaml:"years" json:"years"`
	Target              float64 `yaml:"target,omitempty" json:"target,omitempty"`
}

// Parameters validates the input and converts it to simulation parameters
// and the target balance, zero when none is set.
func (i Investment) Parameters() (projection.Parameters, money.Cents, error) {
	var initial, contribution, target money.Cents
	err := amounts{
		{"initial investment", i.InitialInvestment, &initial},
		{"monthly contribution", i.MonthlyContribution, &contribution},
		{"target", i.Target, &target},
	}.convert()
	if err != nil {
		return projection.Parameters{}, 0, err
	}

	params := projection.Parameters{
		Principal:             initial,
		AnnualRatePercent:     i.AnnualRate,
		Compounding:           projection.Monthly,
		ContributionAmount:    contribution,
		ContributionFrequency: projection.MonthlyContribution,
		ContributionTiming:    projection.PreCompound,
		HorizonYears:          i.Years,
	}
	return params, target, params.Validate()
}

// Retirement describes saving for and living off a retirement. AnnualIncome
// is in today's money.
type Retirement struct {
	CurrentAge          float64 `yaml:"currentAge" json:"currentAge"`
	RetirementAge       float64 `yaml:"retirementAge" json:"retirementAge"`
	LifeExpectancy      float64 `yaml:"lifeExpectancy" json:"lifeExpectancy"`
	CurrentSavings      float64 `yaml:"currentSavings,omitempty" json:"currentSavings,omitempty"`
	MonthlyContribution float64 `yaml:"monthlyContribution,omitempty" json:"monthlyContribution,omitempty"`
	PreRetirementRate   float64 `yaml:"preRetirementRate" json:"preRetirementRate"`
	PostRetirementRate  float64 `yaml:"postRetirementRate" json:"postRetirementRate"`
	AnnualIncome        float64 `yaml:"annualIncome" json:"annualIncome"`
	InflationRate       float64 `yaml:"inflationRate,omitempty" json:"inflationRate,omitempty"`
}

// Plan validates the input and converts it to a retirement plan.
func (r Retirement) Plan() (finance.RetirementPlan, error) {
	plan := finance.RetirementPlan{
		CurrentAge:                r.CurrentAge,
		RetirementAge:             r.RetirementAge,
		LifeExpectancy:            r.LifeExpectancy,
		ContributionFrequency:     projection.MonthlyContribution,
		PreRetirementRatePercent:  r.PreRetirementRate,
		PostRetirementRatePercent: r.PostRetirementRate,
		InflationRatePercent:      r.InflationRate,
	}
	err := amounts{
		{"current savings", r.CurrentSavings, &plan.CurrentSavings},
		{"monthly contribution", r.MonthlyContribution, &plan.ContributionAmount},
		{"annual income", r.AnnualIncome, &plan.AnnualWithdrawal},
	}.convert()
	return plan, err
}

// Alcohol describes a drinking session relative to the moment it is assessed.
type Alcohol struct {
	WeightKg float64 `yaml:"weightKg" json:"weightKg"`
	Sex      string  `yaml:"sex" json:"sex"`
	// EliminationRate is BAC eliminated per hour; zero uses the average.
	EliminationRate float64 `yaml:"eliminationRate,omitempty" json:"eliminationRate,omitempty"`
	Drinks          []Drink `yaml:"drinks" json:"drinks"`
}

// Drink is one serving, consumed HoursAgo before the assessment.
type Drink struct {
	VolumeMl   float64 `yaml:"volumeMl" json:"volumeMl"`
	ABVPercent float64 `yaml:"abvPercent" json:"abvPercent"`
	HoursAgo   float64 `yaml:"hoursAgo,omitempty" json:"hoursAgo,omitempty"`
}

// Session converts the input to a session anchored at now.
func (a Alcohol) Session(now time.Time) (bac.Session, error) {
	sex, err := bac.ParseSex(a.Sex)
	if err != nil {
		return bac.Session{}, err
	}
	if len(a.Drinks) == 0 {
		return bac.Session{}, projection.InvalidParameter("at least one drink is required")
	}

	session := bac.Session{
		WeightKg:        a.WeightKg,
		Sex:             sex,
		EliminationRate: a.EliminationRate,
	}
	for i, d := range a.Drinks {
		if d.HoursAgo < 0 {
			return bac.Session{}, projection.InvalidParameter("drink %d is in the future", i+1)
		}
		session.Drinks = append(session.Drinks, bac.Drink{
			VolumeMl:   d.VolumeMl,
			ABVPercent: d.ABVPercent,
			ConsumedAt: now.Add(-time.Duration(d.HoursAgo * float64(time.Hour))),
		})
	}
	return session, nil
}
