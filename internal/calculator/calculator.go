// Package calculator binds each configured calculator to the projection
// engine and collects the figures it reports.
package calculator

import (
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/finance-calculators/internal/config"
	"github.com/iwvelando/finance-calculators/pkg/bac"
	"github.com/iwvelando/finance-calculators/pkg/finance"
	"github.com/iwvelando/finance-calculators/pkg/loans"
	"github.com/iwvelando/finance-calculators/pkg/money"
	"github.com/iwvelando/finance-calculators/pkg/projection"
	"go.uber.org/zap"
)

// ErrUnknownKind is returned for a calculation whose kind has no calculator.
var ErrUnknownKind = errors.New("unknown calculator kind")

// Unit tells a renderer how to display a metric value.
type Unit string

// Metric units.
const (
	UnitCurrency Unit = "currency"
	UnitPercent  Unit = "percent"
	UnitPeriods  Unit = "periods"
	UnitMonths   Unit = "months"
	UnitYears    Unit = "years"
	UnitHours    Unit = "hours"
	UnitBAC      Unit = "bac"
)

// Metric is one headline figure of a result.
type Metric struct {
	Key   string  `json:"key" yaml:"key"`
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
	Unit  Unit    `json:"unit" yaml:"unit"`
}

// Result holds everything one calculation produced.
type Result struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
	// Summary is ordered for display.
	Summary  []Metric                   `json:"summary" yaml:"summary"`
	Schedule []projection.PeriodRecord  `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	Yearly   []projection.YearlySummary `json:"yearly,omitempty" yaml:"yearly,omitempty"`
	Curve    []bac.Point                `json:"curve,omitempty" yaml:"curve,omitempty"`
	Notes    []string                   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Value looks up a summary metric by key.
func (r Result) Value(key string) (float64, bool) {
	for _, m := range r.Summary {
		if m.Key == key {
			return m.Value, true
		}
	}
	return 0, false
}

func (r *Result) add(key, label string, value float64, unit Unit) {
	r.Summary = append(r.Summary, Metric{Key: key, Label: label, Value: value, Unit: unit})
}

func (r *Result) addMoney(key, label string, value money.Cents) {
	r.add(key, label, value.Float64(), UnitCurrency)
}

func (r *Result) note(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

func (r *Result) setSchedule(periods []projection.PeriodRecord, periodsPerYear int) error {
	yearly, err := projection.ToYearlySummaries(periods, periodsPerYear)
	if err != nil {
		return err
	}
	r.Schedule = periods
	r.Yearly = yearly
	return nil
}

// Calculator runs configured calculations.
type Calculator struct {
	logger    *zap.Logger
	amortizer *loans.Amortizer
	projector *finance.Projector
}

// NewCalculator creates a calculator with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{
		logger:    logger,
		amortizer: loans.NewAmortizer(logger),
		projector: finance.NewProjector(logger),
	}
}

// Run performs a single calculation. now anchors time-relative inputs such as
// drinks consumed some hours ago.
func (c *Calculator) Run(calc config.Calculation, now time.Time) (Result, error) {
	result := Result{Name: calc.Name, Kind: calc.Kind}

	var err error
	switch calc.Kind {
	case config.KindMortgage:
		if calc.Mortgage == nil {
			err = missingSection(calc.Kind)
			break
		}
		err = c.mortgage(*calc.Mortgage, &result)
	case config.KindLoan:
		if calc.Loan == nil {
			err = missingSection(calc.Kind)
			break
		}
		err = c.loan(*calc.Loan, &result)
	case config.KindCreditCard:
		if calc.CreditCard == nil {
			err = missingSection(calc.Kind)
			break
		}
		err = c.creditCard(*calc.CreditCard, &result)
	case config.KindCompoundInterest:
		if calc.CompoundInterest == nil {
			err = missingSection(calc.Kind)
			break
		}
		err = c.compoundInterest(*calc.CompoundInterest, &result)
	case config.KindInvestment:
		if calc.Investment == nil {
			err = missingSection(calc.Kind)
			break
		}
		err = c.investment(*calc.Investment, &result)
	case config.KindRetirement:
		if calc.Retirement == nil {
			err = missingSection(calc.Kind)
			break
		}
		err = c.retirement(*calc.Retirement, &result)
	case config.KindAlcohol:
		if calc.Alcohol == nil {
			err = missingSection(calc.Kind)
			break
		}
		err = c.alcohol(*calc.Alcohol, now, &result)
	default:
		err = fmt.Errorf("%w %q", ErrUnknownKind, calc.Kind)
	}
	if err != nil {
		return Result{}, fmt.Errorf("calculation %q: %w", calc.Name, err)
	}

	c.logger.Debug(fmt.Sprintf("calculation %s complete", calc.Name),
		zap.String("op", "calculator.Run"),
		zap.String("kind", calc.Kind),
		zap.Int("periods", len(result.Schedule)),
	)
	return result, nil
}

// RunAll performs every calculation in order, stopping at the first failure.
// Results computed before the failure are returned with the error.
func (c *Calculator) RunAll(calcs []config.Calculation, now time.Time) ([]Result, error) {
	results := make([]Result, 0, len(calcs))
	for _, calc := range calcs {
		result, err := c.Run(calc, now)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func missingSection(kind string) error {
	return projection.InvalidParameter("%s calculation has no %s section", kind, kind)
}
