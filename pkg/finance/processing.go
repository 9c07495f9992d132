// Package finance provides the accumulation and drawdown simulators and the
// savings goal solvers used by the investment, compound interest and
// retirement calculators.
package finance

import (
	"github.com/iwvelando/finance-calculators/pkg/projection"
	"go.uber.org/zap"
)

// Projector runs balance projections.
type Projector struct {
	logger *zap.Logger
}

// NewProjector creates a new projector with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewProjector(logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{logger: logger}
}

// SimulateAccumulation runs Projector.SimulateAccumulation without logging.
func SimulateAccumulation(params projection.Parameters) (Schedule, error) {
	return NewProjector(nil).SimulateAccumulation(params)
}

// SimulateDrawdown runs Projector.SimulateDrawdown without logging.
func SimulateDrawdown(params projection.Parameters) (DrawdownResult, error) {
	return NewProjector(nil).SimulateDrawdown(params)
}

// SimulateRetirement runs Projector.SimulateRetirement without logging.
func SimulateRetirement(plan RetirementPlan) (RetirementResult, error) {
	return NewProjector(nil).SimulateRetirement(plan)
}
