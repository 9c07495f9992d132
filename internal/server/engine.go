package server

import (
	"net/http"

	"github.com/iwvelando/finance-calculators/pkg/finance"
	"github.com/iwvelando/finance-calculators/pkg/loans"
	"github.com/iwvelando/finance-calculators/pkg/money"
	"github.com/iwvelando/finance-calculators/pkg/projection"
)

// parametersRequest is the wire form of projection.Parameters. Amounts are
// currency numbers and frequencies are names such as "monthly".
type parametersRequest struct {
	Principal             money.Cents  `json:"principal"`
	AnnualRatePercent     float64      `json:"annualRatePercent"`
	Compounding           string       `json:"compounding"`
	ContributionAmount    money.Cents  `json:"contributionAmount"`
	ContributionFrequency string       `json:"contributionFrequency"`
	ContributionTiming    string       `json:"contributionTiming"`
	HorizonYears          float64      `json:"horizonYears"`
	FixedPayment          *money.Cents `json:"fixedPayment"`
	WithdrawalAmount      money.Cents  `json:"withdrawalAmount"`
	WithdrawalFrequency   string       `json:"withdrawalFrequency"`
	InflationRatePercent  float64      `json:"inflationRatePercent"`
}

func (p parametersRequest) parameters() (projection.Parameters, error) {
	compounding, err := projection.ParseCompounding(p.Compounding)
	if err != nil {
		return projection.Parameters{}, err
	}
	contribution, err := projection.ParseContribution(p.ContributionFrequency)
	if err != nil {
		return projection.Parameters{}, err
	}
	timing, err := projection.ParseTiming(p.ContributionTiming)
	if err != nil {
		return projection.Parameters{}, err
	}
	withdrawal, err := projection.ParseContribution(p.WithdrawalFrequency)
	if err != nil {
		return projection.Parameters{}, err
	}
	return projection.Parameters{
		Principal:             p.Principal,
		AnnualRatePercent:     p.AnnualRatePercent,
		Compounding:           compounding,
		ContributionAmount:    p.ContributionAmount,
		ContributionFrequency: contribution,
		ContributionTiming:    timing,
		HorizonYears:          p.HorizonYears,
		FixedPayment:          p.FixedPayment,
		WithdrawalAmount:      p.WithdrawalAmount,
		WithdrawalFrequency:   withdrawal,
		InflationRatePercent:  p.InflationRatePercent,
	}, nil
}

type amortizationResponse struct {
	Payment         money.Cents                `json:"payment"`
	ExtraPayment    money.Cents                `json:"extraPayment"`
	PayoffPeriods   int                        `json:"payoffPeriods"`
	CrossoverPeriod *int                       `json:"crossoverPeriod,omitempty"`
	Totals          projection.Totals          `json:"totals"`
	Yearly          []projection.YearlySummary `json:"yearly"`
	Periods         []projection.PeriodRecord  `json:"periods"`
}

type accumulationResponse struct {
	FinalBalance    money.Cents                `json:"finalBalance"`
	Contribution    money.Cents                `json:"contribution"`
	Timing          string                     `json:"timing"`
	CrossoverPeriod *int                       `json:"crossoverPeriod,omitempty"`
	Totals          projection.Totals          `json:"totals"`
	Yearly          []projection.YearlySummary `json:"yearly"`
	Periods         []projection.PeriodRecord  `json:"periods"`
}

type drawdownResponse struct {
	FinalBalance      money.Cents                `json:"finalBalance"`
	DepletedAtPeriod  *int                       `json:"depletedAtPeriod,omitempty"`
	InitialWithdrawal money.Cents                `json:"initialWithdrawal"`
	FinalWithdrawal   money.Cents                `json:"finalWithdrawal"`
	Totals            projection.Totals          `json:"totals"`
	Yearly            []projection.YearlySummary `json:"yearly"`
	Periods           []projection.PeriodRecord  `json:"periods"`
}

func crossover(periods []projection.PeriodRecord) *int {
	if k, ok := projection.Crossover(periods); ok {
		return &k
	}
	return nil
}

func (h *handler) handleAmortization(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAmortization"
	var req parametersRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	params, err := req.parameters()
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	schedule, err := h.amortizer.Simulate(params)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	yearly, err := projection.ToYearlySummaries(schedule.Periods, schedule.PeriodsPerYear)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, amortizationResponse{
		Payment:         schedule.Payment,
		ExtraPayment:    schedule.ExtraPayment,
		PayoffPeriods:   schedule.PayoffPeriods(),
		CrossoverPeriod: crossover(schedule.Periods),
		Totals:          schedule.Totals,
		Yearly:          yearly,
		Periods:         schedule.Periods,
	})
}

func (h *handler) handleAccumulation(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAccumulation"
	var req parametersRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	params, err := req.parameters()
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	schedule, err := h.projector.SimulateAccumulation(params)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	yearly, err := projection.ToYearlySummaries(schedule.Periods, schedule.PeriodsPerYear)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, accumulationResponse{
		FinalBalance:    schedule.FinalBalance(),
		Contribution:    schedule.Contribution,
		Timing:          schedule.Timing.String(),
		CrossoverPeriod: crossover(schedule.Periods),
		Totals:          schedule.Totals,
		Yearly:          yearly,
		Periods:         schedule.Periods,
	})
}

func (h *handler) handleDrawdown(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDrawdown"
	var req parametersRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	params, err := req.parameters()
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	result, err := h.projector.SimulateDrawdown(params)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	yearly, err := projection.ToYearlySummaries(result.Periods, result.PeriodsPerYear)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, drawdownResponse{
		FinalBalance:      result.FinalBalance(),
		DepletedAtPeriod:  result.DepletedAtPeriod,
		InitialWithdrawal: result.InitialWithdrawal,
		FinalWithdrawal:   result.FinalWithdrawal,
		Totals:            result.Totals,
		Yearly:            yearly,
		Periods:           result.Periods,
	})
}

type solvePaymentRequest struct {
	Principal         money.Cents `json:"principal"`
	AnnualRatePercent float64     `json:"annualRatePercent"`
	Compounding       string      `json:"compounding"`
	Periods           int         `json:"periods"`
}

func (h *handler) handleSolvePayment(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSolvePayment"
	var req solvePaymentRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	compounding, err := projection.ParseCompounding(req.Compounding)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	payment, err := loans.SolvePayment(req.Principal, req.AnnualRatePercent, compounding, req.Periods)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]money.Cents{"payment": payment})
}

type solveMonthsRequest struct {
	Principal         money.Cents `json:"principal"`
	AnnualRatePercent float64     `json:"annualRatePercent"`
	Compounding       string      `json:"compounding"`
	Payment           money.Cents `json:"payment"`
}

type solveMonthsResponse struct {
	Periods       int         `json:"periods"`
	TotalInterest money.Cents `json:"totalInterest"`
}

func (h *handler) handleSolveMonths(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSolveMonths"
	var req solveMonthsRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	compounding, err := projection.ParseCompounding(req.Compounding)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	periods, err := loans.SolveMonthsToPayoff(req.Principal, req.AnnualRatePercent, compounding, req.Payment)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	interest, err := loans.PayoffInterest(req.Principal, req.AnnualRatePercent, compounding, req.Payment)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, solveMonthsResponse{Periods: periods, TotalInterest: interest})
}

type solveContributionRequest struct {
	Principal         money.Cents `json:"principal"`
	AnnualRatePercent float64     `json:"annualRatePercent"`
	Compounding       string      `json:"compounding"`
	Periods           int         `json:"periods"`
	Target            money.Cents `json:"target"`
	Timing            string      `json:"timing"`
}

func (h *handler) handleSolveContribution(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSolveContribution"
	var req solveContributionRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	compounding, err := projection.ParseCompounding(req.Compounding)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	timing, err := projection.ParseTiming(req.Timing)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	contribution, err := finance.SolveRequiredContribution(req.Principal, req.AnnualRatePercent, compounding, req.Periods, req.Target, timing)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]money.Cents{"contribution": contribution})
}

type retirementGoalRequest struct {
	AnnualWithdrawal     money.Cents `json:"annualWithdrawal"`
	YearsUntilRetirement float64     `json:"yearsUntilRetirement"`
	YearsInRetirement    float64     `json:"yearsInRetirement"`
	AnnualRatePercent    float64     `json:"annualRatePercent"`
	InflationRatePercent float64     `json:"inflationRatePercent"`
	WithdrawAtStart      bool        `json:"withdrawAtStart"`
}

type retirementGoalResponse struct {
	RequiredAtRetirement   money.Cents `json:"requiredAtRetirement"`
	WithdrawalAtRetirement money.Cents `json:"annualWithdrawalAtRetirement"`
}

func (h *handler) handleSolveRetirementGoal(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSolveRetirementGoal"
	var req retirementGoalRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	goal := finance.RetirementGoal{
		AnnualWithdrawal:     req.AnnualWithdrawal,
		YearsUntilRetirement: req.YearsUntilRetirement,
		YearsInRetirement:    req.YearsInRetirement,
		AnnualRatePercent:    req.AnnualRatePercent,
		InflationRatePercent: req.InflationRatePercent,
		WithdrawAtStart:      req.WithdrawAtStart,
	}
	required, err := finance.SolveRetirementGoal(goal)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	withdrawal, err := goal.WithdrawalAtRetirement()
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, retirementGoalResponse{
		RequiredAtRetirement:   required,
		WithdrawalAtRetirement: withdrawal,
	})
}
