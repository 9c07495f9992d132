package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/iwvelando/finance-calculators/internal/calculator"
	"github.com/iwvelando/finance-calculators/internal/config"
	"github.com/iwvelando/finance-calculators/internal/server"
	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/finance"
	"github.com/iwvelando/finance-calculators/pkg/loans"
	"github.com/iwvelando/finance-calculators/pkg/money"
	"github.com/iwvelando/finance-calculators/pkg/output"
	"github.com/iwvelando/finance-calculators/pkg/projection"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [calculations-file]",
		Short: "Run every calculation in a calculations file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.v.GetString("config")
			if len(args) == 1 {
				path = args[0]
			}
			conf, err := config.LoadConfiguration(path)
			if err != nil {
				return fmt.Errorf("failed to load configuration at %s: %w", path, err)
			}

			logger, err := a.logger(conf.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			format, err := a.outputFormat(conf.Output.Format)
			if err != nil {
				return err
			}

			for _, warning := range conf.ValidateConfiguration() {
				logger.Warn("Configuration warning: "+warning,
					zap.String("op", "main.run"),
				)
			}

			results, err := calculator.NewCalculator(logger).RunAll(conf.Calculations, a.now())
			if err != nil {
				logger.Error("failed to run calculations",
					zap.String("op", "main.run"),
					zap.Int("completed", len(results)),
					zap.Error(err),
				)
				return err
			}

			if name, _ := cmd.Flags().GetString("schedule"); name != "" {
				for _, result := range results {
					if result.Name == name {
						return output.ScheduleCsv(cmd.OutOrStdout(), result.Schedule)
					}
				}
				return fmt.Errorf("no calculation named %q", name)
			}
			return output.Write(cmd.OutOrStdout(), format, results)
		},
	}
	cmd.Flags().String("schedule", "", "print the period schedule of the named calculation as CSV")
	return cmd
}

// toCents converts a currency flag value.
func toCents(name string, amount float64) (money.Cents, error) {
	if !money.FitsFloat(amount) {
		return 0, projection.InvalidParameter("%s %v is not a representable amount", name, amount)
	}
	return money.FromFloat(amount), nil
}

func currency(key, label string, amount money.Cents) calculator.Metric {
	return calculator.Metric{Key: key, Label: label, Value: amount.Float64(), Unit: calculator.UnitCurrency}
}

func count(key, label string, n int, unit calculator.Unit) calculator.Metric {
	return calculator.Metric{Key: key, Label: label, Value: float64(n), Unit: unit}
}

func scheduleResult(kind string, periods []projection.PeriodRecord, periodsPerYear int) (calculator.Result, error) {
	yearly, err := projection.ToYearlySummaries(periods, periodsPerYear)
	if err != nil {
		return calculator.Result{}, err
	}
	return calculator.Result{Name: kind, Kind: kind, Schedule: periods, Yearly: yearly}, nil
}

// emit writes a schedule as CSV when --schedule is set and the result otherwise.
func (a *app) emit(cmd *cobra.Command, result calculator.Result) error {
	if full, _ := cmd.Flags().GetBool("schedule"); full {
		return output.ScheduleCsv(cmd.OutOrStdout(), result.Schedule)
	}
	return a.write(cmd.OutOrStdout(), result)
}

// commandLogger logs to the console for the single-shot commands, which have
// no logging section to read.
func (a *app) commandLogger() (*zap.Logger, error) {
	return a.logger(config.LoggingConfig{Format: "console"})
}

func amortizeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amortize",
		Short: "Print the amortization schedule of a loan",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			principalValue, _ := f.GetFloat64("principal")
			rate, _ := f.GetFloat64("rate")
			compoundingName, _ := f.GetString("compounding")
			years, _ := f.GetFloat64("years")
			paymentValue, _ := f.GetFloat64("payment")
			extraValue, _ := f.GetFloat64("extra")
			extraFrequency, _ := f.GetString("extra-frequency")

			principal, err := toCents("principal", principalValue)
			if err != nil {
				return err
			}
			extra, err := toCents("extra payment", extraValue)
			if err != nil {
				return err
			}
			compounding, err := projection.ParseCompounding(compoundingName)
			if err != nil {
				return err
			}
			frequency, err := projection.ParseContribution(extraFrequency)
			if err != nil {
				return err
			}
			if extra > 0 && frequency == projection.None {
				frequency = projection.MonthlyContribution
			}
			params := projection.Parameters{
				Principal:             principal,
				AnnualRatePercent:     rate,
				Compounding:           compounding,
				HorizonYears:          years,
				ContributionAmount:    extra,
				ContributionFrequency: frequency,
			}
			if f.Changed("payment") {
				payment, err := toCents("payment", paymentValue)
				if err != nil {
					return err
				}
				params.FixedPayment = &payment
			}

			logger, err := a.commandLogger()
			if err != nil {
				return err
			}
			schedule, err := loans.NewAmortizer(logger).Simulate(params)
			if err != nil {
				return err
			}
			result, err := scheduleResult("amortization", schedule.Periods, schedule.PeriodsPerYear)
			if err != nil {
				return err
			}
			result.Summary = append(result.Summary, currency("payment", "Payment", schedule.Payment))
			if schedule.ExtraPayment > 0 {
				result.Summary = append(result.Summary, currency("extraPayment", "Extra principal per payment", schedule.ExtraPayment))
			}
			result.Summary = append(result.Summary,
				count("payoffPeriods", "Payments to payoff", schedule.PayoffPeriods(), calculator.UnitPeriods),
				currency("totalInterest", "Total interest", schedule.Totals.TotalInterest),
				currency("totalPaid", "Total paid", schedule.Totals.TotalPaid),
			)
			if k, ok := projection.Crossover(schedule.Periods); ok {
				result.Notes = append(result.Notes, fmt.Sprintf("Principal repaid exceeds interest from payment %d", k))
			}
			return a.emit(cmd, result)
		},
	}
	f := cmd.Flags()
	f.Float64("principal", 0, "loan principal")
	f.Float64("rate", 0, "nominal annual rate in percent")
	f.String("compounding", "monthly", "compounding and payment frequency")
	f.Float64("years", 0, "loan term in years (exclusive with --payment)")
	f.Float64("payment", 0, "fixed periodic payment (exclusive with --years)")
	f.Float64("extra", 0, "extra principal per contribution period")
	f.String("extra-frequency", "", "frequency of the extra payment; defaults to monthly")
	f.Bool("schedule", false, "print every period as CSV")
	return cmd
}

func accumulateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accumulate",
		Short: "Project a balance that grows with interest and contributions",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			principalValue, _ := f.GetFloat64("principal")
			rate, _ := f.GetFloat64("rate")
			compoundingName, _ := f.GetString("compounding")
			contributionValue, _ := f.GetFloat64("contribution")
			frequencyName, _ := f.GetString("frequency")
			timingName, _ := f.GetString("timing")
			years, _ := f.GetFloat64("years")

			principal, err := toCents("principal", principalValue)
			if err != nil {
				return err
			}
			contribution, err := toCents("contribution", contributionValue)
			if err != nil {
				return err
			}
			compounding, err := projection.ParseCompounding(compoundingName)
			if err != nil {
				return err
			}
			if contribution > 0 && frequencyName == "" {
				frequencyName = "monthly"
			}
			frequency, err := projection.ParseContribution(frequencyName)
			if err != nil {
				return err
			}
			timing, err := projection.ParseTiming(timingName)
			if err != nil {
				return err
			}

			logger, err := a.commandLogger()
			if err != nil {
				return err
			}
			schedule, err := finance.NewProjector(logger).SimulateAccumulation(projection.Parameters{
				Principal:             principal,
				AnnualRatePercent:     rate,
				Compounding:           compounding,
				ContributionAmount:    contribution,
				ContributionFrequency: frequency,
				ContributionTiming:    timing,
				HorizonYears:          years,
			})
			if err != nil {
				return err
			}
			result, err := scheduleResult("accumulation", schedule.Periods, schedule.PeriodsPerYear)
			if err != nil {
				return err
			}
			result.Summary = append(result.Summary,
				currency("finalBalance", "Final balance", schedule.FinalBalance()),
				currency("totalContributions", "Total contributions", schedule.Totals.TotalContributions),
				currency("totalInterest", "Total interest", schedule.Totals.TotalInterest),
			)
			if schedule.Contribution > 0 {
				result.Summary = append(result.Summary, currency("periodicDeposit", "Deposit per period", schedule.Contribution))
			}
			if k, ok := projection.Crossover(schedule.Periods); ok {
				result.Notes = append(result.Notes, fmt.Sprintf("Interest earned exceeds deposits from period %d", k))
			}
			return a.emit(cmd, result)
		},
	}
	f := cmd.Flags()
	f.Float64("principal", 0, "starting balance")
	f.Float64("rate", 0, "nominal annual rate in percent")
	f.String("compounding", "monthly", "compounding frequency")
	f.Float64("contribution", 0, "recurring deposit")
	f.String("frequency", "", "deposit frequency; defaults to monthly when a deposit is set")
	f.String("timing", "pre", "deposit before (pre) or after (post) each period's interest")
	f.Float64("years", 0, "years to project")
	f.Bool("schedule", false, "print every period as CSV")
	return cmd
}

func drawdownCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drawdown",
		Short: "Project a balance that pays out withdrawals",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			balanceValue, _ := f.GetFloat64("balance")
			rate, _ := f.GetFloat64("rate")
			compoundingName, _ := f.GetString("compounding")
			withdrawalValue, _ := f.GetFloat64("withdrawal")
			frequencyName, _ := f.GetString("frequency")
			years, _ := f.GetFloat64("years")
			inflation, _ := f.GetFloat64("inflation")

			balance, err := toCents("balance", balanceValue)
			if err != nil {
				return err
			}
			withdrawal, err := toCents("withdrawal", withdrawalValue)
			if err != nil {
				return err
			}
			compounding, err := projection.ParseCompounding(compoundingName)
			if err != nil {
				return err
			}
			frequency, err := projection.ParseContribution(frequencyName)
			if err != nil {
				return err
			}

			logger, err := a.commandLogger()
			if err != nil {
				return err
			}
			drawdown, err := finance.NewProjector(logger).SimulateDrawdown(projection.Parameters{
				Principal:            balance,
				AnnualRatePercent:    rate,
				Compounding:          compounding,
				WithdrawalAmount:     withdrawal,
				WithdrawalFrequency:  frequency,
				HorizonYears:         years,
				InflationRatePercent: inflation,
			})
			if err != nil {
				return err
			}
			result, err := scheduleResult("drawdown", drawdown.Periods, drawdown.PeriodsPerYear)
			if err != nil {
				return err
			}
			result.Summary = append(result.Summary,
				currency("finalBalance", "Final balance", drawdown.FinalBalance()),
				currency("totalWithdrawn", "Total withdrawn", drawdown.Totals.TotalPaid),
				currency("totalInterest", "Total interest", drawdown.Totals.TotalInterest),
				currency("initialWithdrawal", "Withdrawal in the first year", drawdown.InitialWithdrawal),
				currency("finalWithdrawal", "Withdrawal in the final year", drawdown.FinalWithdrawal),
			)
			if drawdown.Depleted() {
				result.Summary = append(result.Summary, count("depletedAtPeriod", "Period the balance runs out", *drawdown.DepletedAtPeriod, calculator.UnitPeriods))
				result.Notes = append(result.Notes, fmt.Sprintf("The balance runs out in period %d", *drawdown.DepletedAtPeriod))
			}
			return a.emit(cmd, result)
		},
	}
	f := cmd.Flags()
	f.Float64("balance", 0, "starting balance")
	f.Float64("rate", 0, "nominal annual rate in percent")
	f.String("compounding", "monthly", "compounding frequency")
	f.Float64("withdrawal", 0, "recurring withdrawal")
	f.String("frequency", "monthly", "withdrawal frequency")
	f.Float64("years", 0, "years to project")
	f.Float64("inflation", 0, "yearly withdrawal increase in percent")
	f.Bool("schedule", false, "print every period as CSV")
	return cmd
}

func solveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve for a payment, a payoff time, a contribution or a retirement goal",
	}
	cmd.AddCommand(solvePaymentCmd(a), solveMonthsCmd(a), solveContributionCmd(a), solveRetirementGoalCmd(a))
	return cmd
}

func solvePaymentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Payment that retires a loan in a given number of periods",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			principalValue, _ := f.GetFloat64("principal")
			rate, _ := f.GetFloat64("rate")
			compoundingName, _ := f.GetString("compounding")
			periods, _ := f.GetInt("periods")

			principal, err := toCents("principal", principalValue)
			if err != nil {
				return err
			}
			compounding, err := projection.ParseCompounding(compoundingName)
			if err != nil {
				return err
			}
			payment, err := loans.SolvePayment(principal, rate, compounding, periods)
			if err != nil {
				return err
			}
			return a.write(cmd.OutOrStdout(), calculator.Result{
				Name:    "payment",
				Kind:    "solve",
				Summary: []calculator.Metric{currency("payment", "Payment per period", payment)},
			})
		},
	}
	f := cmd.Flags()
	f.Float64("principal", 0, "loan principal")
	f.Float64("rate", 0, "nominal annual rate in percent")
	f.String("compounding", "monthly", "compounding and payment frequency")
	f.Int("periods", 0, "number of payments")
	return cmd
}

func solveMonthsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "months",
		Short: "Payments needed to retire a balance at a fixed payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			principalValue, _ := f.GetFloat64("principal")
			rate, _ := f.GetFloat64("rate")
			compoundingName, _ := f.GetString("compounding")
			paymentValue, _ := f.GetFloat64("payment")

			principal, err := toCents("principal", principalValue)
			if err != nil {
				return err
			}
			payment, err := toCents("payment", paymentValue)
			if err != nil {
				return err
			}
			compounding, err := projection.ParseCompounding(compoundingName)
			if err != nil {
				return err
			}
			periods, err := loans.SolveMonthsToPayoff(principal, rate, compounding, payment)
			if err != nil {
				return err
			}
			interest, err := loans.PayoffInterest(principal, rate, compounding, payment)
			if err != nil {
				return err
			}
			return a.write(cmd.OutOrStdout(), calculator.Result{
				Name: "months",
				Kind: "solve",
				Summary: []calculator.Metric{
					count("periods", "Payments to payoff", periods, calculator.UnitPeriods),
					currency("totalInterest", "Total interest", interest),
				},
			})
		},
	}
	f := cmd.Flags()
	f.Float64("principal", 0, "balance owed")
	f.Float64("rate", 0, "nominal annual rate in percent")
	f.String("compounding", "monthly", "compounding and payment frequency")
	f.Float64("payment", 0, "fixed payment per period")
	return cmd
}

func solveContributionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contribution",
		Short: "Deposit per period needed to reach a target balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			principalValue, _ := f.GetFloat64("principal")
			rate, _ := f.GetFloat64("rate")
			compoundingName, _ := f.GetString("compounding")
			periods, _ := f.GetInt("periods")
			targetValue, _ := f.GetFloat64("target")
			timingName, _ := f.GetString("timing")

			principal, err := toCents("principal", principalValue)
			if err != nil {
				return err
			}
			target, err := toCents("target", targetValue)
			if err != nil {
				return err
			}
			compounding, err := projection.ParseCompounding(compoundingName)
			if err != nil {
				return err
			}
			timing, err := projection.ParseTiming(timingName)
			if err != nil {
				return err
			}
			contribution, err := finance.SolveRequiredContribution(principal, rate, compounding, periods, target, timing)
			if err != nil {
				return err
			}
			return a.write(cmd.OutOrStdout(), calculator.Result{
				Name:    "contribution",
				Kind:    "solve",
				Summary: []calculator.Metric{currency("contribution", "Deposit per period", contribution)},
			})
		},
	}
	f := cmd.Flags()
	f.Float64("principal", 0, "starting balance")
	f.Float64("rate", 0, "nominal annual rate in percent")
	f.String("compounding", "monthly", "compounding and deposit frequency")
	f.Int("periods", 0, "number of periods")
	f.Float64("target", 0, "target balance")
	f.String("timing", "pre", "deposit before (pre) or after (post) each period's interest")
	return cmd
}

func solveRetirementGoalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retirement-goal",
		Short: "Savings needed at retirement to fund an annual income",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			incomeValue, _ := f.GetFloat64("annual-withdrawal")
			yearsUntil, _ := f.GetFloat64("years-until")
			yearsIn, _ := f.GetFloat64("years-in")
			rate, _ := f.GetFloat64("rate")
			inflation, _ := f.GetFloat64("inflation")
			atStart, _ := f.GetBool("withdraw-at-start")

			income, err := toCents("annual withdrawal", incomeValue)
			if err != nil {
				return err
			}
			goal := finance.RetirementGoal{
				AnnualWithdrawal:     income,
				YearsUntilRetirement: yearsUntil,
				YearsInRetirement:    yearsIn,
				AnnualRatePercent:    rate,
				InflationRatePercent: inflation,
				WithdrawAtStart:      atStart,
			}
			required, err := finance.SolveRetirementGoal(goal)
			if err != nil {
				return err
			}
			withdrawal, err := goal.WithdrawalAtRetirement()
			if err != nil {
				return err
			}
			return a.write(cmd.OutOrStdout(), calculator.Result{
				Name: "retirement-goal",
				Kind: "solve",
				Summary: []calculator.Metric{
					currency("requiredAtRetirement", "Savings needed at retirement", required),
					currency("annualWithdrawalAtRetirement", "Annual income at retirement", withdrawal),
				},
			})
		},
	}
	f := cmd.Flags()
	f.Float64("annual-withdrawal", 0, "yearly income needed, in today's money")
	f.Float64("years-until", 0, "years until retirement")
	f.Float64("years-in", 0, "years in retirement")
	f.Float64("rate", 0, "expected annual return in retirement, in percent")
	f.Float64("inflation", 0, "annual inflation in percent")
	f.Bool("withdraw-at-start", false, "withdraw at the start of each month")
	return cmd
}

// parseDrink reads "volumeMl:abvPercent[:hoursAgo]".
func parseDrink(value string) (config.Drink, error) {
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return config.Drink{}, fmt.Errorf("invalid drink %q, expected volumeMl:abvPercent[:hoursAgo]", value)
	}
	nums := make([]float64, len(parts))
	for i, part := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return config.Drink{}, fmt.Errorf("invalid drink %q: %w", value, err)
		}
		nums[i] = n
	}
	drink := config.Drink{VolumeMl: nums[0], ABVPercent: nums[1]}
	if len(nums) == 3 {
		drink.HoursAgo = nums[2]
	}
	return drink, nil
}

func bacCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bac",
		Short: "Estimate blood alcohol concentration and time until sober",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			weight, _ := f.GetFloat64("weight")
			sex, _ := f.GetString("sex")
			elimination, _ := f.GetFloat64("elimination-rate")
			drinkValues, _ := f.GetStringArray("drink")

			session := &config.Alcohol{WeightKg: weight, Sex: sex, EliminationRate: elimination}
			for _, value := range drinkValues {
				drink, err := parseDrink(value)
				if err != nil {
					return err
				}
				session.Drinks = append(session.Drinks, drink)
			}

			logger, err := a.commandLogger()
			if err != nil {
				return err
			}
			result, err := calculator.NewCalculator(logger).Run(config.Calculation{
				Name:    "bac",
				Kind:    config.KindAlcohol,
				Alcohol: session,
			}, a.now())
			if err != nil {
				return err
			}
			return a.write(cmd.OutOrStdout(), result)
		},
	}
	f := cmd.Flags()
	f.Float64("weight", 0, "body weight in kg")
	f.String("sex", "", "male or female")
	f.Float64("elimination-rate", 0, "BAC eliminated per hour; 0 uses the average")
	f.StringArray("drink", nil, "a drink as volumeMl:abvPercent[:hoursAgo]; repeatable")
	return cmd
}

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculators over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("server-config")
			cfg, err := server.LoadConfig(path)
			if err != nil {
				return err
			}
			if address, _ := cmd.Flags().GetString("address"); address != "" {
				cfg.Address = address
			}
			if size, _ := cmd.Flags().GetString("max-body-size"); size != "" {
				bytes, err := server.ParseSize(size)
				if err != nil {
					return err
				}
				cfg.SetBodySizeBytes(bytes)
			}

			logger, err := a.logger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			srv, err := server.New(cfg, logger, version)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	f := cmd.Flags()
	f.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	f.String("address", "", "listen address override")
	f.String("max-body-size", "", "request body limit override, e.g. 512K")
	return cmd
}
