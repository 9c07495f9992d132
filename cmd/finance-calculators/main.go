package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iwvelando/finance-calculators/internal/calculator"
	"github.com/iwvelando/finance-calculators/internal/config"
	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/output"
	"github.com/iwvelando/finance-calculators/pkg/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version = "dev"
	commit  = "none"
)

// app carries state shared by every subcommand.
type app struct {
	v   *viper.Viper
	now func() time.Time
}

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		cfg.OutputPaths = []string{loggingConfig.OutputFile}
		cfg.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return cfg.Build()
}

// logger builds the logger for a command from a logging section and the
// --log-level flag.
func (a *app) logger(loggingConfig config.LoggingConfig) (*zap.Logger, error) {
	return initializeLogger(loggingConfig, a.v.GetString("log-level"))
}

// outputFormat resolves the output format: flag, then configured, then pretty.
func (a *app) outputFormat(configured string) (string, error) {
	format := a.v.GetString("output-format")
	if format == "" {
		format = configured
	}
	if format == "" {
		format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(format); err != nil {
		return "", err
	}
	return format, nil
}

func (a *app) write(w io.Writer, results ...calculator.Result) error {
	format, err := a.outputFormat("")
	if err != nil {
		return err
	}
	return output.Write(w, format, results)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "finance-calculators",
		Short: "Loan, savings, retirement and BAC calculators",
		Long: "Runs a catalog of personal finance calculators on a shared projection engine:\n" +
			"amortization, accumulation and drawdown schedules, goal solvers and BAC elimination.",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", constants.DefaultConfigFile, "path to calculations file")
	pf.String("log-level", "", "log level override (debug, info, warn, error)")
	pf.String("output-format", "", "output format override: "+strings.Join(validation.OutputFormats(), ", "))
	_ = a.v.BindPFlags(pf)

	root.AddCommand(
		runCmd(a),
		amortizeCmd(a),
		accumulateCmd(a),
		drawdownCmd(a),
		solveCmd(a),
		bacCmd(a),
		serveCmd(a),
		versionCmd(),
	)
	return root
}

func newApp() *app {
	v := viper.New()
	v.SetEnvPrefix("FINCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &app{v: v, now: time.Now}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "finance-calculators %s (commit %s)\n", version, commit)
		},
	}
}

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		os.Exit(1)
	}
}
