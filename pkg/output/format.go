// Package output provides utilities for formatting and displaying calculator results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iwvelando/finance-calculators/internal/calculator"
	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/format"
	"github.com/iwvelando/finance-calculators/pkg/projection"
	"gopkg.in/yaml.v3"
)

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

// Write renders results in the named format.
func Write(w io.Writer, outputFormat string, results []calculator.Result) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, results)
	case constants.OutputFormatCSV:
		return CsvFormat(w, results)
	case constants.OutputFormatJSON:
		return JSONFormat(w, results)
	case constants.OutputFormatYAML:
		return YAMLFormat(w, results)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}

// FormatMetric renders a metric value according to its unit.
func FormatMetric(m calculator.Metric) string {
	switch m.Unit {
	case calculator.UnitCurrency:
		return format.Currency(m.Value)
	case calculator.UnitPercent:
		return format.Percent(m.Value)
	case calculator.UnitMonths:
		return format.Number(m.Value, 0) + " months"
	case calculator.UnitPeriods:
		return format.Number(m.Value, 0)
	case calculator.UnitYears:
		return format.Number(m.Value, 1) + " years"
	case calculator.UnitHours:
		return format.Number(m.Value, 2) + " hours"
	case calculator.UnitBAC:
		return format.Number(m.Value, 3)
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, results []calculator.Result) error {
	var b strings.Builder
	for i, result := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(headingStyle.Render(fmt.Sprintf("--- Results for %s (%s) ---", result.Name, result.Kind)))
		b.WriteString("\n")

		width := 0
		for _, m := range result.Summary {
			width = max(width, len(m.Label))
		}
		for _, m := range result.Summary {
			fmt.Fprintf(&b, "%-*s  %s\n", width+1, m.Label+":", FormatMetric(m))
		}

		if len(result.Yearly) > 0 {
			b.WriteString("\n")
			writeYearly(&b, result.Yearly)
		}
		if len(result.Curve) > 0 {
			b.WriteString("\nHour | Time  | BAC\n")
			b.WriteString("____ | _____ | _____\n")
			for _, p := range result.Curve {
				fmt.Fprintf(&b, "%4d | %s | %s\n", p.Hour, p.At.Format("15:04"), format.Number(p.Level, 3))
			}
		}
		if len(result.Notes) > 0 {
			b.WriteString("\nNotes:\n")
			for _, note := range result.Notes {
				fmt.Fprintf(&b, "  * %s\n", note)
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeYearly(b *strings.Builder, yearly []projection.YearlySummary) {
	fmt.Fprintf(b, "%-4s | %14s | %14s | %16s\n", "Year", "Paid", "Interest", "Balance")
	fmt.Fprintf(b, "%s | %s | %s | %s\n", strings.Repeat("_", 4), strings.Repeat("_", 14), strings.Repeat("_", 14), strings.Repeat("_", 16))
	for _, y := range yearly {
		fmt.Fprintf(b, "%4d | %14s | %14s | %16s\n", y.Year, format.Cents(y.YearPaid), format.Cents(y.YearInterest), format.Cents(y.Balance))
	}
}

// CsvFormat outputs every summary metric as one comma-separated row.
func CsvFormat(w io.Writer, results []calculator.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"calculation", "kind", "metric", "label", "value", "unit"}); err != nil {
		return err
	}
	for _, result := range results {
		for _, m := range result.Summary {
			row := []string{result.Name, result.Kind, m.Key, m.Label, strconv.FormatFloat(m.Value, 'f', -1, 64), string(m.Unit)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ScheduleCsv outputs a period schedule in comma-separated value format.
func ScheduleCsv(w io.Writer, periods []projection.PeriodRecord) error {
	cw := csv.NewWriter(w)
	header := []string{"period", "opening_balance", "interest", "contribution_or_payment", "principal", "closing_balance"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range periods {
		row := []string{
			strconv.Itoa(p.PeriodIndex),
			p.OpeningBalance.String(),
			p.InterestAccrued.String(),
			p.ContributionOrPayment.String(),
			p.PrincipalComponent.String(),
			p.ClosingBalance.String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs the results as indented JSON.
func JSONFormat(w io.Writer, results []calculator.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// YAMLFormat outputs the results as YAML.
func YAMLFormat(w io.Writer, results []calculator.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(results); err != nil {
		return err
	}
	return enc.Close()
}
