// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/finance-calculators/pkg/constants"
)

// OutputFormats lists the supported output formats.
func OutputFormats() []string {
	return []string{
		constants.OutputFormatPretty,
		constants.OutputFormatCSV,
		constants.OutputFormatJSON,
		constants.OutputFormatYAML,
	}
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, f := range OutputFormats() {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, got %q", strings.Join(OutputFormats(), ", "), format)
}
