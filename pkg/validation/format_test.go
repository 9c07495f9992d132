package validation

import (
	"strings"
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expectErr bool
	}{
		{"Valid pretty format", "pretty", false},
		{"Valid csv format", "csv", false},
		{"Valid json format", "json", false},
		{"Valid yaml format", "yaml", false},
		{"Invalid format", "xml", true},
		{"Empty format", "", true},
		{"Case sensitive - uppercase", "PRETTY", true},
		{"Case sensitive - CSV uppercase", "CSV", true},
		{"Leading/trailing spaces", " pretty ", true},
		{"Similar but incorrect format", "prettyprint", true},
		{"Hyphen format", "pretty-format", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if tt.expectErr && err == nil {
				t.Errorf("ValidateOutputFormat(%s) expected error but got none", tt.format)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("ValidateOutputFormat(%s) unexpected error = %v", tt.format, err)
			}
		})
	}
}

func TestValidateOutputFormatErrorMessage(t *testing.T) {
	err := ValidateOutputFormat("xml")
	if err == nil {
		t.Fatal("Expected an error for xml")
	}
	for _, f := range append(OutputFormats(), `"xml"`) {
		if !strings.Contains(err.Error(), f) {
			t.Errorf("Error %q should mention %s", err, f)
		}
	}
}
