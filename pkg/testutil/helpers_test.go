package testutil

import (
	"fmt"
	"testing"

	"github.com/iwvelando/finance-calculators/internal/calculator"
)

func sample(name string, payment float64) calculator.Result {
	return calculator.Result{
		Name:    name,
		Kind:    "loan",
		Summary: []calculator.Metric{{Key: "payment", Value: payment, Unit: calculator.UnitCurrency}},
	}
}

func TestFindResult(t *testing.T) {
	results := []calculator.Result{
		sample("Car A", 1000),
		sample("Car B", 2000),
		sample("Another Car", 3000),
	}

	tests := []struct {
		name        string
		searchName  string
		expectFound bool
		expected    float64
	}{
		{"Find existing result A", "Car A", true, 1000},
		{"Find existing result B", "Car B", true, 2000},
		{"Find result with longer name", "Another Car", true, 3000},
		{"Search for non-existent result", "Non-existent", false, 0},
		{"Empty search name", "", false, 0},
		{"Case sensitive search", "car a", false, 0},
		{"Partial name match", "Car", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindResult(results, tt.searchName)
			if !tt.expectFound {
				if result != nil {
					t.Errorf("FindResult() expected nil for '%s' but got '%s'", tt.searchName, result.Name)
				}
				return
			}
			if result == nil {
				t.Fatalf("FindResult() expected to find '%s' but got nil", tt.searchName)
			}
			if v, _ := result.Value("payment"); v != tt.expected {
				t.Errorf("FindResult() returned payment %v, expected %v", v, tt.expected)
			}
		})
	}
}

func TestFindResultNilAndEmpty(t *testing.T) {
	if FindResult(nil, "Any") != nil {
		t.Error("FindResult() with nil results should return nil")
	}
	if FindResult([]calculator.Result{}, "Any") != nil {
		t.Error("FindResult() with empty results should return nil")
	}
}

func TestFindResultReturnsFirstMatchPointer(t *testing.T) {
	results := []calculator.Result{sample("Duplicate", 1000), sample("Duplicate", 2000)}

	found := FindResult(results, "Duplicate")
	if found != &results[0] {
		t.Fatal("FindResult() should return a pointer to the first matching element")
	}
	found.Notes = append(found.Notes, "changed")
	if len(results[0].Notes) != 1 {
		t.Error("Modifying through returned pointer should modify original")
	}
}

func TestMetricValue(t *testing.T) {
	results := make([]calculator.Result, 100)
	for i := range results {
		results[i] = sample(fmt.Sprintf("Loan %d", i), float64(i*100))
	}

	if v, ok := MetricValue(results, "Loan 50", "payment"); !ok || v != 5000 {
		t.Errorf("MetricValue() = %v, %v", v, ok)
	}
	if _, ok := MetricValue(results, "Loan 50", "missing"); ok {
		t.Error("MetricValue() found a missing metric")
	}
	if _, ok := MetricValue(results, "Loan 500", "payment"); ok {
		t.Error("MetricValue() found a missing result")
	}
}
