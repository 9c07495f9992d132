// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/finance-calculators/internal/calculator"
)

// FindResult finds a calculation result by name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []calculator.Result, name string) *calculator.Result {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// MetricValue returns the named summary metric of the named result.
func MetricValue(results []calculator.Result, name, key string) (float64, bool) {
	result := FindResult(results, name)
	if result == nil {
		return 0, false
	}
	return result.Value(key)
}
