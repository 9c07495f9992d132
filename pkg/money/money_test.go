package money

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestFromFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected Cents
	}{
		{"Whole dollars", 200000, 20000000},
		{"Two decimals", 1199.10, 119910},
		{"Binary drift at midpoint", 1.005, 101},
		{"Round down below midpoint", 1.234, 123},
		{"Negative amount", -12345.678, -1234568},
		{"Zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromFloat(tt.input); got != tt.expected {
				t.Errorf("FromFloat(%v) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCentsString(t *testing.T) {
	tests := []struct {
		input    Cents
		expected string
	}{
		{119910, "1199.10"},
		{5, "0.05"},
		{-123450, "-1234.50"},
		{0, "0.00"},
	}

	for _, tt := range tests {
		if got := tt.input.String(); got != tt.expected {
			t.Errorf("Cents(%d).String() = %q, expected %q", int64(tt.input), got, tt.expected)
		}
	}
}

func TestMulRate(t *testing.T) {
	tests := []struct {
		name     string
		amount   Cents
		rate     float64
		mode     RoundingMode
		expected Cents
	}{
		{"Exact half percent", 20000000, 0.005, RoundDown, 100000},
		{"Floor keeps whole cents", 500000, 0.01575, RoundDown, 7875},
		{"Floor drops fraction", 12345, 0.01, RoundDown, 123},
		{"Nearest rounds up at half", 12350, 0.01, RoundNearest, 124},
		{"Ceiling", 12341, 0.01, RoundUp, 124},
		{"Zero rate", 12345, 0, RoundNearest, 0},
		{"Zero amount", 0, 0.05, RoundNearest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.amount.MulRate(tt.rate, tt.mode); got != tt.expected {
				t.Errorf("MulRate() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestScale(t *testing.T) {
	// A monthly amount spread across daily compounding periods.
	if got := Cents(36500).Scale(12, 365); got != 1200 {
		t.Errorf("Scale() = %d, expected 1200", got)
	}
	if got := Cents(10000).Scale(52, 12); got != 43333 {
		t.Errorf("Scale() = %d, expected 43333", got)
	}
	if got := Cents(10000).Scale(1, 0); got != 0 {
		t.Errorf("Scale() with zero denominator = %d, expected 0", got)
	}
}

func TestFloat64RoundTrip(t *testing.T) {
	c := FromFloat(19671.51)
	if math.Abs(c.Float64()-19671.51) > 1e-9 {
		t.Errorf("Float64() = %v, expected 19671.51", c.Float64())
	}
}

func TestFitsFloat(t *testing.T) {
	if FitsFloat(math.NaN()) || FitsFloat(math.Inf(1)) {
		t.Error("FitsFloat() accepted a non-finite value")
	}
	if !FitsFloat(1e12) {
		t.Error("FitsFloat() rejected a realistic amount")
	}
	if FitsFloat(1e20) || FitsFloat(1e12+1) {
		t.Error("FitsFloat() accepted an amount beyond MaxAmount")
	}
}

func TestFromFloatMode(t *testing.T) {
	tests := []struct {
		name     string
		cents    float64
		mode     RoundingMode
		expected Cents
		err      bool
	}{
		{"Nearest", 202261.7, RoundNearest, 202262, false},
		{"Up", 202261.01, RoundUp, 202262, false},
		{"Down", 202261.99, RoundDown, 202261, false},
		{"At the limit", float64(MaxAmount), RoundNearest, MaxAmount, false},
		{"Beyond the limit", float64(MaxAmount) + 1, RoundUp, 0, true},
		{"Far beyond int64", 1e25, RoundNearest, 0, true},
		{"Negative beyond the limit", -1e19, RoundNearest, 0, true},
		{"NaN", math.NaN(), RoundNearest, 0, true},
		{"Infinity", math.Inf(1), RoundNearest, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromFloatMode(tt.cents, tt.mode)
			if tt.err {
				if !errors.Is(err, ErrOutOfRange) {
					t.Fatalf("FromFloatMode() error = %v, expected ErrOutOfRange", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromFloatMode() unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("FromFloatMode() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestMulRateChecked(t *testing.T) {
	got, err := Cents(12350).MulRateChecked(0.01, RoundNearest)
	if err != nil || got != 124 {
		t.Errorf("MulRateChecked() = %d, %v; expected 124", got, err)
	}
	if _, err := (MaxAmount / 2).MulRateChecked(2.5, RoundNearest); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("MulRateChecked() error = %v, expected ErrOutOfRange", err)
	}
	// The product would wrap int64 if it were not checked.
	if _, err := MaxAmount.MulRateChecked(1e6, RoundNearest); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("MulRateChecked() error = %v, expected ErrOutOfRange", err)
	}
	if _, err := Cents(100).MulRateChecked(math.Inf(1), RoundNearest); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("MulRateChecked() accepted an infinite rate: %v", err)
	}
}

func TestAddChecked(t *testing.T) {
	got, err := AddChecked(1, 2, 3)
	if err != nil || got != 6 {
		t.Errorf("AddChecked() = %d, %v; expected 6", got, err)
	}
	if _, err := AddChecked(MaxAmount, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("AddChecked() error = %v, expected ErrOutOfRange", err)
	}
	if _, err := AddChecked(Cents(math.MaxInt64), 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("AddChecked() accepted an operand beyond MaxAmount: %v", err)
	}
	if !MaxAmount.InRange() || (MaxAmount + 1).InRange() || (-MaxAmount - 1).InRange() {
		t.Error("InRange() disagrees with MaxAmount")
	}
}

func TestSumAndAbs(t *testing.T) {
	if Sum(1, 2, 3) != 6 {
		t.Error("Sum() did not add all amounts")
	}
	if Cents(-7).Abs() != 7 {
		t.Error("Abs() did not negate")
	}
}

func TestJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Balance Cents `json:"balance"`
	}{Balance: 123450})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"balance":1234.50}` {
		t.Errorf("Marshal() = %s", data)
	}

	var decoded struct {
		A Cents `json:"a"`
		B Cents `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a": 19.995, "b": "250"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.A != 2000 || decoded.B != 25000 {
		t.Errorf("Unmarshal() = %+v", decoded)
	}
	if err := json.Unmarshal([]byte(`{"a": true}`), &decoded); err == nil {
		t.Error("Unmarshal() accepted a non-numeric amount")
	}

	if err := json.Unmarshal([]byte(`{"a": null}`), &decoded); err != nil {
		t.Errorf("Unmarshal() rejected null: %v", err)
	}
	if decoded.A != 2000 {
		t.Errorf("Unmarshal() of null changed the amount to %d", decoded.A)
	}

	for _, amount := range []string{"1e20", "-1e20", `"1000000000000.01"`} {
		var c Cents
		if err := json.Unmarshal([]byte(amount), &c); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Unmarshal(%s) error = %v, expected ErrOutOfRange", amount, err)
		}
	}
	var c Cents
	if err := json.Unmarshal([]byte("1000000000000"), &c); err != nil || c != MaxAmount {
		t.Errorf("Unmarshal() at the limit = %d, %v", c, err)
	}
}
