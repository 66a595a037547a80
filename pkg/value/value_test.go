package value_test

import (
	"errors"
	"math"
	"testing"

	"github.com/thomasrohde/mini/pkg/value"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text    string
		want    string
		isFloat bool
	}{
		{"0", "0", false},
		{"42", "42", false},
		{"3.14", "3.14", true},
		{"2.0", "2.0", true},
		{"99999999999999999999", "1e+20", true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			n, err := value.Parse(tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.IsFloat() != tt.isFloat {
				t.Errorf("IsFloat() = %v, want %v", n.IsFloat(), tt.isFloat)
			}
			if got := n.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		value    value.Number
		expected bool
	}{
		{value.Int(0), false},
		{value.Int(1), true},
		{value.Int(-1), true},
		{value.Float(0), false},
		{value.Float(0.5), true},
		{value.Float(math.NaN()), true},
	}

	for _, tt := range tests {
		if got := tt.value.Truthy(); got != tt.expected {
			t.Errorf("Truthy(%s) = %v, want %v", tt.value, got, tt.expected)
		}
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		value value.Number
		want  string
	}{
		{value.Int(7), "7"},
		{value.Float(2.0), "2"},
		{value.Float(-0.0), "0"},
		{value.Float(2.5), "2.5"},
		{value.Float(0.1 + 0.2), "0.30000000000000004"},
		{value.Float(1e20), "100000000000000000000"},
		{value.Float(1e-5), "1e-05"},
		{value.Float(math.Inf(1)), "inf"},
		{value.Float(math.NaN()), "nan"},
	}

	for _, tt := range tests {
		if got := tt.value.Text(); got != tt.want {
			t.Errorf("Text() = %q, want %q", got, tt.want)
		}
	}
}

func TestDisplayKeepsIntegralFloatsAsInts(t *testing.T) {
	d := value.Float(6).Display()
	if d.IsFloat() {
		t.Fatalf("expected integer display value, got float %s", d)
	}
	if i, _ := d.Int64(); i != 6 {
		t.Errorf("got %d, want 6", i)
	}
}

func TestArithmetic(t *testing.T) {
	i, f := value.Int, value.Float
	tests := []struct {
		name string
		got  value.Number
		want string
	}{
		{"int add", value.Add(i(2), i(3)), "5"},
		{"mixed add promotes", value.Add(i(2), f(0.5)), "2.5"},
		{"int sub", value.Sub(i(2), i(5)), "-3"},
		{"int mul", value.Mul(i(6), i(7)), "42"},
		{"mixed mul", value.Mul(i(2), f(1.5)), "3.0"},
		{"add overflow promotes", value.Add(i(math.MaxInt64), i(1)), "9.223372036854776e+18"},
		{"mul overflow promotes", value.Mul(i(math.MaxInt64), i(2)), "1.8446744073709552e+19"},
		{"neg", value.Neg(i(4)), "-4"},
		{"neg min int", value.Neg(i(math.MinInt64)), "9.223372036854776e+18"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if s := tt.got.String(); s != tt.want {
				t.Errorf("got %s, want %s", s, tt.want)
			}
		})
	}
}

func TestDiv(t *testing.T) {
	n, err := value.Div(value.Int(6), value.Int(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !n.IsFloat() || n.Float64() != 2 {
		t.Errorf("6 / 3 = %s, want 2.0", n)
	}

	n, err = value.Div(value.Int(7), value.Int(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Float64() != 3.5 {
		t.Errorf("7 / 2 = %s, want 3.5", n)
	}

	for _, zero := range []value.Number{value.Int(0), value.Float(0)} {
		if _, err := value.Div(value.Int(5), zero); !errors.Is(err, value.ErrDivisionByZero) {
			t.Errorf("5 / %s: got %v, want ErrDivisionByZero", zero, err)
		}
	}
}

func TestModIsFloored(t *testing.T) {
	tests := []struct {
		a, b value.Number
		want string
	}{
		{value.Int(7), value.Int(3), "1"},
		{value.Int(-7), value.Int(3), "2"},
		{value.Int(7), value.Int(-3), "-2"},
		{value.Float(7.5), value.Int(2), "1.5"},
		{value.Float(-7.5), value.Int(2), "0.5"},
	}

	for _, tt := range tests {
		got, err := value.Mod(tt.a, tt.b)
		if err != nil {
			t.Fatalf("%s %% %s: unexpected error: %v", tt.a, tt.b, err)
		}
		if got.String() != tt.want {
			t.Errorf("%s %% %s = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}

	if _, err := value.Mod(value.Int(1), value.Int(0)); !errors.Is(err, value.ErrDivisionByZero) {
		t.Errorf("1 %% 0: got %v, want ErrDivisionByZero", err)
	}
}

func TestPow(t *testing.T) {
	tests := []struct {
		a, b value.Number
		want string
	}{
		{value.Int(2), value.Int(10), "1024"},
		{value.Int(2), value.Int(0), "1"},
		{value.Int(2), value.Int(-1), "0.5"},
		{value.Float(4), value.Float(0.5), "2.0"},
		{value.Int(-8), value.Int(3), "-512"},
		{value.Int(10), value.Int(20), "1e+20"},
	}

	for _, tt := range tests {
		got, err := value.Pow(tt.a, tt.b)
		if err != nil {
			t.Fatalf("%s ** %s: unexpected error: %v", tt.a, tt.b, err)
		}
		if got.String() != tt.want {
			t.Errorf("%s ** %s = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}

	if _, err := value.Pow(value.Int(0), value.Int(-1)); !errors.Is(err, value.ErrDivisionByZero) {
		t.Errorf("0 ** -1: got %v, want ErrDivisionByZero", err)
	}
	if _, err := value.Pow(value.Int(-8), value.Float(0.5)); !errors.Is(err, value.ErrDomain) {
		t.Errorf("-8 ** 0.5: got %v, want ErrDomain", err)
	}
}

func TestComparisons(t *testing.T) {
	nan := value.Float(math.NaN())
	if !value.Equal(value.Int(2), value.Float(2)) {
		t.Error("2 == 2.0 should be true")
	}
	if value.Equal(nan, nan) {
		t.Error("nan == nan should be false")
	}
	if !value.Less(value.Int(3), value.Float(3.5)) {
		t.Error("3 < 3.5 should be true")
	}
	if value.LessEqual(nan, value.Int(1)) {
		t.Error("nan <= 1 should be false")
	}
	if !value.LessEqual(value.Int(5), value.Int(5)) {
		t.Error("5 <= 5 should be true")
	}
	if b := value.Bool(true); b.String() != "1" {
		t.Errorf("Bool(true) = %s, want 1", b)
	}
}
