// Package value implements the numeric value domain shared by the lexer,
// parser and evaluator.
//
// A Number is either an integer or a floating-point value. Arithmetic between
// the two promotes to float; integer results that overflow int64 promote to
// float as well.
package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/oarkflow/errors"
)

// Sentinel errors returned by arithmetic operations.
var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrDomain         = errors.New("math domain error")
)

// Number is an integer or floating-point value.
type Number struct {
	isFloat bool
	i       int64
	f       float64
}

// Int creates an integer value.
func Int(i int64) Number {
	return Number{i: i}
}

// Float creates a floating-point value.
func Float(f float64) Number {
	return Number{isFloat: true, f: f}
}

// Bool converts a comparison result into 1 or 0.
func Bool(b bool) Number {
	if b {
		return Int(1)
	}
	return Int(0)
}

// Parse converts a numeric literal. Literals containing '.' are floats;
// integer literals that do not fit in int64 become floats.
func Parse(text string) (Number, error) {
	if strings.Contains(text, ".") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Number{}, err
		}
		return Float(f), nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err == nil {
		return Int(i), nil
	}
	f, ferr := strconv.ParseFloat(text, 64)
	if ferr != nil {
		return Number{}, err
	}
	return Float(f), nil
}

// IsFloat reports whether n holds a floating-point value.
func (n Number) IsFloat() bool {
	return n.isFloat
}

// Int64 returns the integer value and true, or 0 and false for floats.
func (n Number) Int64() (int64, bool) {
	if n.isFloat {
		return 0, false
	}
	return n.i, true
}

// Float64 returns n as a float64, converting integers.
func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// Truthy reports whether n is non-zero.
func (n Number) Truthy() bool {
	if n.isFloat {
		return n.f != 0
	}
	return n.i != 0
}

// Display returns the value as it is shown by print: a float with no
// fractional part becomes an integer when it fits in int64.
func (n Number) Display() Number {
	if !n.isFloat || !isIntegral(n.f) {
		return n
	}
	if n.f >= -(1<<63) && n.f < 1<<63 {
		return Int(int64(n.f))
	}
	return n
}

// Text renders the display form of n. Integral floats too large for int64
// are still written without a fractional part.
func (n Number) Text() string {
	d := n.Display()
	if d.isFloat && isIntegral(d.f) {
		return strconv.FormatFloat(d.f, 'f', 0, 64)
	}
	return d.String()
}

// String renders n the way it is stored: floats always carry a decimal point
// or exponent so they stay distinguishable from integers.
func (n Number) String() string {
	if !n.isFloat {
		return strconv.FormatInt(n.i, 10)
	}
	return formatFloat(n.f)
}

func isIntegral(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	// Positional notation for exponents in [-4, 16), scientific otherwise.
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return sci
	}
	out := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

// Neg negates n.
func Neg(n Number) Number {
	if n.isFloat {
		return Float(-n.f)
	}
	if n.i == math.MinInt64 {
		return Float(-float64(n.i))
	}
	return Int(-n.i)
}

// Add returns a + b.
func Add(a, b Number) Number {
	if a.isFloat || b.isFloat {
		return Float(a.Float64() + b.Float64())
	}
	c := a.i + b.i
	if (a.i^c)&(b.i^c) < 0 {
		return Float(float64(a.i) + float64(b.i))
	}
	return Int(c)
}

// Sub returns a - b.
func Sub(a, b Number) Number {
	if a.isFloat || b.isFloat {
		return Float(a.Float64() - b.Float64())
	}
	c := a.i - b.i
	if (a.i^b.i)&(a.i^c) < 0 {
		return Float(float64(a.i) - float64(b.i))
	}
	return Int(c)
}

// Mul returns a * b.
func Mul(a, b Number) Number {
	if a.isFloat || b.isFloat {
		return Float(a.Float64() * b.Float64())
	}
	if c, ok := mulInt(a.i, b.i); ok {
		return Int(c)
	}
	return Float(float64(a.i) * float64(b.i))
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	c := a * b
	if c/b != a {
		return 0, false
	}
	return c, true
}

// Div returns the real quotient a / b, always as a float.
func Div(a, b Number) (Number, error) {
	if !b.Truthy() {
		return Number{}, ErrDivisionByZero
	}
	return Float(a.Float64() / b.Float64()), nil
}

// Mod returns the floored remainder of a / b; the result takes the sign of b.
func Mod(a, b Number) (Number, error) {
	if !b.Truthy() {
		return Number{}, ErrDivisionByZero
	}
	if a.isFloat || b.isFloat {
		x, y := a.Float64(), b.Float64()
		r := math.Mod(x, y)
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
		return Float(r), nil
	}
	r := a.i % b.i
	if r != 0 && (r < 0) != (b.i < 0) {
		r += b.i
	}
	return Int(r), nil
}

// Pow returns a raised to the power b. Integer bases with non-negative
// integer exponents stay integers unless the result overflows.
func Pow(a, b Number) (Number, error) {
	if !a.isFloat && !b.isFloat && b.i >= 0 {
		if r, ok := powInt(a.i, b.i); ok {
			return Int(r), nil
		}
		return Float(math.Pow(float64(a.i), float64(b.i))), nil
	}
	x, y := a.Float64(), b.Float64()
	if x == 0 && y < 0 {
		return Number{}, ErrDivisionByZero
	}
	if x < 0 && !math.IsInf(y, 0) && !math.IsNaN(y) && y != math.Trunc(y) {
		return Number{}, ErrDomain
	}
	return Float(math.Pow(x, y)), nil
}

func powInt(base, exp int64) (int64, bool) {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			r, ok := mulInt(result, base)
			if !ok {
				return 0, false
			}
			result = r
		}
		exp >>= 1
		if exp > 0 {
			b, ok := mulInt(base, base)
			if !ok {
				return 0, false
			}
			base = b
		}
	}
	return result, true
}

// Equal reports a == b. NaN is never equal to anything.
func Equal(a, b Number) bool {
	if !a.isFloat && !b.isFloat {
		return a.i == b.i
	}
	return a.Float64() == b.Float64()
}

// Less reports a < b.
func Less(a, b Number) bool {
	if !a.isFloat && !b.isFloat {
		return a.i < b.i
	}
	return a.Float64() < b.Float64()
}

// LessEqual reports a <= b.
func LessEqual(a, b Number) bool {
	if !a.isFloat && !b.isFloat {
		return a.i <= b.i
	}
	return a.Float64() <= b.Float64()
}
