package value

import (
	"math"
	"strconv"
)

// MarshalJSON writes integers without a decimal point and finite floats in
// their stored form. Non-finite floats have no JSON number form and are
// written as strings.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.isFloat {
		return strconv.AppendInt(nil, n.i, 10), nil
	}
	if math.IsInf(n.f, 0) || math.IsNaN(n.f) {
		return strconv.AppendQuote(nil, formatFloat(n.f)), nil
	}
	return []byte(formatFloat(n.f)), nil
}
