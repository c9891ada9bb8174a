package surface

import (
	"fmt"
	"math"
)

// AxisBounds is a closed (Low, High) range for one plot axis.
type AxisBounds struct {
	Low  float64 `yaml:"low" json:"low"`
	High float64 `yaml:"high" json:"high"`
}

// Validate requires finite values with Low <= High. A zero-height range is
// allowed.
func (b AxisBounds) Validate(axis string) error {
	if math.IsNaN(b.Low) || math.IsInf(b.Low, 0) || math.IsNaN(b.High) || math.IsInf(b.High, 0) {
		return configErr(axis, "bounds must be finite, got %s", b)
	}
	if b.Low > b.High {
		return configErr(axis, "inverted bounds %s", b)
	}
	return nil
}

func (b AxisBounds) Span() float64 { return b.High - b.Low }

// Contains reports whether v lies within the closed range.
func (b AxisBounds) Contains(v float64) bool { return v >= b.Low && v <= b.High }

func (b AxisBounds) String() string {
	return fmt.Sprintf("(%g, %g)", b.Low, b.High)
}

// Symmetric returns (-2|v|, 2|v|), the dynamic z window around a reference
// value. v = 0 yields the degenerate (0, 0).
func Symmetric(v float64) AxisBounds {
	h := 2 * math.Abs(v)
	if h == 0 {
		return AxisBounds{}
	}
	return AxisBounds{Low: -h, High: h}
}
