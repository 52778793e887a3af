package score

import (
	"fmt"
	"math"
)

// VelocityCurve remaps note velocities for dynamic-range shaping. Curves do
// not clamp; callers clamp results to the 1..127 playable range.
type VelocityCurve int

const (
	// CurveLinear passes velocities through unchanged.
	CurveLinear VelocityCurve = iota
	// CurveSoft lifts quiet notes: sqrt(v/127)*127.
	CurveSoft
	// CurveHard expands dynamics toward loud notes: (v/127)^2*127.
	CurveHard
	// CurveCompressed pulls velocities toward the midpoint: 64+(v-64)*0.5.
	CurveCompressed
)

// Apply evaluates the curve at velocity v (nominally 0..127).
func (c VelocityCurve) Apply(v float64) float64 {
	switch c {
	case CurveSoft:
		return math.Sqrt(v/127.0) * 127.0
	case CurveHard:
		return (v / 127.0) * (v / 127.0) * 127.0
	case CurveCompressed:
		return 64.0 + (v-64.0)*0.5
	default:
		return v
	}
}

func (c VelocityCurve) String() string {
	switch c {
	case CurveLinear:
		return "linear"
	case CurveSoft:
		return "soft"
	case CurveHard:
		return "hard"
	case CurveCompressed:
		return "compressed"
	}
	return fmt.Sprintf("VelocityCurve(%d)", int(c))
}

// ParseVelocityCurve resolves a curve by its name.
func ParseVelocityCurve(name string) (VelocityCurve, error) {
	switch name {
	case "linear":
		return CurveLinear, nil
	case "soft":
		return CurveSoft, nil
	case "hard":
		return CurveHard, nil
	case "compressed":
		return CurveCompressed, nil
	}
	return CurveLinear, fmt.Errorf("unknown velocity curve %q", name)
}
