package score

import (
	"math"
	"testing"
)

func TestCurveValues(t *testing.T) {
	cases := []struct {
		curve VelocityCurve
		in    float64
		want  float64
	}{
		{CurveLinear, 0, 0},
		{CurveLinear, 64, 64},
		{CurveLinear, 127, 127},
		{CurveSoft, 127, 127},
		{CurveSoft, 0, 0},
		{CurveHard, 127, 127},
		{CurveHard, 0, 0},
		{CurveCompressed, 64, 64},
		{CurveCompressed, 0, 32},
		{CurveCompressed, 127, 95.5},
	}
	for _, c := range cases {
		got := c.curve.Apply(c.in)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("%v.Apply(%v) = %v, want %v", c.curve, c.in, got, c.want)
		}
	}

	// Spot-check the soft and hard formulas away from the endpoints.
	if got, want := CurveSoft.Apply(32), math.Sqrt(32.0/127.0)*127.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("soft(32) = %v, want %v", got, want)
	}
	if got, want := CurveHard.Apply(100), (100.0/127.0)*(100.0/127.0)*127.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("hard(100) = %v, want %v", got, want)
	}
}

func TestCurveShapes(t *testing.T) {
	// Soft lifts the midrange, hard lowers it, compressed squeezes both ends.
	if CurveSoft.Apply(64) <= 64 {
		t.Error("soft curve should lift mid velocities")
	}
	if CurveHard.Apply(64) >= 64 {
		t.Error("hard curve should lower mid velocities")
	}
	if CurveCompressed.Apply(10) <= 10 {
		t.Error("compressed curve should raise quiet velocities")
	}
	if CurveCompressed.Apply(120) >= 120 {
		t.Error("compressed curve should lower loud velocities")
	}
}

func TestParseVelocityCurve(t *testing.T) {
	for _, c := range []VelocityCurve{CurveLinear, CurveSoft, CurveHard, CurveCompressed} {
		got, err := ParseVelocityCurve(c.String())
		if err != nil {
			t.Fatalf("ParseVelocityCurve(%q): %v", c.String(), err)
		}
		if got != c {
			t.Errorf("ParseVelocityCurve(%q) = %v, want %v", c.String(), got, c)
		}
	}
	if _, err := ParseVelocityCurve("punchy"); err == nil {
		t.Error("expected error for unknown curve name")
	}
}
