// Package irsynth generates the synthetic room impulse response used by the
// reverb send bus. The IR is wet-only: no direct-path impulse, since the dry
// signal is carried on its own bus and summed by the caller.
package irsynth

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-approx"
)

// Config controls room IR generation. The same seed always yields the same
// response, which keeps offline rendering reproducible.
type Config struct {
	SampleRate int
	DurationS  float64
	Seed       int64

	PreDelayMS  float64 // silence before the first reflection arrives
	EarlyCount  int     // discrete early reflection taps
	EarlyLevel  float64
	LateLevel   float64 // diffuse tail level
	StereoWidth float64 // 0 = mono taps, 1 = full-width panning
	LowDecayS   float64 // tail decay time below the damping transition
	HighDecayS  float64 // tail decay time above it
	FadeOutS    float64 // cosine fade at the end; 0 = none

	NormalizePeak float64
}

// DefaultConfig returns a medium-room response suited to a send bus.
func DefaultConfig() Config {
	return Config{
		SampleRate:    44100,
		DurationS:     1.8,
		Seed:          1,
		PreDelayMS:    12.0,
		EarlyCount:    20,
		EarlyLevel:    0.5,
		LateLevel:     0.08,
		StereoWidth:   0.7,
		LowDecayS:     1.4,
		HighDecayS:    0.35,
		FadeOutS:      0.02,
		NormalizePeak: 0.5,
	}
}

func (c *Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.PreDelayMS < 0 {
		return fmt.Errorf("pre-delay must be >= 0")
	}
	if c.EarlyCount < 0 {
		return fmt.Errorf("early count must be >= 0")
	}
	if c.EarlyLevel < 0 {
		return fmt.Errorf("early level must be >= 0")
	}
	if c.LateLevel < 0 {
		return fmt.Errorf("late level must be >= 0")
	}
	if c.StereoWidth < 0 {
		return fmt.Errorf("stereo width must be >= 0")
	}
	if c.LowDecayS <= 0 || c.HighDecayS <= 0 {
		return fmt.Errorf("decay seconds must be > 0")
	}
	if c.FadeOutS < 0 {
		return fmt.Errorf("fade-out must be >= 0")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// Generate synthesizes the stereo room impulse response for cfg.
func Generate(cfg Config) ([]float32, []float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	n := int(math.Round(cfg.DurationS * float64(cfg.SampleRate)))
	if n < 1 {
		n = 1
	}
	left := make([]float64, n)
	right := make([]float64, n)

	rng := rand.New(rand.NewSource(cfg.Seed))
	preDelay := int(cfg.PreDelayMS / 1000.0 * float64(cfg.SampleRate))
	if preDelay >= n {
		preDelay = n - 1
	}

	// Early reflection cluster within 60 ms after the pre-delay.
	for i := 0; i < cfg.EarlyCount; i++ {
		t := 0.060 * rng.Float64()
		idx := preDelay + int(t*float64(cfg.SampleRate))
		if idx < 0 || idx >= n {
			continue
		}
		amp := cfg.EarlyLevel * (0.3 + 0.7*rng.Float64()) * math.Exp(-t*22.0)
		pan := (rng.Float64()*2.0 - 1.0) * cfg.StereoWidth
		left[idx] += amp * (1.0 - 0.5*pan)
		right[idx] += amp * (1.0 + 0.5*pan)
	}

	// Diffuse tail: decorrelated two-band filtered noise with separate
	// decay envelopes per band.
	if cfg.LateLevel > 0 {
		lpL, lpR := 0.0, 0.0
		hpL, hpR := 0.0, 0.0
		for i := preDelay; i < n; i++ {
			t := float32(i-preDelay) / float32(cfg.SampleRate)
			envLow := float64(approx.FastExp(-t / float32(cfg.LowDecayS)))
			envHigh := float64(approx.FastExp(-t / float32(cfg.HighDecayS)))

			nL := rng.NormFloat64()
			nR := rng.NormFloat64()

			lpL = 0.985*lpL + 0.015*nL
			lpR = 0.985*lpR + 0.015*nR

			hpL = 0.15*nL - 0.15*hpL
			hpR = 0.15*nR - 0.15*hpR

			left[i] += cfg.LateLevel * (envLow*lpL + 0.4*envHigh*hpL)
			right[i] += cfg.LateLevel * (envLow*lpR + 0.4*envHigh*hpR)
		}
	}

	removeDC(left, 0.995)
	removeDC(right, 0.995)
	fadeOut(left, cfg.FadeOutS, cfg.SampleRate)
	fadeOut(right, cfg.FadeOutS, cfg.SampleRate)

	peak := maxAbs(left)
	if rp := maxAbs(right); rp > peak {
		peak = rp
	}
	if peak < 1e-12 {
		peak = 1e-12
	}
	s := cfg.NormalizePeak / peak
	outL := make([]float32, n)
	outR := make([]float32, n)
	for i := 0; i < n; i++ {
		outL[i] = float32(left[i] * s)
		outR[i] = float32(right[i] * s)
	}
	return outL, outR, nil
}

func removeDC(x []float64, r float64) {
	if len(x) == 0 {
		return
	}
	prevIn := 0.0
	prevOut := 0.0
	for i := range x {
		y := x[i] - prevIn + r*prevOut
		prevIn = x[i]
		prevOut = y
		x[i] = y
	}
}

func fadeOut(buf []float64, fadeS float64, sampleRate int) {
	if fadeS <= 0 || len(buf) == 0 {
		return
	}
	fadeSamples := int(math.Round(fadeS * float64(sampleRate)))
	if fadeSamples > len(buf) {
		fadeSamples = len(buf)
	}
	start := len(buf) - fadeSamples
	for i := 0; i < fadeSamples; i++ {
		t := float64(i) / float64(fadeSamples)
		buf[start+i] *= 0.5 * (1.0 + math.Cos(t*math.Pi))
	}
}

func maxAbs(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		a := math.Abs(v)
		if a > m {
			m = a
		}
	}
	return m
}
