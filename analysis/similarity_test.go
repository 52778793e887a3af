package analysis

import (
	"math"
	"math/rand"
	"testing"
)

func TestCompareIdenticalSignalsScoresNearZero(t *testing.T) {
	sr := 22050
	x := makeDecaySine(sr, 440.0, 1.5, 0.7)
	m := Compare(x, x, sr)
	if m.Score > 0.05 {
		t.Fatalf("expected very low score for identical signals, got %f", m.Score)
	}
	if m.Similarity < 0.85 {
		t.Fatalf("expected high similarity for identical signals, got %f", m.Similarity)
	}
	if m.LagSamples != 0 {
		t.Errorf("LagSamples = %d, want 0", m.LagSamples)
	}
}

func TestCompareDifferentSignalsScoreHigher(t *testing.T) {
	sr := 22050
	a := makeDecaySine(sr, 261.63, 1.8, 0.8)
	b := makeDecaySine(sr, 330.0, 0.8, 0.25)
	m := Compare(a, b, sr)
	if m.Score < 0.25 {
		t.Fatalf("expected higher score for different signals, got %f", m.Score)
	}
	same := Compare(a, a, sr)
	if m.Score <= same.Score {
		t.Errorf("different-signal score %f not above identical-signal score %f", m.Score, same.Score)
	}
}

func TestCompareEmptyInputsAreMaximallyDistant(t *testing.T) {
	cases := []struct {
		name string
		ref  []float64
		cand []float64
		sr   int
	}{
		{"nil ref", nil, makeDecaySine(22050, 440, 0.5, 0.3), 22050},
		{"nil cand", makeDecaySine(22050, 440, 0.5, 0.3), nil, 22050},
		{"bad rate", makeDecaySine(22050, 440, 0.5, 0.3), makeDecaySine(22050, 440, 0.5, 0.3), 0},
		{"all silence", make([]float64, 4096), make([]float64, 4096), 22050},
	}
	for _, c := range cases {
		m := Compare(c.ref, c.cand, c.sr)
		if m.Score != 1.0 || m.Similarity != 0.0 {
			t.Errorf("%s: Score=%f Similarity=%f, want 1/0", c.name, m.Score, m.Similarity)
		}
	}
}

func TestCompareRecoversDelayedCandidate(t *testing.T) {
	sr := 22050
	// Drop the zero first sample so the silence trim leaves both signals
	// starting on real content.
	base := makeDecaySine(sr, 440.0, 1.0, 0.5)[1:]

	// Quiet noise ahead of the real content keeps the silence trim from
	// absorbing the delay, so alignment has to come from the lag estimate.
	const delay = 300
	cand := make([]float64, delay+len(base))
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < delay; i++ {
		cand[i] = 1e-3 + rng.Float64()*1e-3
	}
	copy(cand[delay:], base)

	m := Compare(base, cand, sr)
	if m.LagSamples != -delay {
		t.Fatalf("LagSamples = %d, want %d", m.LagSamples, -delay)
	}
	if m.Score > 0.1 {
		t.Errorf("score after alignment = %f, want near zero", m.Score)
	}
}

func TestEstimateLagFindsPositiveShift(t *testing.T) {
	const (
		n      = 8192
		shift  = 237
		maxLag = 600
	)
	ref := randomSignal(n, 7)
	cand := make([]float64, n)
	copy(cand, ref[shift:])

	got := estimateLag(ref, cand, maxLag)
	if got != shift {
		t.Fatalf("estimateLag() = %d, want %d", got, shift)
	}
}

func TestEstimateLagFindsNegativeShift(t *testing.T) {
	const (
		n      = 8192
		shift  = -191
		maxLag = 600
	)
	ref := randomSignal(n, 11)
	cand := make([]float64, n)
	copy(cand[-shift:], ref)

	got := estimateLag(ref, cand, maxLag)
	if got != shift {
		t.Fatalf("estimateLag() = %d, want %d", got, shift)
	}
}

func TestRMSEnvelopeOfSteadySignal(t *testing.T) {
	x := make([]float64, 1024)
	for i := range x {
		x[i] = 0.5
	}
	env := rmsEnvelope(x, 256, 128)
	if len(env) != 7 {
		t.Fatalf("envelope length = %d, want 7", len(env))
	}
	for i, v := range env {
		if math.Abs(v-0.5) > 1e-9 {
			t.Errorf("env[%d] = %f, want 0.5", i, v)
		}
	}
	if got := rmsEnvelope(x[:100], 256, 128); got != nil {
		t.Errorf("short input envelope = %v, want nil", got)
	}
}

func TestSpectralRMSEDBSeparatesTones(t *testing.T) {
	sr := 22050
	a := makeDecaySine(sr, 440.0, 0.5, 10.0)
	b := makeDecaySine(sr, 554.37, 0.5, 10.0)

	if got := spectralRMSEDB(a, a); got != 0 {
		t.Errorf("identical spectra distance = %f, want 0", got)
	}
	if got := spectralRMSEDB(a, b); got < 1.0 {
		t.Errorf("distinct tone spectra distance = %f, want >= 1", got)
	}
}

func makeDecaySine(sr int, freq float64, durationSec float64, decaySec float64) []float64 {
	n := int(float64(sr) * durationSec)
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sr)
		env := math.Exp(-t / decaySec)
		out[i] = env * math.Sin(2*math.Pi*freq*t)
	}
	return out
}

func randomSignal(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}
