package synth

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/xkazm04/retone/dsp"
)

const (
	chorusRateHz    = 0.8
	chorusBaseMS    = 18.0
	chorusDepthMS   = 6.0
	chorusFeedback  = 0.25
	chorusDampHz    = 6000.0
	chorusSendLevel = 0.4
)

// chorusSend is the wet-only doubling bus: one modulated fractional-delay tap
// per channel, the two LFOs in quadrature so the image widens instead of
// wobbling, with damped feedback on each line.
type chorusSend struct {
	lineL *dsp.DelayLine
	lineR *dsp.DelayLine
	toneL *dsp.Biquad
	toneR *dsp.Biquad

	phase     float64
	phaseIncr float64
	baseDelay float64 // samples
	depth     float64 // samples

	fbL float32
	fbR float32
}

func newChorusSend(sampleRate int) *chorusSend {
	sr := float64(sampleRate)
	base := chorusBaseMS * sr / 1000.0
	depth := chorusDepthMS * sr / 1000.0
	size := int(base+depth) + 8
	cutoff := chorusDampHz
	if limit := 0.45 * sr; cutoff > limit {
		cutoff = limit
	}
	return &chorusSend{
		lineL:     dsp.NewDelayLine(size),
		lineR:     dsp.NewDelayLine(size),
		toneL:     dsp.NewLowpass(float32(cutoff), float32(sampleRate), 0.707),
		toneR:     dsp.NewLowpass(float32(cutoff), float32(sampleRate), 0.707),
		phaseIncr: 2 * math.Pi * chorusRateHz / sr,
		baseDelay: base,
		depth:     depth,
	}
}

func (s *chorusSend) process(dstL, dstR, dryL, dryR []float32) {
	for i := range dstL {
		delayL := s.baseDelay + s.depth*math.Sin(s.phase)
		delayR := s.baseDelay + s.depth*math.Cos(s.phase)

		s.lineL.Write(dryL[i] + chorusFeedback*s.fbL)
		s.lineR.Write(dryR[i] + chorusFeedback*s.fbR)

		wetL := s.toneL.Process(s.lineL.ReadFractional(float32(delayL)))
		wetR := s.toneR.Process(s.lineR.ReadFractional(float32(delayR)))

		// Feedback taps flush denormals so a decaying tail cannot stall the
		// audio thread.
		s.fbL = float32(dspcore.FlushDenormals(float64(wetL)))
		s.fbR = float32(dspcore.FlushDenormals(float64(wetR)))

		dstL[i] = chorusSendLevel * wetL
		dstR[i] = chorusSendLevel * wetR

		s.phase += s.phaseIncr
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}
}
