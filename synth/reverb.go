package synth

import (
	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"

	"github.com/xkazm04/retone/irsynth"
)

const (
	reverbPartSize  = 128
	reverbSendLevel = 0.35
)

// reverbSend is the wet-only room bus: the stereo dry block collapses to a
// mono send that drives a partitioned convolution against a synthesized
// stereo room response. The IR comes from a fixed seed, so every engine at a
// given sample rate produces the same room.
type reverbSend struct {
	left  *dspconv.StreamingOverlapAddT[float32, complex64]
	right *dspconv.StreamingOverlapAddT[float32, complex64]

	send []float32
	outL []float32
	outR []float32
}

func newReverbSend(sampleRate int) (*reverbSend, error) {
	cfg := irsynth.DefaultConfig()
	cfg.SampleRate = sampleRate
	irL, irR, err := irsynth.Generate(cfg)
	if err != nil {
		return nil, err
	}
	return newReverbSendIR(irL, irR)
}

func newReverbSendIR(irL, irR []float32) (*reverbSend, error) {
	left, err := dspconv.NewStreamingOverlapAdd32(irL, reverbPartSize)
	if err != nil {
		return nil, err
	}
	right, err := dspconv.NewStreamingOverlapAdd32(irR, reverbPartSize)
	if err != nil {
		return nil, err
	}
	return &reverbSend{
		left:  left,
		right: right,
		send:  make([]float32, reverbPartSize),
		outL:  make([]float32, reverbPartSize),
		outR:  make([]float32, reverbPartSize),
	}, nil
}

// process convolves one dry block into dstL/dstR. Arbitrary lengths are
// handled in reverbPartSize chunks; a short tail chunk is zero-padded, which
// shifts the stream by at most one part and only on the final block of a
// render.
func (s *reverbSend) process(dstL, dstR, dryL, dryR []float32) {
	n := len(dstL)
	for start := 0; start < n; start += reverbPartSize {
		end := start + reverbPartSize
		if end > n {
			end = n
		}
		blockLen := end - start

		for i := 0; i < blockLen; i++ {
			s.send[i] = reverbSendLevel * 0.5 * (dryL[start+i] + dryR[start+i])
		}
		for i := blockLen; i < reverbPartSize; i++ {
			s.send[i] = 0
		}

		errL := s.left.ProcessBlockTo(s.outL, s.send)
		errR := s.right.ProcessBlockTo(s.outR, s.send)
		if errL != nil || errR != nil {
			for i := 0; i < blockLen; i++ {
				dstL[start+i] = 0
				dstR[start+i] = 0
			}
			continue
		}

		copy(dstL[start:end], s.outL[:blockLen])
		copy(dstR[start:end], s.outR[:blockLen])
	}
}
