package transcribe

import (
	"context"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// SpectralModel is the built-in detection model: a short-time Fourier
// analyzer with harmonic summation over semitone bins. It trades the accuracy
// of a learned model for having no external weights, and emits activations in
// the standard geometry so the decoding path is identical either way.
type SpectralModel struct {
	window    int
	chunkRows int
}

// NewSpectralModel returns the analyzer with its standard 2048-sample window.
func NewSpectralModel() *SpectralModel {
	return &SpectralModel{window: 2048, chunkRows: 256}
}

// Transcribe analyzes mono audio at ModelSampleRate and streams activation
// chunks through emit.
func (m *SpectralModel) Transcribe(ctx context.Context, mono []float32, emit func(Activations) error) error {
	numFrames := 0
	if len(mono) >= m.window {
		numFrames = 1 + (len(mono)-m.window)/FrameHop
	}
	if numFrames == 0 {
		return nil
	}

	plan, err := algofft.NewPlanReal64(m.window)
	if err != nil {
		return err
	}

	hann := make([]float64, m.window)
	for i := range hann {
		hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(m.window-1))
	}

	binHz := float64(ModelSampleRate) / float64(m.window)
	nBins := m.window/2 + 1

	// Per-pitch fundamental frequencies and, per harmonic, the inclusive FFT
	// bin range lying within half a semitone of that harmonic. Empty ranges
	// (possible at the lowest pitches, where a semitone is narrower than one
	// bin) fall back to the single nearest bin.
	type binRange struct{ lo, hi int }
	f0 := make([]float64, PitchBins)
	ranges := make([][harmonics]binRange, PitchBins)
	for p := 0; p < PitchBins; p++ {
		f0[p] = pitchFreq(MinPitch + p)
		for h := 1; h <= harmonics; h++ {
			fc := f0[p] * float64(h)
			lo := int(math.Ceil(fc * semitoneDown / binHz))
			hi := int(math.Floor(fc * semitoneUp / binHz))
			if lo > hi {
				lo = int(math.Round(fc / binHz))
				hi = lo
			}
			if lo < 1 {
				lo = 1
			}
			if hi > nBins-2 {
				hi = nBins - 2
			}
			if lo > hi {
				lo, hi = 1, 0 // harmonic above Nyquist: contributes nothing
			}
			ranges[p][h-1] = binRange{lo, hi}
		}
	}

	buf := make([]float64, m.window)
	spec := make([]complex128, nBins)
	mags := make([]float64, nBins)

	salience := make([][]float64, numFrames)
	bends := make([][]float32, numFrames)
	globalMax := 0.0

	for f := 0; f < numFrames; f++ {
		if f%128 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		pos := f * FrameHop
		for i := 0; i < m.window; i++ {
			buf[i] = float64(mono[pos+i]) * hann[i]
		}
		plan.Forward(spec, buf)
		for k := range mags {
			mags[k] = cmplx.Abs(spec[k])
		}

		sal := make([]float64, PitchBins)
		bend := make([]float32, PitchBins)
		for p := 0; p < PitchBins; p++ {
			var best [harmonics]float64
			var bestBin [harmonics]int
			for h := 0; h < harmonics; h++ {
				r := ranges[p][h]
				bestBin[h] = -1
				for k := r.lo; k <= r.hi; k++ {
					if mags[k] > best[h] {
						best[h], bestBin[h] = mags[k], k
					}
				}
			}
			fund := best[0]
			overtones := 0.5*best[1] + 0.25*best[2]
			s := fund + overtones
			// Overtone energy without a matching fundamental is the ghost of
			// a note an octave or a twelfth below, not a note at this pitch.
			if fund < 0.3*overtones {
				s *= 0.2
			}
			sal[p] = s
			bend[p] = bendAt(mags, bestBin[0], fund, binHz, f0[p])
		}

		// Keep only per-frame local maxima at full strength; a bin beaten by
		// a neighboring semitone is almost always spectral leakage.
		for p := 0; p < PitchBins; p++ {
			if p > 0 && sal[p-1] > sal[p] || p < PitchBins-1 && sal[p+1] > sal[p] {
				sal[p] *= 0.25
			}
			if sal[p] > globalMax {
				globalMax = sal[p]
			}
		}

		salience[f] = sal
		bends[f] = bend
	}

	if globalMax < 1e-12 {
		globalMax = 1e-12
	}

	frames := make([][]float32, numFrames)
	onsets := make([][]float32, numFrames)
	for f := 0; f < numFrames; f++ {
		row := make([]float32, PitchBins)
		for p := 0; p < PitchBins; p++ {
			// Square-root compression widens the usable dynamic range above
			// the activation threshold.
			row[p] = float32(math.Sqrt(salience[f][p] / globalMax))
		}
		frames[f] = row

		onsetRow := make([]float32, PitchBins)
		for p := 0; p < PitchBins; p++ {
			var rise float32
			if f == 0 {
				rise = row[p]
			} else {
				rise = (row[p] - frames[f-1][p]) * 3.0
			}
			if rise < 0 {
				rise = 0
			}
			if rise > 1 {
				rise = 1
			}
			onsetRow[p] = rise
		}
		onsets[f] = onsetRow
	}

	for start := 0; start < numFrames; start += m.chunkRows {
		end := start + m.chunkRows
		if end > numFrames {
			end = numFrames
		}
		chunk := Activations{
			Frames: frames[start:end],
			Onsets: onsets[start:end],
			Bends:  bends[start:end],
		}
		if err := emit(chunk); err != nil {
			return err
		}
	}
	return nil
}

const harmonics = 3

// Half-semitone frequency ratios bounding one pitch bin.
var (
	semitoneDown = math.Pow(2, -0.5/12.0)
	semitoneUp   = math.Pow(2, 0.5/12.0)
)

// pitchFreq returns the equal-temperament frequency of a MIDI pitch.
func pitchFreq(pitch int) float64 {
	return 440.0 * math.Pow(2, float64(pitch-69)/12.0)
}

// bendAt estimates the offset of the true spectral peak from the pitch
// center in semitones, using parabolic interpolation around the peak bin.
func bendAt(mags []float64, peakBin int, peakMag, binHz, f0 float64) float32 {
	if peakBin < 1 || peakBin > len(mags)-2 || peakMag < 1e-12 {
		return 0
	}
	alpha := mags[peakBin-1]
	beta := mags[peakBin]
	gamma := mags[peakBin+1]
	den := alpha - 2*beta + gamma
	delta := 0.0
	if math.Abs(den) > 1e-12 {
		delta = 0.5 * (alpha - gamma) / den
		if delta > 0.5 {
			delta = 0.5
		}
		if delta < -0.5 {
			delta = -0.5
		}
	}
	freq := (float64(peakBin) + delta) * binHz
	if freq <= 0 {
		return 0
	}
	semis := 12.0 * math.Log2(freq/f0)
	if semis > 1 {
		semis = 1
	}
	if semis < -1 {
		semis = -1
	}
	return float32(semis)
}
