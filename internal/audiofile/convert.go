package audiofile

import (
	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
)

// DownmixMono64 averages interleaved channels into a mono float64 stream.
func DownmixMono64(interleaved []float32, channels int) []float64 {
	if channels < 1 {
		return nil
	}
	n := len(interleaved) / channels
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(interleaved[i*channels+c])
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// MatchRate brings a mono stream from one sample rate to another. Same-rate
// input is returned as is.
func MatchRate(in []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}
