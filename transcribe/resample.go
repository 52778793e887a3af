package transcribe

import "github.com/go-audio/audio"

// Resample converts a PCM buffer at its native rate into a mono stream at
// targetRate using nearest-neighbor selection: output index i reads source
// frame floor(i*srcRate/targetRate), channel 0 only. There is no interpolation
// and no anti-aliasing filter; the detection front-end tolerates the aliasing.
func Resample(buf *audio.Float32Buffer, targetRate int) []float32 {
	if buf == nil || buf.Format == nil || targetRate <= 0 {
		return nil
	}
	channels := buf.Format.NumChannels
	srcRate := buf.Format.SampleRate
	if channels < 1 || srcRate <= 0 {
		return nil
	}
	frames := len(buf.Data) / channels
	if frames == 0 {
		return nil
	}

	outLen := frames * targetRate / srcRate
	out := make([]float32, outLen)
	for i := 0; i < outLen; i++ {
		src := i * srcRate / targetRate
		out[i] = buf.Data[src*channels]
	}
	return out
}
