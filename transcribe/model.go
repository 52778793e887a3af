package transcribe

import (
	"context"
	"fmt"
)

// Geometry of the detection model's output. Every Model implementation must
// emit matrices in this shape; the decoder converts frame indices to seconds
// through it.
const (
	// ModelSampleRate is the fixed input rate the model analyzes at.
	ModelSampleRate = 22050
	// FrameHop is the number of input samples between successive frames.
	FrameHop = 256
	// PitchBins is the number of semitone bins, covering the piano range.
	PitchBins = 88
	// MinPitch is the MIDI pitch of bin 0 (A0).
	MinPitch = 21
)

// Activations are the aligned per-frame matrices a model delivers: one row
// per analysis frame, one column per pitch bin. Frames holds note-presence
// activation in [0,1], Onsets holds attack activation in [0,1], and Bends
// holds the detected pitch offset from the bin center in semitones.
type Activations struct {
	Frames [][]float32
	Onsets [][]float32
	Bends  [][]float32
}

func (a Activations) validate() error {
	if len(a.Onsets) != len(a.Frames) || len(a.Bends) != len(a.Frames) {
		return fmt.Errorf("misaligned activation matrices: frames=%d onsets=%d bends=%d",
			len(a.Frames), len(a.Onsets), len(a.Bends))
	}
	for i := range a.Frames {
		if len(a.Frames[i]) != PitchBins || len(a.Onsets[i]) != PitchBins || len(a.Bends[i]) != PitchBins {
			return fmt.Errorf("frame %d: expected %d pitch bins", i, PitchBins)
		}
	}
	return nil
}

// Model is the pitch-detection boundary. Transcribe analyzes a mono buffer at
// ModelSampleRate and delivers results through emit, which may be called any
// number of times with partial matrices; callers concatenate the deliveries
// in arrival order before decoding. An error from emit aborts the run.
type Model interface {
	Transcribe(ctx context.Context, mono []float32, emit func(Activations) error) error
}

// collect runs the model to completion and concatenates every delivery.
func collect(ctx context.Context, m Model, mono []float32) (Activations, error) {
	var acc Activations
	err := m.Transcribe(ctx, mono, func(chunk Activations) error {
		acc.Frames = append(acc.Frames, chunk.Frames...)
		acc.Onsets = append(acc.Onsets, chunk.Onsets...)
		acc.Bends = append(acc.Bends, chunk.Bends...)
		return nil
	})
	if err != nil {
		return Activations{}, err
	}
	return acc, nil
}
