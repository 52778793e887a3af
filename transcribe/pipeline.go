// Package transcribe turns a raw recording into a remappable score: it
// resamples the audio for the detection model, collects the model's streamed
// activations, decodes them into notes, groups the notes into register lanes,
// and estimates a global tempo.
package transcribe

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-audio/audio"

	"github.com/xkazm04/retone/score"
)

// ErrExtractionFailed wraps every failure of the extraction pipeline. No
// partial result accompanies it.
var ErrExtractionFailed = errors.New("extraction failed")

// Extract analyzes a recording and produces the extraction result consumed by
// playback, offline rendering, and export. The buffer may be any rate and
// channel count; only channel 0 is analyzed. A nil model selects the built-in
// spectral analyzer.
func Extract(ctx context.Context, buf *audio.Float32Buffer, m Model) (*score.ExtractionResult, error) {
	if buf == nil || buf.Format == nil || buf.Format.SampleRate <= 0 || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("%w: empty or invalid input buffer", ErrExtractionFailed)
	}
	if m == nil {
		m = NewSpectralModel()
	}

	frames := len(buf.Data) / buf.Format.NumChannels
	duration := float64(frames) / float64(buf.Format.SampleRate)

	mono := Resample(buf, ModelSampleRate)

	acts, err := collect(ctx, m, mono)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	if err := acts.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	notes := decodeNotes(acts)

	var byLane [3][]score.Note
	for _, n := range notes {
		lane := score.ClassifyLane(n.Pitch)
		byLane[lane] = append(byLane[lane], n)
	}

	var tracks []score.Track
	for _, lane := range []score.Lane{score.LaneBass, score.LaneHarmony, score.LaneMelody} {
		laneNotes := byLane[lane]
		if len(laneNotes) == 0 {
			continue
		}
		tracks = append(tracks, score.Track{
			Name:    lane.String(),
			Channel: lane.Channel(),
			Program: lane.DefaultProgram(),
			Notes:   laneNotes,
		})
	}

	onsets := make([]float64, len(notes))
	for i, n := range notes {
		onsets[i] = n.Start
	}

	return &score.ExtractionResult{
		Tracks:   tracks,
		Tempo:    EstimateTempo(onsets),
		Duration: duration,
	}, nil
}
