package transcribe

import (
	"math"
	"sort"

	"github.com/xkazm04/retone/score"
)

// Decoding thresholds. A note needs an attack on the onset matrix and
// sustained presence on the frame matrix to count.
const (
	activationThreshold = 0.5
	onsetThreshold      = 0.3
	minNoteFrames       = 5
)

// decodeNotes converts concatenated activations into note events. A note
// starts at a rising onset crossing whose frame activation is high enough,
// runs while frame activation holds, and splits when a new onset re-triggers
// the same bin. Notes shorter than minNoteFrames are dropped. The result is
// sorted chronologically, ties broken by pitch.
func decodeNotes(a Activations) []score.Note {
	numFrames := len(a.Frames)
	var notes []score.Note

	for bin := 0; bin < PitchBins; bin++ {
		for t := 0; t < numFrames; t++ {
			if a.Onsets[t][bin] < onsetThreshold {
				continue
			}
			if t > 0 && a.Onsets[t-1][bin] >= onsetThreshold {
				continue
			}
			if a.Frames[t][bin] < activationThreshold {
				continue
			}

			end := t + 1
			for end < numFrames && a.Frames[end][bin] >= activationThreshold {
				if a.Onsets[end][bin] >= onsetThreshold && a.Onsets[end-1][bin] < onsetThreshold {
					break
				}
				end++
			}
			if end-t < minNoteFrames {
				continue
			}

			pitch := MinPitch + bin
			if bend := meanBend(a, bin, t, end); math.Abs(bend) >= 0.5 {
				pitch = score.EffectivePitch(pitch, int(math.Round(bend)))
			}

			notes = append(notes, score.Note{
				Pitch:    pitch,
				Start:    frameTime(t),
				Duration: frameTime(end) - frameTime(t),
				Velocity: velocityFrom(meanActivation(a, bin, t, end)),
			})
		}
	}

	sort.Slice(notes, func(i, j int) bool {
		if notes[i].Start != notes[j].Start {
			return notes[i].Start < notes[j].Start
		}
		return notes[i].Pitch < notes[j].Pitch
	})
	return notes
}

// frameTime converts a frame index to seconds.
func frameTime(frame int) float64 {
	return float64(frame) * FrameHop / ModelSampleRate
}

func meanActivation(a Activations, bin, from, to int) float64 {
	sum := 0.0
	for t := from; t < to; t++ {
		sum += float64(a.Frames[t][bin])
	}
	return sum / float64(to-from)
}

func meanBend(a Activations, bin, from, to int) float64 {
	sum := 0.0
	for t := from; t < to; t++ {
		sum += float64(a.Bends[t][bin])
	}
	return sum / float64(to-from)
}

func velocityFrom(activation float64) int {
	v := int(math.Round(activation * 127.0))
	if v < 1 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return v
}
