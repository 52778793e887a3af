// Package render produces the offline mixdown of an extraction result. The
// loop is single-threaded on a virtual clock, so identical inputs always
// yield identical samples, which is what makes exported audio reproducible.
package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/xkazm04/retone/bank"
	"github.com/xkazm04/retone/score"
	"github.com/xkazm04/retone/synth"
)

// ErrAborted wraps a context cancellation that interrupted a render. No
// partial audio accompanies it.
var ErrAborted = errors.New("render aborted")

const (
	chunkFrames = 128
	// tailSeconds rings out releases and the room after the last note.
	tailSeconds = 2.0
)

// engine is the slice of synth.Engine the renderer drives.
type engine interface {
	ProgramChange(channel, program int)
	NoteOn(channel, pitch, velocity int)
	NoteOff(channel, pitch int)
	RenderAudio(dry, reverb, chorus [][]float32, offset, frames int) error
}

type eventKind int

const (
	noteOn eventKind = iota
	noteOff
)

type event struct {
	time     float64
	kind     eventKind
	channel  int
	pitch    int
	velocity int
}

// Render renders res with remap applied into interleaved stereo float32 at
// sampleRate. The output spans the result's duration plus a fixed tail:
// ceil((Duration+2.0)*sampleRate) frames.
func Render(ctx context.Context, res *score.ExtractionResult, remap score.Remap, b *bank.Bank, sampleRate int) ([]float32, error) {
	if res == nil {
		return nil, errors.New("render: nil extraction result")
	}
	eng, err := synth.NewEngine(b, sampleRate)
	if err != nil {
		return nil, err
	}
	return render(ctx, res, remap, eng, sampleRate)
}

func render(ctx context.Context, res *score.ExtractionResult, remap score.Remap, eng engine, sampleRate int) ([]float32, error) {
	var events []event
	for i, track := range res.Tracks {
		settings := remap.ForTrack(i, track.Program)
		eng.ProgramChange(track.Channel, settings.Program)

		for _, n := range track.Notes {
			pitch := settings.Pitch(n.Pitch)
			events = append(events,
				event{time: n.Start, kind: noteOn, channel: track.Channel, pitch: pitch, velocity: settings.Velocity(n.Velocity)},
				event{time: n.End(), kind: noteOff, channel: track.Channel, pitch: pitch},
			)
		}
	}
	// Stable: simultaneous events keep track order, and a note's off stays
	// behind any on scheduled at the same instant by an earlier track.
	sort.SliceStable(events, func(i, j int) bool { return events[i].time < events[j].time })

	totalFrames := int(math.Ceil((res.Duration + tailSeconds) * float64(sampleRate)))
	out := make([]float32, totalFrames*2)
	dry := stereoPair(chunkFrames)
	reverb := stereoPair(chunkFrames)
	chorus := stereoPair(chunkFrames)

	next := 0
	for start := 0; start < totalFrames; start += chunkFrames {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAborted, err)
		}

		chunkStart := float64(start) / float64(sampleRate)
		for next < len(events) && events[next].time <= chunkStart {
			ev := events[next]
			if ev.kind == noteOn {
				eng.NoteOn(ev.channel, ev.pitch, ev.velocity)
			} else {
				eng.NoteOff(ev.channel, ev.pitch)
			}
			next++
		}

		frames := chunkFrames
		if start+frames > totalFrames {
			frames = totalFrames - start
		}
		if err := eng.RenderAudio(dry, reverb, chorus, 0, frames); err != nil {
			return nil, err
		}
		for i := 0; i < frames; i++ {
			out[(start+i)*2] = dry[0][i] + reverb[0][i] + chorus[0][i]
			out[(start+i)*2+1] = dry[1][i] + reverb[1][i] + chorus[1][i]
		}
	}
	return out, nil
}

func stereoPair(frames int) [][]float32 {
	return [][]float32{make([]float32, frames), make([]float32, frames)}
}
