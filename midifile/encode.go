// Package midifile serializes an extraction result to a standard MIDI file.
package midifile

import (
	"bytes"
	"errors"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/xkazm04/retone/score"
)

// ticksPerQuarter fixes the file's time resolution. 480 keeps sub-10ms note
// placement at any supported tempo.
const ticksPerQuarter = 480

// Encode serializes res as SMF format 1: a conductor track carrying the
// tempo, then one named, channel-assigned track per extracted track. Pitches,
// velocities, channels, and programs outside the MIDI ranges are clamped.
// Pure: no I/O beyond the returned bytes.
func Encode(res *score.ExtractionResult) ([]byte, error) {
	if res == nil {
		return nil, errors.New("midifile: nil extraction result")
	}
	tempo := res.Tempo
	if tempo <= 0 {
		tempo = 120
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName("Tempo"))
	conductor.Add(0, smf.MetaTempo(float64(tempo)))
	conductor.Close(0)
	if err := s.Add(conductor); err != nil {
		return nil, err
	}

	for _, track := range res.Tracks {
		if err := s.Add(encodeTrack(track, tempo)); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type trackEvent struct {
	tick uint32
	off  bool
	msg  midi.Message
}

func encodeTrack(track score.Track, tempo int) smf.Track {
	channel := uint8(clampInt(track.Channel, 0, 15))

	events := make([]trackEvent, 0, 2*len(track.Notes))
	for _, n := range track.Notes {
		pitch := uint8(score.EffectivePitch(n.Pitch, 0))
		velocity := uint8(score.EffectiveVelocity(n.Velocity, score.CurveLinear))
		events = append(events,
			trackEvent{tick: toTicks(n.Start, tempo), msg: midi.NoteOn(channel, pitch, velocity)},
			trackEvent{tick: toTicks(n.End(), tempo), off: true, msg: midi.NoteOff(channel, pitch)},
		)
	}
	// Offs precede ons on the same tick so a retrigger of one pitch cannot
	// cancel the note it follows.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(track.Name))
	tr.Add(0, midi.ProgramChange(channel, uint8(clampInt(track.Program, 0, 127))))
	last := uint32(0)
	for _, ev := range events {
		tr.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	tr.Close(0)
	return tr
}

// toTicks converts seconds to absolute ticks at the given BPM.
func toTicks(seconds float64, tempo int) uint32 {
	beats := seconds * float64(tempo) / 60.0
	ticks := math.Round(beats * ticksPerQuarter)
	if ticks < 0 {
		return 0
	}
	return uint32(ticks)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
