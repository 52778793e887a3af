package score

import "math"

// InstrumentSwap overrides how one track is voiced at playback/render time.
// Transposition adds on top of the global transposition; a non-nil Curve
// replaces the global velocity curve for this track.
type InstrumentSwap struct {
	Track         int
	Program       int
	Transposition int
	Curve         *VelocityCurve
}

// Remap is the user's remapping configuration, applied uniformly by the
// real-time and offline paths. The zero value plays everything unchanged.
type Remap struct {
	Swaps         []InstrumentSwap
	Transposition int
	Curve         VelocityCurve
}

// TrackSettings is the resolved voicing for one track: the program to select
// and the pitch/velocity transform to run every note through.
type TrackSettings struct {
	Program       int
	Transposition int
	Curve         VelocityCurve
}

// ForTrack resolves the effective settings for the track at index, given the
// track's original program. When several swaps name the same track, the last
// one wins.
func (r Remap) ForTrack(index int, originalProgram int) TrackSettings {
	s := TrackSettings{
		Program:       originalProgram,
		Transposition: r.Transposition,
		Curve:         r.Curve,
	}
	for _, sw := range r.Swaps {
		if sw.Track != index {
			continue
		}
		s.Program = sw.Program
		s.Transposition = r.Transposition + sw.Transposition
		if sw.Curve != nil {
			s.Curve = *sw.Curve
		} else {
			s.Curve = r.Curve
		}
	}
	return s
}

// Pitch returns the transposed pitch for a note under these settings.
func (s TrackSettings) Pitch(pitch int) int {
	return EffectivePitch(pitch, s.Transposition)
}

// Velocity returns the curved velocity for a note under these settings.
func (s TrackSettings) Velocity(velocity int) int {
	return EffectiveVelocity(velocity, s.Curve)
}

// EffectivePitch applies a transposition and clamps to the MIDI pitch range.
func EffectivePitch(pitch, transposition int) int {
	p := pitch + transposition
	if p < 0 {
		return 0
	}
	if p > 127 {
		return 127
	}
	return p
}

// EffectiveVelocity runs a velocity through a curve and clamps to 1..127.
// Zero is excluded: a note-on with velocity zero means note-off on the wire.
func EffectiveVelocity(velocity int, curve VelocityCurve) int {
	v := int(math.Round(curve.Apply(float64(velocity))))
	if v < 1 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return v
}
