// Package score holds the extracted performance data model shared by the
// playback, render, and export paths.
package score

// Note is a single detected note. Values are fixed at extraction time;
// transforms derive new values rather than mutating these.
type Note struct {
	Pitch    int     // MIDI pitch 0..127
	Start    float64 // onset in seconds from the beginning of the recording
	Duration float64 // length in seconds, > 0
	Velocity int     // MIDI velocity 0..127
}

// End returns the note-off time in seconds.
func (n Note) End() float64 {
	return n.Start + n.Duration
}

// Track groups the notes of one register lane under a channel and GM program.
type Track struct {
	Name    string
	Channel int // MIDI channel 0..15
	Program int // GM program 0..127
	Notes   []Note
}

// ExtractionResult is the complete outcome of analyzing one recording.
type ExtractionResult struct {
	Tracks   []Track
	Tempo    int     // BPM, clamped to 40..240
	Duration float64 // source recording length in seconds
}

// NoteCount returns the total number of notes across all tracks.
func (r *ExtractionResult) NoteCount() int {
	n := 0
	for _, t := range r.Tracks {
		n += len(t.Notes)
	}
	return n
}

// Lane is a pitch-register grouping of detected notes.
type Lane int

const (
	LaneBass Lane = iota
	LaneHarmony
	LaneMelody
)

// Register boundaries between lanes.
const (
	bassCeiling    = 48 // below: bass
	harmonyCeiling = 72 // below (and >= bassCeiling): harmony; at or above: melody
)

// ClassifyLane assigns a MIDI pitch to its register lane.
func ClassifyLane(pitch int) Lane {
	switch {
	case pitch < bassCeiling:
		return LaneBass
	case pitch < harmonyCeiling:
		return LaneHarmony
	default:
		return LaneMelody
	}
}

func (l Lane) String() string {
	switch l {
	case LaneBass:
		return "Bass"
	case LaneHarmony:
		return "Harmony"
	case LaneMelody:
		return "Melody"
	}
	return "Unknown"
}

// Channel returns the MIDI channel assigned to the lane's track.
func (l Lane) Channel() int {
	return int(l)
}

// DefaultProgram returns the GM program a lane's track starts with:
// acoustic bass for the bass lane, acoustic grand for the others.
func (l Lane) DefaultProgram() int {
	if l == LaneBass {
		return 32
	}
	return 0
}
