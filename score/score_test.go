package score

import "testing"

func TestClassifyLaneBoundaries(t *testing.T) {
	cases := []struct {
		pitch int
		want  Lane
	}{
		{0, LaneBass},
		{35, LaneBass},
		{47, LaneBass},
		{48, LaneHarmony},
		{60, LaneHarmony},
		{71, LaneHarmony},
		{72, LaneMelody},
		{100, LaneMelody},
		{127, LaneMelody},
	}
	for _, c := range cases {
		if got := ClassifyLane(c.pitch); got != c.want {
			t.Errorf("ClassifyLane(%d) = %v, want %v", c.pitch, got, c.want)
		}
	}
}

func TestClassifyLaneTotality(t *testing.T) {
	for p := 0; p <= 127; p++ {
		l := ClassifyLane(p)
		if l != LaneBass && l != LaneHarmony && l != LaneMelody {
			t.Fatalf("ClassifyLane(%d) = %v, not a known lane", p, l)
		}
	}
}

func TestLaneDefaults(t *testing.T) {
	if got := LaneBass.DefaultProgram(); got != 32 {
		t.Errorf("bass program = %d, want 32", got)
	}
	if got := LaneHarmony.DefaultProgram(); got != 0 {
		t.Errorf("harmony program = %d, want 0", got)
	}
	if got := LaneMelody.DefaultProgram(); got != 0 {
		t.Errorf("melody program = %d, want 0", got)
	}
	for i, l := range []Lane{LaneBass, LaneHarmony, LaneMelody} {
		if l.Channel() != i {
			t.Errorf("%v channel = %d, want %d", l, l.Channel(), i)
		}
	}
}

func TestNoteEnd(t *testing.T) {
	n := Note{Pitch: 60, Start: 1.5, Duration: 0.25, Velocity: 100}
	if got := n.End(); got != 1.75 {
		t.Errorf("End() = %v, want 1.75", got)
	}
}

func TestNoteCount(t *testing.T) {
	r := ExtractionResult{
		Tracks: []Track{
			{Notes: make([]Note, 3)},
			{Notes: make([]Note, 2)},
		},
	}
	if got := r.NoteCount(); got != 5 {
		t.Errorf("NoteCount() = %d, want 5", got)
	}
}
