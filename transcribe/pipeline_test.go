package transcribe

import (
	"context"
	"errors"
	"testing"

	"github.com/go-audio/audio"
)

// silentBuffer returns seconds of mono silence at ModelSampleRate.
func silentBuffer(seconds float64) *audio.Float32Buffer {
	return monoBuffer(ModelSampleRate, make([]float32, int(seconds*ModelSampleRate)))
}

func TestExtractGroupsNotesIntoLanes(t *testing.T) {
	a := zeroActs(200)
	paint(a, 36, 0, 20, 0.9)   // bass register
	paint(a, 60, 43, 63, 0.9)  // harmony register
	paint(a, 84, 86, 106, 0.9) // melody register
	m := &scriptedModel{chunks: []Activations{a}}

	res, err := Extract(context.Background(), silentBuffer(3.0), m)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(res.Tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(res.Tracks))
	}
	wantTracks := []struct {
		name    string
		channel int
		program int
		pitch   int
	}{
		{"Bass", 0, 32, 36},
		{"Harmony", 1, 0, 60},
		{"Melody", 2, 0, 84},
	}
	for i, want := range wantTracks {
		tr := res.Tracks[i]
		if tr.Name != want.name || tr.Channel != want.channel || tr.Program != want.program {
			t.Errorf("track %d: got %q ch=%d prog=%d, want %q ch=%d prog=%d",
				i, tr.Name, tr.Channel, tr.Program, want.name, want.channel, want.program)
		}
		if len(tr.Notes) != 1 || tr.Notes[0].Pitch != want.pitch {
			t.Errorf("track %d: got notes %v, want one note at pitch %d", i, tr.Notes, want.pitch)
		}
	}

	if res.NoteCount() != 3 {
		t.Errorf("NoteCount: got %d, want 3", res.NoteCount())
	}
	// Onsets land roughly half a second apart.
	if res.Tempo != 120 {
		t.Errorf("tempo: got %d, want 120", res.Tempo)
	}
}

func TestExtractOmitsEmptyLanes(t *testing.T) {
	a := zeroActs(60)
	paint(a, 60, 0, 20, 0.9)
	m := &scriptedModel{chunks: []Activations{a}}

	res, err := Extract(context.Background(), silentBuffer(1.0), m)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(res.Tracks))
	}
	if res.Tracks[0].Name != "Harmony" || res.Tracks[0].Channel != 1 {
		t.Errorf("got track %q on channel %d, want Harmony on channel 1",
			res.Tracks[0].Name, res.Tracks[0].Channel)
	}
}

func TestExtractSilentRecording(t *testing.T) {
	m := &scriptedModel{} // no activations at all
	res, err := Extract(context.Background(), silentBuffer(1.0), m)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Tracks) != 0 {
		t.Errorf("got %d tracks, want 0", len(res.Tracks))
	}
	if res.Tempo != DefaultTempo {
		t.Errorf("tempo: got %d, want default %d", res.Tempo, DefaultTempo)
	}
}

func TestExtractReportsSourceDuration(t *testing.T) {
	buf := &audio.Float32Buffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: 44100},
		Data:   make([]float32, 88200), // one second of stereo
	}
	res, err := Extract(context.Background(), buf, &scriptedModel{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Duration != 1.0 {
		t.Errorf("duration: got %v, want 1.0", res.Duration)
	}
}

func TestExtractRejectsInvalidBuffer(t *testing.T) {
	tests := []struct {
		name string
		buf  *audio.Float32Buffer
	}{
		{"nil buffer", nil},
		{"nil format", &audio.Float32Buffer{Data: make([]float32, 10)}},
		{"zero rate", &audio.Float32Buffer{Format: &audio.Format{NumChannels: 1}}},
		{"no channels", &audio.Float32Buffer{Format: &audio.Format{SampleRate: 44100}}},
	}
	for _, tt := range tests {
		_, err := Extract(context.Background(), tt.buf, &scriptedModel{})
		if !errors.Is(err, ErrExtractionFailed) {
			t.Errorf("%s: got %v, want ErrExtractionFailed", tt.name, err)
		}
	}
}

func TestExtractWrapsModelFailure(t *testing.T) {
	sentinel := errors.New("inference backend unreachable")
	m := &scriptedModel{err: sentinel}

	_, err := Extract(context.Background(), silentBuffer(1.0), m)
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("got %v, want ErrExtractionFailed", err)
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("got %v, want wrapped %v", err, sentinel)
	}
}

func TestExtractRejectsMisalignedModelOutput(t *testing.T) {
	bad := chunkOf(4, 0.5)
	bad.Bends = bad.Bends[:2]
	m := &scriptedModel{chunks: []Activations{bad}}

	_, err := Extract(context.Background(), silentBuffer(1.0), m)
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("got %v, want ErrExtractionFailed", err)
	}
}
