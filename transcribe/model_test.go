package transcribe

import (
	"context"
	"errors"
	"testing"
)

// scriptedModel ignores the audio and emits pre-built chunks, optionally
// failing afterwards.
type scriptedModel struct {
	chunks []Activations
	err    error
}

func (s *scriptedModel) Transcribe(_ context.Context, _ []float32, emit func(Activations) error) error {
	for _, c := range s.chunks {
		if err := emit(c); err != nil {
			return err
		}
	}
	return s.err
}

func constRow(v float32) []float32 {
	row := make([]float32, PitchBins)
	for i := range row {
		row[i] = v
	}
	return row
}

func chunkOf(rows int, v float32) Activations {
	var a Activations
	for i := 0; i < rows; i++ {
		a.Frames = append(a.Frames, constRow(v))
		a.Onsets = append(a.Onsets, constRow(0))
		a.Bends = append(a.Bends, constRow(0))
	}
	return a
}

func TestCollectConcatenatesInArrivalOrder(t *testing.T) {
	m := &scriptedModel{chunks: []Activations{
		chunkOf(3, 0.1),
		chunkOf(2, 0.2),
		chunkOf(1, 0.3),
	}}

	acc, err := collect(context.Background(), m, nil)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(acc.Frames) != 6 || len(acc.Onsets) != 6 || len(acc.Bends) != 6 {
		t.Fatalf("rows: got %d/%d/%d, want 6/6/6",
			len(acc.Frames), len(acc.Onsets), len(acc.Bends))
	}

	wantByRow := []float32{0.1, 0.1, 0.1, 0.2, 0.2, 0.3}
	for i, want := range wantByRow {
		if got := acc.Frames[i][0]; got != want {
			t.Errorf("row %d: got %v, want %v", i, got, want)
		}
	}
}

func TestCollectPropagatesModelError(t *testing.T) {
	sentinel := errors.New("model exploded")
	m := &scriptedModel{chunks: []Activations{chunkOf(2, 0.5)}, err: sentinel}

	_, err := collect(context.Background(), m, nil)
	if !errors.Is(err, sentinel) {
		t.Fatalf("got %v, want %v", err, sentinel)
	}
}

func TestActivationsValidate(t *testing.T) {
	good := chunkOf(4, 0.5)
	if err := good.validate(); err != nil {
		t.Fatalf("aligned matrices rejected: %v", err)
	}

	misaligned := chunkOf(4, 0.5)
	misaligned.Onsets = misaligned.Onsets[:3]
	if err := misaligned.validate(); err == nil {
		t.Error("mismatched row counts accepted")
	}

	narrow := chunkOf(4, 0.5)
	narrow.Frames[2] = narrow.Frames[2][:PitchBins-1]
	if err := narrow.validate(); err == nil {
		t.Error("short pitch row accepted")
	}

	var empty Activations
	if err := empty.validate(); err != nil {
		t.Errorf("empty matrices rejected: %v", err)
	}
}
