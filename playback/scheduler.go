// Package playback plays an extraction result through the host audio output
// in real time. Scheduling is wall-clock: two timers per note drive the
// synthesizer while the device pulls rendered audio, so ordering is
// best-effort rather than sample-accurate. Sample-accurate output comes from
// the offline renderer instead.
package playback

import (
	"errors"
	"sync"
	"time"

	"github.com/xkazm04/retone/bank"
	"github.com/xkazm04/retone/score"
	"github.com/xkazm04/retone/synth"
)

// renderQuantum is the frame count per engine render call inside the device
// pull.
const renderQuantum = 128

// tailSeconds keeps the stream alive after the last note so releases and the
// room tail ring out.
const tailSeconds = 2.0

// engine is the slice of synth.Engine the scheduler drives.
type engine interface {
	ProgramChange(channel, program int)
	NoteOn(channel, pitch, velocity int)
	NoteOff(channel, pitch int)
	RenderAudio(dry, reverb, chorus [][]float32, offset, frames int) error
}

// Handle controls one running playback session.
type Handle struct {
	eng engine
	dev Device

	mu        sync.Mutex
	stopped   bool
	timers    []*time.Timer
	doneTimer *time.Timer

	doneOnce sync.Once
	done     chan struct{}

	dry    [][]float32
	reverb [][]float32
	chorus [][]float32
}

// Play starts playing res through dev with remap applied. The returned handle
// stops the session or waits for its natural end. The engine built for the
// session is dedicated to it; concurrent sessions need separate devices.
func Play(res *score.ExtractionResult, remap score.Remap, b *bank.Bank, dev Device) (*Handle, error) {
	if res == nil {
		return nil, errors.New("playback: nil extraction result")
	}
	if dev == nil {
		return nil, errors.New("playback: nil device")
	}
	eng, err := synth.NewEngine(b, dev.SampleRate())
	if err != nil {
		return nil, err
	}
	return play(res, remap, eng, dev)
}

func play(res *score.ExtractionResult, remap score.Remap, eng engine, dev Device) (*Handle, error) {
	h := &Handle{
		eng:    eng,
		dev:    dev,
		done:   make(chan struct{}),
		dry:    stereoPair(renderQuantum),
		reverb: stereoPair(renderQuantum),
		chorus: stereoPair(renderQuantum),
	}

	if err := dev.Start(h.pull); err != nil {
		return nil, err
	}

	for i, track := range res.Tracks {
		settings := remap.ForTrack(i, track.Program)
		eng.ProgramChange(track.Channel, settings.Program)

		for _, note := range track.Notes {
			channel := track.Channel
			pitch := settings.Pitch(note.Pitch)
			velocity := settings.Velocity(note.Velocity)

			on := time.AfterFunc(secs(note.Start), func() {
				h.event(func() { h.eng.NoteOn(channel, pitch, velocity) })
			})
			off := time.AfterFunc(secs(note.End()), func() {
				h.event(func() { h.eng.NoteOff(channel, pitch) })
			})
			h.timers = append(h.timers, on, off)
		}
	}

	h.doneTimer = time.AfterFunc(secs(res.Duration+tailSeconds), func() {
		h.Stop()
	})
	return h, nil
}

// Stop cancels every pending note timer and closes the output device. It is
// idempotent, safe while timers are firing, and guarantees that no note
// event reaches the synthesizer after it returns.
func (h *Handle) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	for _, t := range h.timers {
		t.Stop()
	}
	h.timers = nil
	if h.doneTimer != nil {
		h.doneTimer.Stop()
	}
	h.mu.Unlock()

	_ = h.dev.Close()
	h.doneOnce.Do(func() { close(h.done) })
}

// Done is closed when playback ends, either naturally after the performance
// plus its tail or through Stop.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// event runs a timer-scheduled synthesizer call unless the session stopped.
// Holding the lock across the call means Stop cannot return while an event
// is mid-flight.
func (h *Handle) event(fire func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	fire()
}

// pull fills one device request with the summed dry, reverb, and chorus
// buses, rendering in fixed quanta. Runs on the device's audio thread.
func (h *Handle) pull(out []float32) {
	frames := len(out) / 2
	for done := 0; done < frames; {
		q := renderQuantum
		if q > frames-done {
			q = frames - done
		}

		if err := h.eng.RenderAudio(h.dry, h.reverb, h.chorus, 0, q); err != nil {
			for i := done * 2; i < frames*2; i++ {
				out[i] = 0
			}
			return
		}
		for i := 0; i < q; i++ {
			out[(done+i)*2] = h.dry[0][i] + h.reverb[0][i] + h.chorus[0][i]
			out[(done+i)*2+1] = h.dry[1][i] + h.reverb[1][i] + h.chorus[1][i]
		}
		done += q
	}
}

func stereoPair(frames int) [][]float32 {
	return [][]float32{make([]float32, frames), make([]float32, frames)}
}

func secs(s float64) time.Duration {
	if s < 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
