// Package synth wraps a sample-based General MIDI synthesizer core behind the
// three-bus layout shared by live playback and offline rendering: a stereo
// dry bus straight from the voices, plus wet-only reverb and chorus send
// buses derived from it. The engine is a stateful voice-rendering primitive
// with no scheduling of its own; callers decide when events fire between
// render calls.
package synth

import (
	"errors"
	"fmt"
	"sync"

	meltysynth "github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/xkazm04/retone/bank"
)

const midiProgramChange = 0xC0

// synthesizer is the voice-rendering core. *meltysynth.Synthesizer satisfies
// it; tests substitute deterministic stand-ins.
type synthesizer interface {
	ProcessMidiMessage(channel, command, data1, data2 int32)
	NoteOn(channel, key, velocity int32)
	NoteOff(channel, key int32)
	Render(left, right []float32)
}

// Engine renders MIDI events into the dry/reverb/chorus buses. One engine
// serves one playback or render session: its mutex lets that session's timers
// and audio pull interleave, but two unrelated sessions must not share an
// instance, because voice state is cumulative.
type Engine struct {
	mu         sync.Mutex
	core       synthesizer
	sampleRate int
	reverb     *reverbSend
	chorus     *chorusSend

	scratchL []float32
	scratchR []float32
}

// NewEngine builds an engine bound to the given bank and output sample rate.
// The core's own reverb and chorus are disabled; the engine's explicit send
// buses replace them.
func NewEngine(b *bank.Bank, sampleRate int) (*Engine, error) {
	if b == nil || b.Font() == nil {
		return nil, errors.New("synth: nil instrument bank")
	}
	if sampleRate < 8000 {
		return nil, fmt.Errorf("synth: sample rate too low: %d", sampleRate)
	}

	settings := meltysynth.NewSynthesizerSettings(int32(sampleRate))
	settings.EnableReverbAndChorus = false
	core, err := meltysynth.NewSynthesizer(b.Font(), settings)
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}
	return newEngineWithCore(core, sampleRate)
}

func newEngineWithCore(core synthesizer, sampleRate int) (*Engine, error) {
	rev, err := newReverbSend(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("synth: reverb send: %w", err)
	}
	return &Engine{
		core:       core,
		sampleRate: sampleRate,
		reverb:     rev,
		chorus:     newChorusSend(sampleRate),
	}, nil
}

// SampleRate returns the output rate the engine renders at.
func (e *Engine) SampleRate() int { return e.sampleRate }

// ProgramChange selects the patch for a channel.
func (e *Engine) ProgramChange(channel, program int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.core.ProcessMidiMessage(int32(channel), midiProgramChange, int32(program), 0)
}

// NoteOn starts a voice.
func (e *Engine) NoteOn(channel, pitch, velocity int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.core.NoteOn(int32(channel), int32(pitch), int32(velocity))
}

// NoteOff releases a voice.
func (e *Engine) NoteOff(channel, pitch int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.core.NoteOff(int32(channel), int32(pitch))
}

// RenderAudio renders the next frames of audio into the sub-range
// [offset, offset+frames) of each bus. Each bus is a stereo pair: index 0 is
// the left channel, index 1 the right. The dry bus receives the voices
// directly; the reverb and chorus buses receive wet-only send output derived
// from the same block, so summing the three buses per channel yields the full
// mix. Voice and send state carry over between calls.
func (e *Engine) RenderAudio(dry, reverb, chorus [][]float32, offset, frames int) error {
	if err := checkBus("dry", dry, offset, frames); err != nil {
		return err
	}
	if err := checkBus("reverb", reverb, offset, frames); err != nil {
		return err
	}
	if err := checkBus("chorus", chorus, offset, frames); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if cap(e.scratchL) < frames {
		e.scratchL = make([]float32, frames)
		e.scratchR = make([]float32, frames)
	}
	l := e.scratchL[:frames]
	r := e.scratchR[:frames]
	e.core.Render(l, r)

	copy(dry[0][offset:offset+frames], l)
	copy(dry[1][offset:offset+frames], r)
	e.reverb.process(reverb[0][offset:offset+frames], reverb[1][offset:offset+frames], l, r)
	e.chorus.process(chorus[0][offset:offset+frames], chorus[1][offset:offset+frames], l, r)
	return nil
}

func checkBus(name string, bus [][]float32, offset, frames int) error {
	if offset < 0 || frames < 0 {
		return fmt.Errorf("synth: negative render range %d+%d", offset, frames)
	}
	if len(bus) < 2 {
		return fmt.Errorf("synth: %s bus needs 2 channels, got %d", name, len(bus))
	}
	for ch := 0; ch < 2; ch++ {
		if len(bus[ch]) < offset+frames {
			return fmt.Errorf("synth: %s bus channel %d holds %d frames, need %d",
				name, ch, len(bus[ch]), offset+frames)
		}
	}
	return nil
}
