package playback

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Device is the host audio output boundary. Start begins pulling interleaved
// stereo float32 frames through pull from the device's own thread; Close
// stops the stream and releases the output. A Device drives exactly one
// stream in its lifetime.
type Device interface {
	SampleRate() int
	Start(pull func(out []float32)) error
	Close() error
}

// The host audio library allows one context per process, created at a single
// sample rate on first use.
var (
	otoMu   sync.Mutex
	otoCtx  *oto.Context
	otoRate int
)

func otoContext(sampleRate int) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()
	if otoCtx != nil {
		if otoRate != sampleRate {
			return nil, fmt.Errorf("audio context already running at %d Hz, cannot reopen at %d Hz", otoRate, sampleRate)
		}
		return otoCtx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	otoCtx, otoRate = ctx, sampleRate
	return ctx, nil
}

// OtoDevice plays through the default host output via ebitengine/oto.
type OtoDevice struct {
	sampleRate int

	mu      sync.Mutex
	player  *oto.Player
	started bool
	closed  bool
}

// NewOtoDevice prepares a device at the given output rate. The underlying
// audio context is process-wide; every device in one process must use the
// same rate.
func NewOtoDevice(sampleRate int) *OtoDevice {
	return &OtoDevice{sampleRate: sampleRate}
}

func (d *OtoDevice) SampleRate() int { return d.sampleRate }

// Start opens the output stream and begins pulling audio.
func (d *OtoDevice) Start(pull func(out []float32)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return errors.New("device already started")
	}
	if d.closed {
		return errors.New("device closed")
	}

	ctx, err := otoContext(d.sampleRate)
	if err != nil {
		return err
	}
	d.player = ctx.NewPlayer(&pullReader{pull: pull})
	d.player.Play()
	d.started = true
	return nil
}

// Close stops the stream. Safe to call more than once.
func (d *OtoDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if d.player != nil {
		return d.player.Close()
	}
	return nil
}

// pullReader adapts the pull callback to the byte stream the audio library
// reads: interleaved stereo float32, little-endian.
type pullReader struct {
	pull func([]float32)
	buf  []float32
}

func (r *pullReader) Read(p []byte) (int, error) {
	const bytesPerFrame = 8 // 2 channels x 4 bytes
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}

	if cap(r.buf) < frames*2 {
		r.buf = make([]float32, frames*2)
	}
	out := r.buf[:frames*2]
	r.pull(out)

	for i, v := range out {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return frames * bytesPerFrame, nil
}
