// Package dsp provides the small time-domain primitives used by the send
// effect buses.
package dsp

import "math"

// DelayLine is a circular delay buffer with fractional-delay reads.
type DelayLine struct {
	buffer   []float32
	writePos int
	size     int
}

// NewDelayLine creates a delay line holding size samples.
func NewDelayLine(size int) *DelayLine {
	if size < 1 {
		size = 1
	}
	return &DelayLine{
		buffer: make([]float32, size),
		size:   size,
	}
}

// Size returns the capacity of the line in samples.
func (d *DelayLine) Size() int {
	return d.size
}

// Write pushes one sample into the line.
func (d *DelayLine) Write(sample float32) {
	d.buffer[d.writePos] = sample
	d.writePos = (d.writePos + 1) % d.size
}

// Read returns the sample written delay steps ago.
func (d *DelayLine) Read(delay int) float32 {
	readPos := (d.writePos - delay + d.size) % d.size
	return d.buffer[readPos]
}

// ReadFractional returns a linearly interpolated sample at a non-integer
// delay, for modulated taps.
func (d *DelayLine) ReadFractional(delay float32) float32 {
	intDelay := int(delay)
	frac := delay - float32(intDelay)

	s1 := d.Read(intDelay)
	s2 := d.Read(intDelay + 1)
	return s1 + frac*(s2-s1)
}

// Reset zeroes the buffer and rewinds the write position.
func (d *DelayLine) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

// Biquad is a second-order IIR section in direct form I.
type Biquad struct {
	b0, b1, b2 float32
	a1, a2     float32

	x1, x2 float32
	y1, y2 float32
}

// NewLowpass builds a lowpass biquad at the given cutoff and Q.
func NewLowpass(cutoff, sampleRate, q float32) *Biquad {
	w0 := 2.0 * math.Pi * float64(cutoff) / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * float64(q))
	cosw0 := math.Cos(w0)

	b0 := (1.0 - cosw0) / 2.0
	b1 := 1.0 - cosw0
	b2 := (1.0 - cosw0) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	return &Biquad{
		b0: float32(b0 / a0),
		b1: float32(b1 / a0),
		b2: float32(b2 / a0),
		a1: float32(a1 / a0),
		a2: float32(a2 / a0),
	}
}

// Process filters one sample.
func (b *Biquad) Process(input float32) float32 {
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2

	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = output

	return output
}

// Reset clears the filter state.
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}
