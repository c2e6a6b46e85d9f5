// Package oscillator provides naive audio oscillators for synthesis.
package oscillator

import "math"

// Waveform selects the oscillator shape.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Saw
)

// Oscillator is a phase accumulator. The zero value is silent until a
// frequency is set.
type Oscillator struct {
	phase float64
	inc   float64
}

// SetFrequency sets the frequency in Hz.
func (o *Oscillator) SetFrequency(freq, sampleRate float64) {
	if sampleRate <= 0 {
		o.inc = 0
		return
	}
	o.inc = freq / sampleRate
}

// Reset restarts the cycle.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// Phase returns the position in the cycle, 0 to 1.
func (o *Oscillator) Phase() float64 {
	return o.phase
}

// Next returns the current sample of w and advances the phase.
func (o *Oscillator) Next(w Waveform) float64 {
	var s float64
	switch w {
	case Square:
		s = 1
		if o.phase >= 0.5 {
			s = -1
		}
	case Saw:
		s = 2*o.phase - 1
	default:
		s = math.Sin(2 * math.Pi * o.phase)
	}
	o.phase += o.inc
	if o.phase >= 1 {
		o.phase -= math.Floor(o.phase)
	}
	return s
}
