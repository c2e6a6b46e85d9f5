// Package gain provides decibel conversion and parameter smoothing.
package gain

import "math"

// MinDB is treated as silence.
const MinDB = -200.0

// LinearToDb converts a linear amplitude to decibels. Values <= 0 return
// MinDB.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return MinDB
	}
	return 20 * math.Log10(linear)
}

// DbToLinear converts decibels to a linear amplitude. Values <= MinDB
// return 0.
func DbToLinear(db float64) float64 {
	if db <= MinDB {
		return 0
	}
	return math.Pow(10, db/20)
}

// DbToLinearFloor is DbToLinear with everything at or below floor mapped to
// silence, for gain parameters whose minimum means off.
func DbToLinearFloor(db, floor float64) float64 {
	if db <= floor {
		return 0
	}
	return DbToLinear(db)
}

// Coefficient returns the per-sample pole of a one-pole filter with the
// given time constant. Zero means no smoothing.
func Coefficient(ms, sampleRate float64) float64 {
	if ms <= 0 || sampleRate <= 0 {
		return 0
	}
	return math.Exp(-1 / (ms * 0.001 * sampleRate))
}

// Smoother glides a value towards its target with a one-pole filter.
type Smoother struct {
	current float64
	target  float64
	pole    float64
}

// NewSmoother creates a smoother resting at value.
func NewSmoother(value float64) *Smoother {
	return &Smoother{current: value, target: value}
}

// SetTime sets the time constant.
func (s *Smoother) SetTime(ms, sampleRate float64) {
	s.pole = Coefficient(ms, sampleRate)
}

// SetTarget sets the value to glide to.
func (s *Smoother) SetTarget(target float64) {
	s.target = target
}

// Snap jumps to value.
func (s *Smoother) Snap(value float64) {
	s.current = value
	s.target = value
}

// Next advances one sample and returns the new value.
func (s *Smoother) Next() float64 {
	s.current = s.target + (s.current-s.target)*s.pole
	return s.current
}

// Current returns the value without advancing.
func (s *Smoother) Current() float64 {
	return s.current
}

// Settled reports whether the value is within 1e-6 of the target.
func (s *Smoother) Settled() bool {
	return math.Abs(s.current-s.target) <= 1e-6
}
