// Package envelope provides level detection for dynamics processing.
package envelope

import "math"

// Follower is a peak detector with instant attack and exponential release.
type Follower struct {
	release float64
	ms      float64
	level   float64
}

// NewFollower creates a follower with the given release time.
func NewFollower(releaseMs, sampleRate float64) *Follower {
	f := &Follower{ms: releaseMs}
	f.SetSampleRate(sampleRate)
	return f
}

// SetSampleRate recomputes the release pole.
func (f *Follower) SetSampleRate(sampleRate float64) {
	if f.ms <= 0 || sampleRate <= 0 {
		f.release = 0
		return
	}
	f.release = math.Exp(-1 / (f.ms * 0.001 * sampleRate))
}

// Process feeds one rectified sample and returns the envelope.
func (f *Follower) Process(peak float64) float64 {
	if peak > f.level {
		f.level = peak
	} else {
		f.level = peak + (f.level-peak)*f.release
	}
	return f.level
}

// ProcessFrame feeds the loudest of the channels at sample k.
func (f *Follower) ProcessFrame(channels [][]float32, k int) float64 {
	var peak float64
	for _, ch := range channels {
		peak = max(peak, math.Abs(float64(ch[k])))
	}
	return f.Process(peak)
}

// Level returns the current envelope.
func (f *Follower) Level() float64 {
	return f.level
}

// Reset clears the envelope.
func (f *Follower) Reset() {
	f.level = 0
}
