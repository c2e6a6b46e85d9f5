package debug

import (
	"fmt"
	"math"
)

// Thresholds used by CheckBuffer.
const (
	ClipThreshold    = 0.99
	DCThreshold      = 0.01
	DCShare          = 0.5
	SilenceThreshold = 0.0001
)

// AnalysisResult contains the results of audio buffer analysis.
type AnalysisResult struct {
	Peak           float32
	RMS            float32
	DC             float32
	ClippedSamples int
	NaNCount       int
	InfCount       int
	Denormals      int
	ZeroCrossings  int
}

// Silent reports whether the buffer's RMS is below SilenceThreshold.
func (r AnalysisResult) Silent() bool {
	return r.RMS < SilenceThreshold
}

// HasDCOffset reports a mean above DCThreshold that also makes up at least
// DCShare of the RMS. A tone cut off mid-period has a small mean but is not
// offset.
func (r AnalysisResult) HasDCOffset() bool {
	dc := math.Abs(float64(r.DC))
	return dc > DCThreshold && dc >= DCShare*float64(r.RMS)
}

// Analyze measures a single channel. Non-finite samples are counted and
// otherwise ignored.
func Analyze(buffer []float32) AnalysisResult {
	var r AnalysisResult
	if len(buffer) == 0 {
		return r
	}

	var sum, sumSquares float64
	var last float32
	finite := 0
	for _, s := range buffer {
		f := float64(s)
		switch {
		case math.IsNaN(f):
			r.NaNCount++
			continue
		case math.IsInf(f, 0):
			r.InfCount++
			continue
		}
		if s != 0 && math.Abs(f) < 0x1p-126 {
			r.Denormals++
		}

		abs := float32(math.Abs(f))
		if abs > r.Peak {
			r.Peak = abs
		}
		if abs >= ClipThreshold {
			r.ClippedSamples++
		}
		if finite > 0 && (last < 0) != (s < 0) {
			r.ZeroCrossings++
		}
		last = s
		sum += f
		sumSquares += f * f
		finite++
	}
	if finite > 0 {
		r.RMS = float32(math.Sqrt(sumSquares / float64(finite)))
		r.DC = float32(sum / float64(finite))
	}
	return r
}

// CheckBuffer returns a list of problems found in a rendered channel:
// non-finite samples, denormals, clipping and DC offset.
func CheckBuffer(buffer []float32, name string) []string {
	var issues []string
	r := Analyze(buffer)

	if r.NaNCount > 0 {
		issues = append(issues, fmt.Sprintf("%s: contains %d NaN values", name, r.NaNCount))
	}
	if r.InfCount > 0 {
		issues = append(issues, fmt.Sprintf("%s: contains %d infinite values", name, r.InfCount))
	}
	if r.Denormals > 0 {
		issues = append(issues, fmt.Sprintf("%s: contains %d denormal values", name, r.Denormals))
	}
	if r.Peak > 1 {
		issues = append(issues, fmt.Sprintf("%s: peak exceeds 1.0 (%.3f)", name, r.Peak))
	} else if r.ClippedSamples > 0 {
		issues = append(issues, fmt.Sprintf("%s: clipping detected (%d samples)", name, r.ClippedSamples))
	}
	if r.HasDCOffset() {
		issues = append(issues, fmt.Sprintf("%s: DC offset detected (%.3f)", name, r.DC))
	}
	return issues
}

// Diff summarizes how two buffers differ.
type Diff struct {
	Length   int
	Differs  int
	MaxDiff  float32
	MaxIndex int
}

// Equal reports whether no sample differed.
func (d Diff) Equal() bool { return d.Differs == 0 }

func (d Diff) String() string {
	if d.Differs == 0 {
		return "buffers are identical within tolerance"
	}
	return fmt.Sprintf("%d of %d samples differ, max difference %.6f at sample %d",
		d.Differs, d.Length, d.MaxDiff, d.MaxIndex)
}

// CompareBuffers compares two buffers sample by sample. Samples past the
// shorter buffer count as differing.
func CompareBuffers(a, b []float32, tolerance float32) Diff {
	n := min(len(a), len(b))
	d := Diff{Length: max(len(a), len(b))}
	for i := 0; i < n; i++ {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > tolerance || diff != diff {
			d.Differs++
			if diff > d.MaxDiff {
				d.MaxDiff = diff
				d.MaxIndex = i
			}
		}
	}
	d.Differs += d.Length - n
	return d
}
