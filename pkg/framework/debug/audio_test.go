package debug

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int, amp float64) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(amp * math.Sin(2*math.Pi*440*float64(i)/48000))
	}
	return buf
}

func TestAnalyze(t *testing.T) {
	t.Run("Sine", func(t *testing.T) {
		r := Analyze(sine(1000, 0.5))
		assert.InDelta(t, 0.5, r.Peak, 0.01)
		assert.InDelta(t, 0.5/math.Sqrt2, r.RMS, 0.01)
		assert.Positive(t, r.ZeroCrossings)
		assert.False(t, r.Silent())
		assert.Zero(t, r.ClippedSamples)
	})

	t.Run("Silence", func(t *testing.T) {
		r := Analyze(make([]float32, 64))
		assert.True(t, r.Silent())
		assert.Zero(t, r.Peak)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, AnalysisResult{}, Analyze(nil))
	})

	t.Run("NonFinite", func(t *testing.T) {
		buf := []float32{0.1, float32(math.NaN()), float32(math.Inf(1)), 1e-40, -0.1}
		r := Analyze(buf)
		assert.Equal(t, 1, r.NaNCount)
		assert.Equal(t, 1, r.InfCount)
		assert.Equal(t, 1, r.Denormals)
		assert.InDelta(t, 0.1, r.Peak, 1e-6)
	})
}

func TestCheckBuffer(t *testing.T) {
	assert.Empty(t, CheckBuffer(sine(4800, 0.5), "clean"))
	// 4.4 periods: the mean is about 0.03, the tone is still clean.
	assert.Empty(t, CheckBuffer(sine(480, 0.5), "partial"))

	offset := sine(4800, 0.5)
	for i := range offset {
		offset[i] += 0.3
	}
	issues := CheckBuffer(offset, "offset")
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "offset: DC offset")

	issues = CheckBuffer([]float32{float32(math.NaN()), 1.5, 0.2}, "bad")
	require.Len(t, issues, 3)
	assert.Contains(t, issues[0], "NaN")
	assert.Contains(t, issues[1], "peak exceeds")
	assert.Contains(t, issues[2], "DC offset")

	dc := make([]float32, 32)
	for i := range dc {
		dc[i] = 0.5
	}
	issues = CheckBuffer(dc, "dc")
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "dc: DC offset")
}

func TestCompareBuffers(t *testing.T) {
	a := sine(256, 0.5)
	b := append([]float32(nil), a...)
	assert.True(t, CompareBuffers(a, b, 0).Equal())

	b[10] += 0.25
	d := CompareBuffers(a, b, 1e-6)
	assert.Equal(t, 1, d.Differs)
	assert.Equal(t, 10, d.MaxIndex)
	assert.InDelta(t, 0.25, d.MaxDiff, 1e-6)
	assert.Contains(t, d.String(), "1 of 256 samples differ")

	d = CompareBuffers(a, a[:200], 0)
	assert.Equal(t, 56, d.Differs)
	assert.Equal(t, 256, d.Length)
}
