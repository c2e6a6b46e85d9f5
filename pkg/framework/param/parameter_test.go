package param

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/augo/pkg/au"
)

func TestContinuousRoundTrip(t *testing.T) {
	p := New(1, "Cutoff").Range(20, 20000).Default(1000).Build()

	for _, n := range []float64{0, 0.001, 0.25, 0.5, 0.7531, 1} {
		plain := p.Denormalize(n)
		again := p.Denormalize(p.Normalize(plain))
		assert.InDelta(t, plain, again, 1e-9, "normalized %v", n)
	}

	assert.InDelta(t, 1000, p.GetPlainValue(), 1e-9)
}

func TestSteppedRoundTrip(t *testing.T) {
	p := New(2, "Mode").Range(0, 8).Steps(4).Build()

	for i := int32(0); i <= p.StepCount; i++ {
		plain := float64(i) / float64(p.StepCount) * (p.Max - p.Min)
		n := p.Normalize(plain)
		if got := p.Index(n); got != i {
			t.Errorf("Expected index %d for plain %v, got %d", i, plain, got)
		}
		assert.Equal(t, plain, p.Denormalize(n))
	}

	// Values between steps snap to the nearest step.
	assert.Equal(t, 2.0, p.Denormalize(0.3))
	assert.Equal(t, 0.25, p.Normalize(2.9))
}

func TestSetValueClamps(t *testing.T) {
	p := New(3, "Level").Build()

	p.SetValue(1.5)
	assert.Equal(t, 1.0, p.GetValue())
	p.SetValue(-2)
	assert.Equal(t, 0.0, p.GetValue())
	p.SetValue(math.NaN())
	assert.Equal(t, 0.0, p.GetValue())
}

func TestPlainValueWithDegenerateRange(t *testing.T) {
	p := New(4, "Broken").Range(5, 5).Build()
	p.SetPlainValue(10)
	assert.Equal(t, 0.0, p.GetValue())
}

func TestBuilderDefaultIndependentOfOrder(t *testing.T) {
	a := New(5, "Gain").Default(-6).Range(-12, 0).Build()
	b := New(5, "Gain").Range(-12, 0).Default(-6).Build()

	assert.Equal(t, 0.5, a.DefaultValue)
	assert.Equal(t, a.DefaultValue, b.DefaultValue)
	assert.Equal(t, 0.5, a.GetValue())
}

func TestChoiceIsIndexed(t *testing.T) {
	p := Choice(6, "Shape", "Sine", "Saw", "Square").Build()

	require.True(t, p.IsIndexed())
	assert.Equal(t, int32(2), p.StepCount)
	assert.Equal(t, []string{"Sine", "Saw", "Square"}, p.ValueStrings())

	n, err := p.ParseValue("square")
	require.NoError(t, err)
	assert.Equal(t, 1.0, n)
	assert.Equal(t, "Saw", p.FormatValue(p.FromIndex(1)))

	_, err = p.ParseValue("triangle")
	assert.Error(t, err)
}

func TestToggle(t *testing.T) {
	p := BypassParameter(7, "Bypass").Build()

	assert.True(t, p.IsStepped())
	assert.False(t, p.IsIndexed())
	assert.Equal(t, au.UnitBoolean, p.UnitType)
	assert.NotZero(t, p.Flags&IsBypass)
	assert.Equal(t, []string{"Off", "On"}, p.ValueStrings())
}

func TestContinuousHasNoValueStrings(t *testing.T) {
	p := GainParameter(8, "Gain").Build()
	assert.Nil(t, p.ValueStrings())
	assert.Equal(t, "12.0 dB", p.FormatValue(1))
	assert.Equal(t, "-∞ dB", p.FormatValue(0))

	n, err := p.ParseValue("-inf")
	require.NoError(t, err)
	assert.Equal(t, 0.0, n)
}

func TestDefaultFormatting(t *testing.T) {
	cont := New(9, "Amount").Range(0, 10).Build()
	assert.Equal(t, "5.00", cont.FormatValue(0.5))

	stepped := New(10, "Voices").Range(1, 8).Steps(7).Build()
	assert.Equal(t, "8", stepped.FormatValue(1))

	n, err := stepped.ParseValue("4")
	require.NoError(t, err)
	assert.Equal(t, int32(3), stepped.Index(n))
}
