package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilityMatches(t *testing.T) {
	tests := []struct {
		name    string
		cap     Capability
		in, out int32
		want    bool
	}{
		{"exact", Capability{2, 2}, 2, 2, true},
		{"exact mismatch", Capability{2, 2}, 3, 2, false},
		{"wildcard pair equal", Capability{Any, Any}, 6, 6, true},
		{"wildcard pair unequal", Capability{Any, Any}, 1, 2, false},
		{"wildcard input", Capability{Any, 2}, 5, 2, true},
		{"instrument", Capability{0, 2}, 0, 2, true},
		{"instrument with input", Capability{0, 2}, 2, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cap.Matches(tt.in, tt.out))
		})
	}
}

func TestAdmitsChecksOneSide(t *testing.T) {
	caps := []Capability{{2, 2}}
	assert.True(t, Admits(caps, DirectionOutput, 2))
	assert.False(t, Admits(caps, DirectionOutput, 3))
	assert.False(t, Admits(caps, DirectionInput, 1))

	wild := []Capability{{Any, Any}}
	assert.True(t, Admits(wild, DirectionInput, 7))

	assert.False(t, Admits(nil, DirectionInput, 2))
	assert.True(t, Matches([]Capability{{1, 1}, {2, 2}}, 2, 2))
}

func TestDefaultCapabilities(t *testing.T) {
	assert.Equal(t, []Capability{{2, 2}}, DefaultCapabilities(NewStereoConfiguration(), false))
	assert.Equal(t, []Capability{{1, 1}}, DefaultCapabilities(NewMonoConfiguration(), false))
	assert.Equal(t, []Capability{{0, 2}}, DefaultCapabilities(NewGenerator(), true))

	zero := NewBuilder().WithAudioInput("In", 0).WithAudioOutput("Out", 0).MustBuild()
	assert.Equal(t, []Capability{{2, 2}}, DefaultCapabilities(zero, false))
}
