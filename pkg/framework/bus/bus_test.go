package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStereoConfiguration(t *testing.T) {
	config := NewStereoConfiguration()

	if got := config.GetBusCount(MediaTypeAudio, DirectionInput); got != 1 {
		t.Errorf("Expected 1 audio input bus, got %d", got)
	}
	if got := config.GetBusCount(MediaTypeAudio, DirectionOutput); got != 1 {
		t.Errorf("Expected 1 audio output bus, got %d", got)
	}

	inBus := config.GetBusInfo(MediaTypeAudio, DirectionInput, 0)
	if inBus == nil {
		t.Fatal("Expected input bus to exist")
	}
	if inBus.ChannelCount != 2 {
		t.Errorf("Expected 2 input channels, got %d", inBus.ChannelCount)
	}
	if inBus.Name != "Stereo In" {
		t.Errorf("Expected input name 'Stereo In', got %s", inBus.Name)
	}
	if inBus.BusType != TypeMain {
		t.Errorf("Expected input bus 0 to be main")
	}
}

func TestNewMonoConfiguration(t *testing.T) {
	config := NewMonoConfiguration()

	inBus := config.GetBusInfo(MediaTypeAudio, DirectionInput, 0)
	if inBus.ChannelCount != 1 {
		t.Errorf("Expected 1 input channel, got %d", inBus.ChannelCount)
	}
	if config.GetBusInfo(MediaTypeAudio, DirectionInput, 1) != nil {
		t.Error("Expected no second input bus")
	}
}

func TestAddEventBus(t *testing.T) {
	config := NewStereoConfiguration()
	assert.False(t, config.HasEventInput())

	config.AddEventBus(DirectionInput, "MIDI In")

	assert.True(t, config.HasEventInput())
	eventBus := config.GetBusInfo(MediaTypeEvent, DirectionInput, 0)
	require.NotNil(t, eventBus)
	assert.Equal(t, "MIDI In", eventBus.Name)
}

func TestResolveOverridesChannelCounts(t *testing.T) {
	config := NewEffectStereoSidechain()

	layout, err := config.Resolve([]int32{1, 1}, []int32{1})
	require.NoError(t, err)

	assert.Equal(t, int32(1), layout.MainInputChannels())
	assert.Equal(t, int32(1), layout.MainOutputChannels())
	require.Len(t, layout.Inputs, 2)
	assert.Equal(t, TypeAux, layout.Inputs[1].BusType)
	assert.Equal(t, "Sidechain", layout.Inputs[1].Name)

	// Declared configuration is untouched.
	assert.Equal(t, int32(2), config.GetBusInfo(MediaTypeAudio, DirectionInput, 0).ChannelCount)
}

func TestResolveKeepsDeclaredCounts(t *testing.T) {
	layout, err := NewGenerator().Resolve(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, layout.Inputs)
	assert.Equal(t, int32(0), layout.MainInputChannels())
	assert.Equal(t, int32(2), layout.MainOutputChannels())
}

func TestResolveRejectsInvalidLayouts(t *testing.T) {
	config := NewStereoConfiguration()

	_, err := config.Resolve([]int32{2, 2}, nil)
	assert.Error(t, err, "count mismatch")

	_, err = config.Resolve([]int32{MaxChannels + 1}, nil)
	assert.Error(t, err, "too many channels")
}

func TestLayoutValidateBusLimit(t *testing.T) {
	var l Layout
	for i := 0; i <= MaxBuses; i++ {
		l.Inputs = append(l.Inputs, Info{ChannelCount: 2})
	}
	assert.Error(t, l.Validate())

	l = Layout{Outputs: []Info{{ChannelCount: 2, BusType: TypeAux}}}
	assert.Error(t, l.Validate(), "bus 0 must be main")
}
