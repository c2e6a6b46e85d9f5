package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/augo/pkg/framework/param"
	"github.com/justyntemme/augo/pkg/midi"
)

type testProcessor struct {
	receivedEvents []midi.Event
}

func (p *testProcessor) ProcessEvent(event *midi.Event) {
	p.receivedEvents = append(p.receivedEvents, *event)
}

func chain(events ...midi.Event) *midi.Event {
	for i := 0; i < len(events)-1; i++ {
		events[i].Next = &events[i+1]
	}
	return &events[0]
}

func TestContextProcessEvents(t *testing.T) {
	ctx := NewContext(512, param.NewRegistry())
	ctx.Begin(512)
	ctx.Events = chain(
		midi.NewEvent(0x90, 60, 100, 50),
		midi.NewEvent(0x90, 61, 100, 150),
		midi.NewEvent(0x90, 62, 100, 250),
		midi.NewEvent(0x90, 63, 100, 350),
	)
	require.True(t, ctx.HasEvents())

	processor := &testProcessor{}
	ctx.ProcessEvents(processor, 0, 200)
	if len(processor.receivedEvents) != 2 {
		t.Errorf("Expected 2 events in first chunk, got %d", len(processor.receivedEvents))
	}

	processor.receivedEvents = nil
	ctx.ProcessEvents(processor, 200, 400)
	if len(processor.receivedEvents) != 2 {
		t.Errorf("Expected 2 events in second chunk, got %d", len(processor.receivedEvents))
	}
	assert.Equal(t, uint8(62), processor.receivedEvents[0].Data1)
}

func TestBeginResetsPerBlockState(t *testing.T) {
	ctx := NewContext(64, param.NewRegistry())
	ctx.ReserveParamChanges(2)
	ctx.InputBuses = [][][]float32{{make([]float32, 64)}, {make([]float32, 64)}}
	ctx.OutputBuses = [][][]float32{{make([]float32, 64)}}

	ctx.Begin(32)
	ctx.Events = chain(midi.NewEvent(0x90, 60, 1, 0))
	assert.True(t, ctx.AddParamChange(ParamChange{ID: 1, Value: 0.5, Offset: 3}))
	assert.True(t, ctx.AddParamChange(ParamChange{ID: 1, Value: 0.7, Offset: 9}))
	assert.False(t, ctx.AddParamChange(ParamChange{ID: 1, Value: 0.9, Offset: 12}), "capacity is fixed")

	assert.Equal(t, 32, ctx.NumSamples())
	assert.Len(t, ctx.WorkBuffer(), 32)
	assert.Equal(t, 1, ctx.NumInputChannels())
	assert.NotNil(t, ctx.Sidechain())

	ctx.Begin(16)
	assert.Nil(t, ctx.Events)
	assert.Empty(t, ctx.ParamChanges)
	assert.Equal(t, 2, cap(ctx.ParamChanges))
}

func TestPassThroughAndClear(t *testing.T) {
	ctx := NewContext(4, param.NewRegistry())
	ctx.InputBuses = [][][]float32{{{1, 2, 3, 4}, {5, 6, 7, 8}}}
	ctx.OutputBuses = [][][]float32{{make([]float32, 4)}}
	ctx.Begin(4)

	ctx.PassThrough()
	assert.Equal(t, []float32{1, 2, 3, 4}, ctx.Output[0])

	ctx.Clear()
	assert.Equal(t, []float32{0, 0, 0, 0}, ctx.Output[0])
	assert.Equal(t, 1, ctx.NumOutputChannels())
}

func TestParamAccess(t *testing.T) {
	registry := param.NewRegistry()
	require.NoError(t, registry.Add(param.New(7, "Drive").Range(0, 10).Default(2.5).Build()))
	ctx := NewContext(16, registry)

	assert.Equal(t, 0.25, ctx.Param(7))
	assert.Equal(t, 2.5, ctx.ParamPlain(7))
	assert.Equal(t, 0.0, ctx.Param(99))
}
