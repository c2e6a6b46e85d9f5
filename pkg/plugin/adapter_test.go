package plugin

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/augo/pkg/au"
	"github.com/justyntemme/augo/pkg/framework/bus"
	fwplugin "github.com/justyntemme/augo/pkg/framework/plugin"
	"github.com/justyntemme/augo/pkg/framework/process"
)

func TestProcessorCoreState(t *testing.T) {
	proc := newTestProcessor()
	proc.custom = "state"
	c := NewProcessorCore(proc)

	n := c.StateSize()
	require.Positive(t, n)

	_, err := c.GetState(make([]byte, n-1))
	assert.ErrorIs(t, err, io.ErrShortBuffer)

	buf := make([]byte, n)
	w, err := c.GetState(buf)
	require.NoError(t, err)
	assert.Equal(t, n, w)

	other := newTestProcessor()
	oc := NewProcessorCore(other)
	require.NoError(t, oc.SetState(buf))
	assert.Equal(t, "state", other.custom)

	assert.ErrorIs(t, oc.SetState([]byte("AUGX")), au.ErrInvalidPropertyValue)
}

func TestProcessorCoreDefaults(t *testing.T) {
	proc := fwplugin.NewSimpleProcessor(nil, nil)
	c := NewProcessorCore(proc)

	assert.Equal(t, 1, c.InputBusCount())
	assert.Equal(t, 1, c.OutputBusCount())
	_, ok := c.InputBusInfo(1)
	assert.False(t, ok)
	assert.Equal(t, []bus.Capability{{In: 2, Out: 2}}, c.ChannelCapabilities())
	assert.False(t, c.HasGUI())
	assert.Zero(t, c.PresetCount())
	_, ok = c.PresetInfo(0)
	assert.False(t, ok)
	assert.False(t, c.ApplyPreset(0))
	assert.Same(t, fwplugin.Processor(proc), c.Processor())

	// Rendering before Prepare is refused.
	assert.ErrorIs(t, c.Render(&RenderContext{Frames: 16}), au.ErrUninitialized)
}

func TestProcessorCoreMultipleOutputs(t *testing.T) {
	cfg := bus.NewBuilder().
		WithStereoInput("In").
		WithStereoOutput("Main").
		WithAuxOutput("Direct", 2).
		MustBuild()
	proc := fwplugin.NewSimpleProcessor(cfg, func(ctx *process.Context) {
		for b, chans := range ctx.OutputBuses {
			for _, out := range chans {
				for k := range out {
					out[k] = float32(b + 1)
				}
			}
		}
	})
	f, _ := newTestFactory(corePlugin(func() (Core, error) { return NewProcessorCore(proc), nil }))
	inst := open(t, f)
	prepare(t, inst, 48000, 64)

	var n uint32
	require.NoError(t, inst.GetProperty(au.PropertyElementCount, au.ScopeOutput, 0, &n))
	assert.Equal(t, uint32(2), n)

	main := stereo(64)
	require.NoError(t, inst.Render(nil, nil, 0, 64, main))
	assert.Equal(t, float32(1), main.Buffers[0].Data[63])

	direct := stereo(64)
	require.NoError(t, inst.Render(nil, nil, 1, 64, direct))
	assert.Equal(t, float32(2), direct.Buffers[1].Data[0])
}
